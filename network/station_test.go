package network

import (
	"github.com/the-lightning-land/portald/nm"
	"reflect"
	"testing"
)

func ap(ssid string, strength uint8) *nm.AccessPoint {
	return &nm.AccessPoint{SSID: []byte(ssid), Strength: strength}
}

func TestDeriveStations(t *testing.T) {
	tests := []struct {
		name         string
		accessPoints []*nm.AccessPoint
		want         []Station
	}{
		{
			name: "ties ordered by descending ssid",
			accessPoints: []*nm.AccessPoint{
				ap("Cafe", 30),
				ap("Cafe", 80),
				ap("Home", 80),
				{SSID: []byte{0xff, 0xfe, 0xfd}, Strength: 10},
			},
			want: []Station{
				{SSID: "Home", Quality: 80},
				{SSID: "Cafe", Quality: 80},
			},
		},
		{
			name: "hidden network dropped regardless of strength",
			accessPoints: []*nm.AccessPoint{
				ap("", 255),
				ap("Office", 40),
			},
			want: []Station{
				{SSID: "Office", Quality: 40},
			},
		},
		{
			name: "duplicates keep strongest",
			accessPoints: []*nm.AccessPoint{
				ap("Lab", 20),
				ap("Lab", 70),
				ap("Lab", 50),
				ap("Attic", 60),
			},
			want: []Station{
				{SSID: "Lab", Quality: 70},
				{SSID: "Attic", Quality: 60},
			},
		},
		{
			name: "equal strength sorted descending",
			accessPoints: []*nm.AccessPoint{
				ap("alpha", 50),
				ap("gamma", 50),
				ap("beta", 50),
			},
			want: []Station{
				{SSID: "gamma", Quality: 50},
				{SSID: "beta", Quality: 50},
				{SSID: "alpha", Quality: 50},
			},
		},
		{
			name: "multibyte ssid kept",
			accessPoints: []*nm.AccessPoint{
				ap("Café", 10),
			},
			want: []Station{
				{SSID: "Café", Quality: 10},
			},
		},
		{
			name: "nothing found",
			want: []Station{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStations(tt.accessPoints)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeriveStations() = %v, want %v", got, tt.want)
			}
		})
	}
}
