package network

import (
	"github.com/the-lightning-land/portald/nm"
	"sort"
	"unicode/utf8"
)

// DeriveStations turns raw scan results into the station list: SSIDs that
// are not valid text are dropped, the rest is ordered by strength and then
// SSID, both descending, duplicates keep their first (strongest) entry and
// hidden networks are removed.
func DeriveStations(accessPoints []*nm.AccessPoint) []Station {
	stations := make([]Station, 0, len(accessPoints))

	for _, ap := range accessPoints {
		if !utf8.Valid(ap.SSID) {
			continue
		}

		stations = append(stations, Station{
			SSID:    string(ap.SSID),
			Quality: ap.Strength,
		})
	}

	sort.Slice(stations, func(i, j int) bool {
		if stations[i].Quality != stations[j].Quality {
			return stations[i].Quality > stations[j].Quality
		}

		return stations[i].SSID > stations[j].SSID
	})

	seen := make(map[string]struct{}, len(stations))
	unique := stations[:0]

	for _, station := range stations {
		if _, ok := seen[station.SSID]; ok {
			continue
		}

		seen[station.SSID] = struct{}{}

		if station.SSID == "" {
			continue
		}

		unique = append(unique, station)
	}

	return unique
}
