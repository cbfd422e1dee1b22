package network

import (
	"github.com/pkg/errors"
	"github.com/the-lightning-land/portald/nm"
	"reflect"
	"testing"
)

func TestErrorChain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
		{
			name: "single error",
			err:  errors.New("boom"),
			want: []string{"boom"},
		},
		{
			name: "wrapped sentinel",
			err: errors.Wrap(
				errors.Wrapf(nm.ErrDeviceNotFound, "failed to find interface '%s'", "wlan1"),
				"failed to initialize network"),
			want: []string{
				"failed to initialize network",
				"failed to find interface 'wlan1'",
				"device not found",
			},
		},
		{
			name: "upstream error",
			err: &UpstreamError{
				Action: "check connectivity",
				Err:    errors.Wrap(errors.New("no reply"), "could not check connectivity"),
			},
			want: []string{
				"failed to execute check connectivity",
				"could not check connectivity",
				"no reply",
			},
		},
		{
			name: "startup error adds no line",
			err:  &StartupError{Phase: PhaseScanned, Err: errors.WithStack(ErrActivationFailed)},
			want: []string{"failed to activate captive portal connection"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorChain(tt.err); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ErrorChain() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	want := map[Command]string{
		CheckConnectivity: "check connectivity",
		ListConnections:   "list connections",
		ListWiFiNetworks:  "list WiFi networks",
		Shutdown:          "shutdown",
		Stop:              "stop",
	}

	for command, action := range want {
		if got := command.String(); got != action {
			t.Errorf("Command(%d).String() = %q, want %q", command, got, action)
		}
	}
}
