package nm

import (
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"testing"
)

func TestActiveConnectionStateTerminal(t *testing.T) {
	tests := []struct {
		state    ActiveConnectionState
		terminal bool
	}{
		{ActiveConnectionStateUnknown, false},
		{ActiveConnectionStateActivating, false},
		{ActiveConnectionStateActivated, true},
		{ActiveConnectionStateDeactivating, false},
		{ActiveConnectionStateDeactivated, true},
		{ActiveConnectionStateFailed, false},
	}

	for _, tt := range tests {
		if got := tt.state.Terminal(); got != tt.terminal {
			t.Errorf("%v.Terminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestActiveConnectionStateFromBus(t *testing.T) {
	if s := activeConnectionState(2); s != ActiveConnectionStateActivated {
		t.Errorf("state 2 = %v, want Activated", s)
	}

	if s := activeConnectionState(17); s != ActiveConnectionStateFailed {
		t.Errorf("state 17 = %v, want Failed", s)
	}
}

func TestParseStateChanged(t *testing.T) {
	path := dbus.ObjectPath("/org/freedesktop/NetworkManager/ActiveConnection/7")

	tests := []struct {
		name   string
		signal *dbus.Signal
		state  ActiveConnectionState
		reason uint32
		ok     bool
	}{
		{
			name: "activated",
			signal: &dbus.Signal{
				Path: path,
				Name: activeInterface + ".StateChanged",
				Body: []interface{}{uint32(2), uint32(0)},
			},
			state: ActiveConnectionStateActivated,
			ok:    true,
		},
		{
			name: "deactivated with reason",
			signal: &dbus.Signal{
				Path: path,
				Name: activeInterface + ".StateChanged",
				Body: []interface{}{uint32(4), uint32(5)},
			},
			state:  ActiveConnectionStateDeactivated,
			reason: 5,
			ok:     true,
		},
		{
			name: "other object",
			signal: &dbus.Signal{
				Path: "/org/freedesktop/NetworkManager/ActiveConnection/8",
				Name: activeInterface + ".StateChanged",
				Body: []interface{}{uint32(2), uint32(0)},
			},
		},
		{
			name: "other signal",
			signal: &dbus.Signal{
				Path: path,
				Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
				Body: []interface{}{"x"},
			},
		},
		{
			name: "malformed body",
			signal: &dbus.Signal{
				Path: path,
				Name: activeInterface + ".StateChanged",
				Body: []interface{}{"activated"},
			},
		},
		{
			name: "nil signal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, reason, ok := parseStateChanged(path, tt.signal)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}

			if !ok {
				return
			}

			if state != tt.state || reason != tt.reason {
				t.Errorf("got %v/%d, want %v/%d", state, reason, tt.state, tt.reason)
			}
		})
	}
}

func TestIsUnknownObject(t *testing.T) {
	gone := dbus.Error{Name: "org.freedesktop.DBus.Error.UnknownObject"}
	if !isUnknownObject(gone) {
		t.Error("expected UnknownObject to be detected")
	}

	if !isUnknownObject(errors.Wrap(dbus.NewError("org.freedesktop.DBus.Error.UnknownMethod", nil), "reading state")) {
		t.Error("expected wrapped UnknownMethod to be detected")
	}

	if isUnknownObject(errors.New("timeout")) {
		t.Error("plain errors are not unknown objects")
	}
}

func stateChanged(path dbus.ObjectPath, state uint32) *dbus.Signal {
	return &dbus.Signal{
		Path: path,
		Name: activeInterface + ".StateChanged",
		Body: []interface{}{state, uint32(0)},
	}
}

func TestAwaitSignals(t *testing.T) {
	path := dbus.ObjectPath("/org/freedesktop/NetworkManager/ActiveConnection/7")
	other := dbus.ObjectPath("/org/freedesktop/NetworkManager/ActiveConnection/8")

	tests := []struct {
		name    string
		signals []*dbus.Signal
		want    ActiveConnectionState
		err     bool
	}{
		{
			name: "activation",
			signals: []*dbus.Signal{
				stateChanged(path, 1),
				stateChanged(path, 2),
			},
			want: ActiveConnectionStateActivated,
		},
		{
			name: "deactivation after intermediate states",
			signals: []*dbus.Signal{
				stateChanged(path, 1),
				stateChanged(path, 3),
				stateChanged(path, 7),
				stateChanged(path, 4),
				stateChanged(path, 2),
			},
			want: ActiveConnectionStateDeactivated,
		},
		{
			name: "other objects and members are ignored",
			signals: []*dbus.Signal{
				stateChanged(other, 2),
				{Path: path, Name: "org.freedesktop.DBus.Properties.PropertiesChanged"},
				stateChanged(path, 4),
			},
			want: ActiveConnectionStateDeactivated,
		},
		{
			name: "closed before a terminal state",
			signals: []*dbus.Signal{
				stateChanged(path, 1),
				stateChanged(other, 2),
			},
			want: ActiveConnectionStateUnknown,
			err:  true,
		},
	}

	g := New(&Config{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := make(chan *dbus.Signal, len(tt.signals))
			for _, signal := range tt.signals {
				signals <- signal
			}
			close(signals)

			got, err := g.awaitSignals(path, signals)
			if (err != nil) != tt.err {
				t.Fatalf("err = %v, want error %v", err, tt.err)
			}

			if got != tt.want {
				t.Errorf("state = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAwaitSignalsStopsAtFirstTerminalState(t *testing.T) {
	path := dbus.ObjectPath("/org/freedesktop/NetworkManager/ActiveConnection/7")

	signals := make(chan *dbus.Signal, 3)
	signals <- stateChanged(path, 2)
	signals <- stateChanged(path, 4)

	got, err := New(&Config{}).awaitSignals(path, signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != ActiveConnectionStateActivated {
		t.Errorf("state = %v, want Activated", got)
	}

	if len(signals) != 1 {
		t.Errorf("%d signals left, want the later one untouched", len(signals))
	}
}
