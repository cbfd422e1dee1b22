package network

import (
	"context"
	"github.com/godbus/dbus/v5"
	"github.com/the-lightning-land/portald/nm"
	"sync"
)

type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	createClientErr   error
	deleteExistingErr error
	findDeviceErr     error
	scanErr           error
	activateErr       error
	deactivateErr     error
	deleteErr         error
	connectivityErr   error
	connectionsErr    error

	accessPoints []*nm.AccessPoint
	connections  []*nm.Connection
	connectivity string

	// terminal states handed out by AwaitTerminalState, in order
	states []nm.ActiveConnectionState

	// when set, the call blocks until the channel is closed
	connectivityGate chan struct{}
	deactivateGate   chan struct{}

	deleted  []dbus.ObjectPath
	profiles []nm.ConnectionSettings
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		calls:        make(map[string]int),
		connectivity: "full",
	}
}

func (f *fakeGateway) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeGateway) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[name]
}

func (f *fakeGateway) CreateClient() (*nm.Client, error) {
	f.record("CreateClient")

	if f.createClientErr != nil {
		return nil, f.createClientErr
	}

	return &nm.Client{}, nil
}

func (f *fakeGateway) DeleteExistingProfile(client *nm.Client, ssid string) error {
	f.record("DeleteExistingProfile")
	return f.deleteExistingErr
}

func (f *fakeGateway) FindDevice(client *nm.Client, iface string) (*nm.Device, error) {
	f.record("FindDevice")

	if f.findDeviceErr != nil {
		return nil, f.findDeviceErr
	}

	if iface == "" {
		iface = "wlan0"
	}

	return &nm.Device{
		Path:      "/org/freedesktop/NetworkManager/Devices/3",
		Interface: iface,
	}, nil
}

func (f *fakeGateway) RequestScan(ctx context.Context, device *nm.Device) error {
	f.record("RequestScan")
	return f.scanErr
}

func (f *fakeGateway) ListAccessPoints(device *nm.Device) ([]*nm.AccessPoint, error) {
	f.record("ListAccessPoints")
	return f.accessPoints, nil
}

func (f *fakeGateway) ListConnections(client *nm.Client) ([]*nm.Connection, error) {
	f.record("ListConnections")

	if f.connectionsErr != nil {
		return nil, f.connectionsErr
	}

	return f.connections, nil
}

func (f *fakeGateway) CheckConnectivity(client *nm.Client) (string, error) {
	f.record("CheckConnectivity")

	if f.connectivityGate != nil {
		<-f.connectivityGate
	}

	if f.connectivityErr != nil {
		return "", f.connectivityErr
	}

	return f.connectivity, nil
}

func (f *fakeGateway) CreateAPProfile(iface string, ssid string, gateway string, passphrase string) (nm.ConnectionSettings, error) {
	f.record("CreateAPProfile")

	settings, err := nm.New(&nm.Config{}).CreateAPProfile(iface, ssid, gateway, passphrase)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.profiles = append(f.profiles, settings)
	f.mu.Unlock()

	return settings, nil
}

func (f *fakeGateway) AddAndActivate(client *nm.Client, settings nm.ConnectionSettings, device *nm.Device) (*nm.ActiveConnection, error) {
	f.record("AddAndActivate")

	if f.activateErr != nil {
		return nil, f.activateErr
	}

	return &nm.ActiveConnection{
		Path:       "/org/freedesktop/NetworkManager/ActiveConnection/1",
		Connection: "/org/freedesktop/NetworkManager/Settings/9",
	}, nil
}

func (f *fakeGateway) Deactivate(client *nm.Client, active *nm.ActiveConnection) error {
	f.record("Deactivate")

	if f.deactivateGate != nil {
		<-f.deactivateGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.deactivateErr
}

func (f *fakeGateway) DeleteProfile(connection *nm.Connection) error {
	f.record("DeleteProfile")

	if f.deleteErr != nil {
		return f.deleteErr
	}

	f.mu.Lock()
	f.deleted = append(f.deleted, connection.Path)
	f.mu.Unlock()

	return nil
}

func (f *fakeGateway) AwaitTerminalState(active *nm.ActiveConnection) (nm.ActiveConnectionState, error) {
	f.record("AwaitTerminalState")

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.states) == 0 {
		return nm.ActiveConnectionStateActivated, nil
	}

	state := f.states[0]
	f.states = f.states[1:]

	return state, nil
}

func (f *fakeGateway) setDeactivateErr(err error) {
	f.mu.Lock()
	f.deactivateErr = err
	f.mu.Unlock()
}

func (f *fakeGateway) setStates(states ...nm.ActiveConnectionState) {
	f.mu.Lock()
	f.states = states
	f.mu.Unlock()
}

var _ Gateway = (*fakeGateway)(nil)
