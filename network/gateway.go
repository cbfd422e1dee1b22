package network

import (
	"context"
	"github.com/the-lightning-land/portald/nm"
)

// Gateway is what the portal needs from NetworkManager.
type Gateway interface {
	CreateClient() (*nm.Client, error)
	DeleteExistingProfile(client *nm.Client, ssid string) error
	FindDevice(client *nm.Client, iface string) (*nm.Device, error)
	RequestScan(ctx context.Context, device *nm.Device) error
	ListAccessPoints(device *nm.Device) ([]*nm.AccessPoint, error)
	ListConnections(client *nm.Client) ([]*nm.Connection, error)
	CheckConnectivity(client *nm.Client) (string, error)
	CreateAPProfile(iface string, ssid string, gateway string, passphrase string) (nm.ConnectionSettings, error)
	AddAndActivate(client *nm.Client, settings nm.ConnectionSettings, device *nm.Device) (*nm.ActiveConnection, error)
	Deactivate(client *nm.Client, active *nm.ActiveConnection) error
	DeleteProfile(connection *nm.Connection) error
	AwaitTerminalState(active *nm.ActiveConnection) (nm.ActiveConnectionState, error)
}

// check the D-Bus gateway's compliance to the interface during compile time
var _ Gateway = (*nm.Gateway)(nil)
