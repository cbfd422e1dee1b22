package nm

import (
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

// Connection is a stored profile.
type Connection struct {
	client   *Client
	Path     dbus.ObjectPath
	Settings ConnectionSettings
}

func (c *Connection) String() string {
	return string(c.Path)
}

// ListConnections returns all stored profiles. Profiles whose settings
// cannot be read are left out with a warning.
func (g *Gateway) ListConnections(client *Client) ([]*Connection, error) {
	var paths []dbus.ObjectPath

	err := client.object(settingsPath).Call(settingsInterface+".ListConnections", 0).Store(&paths)
	if err != nil {
		return nil, errors.Wrap(err, "could not list connections")
	}

	connections := make([]*Connection, 0, len(paths))

	for _, path := range paths {
		var settings map[string]map[string]dbus.Variant

		err := client.object(path).Call(connectionInterface+".GetSettings", 0).Store(&settings)
		if err != nil {
			g.log.Warnf("Skipping connection %v, settings unreadable: %v", path, err)
			continue
		}

		connections = append(connections, &Connection{
			client:   client,
			Path:     path,
			Settings: ConnectionSettings(settings),
		})
	}

	return connections, nil
}

// DeleteExistingProfile deletes every access point profile for ssid. It
// stops at the first profile that cannot be deleted.
func (g *Gateway) DeleteExistingProfile(client *Client, ssid string) error {
	connections, err := g.ListConnections(client)
	if err != nil {
		return err
	}

	deleted, err := deleteMatching(connections, ssid, func(connection *Connection) error {
		g.log.Infof("Deleting access point profile %q left by a previous run", ssid)
		return g.DeleteProfile(connection)
	})

	g.log.Debugf("Deleted %d stale access point profiles", deleted)

	return err
}

// deleteMatching calls remove for each access point profile broadcasting
// ssid and returns how many were removed before the first failure.
func deleteMatching(connections []*Connection, ssid string, remove func(*Connection) error) (int, error) {
	deleted := 0

	for _, connection := range connections {
		if !connection.Settings.IsAccessPoint() || !connection.Settings.HasSSID(ssid) {
			continue
		}

		if err := remove(connection); err != nil {
			return deleted, err
		}

		deleted++
	}

	return deleted, nil
}

func (g *Gateway) DeleteProfile(connection *Connection) error {
	call := connection.client.object(connection.Path).Call(connectionInterface+".Delete", 0)
	if call.Err != nil {
		return errors.Wrapf(call.Err, "could not delete connection %v", connection.Path)
	}

	return nil
}
