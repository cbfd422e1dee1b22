package nm

import (
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/the-lightning-land/portald/connectivity"
)

// Client is a system bus connection to a running NetworkManager.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

func (c *Client) object(path dbus.ObjectPath) dbus.BusObject {
	return c.conn.Object(busName, path)
}

func (c *Client) property(path dbus.ObjectPath, name string, v interface{}) error {
	variant, err := c.object(path).GetProperty(name)
	if err != nil {
		return err
	}

	return dbus.Store([]interface{}{variant.Value()}, v)
}

func (g *Gateway) CreateClient() (*Client, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, errors.Wrapf(ErrDaemonUnavailable, "could not connect to system bus: %v", err)
	}

	var running bool

	err = conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, busName).Store(&running)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(ErrDaemonUnavailable, "could not look up %s: %v", busName, err)
	}

	if !running {
		_ = conn.Close()
		return nil, errors.WithStack(ErrDaemonUnavailable)
	}

	g.log.Debugf("Connected to %s", busName)

	return &Client{
		conn: conn,
		obj:  conn.Object(busName, rootPath),
	}, nil
}

// CheckConnectivity asks NetworkManager to re-check connectivity and returns
// the resulting state as text. The call blocks until the check has finished.
func (g *Gateway) CheckConnectivity(client *Client) (string, error) {
	var state uint32

	err := client.obj.Call(nmInterface+".CheckConnectivity", 0).Store(&state)
	if err != nil {
		return "", errors.Wrap(err, "could not check connectivity")
	}

	return connectivity.State(state).String(), nil
}
