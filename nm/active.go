package nm

import (
	"fmt"
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

type ActiveConnectionState uint32

const (
	ActiveConnectionStateUnknown ActiveConnectionState = iota
	ActiveConnectionStateActivating
	ActiveConnectionStateActivated
	ActiveConnectionStateDeactivating
	ActiveConnectionStateDeactivated
	ActiveConnectionStateFailed
)

func (s ActiveConnectionState) String() string {
	switch s {
	case ActiveConnectionStateUnknown:
		return "Unknown"
	case ActiveConnectionStateActivating:
		return "Activating"
	case ActiveConnectionStateActivated:
		return "Activated"
	case ActiveConnectionStateDeactivating:
		return "Deactivating"
	case ActiveConnectionStateDeactivated:
		return "Deactivated"
	case ActiveConnectionStateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("ActiveConnectionState(%d)", uint32(s))
	}
}

// Terminal reports whether s ends a wait for activation or deactivation.
func (s ActiveConnectionState) Terminal() bool {
	return s == ActiveConnectionStateActivated || s == ActiveConnectionStateDeactivated
}

func activeConnectionState(v uint32) ActiveConnectionState {
	if v > uint32(ActiveConnectionStateDeactivated) {
		return ActiveConnectionStateFailed
	}

	return ActiveConnectionState(v)
}

// ActiveConnection is a profile activated on a device.
type ActiveConnection struct {
	client     *Client
	Path       dbus.ObjectPath
	Connection dbus.ObjectPath
}

func (a *ActiveConnection) String() string {
	return string(a.Path)
}

// Profile returns the stored profile the connection was activated from.
func (a *ActiveConnection) Profile() *Connection {
	return &Connection{
		client: a.client,
		Path:   a.Connection,
	}
}

func (g *Gateway) AddAndActivate(client *Client, settings ConnectionSettings, device *Device) (*ActiveConnection, error) {
	var profile, active dbus.ObjectPath

	call := client.obj.Call(nmInterface+".AddAndActivateConnection", 0,
		map[string]map[string]dbus.Variant(settings), device.Path, dbus.ObjectPath("/"))

	err := call.Store(&profile, &active)
	if err != nil {
		return nil, errors.Wrapf(ErrActivationRequestFailed, "failed to add and activate connection: %v", err)
	}

	g.log.Debugf("Added profile %v, activating as %v", profile, active)

	return &ActiveConnection{
		client:     client,
		Path:       active,
		Connection: profile,
	}, nil
}

func (g *Gateway) Deactivate(client *Client, active *ActiveConnection) error {
	call := client.obj.Call(nmInterface+".DeactivateConnection", 0, active.Path)
	if call.Err != nil {
		return errors.Wrapf(call.Err, "could not deactivate connection %v", active.Path)
	}

	return nil
}

// AwaitTerminalState blocks until the active connection reports Activated
// or Deactivated. There is no timeout.
func (g *Gateway) AwaitTerminalState(active *ActiveConnection) (ActiveConnectionState, error) {
	g.log.Infof("Monitoring connection state...")

	conn := active.client.conn

	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(active.Path),
		dbus.WithMatchInterface(activeInterface),
		dbus.WithMatchMember("StateChanged"),
	}

	if err := conn.AddMatchSignal(match...); err != nil {
		return ActiveConnectionStateUnknown, errors.Wrap(err, "could not subscribe to connection state changes")
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)

	defer func() {
		conn.RemoveSignal(signals)

		if err := conn.RemoveMatchSignal(match...); err != nil {
			g.log.Warnf("Could not unsubscribe from connection state changes: %v", err)
		}
	}()

	// the state may have settled before the subscription was in place
	if state, ok := g.currentState(active); ok && state.Terminal() {
		g.log.Infof("Connection: %v", state)
		return state, nil
	}

	return g.awaitSignals(active.Path, signals)
}

// awaitSignals consumes StateChanged signals for path until one carries a
// terminal state. Signals for other objects and intermediate states are
// skipped.
func (g *Gateway) awaitSignals(path dbus.ObjectPath, signals <-chan *dbus.Signal) (ActiveConnectionState, error) {
	for signal := range signals {
		state, reason, ok := parseStateChanged(path, signal)
		if !ok {
			continue
		}

		g.log.Infof("Connection: %v (reason %d)", state, reason)

		if state.Terminal() {
			return state, nil
		}
	}

	return ActiveConnectionStateUnknown, errors.New("bus connection closed while waiting for connection state")
}

func (g *Gateway) currentState(active *ActiveConnection) (ActiveConnectionState, bool) {
	var state uint32

	err := active.client.property(active.Path, activeInterface+".State", &state)
	if err != nil {
		if isUnknownObject(err) {
			return ActiveConnectionStateDeactivated, true
		}

		g.log.Debugf("Could not read state of %v: %v", active.Path, err)
		return ActiveConnectionStateUnknown, false
	}

	return activeConnectionState(state), true
}

func parseStateChanged(path dbus.ObjectPath, signal *dbus.Signal) (ActiveConnectionState, uint32, bool) {
	if signal == nil || signal.Path != path || signal.Name != activeInterface+".StateChanged" {
		return ActiveConnectionStateUnknown, 0, false
	}

	if len(signal.Body) < 1 {
		return ActiveConnectionStateUnknown, 0, false
	}

	state, ok := signal.Body[0].(uint32)
	if !ok {
		return ActiveConnectionStateUnknown, 0, false
	}

	var reason uint32
	if len(signal.Body) > 1 {
		reason, _ = signal.Body[1].(uint32)
	}

	return activeConnectionState(state), reason, true
}

// isUnknownObject reports whether err says the object is gone from the bus,
// which NetworkManager does once an active connection is fully torn down.
func isUnknownObject(err error) bool {
	var name string

	var value dbus.Error
	var pointer *dbus.Error

	switch {
	case errors.As(err, &value):
		name = value.Name
	case errors.As(err, &pointer):
		name = pointer.Name
	}

	return name == "org.freedesktop.DBus.Error.UnknownObject" ||
		name == "org.freedesktop.DBus.Error.UnknownMethod"
}
