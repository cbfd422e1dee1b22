package network

import (
	"context"
	"github.com/pkg/errors"
	"github.com/the-lightning-land/portald/nm"
	"sync/atomic"
)

// Phase is the progress of the startup sequence. The transitions are:
//
// uninitialized -> client ready -> device ready -> scanned -> portal activated
//
// and any phase may move to failed, after which the sequence is over.
type Phase int32

const (
	PhaseUninitialized Phase = iota
	PhaseClientReady
	PhaseDeviceReady
	PhaseScanned
	PhasePortalActivated
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseClientReady:
		return "client ready"
	case PhaseDeviceReady:
		return "device ready"
	case PhaseScanned:
		return "scanned"
	case PhasePortalActivated:
		return "portal activated"
	case PhaseFailed:
		return "failed"
	default:
		return "invalid phase"
	}
}

type ManagerConfig struct {
	Gateway    Gateway
	SSID       string
	Passphrase string
	Address    string
	Interface  string
	Logger     Logger
}

// Manager brings the captive portal up and takes it down again.
type Manager struct {
	gateway    Gateway
	ssid       string
	passphrase string
	address    string
	iface      string
	log        Logger
	phase      int32
}

func NewManager(config *ManagerConfig) *Manager {
	manager := &Manager{
		gateway:    config.Gateway,
		ssid:       config.SSID,
		passphrase: config.Passphrase,
		address:    config.Address,
		iface:      config.Interface,
	}

	if config.Logger != nil {
		manager.log = config.Logger
	} else {
		manager.log = noopLogger{}
	}

	return manager
}

func (m *Manager) Phase() Phase {
	return Phase(atomic.LoadInt32(&m.phase))
}

func (m *Manager) advance(phase Phase) {
	atomic.StoreInt32(&m.phase, int32(phase))
	m.log.Debugf("Network phase %v", phase)
}

func (m *Manager) fail(err error) error {
	reached := m.Phase()
	m.advance(PhaseFailed)

	return &StartupError{
		Phase: reached,
		Err:   err,
	}
}

// Start runs the startup sequence: connect to NetworkManager, remove a
// profile left by a previous run, find the WiFi device, scan and finally
// activate the portal. It blocks until the portal is up or has failed.
func (m *Manager) Start(ctx context.Context) (*State, error) {
	client, err := m.gateway.CreateClient()
	if err != nil {
		return nil, m.fail(errors.Wrap(err, "failed to create NetworkManager client"))
	}

	m.advance(PhaseClientReady)

	err = m.gateway.DeleteExistingProfile(client, m.ssid)
	if err != nil {
		return nil, m.fail(errors.Wrap(err, "failed to delete existing access point profile"))
	}

	device, err := m.gateway.FindDevice(client, m.iface)
	if err != nil {
		return nil, m.fail(err)
	}

	m.advance(PhaseDeviceReady)

	m.log.Infof("Interface: %v", device.Interface)

	err = m.gateway.RequestScan(ctx, device)
	if err != nil {
		return nil, m.fail(err)
	}

	accessPoints, err := m.gateway.ListAccessPoints(device)
	if err != nil {
		return nil, m.fail(errors.Wrap(err, "failed to list nearby access points"))
	}

	stations := DeriveStations(accessPoints)

	m.advance(PhaseScanned)

	m.log.Infof("Found %d networks", len(stations))

	portal, err := m.createPortal(client, device)
	if err != nil {
		return nil, m.fail(errors.Wrap(err, "failed to create captive portal"))
	}

	m.advance(PhasePortalActivated)

	m.log.Infof("Captive portal %q is up", m.ssid)

	return &State{
		client:   client,
		device:   device,
		stations: stations,
		portal:   portal,
	}, nil
}

func (m *Manager) createPortal(client *nm.Client, device *nm.Device) (*nm.ActiveConnection, error) {
	settings, err := m.gateway.CreateAPProfile(device.Interface, m.ssid, m.address, m.passphrase)
	if err != nil {
		return nil, err
	}

	active, err := m.gateway.AddAndActivate(client, settings, device)
	if err != nil {
		return nil, err
	}

	state, err := m.gateway.AwaitTerminalState(active)
	if err != nil {
		return nil, errors.Wrap(err, "failed to receive active connection state change")
	}

	if state == nm.ActiveConnectionStateDeactivated {
		err := m.gateway.DeleteProfile(active.Profile())
		if err != nil {
			return nil, errors.Wrap(err, "failed to delete captive portal connection after failing to activate")
		}

		return nil, errors.WithStack(ErrActivationFailed)
	}

	return active, nil
}

// StopPortal deactivates the portal connection, waits until it is down and
// deletes its profile. It stops at the first failing step.
func (m *Manager) StopPortal(client *nm.Client, active *nm.ActiveConnection) error {
	m.log.Infof("Stopping captive portal...")

	err := m.gateway.Deactivate(client, active)
	if err != nil {
		return errors.Wrap(err, "failed to deactivate captive portal connection")
	}

	_, err = m.gateway.AwaitTerminalState(active)
	if err != nil {
		return errors.Wrap(err, "failed to receive active connection state change")
	}

	err = m.gateway.DeleteProfile(active.Profile())
	if err != nil {
		return errors.Wrap(err, "failed to delete captive portal connection profile")
	}

	m.log.Infof("Captive portal stopped")

	return nil
}
