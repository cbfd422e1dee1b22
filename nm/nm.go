// Package nm is a small typed client for the NetworkManager D-Bus API. It
// covers what the captive portal needs: device lookup, scanning, profile
// management and activation state tracking.
package nm

import (
	"github.com/godbus/dbus/v5"
	"time"
)

const (
	busName      = "org.freedesktop.NetworkManager"
	rootPath     = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	settingsPath = dbus.ObjectPath("/org/freedesktop/NetworkManager/Settings")

	nmInterface          = "org.freedesktop.NetworkManager"
	settingsInterface    = "org.freedesktop.NetworkManager.Settings"
	connectionInterface  = "org.freedesktop.NetworkManager.Settings.Connection"
	deviceInterface      = "org.freedesktop.NetworkManager.Device"
	wirelessInterface    = "org.freedesktop.NetworkManager.Device.Wireless"
	accessPointInterface = "org.freedesktop.NetworkManager.AccessPoint"
	activeInterface      = "org.freedesktop.NetworkManager.Connection.Active"
)

const (
	// DefaultScanPollInterval is the pause between two LastScan checks.
	DefaultScanPollInterval = time.Second

	// DefaultScanPollLimit bounds how many times LastScan is checked after a scan request.
	DefaultScanPollLimit = 45
)

type Config struct {
	Logger           Logger
	ScanPollInterval time.Duration
	ScanPollLimit    int
}

// Gateway talks to NetworkManager. It holds no connection state of its own,
// every call operates on the handles it was given.
type Gateway struct {
	log              Logger
	scanPollInterval time.Duration
	scanPollLimit    int
}

func New(config *Config) *Gateway {
	g := &Gateway{
		scanPollInterval: DefaultScanPollInterval,
		scanPollLimit:    DefaultScanPollLimit,
	}

	if config.Logger != nil {
		g.log = config.Logger
	} else {
		g.log = noopLogger{}
	}

	if config.ScanPollInterval > 0 {
		g.scanPollInterval = config.ScanPollInterval
	}

	if config.ScanPollLimit > 0 {
		g.scanPollLimit = config.ScanPollLimit
	}

	return g
}
