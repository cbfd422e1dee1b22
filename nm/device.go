package nm

import (
	"context"
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"time"
)

const (
	deviceTypeWifi       uint32 = 2
	deviceStateUnmanaged uint32 = 10
)

// Device is a WiFi device managed by NetworkManager.
type Device struct {
	client    *Client
	Path      dbus.ObjectPath
	Interface string
}

func (d *Device) String() string {
	return d.Interface
}

// AccessPoint is a raw scan result. The SSID is not guaranteed to be text.
type AccessPoint struct {
	SSID     []byte
	Strength uint8
}

// FindDevice resolves iface to a managed WiFi device, or picks the first
// managed WiFi device when iface is empty.
func (g *Gateway) FindDevice(client *Client, iface string) (*Device, error) {
	if iface != "" {
		return g.exactDevice(client, iface)
	}

	return g.anyWifiDevice(client)
}

func (g *Gateway) exactDevice(client *Client, iface string) (*Device, error) {
	var path dbus.ObjectPath

	err := client.obj.Call(nmInterface+".GetDeviceByIpIface", 0, iface).Store(&path)
	if err != nil {
		g.log.Debugf("Could not get device by interface %v: %v", iface, err)
		return nil, errors.Wrapf(ErrDeviceNotFound, "failed to find interface '%s'", iface)
	}

	info, err := readDeviceInfo(client, path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not inspect interface '%s'", iface)
	}

	if err := checkDevice(iface, info); err != nil {
		return nil, err
	}

	return &Device{
		client:    client,
		Path:      path,
		Interface: iface,
	}, nil
}

func (g *Gateway) anyWifiDevice(client *Client) (*Device, error) {
	var paths []dbus.ObjectPath

	err := client.obj.Call(nmInterface+".GetDevices", 0).Store(&paths)
	if err != nil {
		return nil, errors.Wrap(err, "could not list devices")
	}

	infos := make([]deviceInfo, 0, len(paths))

	for _, path := range paths {
		info, err := readDeviceInfo(client, path)
		if err != nil {
			g.log.Debugf("Skipping device %v: %v", path, err)
			continue
		}

		infos = append(infos, info)
	}

	info, ok := pickDevice(infos)
	if !ok {
		return nil, errors.Wrap(ErrDeviceNotFound, "failed to find a managed WiFi device")
	}

	return &Device{
		client:    client,
		Path:      info.path,
		Interface: info.iface,
	}, nil
}

type deviceInfo struct {
	path       dbus.ObjectPath
	iface      string
	deviceType uint32
	state      uint32
}

func (d deviceInfo) usable() bool {
	return d.deviceType == deviceTypeWifi && d.state != deviceStateUnmanaged
}

// checkDevice reports why the device named iface cannot host the portal.
func checkDevice(iface string, info deviceInfo) error {
	if info.deviceType != deviceTypeWifi {
		return errors.Wrapf(ErrNotWiFi, "not a WiFi interface '%s'", iface)
	}

	if info.state == deviceStateUnmanaged {
		return errors.Wrapf(ErrInterfaceUnmanaged, "interface is not managed by NetworkManager '%s'", iface)
	}

	return nil
}

// pickDevice returns the first managed WiFi device.
func pickDevice(infos []deviceInfo) (deviceInfo, bool) {
	for _, info := range infos {
		if info.usable() {
			return info, true
		}
	}

	return deviceInfo{}, false
}

func readDeviceInfo(client *Client, path dbus.ObjectPath) (deviceInfo, error) {
	info := deviceInfo{path: path}

	if err := client.property(path, deviceInterface+".DeviceType", &info.deviceType); err != nil {
		return info, errors.Wrap(err, "could not get device type")
	}

	if err := client.property(path, deviceInterface+".State", &info.state); err != nil {
		return info, errors.Wrap(err, "could not get device state")
	}

	if err := client.property(path, deviceInterface+".Interface", &info.iface); err != nil {
		return info, errors.Wrap(err, "could not get device interface")
	}

	return info, nil
}

// RequestScan triggers a scan and waits until NetworkManager reports a scan
// newer than the request, or until the poll budget is used up. Running out
// of polls is not an error, the caller proceeds with whatever was found.
func (g *Gateway) RequestScan(ctx context.Context, device *Device) error {
	g.log.Infof("Scanning for networks...")

	prescan := bootTimeMillis()

	call := device.client.object(device.Path).Call(wirelessInterface+".RequestScan", 0, map[string]dbus.Variant{})
	if call.Err != nil {
		return errors.Wrapf(ErrScanRequestFailed, "failed to request WiFi scan: %v", call.Err)
	}

	lastScan := func() (int64, error) {
		var last int64
		err := device.client.property(device.Path, wirelessInterface+".LastScan", &last)
		return last, err
	}

	polls, done := pollScan(ctx, prescan, lastScan, g.scanPollInterval, g.scanPollLimit)
	if done {
		g.log.Debugf("Scan finished after %d polls", polls)
	} else {
		g.log.Warnf("Scan did not finish after %d polls, continuing with known access points", polls)
	}

	return nil
}

// pollScan checks lastScan up to limit times, pausing interval between
// checks. It returns the number of checks made and whether a scan newer
// than mark was observed.
func pollScan(ctx context.Context, mark int64, lastScan func() (int64, error), interval time.Duration, limit int) (int, bool) {
	for i := 1; i <= limit; i++ {
		if last, err := lastScan(); err == nil && last > mark {
			return i, true
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return i, false
		case <-timer.C:
		}
	}

	return limit, false
}

func (g *Gateway) ListAccessPoints(device *Device) ([]*AccessPoint, error) {
	var paths []dbus.ObjectPath

	err := device.client.object(device.Path).Call(wirelessInterface+".GetAllAccessPoints", 0).Store(&paths)
	if err != nil {
		return nil, errors.Wrap(err, "could not list access points")
	}

	accessPoints := make([]*AccessPoint, 0, len(paths))

	for _, path := range paths {
		ap := &AccessPoint{}

		if err := device.client.property(path, accessPointInterface+".Ssid", &ap.SSID); err != nil {
			g.log.Debugf("Skipping access point %v: %v", path, err)
			continue
		}

		if err := device.client.property(path, accessPointInterface+".Strength", &ap.Strength); err != nil {
			g.log.Debugf("Skipping access point %v: %v", path, err)
			continue
		}

		accessPoints = append(accessPoints, ap)
	}

	return accessPoints, nil
}
