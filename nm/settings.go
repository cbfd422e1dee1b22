package nm

import (
	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"net"
	"strings"
	"unicode/utf8"
)

const (
	settingConnection       = "connection"
	settingWireless         = "802-11-wireless"
	settingWirelessSecurity = "802-11-wireless-security"
	settingIPv4             = "ipv4"
	settingIPv6             = "ipv6"

	wirelessModeAP   = "ap"
	wirelessBandBG   = "bg"
	keyMgmtWpaPsk    = "wpa-psk"
	ipv4MethodManual = "manual"
	ipv6MethodIgnore = "ignore"

	gatewayPrefix uint32 = 24
)

// ConnectionSettings is the nested settings dictionary of a profile, as
// exchanged with NetworkManager (a{sa{sv}}).
type ConnectionSettings map[string]map[string]dbus.Variant

func (s ConnectionSettings) text(setting string, key string) (string, bool) {
	v, ok := s[setting][key]
	if !ok {
		return "", false
	}

	str, ok := v.Value().(string)
	if !ok || str == "" {
		return "", false
	}

	return str, true
}

func (s ConnectionSettings) ID() (string, bool) {
	return s.text(settingConnection, "id")
}

func (s ConnectionSettings) UUID() (string, bool) {
	return s.text(settingConnection, "uuid")
}

func (s ConnectionSettings) Type() (string, bool) {
	return s.text(settingConnection, "type")
}

func (s ConnectionSettings) Mode() (string, bool) {
	return s.text(settingWireless, "mode")
}

func (s ConnectionSettings) SSID() ([]byte, bool) {
	v, ok := s[settingWireless]["ssid"]
	if !ok {
		return nil, false
	}

	ssid, ok := v.Value().([]byte)
	return ssid, ok
}

// IsAccessPoint reports whether the profile is a WiFi profile in access point mode.
func (s ConnectionSettings) IsAccessPoint() bool {
	connectionType, _ := s.Type()
	mode, _ := s.Mode()

	return connectionType == settingWireless && mode == wirelessModeAP
}

// HasSSID reports whether the profile's SSID is valid text equal to ssid.
func (s ConnectionSettings) HasSSID(ssid string) bool {
	raw, ok := s.SSID()

	return ok && utf8.Valid(raw) && string(raw) == ssid
}

// CreateAPProfile builds the settings of an access point profile bound to
// iface. The network is open unless a passphrase is given.
func (g *Gateway) CreateAPProfile(iface string, ssid string, gateway string, passphrase string) (ConnectionSettings, error) {
	address, err := parseGateway(gateway)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse gateway address")
	}

	settings := ConnectionSettings{
		settingConnection: {
			"type":           dbus.MakeVariant(settingWireless),
			"id":             dbus.MakeVariant(ssid),
			"uuid":           dbus.MakeVariant(uuid.New().String()),
			"autoconnect":    dbus.MakeVariant(false),
			"interface-name": dbus.MakeVariant(iface),
		},
		settingWireless: {
			"ssid":   dbus.MakeVariant([]byte(ssid)),
			"band":   dbus.MakeVariant(wirelessBandBG),
			"hidden": dbus.MakeVariant(false),
			"mode":   dbus.MakeVariant(wirelessModeAP),
		},
		settingIPv4: {
			"method": dbus.MakeVariant(ipv4MethodManual),
			"address-data": dbus.MakeVariant([]map[string]dbus.Variant{{
				"address": dbus.MakeVariant(address),
				"prefix":  dbus.MakeVariant(gatewayPrefix),
			}}),
		},
		settingIPv6: {
			"method": dbus.MakeVariant(ipv6MethodIgnore),
		},
	}

	if passphrase != "" {
		settings[settingWirelessSecurity] = map[string]dbus.Variant{
			"key-mgmt": dbus.MakeVariant(keyMgmtWpaPsk),
			"psk":      dbus.MakeVariant(passphrase),
		}
	}

	return settings, nil
}

// parseGateway accepts "a.b.c.d" or "a.b.c.d/n" and returns the address.
// The prefix of the portal network is always /24.
func parseGateway(gateway string) (string, error) {
	host := gateway

	if strings.Contains(gateway, "/") {
		ip, _, err := net.ParseCIDR(gateway)
		if err != nil {
			return "", errors.Errorf("invalid address '%s'", gateway)
		}

		host = ip.String()
	}

	ip := net.ParseIP(host)
	if ip == nil || ip.To4() == nil {
		return "", errors.Errorf("invalid IPv4 address '%s'", gateway)
	}

	return ip.To4().String(), nil
}
