package main

import (
	"github.com/go-errors/errors"
	"github.com/jessevdk/go-flags"
	"github.com/kelseyhightower/envconfig"
	"net"
	"strings"
)

const (
	defaultSSID    = "WiFiConnect"
	defaultGateway = "192.168.42.1"
	defaultListen  = "0.0.0.0:3000"

	envPrefix = "PORTAL"
)

type config struct {
	SSID        string `short:"s" long:"ssid" description:"SSID of the captive portal WiFi network" envconfig:"SSID"`
	Passphrase  string `short:"p" long:"passphrase" description:"WPA2 passphrase of the captive portal, open network if empty" envconfig:"PASSPHRASE"`
	Gateway     string `short:"g" long:"gateway" description:"Gateway address of the captive portal" envconfig:"GATEWAY"`
	Interface   string `short:"i" long:"interface" description:"Wireless network interface to use, the first usable one if empty" envconfig:"INTERFACE"`
	Listen      string `short:"l" long:"listen" description:"Address the HTTP api listens on" envconfig:"LISTEN"`
	Debug       bool   `long:"debug" description:"Start in debug mode" envconfig:"DEBUG"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit" ignored:"true"`
}

// loadConfig starts from the defaults, applies PORTAL_* environment
// variables and finally the command line arguments.
func loadConfig(args []string) (*config, error) {
	cfg := config{
		SSID:    defaultSSID,
		Gateway: defaultGateway,
		Listen:  defaultListen,
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.Errorf("Could not read environment: %v", err)
	}

	if _, err := flags.NewParser(&cfg, flags.Default).ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *config) validate() error {
	if len(c.SSID) == 0 || len(c.SSID) > 32 {
		return errors.Errorf("SSID must be 1 to 32 bytes long, got %d", len(c.SSID))
	}

	if c.Passphrase != "" && (len(c.Passphrase) < 8 || len(c.Passphrase) > 63) {
		return errors.New("passphrase must be 8 to 63 characters long")
	}

	address := c.Gateway
	if i := strings.IndexByte(address, '/'); i >= 0 {
		address = address[:i]
	}

	if ip := net.ParseIP(address); ip == nil || ip.To4() == nil {
		return errors.Errorf("gateway %q is not an IPv4 address", c.Gateway)
	}

	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return errors.Errorf("invalid listen address %q: %v", c.Listen, err)
	}

	return nil
}
