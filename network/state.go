package network

import "github.com/the-lightning-land/portald/nm"

// Station is a nearby network seen during the startup scan.
type Station struct {
	SSID    string `json:"ssid"`
	Quality uint8  `json:"quality"`
}

// ConnectionDetails identifies a stored profile.
type ConnectionDetails struct {
	ID   string `json:"id"`
	UUID string `json:"uuid"`
}

// State is everything the portal knows about the network. It is built once
// by the startup sequence and afterwards only touched by the dispatcher loop.
type State struct {
	client   *nm.Client
	device   *nm.Device
	stations []Station
	portal   *nm.ActiveConnection
}
