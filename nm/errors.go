package nm

import "github.com/pkg/errors"

var (
	// ErrDaemonUnavailable is returned when NetworkManager cannot be reached on the system bus.
	ErrDaemonUnavailable = errors.New("NetworkManager daemon is not running")

	// ErrDeviceNotFound is returned when no matching network device exists.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrNotWiFi is returned when the requested interface is not a WiFi device.
	ErrNotWiFi = errors.New("device is not a WiFi device")

	// ErrInterfaceUnmanaged is returned when NetworkManager does not manage the interface.
	ErrInterfaceUnmanaged = errors.New("interface is unmanaged")

	// ErrScanRequestFailed is returned when NetworkManager rejects a scan request.
	ErrScanRequestFailed = errors.New("scan request rejected")

	// ErrActivationRequestFailed is returned when a profile cannot be added and activated.
	ErrActivationRequestFailed = errors.New("activation request rejected")
)
