package nm

import "golang.org/x/sys/unix"

// bootTimeMillis reads CLOCK_BOOTTIME, the clock NetworkManager uses for
// the LastScan property.
func bootTimeMillis() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
		return 0
	}

	return ts.Nano() / 1e6
}
