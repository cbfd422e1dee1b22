//go:build !linux

package nm

// NetworkManager only runs on Linux. Elsewhere any reported scan counts as new.
func bootTimeMillis() int64 {
	return 0
}
