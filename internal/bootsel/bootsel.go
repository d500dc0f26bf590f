// Package bootsel decides, at power-on, whether this device is plugged
// into an Atari 8-bit's cartridge port or into a USB host. Grounded on
// original_source's main(): sample the PHI2 clock pin for a short window;
// any high sample means a live Atari bus is driving it, so the device
// commits to cartridge mode. Otherwise it falls back to USB mass storage.
//
// The decision logic is kept free of any hardware access so it can be
// exercised on the host; main wires it to the real PHI2 pin and clock on
// tinygo builds.
package bootsel

import "time"

// ProbePHI2 samples the PHI2 pin repeatedly for window, returning true the
// instant any sample reads high (a real Atari drives PHI2 continuously
// once powered, so one high sample is enough to commit), or false if the
// whole window elapses without ever seeing it high.
func ProbePHI2(readPin func() bool, now func() time.Time, window time.Duration) bool {
	deadline := now().Add(window)
	for now().Before(deadline) {
		if readPin() {
			return true
		}
	}
	return false
}
