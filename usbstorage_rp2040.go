//go:build tinygo

package main

import (
	"log/slog"
	"machine"
	"time"

	"a8picocart/firmware/internal/blockdev"
)

// runMassStorageMode presents the FAT volume over USB when no Atari is
// detected on the cartridge bus, mirroring main.c's tinyusb device-stack
// branch (tud_init + tud_task + cdc_task). TinyGo's machine package ships
// a USB CDC ACM class (machine.Serial on rp2040) but no mass-storage
// class driver, and nothing in the retrieved pack supplies one either --
// unlike the cgo ROM-function technique internal/flashdev reuses, there's
// no third-party or example-grounded MSC stack to adopt here. This runs
// the CDC diagnostics console (the part TinyGo's USB stack does support),
// which only echoes what it receives, and keeps syncing adapter; exposing the
// volume as a drive letter needs a TinyGo MSC class driver that doesn't
// exist yet. See DESIGN.md.
func runMassStorageMode(logger *slog.Logger, adapter *blockdev.Adapter) {
	logger.Warn("usb:mass-storage-unavailable",
		slog.String("reason", "no TinyGo USB MSC class driver"),
		slog.Int("volume_sectors", blockdev.NumSectors))

	var buf [64]byte
	for {
		if machine.Serial.Buffered() > 0 {
			n, _ := machine.Serial.Read(buf[:])
			if n > 0 {
				machine.Serial.Write(buf[:n]) // echo, like original_source's cdc_task
			}
		}
		if err := adapter.Sync(); err != nil {
			logger.Error("fatvol:sync-failed", slog.String("err", err.Error()))
		}
		machine.Watchdog.Update()
		time.Sleep(10 * time.Millisecond)
	}
}
