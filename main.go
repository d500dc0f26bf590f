//go:build tinygo

package main

import (
	"errors"
	"log/slog"
	"machine"
	"time"

	"a8picocart/firmware/config"
	"a8picocart/firmware/internal/blockdev"
	"a8picocart/firmware/internal/bootsel"
	"a8picocart/firmware/internal/cartctl"
	"a8picocart/firmware/internal/cartram"
	"a8picocart/firmware/internal/diag"
	"a8picocart/firmware/internal/fatvol"
	"a8picocart/firmware/internal/flashdev"
	"a8picocart/firmware/internal/ftl"
	"a8picocart/firmware/version"
)

// fatalError handles unrecoverable init errors by waiting for the watchdog
// to reset the board, the same shape as the teacher's fatalError -- if the
// watchdog was never configured (init failed before reaching that point)
// this just busy-loops instead.
func fatalError(msg string) {
	println(msg)
	for {
		time.Sleep(time.Second)
	}
}

func main() {
	time.Sleep(2 * time.Second) // let a USB terminal attach before the banner scrolls past

	println("========================================")
	println("  a8picocart firmware")
	println("  Version:", version.Version)
	println("  Git SHA:", version.GitSHA)
	println("  Built:  ", version.BuildDate)
	println("========================================")

	logger := slog.New(diag.New(machine.Serial, nil, nil, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Configure watchdog for reliability (8 second timeout), matching the
	// teacher's main.go. Only fed from init and the USB-storage idle loop
	// below -- the cartridge-mode bus loops (cartctl.Run/mapper.Activate)
	// are PHI2-timing-critical and never fed, same as original_source
	// never touches a watchdog at all once it reaches its hot loops.
	machine.Watchdog.Configure(machine.WatchdogConfig{
		TimeoutMillis: 8000,
	})
	machine.Watchdog.Start()
	logger.Info("init:watchdog-started")

	// Decide cartridge vs USB mass-storage mode before touching anything
	// else on the bus -- PHI2 only ever goes high if a real Atari is
	// driving the edge connector.
	machine.GP22.Configure(machine.PinConfig{Mode: machine.PinInput})
	cartridgeMode := bootsel.ProbePHI2(
		func() bool { return machine.GP22.Get() },
		time.Now,
		config.PHI2ProbeWindow(),
	)

	flashdev.BaseOffset = config.FlashBaseOffset()
	dev := flashdev.NewRP2040Device()
	f := ftl.New(dev)
	freshFormat := false
	if err := f.Mount(); err != nil {
		if !errors.Is(err, ftl.ErrNoMagic) {
			logger.Error("ftl:mount-failed", slog.String("err", err.Error()))
			fatalError("FTL mount failed - waiting for reset...")
		}
		logger.Info("ftl:formatting")
		if err := f.Create(); err != nil {
			logger.Error("ftl:format-failed", slog.String("err", err.Error()))
			fatalError("FTL format failed - waiting for reset...")
		}
		freshFormat = true
	}
	machine.Watchdog.Update()

	adapter := blockdev.New(f)
	// A freshly Create()d FTL has every logical sector zeroed -- there's no
	// FAT on it at all yet. Lay one down before Mount ever sees it, mirroring
	// original_source's create_fatfs_disk calling f_mkfs()+f_setlabel()
	// immediately after flash_fs_create().
	if freshFormat {
		logger.Info("fatvol:formatting")
		if err := fatvol.Mkfs(adapter, blockdev.NumSectors, config.VolumeLabel()); err != nil {
			logger.Error("fatvol:format-failed", slog.String("err", err.Error()))
			fatalError("FAT format failed - waiting for reset...")
		}
	}

	vol := fatvol.NewDiskoVolume(adapter)
	if err := vol.Mount(); err != nil {
		logger.Error("fatvol:mount-failed", slog.String("err", err.Error()))
		fatalError("FAT volume mount failed - waiting for reset...")
	}
	if freshFormat {
		welcome := "Atari 8-bit PicoCart\r\n(c)2023 Electrotrains\r\nDrag ROM,CAR & XEX files in here!\r\n"
		if err := vol.WriteFile("WELCOME.TXT", []byte(welcome)); err != nil {
			logger.Warn("fatvol:welcome-write-failed", slog.String("err", err.Error()))
		}
	}
	machine.Watchdog.Update()

	if !cartridgeMode {
		logger.Info("boot:usb-mass-storage")
		runMassStorageMode(logger, adapter)
		return
	}

	logger.Info("boot:cartridge-mode")

	ram := &cartram.Buffer{}
	ctl := cartctl.New(vol, ram)
	ctl.OnResetFlash = func() {
		logger.Warn("flash:reset-requested")
		if err := f.Create(); err != nil {
			logger.Error("flash:reset-failed", slog.String("err", err.Error()))
			return
		}
		if err := fatvol.Mkfs(adapter, blockdev.NumSectors, config.VolumeLabel()); err != nil {
			logger.Error("fatvol:format-failed", slog.String("err", err.Error()))
			return
		}
		if err := vol.Mount(); err != nil {
			logger.Error("fatvol:mount-failed", slog.String("err", err.Error()))
			return
		}
		welcome := "Atari 8-bit PicoCart\r\n(c)2023 Electrotrains\r\nDrag ROM,CAR & XEX files in here!\r\n"
		if err := vol.WriteFile("WELCOME.TXT", []byte(welcome)); err != nil {
			logger.Warn("fatvol:welcome-write-failed", slog.String("err", err.Error()))
		}
	}

	ctl.Run() // never returns on real hardware: hands off into internal/mapper
}
