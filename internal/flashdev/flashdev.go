// Package flashdev is C1: the flash block device. It exposes erase/program/
// read of 4 KiB physical flash sectors, masking interrupts for the entire
// duration of any erase or program so the flash controller never contends
// with instruction fetch mid-operation. The RP2040 implementation is
// grounded on the teacher's ota package, which already does exactly this
// kind of direct ROM-function flash access with interrupts masked — here
// retargeted from firmware-partition writes to FTL sector writes.
package flashdev

import "errors"

// SectorSize is the physical flash erase-block size.
const SectorSize = 4096

// BaseOffset is the flash offset at which the FTL region begins. Defaults
// to 1 MiB in, matching the original's HW_FLASH_STORAGE_BASE; main wires
// config.FlashBaseOffset() into this var before the first Device is opened.
var BaseOffset uint32 = 1024 * 1024

// NumSectors is the number of physical 4 KiB sectors in the FTL region
// (matches original_source flash_fs.c's NUM_FLASH_SECTORS).
const NumSectors = 3840

var (
	ErrSectorRange = errors.New("flashdev: physical sector out of range")
	ErrWriteFailed = errors.New("flashdev: program failed")
	ErrEraseFailed = errors.New("flashdev: erase failed")
)

// Device is the interface C2 (the FTL) consumes. Two implementations exist:
// flash_rp2040.go (tinygo, backed by direct ROM flash calls) and
// flash_file.go (!tinygo, backed by an in-memory/file-backed byte array for
// host testing).
type Device interface {
	// Read copies len(buf) bytes of physical sector p, starting at byte
	// offset off512*512, into buf. Ordinary memory load from the XIP window
	// on real hardware — never blocks, never masks interrupts.
	Read(p int, off512 int, buf []byte) error
	// Erase erases the entire 4 KiB physical sector p. Masks interrupts for
	// the duration on real hardware.
	Erase(p int) error
	// Program writes buf (must be a multiple of 256 bytes, the flash page
	// size) at byte offset off512*512 within physical sector p. The target
	// range must have been erased since its last program. Masks interrupts
	// for the duration on real hardware.
	Program(p int, off512 int, buf []byte) error
}

func checkSector(p int) error {
	if p < 0 || p >= NumSectors {
		return ErrSectorRange
	}
	return nil
}
