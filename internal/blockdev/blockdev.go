// Package blockdev is C3: the adapter translating the external FAT
// library's block API onto C2 (the FTL). Grounded on original_source's
// fatfs_disk.c, which plays the same role between FatFs's diskio contract
// and flash_fs.c.
package blockdev

import (
	"errors"

	"a8picocart/firmware/internal/ftl"
)

// SectorSize is the logical sector size the FAT library sees.
const SectorSize = 512

// NumSectors is the logical sector count the FAT library sees (matches
// ftl.NumLogicalSectors).
const NumSectors = ftl.NumLogicalSectors

var ErrOutOfRange = errors.New("blockdev: sector out of range")
var ErrVerifyFailed = errors.New("blockdev: write-verify mismatch")

// Adapter presents ftl.FTL as a FAT-library block device.
type Adapter struct {
	f *ftl.FTL
}

// New returns a block device adapter over f.
func New(f *ftl.FTL) *Adapter { return &Adapter{f: f} }

// Read fills buf (count*SectorSize bytes) starting at logical sector start.
func (a *Adapter) Read(buf []byte, start, count int) error {
	if start < 0 || count < 0 || start+count > NumSectors {
		return ErrOutOfRange
	}
	for i := 0; i < count; i++ {
		if err := a.f.ReadSector(uint16(start+i), buf[i*SectorSize:(i+1)*SectorSize]); err != nil {
			return err
		}
	}
	return nil
}

// Write writes buf (count*SectorSize bytes) starting at logical sector
// start, verifying each sector immediately after writing it.
func (a *Adapter) Write(buf []byte, start, count int) error {
	if start < 0 || count < 0 || start+count > NumSectors {
		return ErrOutOfRange
	}
	for i := 0; i < count; i++ {
		l := uint16(start + i)
		sector := buf[i*SectorSize : (i+1)*SectorSize]
		if err := a.f.WriteSector(l, sector); err != nil {
			return err
		}
		ok, err := a.f.VerifySector(l, sector)
		if err != nil {
			return err
		}
		if !ok {
			return ErrVerifyFailed
		}
	}
	return nil
}

// Sync forwards to the FTL's sync.
func (a *Adapter) Sync() error { return a.f.Sync() }
