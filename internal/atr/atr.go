// Package atr is C5: the ATR disk-image session. It holds at most one
// mounted ATR file and translates (sector, 128-byte page) coordinates to a
// byte offset using the mixed 128/large-sector rule spec.md §4.7 describes.
// Grounded on original_source's mount_atr/read_atr_sector/write_atr_sector.
package atr

import (
	"a8picocart/firmware/internal/atrhdr"
	"a8picocart/firmware/internal/fatvol"
)

// Mount error codes, matching original_source's mount_atr return values
// exactly (surfaced to the host via the command channel as numeric codes).
const (
	MountOK          = 0
	MountNoMedia     = 1
	MountNoFile      = 2
	MountBadHeader   = 3
)

// IOError values, matching read/write_atr_sector's return codes.
const (
	IOOK          = 0
	IONotMounted  = 1
	IOInvalid     = 2
)

// PageSize is the fixed 128-byte unit ATR sector I/O operates in.
const PageSize = 128

// Session holds the single currently-mounted ATR image. Lifecycle per
// spec.md §3: created on first mount request, replaced (never stacked) by a
// later mount, and never explicitly closed on power loss.
type Session struct {
	vol fatvol.Volume

	path     string
	header   atrhdr.Header
	fileSize int64
	file     fatvol.File
}

// New returns an ATR session reading/writing files through vol.
func New(vol fatvol.Volume) *Session {
	return &Session{vol: vol}
}

// Mounted reports whether an ATR image is currently mounted.
func (s *Session) Mounted() bool { return s.path != "" }

// Header returns the mounted image's 16-byte ATR header. Only valid when
// Mounted().
func (s *Session) Header() atrhdr.Header { return s.header }

// Mount opens filename read/write and validates its ATR header. Unlike
// original_source's mount_atr, it closes any previously mounted file
// before opening the new one.
func (s *Session) Mount(filename string) int {
	if s.vol == nil {
		return MountNoMedia
	}
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	f, err := s.vol.Open(filename, true)
	if err != nil {
		return MountNoFile
	}
	hdrBuf := make([]byte, atrhdr.Size)
	n, err := f.Read(hdrBuf)
	if err != nil || n != atrhdr.Size {
		f.Close()
		return MountBadHeader
	}
	hdr, err := atrhdr.Decode(hdrBuf)
	if err != nil {
		f.Close()
		return MountBadHeader
	}
	s.path = filename
	s.header = hdr
	s.fileSize = f.Size()
	s.file = f
	return MountOK
}

// offset computes the byte offset of (sector, page) per spec.md §4.7: the
// first three sectors are always 128 B regardless of the header's declared
// sector size; sector 4 and above use the header's SectorSz, addressed in
// 128 B pages.
func (s *Session) offset(sector uint16, page uint8) int64 {
	off := int64(atrhdr.Size)
	if sector <= 3 {
		off += int64(sector-1) * PageSize
	} else {
		off += 3*PageSize + int64(sector-4)*int64(s.header.SectorSz) + int64(page)*PageSize
	}
	return off
}

// ReadSector reads one 128-byte page into buf (must be PageSize bytes).
// Reads beyond the end of the file return a zeroed page with no error,
// matching original_source's "return blank sector" behavior.
func (s *Session) ReadSector(sector uint16, page uint8, buf []byte) int {
	if !s.Mounted() {
		return IONotMounted
	}
	if sector == 0 {
		return IOInvalid
	}
	off := s.offset(sector, page)
	if off > s.fileSize-PageSize {
		for i := range buf[:PageSize] {
			buf[i] = 0
		}
		return IOOK
	}
	if err := s.file.Seek(off); err != nil {
		return IOInvalid
	}
	n, err := s.file.Read(buf[:PageSize])
	if err != nil || n != PageSize {
		return IOInvalid
	}
	return IOOK
}

// WriteSector writes one 128-byte page from buf. Writes past the end of the
// file are rejected (original_source does not grow ATR files).
func (s *Session) WriteSector(sector uint16, page uint8, buf []byte) int {
	if !s.Mounted() {
		return IONotMounted
	}
	if sector == 0 {
		return IOInvalid
	}
	off := s.offset(sector, page)
	if off > s.fileSize-PageSize {
		return IOInvalid
	}
	if err := s.file.Seek(off); err != nil {
		return IOInvalid
	}
	n, err := s.file.Write(buf[:PageSize])
	if err != nil || n != PageSize {
		return IOInvalid
	}
	return IOOK
}
