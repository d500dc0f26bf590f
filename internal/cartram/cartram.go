// Package cartram holds the single 128 KiB scratch buffer shared by the
// directory browser, the file loader, the XEX bootstrap, and — once a
// cartridge is activated — the mapper emulators. It models the tagged-union
// re-architecture suggested for the original's bare byte array: a View tag
// plus explicit transition methods, so a mapper loop can never observe
// stale directory bytes left behind by a prior browse.
package cartram

import "errors"

// Size is the fixed capacity of the shared buffer: the hard cap on any
// loaded cartridge image, directory listing, or XEX payload.
const Size = 128 * 1024

// DirEntrySize is the packed size of one directory record: 1 (isDir) +
// 13 (short name) + 32 (long name) + 210 (full path) = 256.
const DirEntrySize = 256

const (
	offIsDir     = 0
	offShortName = 1
	offLongName  = offShortName + 13
	offFullPath  = offLongName + 32
)

// MaxDirEntries caps a directory listing or search result at 255 records
// (the count the command channel reports in one byte); Size bytes would
// hold 512.
const MaxDirEntries = 255

// View identifies what the buffer currently holds.
type View uint8

const (
	ViewNone View = iota
	ViewDirectory
	ViewCartImage
	ViewXEX
)

func (v View) String() string {
	switch v {
	case ViewDirectory:
		return "directory"
	case ViewCartImage:
		return "cart-image"
	case ViewXEX:
		return "xex"
	default:
		return "none"
	}
}

// ErrWrongView is returned when a component tries to read the buffer under
// a view other than the one currently active.
var ErrWrongView = errors.New("cartram: buffer not held under requested view")

// Buffer is the shared 128 KiB scratch area. It is not safe for concurrent
// use: spec's concurrency model guarantees it is mutated in turn by the
// menu-ROM-driven components (C4/C5/C6/C7) and only ever read, never
// written, by an active mapper (C8).
type Buffer struct {
	data [Size]byte
	view View
}

// View reports which logical contents the buffer currently holds.
func (b *Buffer) View() View { return b.view }

// TakeForDirectory zeroes the buffer and marks it as holding a directory
// listing, returning the raw backing array for C6 to fill.
func (b *Buffer) TakeForDirectory() *[Size]byte {
	b.data = [Size]byte{}
	b.view = ViewDirectory
	return &b.data
}

// TakeForCartImage zeroes the buffer and marks it as holding a loaded
// cartridge image, returning the raw backing array for C4 to fill.
func (b *Buffer) TakeForCartImage() *[Size]byte {
	b.data = [Size]byte{}
	b.view = ViewCartImage
	return &b.data
}

// TakeForXEX zeroes the buffer and marks it as holding an XEX payload.
func (b *Buffer) TakeForXEX() *[Size]byte {
	b.data = [Size]byte{}
	b.view = ViewXEX
	return &b.data
}

// Bytes returns the raw backing array regardless of view, for the one
// legitimate cross-view reader: an active C8 mapper loop, which only ever
// reads once a cart image or XEX payload has been staged.
func (b *Buffer) Bytes() *[Size]byte { return &b.data }

// DirEntryView is a thin accessor over one 256-byte directory record living
// directly inside Buffer.data — no copy, no unsafe pointer cast, matching
// the original's in-place record layout.
type DirEntryView struct {
	rec []byte
}

// DirEntryAt returns an accessor for entry n of a directory listing.
// Returns ErrWrongView if the buffer isn't currently a directory listing.
func (b *Buffer) DirEntryAt(n int) (DirEntryView, error) {
	if b.view != ViewDirectory {
		return DirEntryView{}, ErrWrongView
	}
	off := n * DirEntrySize
	return DirEntryView{rec: b.data[off : off+DirEntrySize]}, nil
}

func (e DirEntryView) IsDir() bool     { return e.rec[offIsDir] != 0 }
func (e DirEntryView) SetIsDir(v bool) {
	if v {
		e.rec[offIsDir] = 1
	} else {
		e.rec[offIsDir] = 0
	}
}

func (e DirEntryView) ShortName() string      { return cString(e.rec[offShortName:offLongName]) }
func (e DirEntryView) SetShortName(s string)   { putCString(e.rec[offShortName:offLongName], s) }
func (e DirEntryView) LongName() string        { return cString(e.rec[offLongName:offFullPath]) }
func (e DirEntryView) SetLongName(s string)    { putCString(e.rec[offLongName:offFullPath], s) }
func (e DirEntryView) FullPath() string        { return cString(e.rec[offFullPath:DirEntrySize]) }
func (e DirEntryView) SetFullPath(s string)    { putCString(e.rec[offFullPath:DirEntrySize], s) }

// Raw exposes the underlying 256-byte record, e.g. for sort swaps.
func (e DirEntryView) Raw() []byte { return e.rec }

func putCString(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	n := len(s)
	if n > len(dst)-1 {
		n = len(dst) - 1
	}
	copy(dst, s[:n])
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
