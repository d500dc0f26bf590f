// Package loader is C4: the cartridge-image file loader. It opens a chosen
// file through internal/fatvol, sniffs CAR/XEX/raw-ROM format, validates
// size, and populates the shared cartridge RAM buffer, returning a mapper
// Kind. Grounded on original_source's load_file and its CAR-type table.
package loader

import (
	"strings"

	"a8picocart/firmware/internal/cartram"
	"a8picocart/firmware/internal/fatvol"
)

// Kind identifies which C8 mapper family a loaded image should run under.
// Numeric values are arbitrary (unlike original_source's CART_TYPE_* macros,
// nothing in this Go port packs Kind into a byte that crosses a wire), but
// None is kept at the zero value so an unset Kind reads as "no cartridge".
type Kind int

const (
	None Kind = iota
	Standard8K
	Standard16K
	XEGS32K
	XEGS64K
	XEGS128K
	SWXEGS32K
	SWXEGS64K
	SWXEGS128K
	MegaCart16K
	MegaCart32K
	MegaCart64K
	MegaCart128K
	BountyBob
	Atarimax128K
	Williams64K
	OSS16KTypeB
	OSS8K
	OSS16K034M
	OSS16K043M
	SIC128K
	SDX64K
	SDX128K
	Diamond64K
	Express64K
	Blizzard16K
	Cart4K
	Turbosoft64K
	Turbosoft128K
	Atrax128K
	Microcalc
	Cart2K
	Phoenix8K
	Blizzard4K
	Adawliah32K
	XEX
)

// carType maps a CAR file's header byte 7 to a Kind and expected body size,
// transcribed verbatim from original_source's load_file if/else chain
// (spec.md §4.6's "fixed table").
var carType = map[int]struct {
	kind Kind
	size int
}{
	1:  {Standard8K, 8192},
	2:  {Standard16K, 16384},
	3:  {OSS16K034M, 16384},
	8:  {Williams64K, 65536},
	9:  {Express64K, 65536},
	10: {Diamond64K, 65536},
	11: {SDX64K, 65536},
	12: {XEGS32K, 32768},
	13: {XEGS64K, 65536},
	14: {XEGS128K, 131072},
	15: {OSS16KTypeB, 16384},
	17: {Atrax128K, 131072},
	18: {BountyBob, 40960},
	22: {Williams64K, 32768},
	26: {MegaCart16K, 16384},
	27: {MegaCart32K, 32768},
	28: {MegaCart64K, 65536},
	29: {MegaCart128K, 131072},
	33: {SWXEGS32K, 32768},
	34: {SWXEGS64K, 65536},
	35: {SWXEGS128K, 131072},
	39: {Phoenix8K, 8192},
	40: {Blizzard16K, 16384},
	41: {Atarimax128K, 131072},
	43: {SDX128K, 131072},
	44: {OSS8K, 8192},
	45: {OSS16K043M, 16384},
	46: {Blizzard4K, 4096},
	50: {Turbosoft64K, 65536},
	51: {Turbosoft128K, 131072},
	52: {Microcalc, 32768},
	54: {SIC128K, 131072},
	57: {Cart2K, 2048},
	58: {Cart4K, 4096},
	69: {Adawliah32K, 32768},
}

// carHeaderSize is the fixed prefix every .CAR file carries before the raw
// image; byte 7 selects the mapper kind.
const carHeaderSize = 16

// romSizeGuess maps a raw .ROM file's byte count to a Kind, for files with
// no header at all (spec.md §4.6, "guess by size").
var romSizeGuess = map[int]Kind{
	8 * 1024:   Standard8K,
	16 * 1024:  Standard16K,
	32 * 1024:  XEGS32K,
	64 * 1024:  XEGS64K,
	128 * 1024: XEGS128K,
}

// Errors surfaced to the command channel, matching spec.md §7's error text
// exactly so C7 can copy the message straight into the register bank.
const (
	ErrCantReadFlash    = "Can't read flash memory"
	ErrCantOpenFile     = "Can't open file"
	ErrBadCARFile       = "Bad CAR file"
	ErrCARWrongSize     = "CAR file is wrong size"
	ErrUnsupportedCAR   = "Unsupported CAR type"
	ErrTooBig           = "Cart file/XEX too big (>128k)"
	ErrUnsupportedROM   = "Unsupported ROM size"
	ErrCantReadFile     = "Can't read file"
)

// Load opens filename via vol, sniffs its format, and stages it into ram.
// Returns the resulting Kind (None on any error) and, on error, a message
// from the Err* constants above — the exact text spec.md §7 specifies.
func Load(vol fatvol.Volume, ram *cartram.Buffer, filename string) (Kind, string) {
	isCAR := hasExt(filename, "CAR")
	isXEX := hasExt(filename, "XEX")

	if err := vol.Mount(); err != nil {
		return None, ErrCantReadFlash
	}
	defer vol.Unmount()

	f, err := vol.Open(filename, false)
	if err != nil {
		return None, ErrCantOpenFile
	}
	defer f.Close()

	var expectedSize int
	var kind Kind
	if isCAR {
		hdr := make([]byte, carHeaderSize)
		n, err := f.Read(hdr)
		if err != nil || n != carHeaderSize {
			return None, ErrBadCARFile
		}
		entry, ok := carType[int(hdr[7])]
		if !ok {
			return None, ErrUnsupportedCAR
		}
		kind, expectedSize = entry.kind, entry.size
	}

	var dst *[cartram.Size]byte
	var bytesToRead int
	if isXEX {
		dst = ram.TakeForXEX()
		bytesToRead = cartram.Size - 4
	} else {
		dst = ram.TakeForCartImage()
		bytesToRead = cartram.Size
	}

	offset := 0
	if isXEX {
		offset = 4
	}
	size, tooBig, err := readAll(f, dst[offset:offset+bytesToRead])
	if err != nil {
		return None, ErrCantReadFile
	}
	if tooBig {
		return None, ErrTooBig
	}

	switch {
	case isCAR:
		if size != expectedSize {
			return None, ErrCARWrongSize
		}
	case isXEX:
		kind = XEX
		dst[0] = byte(size)
		dst[1] = byte(size >> 8)
		dst[2] = byte(size >> 16)
		dst[3] = 0
	default:
		k, ok := romSizeGuess[size]
		if !ok {
			return None, ErrUnsupportedROM
		}
		kind = k
	}

	applyPostLoadTransform(kind, dst)
	return kind, ""
}

// readAll reads up to len(dst) bytes, then probes for one more byte to
// detect an oversize file, matching original_source's "read 128k, then try
// to read one more byte" check.
func readAll(f fatvol.File, dst []byte) (n int, tooBig bool, err error) {
	total := 0
	for total < len(dst) {
		m, rerr := f.Read(dst[total:])
		if m == 0 {
			break
		}
		total += m
		if rerr != nil {
			break
		}
	}
	if total == len(dst) {
		probe := make([]byte, 1)
		m, _ := f.Read(probe)
		if m == 1 {
			return total, true, nil
		}
	}
	return total, false, nil
}

// applyPostLoadTransform performs the mapper-specific RAM layout fixups
// spec.md §4.6 calls out, so the 8K/Phoenix loops can serve 2K/4K images
// without their own bank logic.
func applyPostLoadTransform(kind Kind, ram *[cartram.Size]byte) {
	switch kind {
	case Cart4K:
		copy(ram[4096:8192], ram[0:4096])
		for i := 0; i < 4096; i++ {
			ram[i] = 0xFF
		}
	case Cart2K:
		copy(ram[6144:8192], ram[0:6144])
		for i := 0; i < 6144; i++ {
			ram[i] = 0xFF
		}
	case Blizzard4K:
		copy(ram[4096:8192], ram[0:4096])
	}
}

func hasExt(filename, ext string) bool {
	return len(filename) >= len(ext)+1 &&
		strings.EqualFold(filename[len(filename)-len(ext):], ext) &&
		filename[len(filename)-len(ext)-1] == '.'
}
