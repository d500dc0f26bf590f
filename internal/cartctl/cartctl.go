// Package cartctl is C7: the boot-ROM command channel. It owns the 256-byte
// register bank the Atari-side boot ROM mirrors at $D500-$D5FF and the
// dispatcher that interprets a write to $D5DF as a command, mirroring
// original_source's cart_d5xx[] array and atari_cart_main's command
// if/else chain. The actual $D5xx bus polling loop is Controller.Run in the
// tinygo-only poll_rp2040.go, built on internal/rp2040io; the rest of this
// package is pure Go so the whole state machine is host-testable.
package cartctl

import (
	"strings"

	"a8picocart/firmware/internal/atr"
	"a8picocart/firmware/internal/browse"
	"a8picocart/firmware/internal/cartram"
	"a8picocart/firmware/internal/fatvol"
	"a8picocart/firmware/internal/loader"
)

// Command opcodes, matching original_source's CART_CMD_* defines exactly
// (these values are part of the Atari-side boot ROM's ABI and can't change
// independently of it).
const (
	CmdOpenItem      = 0x00
	CmdReadCurDir    = 0x01
	CmdGetDirEntry   = 0x02
	CmdUpDir         = 0x03
	CmdRootDir       = 0x04
	CmdSearch        = 0x05
	CmdLoadSoftOS    = 0x10
	CmdSoftOSChunk   = 0x11
	CmdReadATRSector  = 0x21
	CmdWriteATRSector = 0x22
	CmdATRHeader      = 0x23
	CmdResetFlash     = 0xF0
	CmdNoCart         = 0xFE
	CmdActivateCart   = 0xFF
)

// osROMSize is the patched-OS image size original_source copies out of
// the shared cartridge buffer into its own os_rom array.
const osROMSize = 16 * 1024

// Registers is the 256-byte bank mirroring the $D500-$D5FF I/O window the
// Atari-side boot ROM reads and writes.
type Registers [256]byte

// Activation is returned by Dispatch only for CmdActivateCart: it tells
// the caller (Controller.Run's polling loop) what to hand control to next — a mapper
// family (via C8) or ATR block-I/O mode (handled entirely inside C7).
type Activation struct {
	Kind    loader.Kind
	ATRMode bool
}

// Controller is the command-channel state machine. One Controller exists
// per device; it is not safe for concurrent use (nothing in this design
// calls Dispatch from more than one goroutine — see internal/cartram).
type Controller struct {
	Regs Registers

	vol fatvol.Volume
	ram *cartram.Buffer
	atr *atr.Session

	curPath  string
	itemPath string // resolved path of the most recently OPEN_ITEM'd entry
	cartType loader.Kind
	isATR    bool

	osROM [osROMSize]byte

	// OnResetFlash, if set, is invoked for CmdResetFlash (joystick-0-fire
	// boot override) — wired to the FTL/flash-reformat routine by C9.
	OnResetFlash func()
}

// New returns a Controller operating on vol and the shared buffer ram.
func New(vol fatvol.Volume, ram *cartram.Buffer) *Controller {
	return &Controller{vol: vol, ram: ram, atr: atr.New(vol)}
}

// Dispatch executes one command, mirroring atari_cart_main's dispatch
// chain. It returns a non-nil *Activation only when cmd is
// CmdActivateCart; all other commands report their result through Regs.
func (c *Controller) Dispatch(cmd byte) *Activation {
	switch cmd {
	case CmdOpenItem:
		c.openItem()
	case CmdReadCurDir:
		c.readCurDir()
	case CmdGetDirEntry:
		c.getDirEntry()
	case CmdUpDir:
		c.upDir()
	case CmdRootDir:
		c.curPath = ""
	case CmdSearch:
		c.search()
	case CmdLoadSoftOS:
		c.loadSoftOS()
	case CmdSoftOSChunk:
		c.softOSChunk()
	case CmdReadATRSector:
		c.readATRSector()
	case CmdWriteATRSector:
		c.writeATRSector()
	case CmdATRHeader:
		c.atrHeader()
	case CmdResetFlash:
		if c.OnResetFlash != nil {
			c.OnResetFlash()
		}
	case CmdNoCart:
		c.cartType = loader.None
		c.isATR = false
	case CmdActivateCart:
		return c.activateCart()
	}
	return nil
}

func (c *Controller) openItem() {
	n := int(c.Regs[0x00])
	entry, err := c.ram.DirEntryAt(n)
	if err != nil {
		c.Regs[0x01] = 4
		putCString(c.Regs[0x02:], "No directory listing")
		return
	}
	if entry.IsDir() {
		c.curPath = joinPath(c.curPath, entry.ShortName())
		c.Regs[0x01] = 0 // path changed
		return
	}

	dir := entry.FullPath()
	if dir == "" {
		dir = c.curPath
	}
	path := joinPath(dir, entry.ShortName())

	if strings.EqualFold(extOf(path), "ATR") {
		c.itemPath = path
		c.isATR = true
		c.cartType = loader.None
		c.Regs[0x01] = 3
		return
	}

	kind, errMsg := loader.Load(c.vol, c.ram, path)
	c.isATR = false
	if errMsg == "" {
		c.cartType = kind
		c.itemPath = path
		if kind == loader.XEX {
			c.Regs[0x01] = 2
		} else {
			c.Regs[0x01] = 1
		}
		return
	}
	c.cartType = loader.None
	c.Regs[0x01] = 4
	putCString(c.Regs[0x02:], errMsg)
}

func (c *Controller) readCurDir() {
	count, errMsg := browse.ReadDirectory(c.vol, c.ram, c.curPath)
	if errMsg == "" {
		c.Regs[0x01] = 0
		c.Regs[0x02] = byte(count)
		return
	}
	c.Regs[0x01] = 1
	putCString(c.Regs[0x02:], errMsg)
}

func (c *Controller) getDirEntry() {
	n := int(c.Regs[0x00])
	entry, err := c.ram.DirEntryAt(n)
	if err != nil {
		return
	}
	c.Regs[0x01] = boolByte(entry.IsDir())
	putCString(c.Regs[0x02:], entry.LongName())
}

func (c *Controller) upDir() {
	i := strings.LastIndexByte(c.curPath, '/')
	if i < 0 {
		c.curPath = ""
		return
	}
	c.curPath = c.curPath[:i]
}

func (c *Controller) search() {
	needle := cString(c.Regs[0x00:0x20])
	count, errMsg := browse.SearchDirectory(c.vol, c.ram, c.curPath, needle)
	if errMsg == "" {
		c.Regs[0x01] = 0
		c.Regs[0x02] = byte(count)
		return
	}
	c.Regs[0x01] = 1
	putCString(c.Regs[0x02:], errMsg)
}

// loadSoftOS stages the UNO_OS.ROM patched OS image into c.osROM. Matches
// original_source exactly, including its quirk of reporting success (Regs
// 0x01 = 0) even when the load failed — the boot ROM never checks this
// result, so no caller has ever depended on it being accurate.
func (c *Controller) loadSoftOS() {
	_, errMsg := loader.Load(c.vol, c.ram, "UNO_OS.ROM")
	if errMsg == "" {
		copy(c.osROM[:], c.ram.Bytes()[:osROMSize])
	}
	c.Regs[0x01] = 0
}

func (c *Controller) softOSChunk() {
	n := int(c.Regs[0x00])
	copy(c.Regs[0x01:0x01+128], c.osROM[n*128:n*128+128])
}

func (c *Controller) readATRSector() {
	sector := uint16(c.Regs[0x02])<<8 | uint16(c.Regs[0x01])
	page := c.Regs[0x03]
	ret := c.atr.ReadSector(sector, page, c.Regs[0x02:0x02+128])
	c.Regs[0x01] = byte(ret)
}

func (c *Controller) writeATRSector() {
	sector := uint16(c.Regs[0x02])<<8 | uint16(c.Regs[0x01])
	page := c.Regs[0x03]
	ret := c.atr.WriteSector(sector, page, c.Regs[0x04:0x04+128])
	c.Regs[0x01] = byte(ret)
}

// atrHeader reports the mounted ATR's header, or failure if nothing is
// mounted. original_source's equivalent check (`!&mountedATRs[0].path[0]`)
// takes the address of an array member, which is never null — it always
// reports success even with no ATR mounted, copying stale memory. That is
// fixed here; see DESIGN.md.
func (c *Controller) atrHeader() {
	if !c.atr.Mounted() {
		c.Regs[0x01] = 1
		return
	}
	c.atr.Header().Encode(c.Regs[0x02 : 0x02+16])
	c.Regs[0x01] = 0
}

func (c *Controller) activateCart() *Activation {
	if c.isATR {
		ret := c.atr.Mount(c.itemPath)
		c.Regs[0x01] = byte(ret)
		if ret == atr.MountOK {
			c.atr.Header().Encode(c.Regs[0x02 : 0x02+16])
		}
		return &Activation{ATRMode: true}
	}
	return &Activation{Kind: c.cartType}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func extOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

func joinPath(dir, name string) string {
	if dir == "" {
		return "/" + name
	}
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// putCString null-terminates s into dst, truncating to fit, matching
// original_source's strcpy-into-fixed-buffer pattern.
func putCString(dst []byte, s string) {
	n := len(s)
	if n > len(dst)-1 {
		n = len(dst) - 1
	}
	copy(dst, s[:n])
	dst[n] = 0
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
