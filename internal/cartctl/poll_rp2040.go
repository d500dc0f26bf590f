//go:build tinygo

package cartctl

import (
	_ "embed"

	"a8picocart/firmware/internal/mapper"
	"a8picocart/firmware/internal/rp2040io"
)

// BootROM is the Atari-side boot ROM image the S5 window serves while a
// Controller is running the command channel -- the small 6502 program
// that drives OPEN_ITEM/READ_CUR_DIR/etc. over $D5xx. It is supplied as a
// build-time resource (assembled separately, the way the original ships
// a prebuilt rom.h); bootrom.bin is empty until a real image is embedded
// at build time, in which case S5 reads return 0. See DESIGN.md.
//
//go:embed bootrom.bin
var BootROM []byte

func waitPhi2High() uint32 {
	var pins uint32
	for {
		pins = rp2040io.ReadAll()
		if pins&rp2040io.PHI2Mask != 0 {
			return pins
		}
	}
}

func waitPhi2Low() {
	for rp2040io.ReadAll()&rp2040io.PHI2Mask != 0 {
	}
}

func outputByte(b byte) {
	rp2040io.SetDirOutMasked(rp2040io.DataMask)
	rp2040io.PutMasked(rp2040io.DataMask, uint32(b)<<rp2040io.DataShift)
	waitPhi2Low()
	rp2040io.SetDirInMasked(rp2040io.DataMask)
}

func captureWrittenByte() byte {
	last := rp2040io.ReadAll()
	for {
		pins := rp2040io.ReadAll()
		if pins&rp2040io.PHI2Mask == 0 {
			break
		}
		last = pins
	}
	return byte((last & rp2040io.DataMask) >> rp2040io.DataShift)
}

func setMMU(rd4, rd5 bool) {
	rp2040io.Put(rp2040io.RD4Pin, rd4)
	rp2040io.Put(rp2040io.RD5Pin, rd5)
}

// Run drives the boot-ROM command channel until the Atari-side code
// activates a cartridge, mirroring original_source's atari_cart_main
// outer loop around emulate_boot_rom/emulate_cartridge: every command
// re-enters the polling loop (resetting Regs[0x00] the way a fresh call
// to emulate_boot_rom would), except CmdActivateCart, which either flips
// into ATR mode (RD5 driven low, command channel keeps running) or hands
// off to internal/mapper's bus loop for the rest of the session.
func (c *Controller) Run() {
	rd5High := true
	setMMU(false, rd5High)

commands:
	for {
		c.Regs[0x00] = 0x11 // "we are here", matches emulate_boot_rom's entry write

		for {
			pins := waitPhi2High()
			switch {
			case pins&rp2040io.CCTLMask == 0:
				if pins&rp2040io.RWMask != 0 {
					addr := uint16(pins & rp2040io.AddrMask)
					outputByte(c.Regs[addr&0xFF])
					continue
				}
				addr := uint16(pins) & 0xFF
				data := captureWrittenByte()
				c.Regs[addr] = data
				if addr != 0xDF {
					continue
				}
				act := c.Dispatch(data)
				if act == nil {
					continue commands
				}
				if act.ATRMode {
					rd5High = false
					setMMU(false, rd5High)
					continue commands
				}
				mapper.Activate(act.Kind, c.ram)
				return // unreachable: Activate never returns on real hardware
			case pins&rp2040io.S5Mask == 0:
				addr := uint16(pins & rp2040io.AddrMask)
				var b byte
				if len(BootROM) > 0 {
					b = BootROM[int(addr)%len(BootROM)]
				}
				outputByte(b)
			default:
				waitPhi2Low()
			}
		}
	}
}
