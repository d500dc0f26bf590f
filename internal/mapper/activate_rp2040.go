//go:build tinygo

package mapper

import (
	"a8picocart/firmware/internal/cartram"
	"a8picocart/firmware/internal/loader"
	"a8picocart/firmware/internal/rp2040io"
)

// This file is the GPIO hot loop behind every decoder in decode.go,
// grounded on original_source's emulate_cartridge dispatch and each
// emulate_* function's PHI2-synchronized bus polling. Real hardware needs
// these loops resident in RAM, not flash, the way original_source marks
// them __not_in_flash_func — TinyGo has no equivalent function attribute,
// so on real hardware this requires a linker script placing this package's
// code in RAM; see DESIGN.md.

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

// outputByte drives b onto the data bus for the remainder of the current
// PHI2-high half-cycle, then releases the bus, mirroring every emulate_*
// read branch's SET_DATA_MODE_OUT/.../SET_DATA_MODE_IN bracket.
func outputByte(b byte) {
	rp2040io.SetDirOutMasked(rp2040io.DataMask)
	rp2040io.PutMasked(rp2040io.DataMask, uint32(b)<<rp2040io.DataShift)
	waitPhi2Low()
	rp2040io.SetDirInMasked(rp2040io.DataMask)
}

// captureWrittenByte samples the data bus on the falling edge of PHI2,
// matching the "read data bus on falling edge of phi2" pattern every
// write-capable CCTL branch uses.
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

// Activate runs the bus-emulation loop for kind against ram until reset.
// It never returns in normal operation — matching emulate_cartridge's
// infinite per-mapper loops — and is only ever called from cartctl's
// Controller.Run after CmdActivateCart.
func Activate(kind loader.Kind, ram *cartram.Buffer) {
	img := ram.Bytes()
	switch kind {
	case loader.Standard8K, loader.Cart2K, loader.Cart4K:
		runFixed8K(img)
	case loader.Standard16K:
		runStandard16K(img)
	case loader.XEGS32K:
		runXEGSBank(img, NewXEGSBank(0x3, 0x6000, false))
	case loader.SWXEGS32K:
		runXEGSBank(img, NewXEGSBank(0x3, 0x6000, true))
	case loader.XEGS64K:
		runXEGSBank(img, NewXEGSBank(0x7, 0xE000, false))
	case loader.SWXEGS64K:
		runXEGSBank(img, NewXEGSBank(0x7, 0xE000, true))
	case loader.XEGS128K:
		runXEGSBank(img, NewXEGSBank(0xF, 0x1E000, false))
	case loader.SWXEGS128K:
		runXEGSBank(img, NewXEGSBank(0xF, 0x1E000, true))
	case loader.MegaCart16K:
		runMegaCart(img, NewMegaCart(0))
	case loader.MegaCart32K:
		runMegaCart(img, NewMegaCart(0x1))
	case loader.MegaCart64K:
		runMegaCart(img, NewMegaCart(0x3))
	case loader.MegaCart128K:
		runMegaCart(img, NewMegaCart(0x7))
	case loader.BountyBob:
		runBountyBob(img)
	case loader.Atarimax128K:
		runAtarimax128K(img)
	case loader.Williams64K:
		runWilliams(img)
	case loader.OSS16KTypeB, loader.OSS8K:
		runOSSTypeB(img)
	case loader.OSS16K034M:
		runOSSTypeA(img, true)
	case loader.OSS16K043M:
		runOSSTypeA(img, false)
	case loader.SIC128K:
		runSIC128K(img)
	case loader.SDX64K:
		runSDX(img, false)
	case loader.SDX128K:
		runSDX(img, true)
	case loader.Diamond64K:
		runDiamondExpress(img, 0xD0)
	case loader.Express64K:
		runDiamondExpress(img, 0x70)
	case loader.Blizzard16K:
		runBlizzard16K(img)
	case loader.Turbosoft64K:
		runTurbosoft(img, 0x7)
	case loader.Turbosoft128K:
		runTurbosoft(img, 0xF)
	case loader.Atrax128K:
		runAtrax128K(img)
	case loader.Microcalc:
		runMicrocalc(img)
	case loader.Phoenix8K, loader.Blizzard4K:
		runPhoenix8K(img)
	case loader.Adawliah32K:
		runAdawliah32K(img)
	case loader.XEX:
		runXEXLoader(img)
	default:
		// no cartridge: hold both lines low (cartridge invisible) and spin
		setMMU(false, false)
		for {
		}
	}
}

func runFixed8K(img *[cartram.Size]byte) {
	setMMU(false, true)
	d := Fixed8K{}
	for {
		for rp2040io.ReadAll()&rp2040io.S5Mask != 0 {
		}
		rp2040io.SetDirOutMasked(rp2040io.DataMask)
		for {
			pins := rp2040io.ReadAll()
			if pins&rp2040io.S5Mask != 0 {
				break
			}
			addr := uint16(pins & rp2040io.AddrMask)
			rp2040io.PutMasked(rp2040io.DataMask, uint32(img[d.Offset(addr)])<<rp2040io.DataShift)
		}
		rp2040io.SetDirInMasked(rp2040io.DataMask)
	}
}

func runStandard16K(img *[cartram.Size]byte) {
	setMMU(true, true)
	d := Standard16K{}
	for {
		pins := rp2040io.ReadAll()
		for pins&rp2040io.S4S5Mask == rp2040io.S4S5Mask {
			pins = rp2040io.ReadAll()
		}
		rp2040io.SetDirOutMasked(rp2040io.DataMask)
		if pins&rp2040io.S4Mask == 0 {
			for {
				pins = rp2040io.ReadAll()
				if pins&rp2040io.S4Mask != 0 {
					break
				}
				addr := uint16(pins & rp2040io.AddrMask)
				rp2040io.PutMasked(rp2040io.DataMask, uint32(img[d.Offset(WindowS4, addr)])<<rp2040io.DataShift)
			}
		} else {
			for {
				pins = rp2040io.ReadAll()
				if pins&rp2040io.S5Mask != 0 {
					break
				}
				addr := uint16(pins & rp2040io.AddrMask)
				rp2040io.PutMasked(rp2040io.DataMask, uint32(img[d.Offset(WindowS5, addr)])<<rp2040io.DataShift)
			}
		}
		rp2040io.SetDirInMasked(rp2040io.DataMask)
	}
}

func runXEGSBank(img *[cartram.Size]byte, b *XEGSBank) {
	setMMU(true, true)
	for {
		pins := waitPhi2High()
		switch {
		case pins&rp2040io.S4Mask == 0 && b.Enabled:
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[b.OffsetS4(addr)])
		case pins&rp2040io.S5Mask == 0 && b.Enabled:
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[b.OffsetS5(addr)])
		case pins&rp2040io.CCTLRWMask == 0:
			data := captureWrittenByte()
			b.OnCCTLWrite(data)
			setMMU(b.Enabled, b.Enabled)
		}
	}
}

func runMegaCart(img *[cartram.Size]byte, m *MegaCart) {
	setMMU(true, true)
	for {
		pins := waitPhi2High()
		switch {
		case pins&rp2040io.S4Mask == 0 && m.Enabled:
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[m.OffsetS4(addr)])
		case pins&rp2040io.S5Mask == 0 && m.Enabled:
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[m.OffsetS5(addr)])
		case pins&rp2040io.CCTLRWMask == 0:
			data := captureWrittenByte()
			m.OnCCTLWrite(data)
			setMMU(m.Enabled, m.Enabled)
		}
	}
}

func runBountyBob(img *[cartram.Size]byte) {
	setMMU(true, true)
	b := &BountyBob{}
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S4Mask == 0 {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[b.ReadS4(addr)])
		} else if pins&rp2040io.S5Mask == 0 {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[b.OffsetS5(addr)])
		}
		waitPhi2Low()
	}
}

func runAtarimax128K(img *[cartram.Size]byte) {
	setMMU(false, true)
	a := NewAtarimax128K()
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && a.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[a.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			addr := uint16(pins & rp2040io.AddrMask)
			a.OnCCTLAddr(addr)
			setMMU(false, a.Enabled)
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runWilliams(img *[cartram.Size]byte) {
	setMMU(false, true)
	w := NewWilliams()
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && w.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[w.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			addr := uint16(pins & rp2040io.AddrMask)
			w.OnCCTLAddr(addr)
			setMMU(false, w.Enabled)
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runOSSTypeB(img *[cartram.Size]byte) {
	setMMU(false, true)
	o := NewOSSTypeB()
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && o.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[o.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			addr := uint16(pins & rp2040io.AddrMask)
			o.OnCCTLAddr(addr)
			setMMU(false, o.Enabled)
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runOSSTypeA(img *[cartram.Size]byte, is034M bool) {
	setMMU(false, true)
	o := NewOSSTypeA(is034M)
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && o.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[o.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			addr := uint16(pins & rp2040io.AddrMask)
			o.OnCCTLAddr(addr)
			setMMU(false, o.Enabled)
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runSIC128K(img *[cartram.Size]byte) {
	s := NewSIC128K()
	setMMU(s.RD4High, s.RD5High)
	for {
		pins := waitPhi2High()
		switch {
		case pins&rp2040io.S4Mask == 0 && s.RD4High:
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[s.OffsetS4(addr)])
		case pins&rp2040io.S5Mask == 0 && s.RD5High:
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[s.OffsetS5(addr)])
		case pins&rp2040io.CCTLMask == 0:
			addr := uint16(pins & rp2040io.AddrMask)
			if addr&0xE0 == 0 {
				if pins&rp2040io.RWMask != 0 {
					outputByte(s.Byte)
				} else {
					data := captureWrittenByte()
					s.OnCCTLWrite(data)
					setMMU(s.RD4High, s.RD5High)
				}
			} else {
				waitPhi2Low()
			}
		default:
			waitPhi2Low()
		}
	}
}

func runSDX(img *[cartram.Size]byte, is128K bool) {
	setMMU(false, true)
	s := NewSDX(is128K)
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && s.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[s.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			addr := uint16(pins & rp2040io.AddrMask)
			s.OnCCTLAddr(addr)
			setMMU(false, s.Enabled)
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runDiamondExpress(img *[cartram.Size]byte, cctlAddr byte) {
	setMMU(false, true)
	d := NewDiamondExpress(cctlAddr)
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && d.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[d.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			addr := uint16(pins & rp2040io.AddrMask)
			d.OnCCTLAddr(addr)
			setMMU(false, d.Enabled)
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runBlizzard16K(img *[cartram.Size]byte) {
	setMMU(true, true)
	b := NewBlizzard16K()
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S4Mask == 0 && b.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[b.Offset(WindowS4, addr)])
		} else if pins&rp2040io.S5Mask == 0 && b.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[b.Offset(WindowS5, addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			b.OnCCTLAccess()
			setMMU(false, false)
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runTurbosoft(img *[cartram.Size]byte, bankMask byte) {
	setMMU(false, true)
	tb := NewTurbosoft(bankMask)
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && tb.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[tb.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			addr := uint16(pins & rp2040io.AddrMask)
			tb.OnCCTLAddr(addr)
			setMMU(false, tb.Enabled)
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runAtrax128K(img *[cartram.Size]byte) {
	setMMU(false, true)
	a := NewAtrax128K()
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && a.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[a.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLRWMask == 0 {
			data := captureWrittenByte()
			a.OnCCTLWrite(data)
			setMMU(false, a.Enabled)
		} else {
			waitPhi2Low()
		}
	}
}

func runMicrocalc(img *[cartram.Size]byte) {
	setMMU(false, true)
	m := NewMicrocalc()
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && m.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[m.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			m.OnCCTLAccess()
			setMMU(false, m.Enabled)
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runPhoenix8K(img *[cartram.Size]byte) {
	setMMU(false, true)
	p := NewPhoenix8K()
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && p.Enabled {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[p.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			p.OnCCTLAccess()
			setMMU(false, false)
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runAdawliah32K(img *[cartram.Size]byte) {
	setMMU(false, true)
	a := &Adawliah32K{}
	for {
		pins := waitPhi2High()
		if pins&rp2040io.S5Mask == 0 && a.Enabled() {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[a.OffsetS5(addr)])
		} else if pins&rp2040io.CCTLMask == 0 {
			a.OnCCTLAccess()
			waitPhi2Low()
		} else {
			waitPhi2Low()
		}
	}
}

func runXEXLoader(img *[cartram.Size]byte) {
	setMMU(false, false)
	x := &XEXLoader{}
	for {
		pins := waitPhi2High()
		if pins&rp2040io.CCTLMask != 0 {
			waitPhi2Low()
			continue
		}
		if pins&rp2040io.RWMask != 0 {
			addr := uint16(pins & rp2040io.AddrMask)
			outputByte(img[x.Offset(addr)])
			continue
		}
		addr := uint16(pins) & 0xFF
		data := captureWrittenByte()
		x.OnCCTLWrite(addr, data)
	}
}
