// Package mapper is C8: the bank-switch decode logic for every cartridge
// mapper family, plus (in the tinygo-tagged activate_rp2040.go) the GPIO
// hot loop that runs it against real cartridge bus pins. Grounded on
// original_source's atari_cart.c emulate_* functions, one decoder per
// family. Every decoder here is pure Go — no GPIO, no hardware — so the
// bank arithmetic is unit-testable independent of the polling loop.
package mapper

// Window identifies which 8K CPU-visible region a read falls in, mirroring
// original_source's S4/S5 chip-select checks.
type Window int

const (
	WindowS4 Window = iota
	WindowS5
)

// Fixed8K is the stateless Standard8K/Phoenix-without-disable/Cart2K/Cart4K
// shape: the whole image is one fixed 8K window at S5 with no bank
// register, matching emulate_standard_8k (S5 only variant used once
// load_file's post-transform has placed the image correctly).
type Fixed8K struct{}

// Offset returns the byte offset into the cartridge image for an S5-window
// read at addr (addr is already masked to 13 bits by the caller).
func (Fixed8K) Offset(addr uint16) int { return int(addr) }

// Standard16K is emulate_standard_16k: two fixed 8K windows, no bank
// register, no write side effects.
type Standard16K struct{}

func (Standard16K) Offset(win Window, addr uint16) int {
	if win == WindowS4 {
		return int(addr)
	}
	return 0x2000 | int(addr)
}

// XEGSBank is the bank-switchable XEGS 32/64/128K family (also MegaCart's
// sibling SWXEGS variants), grounded on emulate_XEGS_32k/64k/128k. S4 shows
// the selected bank; S5 always shows the last (highest) bank, fixed.
type XEGSBank struct {
	BankMask   byte // 0x3, 0x7, or 0xF for 32K/64K/128K (2/3/4 low bits)
	FixedTop   int  // S5's fixed offset: 0x6000, 0xE000, or 0x1E000
	Switchable bool

	Bank    byte
	Enabled bool
}

// NewXEGSBank returns a decoder with RD4/RD5 enabled (the power-on state
// every emulate_XEGS_* function establishes before its loop starts).
func NewXEGSBank(bankMask byte, fixedTop int, switchable bool) *XEGSBank {
	return &XEGSBank{BankMask: bankMask, FixedTop: fixedTop, Switchable: switchable, Enabled: true}
}

// OnCCTLWrite applies a write to the $D5xx I/O window, matching the
// "CCTL low + write" branch of emulate_XEGS_*.
func (x *XEGSBank) OnCCTLWrite(data byte) {
	x.Bank = data & x.BankMask
	if x.Switchable {
		x.Enabled = data&0x80 == 0
	}
}

// OffsetS4 is only valid while Enabled.
func (x *XEGSBank) OffsetS4(addr uint16) int { return int(x.Bank)*8192 + int(addr) }

// OffsetS5 is only valid while Enabled.
func (x *XEGSBank) OffsetS5(addr uint16) int { return x.FixedTop | int(addr) }

// MegaCart is emulate_megacart: a write-selected 16K bank (not 8K), with a
// top-bit disable, spanning both windows: S4 shows the bank's low 8K and
// S5 its high 8K.
type MegaCart struct {
	BankMask byte // 0x1/0x3/0x7 for 32K/64K/128K; 0 for 16K (one fixed bank)

	Bank    byte
	Enabled bool
}

func NewMegaCart(bankMask byte) *MegaCart { return &MegaCart{BankMask: bankMask, Enabled: true} }

func (m *MegaCart) OnCCTLWrite(data byte) {
	m.Bank = data & m.BankMask
	m.Enabled = data&0x80 == 0
}

func (m *MegaCart) OffsetS4(addr uint16) int { return int(m.Bank)*16384 + int(addr) }
func (m *MegaCart) OffsetS5(addr uint16) int { return int(m.Bank)*16384 + (0x2000 | int(addr)) }

// BountyBob holds the two independently-banked 4K windows inside the
// fixed 8K S4 region; original_source switches banks as a *side effect of
// the read itself* (accessing one of four trigger addresses per half).
// Grounded on emulate_bounty_bob.
type BountyBob struct {
	Bank1, Bank2 int // 0-3 each, selecting a 4K slice: bank*4096
}

// ReadS4 returns the data offset for an S4-window access and applies any
// bank-switch triggered by addr, mirroring the read-as-side-effect
// behavior of the original hardware.
func (b *BountyBob) ReadS4(addr uint16) int {
	if addr&0x1000 != 0 {
		off := b.Bank2*0x1000 + int(addr&0xFFF) + 0x4000
		switch addr {
		case 0x1FF6:
			b.Bank2 = 0
		case 0x1FF7:
			b.Bank2 = 1
		case 0x1FF8:
			b.Bank2 = 2
		case 0x1FF9:
			b.Bank2 = 3
		}
		return off
	}
	off := b.Bank1*0x1000 + int(addr&0xFFF)
	switch addr {
	case 0x0FF6:
		b.Bank1 = 0
	case 0x0FF7:
		b.Bank1 = 1
	case 0x0FF8:
		b.Bank1 = 2
	case 0x0FF9:
		b.Bank1 = 3
	}
	return off
}

// OffsetS5 is emulate_bounty_bob's fixed top 8K (addresses 0x8000-0x9FFF
// of the 40K image).
func (BountyBob) OffsetS5(addr uint16) int { return 0x8000 | int(addr) }

// Atarimax128K is emulate_atarimax_128k: a 4-bit bank register written
// through the low 5 address bits of the CCTL window, S5-only.
type Atarimax128K struct {
	Bank    byte
	Enabled bool
}

func NewAtarimax128K() *Atarimax128K { return &Atarimax128K{Enabled: true} }

func (a *Atarimax128K) OnCCTLAddr(addr uint16) {
	if addr&0xE0 != 0 {
		return
	}
	a.Bank = byte(addr & 0xF)
	a.Enabled = addr&0x10 == 0
}

func (a *Atarimax128K) OffsetS5(addr uint16) int { return int(a.Bank)*8192 + int(addr) }

// Williams is emulate_williams: an 8-bank (3-bit) S5-only cart gated the
// same way as Atarimax but decoded from a different address field width.
type Williams struct {
	Bank    byte
	Enabled bool
}

func NewWilliams() *Williams { return &Williams{Enabled: true} }

func (w *Williams) OnCCTLAddr(addr uint16) {
	if addr&0xF0 != 0 {
		return
	}
	w.Bank = byte(addr & 0x7)
	w.Enabled = addr&0x8 == 0
}

func (w *Williams) OffsetS5(addr uint16) int { return int(w.Bank)*8192 + int(addr) }

// OSSTypeB is emulate_OSS_B: a 3-way 4K bank register plus a fixed 4K
// region holding the image's first 4K, mirrored into the upper half of
// every S5 access.
type OSSTypeB struct {
	Bank    byte // 1, 2, or 3
	Enabled bool
}

func NewOSSTypeB() *OSSTypeB { return &OSSTypeB{Bank: 1, Enabled: true} }

func (o *OSSTypeB) OnCCTLAddr(addr uint16) {
	a0, a3 := addr&1 != 0, addr&8 != 0
	if a3 && !a0 {
		o.Enabled = false
		return
	}
	o.Enabled = true
	switch {
	case !a3 && !a0:
		o.Bank = 1
	case !a3 && a0:
		o.Bank = 3
	case a3 && a0:
		o.Bank = 2
	}
}

func (o *OSSTypeB) OffsetS5(addr uint16) int {
	if addr&0x1000 != 0 {
		return int(addr & 0xFFF)
	}
	return int(o.Bank)*4096 + int(addr&0xFFF)
}

// OSSTypeA is emulate_OSS_A (034M/043M variants): similar shape to
// OSSTypeB but with a fixed bank #3, the image's last 4K (not bank #0), in
// the upper half and a
// differently-numbered bank-select address decode.
type OSSTypeA struct {
	Is034M  bool
	Bank    byte
	Enabled bool
}

func NewOSSTypeA(is034M bool) *OSSTypeA { return &OSSTypeA{Is034M: is034M, Enabled: true} }

func (o *OSSTypeA) OnCCTLAddr(addr uint16) {
	addr &= 0xF
	if addr&0x8 != 0 {
		o.Enabled = false
		return
	}
	o.Enabled = true
	switch addr {
	case 0x0:
		o.Bank = 0
	case 0x3, 0x7:
		if o.Is034M {
			o.Bank = 1
		} else {
			o.Bank = 2
		}
	case 0x4:
		if o.Is034M {
			o.Bank = 2
		} else {
			o.Bank = 1
		}
	}
}

func (o *OSSTypeA) OffsetS5(addr uint16) int {
	if addr&0x1000 != 0 {
		return int(addr) | 0x2000
	}
	return int(o.Bank)*4096 + int(addr&0xFFF)
}

// SIC128K is emulate_SIC: the only family whose CCTL window is also
// readable (it echoes the last byte written) and whose bank register packs
// both bank number and the RD4/RD5 enable bits together.
type SIC128K struct {
	Byte     byte
	RD4High  bool
	RD5High  bool
}

func NewSIC128K() *SIC128K { return &SIC128K{RD4High: false, RD5High: true} }

func (s *SIC128K) OnCCTLWrite(data byte) {
	s.Byte = data
	s.RD5High = data&0x40 == 0
	s.RD4High = data&0x20 != 0
}

func (s *SIC128K) bank() byte { return s.Byte & 0x7 }

func (s *SIC128K) OffsetS4(addr uint16) int { return int(s.bank())*16384 + int(addr) }
func (s *SIC128K) OffsetS5(addr uint16) int { return int(s.bank())*16384 + (0x2000 | int(addr)) }

// SDX is emulate_SDX: a bank decoded from the one's-complement of the low
// 3 CCTL address bits, with the 128K variant adding a second register
// range that lands in the bottom half of the image.
type SDX struct {
	Is128K  bool
	Bank    int // absolute 8K bank index across the whole image
	Enabled bool
}

func NewSDX(is128K bool) *SDX { return &SDX{Is128K: is128K, Enabled: true} }

func (s *SDX) OnCCTLAddr(addr uint16) {
	if addr&0xF0 == 0xE0 {
		base := 0
		if s.Is128K {
			base = 8 // bank index offset, i.e. the upper 64K half
		}
		s.Bank = base + int((^addr)&0x7)
		s.Enabled = addr&0x8 == 0
		return
	}
	if s.Is128K && addr&0xF0 == 0xF0 {
		s.Bank = int((^addr) & 0x7)
		s.Enabled = addr&0x8 == 0
	}
}

func (s *SDX) OffsetS5(addr uint16) int { return s.Bank*8192 + int(addr) }

// DiamondExpress is emulate_diamond_express: identical shape to SDX-64K
// but gated on a configurable CCTL address nibble (0xD0 for Diamond, 0x70
// for Express) instead of SDX's fixed 0xE0.
type DiamondExpress struct {
	CCTLAddr byte
	Bank     int
	Enabled  bool
}

func NewDiamondExpress(cctlAddr byte) *DiamondExpress {
	return &DiamondExpress{CCTLAddr: cctlAddr, Enabled: true}
}

func (d *DiamondExpress) OnCCTLAddr(addr uint16) {
	if byte(addr&0xF0) != d.CCTLAddr {
		return
	}
	d.Bank = int((^addr) & 0x7)
	d.Enabled = addr&0x8 == 0
}

func (d *DiamondExpress) OffsetS5(addr uint16) int { return d.Bank*8192 + int(addr) }

// Blizzard16K is emulate_blizzard: a fixed 16K image (like Standard16K)
// that permanently disables itself on the first CCTL access — there is no
// path back to enabled, matching the original exactly.
type Blizzard16K struct {
	Enabled bool
}

func NewBlizzard16K() *Blizzard16K { return &Blizzard16K{Enabled: true} }

func (b *Blizzard16K) OnCCTLAccess() { b.Enabled = false }

func (Blizzard16K) Offset(win Window, addr uint16) int {
	if win == WindowS4 {
		return int(addr)
	}
	return 0x2000 | int(addr)
}

// Turbosoft is emulate_turbosoft: an 8-bit bank register (3 or 4 bits
// used, depending on size) decoded straight from the CCTL address, S5-only.
type Turbosoft struct {
	BankMask byte
	Bank     byte
	Enabled  bool
}

func NewTurbosoft(bankMask byte) *Turbosoft { return &Turbosoft{BankMask: bankMask, Enabled: true} }

func (t *Turbosoft) OnCCTLAddr(addr uint16) {
	t.Bank = byte(addr) & t.BankMask
	t.Enabled = addr&0x10 == 0
}

func (t *Turbosoft) OffsetS5(addr uint16) int { return int(t.Bank)*8192 + int(addr) }

// Atrax128K is emulate_atrax: a write-selected (not address-decoded) 4-bit
// bank register, S5-only, same write-capture shape as XEGSBank.
type Atrax128K struct {
	Bank    byte
	Enabled bool
}

func NewAtrax128K() *Atrax128K { return &Atrax128K{Enabled: true} }

func (a *Atrax128K) OnCCTLWrite(data byte) {
	a.Bank = data & 0xF
	a.Enabled = data&0x80 == 0
}

func (a *Atrax128K) OffsetS5(addr uint16) int { return int(a.Bank)*8192 + int(addr) }

// Microcalc is emulate_microcalc: every CCTL access (regardless of
// address or read/write) advances a 5-way counter; the 5th position
// disables the cartridge. Preserved verbatim including the fact that this
// consumes one of its five positions purely to disable — a cart with this
// mapper only ever exposes 4 usable 8K banks per power cycle before the
// counter must wrap back through disable to reach bank 0 again.
type Microcalc struct {
	Bank    byte
	Enabled bool
}

func NewMicrocalc() *Microcalc { return &Microcalc{Enabled: true} }

func (m *Microcalc) OnCCTLAccess() {
	m.Bank = (m.Bank + 1) % 5
	m.Enabled = m.Bank != 4
}

func (m *Microcalc) OffsetS5(addr uint16) int { return int(m.Bank)*8192 + int(addr) }

// Phoenix8K is emulate_phoenix_8k: a fixed 8K image (also serves
// Blizzard4K per the CAR-type table) that permanently disables on the
// first CCTL access, like Blizzard16K but S5-only with no bank register.
type Phoenix8K struct {
	Enabled bool
}

func NewPhoenix8K() *Phoenix8K { return &Phoenix8K{Enabled: true} }

func (p *Phoenix8K) OnCCTLAccess() { p.Enabled = false }

func (Phoenix8K) OffsetS5(addr uint16) int { return int(addr) }

// Adawliah32K is emulate_adawliah_32k: a 4-way bank counter masked to 2
// bits. The original's "if bank==4, disable" branch is dead code — `(bank
// + 1) & 3` can only ever produce 0-3, so Enabled is unconditionally true
// here. Preserved verbatim: this cartridge family cannot be soft-disabled
// through $D5xx the way Microcalc can.
type Adawliah32K struct {
	Bank byte
}

func (a *Adawliah32K) OnCCTLAccess() {
	a.Bank = (a.Bank + 1) & 3
}

// Enabled always reports true — see the type doc comment.
func (Adawliah32K) Enabled() bool { return true }

func (a *Adawliah32K) OffsetS5(addr uint16) int { return int(a.Bank)*8192 + int(addr) }

// XEXLoader is feed_XEX_loader: a 9-bit page-bank register assembled from
// two single-byte writes to CCTL addresses 0 and 1, exposing the payload
// 256 bytes at a time through a single fixed page window.
type XEXLoader struct {
	bank uint16
}

// OnCCTLWrite applies a write within the CCTL window; addr is masked to
// the low byte the same way the original treats the write-side address.
func (x *XEXLoader) OnCCTLWrite(addr uint16, data byte) {
	switch addr & 0xFF {
	case 0:
		x.bank = (x.bank &^ 0xFF) | uint16(data)
	case 1:
		x.bank = (x.bank & 0x00FF) | (uint16(data) << 8 & 0xFF00)
	}
}

// Offset returns the byte offset of page byte addr (0-255) within the XEX
// payload, honoring the 9-bit page-bank register.
func (x *XEXLoader) Offset(addr uint16) int { return int(x.bank&0x1FF)*256 + int(addr&0xFF) }
