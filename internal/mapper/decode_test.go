package mapper

import "testing"

func TestXEGSBankSwitchable(t *testing.T) {
	x := NewXEGSBank(0x3, 0x6000, true) // 32K, switchable
	if !x.Enabled {
		t.Fatal("Enabled = false at power-on, want true")
	}
	x.OnCCTLWrite(0x02)
	if x.Bank != 2 {
		t.Fatalf("Bank = %d, want 2", x.Bank)
	}
	if got := x.OffsetS4(0x100); got != 2*8192+0x100 {
		t.Fatalf("OffsetS4 = %#x, want %#x", got, 2*8192+0x100)
	}
	if got := x.OffsetS5(0x100); got != 0x6100 {
		t.Fatalf("OffsetS5 = %#x, want 0x6100", got)
	}
	x.OnCCTLWrite(0x80)
	if x.Enabled {
		t.Fatal("Enabled = true after writing top bit set, want false")
	}
}

func TestXEGSBankNonSwitchableIgnoresTopBit(t *testing.T) {
	x := NewXEGSBank(0x7, 0xE000, false) // 64K, non-switchable
	x.OnCCTLWrite(0x85)
	if !x.Enabled {
		t.Fatal("Enabled = false on non-switchable variant, want always true")
	}
	if x.Bank != 5 {
		t.Fatalf("Bank = %d, want 5", x.Bank)
	}
}

func TestMegaCart16KHasNoBankSwitch(t *testing.T) {
	m := NewMegaCart(0) // 16K: mask 0 means bank is always forced to 0
	m.OnCCTLWrite(0xFF)
	if m.Bank != 0 {
		t.Fatalf("Bank = %d, want 0 (mask 0)", m.Bank)
	}
}

func TestMegaCart128K(t *testing.T) {
	m := NewMegaCart(0x7)
	m.OnCCTLWrite(0x05)
	if m.Bank != 5 {
		t.Fatalf("Bank = %d, want 5", m.Bank)
	}
	if got := m.OffsetS4(0x10); got != 5*16384+0x10 {
		t.Fatalf("OffsetS4 = %#x, want %#x", got, 5*16384+0x10)
	}
	if got := m.OffsetS5(0x10); got != 5*16384+0x2010 {
		t.Fatalf("OffsetS5 = %#x, want %#x", got, 5*16384+0x2010)
	}
}

func TestBountyBobBankSwitchesOnTriggerAddress(t *testing.T) {
	b := &BountyBob{}
	b.ReadS4(0x0FF7) // trigger: bank1 -> 1
	if b.Bank1 != 1 {
		t.Fatalf("Bank1 = %d, want 1", b.Bank1)
	}
	off := b.ReadS4(0x0010)
	if off != 1*0x1000+0x10 {
		t.Fatalf("ReadS4 offset = %#x, want %#x", off, 1*0x1000+0x10)
	}
	b.ReadS4(0x1FF9) // trigger: bank2 -> 3
	if b.Bank2 != 3 {
		t.Fatalf("Bank2 = %d, want 3", b.Bank2)
	}
}

func TestAtarimax128KAddressDecode(t *testing.T) {
	a := NewAtarimax128K()
	a.OnCCTLAddr(0x05) // within 0xE0 guard, bit 0x10 clear -> enabled
	if a.Bank != 5 || !a.Enabled {
		t.Fatalf("Bank=%d Enabled=%v, want 5 true", a.Bank, a.Enabled)
	}
	a.OnCCTLAddr(0x1A) // bit 0x10 set -> disabled
	if a.Enabled {
		t.Fatal("Enabled = true, want false")
	}
	a.OnCCTLAddr(0xE5) // outside guard (addr&0xE0 != 0) -> ignored
	if a.Bank != byte(0x1A&0xF) {
		t.Fatalf("Bank changed on out-of-range write: %d", a.Bank)
	}
}

func TestOSSTypeBFixedUpperHalf(t *testing.T) {
	o := NewOSSTypeB()
	if o.Bank != 1 {
		t.Fatalf("initial Bank = %d, want 1", o.Bank)
	}
	if got := o.OffsetS5(0x1010); got != 0x010 {
		t.Fatalf("upper-half offset = %#x, want 0x010", got)
	}
	o.OnCCTLAddr(0x09) // a3=1 a0=1 -> bank 2
	if o.Bank != 2 || !o.Enabled {
		t.Fatalf("Bank=%d Enabled=%v, want 2 true", o.Bank, o.Enabled)
	}
	o.OnCCTLAddr(0x08) // a3=1 a0=0 -> disable
	if o.Enabled {
		t.Fatal("Enabled = true, want false")
	}
}

func TestSICBankAndEnablePolarity(t *testing.T) {
	s := NewSIC128K()
	s.OnCCTLWrite(0x63) // bank=3, bit0x40 set -> RD5 low (disabled), bit0x20 set -> RD4 high (enabled)
	if s.bank() != 3 {
		t.Fatalf("bank = %d, want 3", s.bank())
	}
	if s.RD5High {
		t.Fatal("RD5High = true, want false (0x40 set disables S5)")
	}
	if !s.RD4High {
		t.Fatal("RD4High = false, want true (0x20 set enables S4)")
	}
}

func TestSDX128KTwoRegisterRanges(t *testing.T) {
	s := NewSDX(true)
	s.OnCCTLAddr(0xE3) // (~3)&7 = 4, base 8 -> bank 12
	if s.Bank != 12 {
		t.Fatalf("Bank = %d, want 12", s.Bank)
	}
	s.OnCCTLAddr(0xF3) // (~3)&7 = 4, no base -> bank 4
	if s.Bank != 4 {
		t.Fatalf("Bank = %d, want 4", s.Bank)
	}
}

func TestDiamondVsExpressGateOnDifferentNibble(t *testing.T) {
	d := NewDiamondExpress(0xD0)
	d.OnCCTLAddr(0x70) // wrong nibble for Diamond, ignored
	if d.Bank != 0 {
		t.Fatalf("Bank changed on wrong-nibble write: %d", d.Bank)
	}
	d.OnCCTLAddr(0xD1)
	if d.Bank != int((^uint16(0xD1))&0x7) {
		t.Fatalf("Bank = %d, want %d", d.Bank, int((^uint16(0xD1))&0x7))
	}
}

func TestBlizzard16KLatchesDisabled(t *testing.T) {
	b := NewBlizzard16K()
	b.OnCCTLAccess()
	if b.Enabled {
		t.Fatal("Enabled = true after CCTL access, want false (one-way latch)")
	}
}

func TestMicrocalcFifthPositionDisables(t *testing.T) {
	m := NewMicrocalc()
	for i := 0; i < 3; i++ {
		m.OnCCTLAccess()
		if !m.Enabled {
			t.Fatalf("disabled too early at iteration %d (bank=%d)", i, m.Bank)
		}
	}
	m.OnCCTLAccess() // 4th access lands on bank 4 -> disabled
	if m.Bank != 4 || m.Enabled {
		t.Fatalf("Bank=%d Enabled=%v, want 4 false", m.Bank, m.Enabled)
	}
	m.OnCCTLAccess() // wraps back to bank 0
	if m.Bank != 0 || !m.Enabled {
		t.Fatalf("Bank=%d Enabled=%v, want 0 true", m.Bank, m.Enabled)
	}
}

func TestAdawliah32KNeverDisables(t *testing.T) {
	a := &Adawliah32K{}
	for i := 0; i < 10; i++ {
		a.OnCCTLAccess()
		if !a.Enabled() {
			t.Fatalf("Enabled() = false at iteration %d, want always true (dead disable branch)", i)
		}
		if a.Bank > 3 {
			t.Fatalf("Bank = %d, want <= 3 (masked to 2 bits)", a.Bank)
		}
	}
}

func TestXEXLoaderPageBank(t *testing.T) {
	x := &XEXLoader{}
	x.OnCCTLWrite(0, 0x34)
	x.OnCCTLWrite(1, 0x01)
	if x.bank != 0x0134 {
		t.Fatalf("bank = %#x, want 0x0134", x.bank)
	}
	if got := x.Offset(0x10); got != 0x0134*256+0x10 {
		t.Fatalf("Offset = %#x, want %#x", got, 0x0134*256+0x10)
	}
}

func TestTurbosoftBankMaskBySize(t *testing.T) {
	t64 := NewTurbosoft(0x7)
	t64.OnCCTLAddr(0x1F) // bank masked to 3 bits -> 7, bit 0x10 set -> disabled
	if t64.Bank != 0x7 || t64.Enabled {
		t.Fatalf("Bank=%d Enabled=%v, want 7 false", t64.Bank, t64.Enabled)
	}
}
