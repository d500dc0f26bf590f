package cartctl

import (
	"testing"

	"a8picocart/firmware/internal/cartram"
	"a8picocart/firmware/internal/fatvol"
	"a8picocart/firmware/internal/loader"
)

func newTestVol() *fatvol.MemVolume {
	vol := fatvol.NewMemVolume()
	hdr := make([]byte, 16)
	hdr[7] = 12 // XEGS 32K
	body := make([]byte, 32768)
	body[0] = 0x5A
	vol.Put("GAME.CAR", false, append(hdr, body...))
	vol.Put("SUB", true, nil)
	return vol
}

func TestReadCurDirThenOpenFile(t *testing.T) {
	vol := newTestVol()
	ram := &cartram.Buffer{}
	c := New(vol, ram)

	c.Dispatch(CmdReadCurDir)
	if c.Regs[0x01] != 0 {
		t.Fatalf("READ_CUR_DIR status = %d, want 0", c.Regs[0x01])
	}
	if c.Regs[0x02] != 2 {
		t.Fatalf("READ_CUR_DIR count = %d, want 2 (GAME.CAR, SUB)", c.Regs[0x02])
	}

	// entries sort dirs-first: index 0 is SUB, index 1 is GAME.CAR
	c.Regs[0x00] = 1
	c.Dispatch(CmdOpenItem)
	if c.Regs[0x01] != 1 {
		t.Fatalf("OPEN_ITEM status = %d, want 1 (file loaded)", c.Regs[0x01])
	}
	if c.cartType != loader.XEGS32K {
		t.Fatalf("cartType = %v, want XEGS32K", c.cartType)
	}
	if ram.Bytes()[0] != 0x5A {
		t.Fatalf("ram[0] = %#x, want 0x5a", ram.Bytes()[0])
	}
}

func TestOpenDirectoryChangesPath(t *testing.T) {
	vol := newTestVol()
	ram := &cartram.Buffer{}
	c := New(vol, ram)

	c.Dispatch(CmdReadCurDir)
	c.Regs[0x00] = 0 // SUB, sorted first
	c.Dispatch(CmdOpenItem)
	if c.Regs[0x01] != 0 {
		t.Fatalf("OPEN_ITEM(dir) status = %d, want 0", c.Regs[0x01])
	}
	if c.curPath != "/SUB" {
		t.Fatalf("curPath = %q, want /SUB", c.curPath)
	}

	c.Dispatch(CmdUpDir)
	if c.curPath != "" {
		t.Fatalf("curPath after UP_DIR = %q, want \"\"", c.curPath)
	}
}

func TestActivateCartReturnsKind(t *testing.T) {
	vol := newTestVol()
	ram := &cartram.Buffer{}
	c := New(vol, ram)
	c.Dispatch(CmdReadCurDir)
	c.Regs[0x00] = 1
	c.Dispatch(CmdOpenItem)

	act := c.Dispatch(CmdActivateCart)
	if act == nil {
		t.Fatal("ACTIVATE_CART returned nil Activation")
	}
	if act.ATRMode {
		t.Fatal("ATRMode = true, want false")
	}
	if act.Kind != loader.XEGS32K {
		t.Fatalf("Kind = %v, want XEGS32K", act.Kind)
	}
}

func TestActivateATRMountsAndReturnsHeader(t *testing.T) {
	vol := fatvol.NewMemVolume()
	hdrBuf := make([]byte, 16)
	hdrBuf[0], hdrBuf[1] = 0x96, 0x02
	hdrBuf[4], hdrBuf[5] = 128, 0
	vol.Put("DISK.ATR", false, append(hdrBuf, make([]byte, 3*128)...))

	ram := &cartram.Buffer{}
	c := New(vol, ram)
	c.itemPath = "/DISK.ATR"
	c.isATR = true

	act := c.Dispatch(CmdActivateCart)
	if !act.ATRMode {
		t.Fatal("ATRMode = false, want true")
	}
	if c.Regs[0x01] != 0 {
		t.Fatalf("mount status = %d, want 0", c.Regs[0x01])
	}
	if c.Regs[0x02] != 0x96 || c.Regs[0x03] != 0x02 {
		t.Fatalf("header bytes = %#x %#x, want 0x96 0x02", c.Regs[0x02], c.Regs[0x03])
	}
}

func TestNoCartResetsState(t *testing.T) {
	vol := newTestVol()
	ram := &cartram.Buffer{}
	c := New(vol, ram)
	c.cartType = loader.XEGS32K

	c.Dispatch(CmdNoCart)
	if c.cartType != loader.None {
		t.Fatalf("cartType = %v, want None", c.cartType)
	}
}

func TestResetFlashInvokesHook(t *testing.T) {
	vol := newTestVol()
	ram := &cartram.Buffer{}
	c := New(vol, ram)
	called := false
	c.OnResetFlash = func() { called = true }

	c.Dispatch(CmdResetFlash)
	if !called {
		t.Fatal("OnResetFlash hook was not invoked")
	}
}

func TestATRHeaderBeforeMountFails(t *testing.T) {
	vol := fatvol.NewMemVolume()
	ram := &cartram.Buffer{}
	c := New(vol, ram)
	c.Dispatch(CmdATRHeader)
	if c.Regs[0x01] != 1 {
		t.Fatalf("ATR_HEADER status = %d, want 1 (not mounted)", c.Regs[0x01])
	}
}
