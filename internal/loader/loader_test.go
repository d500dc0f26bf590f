package loader

import (
	"testing"

	"a8picocart/firmware/internal/cartram"
	"a8picocart/firmware/internal/fatvol"
)

func TestLoadCAR_XEGS32K(t *testing.T) {
	vol := fatvol.NewMemVolume()
	body := make([]byte, 32768)
	body[0] = 0x42
	hdr := make([]byte, 16)
	hdr[7] = 12 // XEGS 32K
	vol.Put("GAME.CAR", false, append(hdr, body...))

	ram := &cartram.Buffer{}
	kind, errMsg := Load(vol, ram, "GAME.CAR")
	if errMsg != "" {
		t.Fatalf("Load() error = %q", errMsg)
	}
	if kind != XEGS32K {
		t.Fatalf("Load() kind = %v, want XEGS32K", kind)
	}
	if ram.Bytes()[0] != 0x42 {
		t.Fatalf("ram[0] = %#x, want 0x42", ram.Bytes()[0])
	}
}

func TestLoadCAR_WrongSize(t *testing.T) {
	vol := fatvol.NewMemVolume()
	hdr := make([]byte, 16)
	hdr[7] = 12
	vol.Put("GAME.CAR", false, append(hdr, make([]byte, 16384)...))

	ram := &cartram.Buffer{}
	kind, errMsg := Load(vol, ram, "GAME.CAR")
	if kind != None {
		t.Fatalf("Load() kind = %v, want None", kind)
	}
	if errMsg != ErrCARWrongSize {
		t.Fatalf("Load() error = %q, want %q", errMsg, ErrCARWrongSize)
	}
}

func TestLoadCAR_UnsupportedType(t *testing.T) {
	vol := fatvol.NewMemVolume()
	hdr := make([]byte, 16)
	hdr[7] = 200
	vol.Put("GAME.CAR", false, append(hdr, make([]byte, 8192)...))

	_, errMsg := Load(vol, &cartram.Buffer{}, "GAME.CAR")
	if errMsg != ErrUnsupportedCAR {
		t.Fatalf("Load() error = %q, want %q", errMsg, ErrUnsupportedCAR)
	}
}

func TestLoadXEX(t *testing.T) {
	vol := fatvol.NewMemVolume()
	body := make([]byte, 5000)
	body[0] = 0x99
	vol.Put("GAME.XEX", false, body)

	ram := &cartram.Buffer{}
	kind, errMsg := Load(vol, ram, "GAME.XEX")
	if errMsg != "" {
		t.Fatalf("Load() error = %q", errMsg)
	}
	if kind != XEX {
		t.Fatalf("Load() kind = %v, want XEX", kind)
	}
	want := []byte{0x88, 0x13, 0x00, 0x00, 0x99}
	got := ram.Bytes()[0:5]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ram[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestLoadRawROM_GuessBySize(t *testing.T) {
	vol := fatvol.NewMemVolume()
	vol.Put("GAME.ROM", false, make([]byte, 16*1024))

	kind, errMsg := Load(vol, &cartram.Buffer{}, "GAME.ROM")
	if errMsg != "" {
		t.Fatalf("Load() error = %q", errMsg)
	}
	if kind != Standard16K {
		t.Fatalf("Load() kind = %v, want Standard16K", kind)
	}
}

func TestLoadRawROM_BadSize(t *testing.T) {
	vol := fatvol.NewMemVolume()
	vol.Put("GAME.ROM", false, make([]byte, 12345))

	_, errMsg := Load(vol, &cartram.Buffer{}, "GAME.ROM")
	if errMsg != ErrUnsupportedROM {
		t.Fatalf("Load() error = %q, want %q", errMsg, ErrUnsupportedROM)
	}
}

func TestLoadTooBig(t *testing.T) {
	vol := fatvol.NewMemVolume()
	vol.Put("GAME.ROM", false, make([]byte, cartram.Size+1))

	_, errMsg := Load(vol, &cartram.Buffer{}, "GAME.ROM")
	if errMsg != ErrTooBig {
		t.Fatalf("Load() error = %q, want %q", errMsg, ErrTooBig)
	}
}

func TestLoadMissingFile(t *testing.T) {
	vol := fatvol.NewMemVolume()
	_, errMsg := Load(vol, &cartram.Buffer{}, "NOPE.ROM")
	if errMsg != ErrCantOpenFile {
		t.Fatalf("Load() error = %q, want %q", errMsg, ErrCantOpenFile)
	}
}

func TestApplyPostLoadTransform4K(t *testing.T) {
	vol := fatvol.NewMemVolume()
	hdr := make([]byte, 16)
	hdr[7] = 58 // 4K
	body := make([]byte, 4096)
	body[0] = 0x77
	vol.Put("GAME.CAR", false, append(hdr, body...))

	ram := &cartram.Buffer{}
	kind, errMsg := Load(vol, ram, "GAME.CAR")
	if errMsg != "" {
		t.Fatalf("Load() error = %q", errMsg)
	}
	if kind != Cart4K {
		t.Fatalf("Load() kind = %v, want Cart4K", kind)
	}
	b := ram.Bytes()
	if b[4096] != 0x77 {
		t.Fatalf("b[4096] = %#x, want 0x77", b[4096])
	}
	if b[0] != 0xFF {
		t.Fatalf("b[0] = %#x, want 0xFF", b[0])
	}
}
