package browse

import (
	"testing"

	"a8picocart/firmware/internal/cartram"
	"a8picocart/firmware/internal/fatvol"
)

func TestReadDirectoryFiltersAndSorts(t *testing.T) {
	vol := fatvol.NewMemVolume()
	vol.Put("ZGAME.CAR", false, make([]byte, 16))
	vol.Put("AGAME.ROM", false, make([]byte, 16))
	vol.Put("NOTES.TXT", false, make([]byte, 16)) // wrong extension, filtered
	vol.Put("SUB", true, nil)
	vol.Put("HIDDEN.CAR", false, make([]byte, 16))
	vol.SetHidden("HIDDEN.CAR", true, false)

	ram := &cartram.Buffer{}
	n, errMsg := ReadDirectory(vol, ram, "/")
	if errMsg != "" {
		t.Fatalf("ReadDirectory() error = %q", errMsg)
	}
	if n != 3 {
		t.Fatalf("ReadDirectory() n = %d, want 3 (SUB, AGAME.ROM, ZGAME.CAR)", n)
	}
	e0, _ := ram.DirEntryAt(0)
	if !e0.IsDir() || e0.LongName() != "SUB" {
		t.Fatalf("entry 0 = dir=%v name=%q, want dir SUB first", e0.IsDir(), e0.LongName())
	}
	e1, _ := ram.DirEntryAt(1)
	if e1.LongName() != "AGAME.ROM" {
		t.Fatalf("entry 1 = %q, want AGAME.ROM (case-insensitive before ZGAME)", e1.LongName())
	}
	e2, _ := ram.DirEntryAt(2)
	if e2.LongName() != "ZGAME.CAR" {
		t.Fatalf("entry 2 = %q, want ZGAME.CAR", e2.LongName())
	}
}

func TestReadDirectoryMissingPath(t *testing.T) {
	vol := fatvol.NewMemVolume()
	_, errMsg := ReadDirectory(vol, &cartram.Buffer{}, "/NOPE")
	if errMsg != "Can't read directory" {
		t.Fatalf("ReadDirectory() error = %q, want Can't read directory", errMsg)
	}
}

func TestSearchDirectoryRecursesAndScores(t *testing.T) {
	vol := fatvol.NewMemVolume()
	vol.Put("PACMAN.CAR", false, make([]byte, 16))
	vol.Put("SUB", true, nil)
	vol.Put("SUB/MANIAC.ROM", false, make([]byte, 16))
	vol.Put("SUB/ZPACMAN2.CAR", false, make([]byte, 16))

	ram := &cartram.Buffer{}
	n, errMsg := SearchDirectory(vol, ram, "/", "MAN")
	if errMsg != "" {
		t.Fatalf("SearchDirectory() error = %q", errMsg)
	}
	if n != 3 {
		t.Fatalf("SearchDirectory() n = %d, want 3", n)
	}
	// PACMAN.CAR and ZPACMAN2.CAR match mid-string (score 0); MANIAC.ROM
	// matches at position 0 (score 1) and must sort first.
	first, _ := ram.DirEntryAt(0)
	if first.LongName() != "MANIAC.ROM" {
		t.Fatalf("entry 0 = %q, want MANIAC.ROM (prefix match sorts first)", first.LongName())
	}
	if first.IsDir() {
		t.Fatal("entry 0 IsDir() = true, scores must be reset to false before returning")
	}
	if first.FullPath() != "/SUB" {
		t.Fatalf("entry 0 FullPath() = %q, want /SUB", first.FullPath())
	}
}

func TestSearchDirectoryNoMatches(t *testing.T) {
	vol := fatvol.NewMemVolume()
	vol.Put("GAME.CAR", false, make([]byte, 16))
	ram := &cartram.Buffer{}
	n, errMsg := SearchDirectory(vol, ram, "/", "zzz")
	if errMsg != "" {
		t.Fatalf("SearchDirectory() error = %q", errMsg)
	}
	if n != 0 {
		t.Fatalf("SearchDirectory() n = %d, want 0", n)
	}
}

func TestIsValidFile(t *testing.T) {
	cases := map[string]bool{
		"GAME.CAR": true, "game.car": true, "GAME.ROM": true,
		"GAME.XEX": true, "DISK.ATR": true,
		"NOTES.TXT": false, "NOEXT": false,
	}
	for name, want := range cases {
		if got := isValidFile(name); got != want {
			t.Errorf("isValidFile(%q) = %v, want %v", name, got, want)
		}
	}
}
