package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspectCAR(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 16+8192)
	data[7] = 1 // Standard8K
	path := writeFile(t, dir, "test.car", data)

	if err := inspect(path); err != nil {
		t.Errorf("inspect failed: %v", err)
	}
}

func TestInspectATR(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 16+720*128)
	data[0] = 0x96
	data[1] = 0x02
	data[4] = 128 // sector size low byte
	path := writeFile(t, dir, "test.atr", data)

	if err := inspect(path); err != nil {
		t.Errorf("inspect failed: %v", err)
	}
}

func TestInspectRawROM(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 8192)
	path := writeFile(t, dir, "test.rom", data)

	if err := inspect(path); err != nil {
		t.Errorf("inspect failed: %v", err)
	}
}

func TestFormatWritesFreshImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flash.img")

	if err := format(path); err != nil {
		t.Fatalf("format failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty image file")
	}
}

func TestHasExt(t *testing.T) {
	cases := []struct {
		name string
		ext  string
		want bool
	}{
		{"GAME.CAR", "CAR", true},
		{"game.car", "CAR", true},
		{"GAME.XEX", "CAR", false},
		{"CAR", "CAR", false},
	}
	for _, c := range cases {
		if got := hasExt(c.name, c.ext); got != c.want {
			t.Errorf("hasExt(%q, %q) = %v, want %v", c.name, c.ext, got, c.want)
		}
	}
}
