// Command cartimg is a host-side inspection and provisioning tool for
// a8picocart image files: .CAR/.ROM/.XEX cartridge images, .ATR disk
// images, and raw FTL flash-region dumps. Adapted from the teacher's
// bindicator-cli (itself a telnet/OTA client for a networked device);
// this device has no network interface, so the UF2-inspection and
// confirm-before-destructive-operation shapes are kept but retargeted at
// the cartridge/disk formats this firmware actually deals with.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"a8picocart/firmware/internal/atrhdr"
	"a8picocart/firmware/internal/flashdev"
	"a8picocart/firmware/internal/ftl"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch flag.Arg(0) {
	case "inspect":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: cartimg inspect <file>")
			os.Exit(1)
		}
		err = inspect(flag.Arg(1))
	case "format":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: cartimg format <image-file>")
			os.Exit(1)
		}
		err = format(flag.Arg(1))
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("cartimg - a8picocart image inspection/provisioning tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cartimg inspect <file>         Identify and describe a CAR/ROM/XEX/ATR file")
	fmt.Println("  cartimg format <image-file>    Write a freshly-formatted FTL flash image")
	fmt.Println()
	fmt.Println("format overwrites <image-file> if it already exists, after you")
	fmt.Println("confirm; if stdin isn't a terminal, an existing file is left as is.")
}

// inspect sniffs the file by extension/header and prints what would show up
// on the command channel's ATR_HEADER/OPEN_ITEM responses, without needing
// a device attached.
func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("File: %s (%d bytes)\n", path, len(data))

	if len(data) >= atrhdr.Size {
		if h, err := atrhdr.Decode(data[:atrhdr.Size]); err == nil {
			printATRHeader(h, len(data))
			return nil
		}
	}

	if hasExt(path, "CAR") {
		return inspectCAR(data)
	}
	if hasExt(path, "XEX") {
		fmt.Println("  Kind: XEX (Atari executable, loaded via boot-loader stub)")
		return nil
	}

	fmt.Println("  Kind: raw ROM image (no header); size determines mapper on-device")
	return nil
}

func printATRHeader(h atrhdr.Header, fileSize int) {
	fmt.Println("  Kind: ATR disk image")
	fmt.Printf("  Sector size: %d bytes\n", h.SectorSz)
	paragraphs := uint32(h.ParsLow) | uint32(h.ParsHigh)<<16
	fmt.Printf("  Image size: %d bytes (header reports %d paragraphs)\n", fileSize-atrhdr.Size, paragraphs)
	fmt.Printf("  Write-protected: %v\n", h.Flags&0x01 != 0)
}

func inspectCAR(data []byte) error {
	const headerSize = 16
	if len(data) < headerSize {
		return fmt.Errorf("too small to be a CAR file")
	}
	carType := data[7]
	fmt.Printf("  Kind: CAR cartridge image, type byte %d\n", carType)
	fmt.Printf("  Body size: %d bytes\n", len(data)-headerSize)
	return nil
}

func hasExt(name, ext string) bool {
	n := len(name)
	e := len(ext)
	if n < e+1 {
		return false
	}
	tail := name[n-e:]
	if name[n-e-1] != '.' {
		return false
	}
	for i := 0; i < e; i++ {
		c := tail[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		want := ext[i]
		if want >= 'a' && want <= 'z' {
			want -= 'a' - 'A'
		}
		if c != want {
			return false
		}
	}
	return true
}

// format writes a freshly-erased, freshly-formatted FTL image to path,
// exercising the same ftl.New/Create path main.go runs on first boot, but
// against a host file instead of RP2040 flash.
func format(path string) error {
	if _, err := os.Stat(path); err == nil {
		if !confirmOverwrite(path) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	dev, err := newFileImageDevice(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer dev.Close()

	f := ftl.New(dev)
	if err := f.Create(); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	fmt.Printf("Formatted %s: %d logical sectors over %d physical sectors\n",
		path, ftl.NumLogicalSectors, flashdev.NumSectors)
	return nil
}

func confirmOverwrite(path string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	fmt.Printf("%s already exists and will be overwritten. Continue? [y/N] ", path)
	var answer string
	fmt.Scanln(&answer)
	return answer == "y" || answer == "Y"
}

// fileImageDevice implements flashdev.Device against a plain host file,
// sized to flashdev.NumSectors*flashdev.SectorSize and pre-filled with the
// NOR-erased 0xFF state on creation, mirroring flash_file.go's in-memory
// FileDevice but persisted to disk for cartimg's own use.
type fileImageDevice struct {
	f *os.File
}

func newFileImageDevice(path string) (*fileImageDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	size := int64(flashdev.NumSectors) * flashdev.SectorSize
	blank := make([]byte, flashdev.SectorSize)
	for i := range blank {
		blank[i] = 0xFF
	}
	for off := int64(0); off < size; off += flashdev.SectorSize {
		if _, err := f.WriteAt(blank, off); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &fileImageDevice{f: f}, nil
}

func (d *fileImageDevice) Close() error { return d.f.Close() }

func (d *fileImageDevice) Read(p int, off512 int, buf []byte) error {
	_, err := d.f.ReadAt(buf, int64(p)*flashdev.SectorSize+int64(off512)*512)
	return err
}

func (d *fileImageDevice) Erase(p int) error {
	blank := make([]byte, flashdev.SectorSize)
	for i := range blank {
		blank[i] = 0xFF
	}
	_, err := d.f.WriteAt(blank, int64(p)*flashdev.SectorSize)
	return err
}

func (d *fileImageDevice) Program(p int, off512 int, buf []byte) error {
	existing := make([]byte, len(buf))
	off := int64(p)*flashdev.SectorSize + int64(off512)*512
	if _, err := d.f.ReadAt(existing, off); err != nil {
		return err
	}
	for i := range buf {
		existing[i] &= buf[i] // flash program can only clear bits
	}
	_, err := d.f.WriteAt(existing, off)
	return err
}
