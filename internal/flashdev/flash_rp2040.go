//go:build tinygo

package flashdev

/*
#include <stdint.h>
#include <stddef.h>

// ROM function lookup, duplicated from the same TinyGo-internal pattern
// used for the firmware-update path: a 16-bit two-character code looked up
// through the bootrom's well-known function table.
#define ROM_TABLE_CODE(c1, c2) ((c1) | ((c2) << 8))

#define BOOTROM_FUNC_TABLE_OFFSET   0x14
#define BOOTROM_WELL_KNOWN_PTR_SIZE 2
#define BOOTROM_TABLE_LOOKUP_OFFSET (BOOTROM_FUNC_TABLE_OFFSET + BOOTROM_WELL_KNOWN_PTR_SIZE)
#define RT_FLAG_FUNC_ARM_SEC    0x0004

typedef void *(*rom_table_lookup_fn)(uint32_t code, uint32_t mask);

static void *rom_func_lookup_inline(uint32_t code) {
    rom_table_lookup_fn rom_table_lookup =
        (rom_table_lookup_fn)(uintptr_t)*(uint16_t*)(BOOTROM_TABLE_LOOKUP_OFFSET);
    return rom_table_lookup(code, RT_FLAG_FUNC_ARM_SEC);
}

#define ROM_FUNC_CONNECT_INTERNAL_FLASH ROM_TABLE_CODE('I', 'F')
#define ROM_FUNC_FLASH_EXIT_XIP         ROM_TABLE_CODE('E', 'X')
#define ROM_FUNC_FLASH_RANGE_ERASE      ROM_TABLE_CODE('R', 'E')
#define ROM_FUNC_FLASH_RANGE_PROGRAM    ROM_TABLE_CODE('R', 'P')
#define ROM_FUNC_FLASH_FLUSH_CACHE      ROM_TABLE_CODE('F', 'C')

#define FLASH_SECTOR_SIZE      4096
#define FLASH_SECTOR_ERASE_CMD 0x20

typedef void (*flash_connect_internal_fn)(void);
typedef void (*flash_exit_xip_fn)(void);
typedef void (*flash_range_erase_fn)(uint32_t addr, size_t count, uint32_t block_size, uint8_t block_cmd);
typedef void (*flash_range_program_fn)(uint32_t addr, const uint8_t *data, size_t count);
typedef void (*flash_flush_cache_fn)(void);

// ftl_flash_program writes data to flash at a raw offset from flash start,
// with interrupts masked for the entire operation as the flash controller
// shares the bus used by instruction fetch.
static int ftl_flash_program(uint32_t offset, const uint8_t *data, uint32_t len) {
    flash_connect_internal_fn connect = (flash_connect_internal_fn)rom_func_lookup_inline(ROM_FUNC_CONNECT_INTERNAL_FLASH);
    flash_exit_xip_fn exit_xip = (flash_exit_xip_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_EXIT_XIP);
    flash_range_program_fn program = (flash_range_program_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_RANGE_PROGRAM);
    flash_flush_cache_fn flush = (flash_flush_cache_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_FLUSH_CACHE);
    if (!connect || !exit_xip || !program || !flush) return -1;

    uint32_t status;
    __asm__ volatile ("mrs %0, primask" : "=r" (status));
    __asm__ volatile ("cpsid i");

    connect();
    exit_xip();
    program(offset, data, len);
    flush();

    __asm__ volatile ("msr primask, %0" : : "r" (status));
    return 0;
}

// ftl_flash_erase erases count bytes (a multiple of FLASH_SECTOR_SIZE) at a
// raw offset from flash start, interrupts masked for the whole operation.
static int ftl_flash_erase(uint32_t offset, uint32_t count) {
    flash_connect_internal_fn connect = (flash_connect_internal_fn)rom_func_lookup_inline(ROM_FUNC_CONNECT_INTERNAL_FLASH);
    flash_exit_xip_fn exit_xip = (flash_exit_xip_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_EXIT_XIP);
    flash_range_erase_fn erase = (flash_range_erase_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_RANGE_ERASE);
    flash_flush_cache_fn flush = (flash_flush_cache_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_FLUSH_CACHE);
    if (!connect || !exit_xip || !erase || !flush) return -1;

    uint32_t status;
    __asm__ volatile ("mrs %0, primask" : "=r" (status));
    __asm__ volatile ("cpsid i");

    connect();
    exit_xip();
    erase(offset, count, FLASH_SECTOR_SIZE, FLASH_SECTOR_ERASE_CMD);
    flush();

    __asm__ volatile ("msr primask, %0" : : "r" (status));
    return 0;
}

// ftl_flash_read_ptr returns the XIP-mapped read pointer for a raw flash
// offset; ordinary memory loads, no interrupt masking needed.
static const uint8_t *ftl_flash_read_ptr(uint32_t offset) {
    return (const uint8_t *)(0x10000000u + offset);
}
*/
import "C"

import "unsafe"

// RP2040Device implements Device using direct ROM flash calls, the same
// technique the firmware-update path uses, retargeted at the FTL region.
type RP2040Device struct{}

// NewRP2040Device returns the flash device backing the FTL on real hardware.
func NewRP2040Device() *RP2040Device { return &RP2040Device{} }

func (d *RP2040Device) Read(p int, off512 int, buf []byte) error {
	if err := checkSector(p); err != nil {
		return err
	}
	offset := BaseOffset + uint32(p*SectorSize+off512*512)
	ptr := C.ftl_flash_read_ptr(C.uint32_t(offset))
	src := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), len(buf))
	copy(buf, src)
	return nil
}

func (d *RP2040Device) Erase(p int) error {
	if err := checkSector(p); err != nil {
		return err
	}
	offset := BaseOffset + uint32(p*SectorSize)
	if C.ftl_flash_erase(C.uint32_t(offset), C.uint32_t(SectorSize)) != 0 {
		return ErrEraseFailed
	}
	return nil
}

func (d *RP2040Device) Program(p int, off512 int, buf []byte) error {
	if err := checkSector(p); err != nil {
		return err
	}
	if len(buf) == 0 {
		return nil
	}
	offset := BaseOffset + uint32(p*SectorSize+off512*512)
	ret := C.ftl_flash_program(C.uint32_t(offset), (*C.uint8_t)(&buf[0]), C.uint32_t(len(buf)))
	if ret != 0 {
		return ErrWriteFailed
	}
	return nil
}
