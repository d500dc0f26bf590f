//go:build tinygo

package rp2040io

/*
#include <stdint.h>

// SIO and IO_BANK0 are memory-mapped peripherals; the RP2040 datasheet
// fixes these base addresses and offsets across both cores; there's
// nothing to look up at runtime, unlike the bootrom function table
// internal/flashdev uses.
#define SIO_BASE       0xD0000000u
#define GPIO_IN        (*(volatile uint32_t *)(SIO_BASE + 0x004))
#define GPIO_OUT       (*(volatile uint32_t *)(SIO_BASE + 0x010))
#define GPIO_OUT_SET   (*(volatile uint32_t *)(SIO_BASE + 0x014))
#define GPIO_OUT_CLR   (*(volatile uint32_t *)(SIO_BASE + 0x018))
#define GPIO_OUT_XOR   (*(volatile uint32_t *)(SIO_BASE + 0x01C))
#define GPIO_OE_SET    (*(volatile uint32_t *)(SIO_BASE + 0x024))
#define GPIO_OE_CLR    (*(volatile uint32_t *)(SIO_BASE + 0x028))

#define IO_BANK0_BASE  0x40014000u
#define IO_BANK0_CTRL(pin) (*(volatile uint32_t *)(IO_BANK0_BASE + 8 + (pin)*8))
#define FUNCSEL_SIO 5

static void rp_gpio_init_mask(uint32_t mask) {
    for (int pin = 0; pin < 30; pin++) {
        if (mask & (1u << pin))
            IO_BANK0_CTRL(pin) = FUNCSEL_SIO;
    }
}

static uint32_t rp_gpio_get_all(void) { return GPIO_IN; }

static void rp_gpio_put_masked(uint32_t mask, uint32_t value) {
    GPIO_OUT_XOR = (GPIO_OUT ^ value) & mask;
}

static void rp_gpio_set_dir_out_masked(uint32_t mask) { GPIO_OE_SET = mask; }
static void rp_gpio_set_dir_in_masked(uint32_t mask)  { GPIO_OE_CLR = mask; }

static void rp_gpio_put(uint32_t pin, int value) {
    if (value) GPIO_OUT_SET = (1u << pin);
    else       GPIO_OUT_CLR = (1u << pin);
}

static void rp_gpio_set_dir(uint32_t pin, int out) {
    if (out) GPIO_OE_SET = (1u << pin);
    else     GPIO_OE_CLR = (1u << pin);
}
*/
import "C"

// InitMask configures every pin set in mask for plain SIO GPIO function,
// matching original_source's gpio_init_mask.
func InitMask(mask uint32) { C.rp_gpio_init_mask(C.uint32_t(mask)) }

// ReadAll returns the instantaneous level of every GPIO pin.
func ReadAll() uint32 { return uint32(C.rp_gpio_get_all()) }

// PutMasked sets the GPIO_OUT bits selected by mask to the corresponding
// bits of value, leaving all other pins untouched.
func PutMasked(mask, value uint32) { C.rp_gpio_put_masked(C.uint32_t(mask), C.uint32_t(value)) }

// SetDirOutMasked switches every pin in mask to output.
func SetDirOutMasked(mask uint32) { C.rp_gpio_set_dir_out_masked(C.uint32_t(mask)) }

// SetDirInMasked switches every pin in mask to input.
func SetDirInMasked(mask uint32) { C.rp_gpio_set_dir_in_masked(C.uint32_t(mask)) }

// Put drives a single pin high or low.
func Put(pin uint32, high bool) {
	v := 0
	if high {
		v = 1
	}
	C.rp_gpio_put(C.uint32_t(pin), C.int(v))
}

// SetDir configures a single pin as output (out=true) or input.
func SetDir(pin uint32, out bool) {
	v := 0
	if out {
		v = 1
	}
	C.rp_gpio_set_dir(C.uint32_t(pin), C.int(v))
}
