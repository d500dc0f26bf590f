// Package rp2040io is the raw GPIO register layer C7/C8's hot loops run
// on: direct SIO/IO_BANK0 memory-mapped register access, grounded on
// original_source's gpio_init_mask/gpio_get_all/gpio_put_masked/
// gpio_set_dir_*_masked calls and on the teacher's ota package's pattern of
// reaching straight past the SDK into hardware via cgo.
package rp2040io

// Pin bit positions on the cartridge edge connector, matching
// original_source's *_GPIO_MASK/RD4_PIN/RD5_PIN defines.
const (
	AddrMask  = 0x00001FFF // GPIO 0-12: cartridge address bus
	DataMask  = 0x001FE000 // GPIO 13-20: cartridge data bus
	CCTLMask  = 0x00200000 // GPIO 21
	PHI2Mask  = 0x00400000 // GPIO 22
	RWMask    = 0x00800000 // GPIO 23
	S4Mask    = 0x01000000 // GPIO 24
	S5Mask    = 0x02000000 // GPIO 25
	S4S5Mask  = S4Mask | S5Mask
	CCTLRWMask = CCTLMask | RWMask
	AllMask   = 0x3FFFFFFF

	RD4Pin = 26
	RD5Pin = 27

	// DataShift is how far the 8-bit data byte is shifted up to land on
	// GPIO 13, matching original_source's "<< 13" / ">> 13".
	DataShift = 13
)
