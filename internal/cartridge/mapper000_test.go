package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// nrom builds a cartridge with distinguishable bytes at the start of each
// 16 KiB bank so the mirroring mask is observable.
func nrom(t *testing.T, banks uint8) *Cartridge {
	t.Helper()
	image := romImage{prgBanks: banks, chrBanks: 1}
	cart := image.load(t)
	for bank := 0; bank < int(banks); bank++ {
		cart.prgROM[bank*0x4000] = uint8(bank) + 1
	}
	return cart
}

// NROM-128 mirrors its single bank across both halves of $8000-$FFFF.
func TestNROM128Mirroring(t *testing.T) {
	cart := nrom(t, 1)

	assert.Equal(t, uint8(1), cart.ReadPRG(0x8000))
	assert.Equal(t, uint8(1), cart.ReadPRG(0xC000), "upper half mirrors the bank")
	assert.Equal(t, cart.ReadPRG(0x9234), cart.ReadPRG(0xD234))
}

// NROM-256 maps both banks directly.
func TestNROM256DirectMapping(t *testing.T) {
	cart := nrom(t, 2)

	assert.Equal(t, uint8(1), cart.ReadPRG(0x8000))
	assert.Equal(t, uint8(2), cart.ReadPRG(0xC000))
}

func TestPRGROMWritesIgnored(t *testing.T) {
	cart := nrom(t, 1)
	before := cart.ReadPRG(0x8000)

	cart.WritePRG(0x8000, 0xEE)
	assert.Equal(t, before, cart.ReadPRG(0x8000))
}

func TestPRGRAMWindow(t *testing.T) {
	cart := nrom(t, 1)

	cart.WritePRG(0x6000, 0x5A)
	cart.WritePRG(0x7FFF, 0xA5)

	assert.Equal(t, uint8(0x5A), cart.ReadPRG(0x6000))
	assert.Equal(t, uint8(0xA5), cart.ReadPRG(0x7FFF))
}

func TestExpansionAreaReadsZero(t *testing.T) {
	cart := nrom(t, 1)

	assert.Equal(t, uint8(0), cart.ReadPRG(0x4020))
	assert.Equal(t, uint8(0), cart.ReadPRG(0x5FFF))
}

func TestCHRDirectIndexing(t *testing.T) {
	cart := nrom(t, 1)
	cart.chrROM[0x1FFF] = 0x77

	assert.Equal(t, uint8(0x77), cart.ReadCHR(0x1FFF))
	assert.Equal(t, uint8(0), cart.ReadCHR(0x2000), "outside the pattern window")
}
