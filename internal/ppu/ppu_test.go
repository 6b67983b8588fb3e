package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// chrRAM is an 8 KiB writable pattern-table memory for tests.
type chrRAM struct {
	data [0x2000]uint8
}

func (c *chrRAM) ReadCHR(address uint16) uint8 {
	return c.data[address]
}

func (c *chrRAM) WriteCHR(address uint16, value uint8) {
	c.data[address] = value
}

func newTestPPU(mirroring Mirroring) (*PPU, *chrRAM) {
	chr := &chrRAM{}
	return New(chr, mirroring), chr
}

// setAddr performs the two $2006 writes that load the VRAM address.
func setAddr(p *PPU, address uint16) {
	p.WriteRegister(0x2006, uint8(address>>8))
	p.WriteRegister(0x2006, uint8(address&0xFF))
}

func TestAddressLatchHighThenLow(t *testing.T) {
	p, _ := newTestPPU(Horizontal)

	setAddr(p, 0x2345)
	assert.Equal(t, uint16(0x2345), p.addr)
}

func TestAddressMirrorsDownPast3FFF(t *testing.T) {
	p, _ := newTestPPU(Horizontal)

	p.WriteRegister(0x2006, 0x7F)
	p.WriteRegister(0x2006, 0xFF)
	assert.Equal(t, uint16(0x3FFF), p.addr)
}

func TestStatusReadResetsLatch(t *testing.T) {
	p, _ := newTestPPU(Horizontal)

	p.WriteRegister(0x2006, 0x21) // first write consumed
	p.ReadRegister(0x2002)        // latch reset
	setAddr(p, 0x2400)
	assert.Equal(t, uint16(0x2400), p.addr, "write after latch reset is a high byte again")
}

func TestStatusReadClearsVBlank(t *testing.T) {
	p, _ := newTestPPU(Horizontal)
	p.status = statusVBlank | 0x10

	first := p.ReadRegister(0x2002)
	assert.Equal(t, uint8(statusVBlank|0x10), first)
	assert.Equal(t, uint8(0x10), p.status, "vblank cleared by the read")
}

func TestDataReadIsBuffered(t *testing.T) {
	p, _ := newTestPPU(Horizontal)

	setAddr(p, 0x2000)
	p.WriteRegister(0x2007, 0xAB)

	setAddr(p, 0x2000)
	first := p.ReadRegister(0x2007)  // stale buffer
	second := p.ReadRegister(0x2007) // now the real value

	assert.Equal(t, uint8(0x00), first)
	assert.Equal(t, uint8(0xAB), second)
}

func TestDataReadOfCHRGoesThroughBuffer(t *testing.T) {
	p, chr := newTestPPU(Horizontal)
	chr.data[0x0123] = 0x5D

	setAddr(p, 0x0123)
	_ = p.ReadRegister(0x2007)
	assert.Equal(t, uint8(0x5D), p.ReadRegister(0x2007))
}

func TestPaletteReadBypassesBuffer(t *testing.T) {
	p, _ := newTestPPU(Horizontal)

	setAddr(p, 0x3F01)
	p.WriteRegister(0x2007, 0x2A)

	setAddr(p, 0x3F01)
	assert.Equal(t, uint8(0x2A), p.ReadRegister(0x2007), "no one-read delay for palette")
}

func TestPaletteBackgroundMirrors(t *testing.T) {
	p, _ := newTestPPU(Horizontal)

	setAddr(p, 0x3F10)
	p.WriteRegister(0x2007, 0x0F)

	setAddr(p, 0x3F00)
	assert.Equal(t, uint8(0x0F), p.ReadRegister(0x2007), "$3F10 mirrors $3F00")
}

func TestIncrementModes(t *testing.T) {
	p, _ := newTestPPU(Horizontal)

	setAddr(p, 0x2000)
	p.WriteRegister(0x2007, 0x01)
	assert.Equal(t, uint16(0x2001), p.addr, "increment by 1")

	p.WriteRegister(0x2000, ctrlIncrement)
	setAddr(p, 0x2000)
	p.WriteRegister(0x2007, 0x01)
	assert.Equal(t, uint16(0x2020), p.addr, "increment by 32")
}

func TestVerticalMirroring(t *testing.T) {
	p, _ := newTestPPU(Vertical)

	// $2000 and $2800 share VRAM; $2400 is the other table.
	setAddr(p, 0x2005)
	p.WriteRegister(0x2007, 0x66)

	setAddr(p, 0x2805)
	_ = p.ReadRegister(0x2007)
	assert.Equal(t, uint8(0x66), p.ReadRegister(0x2007))

	setAddr(p, 0x2405)
	_ = p.ReadRegister(0x2007)
	assert.Equal(t, uint8(0x00), p.ReadRegister(0x2007))
}

func TestHorizontalMirroring(t *testing.T) {
	p, _ := newTestPPU(Horizontal)

	// $2000 and $2400 share VRAM; $2800 is the other table.
	setAddr(p, 0x2005)
	p.WriteRegister(0x2007, 0x77)

	setAddr(p, 0x2405)
	_ = p.ReadRegister(0x2007)
	assert.Equal(t, uint8(0x77), p.ReadRegister(0x2007))

	setAddr(p, 0x2805)
	_ = p.ReadRegister(0x2007)
	assert.Equal(t, uint8(0x00), p.ReadRegister(0x2007))
}

func TestOAMAddressAndData(t *testing.T) {
	p, _ := newTestPPU(Horizontal)

	p.WriteRegister(0x2003, 0x10)
	p.WriteRegister(0x2004, 0xAA)
	p.WriteRegister(0x2004, 0xBB)

	assert.Equal(t, uint8(0xAA), p.oam[0x10])
	assert.Equal(t, uint8(0xBB), p.oam[0x11])

	p.WriteRegister(0x2003, 0x10)
	assert.Equal(t, uint8(0xAA), p.ReadRegister(0x2004))
}

func TestCHRRAMWriteThroughDataPort(t *testing.T) {
	p, chr := newTestPPU(Horizontal)

	setAddr(p, 0x0040)
	p.WriteRegister(0x2007, 0x99)

	assert.Equal(t, uint8(0x99), chr.data[0x0040])
}

func TestPeekRegisterHasNoSideEffects(t *testing.T) {
	p, _ := newTestPPU(Horizontal)
	p.status = statusVBlank

	assert.Equal(t, uint8(statusVBlank), p.PeekRegister(0x2002))
	assert.Equal(t, uint8(statusVBlank), p.status, "peek leaves vblank set")

	setAddr(p, 0x2000)
	before := p.addr
	_ = p.PeekRegister(0x2007)
	assert.Equal(t, before, p.addr, "peek does not advance the address")
}
