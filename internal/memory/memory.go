// Package memory implements the CPU-side system bus for the NES.
package memory

// Address decode boundaries. The 2 KiB of internal RAM is mirrored four
// times below $2000; the eight PPU registers repeat every 8 bytes up to
// $3FFF; everything from $4020 up belongs to the cartridge.
const (
	ramEnd        = 0x1FFF
	ramMask       = 0x07FF
	ppuMirrorEnd  = 0x3FFF
	ppuMirrorMask = 0x2007
	oamDMA        = 0x4014
	cartridgeBase = 0x4020
)

// PPUInterface is the register-level seam to the PPU. PeekRegister must
// not disturb the data-read buffer, the address latch or the status flags.
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
	PeekRegister(address uint16) uint8
}

// CartridgeInterface is the CPU-side seam to the mapper for $4020-$FFFF.
type CartridgeInterface interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
}

// Bus decodes the 16-bit CPU address space and dispatches to RAM, the PPU
// registers and the cartridge mapper. It holds the only references to
// those components; the CPU mutates them exclusively through it.
type Bus struct {
	ram  [0x800]uint8
	ppu  PPUInterface
	cart CartridgeInterface
}

// New creates a bus wired to the given PPU and cartridge.
func New(ppu PPUInterface, cart CartridgeInterface) *Bus {
	return &Bus{
		ppu:  ppu,
		cart: cart,
	}
}

// Read returns the byte at address.
//
// Reads of the write-only registers ($2000, $2001, $2003, $2005, $2006,
// $4014) raise a WriteOnlyReadError; addresses outside every decoded range
// raise an UnmappedAccessError. Both travel as panics and are converted to
// errors at the CPU step boundary.
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address <= ramEnd:
		return b.ram[address&ramMask]

	case address == 0x2000, address == 0x2001, address == 0x2003,
		address == 0x2005, address == 0x2006:
		panic(&WriteOnlyReadError{Address: address})

	case address <= 0x2007:
		return b.ppu.ReadRegister(address)

	case address <= ppuMirrorEnd:
		return b.Read(address & ppuMirrorMask)

	case address == oamDMA:
		panic(&WriteOnlyReadError{Address: address})

	case address >= cartridgeBase:
		return b.cart.ReadPRG(address)

	default:
		// $4000-$401F: APU and controller I/O, out of scope here.
		panic(&UnmappedAccessError{Address: address})
	}
}

// Write stores the byte at address, following the same decode as Read.
// Writes to $2000-$2007 always go through the PPU; the bus never stores
// raw bytes into registers the PPU owns.
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address <= ramEnd:
		b.ram[address&ramMask] = value

	case address <= 0x2007:
		b.ppu.WriteRegister(address, value)

	case address <= ppuMirrorEnd:
		b.Write(address&ppuMirrorMask, value)

	case address == oamDMA:
		b.oamDMATransfer(value)

	case address >= cartridgeBase:
		b.cart.WritePRG(address, value)

	default:
		panic(&UnmappedAccessError{Address: address})
	}
}

// ReadWord reads a little-endian 16-bit value. It carries plainly into the
// next page; the JMP indirect quirk lives in the CPU's addressing code,
// not here.
func (b *Bus) ReadWord(address uint16) uint16 {
	low := uint16(b.Read(address))
	high := uint16(b.Read(address + 1))
	return (high << 8) | low
}

// WriteWord writes a little-endian 16-bit value.
func (b *Bus) WriteWord(address uint16, value uint16) {
	b.Write(address, uint8(value&0xFF))
	b.Write(address+1, uint8(value>>8))
}

// Peek reads without side effects: the PPU's buffer and latches stay
// untouched, write-only registers and unmapped I/O read as zero instead of
// faulting. The trace formatter depends on this.
func (b *Bus) Peek(address uint16) uint8 {
	switch {
	case address <= ramEnd:
		return b.ram[address&ramMask]

	case address == 0x2000, address == 0x2001, address == 0x2003,
		address == 0x2005, address == 0x2006:
		return 0

	case address <= 0x2007:
		return b.ppu.PeekRegister(address)

	case address <= ppuMirrorEnd:
		return b.Peek(address & ppuMirrorMask)

	case address >= cartridgeBase:
		return b.cart.ReadPRG(address)

	default:
		return 0
	}
}

// PeekWord is the side-effect-free counterpart of ReadWord.
func (b *Bus) PeekWord(address uint16) uint16 {
	low := uint16(b.Peek(address))
	high := uint16(b.Peek(address + 1))
	return (high << 8) | low
}

// oamDMATransfer copies a 256-byte page into PPU OAM through the OAM data
// register. Suspension timing is the driver's concern, not the bus's.
func (b *Bus) oamDMATransfer(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		b.ppu.WriteRegister(0x2004, b.Read(base+i))
	}
}
