// Package cpu implements the 6502 CPU emulation for the NES.
package cpu

// AddressingMode selects how an instruction locates its operand.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	// Stack base address
	stackBase = 0x0100
	// Status register bit masks
	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01
	// Zero page mask
	zeroPageMask = 0xFF
	// Page boundary mask
	pageMask = 0xFF00
	// Interrupt vectors
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Instruction is one entry of the 256-slot decode table.
type Instruction struct {
	Name   string
	Opcode uint8
	Bytes  uint8
	Cycles uint8
	Mode   AddressingMode
}

// CPU represents the 6502 processor used in the NES.
//
// The NES variant has no BCD arithmetic: the D flag can be set and cleared
// but never affects ADC/SBC.
type CPU struct {
	// Registers
	A  uint8  // Accumulator
	X  uint8  // X register
	Y  uint8  // Y register
	SP uint8  // Stack pointer, offset into page $01
	PC uint16 // Program counter

	// Status register flags
	C bool // Carry
	Z bool // Zero
	I bool // Interrupt disable
	D bool // Decimal mode (no effect on the NES)
	B bool // Break
	V bool // Overflow
	N bool // Negative

	// Memory interface, normally the system bus
	memory MemoryInterface

	// Total cycle counter
	cycles uint64

	// Per-instruction penalty cycles (page crossings, taken branches).
	// Reset at the start of every Step.
	extraCycle uint8

	// Instruction lookup table
	instructions [256]*Instruction

	// Interrupt lines
	nmiPending bool
	irqPending bool
}

// MemoryInterface defines the interface for CPU memory access.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// PeekMemory is implemented by buses that can read without side effects.
// The trace formatter uses it so that disassembly never perturbs PPU state.
type PeekMemory interface {
	MemoryInterface
	Peek(address uint16) uint8
}

// New creates a new CPU attached to the given memory.
func New(memory MemoryInterface) *CPU {
	cpu := &CPU{
		memory: memory,
		SP:     0xFD,
	}
	cpu.initInstructions()
	return cpu
}

// Reset puts the CPU into its post-reset state: SP=$FD, status=$24
// (I and the unused bit set), PC loaded from the reset vector.
// A, X and Y are left as they are; on hardware they are indeterminate,
// leaving them untouched keeps resets deterministic.
func (cpu *CPU) Reset() {
	cpu.SP = 0xFD
	cpu.SetStatusByte(iFlagMask | unusedMask)

	low := uint16(cpu.memory.Read(resetVector))
	high := uint16(cpu.memory.Read(resetVector + 1))
	cpu.PC = (high << 8) | low
}

// Step executes a single instruction and returns the cycles it consumed.
//
// A bus fault (write-only read, unmapped access) or an opcode missing from
// the decode table ends the step with a non-nil error. The CPU state after
// a failed step is undefined; callers must not keep stepping the same
// instance.
func (cpu *CPU) Step() (cycles uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(error)
			if !ok {
				panic(r)
			}
			cycles = 0
			err = fault
		}
	}()

	cpu.processPendingInterrupts()

	opcode := cpu.memory.Read(cpu.PC)
	instruction := cpu.instructions[opcode]
	if instruction == nil {
		return 0, &UnknownOpcodeError{Opcode: opcode, PC: cpu.PC}
	}
	cpu.PC++

	cpu.extraCycle = 0

	address, pageCrossed := cpu.resolveAddress(instruction.Mode)
	cpu.executeInstruction(opcode, address)

	if pageCrossed && readsAcrossPage(opcode) {
		cpu.extraCycle++
	}

	total := uint64(instruction.Cycles) + uint64(cpu.extraCycle)
	cpu.cycles += total
	return total, nil
}

// RunWithCallback steps the CPU in a loop, invoking the callback before
// each instruction. It returns nil when the next opcode is BRK, which the
// test harness uses as a stop marker, or the first step error otherwise.
func (cpu *CPU) RunWithCallback(callback func(*CPU)) error {
	for {
		if cpu.peek(cpu.PC) == 0x00 {
			return nil
		}
		callback(cpu)
		if _, err := cpu.Step(); err != nil {
			return err
		}
	}
}

// Cycles returns the total cycle count since creation.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// peek reads without side effects when the bus supports it.
func (cpu *CPU) peek(address uint16) uint8 {
	if pm, ok := cpu.memory.(PeekMemory); ok {
		return pm.Peek(address)
	}
	return cpu.memory.Read(address)
}

// readsAcrossPage reports whether the opcode is a read-class instruction
// that pays one extra cycle when its indexed address crosses a page.
// Stores and read-modify-write instructions always perform the extra bus
// access, so their base cycle counts already include it.
func readsAcrossPage(opcode uint8) bool {
	switch opcode {
	// LDA, LDX, LDY
	case 0xBD, 0xB9, 0xB1, 0xBE, 0xBC:
		return true
	// ORA, AND, EOR
	case 0x1D, 0x19, 0x11, 0x3D, 0x39, 0x31, 0x5D, 0x59, 0x51:
		return true
	// ADC, SBC, CMP
	case 0x7D, 0x79, 0x71, 0xFD, 0xF9, 0xF1, 0xDD, 0xD9, 0xD1:
		return true
	// Undocumented triple-byte NOPs (absolute,X)
	case 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		return true
	// LAX (absolute,Y and (zp),Y)
	case 0xBF, 0xB3:
		return true
	}
	return false
}

// resolveAddress computes the effective operand address for the given
// addressing mode, consuming the operand bytes that follow the opcode.
// The second result reports whether indexing crossed a page boundary.
func (cpu *CPU) resolveAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false

	case Immediate:
		address := cpu.PC
		cpu.PC++
		return address, false

	case ZeroPage:
		address := uint16(cpu.memory.Read(cpu.PC))
		cpu.PC++
		return address, false

	case ZeroPageX:
		base := cpu.memory.Read(cpu.PC)
		cpu.PC++
		return uint16(base+cpu.X) & zeroPageMask, false

	case ZeroPageY:
		base := cpu.memory.Read(cpu.PC)
		cpu.PC++
		return uint16(base+cpu.Y) & zeroPageMask, false

	case Relative:
		offset := int8(cpu.memory.Read(cpu.PC))
		cpu.PC++
		target := uint16(int32(cpu.PC) + int32(offset))
		crossed := (cpu.PC & pageMask) != (target & pageMask)
		return target, crossed

	case Absolute:
		low := uint16(cpu.memory.Read(cpu.PC))
		high := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		return (high << 8) | low, false

	case AbsoluteX:
		low := uint16(cpu.memory.Read(cpu.PC))
		high := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		base := (high << 8) | low
		address := base + uint16(cpu.X)
		return address, (base & pageMask) != (address & pageMask)

	case AbsoluteY:
		low := uint16(cpu.memory.Read(cpu.PC))
		high := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		return address, (base & pageMask) != (address & pageMask)

	case Indirect: // JMP only
		lowPtr := uint16(cpu.memory.Read(cpu.PC))
		highPtr := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		ptr := (highPtr << 8) | lowPtr

		// 6502 quirk: the pointer's high byte is fetched without carrying
		// into the next page, so ($xxFF) reads its high byte from $xx00.
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read((ptr & pageMask) | ((ptr + 1) & zeroPageMask)))
		return (high << 8) | low, false

	case IndexedIndirect: // (zp,X)
		base := cpu.memory.Read(cpu.PC)
		cpu.PC++
		ptr := (base + cpu.X) & zeroPageMask
		low := uint16(cpu.memory.Read(uint16(ptr)))
		high := uint16(cpu.memory.Read(uint16((ptr + 1) & zeroPageMask)))
		return (high << 8) | low, false

	case IndirectIndexed: // (zp),Y
		ptr := uint16(cpu.memory.Read(cpu.PC))
		cpu.PC++
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read((ptr + 1) & zeroPageMask))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		return address, (base & pageMask) != (address & pageMask)

	default:
		return 0, false
	}
}

// Stack operations. The stack lives in page $01 and grows downward:
// pushes write then decrement, pops increment then read, SP wraps on 8 bits.
func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value & 0xFF))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}

// setZN sets the Zero and Negative flags from a result byte.
func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = (value & nFlagMask) != 0
}

// GetStatusByte packs the flags as N V 1 B D I Z C. Bit 5 always reads 1.
func (cpu *CPU) GetStatusByte() uint8 {
	status := uint8(unusedMask)
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	if cpu.B {
		status |= bFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// SetStatusByte unpacks a status byte into the individual flags.
func (cpu *CPU) SetStatusByte(status uint8) {
	cpu.N = (status & nFlagMask) != 0
	cpu.V = (status & vFlagMask) != 0
	cpu.B = (status & bFlagMask) != 0
	cpu.D = (status & dFlagMask) != 0
	cpu.I = (status & iFlagMask) != 0
	cpu.Z = (status & zFlagMask) != 0
	cpu.C = (status & cFlagMask) != 0
}

// TriggerNMI requests a non-maskable interrupt before the next instruction.
func (cpu *CPU) TriggerNMI() {
	cpu.nmiPending = true
}

// TriggerIRQ requests a maskable interrupt before the next instruction.
func (cpu *CPU) TriggerIRQ() {
	cpu.irqPending = true
}

// processPendingInterrupts services NMI first, then IRQ unless inhibited.
func (cpu *CPU) processPendingInterrupts() {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.interrupt(nmiVector)
		return
	}
	if cpu.irqPending && !cpu.I {
		cpu.irqPending = false
		cpu.interrupt(irqVector)
	}
}

// interrupt pushes PC and status (B clear, bit 5 set) and vectors through
// the given address.
func (cpu *CPU) interrupt(vector uint16) {
	cpu.pushWord(cpu.PC)
	status := cpu.GetStatusByte()
	status &^= bFlagMask
	status |= unusedMask
	cpu.push(status)
	cpu.I = true

	low := uint16(cpu.memory.Read(vector))
	high := uint16(cpu.memory.Read(vector + 1))
	cpu.PC = (high << 8) | low

	cpu.cycles += 7
}
