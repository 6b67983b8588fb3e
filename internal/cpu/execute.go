package cpu

// This file holds the per-instruction semantics. The dispatch groups
// opcodes by instruction the same way the decode table does; the helpers
// below it implement the documented flag contracts, with the undocumented
// families at the end composed from the documented primitives.

// executeInstruction dispatches on the opcode and mutates CPU and memory
// state. The effective address has already been resolved; accumulator-mode
// variants are dispatched by their dedicated opcodes.
func (cpu *CPU) executeInstruction(opcode uint8, address uint16) {
	switch opcode {
	// Load/Store Instructions
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1: // LDA
		cpu.lda(address)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE: // LDX
		cpu.ldx(address)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC: // LDY
		cpu.ldy(address)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91: // STA
		cpu.memory.Write(address, cpu.A)
	case 0x86, 0x96, 0x8E: // STX
		cpu.memory.Write(address, cpu.X)
	case 0x84, 0x94, 0x8C: // STY
		cpu.memory.Write(address, cpu.Y)

	// Arithmetic Instructions
	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71: // ADC
		cpu.addWithCarry(cpu.memory.Read(address))
	case 0xE9, 0xEB, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1: // SBC (0xEB is undocumented)
		cpu.addWithCarry(cpu.memory.Read(address) ^ 0xFF)

	// Logical Instructions
	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31: // AND
		cpu.A &= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11: // ORA
		cpu.A |= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51: // EOR
		cpu.A ^= cpu.memory.Read(address)
		cpu.setZN(cpu.A)

	// Shift and Rotate Instructions
	case 0x0A: // ASL A
		cpu.A = cpu.shiftLeft(cpu.A)
	case 0x06, 0x16, 0x0E, 0x1E: // ASL
		cpu.modify(address, cpu.shiftLeft)
	case 0x4A: // LSR A
		cpu.A = cpu.shiftRight(cpu.A)
	case 0x46, 0x56, 0x4E, 0x5E: // LSR
		cpu.modify(address, cpu.shiftRight)
	case 0x2A: // ROL A
		cpu.A = cpu.rotateLeft(cpu.A)
	case 0x26, 0x36, 0x2E, 0x3E: // ROL
		cpu.modify(address, cpu.rotateLeft)
	case 0x6A: // ROR A
		cpu.A = cpu.rotateRight(cpu.A)
	case 0x66, 0x76, 0x6E, 0x7E: // ROR
		cpu.modify(address, cpu.rotateRight)

	// Comparison Instructions
	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1: // CMP
		cpu.compare(cpu.A, cpu.memory.Read(address))
	case 0xE0, 0xE4, 0xEC: // CPX
		cpu.compare(cpu.X, cpu.memory.Read(address))
	case 0xC0, 0xC4, 0xCC: // CPY
		cpu.compare(cpu.Y, cpu.memory.Read(address))

	// Increment/Decrement Instructions
	case 0xE6, 0xF6, 0xEE, 0xFE: // INC
		cpu.modify(address, cpu.increment)
	case 0xC6, 0xD6, 0xCE, 0xDE: // DEC
		cpu.modify(address, cpu.decrement)
	case 0xE8: // INX
		cpu.X = cpu.increment(cpu.X)
	case 0xCA: // DEX
		cpu.X = cpu.decrement(cpu.X)
	case 0xC8: // INY
		cpu.Y = cpu.increment(cpu.Y)
	case 0x88: // DEY
		cpu.Y = cpu.decrement(cpu.Y)

	// Transfer Instructions
	case 0xAA: // TAX
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case 0x8A: // TXA
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case 0xA8: // TAY
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case 0x98: // TYA
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
	case 0xBA: // TSX
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case 0x9A: // TXS does not touch the flags
		cpu.SP = cpu.X

	// Stack Instructions
	case 0x48: // PHA
		cpu.push(cpu.A)
	case 0x68: // PLA
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case 0x08: // PHP pushes with the B flag forced on
		cpu.push(cpu.GetStatusByte() | bFlagMask)
	case 0x28: // PLP
		cpu.pullStatus()

	// Flag Instructions
	case 0x18: // CLC
		cpu.C = false
	case 0x38: // SEC
		cpu.C = true
	case 0x58: // CLI
		cpu.I = false
	case 0x78: // SEI
		cpu.I = true
	case 0xB8: // CLV
		cpu.V = false
	case 0xD8: // CLD
		cpu.D = false
	case 0xF8: // SED
		cpu.D = true

	// Control Flow Instructions
	case 0x4C, 0x6C: // JMP
		cpu.PC = address
	case 0x20: // JSR pushes the address of its last byte
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = address
	case 0x60: // RTS
		cpu.PC = cpu.popWord() + 1
	case 0x40: // RTI
		cpu.pullStatus()
		cpu.PC = cpu.popWord()

	// Branch Instructions
	case 0x90: // BCC
		cpu.branch(address, !cpu.C)
	case 0xB0: // BCS
		cpu.branch(address, cpu.C)
	case 0xD0: // BNE
		cpu.branch(address, !cpu.Z)
	case 0xF0: // BEQ
		cpu.branch(address, cpu.Z)
	case 0x10: // BPL
		cpu.branch(address, !cpu.N)
	case 0x30: // BMI
		cpu.branch(address, cpu.N)
	case 0x50: // BVC
		cpu.branch(address, !cpu.V)
	case 0x70: // BVS
		cpu.branch(address, cpu.V)

	// Miscellaneous Instructions
	case 0x24, 0x2C: // BIT
		value := cpu.memory.Read(address)
		cpu.N = (value & nFlagMask) != 0
		cpu.V = (value & vFlagMask) != 0
		cpu.Z = (cpu.A & value) == 0
	case 0x00: // BRK
		cpu.brk()

	// Single-byte NOPs (0xEA documented, the rest undocumented)
	case 0xEA, 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA:

	// DOP/TOP: undocumented multi-byte NOPs that read and discard
	case 0x80, 0x82, 0x89, 0xC2, 0xE2,
		0x04, 0x44, 0x64, 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4,
		0x0C, 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		cpu.memory.Read(address)

	// Undocumented Opcodes
	case 0xA3, 0xA7, 0xAF, 0xB3, 0xB7, 0xBF: // LAX
		cpu.A = cpu.memory.Read(address)
		cpu.X = cpu.A
		cpu.setZN(cpu.A)
	case 0x83, 0x87, 0x8F, 0x97: // SAX stores A&X, flags untouched
		cpu.memory.Write(address, cpu.A&cpu.X)
	case 0xC3, 0xC7, 0xCF, 0xD3, 0xD7, 0xDB, 0xDF: // DCP = DEC then CMP
		value := cpu.modify(address, cpu.quietDecrement)
		cpu.compare(cpu.A, value)
	case 0xE3, 0xE7, 0xEF, 0xF3, 0xF7, 0xFB, 0xFF: // ISB = INC then SBC
		value := cpu.modify(address, cpu.quietIncrement)
		cpu.addWithCarry(value ^ 0xFF)
	case 0x03, 0x07, 0x0F, 0x13, 0x17, 0x1B, 0x1F: // SLO = ASL then ORA
		cpu.A |= cpu.modify(address, cpu.shiftLeft)
		cpu.setZN(cpu.A)
	case 0x23, 0x27, 0x2F, 0x33, 0x37, 0x3B, 0x3F: // RLA = ROL then AND
		cpu.A &= cpu.modify(address, cpu.rotateLeft)
		cpu.setZN(cpu.A)
	case 0x43, 0x47, 0x4F, 0x53, 0x57, 0x5B, 0x5F: // SRE = LSR then EOR
		cpu.A ^= cpu.modify(address, cpu.shiftRight)
		cpu.setZN(cpu.A)
	case 0x63, 0x67, 0x6F, 0x73, 0x77, 0x7B, 0x7F: // RRA = ROR then ADC
		cpu.addWithCarry(cpu.modify(address, cpu.rotateRight))
	}
}

// modify performs a read-modify-write at address and returns the new value.
func (cpu *CPU) modify(address uint16, op func(uint8) uint8) uint8 {
	value := op(cpu.memory.Read(address))
	cpu.memory.Write(address, value)
	return value
}

// lda, ldx, ldy load a byte and set Z/N from it.
func (cpu *CPU) lda(address uint16) {
	cpu.A = cpu.memory.Read(address)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) ldx(address uint16) {
	cpu.X = cpu.memory.Read(address)
	cpu.setZN(cpu.X)
}

func (cpu *CPU) ldy(address uint16) {
	cpu.Y = cpu.memory.Read(address)
	cpu.setZN(cpu.Y)
}

// addWithCarry implements ADC; SBC is ADC of the one's complement.
// V is set when both inputs share a sign that the result does not.
func (cpu *CPU) addWithCarry(value uint8) {
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + carry

	cpu.C = result > 0xFF
	cpu.V = (cpu.A^value)&0x80 == 0 && (cpu.A^uint8(result))&0x80 != 0
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
}

// compare computes reg-value; C means no borrow (reg >= value).
func (cpu *CPU) compare(reg, value uint8) {
	cpu.C = reg >= value
	cpu.setZN(reg - value)
}

func (cpu *CPU) shiftLeft(value uint8) uint8 {
	cpu.C = (value & 0x80) != 0
	value <<= 1
	cpu.setZN(value)
	return value
}

func (cpu *CPU) shiftRight(value uint8) uint8 {
	cpu.C = (value & 0x01) != 0
	value >>= 1
	cpu.setZN(value)
	return value
}

func (cpu *CPU) rotateLeft(value uint8) uint8 {
	oldCarry := cpu.C
	cpu.C = (value & 0x80) != 0
	value <<= 1
	if oldCarry {
		value |= 0x01
	}
	cpu.setZN(value)
	return value
}

func (cpu *CPU) rotateRight(value uint8) uint8 {
	oldCarry := cpu.C
	cpu.C = (value & 0x01) != 0
	value >>= 1
	if oldCarry {
		value |= 0x80
	}
	cpu.setZN(value)
	return value
}

func (cpu *CPU) increment(value uint8) uint8 {
	value++
	cpu.setZN(value)
	return value
}

func (cpu *CPU) decrement(value uint8) uint8 {
	value--
	cpu.setZN(value)
	return value
}

// quietIncrement and quietDecrement leave the flags to the second half of
// the undocumented combined instructions.
func (cpu *CPU) quietIncrement(value uint8) uint8 { return value + 1 }
func (cpu *CPU) quietDecrement(value uint8) uint8 { return value - 1 }

// branch redirects PC when the condition holds, charging one cycle for the
// taken branch and a second when the target is on a different page.
func (cpu *CPU) branch(target uint16, condition bool) {
	if !condition {
		return
	}
	cpu.extraCycle++
	if (cpu.PC & pageMask) != (target & pageMask) {
		cpu.extraCycle++
	}
	cpu.PC = target
}

// pullStatus restores the flags from the stack. The pulled B bit is
// discarded; B only exists in pushed copies of the status register.
func (cpu *CPU) pullStatus() {
	b := cpu.B
	cpu.SetStatusByte(cpu.pop())
	cpu.B = b
}

// brk skips the signature byte, pushes PC and status with B set, sets I,
// and vectors through $FFFE.
func (cpu *CPU) brk() {
	cpu.PC++
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.GetStatusByte() | bFlagMask)
	cpu.I = true

	low := uint16(cpu.memory.Read(irqVector))
	high := uint16(cpu.memory.Read(irqVector + 1))
	cpu.PC = (high << 8) | low
}
