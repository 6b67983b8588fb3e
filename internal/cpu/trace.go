package cpu

import (
	"fmt"
	"strings"
)

// Trace renders the instruction at PC in the nestest log format:
//
//	C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 SP:FD
//
// Undocumented opcodes are marked with a leading '*'. The formatter only
// peeks at memory, so tracing never advances PC and never perturbs the
// PPU's register-side state.
func (cpu *CPU) Trace() string {
	opcode := cpu.peek(cpu.PC)
	instruction := cpu.instructions[opcode]

	mnemonic := "???"
	size := uint16(1)
	if instruction != nil {
		mnemonic = instruction.Name
		size = uint16(instruction.Bytes)
	}
	if Undocumented(opcode) {
		mnemonic = "*" + mnemonic
	}

	operands := make([]uint8, 0, 2)
	hex := fmt.Sprintf("%02X", opcode)
	for i := uint16(1); i < size; i++ {
		b := cpu.peek(cpu.PC + i)
		operands = append(operands, b)
		hex += fmt.Sprintf(" %02X", b)
	}

	var argument string
	if instruction != nil {
		argument = cpu.traceOperand(instruction, operands)
	}

	asm := strings.TrimRight(fmt.Sprintf("%04X  %-8s %4s %s", cpu.PC, hex, mnemonic, argument), " ")
	return fmt.Sprintf("%-47s A:%02X X:%02X Y:%02X P:%02X SP:%02X",
		asm, cpu.A, cpu.X, cpu.Y, cpu.GetStatusByte(), cpu.SP)
}

// traceOperand expands the operand field for the instruction's addressing
// mode, including the intermediate pointer and effective value where the
// nestest format shows them.
func (cpu *CPU) traceOperand(instruction *Instruction, operands []uint8) string {
	switch instruction.Mode {
	case Implied:
		return ""

	case Accumulator:
		return "A"

	case Immediate:
		return fmt.Sprintf("#$%02X", operands[0])

	case ZeroPage:
		address := uint16(operands[0])
		return fmt.Sprintf("$%02X = %02X", operands[0], cpu.peek(address))

	case ZeroPageX:
		address := uint16(operands[0]+cpu.X) & zeroPageMask
		return fmt.Sprintf("$%02X,X @ %02X = %02X", operands[0], address, cpu.peek(address))

	case ZeroPageY:
		address := uint16(operands[0]+cpu.Y) & zeroPageMask
		return fmt.Sprintf("$%02X,Y @ %02X = %02X", operands[0], address, cpu.peek(address))

	case Relative:
		target := cpu.PC + 2 + uint16(int8(operands[0]))
		return fmt.Sprintf("$%04X", target)

	case Absolute:
		address := uint16(operands[1])<<8 | uint16(operands[0])
		// JMP and JSR name their target, not the value behind it.
		if instruction.Opcode == 0x4C || instruction.Opcode == 0x20 {
			return fmt.Sprintf("$%04X", address)
		}
		return fmt.Sprintf("$%04X = %02X", address, cpu.peek(address))

	case AbsoluteX:
		base := uint16(operands[1])<<8 | uint16(operands[0])
		address := base + uint16(cpu.X)
		return fmt.Sprintf("$%04X,X @ %04X = %02X", base, address, cpu.peek(address))

	case AbsoluteY:
		base := uint16(operands[1])<<8 | uint16(operands[0])
		address := base + uint16(cpu.Y)
		return fmt.Sprintf("$%04X,Y @ %04X = %02X", base, address, cpu.peek(address))

	case Indirect:
		ptr := uint16(operands[1])<<8 | uint16(operands[0])
		low := uint16(cpu.peek(ptr))
		high := uint16(cpu.peek((ptr & pageMask) | ((ptr + 1) & zeroPageMask)))
		return fmt.Sprintf("($%04X) = %04X", ptr, high<<8|low)

	case IndexedIndirect:
		ptr := (operands[0] + cpu.X) & zeroPageMask
		low := uint16(cpu.peek(uint16(ptr)))
		high := uint16(cpu.peek(uint16((ptr + 1) & zeroPageMask)))
		address := high<<8 | low
		return fmt.Sprintf("($%02X,X) @ %02X = %04X = %02X", operands[0], ptr, address, cpu.peek(address))

	case IndirectIndexed:
		low := uint16(cpu.peek(uint16(operands[0])))
		high := uint16(cpu.peek(uint16((operands[0] + 1) & zeroPageMask)))
		base := high<<8 | low
		address := base + uint16(cpu.Y)
		return fmt.Sprintf("($%02X),Y = %04X @ %04X = %02X", operands[0], base, address, cpu.peek(address))

	default:
		return ""
	}
}
