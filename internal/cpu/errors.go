package cpu

import "fmt"

// UnknownOpcodeError reports a fetched byte with no entry in the decode
// table. The table covers the documented instruction set plus the
// undocumented opcodes NES software is known to rely on; anything else is
// a hard fault.
type UnknownOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%02X at $%04X", e.Opcode, e.PC)
}
