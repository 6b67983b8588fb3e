package memory

import "fmt"

// WriteOnlyReadError reports a CPU read of one of the write-only PPU/DMA
// registers ($2000, $2001, $2003, $2005, $2006, $4014).
type WriteOnlyReadError struct {
	Address uint16
}

func (e *WriteOnlyReadError) Error() string {
	return fmt.Sprintf("read from write-only register $%04X", e.Address)
}

// UnmappedAccessError reports an access to an address outside every
// decoded range (APU and controller I/O are not wired here).
type UnmappedAccessError struct {
	Address uint16
}

func (e *UnmappedAccessError) Error() string {
	return fmt.Sprintf("access to unmapped address $%04X", e.Address)
}
