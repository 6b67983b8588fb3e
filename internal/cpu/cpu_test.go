package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockMemory is a flat 64 KiB address space for exercising the CPU
// without a real bus.
type MockMemory struct {
	data [0x10000]uint8
}

func NewMockMemory() *MockMemory {
	return &MockMemory{}
}

func (m *MockMemory) Read(address uint16) uint8 {
	return m.data[address]
}

func (m *MockMemory) Write(address uint16, value uint8) {
	m.data[address] = value
}

// Peek satisfies PeekMemory; a flat array has no side effects to avoid.
func (m *MockMemory) Peek(address uint16) uint8 {
	return m.data[address]
}

// SetBytes stores a run of bytes starting at address.
func (m *MockMemory) SetBytes(address uint16, values ...uint8) {
	for i, value := range values {
		m.data[address+uint16(i)] = value
	}
}

// CPUTestHelper bundles a CPU with its mock memory.
type CPUTestHelper struct {
	CPU    *CPU
	Memory *MockMemory
}

func NewCPUTestHelper() *CPUTestHelper {
	memory := NewMockMemory()
	return &CPUTestHelper{
		CPU:    New(memory),
		Memory: memory,
	}
}

// SetupResetVector points the reset vector at address and resets.
func (h *CPUTestHelper) SetupResetVector(address uint16) {
	h.Memory.SetBytes(0xFFFC, uint8(address&0xFF), uint8(address>>8))
	h.CPU.Reset()
}

// LoadProgram stores a program at address and jumps the CPU to it.
func (h *CPUTestHelper) LoadProgram(address uint16, program ...uint8) {
	h.Memory.SetBytes(address, program...)
	h.SetupResetVector(address)
}

// Run steps until the next opcode is BRK, failing the test on a fault.
func (h *CPUTestHelper) Run(t *testing.T) {
	t.Helper()
	require.NoError(t, h.CPU.RunWithCallback(func(*CPU) {}))
}

// Step executes one instruction, failing the test on a fault.
func (h *CPUTestHelper) Step(t *testing.T) uint64 {
	t.Helper()
	cycles, err := h.CPU.Step()
	require.NoError(t, err)
	return cycles
}

func TestCPUInitialization(t *testing.T) {
	helper := NewCPUTestHelper()

	assert.Equal(t, uint8(0), helper.CPU.A)
	assert.Equal(t, uint8(0), helper.CPU.X)
	assert.Equal(t, uint8(0), helper.CPU.Y)
	assert.Equal(t, uint8(0xFD), helper.CPU.SP)
	assert.Equal(t, uint16(0), helper.CPU.PC)
}

func TestCPUReset(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.Memory.SetBytes(0xFFFC, 0x00, 0x80)

	helper.CPU.A = 0x55
	helper.CPU.X = 0xAA
	helper.CPU.Y = 0xFF
	helper.CPU.SP = 0x00
	helper.CPU.PC = 0x1234
	helper.CPU.C = true
	helper.CPU.Z = true
	helper.CPU.I = false

	helper.CPU.Reset()

	// Reset leaves A, X and Y alone; hardware does not define them and
	// keeping them makes resets deterministic.
	assert.Equal(t, uint8(0x55), helper.CPU.A)
	assert.Equal(t, uint8(0xAA), helper.CPU.X)
	assert.Equal(t, uint8(0xFF), helper.CPU.Y)

	assert.Equal(t, uint8(0xFD), helper.CPU.SP)
	assert.Equal(t, uint16(0x8000), helper.CPU.PC)
	assert.Equal(t, uint8(0x24), helper.CPU.GetStatusByte())
}

func TestStatusByteRoundTrip(t *testing.T) {
	helper := NewCPUTestHelper()

	helper.CPU.N = true
	helper.CPU.V = false
	helper.CPU.B = true
	helper.CPU.D = false
	helper.CPU.I = true
	helper.CPU.Z = false
	helper.CPU.C = true
	assert.Equal(t, uint8(0xB5), helper.CPU.GetStatusByte())

	helper.CPU.SetStatusByte(0x42) // V and Z
	assert.True(t, helper.CPU.V)
	assert.True(t, helper.CPU.Z)
	assert.False(t, helper.CPU.N)
	assert.False(t, helper.CPU.B)
	assert.False(t, helper.CPU.D)
	assert.False(t, helper.CPU.I)
	assert.False(t, helper.CPU.C)
}

// Bit 5 always reads as 1 no matter what was unpacked.
func TestStatusBit5AlwaysSet(t *testing.T) {
	helper := NewCPUTestHelper()

	for _, status := range []uint8{0x00, 0xFF, 0x24, 0x80, 0x5F} {
		helper.CPU.SetStatusByte(status)
		packed := helper.CPU.GetStatusByte()
		assert.Equal(t, status|0x20, packed, "status 0x%02X", status)
	}
}

func TestStepNOP(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0xEA)

	cycles := helper.Step(t)

	assert.Equal(t, uint64(2), cycles)
	assert.Equal(t, uint16(0x8001), helper.CPU.PC)
}

func TestStepUnknownOpcode(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x02) // KIL, deliberately not in the table

	_, err := helper.CPU.Step()

	var unknown *UnknownOpcodeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, uint8(0x02), unknown.Opcode)
	assert.Equal(t, uint16(0x8000), unknown.PC)
}

func TestRunWithCallbackStopsAtBRK(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x0600, 0xE8, 0xE8, 0xE8, 0x00) // INX x3, BRK

	var seen []uint16
	err := helper.CPU.RunWithCallback(func(c *CPU) {
		seen = append(seen, c.PC)
	})

	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0600, 0x0601, 0x0602}, seen)
	assert.Equal(t, uint8(3), helper.CPU.X)
	// The BRK marker itself is not executed.
	assert.Equal(t, uint16(0x0603), helper.CPU.PC)
}

func TestRunWithCallbackPropagatesFault(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x0600, 0xEA, 0x12) // NOP, then a hole in the table

	err := helper.CPU.RunWithCallback(func(*CPU) {})

	var unknown *UnknownOpcodeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, uint8(0x12), unknown.Opcode)
}

// Every populated slot must decode to itself; the table carries the 151
// documented opcodes plus the undocumented families.
func TestDecodeTableCoverage(t *testing.T) {
	helper := NewCPUTestHelper()

	known := 0
	for opcode := 0; opcode < 256; opcode++ {
		if entry := helper.CPU.instructions[opcode]; entry != nil {
			known++
			assert.Equal(t, uint8(opcode), entry.Opcode)
		}
	}
	assert.Equal(t, 231, known)
}

func TestStackPushPopSymmetry(t *testing.T) {
	helper := NewCPUTestHelper()
	sp := helper.CPU.SP

	helper.CPU.push(0x42)
	assert.Equal(t, sp-1, helper.CPU.SP)
	assert.Equal(t, uint8(0x42), helper.Memory.Read(0x0100+uint16(sp)))

	assert.Equal(t, uint8(0x42), helper.CPU.pop())
	assert.Equal(t, sp, helper.CPU.SP)
}

func TestStackPointerWraps(t *testing.T) {
	helper := NewCPUTestHelper()

	helper.CPU.SP = 0x00
	helper.CPU.push(0x99)
	assert.Equal(t, uint8(0xFF), helper.CPU.SP)
	assert.Equal(t, uint8(0x99), helper.Memory.Read(0x0100))

	assert.Equal(t, uint8(0x99), helper.CPU.pop())
	assert.Equal(t, uint8(0x00), helper.CPU.SP)
}
