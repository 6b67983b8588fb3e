// Package main implements the nescore CPU-core driver. It loads an iNES
// ROM, wires the bus, and prints a nestest-format execution trace to
// stdout until the program reaches a BRK.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/davecgh/go-spew/spew"

	"nescore/internal/cartridge"
	"nescore/internal/cpu"
	"nescore/internal/memory"
	"nescore/internal/ppu"
	"nescore/internal/version"
)

func main() {
	var (
		startPC     = flag.String("pc", "", "Override the start PC (hex, e.g. C000)")
		trace       = flag.Bool("trace", true, "Print a nestest-format trace to stdout")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo().String())
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *startPC, *trace); err != nil {
		log.Printf("nescore: %v", err)
		os.Exit(1)
	}
}

// run executes the ROM until a clean BRK or a terminal core fault.
func run(romPath, startPC string, trace bool) error {
	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return err
	}

	bus := memory.New(ppu.New(cart, mirroring(cart)), cart)
	core := cpu.New(bus)
	core.Reset()

	if startPC != "" {
		pc, err := strconv.ParseUint(startPC, 16, 16)
		if err != nil {
			return fmt.Errorf("bad -pc value %q: %v", startPC, err)
		}
		core.PC = uint16(pc)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	err = core.RunWithCallback(func(c *cpu.CPU) {
		if trace {
			fmt.Fprintln(out, c.Trace())
		}
	})
	if err != nil {
		out.Flush()
		fmt.Fprint(os.Stderr, spew.Sdump(snapshot(core)))
		return err
	}
	return nil
}

// mirroring converts the cartridge's header mode to the PPU's type.
func mirroring(cart *cartridge.Cartridge) ppu.Mirroring {
	switch cart.MirrorMode() {
	case cartridge.MirrorVertical:
		return ppu.Vertical
	case cartridge.MirrorFourScreen:
		return ppu.FourScreen
	default:
		return ppu.Horizontal
	}
}

// coreState is the register snapshot dumped when a step fails.
type coreState struct {
	PC      uint16
	SP      uint8
	A, X, Y uint8
	P       uint8
	Cycles  uint64
}

// snapshot captures the registers for the failure dump.
func snapshot(c *cpu.CPU) coreState {
	return coreState{
		PC:     c.PC,
		SP:     c.SP,
		A:      c.A,
		X:      c.X,
		Y:      c.Y,
		P:      c.GetStatusByte(),
		Cycles: c.Cycles(),
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "nescore - NES CPU core driver")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "USAGE:")
	fmt.Fprintln(os.Stderr, "  nescore [options] <rom.nes>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "OPTIONS:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "EXAMPLES:")
	fmt.Fprintln(os.Stderr, "  nescore nestest.nes            # trace from the reset vector")
	fmt.Fprintln(os.Stderr, "  nescore -pc C000 nestest.nes   # trace the nestest automation entry")
}
