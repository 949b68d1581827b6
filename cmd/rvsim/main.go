// Package main provides the entry point for rvsim, a cycle-level
// out-of-order RV32I simulator.
//
// Usage:
//
//	rvsim [options] [program.hex]
//
// The program image is read from the named file, or from stdin when no
// file is given. On halt the low byte of a0 is printed in decimal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/loader"
	"github.com/sarchlab/rvsim/timing/core"
	"github.com/sarchlab/rvsim/timing/latency"
	"github.com/sarchlab/rvsim/timing/ooo"
)

// stackPointerReg is sp (x2).
const stackPointerReg = 2

type options struct {
	configPath string
	verbose    bool
	emulate    bool
	elf        bool
	trace      bool
	dump       bool
	maxCycles  uint64
}

// program is a loaded image ready to run.
type program struct {
	memory *emu.Memory
	entry  uint32
	sp     uint32 // 0 leaves sp untouched
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	prog, err := loadProgram(opts, rest, stdin)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	if opts.emulate {
		return runEmulation(opts, prog, stdout, stderr)
	}
	return runTiming(opts, prog, stdout, stderr)
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}

	fs := flag.NewFlagSet("rvsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to timing configuration JSON file")
	fs.BoolVar(&opts.verbose, "v", false, "Print statistics to stderr")
	fs.BoolVar(&opts.emulate, "emu", false, "Run the functional emulator instead of the timing model")
	fs.BoolVar(&opts.elf, "elf", false, "Treat the program as an RV32 ELF executable")
	fs.BoolVar(&opts.trace, "trace", false, "Log issue, commit and flush events to stderr")
	fs.BoolVar(&opts.dump, "dump", false, "Dump final architectural state to stderr")
	fs.Uint64Var(&opts.maxCycles, "max-cycles", 0, "Stop after this many cycles (0 means no limit)")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: rvsim [options] [program]\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return opts, fs.Args(), nil
}

func loadProgram(opts *options, args []string, stdin io.Reader) (*program, error) {
	memory := emu.NewMemory()

	if opts.elf {
		if len(args) < 1 {
			return nil, fmt.Errorf("-elf requires a program path")
		}

		exe, err := loader.Load(args[0])
		if err != nil {
			return nil, err
		}
		exe.LoadIntoMemory(memory)

		return &program{memory: memory, entry: exe.EntryPoint, sp: exe.InitialSP}, nil
	}

	var (
		img *loader.HexImage
		err error
	)
	if len(args) > 0 {
		img, err = loader.LoadHex(args[0])
	} else {
		img, err = loader.ParseHex(stdin)
	}
	if err != nil {
		return nil, err
	}
	img.LoadIntoMemory(memory)

	return &program{memory: memory}, nil
}

// runEmulation runs the program in functional emulation mode.
func runEmulation(opts *options, prog *program, stdout, stderr io.Writer) int {
	emulator := emu.NewEmulator(emu.WithMemory(prog.memory))
	emulator.SetPC(prog.entry)
	if prog.sp != 0 {
		emulator.RegFile().WriteReg(stackPointerReg, prog.sp)
	}

	result, err := emulator.Run()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "%d\n", result)

	if opts.verbose {
		_, _ = fmt.Fprintf(stderr, "Instructions executed: %d\n", emulator.InstructionCount())
	}
	if opts.dump {
		dumpState(stderr, archState{
			PC:        emulator.RegFile().PC,
			Registers: emulator.RegFile().X,
		})
	}

	return 0
}

// runTiming runs the program on the out-of-order core, driven by an akita
// serial engine.
func runTiming(opts *options, prog *program, stdout, stderr io.Writer) int {
	timingConfig := latency.DefaultTimingConfig()
	if opts.configPath != "" {
		var err error
		timingConfig, err = latency.LoadConfig(opts.configPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error loading timing config: %v\n", err)
			return 1
		}
		if err := timingConfig.Validate(); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error loading timing config: %v\n", err)
			return 1
		}
	}

	engineOpts := []ooo.Option{
		ooo.WithLatencyTable(latency.NewTableWithConfig(timingConfig)),
		ooo.WithMaxCycles(opts.maxCycles),
	}
	if opts.trace {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		engineOpts = append(engineOpts, ooo.WithLogger(slog.New(handler)))
	}

	engine := sim.NewSerialEngine()
	cpu := core.NewCore("RVSim.Core", engine, 1*sim.GHz, prog.memory, engineOpts...)
	cpu.SetPC(prog.entry)
	if prog.sp != 0 {
		cpu.OOO.SetReg(stackPointerReg, prog.sp)
	}

	result, err := cpu.Run()

	if opts.verbose {
		printStats(stderr, cpu.Stats())
	}
	if opts.dump {
		dumpState(stderr, archState{
			PC:        cpu.OOO.PC(),
			Registers: cpu.OOO.Registers(),
			Stats:     ptr(cpu.Stats()),
		})
	}

	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "%d\n", result)
	return 0
}

func printStats(w io.Writer, stats core.Stats) {
	_, _ = fmt.Fprintf(w, "Cycles: %d\n", stats.Cycles)
	_, _ = fmt.Fprintf(w, "Instructions: %d\n", stats.Instructions)
	_, _ = fmt.Fprintf(w, "CPI: %.3f\n", stats.CPI())
	_, _ = fmt.Fprintf(w, "Issue stalls: %d\n", stats.Stalls)
	_, _ = fmt.Fprintf(w, "Flushes: %d\n", stats.Flushes)
	_, _ = fmt.Fprintf(w, "Branches: %d (%.1f%% correct)\n",
		stats.BranchPredictions, stats.BranchAccuracy())
}

// archState is the architectural state printed by -dump.
type archState struct {
	PC        uint32
	Registers [32]uint32
	Stats     *ooo.Stats
}

func dumpState(w io.Writer, state archState) {
	printer := pp.New()
	printer.SetColoringEnabled(false)
	printer.SetOutput(w)
	_, _ = printer.Println(state)
}

func ptr[T any](v T) *T {
	return &v
}
