// Package main provides a profiling wrapper for rvsim to identify
// performance bottlenecks in the emulator and the timing model.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/loader"
	"github.com/sarchlab/rvsim/timing/core"
	"github.com/sarchlab/rvsim/timing/latency"
	"github.com/sarchlab/rvsim/timing/ooo"
)

// checkInterval is how many instructions (emulation) or cycles (timing)
// run between deadline checks.
const checkInterval = 4096

// errTimeout is returned when the run exceeds -duration.
var errTimeout = errors.New("timeout reached")

type options struct {
	timing     bool
	elf        bool
	configPath string
	cpuProfile string
	memProfile string
	duration   time.Duration
	maxInstr   uint64
}

// result summarizes a profiled run.
type result struct {
	exitCode     uint32
	instructions uint64
	cycles       uint64
	limited      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts := &options{}

	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.timing, "timing", false, "Profile the out-of-order timing model")
	fs.BoolVar(&opts.elf, "elf", false, "Treat the program as an RV32 ELF executable")
	fs.StringVar(&opts.configPath, "config", "", "Path to timing configuration JSON file")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "write cpu profile to file")
	fs.StringVar(&opts.memProfile, "memprofile", "", "write memory profile to file")
	fs.DurationVar(&opts.duration, "duration", 30*time.Second, "max duration to run (for profiling)")
	fs.Uint64Var(&opts.maxInstr, "max-instr", 1000000, "max instructions to execute (0 = unlimited)")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: profile [options] <program>\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 1
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error creating CPU profile: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error starting CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	programPath := fs.Arg(0)
	memory, entry, sp, err := loadProgram(programPath, opts.elf)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "Loaded: %s\n", programPath)
	_, _ = fmt.Fprintf(stdout, "Entry point: 0x%X\n", entry)

	start := time.Now()
	deadline := start.Add(opts.duration)

	var res result
	if opts.timing {
		res, err = runTimingProfile(opts, memory, entry, sp, deadline)
	} else {
		res, err = runEmulationProfile(opts, memory, entry, sp, deadline)
	}
	elapsed := time.Since(start)

	if errors.Is(err, errTimeout) {
		_, _ = fmt.Fprintf(stdout, "\nTimeout reached after %v - stopping execution\n", opts.duration)
		return 2
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.memProfile != "" {
		if err := writeHeapProfile(opts.memProfile); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error writing memory profile: %v\n", err)
			return 1
		}
	}

	_, _ = fmt.Fprintf(stdout, "\nProfiling Results:\n")
	if res.limited {
		_, _ = fmt.Fprintf(stdout, "Instruction limit reached\n")
	} else {
		_, _ = fmt.Fprintf(stdout, "Exit code: %d\n", res.exitCode)
	}
	_, _ = fmt.Fprintf(stdout, "Instructions executed: %d\n", res.instructions)
	if opts.timing {
		_, _ = fmt.Fprintf(stdout, "Cycles: %d\n", res.cycles)
	}
	_, _ = fmt.Fprintf(stdout, "Elapsed time: %v\n", elapsed)
	if res.instructions > 0 {
		_, _ = fmt.Fprintf(stdout, "Instructions/second: %.0f\n",
			float64(res.instructions)/elapsed.Seconds())
	}

	return 0
}

// loadProgram loads an ELF executable or a hex image. sp is 0 for hex
// images.
func loadProgram(path string, isELF bool) (memory *emu.Memory, entry, sp uint32, err error) {
	memory = emu.NewMemory()

	if isELF {
		prog, err := loader.Load(path)
		if err != nil {
			return nil, 0, 0, err
		}
		prog.LoadIntoMemory(memory)
		return memory, prog.EntryPoint, prog.InitialSP, nil
	}

	img, err := loader.LoadHex(path)
	if err != nil {
		return nil, 0, 0, err
	}
	img.LoadIntoMemory(memory)
	return memory, 0, 0, nil
}

// runEmulationProfile runs the program in functional emulation mode.
func runEmulationProfile(
	opts *options,
	memory *emu.Memory,
	entry, sp uint32,
	deadline time.Time,
) (result, error) {
	emulator := emu.NewEmulator(
		emu.WithMemory(memory),
		emu.WithMaxInstructions(opts.maxInstr),
	)
	emulator.SetPC(entry)
	if sp != 0 {
		emulator.RegFile().WriteReg(2, sp)
	}

	for {
		for i := 0; i < checkInterval; i++ {
			step := emulator.Step()
			if errors.Is(step.Err, emu.ErrMaxInstructions) {
				return result{instructions: emulator.InstructionCount(), limited: true}, nil
			}
			if step.Err != nil {
				return result{}, step.Err
			}
			if step.Halted {
				return result{
					exitCode:     emulator.ExitValue(),
					instructions: emulator.InstructionCount(),
				}, nil
			}
		}

		if time.Now().After(deadline) {
			return result{}, errTimeout
		}
	}
}

// runTimingProfile runs the program on the out-of-order core. Cycles are
// stepped directly rather than through the akita event loop so that the
// instruction limit and deadline can be checked as it runs.
func runTimingProfile(
	opts *options,
	memory *emu.Memory,
	entry, sp uint32,
	deadline time.Time,
) (result, error) {
	timingConfig := latency.DefaultTimingConfig()
	if opts.configPath != "" {
		var err error
		timingConfig, err = latency.LoadConfig(opts.configPath)
		if err != nil {
			return result{}, err
		}
		if err := timingConfig.Validate(); err != nil {
			return result{}, err
		}
	}

	cpu := core.NewCore("Profile.Core", sim.NewSerialEngine(), 1*sim.GHz, memory,
		ooo.WithLatencyTable(latency.NewTableWithConfig(timingConfig)))
	cpu.SetPC(entry)
	if sp != 0 {
		cpu.OOO.SetReg(2, sp)
	}

	for cpu.RunCycles(1) {
		stats := cpu.Stats()
		if opts.maxInstr > 0 && stats.Instructions >= opts.maxInstr {
			return result{
				instructions: stats.Instructions,
				cycles:       stats.Cycles,
				limited:      true,
			}, nil
		}

		if stats.Cycles%checkInterval == 0 && time.Now().After(deadline) {
			return result{}, errTimeout
		}
	}

	if err := cpu.Err(); err != nil {
		return result{}, err
	}

	stats := cpu.Stats()
	return result{
		exitCode:     cpu.ExitValue(),
		instructions: stats.Instructions,
		cycles:       stats.Cycles,
	}, nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return pprof.WriteHeapProfile(f)
}
