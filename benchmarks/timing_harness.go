// Package benchmarks provides timing benchmark infrastructure for rvsim.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/timing/core"
	"github.com/sarchlab/rvsim/timing/latency"
	"github.com/sarchlab/rvsim/timing/ooo"
)

// ProgramAddr is where benchmark programs are loaded and start executing.
const ProgramAddr uint32 = 0x1000

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of committed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of cycles issue was blocked by a full
	// structure
	StallCycles uint64 `json:"stall_cycles"`

	// PipelineFlushes is the number of misprediction flushes
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	// Branch predictor stats
	BranchPredictions     uint64  `json:"branch_predictions,omitempty"`
	BranchCorrect         uint64  `json:"branch_correct,omitempty"`
	BranchMispredictions  uint64  `json:"branch_mispredictions,omitempty"`
	BranchAccuracyPercent float64 `json:"branch_accuracy_percent,omitempty"`

	// ExitCode is the low byte of a0 at halt
	ExitCode uint32 `json:"exit_code"`

	// ReferenceExit and ReferenceInstructions come from the functional
	// emulator run of the same program.
	ReferenceExit         uint32 `json:"reference_exit"`
	ReferenceInstructions uint64 `json:"reference_instructions"`

	// Matches is true when the timing run agrees with the emulator and
	// with the benchmark's expected exit code.
	Matches bool `json:"matches"`

	// Error is set when either run failed
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// InitRegs holds register values set before the first cycle.
	InitRegs map[uint8]uint32

	// Setup prepares memory contents (e.g., input arrays)
	Setup func(memory *emu.Memory)

	// Program is the RV32I machine code, loaded at ProgramAddr
	Program []byte

	// ExpectedExit is the expected low byte of a0 (for validation)
	ExpectedExit uint32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Timing sets the execute latencies. Nil means the defaults.
	Timing *latency.TimingConfig

	// MaxCycles bounds each timing run. 0 means no limit.
	MaxCycles uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Timing:    latency.DefaultTimingConfig(),
		MaxCycles: 1_000_000,
		Output:    os.Stdout,
		Verbose:   false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// prepare builds a fresh memory image for bench.
func prepare(bench Benchmark) *emu.Memory {
	memory := emu.NewMemory()
	if bench.Setup != nil {
		bench.Setup(memory)
	}
	memory.LoadProgram(ProgramAddr, bench.Program)
	return memory
}

// runReference executes bench on the functional emulator, starting from
// memory.
func (h *Harness) runReference(bench Benchmark, memory *emu.Memory) (uint32, uint64, error) {
	emulator := emu.NewEmulator(
		emu.WithMemory(memory),
		emu.WithMaxInstructions(h.config.MaxCycles),
	)
	for r, v := range bench.InitRegs {
		emulator.RegFile().WriteReg(r, v)
	}
	emulator.SetPC(ProgramAddr)

	exit, err := emulator.Run()
	return exit, emulator.InstructionCount(), err
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	// both models start from the same image; the reference runs on a copy
	image := prepare(bench)
	refExit, refInsts, refErr := h.runReference(bench, image.Clone())
	result.ReferenceExit = refExit
	result.ReferenceInstructions = refInsts

	engine := sim.NewSerialEngine()
	cpu := core.NewCore(bench.Name, engine, 1*sim.GHz, image,
		ooo.WithLatencyTable(latency.NewTableWithConfig(h.config.Timing)),
		ooo.WithMaxCycles(h.config.MaxCycles),
	)
	for r, v := range bench.InitRegs {
		cpu.OOO.SetReg(r, v)
	}
	cpu.SetPC(ProgramAddr)

	// Run simulation and measure time
	start := time.Now()
	exit, err := cpu.Run()
	result.WallTime = time.Since(start)

	stats := cpu.Stats()
	result.ExitCode = exit
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.CPI = stats.CPI()
	result.StallCycles = stats.Stalls
	result.PipelineFlushes = stats.Flushes
	result.BranchPredictions = stats.BranchPredictions
	result.BranchCorrect = stats.BranchCorrect
	result.BranchMispredictions = stats.BranchMispredictions
	result.BranchAccuracyPercent = stats.BranchAccuracy()

	switch {
	case refErr != nil:
		result.Error = fmt.Sprintf("reference: %v", refErr)
	case err != nil:
		result.Error = err.Error()
	default:
		result.Matches = exit == refExit &&
			exit == bench.ExpectedExit &&
			stats.Instructions == refInsts
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== rvsim Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Exit Code: %d (reference %d)\n", r.ExitCode, r.ReferenceExit)
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Error)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Pipeline Flushes:     %d\n", r.PipelineFlushes)

		if r.BranchPredictions > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Branch Predictor ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Predictions:     %d\n", r.BranchPredictions)
			_, _ = fmt.Fprintf(h.config.Output, "  Correct:         %d\n", r.BranchCorrect)
			_, _ = fmt.Fprintf(h.config.Output, "  Mispredictions:  %d\n", r.BranchMispredictions)
			_, _ = fmt.Fprintf(h.config.Output, "  Accuracy:        %.1f%%\n", r.BranchAccuracyPercent)
		}

		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "  Matches Reference: %v\n", r.Matches)
			_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		}
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,flushes,branch_predictions,branch_mispredictions,exit_code,matches")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%v\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.PipelineFlushes,
			r.BranchPredictions,
			r.BranchMispredictions,
			r.ExitCode,
			r.Matches,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Timing is the latency configuration used
	Timing *latency.TimingConfig `json:"timing"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Mismatches counts benchmarks that disagree with the reference
	Mismatches int `json:"mismatches"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsRetired
		summary.TotalWallTime += r.WallTime
		if !r.Matches {
			summary.Mismatches++
		}
	}

	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}

	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Timing:    h.config.Timing,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
