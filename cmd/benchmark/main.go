// Command benchmark runs the rvsim timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv     Output results in CSV format (default: human-readable)
//	-json    Output a JSON report
//	-core    Run only the three core benchmarks
//	-config  Path to timing configuration JSON file
//
// Every benchmark is also run on the functional emulator; the exit status
// is non-zero if any timing run disagrees with it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rvsim/benchmarks"
	"github.com/sarchlab/rvsim/timing/latency"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as a JSON report")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	configPath := flag.String("config", "", "Path to timing configuration JSON file")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout
	config.Verbose = *verbose
	if *configPath != "" {
		timing, err := latency.LoadConfig(*configPath)
		if err == nil {
			err = timing.Validate()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
		config.Timing = timing
	}

	// Create harness and add benchmarks
	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	results := harness.RunAll()

	// Output results
	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		fmt.Println("rvsim Timing Benchmark Harness")
		fmt.Println("==============================")
		fmt.Printf("Latencies: ALU %d, branch %d, jump %d, load %d, store %d\n",
			config.Timing.ALULatency, config.Timing.BranchLatency, config.Timing.JumpLatency,
			config.Timing.LoadLatency, config.Timing.StoreLatency)
		fmt.Println("")
		harness.PrintResults(results)
	}

	summary := benchmarks.Summarize(results)
	if summary.Mismatches > 0 {
		fmt.Fprintf(os.Stderr, "%d benchmark(s) disagree with the functional emulator\n",
			summary.Mismatches)
		os.Exit(1)
	}
}
