// Package main provides the entry point for rvsim.
// rvsim is a cycle-level out-of-order RV32I simulator built on Akita.
//
// For the full CLI, use: go run ./cmd/rvsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rvsim - Out-of-Order RV32I Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: rvsim [options] [program.hex]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -emu         Run the functional emulator instead of the timing model")
	fmt.Println("  -elf         Load an RV32 ELF executable instead of a hex image")
	fmt.Println("  -config      Path to timing configuration JSON file")
	fmt.Println("  -max-cycles  Stop after this many cycles")
	fmt.Println("  -trace       Log pipeline events to stderr")
	fmt.Println("  -dump        Dump final architectural state to stderr")
	fmt.Println("  -v           Print statistics to stderr")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvsim' instead.")
	}
}
