package benchmarks

import (
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

// Register names used by the benchmark programs.
const (
	ra = 1
	t0 = 5
	t1 = 6
	t2 = 7
	a0 = 10
	a1 = 11
	a2 = 12
	a3 = 13
	a4 = 14
	a5 = 15
	s2 = 18
)

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each
// benchmark targets a specific core characteristic and leaves its result
// in a0.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		functionCalls(),
		branchTaken(),
		mixedOperations(),
		matrixOperations(),
		loopSimulation(),
		countedLoop(),
		storeLoadForwarding(),
	}
}

// GetCoreBenchmarks returns a minimal set of 3 core benchmarks for quick
// validation: a loop, a matrix kernel and branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countedLoop(),
		matrixOperations(),
		branchTaken(),
	}
}

// BuildProgram assembles instruction words and appends the halt word.
func BuildProgram(words ...uint32) []byte {
	return insts.BuildProgram(append(words, insts.HaltWord)...)
}

func addi(rd, rs1 uint8, imm int32) uint32 { return insts.EncodeADDI(rd, rs1, imm) }
func add(rd, rs1, rs2 uint8) uint32       { return insts.EncodeOp(insts.OpADD, rd, rs1, rs2) }
func sw(rs2, rs1 uint8, imm int32) uint32 { return insts.EncodeStore(insts.OpSW, rs2, rs1, imm) }
func lw(rd, rs1 uint8, imm int32) uint32  { return insts.EncodeLoad(insts.OpLW, rd, rs1, imm) }
func ret() uint32                         { return insts.EncodeJALR(0, ra, 0) }

// 1. Arithmetic Sequential - Tests issue throughput with independent operations
func arithmeticSequential() Benchmark {
	words := make([]uint32, 0, 21)
	for i := 0; i < 4; i++ {
		for r := uint8(a1); r <= a5; r++ {
			words = append(words, addi(r, r, 1))
		}
	}
	words = append(words, addi(a0, a1, 0))

	return Benchmark{
		Name:         "arithmetic_sequential",
		Description:  "20 independent ADDIs over 5 registers - measures issue throughput",
		Program:      BuildProgram(words...),
		ExpectedExit: 4,
	}
}

// 2. Dependency Chain - Tests back-to-back wakeup through the CDB
func dependencyChain() Benchmark {
	words := make([]uint32, 0, 20)
	for i := 0; i < 20; i++ {
		words = append(words, addi(a0, a0, 1))
	}

	return Benchmark{
		Name:         "dependency_chain",
		Description:  "20 dependent ADDIs (a0 = a0 + 1) - measures wakeup latency",
		Program:      BuildProgram(words...),
		ExpectedExit: 20,
	}
}

// 3. Memory Sequential - Tests load/store buffer ordering
func memorySequential() Benchmark {
	words := make([]uint32, 0, 20)
	for i := int32(0); i < 10; i++ {
		words = append(words, sw(a0, a1, 4*i), lw(a0, a1, 4*i))
	}

	return Benchmark{
		Name:         "memory_sequential",
		Description:  "10 store/load pairs to sequential addresses - measures memory ordering",
		InitRegs:     map[uint8]uint32{a0: 42, a1: 0x8000},
		Program:      BuildProgram(words...),
		ExpectedExit: 42,
	}
}

// 4. Function Calls - Tests JAL/JALR overhead
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "5 function calls (JAL + JALR pairs) - measures call overhead",
		Program: insts.BuildProgram(
			// main: call add_one 5 times
			insts.EncodeJAL(ra, 24),
			insts.EncodeJAL(ra, 20),
			insts.EncodeJAL(ra, 16),
			insts.EncodeJAL(ra, 12),
			insts.EncodeJAL(ra, 8),
			insts.HaltWord,

			// add_one
			addi(a0, a0, 1),
			ret(),
		),
		ExpectedExit: 5,
	}
}

// 5. Branch Taken - Tests unconditional jump overhead
func branchTaken() Benchmark {
	words := make([]uint32, 0, 15)
	for i := 0; i < 5; i++ {
		words = append(words,
			insts.EncodeJAL(0, 8), // skip next instr
			addi(a1, a1, 99),      // skipped
			addi(a0, a0, 1),
		)
	}

	return Benchmark{
		Name:         "branch_taken",
		Description:  "5 forward jumps over dead code - measures redirect overhead",
		Program:      BuildProgram(words...),
		ExpectedExit: 5,
	}
}

// 6. Mixed Operations - Combination of ALU, memory, and calls
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "Mix of ADD, SW/LW, and JAL - realistic workload characteristics",
		InitRegs:    map[uint8]uint32{a1: 0x8000},
		Program: insts.BuildProgram(
			// Iteration 1: compute, store, load, call
			addi(a2, a0, 10),
			sw(a2, a1, 0),
			lw(a3, a1, 0),
			add(a0, a0, a3),
			insts.EncodeJAL(ra, 44), // add_five

			// Iteration 2
			addi(a2, a0, 10),
			sw(a2, a1, 4),
			lw(a3, a1, 4),
			add(a0, a0, a3),
			insts.EncodeJAL(ra, 24),

			// Iteration 3
			addi(a2, a0, 10),
			sw(a2, a1, 8),
			lw(a3, a1, 8),
			add(a0, a0, a3),

			insts.HaltWord,

			// add_five
			addi(a0, a0, 5),
			ret(),
		),
		// iter1: a0=0, a2=10, a3=10, a0=10, call +5 -> a0=15
		// iter2: a0=15, a2=25, a3=25, a0=40, call +5 -> a0=45
		// iter3: a0=45, a2=55, a3=55, a0=100
		ExpectedExit: 100,
	}
}

// 7. Matrix Operations - Element-wise C = A + B over 4-word arrays
func matrixOperations() Benchmark {
	words := make([]uint32, 0, 19)
	for i := uint8(0); i < 4; i++ {
		off := int32(4 * i)
		words = append(words, lw(s2+i, t0, off), lw(s2+4+i, t1, off))
	}
	for i := uint8(0); i < 4; i++ {
		words = append(words, add(s2+8+i, s2+i, s2+4+i))
	}
	for i := uint8(0); i < 4; i++ {
		words = append(words, sw(s2+8+i, t2, int32(4*i)))
	}
	words = append(words,
		add(a0, s2+8, s2+9),
		add(a0, a0, s2+10),
		add(a0, a0, s2+11),
	)

	return Benchmark{
		Name:        "matrix_operations",
		Description: "Matrix-style load/compute/store pattern - tests memory access",
		InitRegs:    map[uint8]uint32{t0: 0x8000, t1: 0x8100, t2: 0x8200},
		Setup: func(memory *emu.Memory) {
			for i, v := range []uint32{10, 20, 30, 40} {
				memory.Write32(0x8000+uint32(4*i), v)
			}
			for i, v := range []uint32{1, 2, 3, 4} {
				memory.Write32(0x8100+uint32(4*i), v)
			}
		},
		Program: BuildProgram(words...),
		// C = [11, 22, 33, 44], sum = 110
		ExpectedExit: 110,
	}
}

// 8. Loop Simulation - "for i := 0; i < 10; i++ { sum += i }" unrolled
func loopSimulation() Benchmark {
	words := make([]uint32, 0, 20)
	for i := 0; i < 10; i++ {
		words = append(words, add(a0, a0, t0), addi(t0, t0, 1))
	}

	return Benchmark{
		Name:         "loop_simulation",
		Description:  "Simulated 10-iteration loop (unrolled) - tests loop-like patterns",
		Program:      BuildProgram(words...),
		ExpectedExit: 45,
	}
}

// 9. Counted Loop - A real backward branch that trains the predictor
func countedLoop() Benchmark {
	return Benchmark{
		Name:        "counted_loop",
		Description: "10-iteration BNE loop - measures predictor warmup and flush cost",
		Program: BuildProgram(
			addi(t0, 0, 10),
			// loop:
			addi(a0, a0, 3),
			addi(t0, t0, -1),
			insts.EncodeBranch(insts.OpBNE, t0, 0, -8),
		),
		ExpectedExit: 30,
	}
}

// 10. Store-Load Forwarding - Narrow loads right behind a wide store
func storeLoadForwarding() Benchmark {
	words := insts.EncodeLI(t1, 0x11223344)
	words = append(words,
		sw(t1, t0, 0),
		insts.EncodeLoad(insts.OpLBU, a0, t0, 1),
		insts.EncodeLoad(insts.OpLH, t2, t0, 2),
		add(a0, a0, t2),
	)

	return Benchmark{
		Name:        "store_load_forwarding",
		Description: "Word store followed by overlapping byte and halfword loads",
		InitRegs:    map[uint8]uint32{t0: 0x8000},
		Program:     BuildProgram(words...),
		// 0x33 + 0x1122 = 0x1155
		ExpectedExit: 0x55,
	}
}
