// Package loader reads RV32I programs: textual hex images and 32-bit
// RISC-V ELF executables.
package loader

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/rvsim/emu"
)

// ErrNotRISCV is returned for ELF files that are not 32-bit RISC-V.
var ErrNotRISCV = errors.New("not a 32-bit RISC-V ELF file")

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// DefaultStackTop is the initial stack pointer: the top of the default
// simulated memory, 16-byte aligned.
const DefaultStackTop = emu.DefaultMemorySize - 16

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
	// InitialSP is the initial stack pointer value.
	InitialSP uint32
}

// LoadIntoMemory copies every segment into memory. The BSS tail of a
// segment is zeroed.
func (p *Program) LoadIntoMemory(memory *emu.Memory) {
	for _, seg := range p.Segments {
		memory.LoadProgram(seg.VirtAddr, seg.Data)
		for addr := uint32(len(seg.Data)); addr < seg.MemSize; addr++ {
			memory.Write8(seg.VirtAddr+addr, 0)
		}
	}
}

// Load parses a 32-bit little-endian RISC-V ELF executable.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("%w: class %v", ErrNotRISCV, f.Class)
	}

	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("%w: machine type %v", ErrNotRISCV, f.Machine)
	}

	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("%w: byte order %v", ErrNotRISCV, f.Data)
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry),
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}
