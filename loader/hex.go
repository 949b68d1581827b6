package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sarchlab/rvsim/emu"
)

// ErrBadAddress is returned when an @ address does not fit in 32 bits.
var ErrBadAddress = errors.New("invalid image address")

// HexImage is a program image in the textual hex format. An @ followed by
// a hexadecimal number moves the write cursor; every pair of hex digits is
// one byte written at the cursor, which then advances. Anything else is
// ignored.
type HexImage struct {
	// Chunks holds the bytes of each contiguous run, in input order.
	Chunks []Chunk
}

// Chunk is a run of bytes written from Addr upward.
type Chunk struct {
	Addr uint32
	Data []byte
}

// Size returns the number of bytes in the image.
func (img *HexImage) Size() int {
	n := 0
	for _, c := range img.Chunks {
		n += len(c.Data)
	}
	return n
}

// LoadIntoMemory writes the image into memory.
func (img *HexImage) LoadIntoMemory(memory *emu.Memory) {
	for _, c := range img.Chunks {
		memory.LoadProgram(c.Addr, c.Data)
	}
}

// LoadHex parses the hex image at path.
func LoadHex(path string) (*HexImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseHex(f)
}

// ParseHex parses a hex image from r.
func ParseHex(r io.Reader) (*HexImage, error) {
	p := &hexParser{in: bufio.NewReader(r), img: &HexImage{}}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.img, nil
}

type hexParser struct {
	in  *bufio.Reader
	img *HexImage

	cursor  uint32
	chunk   *Chunk
	high    byte
	pending bool
}

func (p *hexParser) parse() error {
	for {
		c, err := p.in.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		if c == '@' {
			if err := p.seek(); err != nil {
				return err
			}
			continue
		}

		nibble, ok := hexValue(c)
		if !ok {
			continue
		}

		if !p.pending {
			p.high = nibble
			p.pending = true
			continue
		}

		p.emit(p.high<<4 | nibble)
		p.pending = false
	}
}

// seek reads the address after an @ and moves the cursor there.
func (p *hexParser) seek() error {
	if err := p.skipSpace(); err != nil {
		return err
	}

	var digits []byte
	for {
		c, err := p.in.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		if _, ok := hexValue(c); !ok {
			_ = p.in.UnreadByte()
			break
		}
		digits = append(digits, c)
	}

	if len(digits) == 0 {
		return nil
	}

	addr, err := strconv.ParseUint(string(digits), 16, 32)
	if err != nil {
		return fmt.Errorf("%w: @%s", ErrBadAddress, digits)
	}

	p.cursor = uint32(addr)
	p.chunk = nil
	p.pending = false
	return nil
}

func (p *hexParser) skipSpace() error {
	for {
		c, err := p.in.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return p.in.UnreadByte()
	}
}

func (p *hexParser) emit(b byte) {
	if p.chunk == nil {
		p.img.Chunks = append(p.img.Chunks, Chunk{Addr: p.cursor})
		p.chunk = &p.img.Chunks[len(p.img.Chunks)-1]
	}
	p.chunk.Data = append(p.chunk.Data, b)
	p.cursor++
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
