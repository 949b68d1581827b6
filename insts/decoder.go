package insts

// Op represents an RV32I operation.
type Op uint8

// RV32I operations.
const (
	OpUnknown Op = iota
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
)

var opNames = [...]string{
	"unknown",
	"lui", "auipc", "jal", "jalr",
	"beq", "bne", "blt", "bge", "bltu", "bgeu",
	"lb", "lh", "lw", "lbu", "lhu",
	"sb", "sh", "sw",
	"addi", "slti", "sltiu", "xori", "ori", "andi", "slli", "srli", "srai",
	"add", "sub", "sll", "slt", "sltu", "xor", "srl", "sra", "or", "and",
}

// String returns the assembler mnemonic.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatU
	FormatI
	FormatS
	FormatB
	FormatJ
	FormatR
)

var formatNames = [...]string{"?", "U", "I", "S", "B", "J", "R"}

// String returns the single-letter format name.
func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "?"
}

// Major opcodes (bits [6:0]).
const (
	opcodeLUI    = 0x37
	opcodeAUIPC  = 0x17
	opcodeJAL    = 0x6F
	opcodeJALR   = 0x67
	opcodeBranch = 0x63
	opcodeLoad   = 0x03
	opcodeStore  = 0x23
	opcodeOpImm  = 0x13
	opcodeOp     = 0x33
)

// Instruction represents a decoded RV32I instruction.
type Instruction struct {
	Op     Op     // Operation
	Format Format // Encoding format

	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register

	// Imm is the sign-extended immediate. For U-type it already holds the
	// upper 20 bits in place; for shift-immediates it holds the shift amount.
	Imm int32

	// Word is the raw instruction word.
	Word uint32
}

// IsLoad returns true for LB/LH/LW/LBU/LHU.
func (i *Instruction) IsLoad() bool {
	return i.Op >= OpLB && i.Op <= OpLHU
}

// IsStore returns true for SB/SH/SW.
func (i *Instruction) IsStore() bool {
	return i.Op >= OpSB && i.Op <= OpSW
}

// IsMemory returns true if the instruction goes through the load-store path.
func (i *Instruction) IsMemory() bool {
	return i.IsLoad() || i.IsStore()
}

// IsBranch returns true for conditional branches.
func (i *Instruction) IsBranch() bool {
	return i.Format == FormatB
}

// WritesRd returns true if the instruction produces a register result.
func (i *Instruction) WritesRd() bool {
	switch i.Format {
	case FormatU, FormatJ, FormatI, FormatR:
		return true
	default:
		return false
	}
}

// UsesRs1 returns true if Rs1 is a source operand.
func (i *Instruction) UsesRs1() bool {
	switch i.Format {
	case FormatI, FormatS, FormatB, FormatR:
		return true
	default:
		return false
	}
}

// UsesRs2 returns true if Rs2 is a source operand.
func (i *Instruction) UsesRs2() bool {
	switch i.Format {
	case FormatS, FormatB, FormatR:
		return true
	default:
		return false
	}
}

// MemWidth returns the access width in bytes for loads and stores, else 0.
func (op Op) MemWidth() int {
	switch op {
	case OpLB, OpLBU, OpSB:
		return 1
	case OpLH, OpLHU, OpSH:
		return 2
	case OpLW, OpSW:
		return 4
	default:
		return 0
	}
}

// Decoder decodes RV32I machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word. Words that do not encode one
// of the supported operations decode to OpUnknown with FormatUnknown.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Op: OpUnknown, Format: FormatUnknown, Word: word}

	switch word & 0x7F {
	case opcodeLUI, opcodeAUIPC:
		d.decodeU(word, inst)
	case opcodeJAL:
		d.decodeJ(word, inst)
	case opcodeBranch:
		d.decodeB(word, inst)
	case opcodeJALR, opcodeLoad, opcodeOpImm:
		d.decodeI(word, inst)
	case opcodeStore:
		d.decodeS(word, inst)
	case opcodeOp:
		d.decodeR(word, inst)
	}

	if inst.Op == OpUnknown {
		inst.Format = FormatUnknown
	}

	return inst
}

func rd(word uint32) uint8  { return uint8((word >> 7) & 0x1F) }
func rs1(word uint32) uint8 { return uint8((word >> 15) & 0x1F) }
func rs2(word uint32) uint8 { return uint8((word >> 20) & 0x1F) }
func funct3(word uint32) uint32 {
	return (word >> 12) & 0x7
}

// signExtend sign-extends the low bits of value.
func signExtend(value uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

// decodeU decodes LUI and AUIPC.
// Format: imm[31:12] | rd | opcode
func (d *Decoder) decodeU(word uint32, inst *Instruction) {
	inst.Format = FormatU
	inst.Rd = rd(word)
	inst.Imm = int32(word & 0xFFFFF000)

	if word&0x7F == opcodeLUI {
		inst.Op = OpLUI
	} else {
		inst.Op = OpAUIPC
	}
}

// decodeJ decodes JAL.
// Format: imm[20|10:1|11|19:12] | rd | opcode
func (d *Decoder) decodeJ(word uint32, inst *Instruction) {
	inst.Format = FormatJ
	inst.Op = OpJAL
	inst.Rd = rd(word)

	imm := ((word >> 21) & 0x3FF) << 1
	imm |= ((word >> 20) & 0x1) << 11
	imm |= ((word >> 12) & 0xFF) << 12
	imm |= ((word >> 31) & 0x1) << 20
	inst.Imm = signExtend(imm, 21)
}

// decodeB decodes conditional branches.
// Format: imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | opcode
func (d *Decoder) decodeB(word uint32, inst *Instruction) {
	inst.Format = FormatB
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)

	imm := ((word >> 8) & 0xF) << 1
	imm |= ((word >> 25) & 0x3F) << 5
	imm |= ((word >> 7) & 0x1) << 11
	imm |= ((word >> 31) & 0x1) << 12
	inst.Imm = signExtend(imm, 13)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpBEQ
	case 0b001:
		inst.Op = OpBNE
	case 0b100:
		inst.Op = OpBLT
	case 0b101:
		inst.Op = OpBGE
	case 0b110:
		inst.Op = OpBLTU
	case 0b111:
		inst.Op = OpBGEU
	}
}

// decodeI decodes JALR, loads and immediate ALU operations.
// Format: imm[11:0] | rs1 | funct3 | rd | opcode
func (d *Decoder) decodeI(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = signExtend(word>>20, 12)
	f3 := funct3(word)

	switch word & 0x7F {
	case opcodeJALR:
		if f3 == 0 {
			inst.Op = OpJALR
		}
	case opcodeLoad:
		switch f3 {
		case 0b000:
			inst.Op = OpLB
		case 0b001:
			inst.Op = OpLH
		case 0b010:
			inst.Op = OpLW
		case 0b100:
			inst.Op = OpLBU
		case 0b101:
			inst.Op = OpLHU
		}
	case opcodeOpImm:
		d.decodeOpImm(word, f3, inst)
	}
}

func (d *Decoder) decodeOpImm(word, f3 uint32, inst *Instruction) {
	switch f3 {
	case 0b000:
		inst.Op = OpADDI
	case 0b010:
		inst.Op = OpSLTI
	case 0b011:
		inst.Op = OpSLTIU
	case 0b100:
		inst.Op = OpXORI
	case 0b110:
		inst.Op = OpORI
	case 0b111:
		inst.Op = OpANDI
	case 0b001:
		inst.Op = OpSLLI
		inst.Imm = int32((word >> 20) & 0x1F)
	case 0b101:
		// bit 30 selects arithmetic shift
		if (word>>30)&0x1 == 1 {
			inst.Op = OpSRAI
		} else {
			inst.Op = OpSRLI
		}
		inst.Imm = int32((word >> 20) & 0x1F)
	}
}

// decodeS decodes stores.
// Format: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode
func (d *Decoder) decodeS(word uint32, inst *Instruction) {
	inst.Format = FormatS
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)

	imm := (word >> 7) & 0x1F
	imm |= ((word >> 25) & 0x7F) << 5
	inst.Imm = signExtend(imm, 12)

	switch funct3(word) {
	case 0b000:
		inst.Op = OpSB
	case 0b001:
		inst.Op = OpSH
	case 0b010:
		inst.Op = OpSW
	}
}

// decodeR decodes register-register ALU operations.
// Format: funct7 | rs2 | rs1 | funct3 | rd | opcode
func (d *Decoder) decodeR(word uint32, inst *Instruction) {
	inst.Format = FormatR
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)

	funct7 := word >> 25
	if funct7 != 0 && funct7 != 0x20 {
		return
	}
	alt := funct7 == 0x20
	if alt && funct3(word) != 0b000 && funct3(word) != 0b101 {
		return
	}

	switch funct3(word) {
	case 0b000:
		if alt {
			inst.Op = OpSUB
		} else {
			inst.Op = OpADD
		}
	case 0b001:
		inst.Op = OpSLL
	case 0b010:
		inst.Op = OpSLT
	case 0b011:
		inst.Op = OpSLTU
	case 0b100:
		inst.Op = OpXOR
	case 0b101:
		if alt {
			inst.Op = OpSRA
		} else {
			inst.Op = OpSRL
		}
	case 0b110:
		inst.Op = OpOR
	case 0b111:
		inst.Op = OpAND
	}
}
