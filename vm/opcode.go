package vm

import (
	"fmt"
)

// Op is a decoded instruction class.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_INVALID  = Op(0)  // invalid
	OP_NOP      = Op(1)  // nop
	OP_CLS      = Op(2)  // cls
	OP_RET      = Op(3)  // ret
	OP_JP       = Op(4)  // jp
	OP_CALL     = Op(5)  // call
	OP_SE_BYTE  = Op(6)  // se
	OP_SNE_BYTE = Op(7)  // sne
	OP_SE_REG   = Op(8)  // se
	OP_LD_BYTE  = Op(9)  // ld
	OP_ADD_BYTE = Op(10) // add
	OP_LD_REG   = Op(11) // ld
	OP_OR       = Op(12) // or
	OP_AND      = Op(13) // and
	OP_XOR      = Op(14) // xor
	OP_ADD_REG  = Op(15) // add
	OP_SUB      = Op(16) // sub
	OP_SHR      = Op(17) // shr
	OP_SUBN     = Op(18) // subn
	OP_SHL      = Op(19) // shl
	OP_SNE_REG  = Op(20) // sne
	OP_LD_I     = Op(21) // ld
	OP_JP_V0    = Op(22) // jp
	OP_RND      = Op(23) // rnd
	OP_DRW      = Op(24) // drw
	OP_SKP      = Op(25) // skp
	OP_SKNP     = Op(26) // sknp
	OP_LD_VX_DT = Op(27) // ld
	OP_LD_KEY   = Op(28) // ld
	OP_LD_DT    = Op(29) // ld
	OP_LD_ST    = Op(30) // ld
	OP_ADD_I    = Op(31) // add
	OP_LD_F     = Op(32) // ld
	OP_LD_B     = Op(33) // ld
	OP_LD_STORE = Op(34) // ld
	OP_LD_LOAD  = Op(35) // ld
)

// OP_COUNT is the number of defined instruction classes, including OP_INVALID.
const OP_COUNT = 36

// Form is the operand layout of an instruction class.
type Form int

const (
	FORM_NONE  = Form(0) // No operands.
	FORM_NNN   = Form(1) // 12-bit address.
	FORM_X_NN  = Form(2) // Register and byte.
	FORM_X_Y   = Form(3) // Two registers.
	FORM_X     = Form(4) // Single register.
	FORM_X_Y_N = Form(5) // Two registers and a nibble.
)

// Args returns the number of operands of the form.
func (form Form) Args() int {
	switch form {
	case FORM_NNN, FORM_X:
		return 1
	case FORM_X_NN, FORM_X_Y:
		return 2
	case FORM_X_Y_N:
		return 3
	}
	return 0
}

type opInfo struct {
	base   uint16 // Opcode with all operand fields zero.
	form   Form   // Operand layout.
	format string // Disassembly format.
}

var opTable = [OP_COUNT]opInfo{
	OP_INVALID:  {0x0000, FORM_NONE, ".word"},
	OP_NOP:      {0x0000, FORM_NONE, "nop"},
	OP_CLS:      {0x00E0, FORM_NONE, "cls"},
	OP_RET:      {0x00EE, FORM_NONE, "ret"},
	OP_JP:       {0x1000, FORM_NNN, "jp 0x%03x"},
	OP_CALL:     {0x2000, FORM_NNN, "call 0x%03x"},
	OP_SE_BYTE:  {0x3000, FORM_X_NN, "se v%x, 0x%02x"},
	OP_SNE_BYTE: {0x4000, FORM_X_NN, "sne v%x, 0x%02x"},
	OP_SE_REG:   {0x5000, FORM_X_Y, "se v%x, v%x"},
	OP_LD_BYTE:  {0x6000, FORM_X_NN, "ld v%x, 0x%02x"},
	OP_ADD_BYTE: {0x7000, FORM_X_NN, "add v%x, 0x%02x"},
	OP_LD_REG:   {0x8000, FORM_X_Y, "ld v%x, v%x"},
	OP_OR:       {0x8001, FORM_X_Y, "or v%x, v%x"},
	OP_AND:      {0x8002, FORM_X_Y, "and v%x, v%x"},
	OP_XOR:      {0x8003, FORM_X_Y, "xor v%x, v%x"},
	OP_ADD_REG:  {0x8004, FORM_X_Y, "add v%x, v%x"},
	OP_SUB:      {0x8005, FORM_X_Y, "sub v%x, v%x"},
	OP_SHR:      {0x8006, FORM_X_Y, "shr v%x, v%x"},
	OP_SUBN:     {0x8007, FORM_X_Y, "subn v%x, v%x"},
	OP_SHL:      {0x800E, FORM_X_Y, "shl v%x, v%x"},
	OP_SNE_REG:  {0x9000, FORM_X_Y, "sne v%x, v%x"},
	OP_LD_I:     {0xA000, FORM_NNN, "ld i, 0x%03x"},
	OP_JP_V0:    {0xB000, FORM_NNN, "jp v0, 0x%03x"},
	OP_RND:      {0xC000, FORM_X_NN, "rnd v%x, 0x%02x"},
	OP_DRW:      {0xD000, FORM_X_Y_N, "drw v%x, v%x, %d"},
	OP_SKP:      {0xE09E, FORM_X, "skp v%x"},
	OP_SKNP:     {0xE0A1, FORM_X, "sknp v%x"},
	OP_LD_VX_DT: {0xF007, FORM_X, "ld v%x, dt"},
	OP_LD_KEY:   {0xF00A, FORM_X, "ld v%x, k"},
	OP_LD_DT:    {0xF015, FORM_X, "ld dt, v%x"},
	OP_LD_ST:    {0xF018, FORM_X, "ld st, v%x"},
	OP_ADD_I:    {0xF01E, FORM_X, "add i, v%x"},
	OP_LD_F:     {0xF029, FORM_X, "ld f, v%x"},
	OP_LD_B:     {0xF033, FORM_X, "ld b, v%x"},
	OP_LD_STORE: {0xF055, FORM_X, "ld [i], v%x"},
	OP_LD_LOAD:  {0xF065, FORM_X, "ld v%x, [i]"},
}

// formLimits are the largest encodable values of each operand.
var formLimits = map[Form][]uint16{
	FORM_NNN:   {0xfff},
	FORM_X_NN:  {0xf, 0xff},
	FORM_X_Y:   {0xf, 0xf},
	FORM_X:     {0xf},
	FORM_X_Y_N: {0xf, 0xf, 0xf},
}

// Form returns the operand layout of the instruction class.
func (op Op) Form() Form {
	if op < 0 || op >= OP_COUNT {
		return FORM_NONE
	}
	return opTable[op].form
}

// Code is a single 16-bit instruction word.
type Code uint16

// MakeCode encodes an instruction class with its operands, in the order
// they appear in the opcode (X, Y, N / NN / NNN).
func MakeCode(op Op, args ...uint16) (code Code, err error) {
	if op <= OP_INVALID || op >= OP_COUNT {
		err = ErrCodeInvalid
		return
	}

	info := opTable[op]
	if len(args) != info.form.Args() {
		err = ErrCodeArgs
		return
	}

	limits := formLimits[info.form]
	for n, arg := range args {
		if arg > limits[n] {
			err = ErrCodeRange
			return
		}
	}

	word := info.base
	switch info.form {
	case FORM_NNN:
		word |= args[0]
	case FORM_X_NN:
		word |= (args[0] << 8) | args[1]
	case FORM_X_Y:
		word |= (args[0] << 8) | (args[1] << 4)
	case FORM_X:
		word |= args[0] << 8
	case FORM_X_Y_N:
		word |= (args[0] << 8) | (args[1] << 4) | args[2]
	}

	code = Code(word)
	return
}

// Nibbles splits the code into its four 4-bit fields, most significant first.
func (code Code) Nibbles() (a, b, c, d uint8) {
	word := uint16(code)
	a = uint8((word >> 12) & 0xf)
	b = uint8((word >> 8) & 0xf)
	c = uint8((word >> 4) & 0xf)
	d = uint8((word >> 0) & 0xf)
	return
}

// X returns the first register operand.
func (code Code) X() uint8 {
	return uint8((code >> 8) & 0xf)
}

// Y returns the second register operand.
func (code Code) Y() uint8 {
	return uint8((code >> 4) & 0xf)
}

// N returns the low nibble.
func (code Code) N() uint8 {
	return uint8(code & 0xf)
}

// NN returns the low byte.
func (code Code) NN() uint8 {
	return uint8(code & 0xff)
}

// NNN returns the low 12 bits.
func (code Code) NNN() uint16 {
	return uint16(code & 0xfff)
}

// Op decodes the instruction class. Unrecognized codes are OP_INVALID.
func (code Code) Op() Op {
	a, _, _, d := code.Nibbles()

	switch a {
	case 0x0:
		switch code {
		case 0x0000:
			return OP_NOP
		case 0x00E0:
			return OP_CLS
		case 0x00EE:
			return OP_RET
		}
	case 0x1:
		return OP_JP
	case 0x2:
		return OP_CALL
	case 0x3:
		return OP_SE_BYTE
	case 0x4:
		return OP_SNE_BYTE
	case 0x5:
		if d == 0x0 {
			return OP_SE_REG
		}
	case 0x6:
		return OP_LD_BYTE
	case 0x7:
		return OP_ADD_BYTE
	case 0x8:
		switch d {
		case 0x0:
			return OP_LD_REG
		case 0x1:
			return OP_OR
		case 0x2:
			return OP_AND
		case 0x3:
			return OP_XOR
		case 0x4:
			return OP_ADD_REG
		case 0x5:
			return OP_SUB
		case 0x6:
			return OP_SHR
		case 0x7:
			return OP_SUBN
		case 0xE:
			return OP_SHL
		}
	case 0x9:
		if d == 0x0 {
			return OP_SNE_REG
		}
	case 0xA:
		return OP_LD_I
	case 0xB:
		return OP_JP_V0
	case 0xC:
		return OP_RND
	case 0xD:
		return OP_DRW
	case 0xE:
		switch code.NN() {
		case 0x9E:
			return OP_SKP
		case 0xA1:
			return OP_SKNP
		}
	case 0xF:
		switch code.NN() {
		case 0x07:
			return OP_LD_VX_DT
		case 0x0A:
			return OP_LD_KEY
		case 0x15:
			return OP_LD_DT
		case 0x18:
			return OP_LD_ST
		case 0x1E:
			return OP_ADD_I
		case 0x29:
			return OP_LD_F
		case 0x33:
			return OP_LD_B
		case 0x55:
			return OP_LD_STORE
		case 0x65:
			return OP_LD_LOAD
		}
	}

	return OP_INVALID
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op := code.Op()
	info := opTable[op]

	switch info.form {
	case FORM_NONE:
		out = info.format
		if op == OP_INVALID {
			out = fmt.Sprintf("%v 0x%04x", info.format, uint16(code))
		}
	case FORM_NNN:
		out = fmt.Sprintf(info.format, code.NNN())
	case FORM_X_NN:
		out = fmt.Sprintf(info.format, code.X(), code.NN())
	case FORM_X_Y:
		out = fmt.Sprintf(info.format, code.X(), code.Y())
	case FORM_X:
		out = fmt.Sprintf(info.format, code.X())
	case FORM_X_Y_N:
		out = fmt.Sprintf(info.format, code.X(), code.Y(), code.N())
	}

	return
}
