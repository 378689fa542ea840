package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_Fields(t *testing.T) {
	assert := assert.New(t)

	code := Code(0xd4a7)

	a, b, c, d := code.Nibbles()
	assert.Equal([]uint8{0xd, 0x4, 0xa, 0x7}, []uint8{a, b, c, d})
	assert.Equal(uint8(0x4), code.X())
	assert.Equal(uint8(0xa), code.Y())
	assert.Equal(uint8(0x7), code.N())
	assert.Equal(uint8(0xa7), code.NN())
	assert.Equal(uint16(0x4a7), code.NNN())
}

func TestCode_Op(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		op   Op
		text string
	}){
		{0x0000, OP_NOP, "nop"},
		{0x00e0, OP_CLS, "cls"},
		{0x00ee, OP_RET, "ret"},
		{0x0123, OP_INVALID, ".word 0x0123"},
		{0x1abc, OP_JP, "jp 0xabc"},
		{0x2345, OP_CALL, "call 0x345"},
		{0x3a12, OP_SE_BYTE, "se va, 0x12"},
		{0x4b34, OP_SNE_BYTE, "sne vb, 0x34"},
		{0x5120, OP_SE_REG, "se v1, v2"},
		{0x5121, OP_INVALID, ".word 0x5121"},
		{0x63ff, OP_LD_BYTE, "ld v3, 0xff"},
		{0x7401, OP_ADD_BYTE, "add v4, 0x01"},
		{0x8120, OP_LD_REG, "ld v1, v2"},
		{0x8121, OP_OR, "or v1, v2"},
		{0x8122, OP_AND, "and v1, v2"},
		{0x8123, OP_XOR, "xor v1, v2"},
		{0x8124, OP_ADD_REG, "add v1, v2"},
		{0x8125, OP_SUB, "sub v1, v2"},
		{0x8126, OP_SHR, "shr v1, v2"},
		{0x8127, OP_SUBN, "subn v1, v2"},
		{0x812e, OP_SHL, "shl v1, v2"},
		{0x8128, OP_INVALID, ".word 0x8128"},
		{0x9ef0, OP_SNE_REG, "sne ve, vf"},
		{0xa2f0, OP_LD_I, "ld i, 0x2f0"},
		{0xb200, OP_JP_V0, "jp v0, 0x200"},
		{0xc70f, OP_RND, "rnd v7, 0x0f"},
		{0xd12f, OP_DRW, "drw v1, v2, 15"},
		{0xe59e, OP_SKP, "skp v5"},
		{0xe5a1, OP_SKNP, "sknp v5"},
		{0xe500, OP_INVALID, ".word 0xe500"},
		{0xf607, OP_LD_VX_DT, "ld v6, dt"},
		{0xf60a, OP_LD_KEY, "ld v6, k"},
		{0xf615, OP_LD_DT, "ld dt, v6"},
		{0xf618, OP_LD_ST, "ld st, v6"},
		{0xf61e, OP_ADD_I, "add i, v6"},
		{0xf629, OP_LD_F, "ld f, v6"},
		{0xf633, OP_LD_B, "ld b, v6"},
		{0xf655, OP_LD_STORE, "ld [i], v6"},
		{0xf665, OP_LD_LOAD, "ld v6, [i]"},
		{0xf666, OP_INVALID, ".word 0xf666"},
	}

	for _, entry := range table {
		assert.Equal(entry.op, entry.code.Op(), "%04x", uint16(entry.code))
		assert.Equal(entry.text, entry.code.String(), "%04x", uint16(entry.code))
	}
}

func TestOp_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("invalid", OP_INVALID.String())
	assert.Equal("drw", OP_DRW.String())
	assert.Equal("ld", OP_LD_LOAD.String())
	assert.Equal("sknp", OP_SKNP.String())
	assert.Equal("Op(36)", Op(OP_COUNT).String())
}

func TestMakeCode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op   Op
		args []uint16
		code Code
	}){
		{OP_NOP, nil, 0x0000},
		{OP_CLS, nil, 0x00e0},
		{OP_RET, nil, 0x00ee},
		{OP_JP, []uint16{0x234}, 0x1234},
		{OP_SE_BYTE, []uint16{0xa, 0x55}, 0x3a55},
		{OP_SHL, []uint16{0x1, 0x2}, 0x812e},
		{OP_DRW, []uint16{0x1, 0x2, 0x5}, 0xd125},
		{OP_LD_STORE, []uint16{0xf}, 0xff55},
	}

	for _, entry := range table {
		code, err := MakeCode(entry.op, entry.args...)
		assert.NoError(err, entry.op.String())
		assert.Equal(entry.code, code, entry.op.String())
	}
}

func TestMakeCode_Errors(t *testing.T) {
	assert := assert.New(t)

	_, err := MakeCode(OP_INVALID)
	assert.ErrorIs(err, ErrCodeInvalid)

	_, err = MakeCode(Op(OP_COUNT))
	assert.ErrorIs(err, ErrCodeInvalid)

	_, err = MakeCode(OP_JP)
	assert.ErrorIs(err, ErrCodeArgs)

	_, err = MakeCode(OP_CLS, 1)
	assert.ErrorIs(err, ErrCodeArgs)

	_, err = MakeCode(OP_JP, 0x1000)
	assert.ErrorIs(err, ErrCodeRange)

	_, err = MakeCode(OP_LD_BYTE, 0x10, 0)
	assert.ErrorIs(err, ErrCodeRange)

	_, err = MakeCode(OP_LD_BYTE, 0x1, 0x100)
	assert.ErrorIs(err, ErrCodeRange)
}

// Every decodable word re-encodes to itself from its decoded fields.
func TestCode_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	valid := 0
	for word := range 0x10000 {
		code := Code(word)
		op := code.Op()
		if op == OP_INVALID {
			continue
		}
		valid++

		var args []uint16
		switch op.Form() {
		case FORM_NNN:
			args = []uint16{code.NNN()}
		case FORM_X_NN:
			args = []uint16{uint16(code.X()), uint16(code.NN())}
		case FORM_X_Y:
			args = []uint16{uint16(code.X()), uint16(code.Y())}
		case FORM_X:
			args = []uint16{uint16(code.X())}
		case FORM_X_Y_N:
			args = []uint16{uint16(code.X()), uint16(code.Y()), uint16(code.N())}
		}

		again, err := MakeCode(op, args...)
		if err != nil || again != code {
			t.Fatalf("%04x: re-encoded as %04x, %v", word, uint16(again), err)
		}
	}

	// 3 fixed words, 10 full blocks, 11 register pair forms and 11 single
	// register forms.
	assert.Equal(3+10*0x1000+11*0x100+11*0x10, valid)
}
