package vm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzMachine(f *testing.F) {
	for rv := range 0x10 {
		f.Add(uint16(rv<<12), uint16(PROGRAM_START), uint16(0x300), uint8(rv), uint16(1<<rv))
		f.Add(uint16(rv<<12)|0xfff, uint16(MEMORY_SIZE-2), uint16(MEMORY_SIZE-1), uint8(0xff), uint16(0))
	}
	f.Add(uint16(0x00ee), uint16(PROGRAM_START), uint16(0), uint8(0), uint16(0))
	f.Add(uint16(0xf065), uint16(MEMORY_SIZE-1), uint16(0), uint8(0), uint16(0))

	f.Fuzz(func(t *testing.T, opcode uint16, pc uint16, index uint16, seed uint8, keys uint16) {
		assert := assert.New(t)

		m := NewMachine()
		m.Rand = fixedRandom(seed)
		m.PC = pc
		m.I = index
		for n := range m.V {
			m.V[n] = seed + uint8(n*0x11)
		}
		for n := range m.Keys {
			m.Keys[n] = keys&(1<<n) != 0
		}
		if int(pc)+1 < MEMORY_SIZE {
			m.Memory[pc] = byte(opcode >> 8)
			m.Memory[pc+1] = byte(opcode)
		}
		for n := range seed & 0xf {
			m.Stack.Push(uint16(n) * 2)
		}

		before := *m

		var err error
		assert.NotPanics(func() { err = m.Tick() })

		code := Code(opcode)
		code_str := fmt.Sprintf("0x%04x (%v) pc:%03x i:%03x\n%v", opcode, code, pc, index, m.String())

		if err != nil {
			assert.Equal(before, *m, code_str)

			switch {
			case errors.Is(err, ErrFetch):
				assert.GreaterOrEqual(int(pc)+1, MEMORY_SIZE, code_str)
			case errors.Is(err, ErrOpcodeUnknown):
				assert.Equal(OP_INVALID, code.Op(), code_str)
			default:
				assert.ErrorIs(err, ErrOutOfBounds, code_str)
			}
			return
		}

		assert.NotEqual(OP_INVALID, code.Op(), code_str)
		assert.Equal(before.Ticks+1, m.Ticks, code_str)

		switch code.Op() {
		case OP_JP:
			assert.Equal(code.NNN(), m.PC, code_str)
		case OP_CALL:
			assert.Equal(code.NNN(), m.PC, code_str)
			top, _ := m.Stack.Peek()
			assert.Equal(pc+2, top, code_str)
		case OP_LD_KEY:
			if keys == 0 {
				assert.Equal(pc, m.PC, code_str)
			} else {
				assert.Equal(pc+2, m.PC, code_str)
			}
		case OP_SE_BYTE, OP_SNE_BYTE, OP_SE_REG, OP_SNE_REG, OP_SKP, OP_SKNP:
			assert.Contains([]uint16{pc + 2, pc + 4}, m.PC, code_str)
		case OP_RET, OP_JP_V0:
		default:
			assert.Equal(pc+2, m.PC, code_str)
		}
	})
}
