package vm

import (
	"errors"
	"log"
	"math/rand"
	"time"
)

// checkSpan verifies that count bytes starting at addr are in memory.
func checkSpan(addr int, count int) (err error) {
	if addr+count > MEMORY_SIZE {
		err = ErrAddress{Addr: addr, Count: count}
	}
	return
}

func flag(set bool) uint8 {
	if set {
		return 1
	}
	return 0
}

// random returns one uniformly distributed byte.
func (m *Machine) random() uint8 {
	if m.Rand == nil {
		m.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return uint8(m.Rand.Intn(256))
}

// skipIf skips the next instruction when cond holds.
func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += 2
	}
}

// key returns the state of the key numbered by a register value.
func (m *Machine) key(value uint8) (pressed bool, err error) {
	if int(value) >= KEYS {
		err = errors.Join(ErrOutOfBounds, ErrKeyInvalid)
		return
	}

	pressed = m.Keys[value]
	return
}

// draw XORs an 8 pixel wide, rows high sprite from memory at I onto the
// display at (x, y). Pixels wrap around the display edges. The flag register
// is set if any lit pixel was turned off.
func (m *Machine) draw(x, y uint8, rows uint8) (err error) {
	err = checkSpan(int(m.I), int(rows))
	if err != nil {
		return
	}

	collision := false
	for row := range int(rows) {
		pixels := m.Memory[int(m.I)+row]
		for col := range SPRITE_WIDTH {
			if pixels&(0x80>>col) == 0 {
				continue
			}

			px := (int(x) + col) % SCREEN_WIDTH
			py := (int(y) + row) % SCREEN_HEIGHT
			index := px + SCREEN_WIDTH*py

			collision = collision || m.Display[index]
			m.Display[index] = !m.Display[index]
		}
	}

	m.V[FLAG] = flag(collision)

	return
}

// Execute executes a single decoded instruction.
// The program counter is expected to already point past the instruction.
func (m *Machine) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	if m.Verbose {
		log.Printf("chip8: %03x: %v", m.PC-2, code)
	}

	x := code.X()
	y := code.Y()
	vx := m.V[x]
	vy := m.V[y]

	switch code.Op() {
	case OP_NOP:
		// pass
	case OP_CLS:
		clear(m.Display[:])
	case OP_RET:
		addr, ok := m.Stack.Pop()
		if !ok {
			err = errors.Join(ErrOutOfBounds, ErrStackEmpty)
			return
		}
		m.PC = addr
	case OP_JP:
		m.PC = code.NNN()
	case OP_CALL:
		if !m.Stack.Push(m.PC) {
			err = errors.Join(ErrOutOfBounds, ErrStackFull)
			return
		}
		m.PC = code.NNN()
	case OP_SE_BYTE:
		m.skipIf(vx == code.NN())
	case OP_SNE_BYTE:
		m.skipIf(vx != code.NN())
	case OP_SE_REG:
		m.skipIf(vx == vy)
	case OP_SNE_REG:
		m.skipIf(vx != vy)
	case OP_LD_BYTE:
		m.V[x] = code.NN()
	case OP_ADD_BYTE:
		m.V[x] = vx + code.NN()
	case OP_LD_REG:
		m.V[x] = vy
	case OP_OR:
		m.V[x] = vx | vy
	case OP_AND:
		m.V[x] = vx & vy
	case OP_XOR:
		m.V[x] = vx ^ vy
	case OP_ADD_REG:
		sum := uint16(vx) + uint16(vy)
		m.V[x] = uint8(sum)
		m.V[FLAG] = flag(sum > 0xff)
	case OP_SUB:
		m.V[x] = vx - vy
		m.V[FLAG] = flag(vx >= vy)
	case OP_SUBN:
		m.V[x] = vy - vx
		m.V[FLAG] = flag(vy >= vx)
	case OP_SHR:
		m.V[x] = vx >> 1
		m.V[FLAG] = vx & 1
	case OP_SHL:
		m.V[x] = vx << 1
		m.V[FLAG] = vx >> 7
	case OP_LD_I:
		m.I = code.NNN()
	case OP_JP_V0:
		m.PC = code.NNN() + uint16(m.V[0])
	case OP_RND:
		m.V[x] = m.random() & code.NN()
	case OP_DRW:
		err = m.draw(vx, vy, code.N())
	case OP_SKP, OP_SKNP:
		var pressed bool
		pressed, err = m.key(vx)
		if err != nil {
			return
		}
		m.skipIf(pressed == (code.Op() == OP_SKP))
	case OP_LD_VX_DT:
		m.V[x] = m.Delay
	case OP_LD_KEY:
		key, ok := m.FirstKey()
		if !ok {
			// Re-execute until a key is down.
			m.PC -= 2
			return
		}
		m.V[x] = uint8(key)
	case OP_LD_DT:
		m.Delay = vx
	case OP_LD_ST:
		m.Sound = vx
	case OP_ADD_I:
		m.I += uint16(vx)
	case OP_LD_F:
		m.I = FONT_BASE + uint16(vx)*FONT_HEIGHT
	case OP_LD_B:
		addr := int(m.I)
		err = checkSpan(addr, 3)
		if err != nil {
			return
		}
		m.Memory[addr+0] = vx / 100
		m.Memory[addr+1] = (vx / 10) % 10
		m.Memory[addr+2] = vx % 10
	case OP_LD_STORE:
		// v0 through vx, inclusive.
		addr := int(m.I)
		err = checkSpan(addr, int(x)+1)
		if err != nil {
			return
		}
		copy(m.Memory[addr:], m.V[:x+1])
	case OP_LD_LOAD:
		addr := int(m.I)
		err = checkSpan(addr, int(x)+1)
		if err != nil {
			return
		}
		copy(m.V[:x+1], m.Memory[addr:])
	default:
		err = ErrOpcodeUnknown
		return
	}

	return
}
