package vm

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand"
	"time"
)

var _vm_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("%#x", MEMORY_SIZE),
	"PROGRAM_START": fmt.Sprintf("%#x", PROGRAM_START),
	"SCREEN_WIDTH":  fmt.Sprintf("%v", SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%v", SCREEN_HEIGHT),
	"FONT_BASE":     fmt.Sprintf("%#x", FONT_BASE),
	"FONT_HEIGHT":   fmt.Sprintf("%v", FONT_HEIGHT),
	"STACK_LIMIT":   fmt.Sprintf("%v", STACK_LIMIT),
}

// RandomSource supplies the random bytes of the rnd instruction.
// *math/rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// Machine is the simulation context of a CHIP-8 interpreter.
type Machine struct {
	Verbose bool         // Set to enable verbose logging.
	Rand    RandomSource // Source for the rnd instruction.

	PC    uint16           // Program counter.
	I     uint16           // Index register.
	V     [REGISTERS]uint8 // Register bank. V[FLAG] doubles as the flag register.
	Stack Stack            // Return address stack.
	Delay uint8            // Delay timer.
	Sound uint8            // Sound timer.

	Memory  [MEMORY_SIZE]byte // Address space. Font at FONT_BASE.
	Display [SCREEN_SIZE]bool // Framebuffer, row major.
	Keys    [KEYS]bool        // Keypad state.

	Ticks int // Instructions executed since reset.
}

// NewMachine creates a Machine in its reset state, with a time seeded
// random source.
func NewMachine() (m *Machine) {
	m = &Machine{
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	m.Reset()

	return
}

// Defines for the machine.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(_vm_defines)
}

// Reset the Machine state in place.
//   - Clears memory and installs the font.
//   - Clears the registers, stack, timers, keys and display.
//   - Sets the program counter to PROGRAM_START.
//
// Any loaded program must be loaded again.
func (m *Machine) Reset() {
	if m.Verbose {
		log.Printf("chip8: reset")
	}

	clear(m.Memory[:])
	copy(m.Memory[FONT_BASE:], font[:])
	clear(m.Display[:])
	clear(m.V[:])
	clear(m.Keys[:])
	m.Stack.Reset()

	m.PC = PROGRAM_START
	m.I = 0
	m.Delay = 0
	m.Sound = 0
	m.Ticks = 0
}

// LoadProgram copies a program image into memory at PROGRAM_START.
// Images larger than the space above PROGRAM_START are rejected without
// modifying memory.
func (m *Machine) LoadProgram(data []byte) (err error) {
	limit := MEMORY_SIZE - PROGRAM_START
	if len(data) > limit {
		err = ErrLoad{Size: len(data), Limit: limit}
		return
	}

	copy(m.Memory[PROGRAM_START:], data)

	if m.Verbose {
		log.Printf("chip8: loaded %v bytes at 0x%03x", len(data), PROGRAM_START)
	}

	return
}

// Fetch reads the big-endian instruction word at the program counter.
func (m *Machine) Fetch() (code Code, err error) {
	pc := int(m.PC)
	if pc+1 >= MEMORY_SIZE {
		err = errors.Join(ErrFetch, ErrAddress{Addr: pc, Count: 2})
		return
	}

	code = Code(uint16(m.Memory[pc])<<8 | uint16(m.Memory[pc+1]))
	return
}

// Tick executes a single instruction.
// On a fault nothing is committed and the program counter is left at the
// faulting instruction.
func (m *Machine) Tick() (err error) {
	code, err := m.Fetch()
	if err != nil {
		return
	}

	pc := m.PC
	m.PC += 2

	err = m.Execute(code)
	if err != nil {
		m.PC = pc
		return
	}

	m.Ticks++

	return
}

// TickTimers decrements the delay and sound timers, stopping at zero.
// The tone result is set when the sound timer expires on this tick.
func (m *Machine) TickTimers() (tone bool) {
	if m.Delay > 0 {
		m.Delay--
	}

	if m.Sound > 0 {
		tone = m.Sound == 1
		m.Sound--
	}

	return
}

// Tone reports whether the sound timer is running.
func (m *Machine) Tone() bool {
	return m.Sound > 0
}

// Keypress sets the state of a key. Keys outside 0..15 are ignored.
func (m *Machine) Keypress(key int, pressed bool) {
	if key < 0 || key >= KEYS {
		return
	}

	m.Keys[key] = pressed
}

// FirstKey returns the lowest numbered pressed key.
func (m *Machine) FirstKey() (key int, ok bool) {
	for n, pressed := range m.Keys {
		if pressed {
			return n, true
		}
	}

	return
}

// Screen returns a copy of the display.
func (m *Machine) Screen() [SCREEN_SIZE]bool {
	return m.Display
}

// Pixel returns the display cell at (x, y), wrapping around the edges.
func (m *Machine) Pixel(x, y int) bool {
	x = ((x % SCREEN_WIDTH) + SCREEN_WIDTH) % SCREEN_WIDTH
	y = ((y % SCREEN_HEIGHT) + SCREEN_HEIGHT) % SCREEN_HEIGHT

	return m.Display[x+SCREEN_WIDTH*y]
}

// String returns the current Machine state as a string.
func (m *Machine) String() (text string) {
	text += fmt.Sprintf("%5s: %03X\n", "pc", m.PC)
	text += fmt.Sprintf("%5s: %03X\n", "i", m.I)
	for n, val := range m.V {
		text += fmt.Sprintf("%5s: %02X\n", fmt.Sprintf("v%x", n), val)
	}

	strval := "---"
	val, ok := m.Stack.Peek()
	if ok {
		strval = fmt.Sprintf("%03X", val)
	}
	text += fmt.Sprintf("%5s: %v (%v)\n", "stack", strval, m.Stack.Len())
	text += fmt.Sprintf("%5s: %02X\n", "dt", m.Delay)
	text += fmt.Sprintf("%5s: %02X\n", "st", m.Sound)

	return
}
