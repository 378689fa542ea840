package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/vm"
)

type keyLog struct {
	keys [vm.KEYS]bool
	sent int
}

func (kl *keyLog) Keypress(key int, pressed bool) {
	kl.keys[key] = pressed
	kl.sent++
}

func TestKeypadLayout(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{}

	table := [](struct {
		b   byte
		key int
	}){
		{'1', 0x1}, {'2', 0x2}, {'3', 0x3}, {'4', 0xc},
		{'q', 0x4}, {'w', 0x5}, {'e', 0x6}, {'r', 0xd},
		{'a', 0x7}, {'s', 0x8}, {'d', 0x9}, {'f', 0xe},
		{'z', 0xa}, {'x', 0x0}, {'c', 0xb}, {'v', 0xf},
		{'Q', 0x4}, {'V', 0xf},
	}

	for _, entry := range table {
		key, ok := kp.Press(entry.b)
		assert.True(ok, "%c", entry.b)
		assert.Equal(entry.key, key, "%c", entry.b)
	}

	for _, b := range []byte{'5', 'p', ' ', KEY_ESC, KEY_INTERRUPT} {
		_, ok := kp.Press(b)
		assert.False(ok, "%q", b)
	}
}

func TestKeypadHold(t *testing.T) {
	assert := assert.New(t)

	kp := &Keypad{Hold: 2}
	sink := &keyLog{}

	kp.Frame(sink)
	assert.Equal(vm.KEYS, sink.sent)
	assert.Equal([vm.KEYS]bool{}, sink.keys)

	key, ok := kp.Press('w')
	assert.True(ok)
	assert.True(kp.Held(key))

	kp.Frame(sink)
	assert.True(sink.keys[0x5])
	kp.Frame(sink)
	assert.True(sink.keys[0x5])
	kp.Frame(sink)
	assert.False(sink.keys[0x5])
	assert.False(kp.Held(key))

	// A repeated press extends the hold.
	kp.Press('w')
	kp.Frame(sink)
	kp.Press('w')
	kp.Frame(sink)
	kp.Frame(sink)
	assert.True(sink.keys[0x5])

	kp.Reset()
	kp.Frame(sink)
	assert.False(sink.keys[0x5])

	assert.False(kp.Held(-1))
	assert.False(kp.Held(vm.KEYS))
}

func TestKeypadMachine(t *testing.T) {
	assert := assert.New(t)

	m := vm.NewMachine()
	kp := &Keypad{Layout: map[byte]int{'k': 0x3, '!': 99}}

	_, ok := kp.Press('!')
	assert.False(ok)
	_, ok = kp.Press('1')
	assert.False(ok)

	kp.Press('k')
	kp.Frame(m)

	key, ok := m.FirstKey()
	assert.True(ok)
	assert.Equal(3, key)

	for range HOLD_FRAMES {
		kp.Frame(m)
	}
	_, ok = m.FirstKey()
	assert.False(ok)
}

func TestRender(t *testing.T) {
	assert := assert.New(t)

	var display [vm.SCREEN_SIZE]bool
	display[0] = true                              // (0, 0) top
	display[1+vm.SCREEN_WIDTH] = true              // (1, 1) bottom
	display[2] = true                              // (2, 0) top
	display[2+vm.SCREEN_WIDTH] = true              // (2, 1) bottom
	display[vm.SCREEN_SIZE-1] = true               // (63, 31) bottom
	display[vm.SCREEN_SIZE-vm.SCREEN_WIDTH] = true // (0, 31) bottom

	lines := strings.Split(Render(display), "\r\n")
	assert.Equal(vm.SCREEN_HEIGHT/2, len(lines))

	for n, line := range lines {
		assert.Equal(vm.SCREEN_WIDTH, len([]rune(line)), "line %v", n)
	}

	assert.Equal("▀▄█ ", string([]rune(lines[0])[:4]))
	last := []rune(lines[len(lines)-1])
	assert.Equal('▄', last[0])
	assert.Equal('▄', last[vm.SCREEN_WIDTH-1])
	assert.Equal(' ', last[1])
}

func TestScreen(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	scr := &Screen{Output: out}

	assert.NoError(scr.Begin())
	assert.Equal(ANSI_CLEAR+ANSI_HOME+ANSI_HIDE_CURSOR, out.String())
	out.Reset()

	var display [vm.SCREEN_SIZE]bool
	assert.NoError(scr.Draw(display))
	assert.True(strings.HasPrefix(out.String(), ANSI_HOME))
	assert.Equal(ANSI_HOME+Render(display), out.String())
	out.Reset()

	// Unchanged displays are not redrawn.
	assert.NoError(scr.Draw(display))
	assert.Equal(0, out.Len())

	display[5] = true
	scr.Status = "paused"
	assert.NoError(scr.Draw(display))
	assert.True(strings.HasSuffix(out.String(), "\r\npaused\x1b[K"))
	out.Reset()

	assert.NoError(scr.Bell())
	assert.Equal("\a", out.String())
	out.Reset()

	assert.NoError(scr.End())
	assert.Equal(ANSI_SHOW_CURSOR+"\r\n", out.String())
}
