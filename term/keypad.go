// Package term presents a CHIP-8 machine on an ANSI terminal.
//
// Terminals report key presses but never key releases, so the Keypad holds
// each press down for a number of frames before letting it go.
package term

import (
	"github.com/ezrec/chip8/vm"
)

const (
	HOLD_FRAMES = 6 // Frames a key stays down after a press.

	KEY_INTERRUPT = 3  // Ctrl-C
	KEY_ESC       = 27 // Escape
)

// KeySink receives key state changes. *vm.Machine satisfies it.
type KeySink interface {
	Keypress(key int, pressed bool)
}

// DefaultLayout maps the left hand side of a QWERTY keyboard onto the
// 4x4 keypad.
//
//	1 2 3 4      1 2 3 C
//	q w e r  =>  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var DefaultLayout = map[byte]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// Keypad translates host characters into keypad state.
type Keypad struct {
	Layout map[byte]int // Character to key map. DefaultLayout if nil.
	Hold   int          // Frames to hold a press. HOLD_FRAMES if zero.

	held [vm.KEYS]int // Frames remaining per key.
}

// Press records a host character. Characters outside the layout are
// ignored.
func (kp *Keypad) Press(b byte) (key int, ok bool) {
	layout := kp.Layout
	if layout == nil {
		layout = DefaultLayout
	}

	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}

	key, ok = layout[b]
	if !ok || key < 0 || key >= vm.KEYS {
		return 0, false
	}

	hold := kp.Hold
	if hold <= 0 {
		hold = HOLD_FRAMES
	}
	kp.held[key] = hold

	return
}

// Held reports whether a key is currently down.
func (kp *Keypad) Held(key int) bool {
	if key < 0 || key >= vm.KEYS {
		return false
	}
	return kp.held[key] > 0
}

// Frame sends the state of every key to the sink, then ages the presses.
func (kp *Keypad) Frame(sink KeySink) {
	for key, frames := range kp.held {
		sink.Keypress(key, frames > 0)
		if frames > 0 {
			kp.held[key]--
		}
	}
}

// Reset releases all keys.
func (kp *Keypad) Reset() {
	clear(kp.held[:])
}
