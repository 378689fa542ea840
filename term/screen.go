package term

import (
	"io"
	"strings"

	"github.com/ezrec/chip8/vm"
)

const (
	ANSI_HOME        = "\x1b[H"
	ANSI_CLEAR       = "\x1b[2J"
	ANSI_HIDE_CURSOR = "\x1b[?25l"
	ANSI_SHOW_CURSOR = "\x1b[?25h"
	BELL             = "\a"
)

// Half block glyphs, indexed by (top, bottom) pixel.
var glyphs = [2][2]string{
	{" ", "▄"},
	{"▀", "█"},
}

// Screen renders the display as text, two pixel rows per line.
type Screen struct {
	Output io.Writer // Terminal output.
	Status string    // Line shown below the display.

	last  [vm.SCREEN_SIZE]bool
	drawn bool
}

// Begin clears the terminal and hides the cursor.
func (scr *Screen) Begin() (err error) {
	scr.drawn = false
	_, err = io.WriteString(scr.Output, ANSI_CLEAR+ANSI_HOME+ANSI_HIDE_CURSOR)
	return
}

// End restores the cursor below the display.
func (scr *Screen) End() (err error) {
	_, err = io.WriteString(scr.Output, ANSI_SHOW_CURSOR+"\r\n")
	return
}

// Render returns the text for a display, without cursor movement.
// Lines are separated by "\r\n" for use in raw mode.
func Render(display [vm.SCREEN_SIZE]bool) string {
	var sb strings.Builder

	for y := 0; y < vm.SCREEN_HEIGHT; y += 2 {
		if y > 0 {
			sb.WriteString("\r\n")
		}
		for x := range vm.SCREEN_WIDTH {
			top := display[x+vm.SCREEN_WIDTH*y]
			bottom := display[x+vm.SCREEN_WIDTH*(y+1)]
			sb.WriteString(glyphs[b2i(top)][b2i(bottom)])
		}
	}

	return sb.String()
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Draw renders the display, unless it is unchanged since the last draw.
func (scr *Screen) Draw(display [vm.SCREEN_SIZE]bool) (err error) {
	if scr.drawn && display == scr.last {
		return
	}

	text := ANSI_HOME + Render(display)
	if len(scr.Status) != 0 {
		text += "\r\n" + scr.Status + "\x1b[K"
	}

	_, err = io.WriteString(scr.Output, text)
	if err != nil {
		return
	}

	scr.last = display
	scr.drawn = true

	return
}

// Bell rings the terminal bell.
func (scr *Screen) Bell() (err error) {
	_, err = io.WriteString(scr.Output, BELL)
	return
}
