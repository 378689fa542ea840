//go:build linux || darwin || freebsd

package term

import (
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// MakeRaw puts the terminal on fd into raw mode. Reads block until a single
// byte is available, and Ctrl-C is delivered as a character rather than a
// signal. The returned function restores the previous mode.
func MakeRaw(fd uintptr) (restore func() error, err error) {
	var saved unix.Termios

	err = termios.Tcgetattr(fd, &saved)
	if err != nil {
		return
	}

	raw := saved
	termios.Cfmakeraw(&raw)
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	err = termios.Tcsetattr(fd, termios.TCSANOW, &raw)
	if err != nil {
		return
	}

	restore = func() error {
		return termios.Tcsetattr(fd, termios.TCSANOW, &saved)
	}

	return
}
