//go:build !(linux || darwin || freebsd)

package term

// MakeRaw is not available without termios.
func MakeRaw(fd uintptr) (restore func() error, err error) {
	err = ErrRawUnsupported
	return
}
