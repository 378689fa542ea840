package term

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrRawUnsupported = errors.New(f("raw terminal mode unsupported"))
)
