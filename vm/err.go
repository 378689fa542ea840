package vm

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Machine faults
	ErrOutOfBounds   = errors.New(f("out of bounds"))
	ErrFetch         = errors.New(f("fetch beyond memory"))
	ErrStackEmpty    = errors.New(f("stack empty"))
	ErrStackFull     = errors.New(f("stack full"))
	ErrKeyInvalid    = errors.New(f("key invalid"))
	ErrOpcodeUnknown = errors.New(f("opcode unknown"))
	ErrLoadOverflow  = errors.New(f("program exceeds memory"))

	// Instruction encode errors
	ErrCodeInvalid = errors.New(f("instruction invalid"))
	ErrCodeArgs    = errors.New(f("operand count"))
	ErrCodeRange   = errors.New(f("operand out of range"))
)

// ErrOpcode annotates a fault with the raw opcode that caused it.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%04x %v", uint16(eo), Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAddress reports a memory access outside of the address space.
type ErrAddress struct {
	Addr  int // First offending address.
	Count int // Length of the access.
}

func (err ErrAddress) Error() string {
	return f("address 0x%04x+%v beyond 0x%04x", err.Addr, err.Count, MEMORY_SIZE)
}

func (err ErrAddress) Unwrap() error {
	return ErrOutOfBounds
}

// ErrLoad reports a program image too large for memory.
type ErrLoad struct {
	Size  int // Size of the program image.
	Limit int // Space available from the load address.
}

func (err ErrLoad) Error() string {
	return f("program of %v bytes exceeds %v bytes available", err.Size, err.Limit)
}

func (err ErrLoad) Unwrap() error {
	return ErrLoadOverflow
}
