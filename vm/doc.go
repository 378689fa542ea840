// Package vm implements the CHIP-8 virtual machine.
//
// The Machine consists of 4KiB of byte addressed memory, sixteen 8-bit
// general purpose registers (v0-vf), a 16-bit index register (I), a sixteen
// entry return stack, a 64x32 monochrome display, the delay and sound timers
// and a sixteen key hexadecimal keypad.
//
// Instructions are executed one at a time with Tick, while the timers are
// decremented by TickTimers at a fixed external cadence (nominally 60Hz).
// Presentation layers read the display with Screen and report key state
// with Keypress. A Machine has a single owner and is not safe for concurrent
// use.
//
// Faults (out of bounds accesses, unknown opcodes, oversized programs) are
// returned as errors and never partially applied.
package vm
