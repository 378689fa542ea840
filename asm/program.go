package asm

import (
	"iter"

	"github.com/ezrec/chip8/vm"
)

// Opcode is the output of a single source line.
type Opcode struct {
	LineNo    int       // Source line number.
	Addr      int       // Load address.
	Words     []string  // Source words, after expansion.
	Codes     []vm.Code // Instruction words.
	Data      []byte    // Raw bytes emitted by a data directive.
	LinkLabel string    // Label linked into the NNN field of the last code.
}

// Size returns the number of bytes the opcode occupies.
func (op *Opcode) Size() int {
	return 2*len(op.Codes) + len(op.Data)
}

// Bytes returns the memory image of the opcode.
func (op *Opcode) Bytes() (data []byte) {
	data = make([]byte, 0, op.Size())
	for _, code := range op.Codes {
		data = append(data, byte(code>>8), byte(code))
	}
	data = append(data, op.Data...)

	return
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

// Debug refers to the opcode covering an address.
type Debug struct {
	*Opcode
	Index int // Byte offset of the address within the opcode.
}

// Debug returns the opcode covering addr. Debug.Opcode is nil if there is
// none.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+op.Size() {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Binary returns the program image, to be loaded at vm.PROGRAM_START.
func (prog *Program) Binary() (bin []byte) {
	end := vm.PROGRAM_START
	for _, op := range prog.Opcodes {
		end = max(end, op.Addr+op.Size())
	}

	bin = make([]byte, end-vm.PROGRAM_START)
	for _, op := range prog.Opcodes {
		copy(bin[op.Addr-vm.PROGRAM_START:], op.Bytes())
	}

	return
}

// Codes iterates over the instructions of the program, by address.
func (prog *Program) Codes() iter.Seq2[uint16, vm.Code] {
	return func(yield func(addr uint16, code vm.Code) bool) {
		for _, op := range prog.Opcodes {
			addr := uint16(op.Addr)
			for n, code := range op.Codes {
				if !yield(addr+uint16(2*n), code) {
					return
				}
			}
		}
	}
}
