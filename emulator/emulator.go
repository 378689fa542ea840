// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/ezrec/chip8/asm"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/vm"
)

const (
	TICKS_PER_FRAME = 10 // Instructions executed per frame.
	FRAME_RATE      = 60 // Frames per second; the timer rate.
	ROM_LIST        = "rom_list.txt"
)

var _emulator_defines = map[string]string{
	"TICKS_PER_FRAME": fmt.Sprintf("%v", TICKS_PER_FRAME),
	"FRAME_RATE":      fmt.Sprintf("%v", FRAME_RATE),
}

// Emulator state. Machine + loaded program image.
type Emulator struct {
	Verbose       bool         // If set, enables verbose logging.
	*vm.Machine                // Reference to the machine simulation.
	Program       *asm.Program // Listing of the running program, if assembled.
	TicksPerFrame int          // Instructions executed per Frame().

	rom []byte // Program image reloaded on Reset().
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Machine:       vm.NewMachine(),
		TicksPerFrame: TICKS_PER_FRAME,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Machine.Defines(),
	)
}

// Assemble a program, with all of the emulator defines predefined.
func (emu *Emulator) Assemble(input io.Reader) (prog *asm.Program, err error) {
	assembler := &asm.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		assembler.Predefine(key, value)
	}

	prog, err = assembler.Parse(input)
	return
}

// LoadROM loads a raw program image and resets the machine.
func (emu *Emulator) LoadROM(data []byte) (err error) {
	if len(data) > vm.MEMORY_SIZE-vm.PROGRAM_START {
		err = vm.ErrLoad{Size: len(data), Limit: vm.MEMORY_SIZE - vm.PROGRAM_START}
		return
	}

	emu.Program = nil
	emu.rom = slices.Clone(data)

	err = emu.Reset()
	return
}

// LoadProgram loads an assembled program and resets the machine.
func (emu *Emulator) LoadProgram(prog *asm.Program) (err error) {
	err = emu.LoadROM(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// LoadFile loads a ROM image from a filesystem.
func (emu *Emulator) LoadFile(fsys fs.FS, name string) (err error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: %v: %v bytes", name, len(data))
	}

	err = emu.LoadROM(data)
	return
}

// Reset the machine and reload the program image.
func (emu *Emulator) Reset() (err error) {
	emu.Machine.Verbose = emu.Verbose

	emu.Machine.Reset()

	err = emu.Machine.LoadProgram(emu.rom)
	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Machine.Ticks
}

// Code returns the current instruction code.
func (emu *Emulator) Code() vm.Code {
	code, _ := emu.Machine.Fetch()
	return code
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Machine.PC)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Listing iterates over the program words by address. Assembled
// programs yield only their instruction words; raw ROMs yield every
// whole word of the image.
func (emu *Emulator) Listing() iter.Seq2[uint16, vm.Code] {
	if emu.Program != nil {
		return emu.Program.Codes()
	}

	return func(yield func(uint16, vm.Code) bool) {
		for n := 0; n+1 < len(emu.rom); n += 2 {
			addr := uint16(vm.PROGRAM_START + n)
			code := vm.Code(uint16(emu.rom[n])<<8 | uint16(emu.rom[n+1]))
			if !yield(addr, code) {
				return
			}
		}
	}
}

// Frame runs TicksPerFrame instructions, then ticks the timers once.
// The tone result is set when the sound timer expired on this frame.
func (emu *Emulator) Frame() (tone bool, err error) {
	// Set machine verbosity
	emu.Machine.Verbose = emu.Verbose

	for range emu.TicksPerFrame {
		addr := int(emu.Machine.PC)
		lineno := emu.LineNo()

		err = emu.Machine.Tick()
		if err != nil {
			err = &ErrRuntime{Addr: addr, LineNo: lineno, Err: err}
			if emu.Verbose {
				log.Printf("emulator: %v", err)
			}
			return
		}
	}

	tone = emu.Machine.TickTimers()

	return
}

// ListROMs returns the sorted names of the ROM images in a directory.
// Dot files, subdirectories and the ROM list itself are skipped.
func ListROMs(fsys fs.FS, dir string) (names []string, err error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		switch {
		case entry.IsDir():
		case strings.HasPrefix(name, "."):
		case name == ROM_LIST:
		default:
			names = append(names, name)
		}
	}

	return
}
