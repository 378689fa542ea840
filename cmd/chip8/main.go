// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/term"
)

const STATUS = "chip8: ESC to quit"

func main() {
	var compile string
	var rom string
	var output string
	var list string
	var ticks int
	var hz int
	var frames int
	var seed int64
	var defines bool
	var disassemble bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.StringVar(&rom, "r", "", "ROM image to load")
	flag.StringVar(&output, "o", "", "Save the assembled ROM image, do not execute")
	flag.StringVar(&list, "l", "", "List the ROM images in a directory")
	flag.IntVar(&ticks, "t", emulator.TICKS_PER_FRAME, "Instructions per frame")
	flag.IntVar(&hz, "hz", emulator.FRAME_RATE, "Frames per second")
	flag.IntVar(&frames, "n", 0, "Run headless for N frames, then print the machine state")
	flag.Int64Var(&seed, "seed", 0, "Random seed for the rnd instruction (0 for time based)")
	flag.BoolVar(&defines, "defines", false, "Print the assembler predefines")
	flag.BoolVar(&disassemble, "d", false, "Disassemble the program, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.TicksPerFrame = ticks
	if seed != 0 {
		emu.Rand = rand.New(rand.NewSource(seed))
	}

	if defines {
		for key, value := range internal.IterSeq2Sorted(emu.Defines()) {
			fmt.Printf(".equ %v %v\n", key, value)
		}
		return
	}

	if len(list) != 0 {
		names, err := emulator.ListROMs(os.DirFS(list), ".")
		if err != nil {
			log.Fatalf("%v: %v", list, err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	switch {
	case len(compile) != 0:
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		prog, err := emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		err = emu.LoadProgram(prog)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	case len(rom) != 0:
		err := emu.LoadFile(os.DirFS(filepath.Dir(rom)), filepath.Base(rom))
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
	default:
		log.Fatalf("%v: One of -c or -r is required", os.Args[0])
	}

	if len(output) != 0 {
		if emu.Program == nil {
			log.Fatalf("%v: -o requires -c", output)
		}
		err := os.WriteFile(output, emu.Program.Binary(), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	if disassemble {
		for addr, code := range emu.Listing() {
			fmt.Printf("0x%03x: %04x  %v\n", addr, uint16(code), code)
		}
		return
	}

	if frames > 0 {
		for range frames {
			_, err := emu.Frame()
			if err != nil {
				log.Fatal(err)
			}
		}
		fmt.Print(emu.Machine.String())
		return
	}

	if hz <= 0 {
		log.Fatalf("%v: -hz must be positive", os.Args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, emu, hz)
	if err != nil {
		log.Fatal(err)
	}
}

// run plays the emulator on the terminal until ESC, Ctrl-C, end of input,
// or a runtime fault.
func run(ctx context.Context, emu *emulator.Emulator, hz int) (err error) {
	restore, err := term.MakeRaw(os.Stdin.Fd())
	if err != nil {
		return
	}
	defer restore()

	screen := &term.Screen{Output: os.Stdout, Status: STATUS}
	keypad := &term.Keypad{}

	err = screen.Begin()
	if err != nil {
		return
	}
	defer screen.End()

	input := make(chan byte, 16)
	go func() {
		defer close(input)
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 {
				input <- buf[0]
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-input:
			if !ok || b == term.KEY_ESC || b == term.KEY_INTERRUPT {
				return
			}
			keypad.Press(b)
		case <-ticker.C:
			keypad.Frame(emu.Machine)

			var tone bool
			tone, err = emu.Frame()
			if err != nil {
				return
			}

			if tone {
				err = screen.Bell()
				if err != nil {
					return
				}
			}

			err = screen.Draw(emu.Screen())
			if err != nil {
				return
			}
		}
	}
}
