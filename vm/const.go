package vm

const (
	MEMORY_SIZE   = 4096  // Size of the address space, in bytes.
	PROGRAM_START = 0x200 // Load address of programs.
	REGISTERS     = 16    // Number of general purpose registers.
	KEYS          = 16    // Number of keys on the keypad.

	SCREEN_WIDTH  = 64 // Display width, in pixels.
	SCREEN_HEIGHT = 32 // Display height, in pixels.
	SCREEN_SIZE   = SCREEN_WIDTH * SCREEN_HEIGHT

	FONT_BASE   = 0x000 // Address of the built-in font.
	FONT_HEIGHT = 5     // Bytes per font glyph.
	FONT_SIZE   = 16 * FONT_HEIGHT

	SPRITE_WIDTH = 8 // Pixels per sprite row.

	FLAG = 0xf // Register overloaded as carry, borrow and collision flag.
)

// font is the built-in hexadecimal glyph table, one glyph per digit 0-F.
var font = [FONT_SIZE]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Font returns a copy of the built-in glyph table.
func Font() [FONT_SIZE]byte {
	return font
}
