// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/chip8/vm"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":        "0",
	"MEMORY_SIZE":   fmt.Sprintf("%#x", vm.MEMORY_SIZE),
	"PROGRAM_START": fmt.Sprintf("%#x", vm.PROGRAM_START),
	"SCREEN_WIDTH":  fmt.Sprintf("%v", vm.SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%v", vm.SCREEN_HEIGHT),
	"FONT_HEIGHT":   fmt.Sprintf("%v", vm.FONT_HEIGHT),
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Assembler is a single pass macro assembler for CHIP-8 programs.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine  map[string]string   // Predefines
	expansions int                 // Count of macro expansions.
	Label      map[string]int      // Map of labels to addresses.
	Equate     map[string]string   // Map of equates.
	Macro      map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word)
		return
	}
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value64 int64
		value64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line into words, expanding equates, labels and
// macros.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	// Commas are optional operand separators.
	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.ToLower(words[0]) == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		value := words[2]
		equate, ok := asm.Equate[value]
		if ok {
			value = equate
		}
		asm.Equate[words[1]] = value
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !reLabel.MatchString(label) {
			err = ErrOperand(label)
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the load address of the next opcode.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return vm.PROGRAM_START
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + last.Size()
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.expansions = 0
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(strings.ReplaceAll(line, ",", " "))

		// .macro NAME arg...
		if len(words) > 0 && strings.ToLower(words[0]) == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && strings.ToLower(words[0]) == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	if asm.currentAddr() > vm.MEMORY_SIZE {
		err = ErrProgramTooLarge
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}

		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if addr > 0xfff {
			err = ErrOperand(label)
			return
		}

		linked := &op.Codes[len(op.Codes)-1]
		*linked |= vm.Code(addr)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// register decodes a vX register operand.
func register(word string) (reg uint16, err error) {
	word = strings.ToLower(word)
	if len(word) != 2 || word[0] != 'v' {
		err = ErrRegisterInvalid
		return
	}

	value, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		err = ErrRegisterInvalid
		return
	}

	reg = uint16(value)
	return
}

// immediate decodes a numeric operand no larger than limit. Negative values
// are accepted in two's complement.
func (asm *Assembler) immediate(word string, limit int64) (value uint16, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v64 < 0 && v64 >= -(limit+1)/2 {
		v64 += limit + 1
	}

	if v64 < 0 || v64 > limit {
		err = ErrOperand(word)
		return
	}

	value = uint16(v64)
	return
}

// address decodes a 12-bit address operand, or a label to be linked.
func (asm *Assembler) address(word string) (value uint16, label string, err error) {
	_, err = register(word)
	if err == nil {
		err = ErrOperand(word)
		return
	}

	v64, err := asm.valueOf(word)
	if err != nil {
		if !reLabel.MatchString(word) {
			return
		}
		err = nil
		label = word
		return
	}

	if v64 < 0 || v64 > 0xfff {
		err = ErrOperand(word)
		return
	}

	value = uint16(v64)
	return
}

// aluMap maps two register ALU mnemonics.
var aluMap = map[string]vm.Op{
	"or":   vm.OP_OR,
	"and":  vm.OP_AND,
	"xor":  vm.OP_XOR,
	"sub":  vm.OP_SUB,
	"subn": vm.OP_SUBN,
	"shr":  vm.OP_SHR,
	"shl":  vm.OP_SHL,
}

// ldMap maps the ld forms with a keyword destination and a register source.
var ldMap = map[string]vm.Op{
	"[i]": vm.OP_LD_STORE,
	"dt":  vm.OP_LD_DT,
	"st":  vm.OP_LD_ST,
	"f":   vm.OP_LD_F,
	"b":   vm.OP_LD_B,
}

// instruction encodes a single mnemonic and its operands.
func (asm *Assembler) instruction(mnemonic string, args []string) (code vm.Code, label string, err error) {
	keys := make([]string, len(args))
	for n, arg := range args {
		keys[n] = strings.ToLower(arg)
	}

	argc := func(lo, hi int) bool {
		switch {
		case len(args) < lo:
			err = ErrOpcodeMissing
		case len(args) > hi:
			err = ErrOpcodeExtraArgs
		}
		return err == nil
	}

	var op vm.Op
	var vals []uint16

	regs := func(words ...string) {
		for _, word := range words {
			if err != nil {
				return
			}
			var reg uint16
			reg, err = register(word)
			vals = append(vals, reg)
		}
	}

	imm := func(word string, limit int64) {
		if err != nil {
			return
		}
		var value uint16
		value, err = asm.immediate(word, limit)
		vals = append(vals, value)
	}

	addr := func(word string) {
		if err != nil {
			return
		}
		var value uint16
		value, label, err = asm.address(word)
		vals = append(vals, value)
	}

	isReg := func(word string) bool {
		_, err := register(word)
		return err == nil
	}

	switch mnemonic {
	case "nop", "cls", "ret":
		if !argc(0, 0) {
			return
		}
		op = map[string]vm.Op{"nop": vm.OP_NOP, "cls": vm.OP_CLS, "ret": vm.OP_RET}[mnemonic]
	case "jp":
		if !argc(1, 2) {
			return
		}
		op = vm.OP_JP
		target := args[0]
		if len(args) == 2 {
			if keys[0] != "v0" {
				err = ErrRegisterInvalid
				return
			}
			op = vm.OP_JP_V0
			target = args[1]
		}
		addr(target)
	case "call":
		if !argc(1, 1) {
			return
		}
		op = vm.OP_CALL
		addr(args[0])
	case "se", "sne":
		if !argc(2, 2) {
			return
		}
		regs(args[0])
		if isReg(args[1]) {
			op = map[string]vm.Op{"se": vm.OP_SE_REG, "sne": vm.OP_SNE_REG}[mnemonic]
			regs(args[1])
		} else {
			op = map[string]vm.Op{"se": vm.OP_SE_BYTE, "sne": vm.OP_SNE_BYTE}[mnemonic]
			imm(args[1], 0xff)
		}
	case "ld":
		if !argc(2, 2) {
			return
		}
		dst_op, dst_keyword := ldMap[keys[0]]
		switch {
		case keys[0] == "i":
			op = vm.OP_LD_I
			addr(args[1])
		case dst_keyword:
			op = dst_op
			regs(args[1])
		case keys[1] == "dt":
			op = vm.OP_LD_VX_DT
			regs(args[0])
		case keys[1] == "k":
			op = vm.OP_LD_KEY
			regs(args[0])
		case keys[1] == "[i]":
			op = vm.OP_LD_LOAD
			regs(args[0])
		case isReg(args[1]):
			op = vm.OP_LD_REG
			regs(args[0], args[1])
		default:
			op = vm.OP_LD_BYTE
			regs(args[0])
			imm(args[1], 0xff)
		}
	case "add":
		if !argc(2, 2) {
			return
		}
		switch {
		case keys[0] == "i":
			op = vm.OP_ADD_I
			regs(args[1])
		case isReg(args[1]):
			op = vm.OP_ADD_REG
			regs(args[0], args[1])
		default:
			op = vm.OP_ADD_BYTE
			regs(args[0])
			imm(args[1], 0xff)
		}
	case "or", "and", "xor", "sub", "subn":
		if !argc(2, 2) {
			return
		}
		op = aluMap[mnemonic]
		regs(args[0], args[1])
	case "shr", "shl":
		if !argc(1, 2) {
			return
		}
		op = aluMap[mnemonic]
		regs(args...)
		if len(args) == 1 {
			vals = append(vals, 0)
		}
	case "rnd":
		if !argc(2, 2) {
			return
		}
		op = vm.OP_RND
		regs(args[0])
		imm(args[1], 0xff)
	case "drw":
		if !argc(3, 3) {
			return
		}
		op = vm.OP_DRW
		regs(args[0], args[1])
		imm(args[2], 0xf)
	case "skp", "sknp":
		if !argc(1, 1) {
			return
		}
		op = map[string]vm.Op{"skp": vm.OP_SKP, "sknp": vm.OP_SKNP}[mnemonic]
		regs(args[0])
	default:
		err = ErrInstructionInvalid
		return
	}

	if err != nil {
		return
	}

	code, err = vm.MakeCode(op, vals...)

	return
}

// data encodes the operands of a .byte or .word directive.
func (asm *Assembler) data(args []string, width int) (data []byte, err error) {
	if len(args) == 0 {
		err = ErrOpcodeMissing
		return
	}

	limit := int64(1)<<(8*width) - 1
	for _, arg := range args {
		var value uint16
		value, err = asm.immediate(arg, limit)
		if err != nil {
			return
		}
		if width == 2 {
			data = append(data, byte(value>>8))
		}
		data = append(data, byte(value))
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []vm.Code
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words
	here := asm.currentAddr()

	defer func() {
		if len(codes) == 0 && len(data) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: here, Words: initial_words, Codes: codes, Data: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	switch mnemonic {
	case ".byte":
		data, err = asm.data(args, 1)
	case ".word":
		data, err = asm.data(args, 2)
	case ".align":
		if len(args) != 1 {
			err = ErrDirectiveInvalid
			return
		}
		var align int64
		align, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if align <= 0 || align > vm.MEMORY_SIZE {
			err = ErrOperand(args[0])
			return
		}
		pad := (int(align) - here%int(align)) % int(align)
		data = make([]byte, pad)
	default:
		if strings.HasPrefix(mnemonic, ".") {
			err = ErrDirectiveInvalid
			return
		}
		var code vm.Code
		code, label, err = asm.instruction(mnemonic, args)
		if err != nil {
			return
		}
		codes = append(codes, code)
	}

	if err != nil {
		data = nil
	}

	return
}
