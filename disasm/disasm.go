// Package disasm renders parser-produced bytecode as human-readable text. It
// walks the instruction stream the same way interp's dispatch loop does,
// without executing it, mirroring the teacher's disassembler package's
// entry point and per-instruction-family shape generalized down to eight
// opcodes and one jump form.
package disasm

import (
	"fmt"
	"strings"

	"github.com/primo-ppcg/bf-jit/bytecode"
	"github.com/primo-ppcg/bf-jit/internal/varint"
)

// Disassemble renders program as one line per instruction: a zero-padded
// address, the mnemonic, the shift immediate, and the opcode's
// payload — ADD/MUL's signed byte value, or JRZ/JRNZ's resolved absolute
// jump target. program need not be well-formed; Disassemble stops early
// (returning what it has so far plus an error) if a JRZ/JRNZ's varint would
// run past the end of program.
func Disassemble(program []byte) (string, error) {
	var out strings.Builder
	pc := 0
	for pc < len(program) {
		opcode := program[pc]
		cmd := bytecode.DecodeCommand(opcode)
		shift := bytecode.DecodeShift(opcode)

		switch cmd {
		case bytecode.ZERO, bytecode.PUTC, bytecode.GETC:
			fmt.Fprintf(&out, "%04X: %-4s shift=%+d\n", pc, cmd, shift)
			pc++

		case bytecode.SHFT:
			fmt.Fprintf(&out, "%04X: %-4s shift=%+d\n", pc, cmd, shift)
			pc++

		case bytecode.ADD, bytecode.MUL:
			if pc+1 >= len(program) {
				return out.String(), fmt.Errorf("disasm: %s at %04X: truncated payload", cmd, pc)
			}
			fmt.Fprintf(&out, "%04X: %-4s shift=%+d val=%d\n", pc, cmd, shift, int8(program[pc+1]))
			pc += 2

		case bytecode.JRZ:
			if !varintFits(program, pc+1) {
				return out.String(), fmt.Errorf("disasm: JRZ at %04X: truncated jump", pc)
			}
			jump, width := varint.Decode(program, pc+1)
			target := pc + jump + width + 1
			fmt.Fprintf(&out, "%04X: %-4s shift=%+d -> %04X\n", pc, cmd, shift, target)
			pc += width + 1

		case bytecode.JRNZ:
			if !varintFits(program, pc+1) {
				return out.String(), fmt.Errorf("disasm: JRNZ at %04X: truncated jump", pc)
			}
			jump, width := varint.Decode(program, pc+1)
			target := pc - jump
			fmt.Fprintf(&out, "%04X: %-4s shift=%+d -> %04X\n", pc, cmd, shift, target)
			pc += width + 1

		default:
			fmt.Fprintf(&out, "%04X: dc.b 0x%02X\n", pc, opcode)
			pc++
		}
	}
	return out.String(), nil
}

// varintFits reports whether a varint starting at program[i] has its
// terminating byte (high bit clear) inside program.
func varintFits(program []byte, i int) bool {
	for ; i < len(program); i++ {
		if program[i]&0x80 == 0 {
			return true
		}
	}
	return false
}
