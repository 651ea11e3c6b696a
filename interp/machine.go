// Package interp is the bytecode interpreter: a single dispatch loop that
// decodes and executes the variable-width instruction stream produced by
// package parser, against a fixed 65,536-byte circular tape.
package interp

import (
	"fmt"
	"io"

	"github.com/primo-ppcg/bf-jit/bytecode"
	"github.com/primo-ppcg/bf-jit/internal/trace"
	"github.com/primo-ppcg/bf-jit/internal/varint"
)

// tapeSize is the number of cells on the tape. Head arithmetic wraps modulo
// this value; the tape is never bounds-checked because every index is
// already reduced into range.
const tapeSize = 1 << 16

// Machine holds all interpreter state for one execution. Unlike the
// reference implementation (which keeps pointer/pointer_rel/tape as locals
// of a single run() function), this repo gives them a home on a struct so
// Recorder hooks and tests can inspect state between steps without relying
// on package-level globals — the same reasoning the teacher applies by
// putting CPU state on *cpu.CPU rather than package variables.
type Machine struct {
	tape       [tapeSize]byte
	pointerRel uint16 // pointer_rel: the live head
	pointer    uint16 // pointer: snapshot captured only at JRZ

	// Recorder receives a merge-point notification before every decoded
	// instruction is executed. Nil by default (no tracing overhead).
	Recorder trace.Recorder
}

// New returns a Machine with a zero-initialized tape.
func New() *Machine {
	return &Machine{}
}

// Run executes program to completion, reading GETC bytes from stdin and
// writing PUTC bytes to stdout, one byte per read or write with no
// buffering. program must be well-formed bytecode produced by parser.Parse
// with depth == 0; Run does not validate it.
func (m *Machine) Run(program []byte, stdin io.Reader, stdout io.Writer) error {
	var buf [1]byte

	proglen := len(program)
	pc := 0

	for pc < proglen {
		trace.MergePoint(m.Recorder, pc, proglen, program)

		opcode := program[pc]
		shift := bytecode.DecodeShift(opcode)
		m.pointerRel += uint16(shift)
		command := bytecode.DecodeCommand(opcode)

		switch command {
		case bytecode.ZERO:
			m.tape[m.pointerRel] = 0
			pc++

		case bytecode.SHFT:
			pc++

		case bytecode.PUTC:
			buf[0] = m.tape[m.pointerRel]
			if _, err := stdout.Write(buf[:]); err != nil {
				return fmt.Errorf("interp: write stdout: %w", err)
			}
			pc++

		case bytecode.GETC:
			// NB: EOF leaves the cell unmodified.
			_, err := io.ReadFull(stdin, buf[:])
			if err == nil {
				m.tape[m.pointerRel] = buf[0]
			} else if err != io.EOF {
				return fmt.Errorf("interp: read stdin: %w", err)
			}
			pc++

		case bytecode.ADD:
			m.tape[m.pointerRel] += program[pc+1]
			pc += 2

		case bytecode.MUL:
			m.tape[m.pointerRel] += m.tape[m.pointer] * program[pc+1]
			pc += 2

		case bytecode.JRZ:
			jump, width := varint.Decode(program, pc+1)
			if m.tape[m.pointerRel] == 0 {
				pc += jump + width + 1
			} else {
				pc += width + 1
			}
			// Captured unconditionally: see spec's open question on
			// pointer-after-JRZ-taken. MUL never follows a JRZ-taken edge in
			// well-formed Unroller output, so this is unobservable either way.
			m.pointer = m.pointerRel

		case bytecode.JRNZ:
			jump, width := varint.Decode(program, pc+1)
			if m.tape[m.pointerRel] != 0 {
				pc -= jump
			} else {
				pc += width + 1
			}

		default:
			// Unreachable for bytecode emitted by parser.Parse; treat as a
			// single-byte no-op rather than panicking, matching the
			// reference's catch-all `else: pc += 1`.
			pc++
		}
	}

	return nil
}

// Tape returns a copy of the current tape contents, for tests that assert on
// final tape state.
func (m *Machine) Tape() [tapeSize]byte {
	return m.tape
}

// Cell returns the value at the given (wrapping) tape offset.
func (m *Machine) Cell(offset uint16) byte {
	return m.tape[offset]
}

// Pointer returns the live head position.
func (m *Machine) Pointer() uint16 {
	return m.pointerRel
}
