// Package parser lowers sifted brainfuck source into the dense variable-width
// bytecode package interp executes, applying three optimizations as it goes:
// move folding, zero-cell idiom recognition, and (via unroll.go) balanced
// odd-decrement loop unrolling into straight-line multiply-adds.
//
// The recursive-descent shape mirrors the teacher's assembler package (one
// parse call per source region, building opcodes into a byte slice as it
// walks) generalized from M68k mnemonic syntax to brainfuck's eight tokens
// and its one structural nesting form, `[` ... `]`.
package parser

import (
	"github.com/primo-ppcg/bf-jit/bytecode"
	"github.com/primo-ppcg/bf-jit/internal/varint"
)

// frame holds the per-recursion-level state the teacher calls out as
// "(builder, shift, total_shift, base_value, base_i, poison)" in its design
// notes on converting this recursion into an explicit stack.
type frame struct {
	code       []byte
	shift      int  // pending pointer delta not yet packed into an opcode
	totalShift int  // cumulative pointer delta since the frame began
	baseValue  int  // net ADD effect on the home cell (totalShift == 0)
	baseIndex  int  // source index where this frame began
	poison     bool // true once MUL-unrolling is disqualified for this frame
}

// emit appends an opcode byte built from the frame's pending shift, then
// resets the pending shift to zero — the common tail of every non-shift
// token.
func (f *frame) emit(cmd bytecode.Command) {
	f.code = append(f.code, bytecode.Encode(cmd, f.shift))
	f.shift = 0
}

// Parse lowers sifted brainfuck source into bytecode. depth is 0 on balanced
// input, positive if one or more `[` are missing their `]`, negative if
// extra `]` appear. Parse never returns an error value — callers check depth
// exactly as the reference implementation's caller checks its returned depth
// counter.
func Parse(source []byte) (code []byte, depth int) {
	code, _, depth = parse(source, 0, 0, false)
	return code, depth
}

// ParseUnoptimized lowers source exactly like Parse, except it never invokes
// the Unroller: every loop, balanced-odd-decrement or not, compiles to a
// JRZ/JRNZ pair around its literal body. It exists for two reasons: it is
// the oracle TestUnrollCorrectness checks unrolled output against, and it
// backs `cmd/bf -no-unroll`, the optimizing-compiler equivalent of a -O0
// flag for isolating whether a miscompile comes from the Unroller.
func ParseUnoptimized(source []byte) (code []byte, depth int) {
	code, _, depth = parse(source, 0, 0, true)
	return code, depth
}

// parse walks source starting at index i, treating depth as the bracket
// nesting level seen so far by the caller chain, and returns the bytecode for
// this frame, the index where the frame's content ended (either len(source)
// at end of input, or the index of the `]` that closed it, which the caller
// steps past), and the updated depth.
func parse(source []byte, i, depth int, disableUnroll bool) (code []byte, next int, finalDepth int) {
	f := &frame{baseIndex: i}
	n := len(source)

	for i < n {
		switch source[i] {
		case '>':
			f.shift++
			f.totalShift++
			if f.shift > bytecode.ShiftMax {
				f.code = append(f.code, bytecode.Encode(bytecode.SHFT, bytecode.ShiftMax))
				f.shift -= bytecode.ShiftMax
			}

		case '<':
			f.shift--
			f.totalShift--
			if f.shift < bytecode.ShiftMin {
				f.code = append(f.code, bytecode.Encode(bytecode.SHFT, bytecode.ShiftMin))
				f.shift -= bytecode.ShiftMin
			}

		case '[':
			if isZeroIdiom(source, i) {
				f.emit(bytecode.ZERO)
				i += 2
				if f.totalShift == 0 {
					f.poison = true
				}
			} else {
				body, ni, nd := parse(source, i+1, depth+1, disableUnroll)
				i = ni
				depth = nd
				f.code = append(f.code, encodeJump(bytecode.JRZ, f.shift, len(body))...)
				f.code = append(f.code, body...)
				f.shift = 0
				f.poison = true
			}

		case ']':
			if !disableUnroll && f.totalShift == 0 && !f.poison && f.baseValue&1 == 1 {
				// A balanced, unpoisoned loop with an odd home-cell
				// decrement: replace the whole body with its unrolled form.
				mul := modInv[f.baseValue&0xFF]
				return unroll(source, f.baseIndex, mul), i, depth - 1
			}
			f.code = append(f.code, encodeJump(bytecode.JRNZ, f.shift, len(f.code))...)
			return f.code, i, depth - 1

		case '.':
			f.emit(bytecode.PUTC)
			f.poison = true

		case ',':
			f.emit(bytecode.GETC)
			f.poison = true

		default: // '+' or '-'
			value, ni := foldAddRun(source, i)
			i = ni
			if f.totalShift == 0 {
				f.baseValue += value
			}
			f.code = append(f.code, bytecode.Encode(bytecode.ADD, f.shift), byte(value))
			f.shift = 0
		}

		i++
	}

	// Pointer moves left pending at end of input are still executed.
	if f.shift != 0 {
		f.code = append(f.code, bytecode.Encode(bytecode.SHFT, f.shift))
		f.shift = 0
	}
	return f.code, i, depth
}

// isZeroIdiom reports whether source[i:i+3] is the three-byte `[+]` or `[-]`
// zero-cell idiom. Safe to look ahead unconditionally: sift guarantees every
// byte in source is one of the eight tokens, so source[i+1] and source[i+2]
// are always valid indices whenever a '[' with a matching ']' exists deeper
// in a balanced program — and on unbalanced input any out-of-range lookahead
// here simply means "not the idiom", handled by the bounds check below.
func isZeroIdiom(source []byte, i int) bool {
	return i+2 < len(source) &&
		(source[i+1] == '+' || source[i+1] == '-') &&
		source[i+2] == ']'
}

// foldAddRun collapses a maximal run of '+'/'-' starting at i into its net
// signed byte value, returning the value and the index of the run's last
// byte (the caller's loop increments past it). Each '+' contributes +1 and
// each '-' contributes -1, i.e. 44 - ord(token) for the two ASCII tokens.
func foldAddRun(source []byte, i int) (value, last int) {
	value = addDelta(source[i])
	n := len(source)
	for i+1 < n && isAddToken(source[i+1]) {
		i++
		value += addDelta(source[i])
	}
	return value & 0xFF, i
}

func isAddToken(b byte) bool { return b == '+' || b == '-' }

func addDelta(b byte) int { return 44 - int(b) }

// encodeJump builds a JRZ or JRNZ instruction: its opcode byte (command and
// shift) followed by the varint encoding of bodyLen. JRZ's varint is the
// forward byte count to just past the matching JRNZ; JRNZ's varint is the
// backward byte count to just past the matching JRZ — in both cases that
// count is exactly the length of the bytes already built for the body
// (build-then-prepend, per spec.md's design notes: a single-pass emitter
// cannot know the jump length before the body exists).
func encodeJump(cmd bytecode.Command, shift, bodyLen int) []byte {
	out := []byte{bytecode.Encode(cmd, shift)}
	return varint.Encode(out, bodyLen)
}
