package parser_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/primo-ppcg/bf-jit/bytecode"
	"github.com/primo-ppcg/bf-jit/interp"
	"github.com/primo-ppcg/bf-jit/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BracketParity(t *testing.T) {
	cases := []struct {
		name   string
		source string
		depth  int
	}{
		{"balanced", "+[>+<-]", 0},
		{"empty", "", 0},
		{"one unmatched open", "[[>+<-]", 1},
		{"two unmatched open", "[[[+]", 2},
		{"one unmatched close", "+[>+<-]]", -1},
		{"unmatched close only", "]", -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, depth := parser.Parse([]byte(c.source))
			assert.Equal(t, c.depth, depth)
		})
	}
}

func TestParse_AddCancellation(t *testing.T) {
	// A run of pluses and minuses that net to zero folds into a single ADD:
	// foldAddRun folds the whole run before the caller emits an instruction
	// for it, and the parser emits an ADD even when the net payload is 0.
	// Confirm that payload is exactly the signed sum mod 256.
	code, depth := parser.Parse([]byte("+-+-+-"))
	require.Zero(t, depth)
	require.Len(t, code, 2)
	assert.Equal(t, bytecode.ADD, bytecode.DecodeCommand(code[0]))
	assert.Equal(t, byte(0), code[1])
}

func TestParse_AddRunFoldsToSingleOpcode(t *testing.T) {
	code, depth := parser.Parse([]byte("+++++"))
	require.Zero(t, depth)
	require.Len(t, code, 2)
	assert.Equal(t, bytecode.ADD, bytecode.DecodeCommand(code[0]))
	assert.Equal(t, byte(5), code[1])
}

func TestParse_ShiftFoldingSaturatesAtBoundary(t *testing.T) {
	// 20 '>' in a row must saturate into one SHFT at +15, with the remaining
	// +5 packed into the following PUTC's shift immediate: not twenty
	// individual shifts and not one out-of-range opcode.
	code, depth := parser.Parse([]byte(strings.Repeat(">", 20) + "."))
	require.Zero(t, depth)

	var shifts []int
	for pc := 0; pc < len(code); {
		cmd := bytecode.DecodeCommand(code[pc])
		shift := bytecode.DecodeShift(code[pc])
		switch cmd {
		case bytecode.SHFT:
			shifts = append(shifts, shift)
			pc++
		case bytecode.PUTC:
			shifts = append(shifts, shift)
			pc++
		default:
			t.Fatalf("unexpected opcode %v at pc %d", cmd, pc)
		}
	}
	require.Len(t, shifts, 2)
	assert.Equal(t, bytecode.ShiftMax, shifts[0])
	assert.Equal(t, 5, shifts[1])
}

func TestParse_ZeroIdiomEquivalence(t *testing.T) {
	for _, src := range []string{"[-]", "[+]"} {
		code, depth := parser.Parse([]byte("+++++" + src))
		require.Zero(t, depth)

		m := interp.New()
		require.NoError(t, m.Run(code, strings.NewReader(""), &bytes.Buffer{}))
		assert.Equal(t, byte(0), m.Cell(0))
	}
}

func TestParse_ZeroIdiomCompilesToSingleOpcode(t *testing.T) {
	code, depth := parser.Parse([]byte("[-]"))
	require.Zero(t, depth)
	require.Len(t, code, 1)
	assert.Equal(t, bytecode.ZERO, bytecode.DecodeCommand(code[0]))
}

// TestUnrollCorrectness compares the optimizing parser against
// ParseUnoptimized across a range of balanced, odd-decrement, poison-free
// loops, checking that both produce identical final tape state under
// interp.Run. This is the property the Unroller exists to preserve: a
// semantics-changing bug in the modular-inverse math or the straight-line
// rewrite would show up as a divergence here even though neither path alone
// reveals it.
func TestUnrollCorrectness(t *testing.T) {
	programs := []string{
		"+++++[->++<]",
		"+++++++++++++[->+++>++++<<]",
		"++++++++++++++++++++++++++++++++++++++++++++++++[->+<]",
		"+++++++[->-<]",
		"+++++[->+>+>+<<<]",
		// Offset target cell is 16 away from the home cell, past a single
		// SHFT's +15 saturation boundary, so the Unroller must emit a SHFT
		// inside the straight-line MUL sequence. Regression for a bug where
		// that SHFT clobbered the pointer snapshot MUL reads from.
		"+++[-" + strings.Repeat(">", 16) + "+" + strings.Repeat("<", 16) + "]",
	}
	for _, src := range programs {
		t.Run(src, func(t *testing.T) {
			optimized, depth := parser.Parse([]byte(src))
			require.Zero(t, depth)
			literal, depth := parser.ParseUnoptimized([]byte(src))
			require.Zero(t, depth)

			wantMachine := interp.New()
			require.NoError(t, wantMachine.Run(literal, strings.NewReader(""), &bytes.Buffer{}))
			gotMachine := interp.New()
			require.NoError(t, gotMachine.Run(optimized, strings.NewReader(""), &bytes.Buffer{}))

			assert.Equal(t, wantMachine.Tape(), gotMachine.Tape())
		})
	}
}

func TestParseUnoptimized_NeverEmitsMul(t *testing.T) {
	code, depth := parser.ParseUnoptimized([]byte("+++++[->++<]"))
	require.Zero(t, depth)
	for pc := 0; pc < len(code); {
		cmd := bytecode.DecodeCommand(code[pc])
		assert.NotEqual(t, bytecode.MUL, cmd)
		switch cmd {
		case bytecode.ADD, bytecode.MUL:
			pc += 2
		case bytecode.JRZ, bytecode.JRNZ:
			_, width := varintDecodeForTest(code, pc+1)
			pc += width + 1
		default:
			pc++
		}
	}
}

// varintDecodeForTest is a local copy of internal/varint's Decode loop,
// used only to step over JRZ/JRNZ payloads in the walk above.
func varintDecodeForTest(program []byte, pc int) (int, int) {
	value := 0
	width := 0
	for {
		b := program[pc+width]
		width++
		value = value<<7 | int(b&0x7F)
		if b&0x80 == 0 {
			break
		}
	}
	return value, width
}
