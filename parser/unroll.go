package parser

import "github.com/primo-ppcg/bf-jit/bytecode"

// unroll rewrites a balanced, poison-free loop body — source starting at
// index i, known to contain no '.', ',', or non-idiom '[' — as a
// straight-line multiply-add sequence. mul is the modular inverse of the
// loop's (odd) home-cell decrement.
//
// Why this works: a loop `[ ... ]` that decrements the home cell by odd d
// each iteration and adds v_k to offset o_k per iteration runs the home cell
// through h, h-d, h-2d, ..., 0 over h*d⁻¹ mod 256 iterations, so offset o_k
// ends up with h * v_k * d⁻¹ mod 256 added to it. MUL encodes exactly
// tape[o_k] += tape[home] * (v_k * mul); a final ZERO clears the home cell.
func unroll(source []byte, i int, mul byte) []byte {
	var code []byte
	shift := 0
	totalShift := 0
	zeros := map[int]bool{}

	for {
		switch source[i] {
		case '>':
			shift++
			totalShift++
			if shift > bytecode.ShiftMax {
				code = append(code, bytecode.Encode(bytecode.SHFT, bytecode.ShiftMax))
				shift -= bytecode.ShiftMax
			}

		case '<':
			shift--
			totalShift--
			if shift < bytecode.ShiftMin {
				code = append(code, bytecode.Encode(bytecode.SHFT, bytecode.ShiftMin))
				shift -= bytecode.ShiftMin
			}

		case '[':
			// Guaranteed by the caller to be a zero idiom at totalShift != 0.
			code = append(code, bytecode.Encode(bytecode.ZERO, shift))
			zeros[totalShift] = true
			shift = 0
			i += 2

		case ']':
			// Guaranteed by the caller: totalShift == 0 here.
			code = append(code, bytecode.Encode(bytecode.ZERO, shift))
			return code

		default: // '+' or '-'
			value, ni := foldAddRun(source, i)
			i = ni
			if totalShift != 0 {
				if zeros[totalShift] {
					code = append(code, bytecode.Encode(bytecode.ADD, shift), byte(value))
				} else {
					code = append(code, bytecode.Encode(bytecode.MUL, shift), byte(value)*mul)
				}
				shift = 0
			}
		}

		i++
	}
}
