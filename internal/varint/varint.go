// Package varint implements the big-endian base-128, high-bit-continuation
// varint encoding used by the JRZ/JRNZ jump offsets in the bytecode format.
package varint

// Encode appends the base-128 big-endian encoding of v to dst and returns the
// extended slice. Each output byte carries 7 bits of v, most-significant
// group first; every byte but the last has its high bit set to signal
// continuation.
func Encode(dst []byte, v int) []byte {
	// Build the 7-bit groups least-significant-first, then emit them
	// most-significant-first with continuation bits set on all but the
	// last group to be emitted.
	var groups [5]byte
	n := 0
	groups[0] = byte(v & 0x7F)
	n = 1
	v >>= 7
	for v != 0 {
		groups[n] = byte(v & 0x7F)
		n++
		v >>= 7
	}
	for i := n - 1; i > 0; i-- {
		dst = append(dst, groups[i]|0x80)
	}
	dst = append(dst, groups[0])
	return dst
}

// Decode reads a varint starting at program[pc] and returns its value along
// with the number of bytes consumed (including the terminating byte).
func Decode(program []byte, pc int) (value, width int) {
	for {
		b := program[pc+width]
		value = value<<7 | int(b&0x7F)
		width++
		if b&0x80 == 0 {
			return value, width
		}
	}
}
