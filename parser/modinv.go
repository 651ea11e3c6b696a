package parser

// modInv[v] is the modular inverse of (-v) modulo 256, for every v in
// [0, 255]. It is only meaningful — and only ever consulted by Parse — for
// odd v; even v have no inverse mod 256 and their table slot is left 0.
//
// Computed once at package load via extended Euclidean on (-v mod 256, 256),
// mirroring the teacher's package-level precomputed tables (cpu.BranchOpcodes,
// cpu.ConditionCodes in cpu/instructions.go) rather than recomputing per call.
var modInv [256]byte

func init() {
	for v := 0; v < 256; v++ {
		if v&1 == 0 {
			continue
		}
		a := (256 - v) % 256
		modInv[v] = byte(extGCDInverse(a, 256))
	}
}

// extGCDInverse returns the multiplicative inverse of a modulo m via the
// extended Euclidean algorithm, reduced into [0, m).
func extGCDInverse(a, m int) int {
	origM := m
	x, u := 0, 1
	for a != 0 {
		q := m / a
		x, u = u, x-q*u
		m, a = a, m%a
	}
	return ((x % origM) + origM) % origM
}
