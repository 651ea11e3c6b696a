// Package trace exposes the interpreter's merge-point annotations: the
// loop-invariant (program-counter, program-length, program-bytes) triples a
// host tracing JIT would key compiled traces on. This repo does not contain
// a tracing compiler — Recorder is the seam a host implementation would hang
// off of, grounded on the observer shape of launix-de-memcp's scm.Tracefile
// (a settable recorder object with an Event-style hook) and the atomic,
// lock-free sampling style of scm/metrics.go, both scaled down to the single
// hook brainfuck's interpreter loop actually needs.
package trace

// Recorder observes merge points reached by an interp.Machine's dispatch
// loop. ProgramLength and Program are loop-invariant for the lifetime of one
// Run call (the bytecode is never mutated after parsing); PC is the varying
// dispatch key a tracing host would use to detect a hot loop header.
type Recorder interface {
	MergePoint(pc, programLength int, program []byte)
}

// MergePoint notifies r, if non-nil, that the dispatch loop has reached pc.
// A nil Recorder costs one branch and nothing else — tracing is opt-in.
func MergePoint(r Recorder, pc, programLength int, program []byte) {
	if r == nil {
		return
	}
	r.MergePoint(pc, programLength, program)
}
