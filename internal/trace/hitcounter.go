package trace

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// HitCounter is a reference Recorder that tallies how many times the
// dispatch loop reaches each pc, using one atomic counter per byte offset.
// No lock is taken on the hot path, matching scm/metrics.go's
// atomic-counter-only sampling discipline.
type HitCounter struct {
	hits []atomic.Uint64
}

// NewHitCounter returns a HitCounter sized for a program of the given length.
func NewHitCounter(programLength int) *HitCounter {
	return &HitCounter{hits: make([]atomic.Uint64, programLength)}
}

// MergePoint implements Recorder.
func (h *HitCounter) MergePoint(pc, programLength int, program []byte) {
	if pc < 0 || pc >= len(h.hits) {
		return
	}
	h.hits[pc].Add(1)
}

// Hits returns the hit count recorded for pc.
func (h *HitCounter) Hits(pc int) uint64 {
	if pc < 0 || pc >= len(h.hits) {
		return 0
	}
	return h.hits[pc].Load()
}

// Top returns the n hottest (pc, count) pairs, most-hit first, ties broken
// by ascending pc. Intended for -trace diagnostic output, not for any
// control-flow decision.
func (h *HitCounter) Top(n int) []PCCount {
	all := make([]PCCount, 0, len(h.hits))
	for pc := range h.hits {
		if c := h.hits[pc].Load(); c > 0 {
			all = append(all, PCCount{PC: pc, Count: c})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].PC < all[j].PC
	})
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// PCCount pairs a bytecode offset with the number of times it was reached.
type PCCount struct {
	PC    int
	Count uint64
}

// String renders a PCCount as "pc=<n> hits=<n>".
func (c PCCount) String() string {
	return fmt.Sprintf("pc=%d hits=%d", c.PC, c.Count)
}
