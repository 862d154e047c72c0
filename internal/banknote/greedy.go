package banknote

import (
	"slices"
	"sort"
)

// collectGreedy walks candidate note counts (x+1) in increasing order and, for
// each, growing working subsets made of the y+1 smallest notes. A cell fills
// its subset largest-note-first without exceeding the remaining amount and
// wins when the amount is met exactly. Every cell works on its own copy of the
// subset, so a failed cell leaves nothing to roll back.
func collectGreedy(pool Pool, amount int) ([]int, bool) {
	sorted := pool.Clone()
	slices.Sort(sorted)

	n := len(sorted)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			if notes, ok := fill(sorted[:y+1], amount, x+1); ok {
				return notes, true
			}
		}
	}
	return nil, false
}

// fill expects subset in ascending order.
func fill(subset []int, amount, limit int) ([]int, bool) {
	working := slices.Clone(subset)
	notes := make([]int, 0, limit)
	remaining := amount

	for len(notes) < limit {
		idx := sort.SearchInts(working, remaining+1) - 1
		if idx < 0 {
			break
		}
		notes = append(notes, working[idx])
		remaining -= working[idx]
		working = slices.Delete(working, idx, idx+1)
	}

	if len(notes) == 0 || remaining != 0 {
		return nil, false
	}
	return notes, true
}
