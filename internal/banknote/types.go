package banknote

import (
	"slices"
	"sort"
)

// BanknoteSet describes how many notes of a single face value are available
// or dispensed.
type BanknoteSet struct {
	Nominal int `json:"nominal" yaml:"nominal"`
	Count   int `json:"count" yaml:"count"`
}

// Total returns the value of all notes in the set.
func (s BanknoteSet) Total() int {
	return s.Nominal * s.Count
}

// Pool is a flattened snapshot of individual notes.
type Pool []int

// NewPool expands denomination groups into individual notes. Groups with a
// non-positive count contribute nothing.
func NewPool(sets []BanknoteSet) Pool {
	size := 0
	for _, set := range sets {
		if set.Count > 0 {
			size += set.Count
		}
	}

	pool := make(Pool, 0, size)
	for _, set := range sets {
		for i := 0; i < set.Count; i++ {
			pool = append(pool, set.Nominal)
		}
	}
	return pool
}

// Clone returns an independent copy of the pool.
func (p Pool) Clone() Pool {
	return slices.Clone(p)
}

// Total returns the value of every note in the pool.
func (p Pool) Total() int {
	total := 0
	for _, note := range p {
		total += note
	}
	return total
}

// Sets groups the notes by value, largest nominal first.
func (p Pool) Sets() []BanknoteSet {
	return group(p)
}

// TotalAmount returns the value of a combination.
func TotalAmount(sets []BanknoteSet) int {
	total := 0
	for _, set := range sets {
		total += set.Total()
	}
	return total
}

// TotalNotes returns the number of notes in a combination.
func TotalNotes(sets []BanknoteSet) int {
	total := 0
	for _, set := range sets {
		total += set.Count
	}
	return total
}

func group(notes []int) []BanknoteSet {
	counts := make(map[int]int, len(notes))
	for _, note := range notes {
		counts[note]++
	}

	nominals := make([]int, 0, len(counts))
	for nominal := range counts {
		nominals = append(nominals, nominal)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nominals)))

	sets := make([]BanknoteSet, 0, len(nominals))
	for _, nominal := range nominals {
		sets = append(sets, BanknoteSet{Nominal: nominal, Count: counts[nominal]})
	}
	return sets
}
