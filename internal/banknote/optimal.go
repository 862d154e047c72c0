package banknote

import "sort"

// bundle is a group of identical notes that is either taken whole or not at all.
type bundle struct {
	nominal int
	notes   int
}

func (b bundle) value() int {
	return b.nominal * b.notes
}

// collectOptimal solves the bounded minimum-note problem. Each denomination is
// split into bundles of 1, 2, 4, ... notes (the last one holding the rest) so
// every count up to the available one is reachable as a 0/1 choice of bundles.
// Sums are tracked in units of the greatest common divisor of the nominals.
func collectOptimal(pool Pool, amount int) ([]int, bool) {
	bundles := splitBundles(pool)
	if len(bundles) == 0 {
		return nil, false
	}

	unit := 0
	for _, b := range bundles {
		unit = gcd(unit, b.nominal)
	}
	if amount%unit != 0 {
		return nil, false
	}
	target := amount / unit

	inf := target + 1
	best := make([]int, target+1)
	for sum := 1; sum <= target; sum++ {
		best[sum] = inf
	}

	taken := make([]bitset, len(bundles))
	for i, b := range bundles {
		value := b.value() / unit
		taken[i] = newBitset(target + 1)
		for sum := target; sum >= value; sum-- {
			prev := best[sum-value]
			if prev == inf {
				continue
			}
			if prev+b.notes < best[sum] {
				best[sum] = prev + b.notes
				taken[i].set(sum)
			}
		}
	}

	if best[target] == inf {
		return nil, false
	}

	notes := make([]int, 0, best[target])
	remaining := target
	for i := len(bundles) - 1; i >= 0 && remaining > 0; i-- {
		if !taken[i].has(remaining) {
			continue
		}
		b := bundles[i]
		for j := 0; j < b.notes; j++ {
			notes = append(notes, b.nominal)
		}
		remaining -= b.value() / unit
	}

	return notes, true
}

// splitBundles groups the pool by nominal, largest first. Non-positive notes
// never shorten a combination of positive notes and are left out.
func splitBundles(pool Pool) []bundle {
	counts := make(map[int]int)
	for _, note := range pool {
		if note > 0 {
			counts[note]++
		}
	}

	nominals := make([]int, 0, len(counts))
	for nominal := range counts {
		nominals = append(nominals, nominal)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nominals)))

	var bundles []bundle
	for _, nominal := range nominals {
		left := counts[nominal]
		for size := 1; left > 0; size *= 2 {
			take := min(size, left)
			bundles = append(bundles, bundle{nominal: nominal, notes: take})
			left -= take
		}
	}
	return bundles
}

// bitset records which sums a bundle improved.
type bitset []uint64

func newBitset(size int) bitset {
	return make(bitset, (size+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

func (b bitset) has(i int) bool {
	return b[i/64]&(1<<(uint(i)%64)) != 0
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
