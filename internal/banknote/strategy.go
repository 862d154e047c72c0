package banknote

import (
	"fmt"
	"strings"
)

// Strategy selects the search used to assemble an amount.
type Strategy int

const (
	// Optimal runs a bounded dynamic program over reachable sums and always
	// returns a combination with the fewest notes.
	Optimal Strategy = iota
	// Greedy scans growing note counts over growing subsets of the smallest
	// notes and fills each candidate largest-note-first.
	Greedy
)

var strategyNames = map[Strategy]string{
	Optimal: "optimal",
	Greedy:  "greedy",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy resolves a strategy by name. An empty name selects Optimal.
func ParseStrategy(name string) (Strategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return Optimal, nil
	}
	for strategy, candidate := range strategyNames {
		if candidate == normalized {
			return strategy, nil
		}
	}
	return Optimal, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func (s Strategy) collect(pool Pool, amount int) ([]int, bool) {
	switch s {
	case Greedy:
		return collectGreedy(pool, amount)
	default:
		return collectOptimal(pool, amount)
	}
}
