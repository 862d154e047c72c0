package storage

import (
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/eugenenazirov/cashmachine/internal/banknote"
)

const maxDenominations = 16

// Limits on a single cassette. They keep the collect search within a few tens
// of megabytes and every inventory total within int range.
const (
	MaxNominal          = 1_000_000
	MaxNotesPerCassette = 10_000
)

var (
	// ErrInvalidBanknotes indicates the provided banknotes violate validation rules.
	ErrInvalidBanknotes = errors.New("banknotes must contain between 1 and 16 nominals in 1..1000000 with 0..10000 notes each")
)

var defaultBanknotes = []banknote.BanknoteSet{
	{Nominal: 100, Count: 3},
	{Nominal: 50, Count: 10},
	{Nominal: 20, Count: 7},
	{Nominal: 500, Count: 4},
}

// Storage provides access to the banknotes loaded into the machine.
type Storage interface {
	GetBanknotes() ([]banknote.BanknoteSet, error)
	SetBanknotes(sets []banknote.BanknoteSet) error
}

// MemoryStorage keeps the cassette inventory in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu        sync.RWMutex
	banknotes []banknote.BanknoteSet
}

// NewMemoryStorage initialises storage with the default cassettes.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		banknotes: DefaultBanknotes(),
	}
}

// DefaultBanknotes returns a normalised copy of the default cassettes.
func DefaultBanknotes() []banknote.BanknoteSet {
	normalized, _ := NormalizeBanknotes(defaultBanknotes)
	return normalized
}

// GetBanknotes returns a copy of the current inventory.
func (s *MemoryStorage) GetBanknotes() ([]banknote.BanknoteSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.banknotes), nil
}

// SetBanknotes validates, normalises, and stores the provided inventory.
func (s *MemoryStorage) SetBanknotes(sets []banknote.BanknoteSet) error {
	normalized, err := NormalizeBanknotes(sets)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.banknotes = normalized
	s.mu.Unlock()

	return nil
}

// NormalizeBanknotes merges repeated nominals, drops empty cassettes and orders
// the result by nominal, largest first. A nominal whose merged count exceeds
// MaxNotesPerCassette is rejected.
func NormalizeBanknotes(sets []banknote.BanknoteSet) ([]banknote.BanknoteSet, error) {
	if len(sets) == 0 {
		return nil, ErrInvalidBanknotes
	}

	counts := make(map[int]int, len(sets))
	for _, set := range sets {
		if set.Nominal <= 0 || set.Nominal > MaxNominal || set.Count < 0 {
			return nil, ErrInvalidBanknotes
		}
		if set.Count > MaxNotesPerCassette-counts[set.Nominal] {
			return nil, ErrInvalidBanknotes
		}
		counts[set.Nominal] += set.Count
		if len(counts) > maxDenominations {
			return nil, ErrInvalidBanknotes
		}
	}

	out := make([]banknote.BanknoteSet, 0, len(counts))
	for nominal, count := range counts {
		if count == 0 {
			continue
		}
		out = append(out, banknote.BanknoteSet{Nominal: nominal, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Nominal > out[j].Nominal
	})
	return out, nil
}
