package storage

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/eugenenazirov/cashmachine/internal/banknote"
)

func TestNewMemoryStorageReturnsDefaultBanknotes(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()

	got, err := store.GetBanknotes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []banknote.BanknoteSet{
		{Nominal: 500, Count: 4},
		{Nominal: 100, Count: 3},
		{Nominal: 50, Count: 10},
		{Nominal: 20, Count: 7},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected default banknotes %v, got %v", want, got)
	}

	// ensure mutation safety
	got[0].Count = 999
	again, err := store.GetBanknotes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again[0].Count != 4 {
		t.Fatalf("expected defensive copy, got %v", again)
	}
}

func TestSetBanknotesUpdatesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	err := store.SetBanknotes([]banknote.BanknoteSet{
		{Nominal: 1000, Count: 1},
		{Nominal: 200, Count: 5},
		{Nominal: 1000, Count: 2},
		{Nominal: 10, Count: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetBanknotes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []banknote.BanknoteSet{
		{Nominal: 1000, Count: 3},
		{Nominal: 200, Count: 5},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSetBanknotesRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tooMany := make([]banknote.BanknoteSet, 0, maxDenominations+1)
	for i := 1; i <= maxDenominations+1; i++ {
		tooMany = append(tooMany, banknote.BanknoteSet{Nominal: i * 10, Count: 1})
	}

	testCases := [][]banknote.BanknoteSet{
		nil,
		{},
		{{Nominal: 0, Count: 10}},
		{{Nominal: -50, Count: 1}},
		{{Nominal: 100, Count: -1}},
		{{Nominal: MaxNominal + 1, Count: 1}},
		{{Nominal: 100, Count: MaxNotesPerCassette + 1}},
		{{Nominal: 100, Count: MaxNotesPerCassette}, {Nominal: 100, Count: 1}},
		{{Nominal: 100, Count: math.MaxInt}, {Nominal: 100, Count: 1}},
		{{Nominal: 100, Count: 1}, {Nominal: 100, Count: math.MaxInt}},
		tooMany,
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("case_%d", idx), func(t *testing.T) {
			store := NewMemoryStorage()
			if err := store.SetBanknotes(tc); !errors.Is(err, ErrInvalidBanknotes) {
				t.Fatalf("expected ErrInvalidBanknotes for %v, got %v", tc, err)
			}
		})
	}
}

func TestSetBanknotesAcceptsFullCassettes(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	err := store.SetBanknotes([]banknote.BanknoteSet{
		{Nominal: MaxNominal, Count: MaxNotesPerCassette - 1},
		{Nominal: MaxNominal, Count: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetBanknotes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []banknote.BanknoteSet{{Nominal: MaxNominal, Count: MaxNotesPerCassette}}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	store := NewMemoryStorage()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			sets := []banknote.BanknoteSet{
				{Nominal: 100, Count: 1 + offset},
				{Nominal: 50, Count: 2 + offset},
			}
			if err := store.SetBanknotes(sets); err != nil {
				t.Errorf("SetBanknotes failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if _, err := store.GetBanknotes(); err != nil {
				t.Errorf("GetBanknotes failed: %v", err)
			}
		}()
	}

	wg.Wait()

	// final read should succeed
	if _, err := store.GetBanknotes(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
