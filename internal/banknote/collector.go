package banknote

// AmountCollector assembles amounts from a fixed set of banknotes.
//
// The pool is captured at construction and never mutated afterwards; every
// search works on its own copy. A collector is therefore safe for concurrent
// use, and a failed CollectAmount leaves it able to serve any later amount
// from the full pool it was built with.
type AmountCollector struct {
	pool     Pool
	reach    int
	strategy Strategy
}

// Option configures an AmountCollector.
type Option func(*AmountCollector)

// WithStrategy overrides the default Optimal search.
func WithStrategy(strategy Strategy) Option {
	return func(c *AmountCollector) {
		c.strategy = strategy
	}
}

// NewAmountCollector expands the denomination groups into a pool of notes.
// It fails with ErrInvalidInput when sets is nil. Nominal values and counts are
// taken as given; negative counts contribute no notes.
func NewAmountCollector(sets []BanknoteSet, opts ...Option) (*AmountCollector, error) {
	if sets == nil {
		return nil, ErrInvalidInput
	}

	c := &AmountCollector{
		pool:     NewPool(sets),
		strategy: Optimal,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, note := range c.pool {
		if note > 0 {
			c.reach += note
		}
	}

	return c, nil
}

// CollectAmount returns the combination of the fewest notes summing exactly to
// amount, grouped by nominal with the largest first. The second result is
// false when no subset of the pool sums to amount, including every
// non-positive amount.
func (c *AmountCollector) CollectAmount(amount int) ([]BanknoteSet, bool) {
	if amount <= 0 || amount > c.reach {
		return nil, false
	}

	notes, ok := c.strategy.collect(c.pool.Clone(), amount)
	if !ok {
		return nil, false
	}
	return group(notes), true
}

// Pool returns a copy of the notes available to the collector.
func (c *AmountCollector) Pool() Pool {
	return c.pool.Clone()
}

// Strategy reports the search the collector runs.
func (c *AmountCollector) Strategy() Strategy {
	return c.strategy
}
