// Package metrics exposes Prometheus collectors describing dispense activity.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels the result of a collect request.
type Outcome string

const (
	OutcomeDispensed     Outcome = "dispensed"
	OutcomeUnsatisfiable Outcome = "unsatisfiable"
	OutcomeInvalid       Outcome = "invalid"
)

// Collector groups the collect-related Prometheus collectors.
type Collector struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Notes    prometheus.Histogram
}

// New registers and returns the collect collectors. Collectors already present
// in reg are reused, so building several collectors against one registry is safe.
func New(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collect_requests_total",
			Help:      "Total number of collect requests by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collect_duration_ms",
			Help:      "Time spent searching for a combination in milliseconds.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500},
		}, []string{"strategy"}),
		Notes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collect_notes",
			Help:      "Number of banknotes in dispensed combinations.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
	}

	c.Requests = register(reg, c.Requests)
	c.Duration = register(reg, c.Duration)
	c.Notes = register(reg, c.Notes)
	return c
}

// Observe records one collect request. notes is ignored unless the outcome is
// OutcomeDispensed.
func (c *Collector) Observe(strategy string, outcome Outcome, elapsed time.Duration, notes int) {
	if c == nil {
		return
	}
	c.Requests.WithLabelValues(strategy, string(outcome)).Inc()
	if outcome == OutcomeInvalid {
		return
	}
	c.Duration.WithLabelValues(strategy).Observe(float64(elapsed) / float64(time.Millisecond))
	if outcome == OutcomeDispensed {
		c.Notes.Observe(float64(notes))
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) T {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
	return collector
}
