// Package aggregator fans the per-organizer fetch out over a roster and
// merges the results into one collection ordered by start time.
package aggregator

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"innovation-events/internal/eventbrite"
	"innovation-events/internal/logger"
	"innovation-events/internal/metrics"
	"innovation-events/internal/model"
)

const (
	DefaultMaxConcurrency = 8
	DefaultBudget         = 60 * time.Second
)

// Fetcher retrieves the events of a single organizer.
type Fetcher interface {
	OrganizerEvents(ctx context.Context, organizerID string) ([]model.Event, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, organizerID string) ([]model.Event, error)

func (f FetcherFunc) OrganizerEvents(ctx context.Context, organizerID string) ([]model.Event, error) {
	return f(ctx, organizerID)
}

// Aggregator coordinates concurrent fetching across organizers.
type Aggregator struct {
	fetcher        Fetcher
	maxConcurrency int
	budget         time.Duration
	log            *logger.Logger
	metrics        *metrics.Metrics
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMaxConcurrency caps simultaneous organizer fetches; n <= 0 means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(a *Aggregator) { a.maxConcurrency = n }
}

// WithBudget bounds a whole aggregation; d <= 0 disables the budget.
func WithBudget(d time.Duration) Option {
	return func(a *Aggregator) { a.budget = d }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Aggregator) { a.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// New creates an Aggregator around f.
func New(f Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:        f,
		maxConcurrency: DefaultMaxConcurrency,
		budget:         DefaultBudget,
		log:            logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchAll fetches every organizer concurrently and returns the merged events
// sorted by start time. It never fails: an organizer whose fetch fails is
// logged and contributes no events. It returns only after every fetch settles.
func (a *Aggregator) FetchAll(ctx context.Context, organizerIDs []string) []model.Event {
	if len(organizerIDs) == 0 {
		return []model.Event{}
	}

	start := time.Now()
	if a.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.budget)
		defer cancel()
	}

	// One slot per organizer keeps the merge order equal to roster order.
	results := make([][]model.Event, len(organizerIDs))

	var g errgroup.Group
	if a.maxConcurrency > 0 {
		g.SetLimit(a.maxConcurrency)
	}
	for i, id := range organizerIDs {
		g.Go(func() error {
			events, err := a.fetcher.OrganizerEvents(ctx, id)
			if err != nil {
				a.recordFailure(id, err)
				return nil
			}
			results[i] = events
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]model.Event, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}
	model.SortByStart(merged)

	a.metrics.ObserveAggregate(time.Since(start), len(merged))
	a.log.Info("aggregation complete",
		"organizers", len(organizerIDs),
		"events", len(merged),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return merged
}

func (a *Aggregator) recordFailure(id string, err error) {
	kind := string(eventbrite.KindOf(err))
	if kind == "" {
		kind = "unknown"
	}
	message, details := "Unknown error", err.Error()
	var apiErr *eventbrite.Error
	if errors.As(err, &apiErr) {
		message, details = apiErr.Message, apiErr.Details
	}
	a.log.Error("error fetching events for organizer",
		"organizer_id", id,
		"kind", kind,
		"message", message,
		"details", details,
	)
	a.metrics.ObserveOrganizerFailure(id, kind)
}
