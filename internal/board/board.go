// Package board holds the event board state: the configured roster, the
// latest merged event collection, and the derived view for a filter selection.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"innovation-events/internal/cache"
	"innovation-events/internal/filter"
	"innovation-events/internal/logger"
	"innovation-events/internal/metrics"
	"innovation-events/internal/model"
)

// ErrSuperseded is returned by a load that was replaced by a newer one before it finished.
var ErrSuperseded = errors.New("load superseded by a newer load")

// Aggregator fetches and merges the events of a set of organizers.
type Aggregator interface {
	FetchAll(ctx context.Context, organizerIDs []string) []model.Event
}

// Board coordinates loads and derives views. Loads are serialized by
// generation: starting a load cancels the one in flight and the older result
// is never applied.
type Board struct {
	roster  model.Roster
	agg     Aggregator
	cache   *cache.Cache
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string

	mu      sync.Mutex
	current *loadCall
}

type loadCall struct {
	id     string
	done   chan struct{}
	cancel context.CancelFunc
	entry  *cache.Entry
	err    error
	next   *loadCall // set under Board.mu when superseded
}

func (c *loadCall) finished() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(b *Board) { b.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Board) { b.metrics = m }
}

// WithClock overrides the time source used to stamp loads.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// New creates a board for roster. The cache decides how long a load stays fresh.
func New(roster model.Roster, agg Aggregator, c *cache.Cache, opts ...Option) *Board {
	b := &Board{
		roster: roster,
		agg:    agg,
		cache:  c,
		log:    logger.Discard(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Roster returns the configured organizers.
func (b *Board) Roster() model.Roster {
	return b.roster
}

// Configured reports whether any organizers are configured.
func (b *Board) Configured() bool {
	return len(b.roster) > 0
}

// Load runs a full aggregation from scratch and installs its result.
// A load already in flight is cancelled; its callers receive this load's result.
func (b *Board) Load(ctx context.Context) (*cache.Entry, error) {
	b.mu.Lock()
	call, err := b.startLocked(ctx)
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return b.wait(ctx, call)
}

// Retry re-runs the aggregation; nothing from earlier loads is reused.
func (b *Board) Retry(ctx context.Context) (*cache.Entry, error) {
	return b.Load(ctx)
}

// Snapshot returns the cached collection while fresh, otherwise joins the load
// in flight or starts a new one.
func (b *Board) Snapshot(ctx context.Context) (*cache.Entry, error) {
	if e, ok := b.cache.Get(); ok {
		return e, nil
	}

	b.mu.Lock()
	call := b.current
	var err error
	if call == nil || call.finished() {
		call, err = b.startLocked(ctx)
	}
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return b.wait(ctx, call)
}

// startLocked must be called with b.mu held.
func (b *Board) startLocked(ctx context.Context) (*loadCall, error) {
	if err := b.roster.Validate(); err != nil {
		b.metrics.ObserveLoad("invalid", b.now())
		return nil, fmt.Errorf("invalid organizer roster: %w", err)
	}

	// The load outlives any single caller so that joined callers still get a result.
	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	call := &loadCall{
		id:     b.newID(),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	if prev := b.current; prev != nil && !prev.finished() {
		prev.next = call
		prev.cancel()
	}
	b.current = call

	go b.run(loadCtx, call)
	return call, nil
}

func (b *Board) run(ctx context.Context, call *loadCall) {
	defer close(call.done)
	defer call.cancel()

	log := b.log.With("load_id", call.id)
	log.Info("loading events", "organizers", len(b.roster))

	events := b.agg.FetchAll(ctx, b.roster.IDs())
	entry := &cache.Entry{
		LoadID:    call.id,
		FetchedAt: b.now(),
		Events:    events,
		Names:     model.NamesOf(b.roster),
		Locations: filter.Locations(events),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != call {
		call.err = ErrSuperseded
		b.metrics.ObserveLoad("superseded", entry.FetchedAt)
		log.Info("discarding superseded load")
		return
	}
	b.cache.Set(entry)
	call.entry = entry
	b.metrics.ObserveLoad("applied", entry.FetchedAt)
	log.Info("events loaded", "events", len(events), "locations", len(entry.Locations))
}

func (b *Board) wait(ctx context.Context, call *loadCall) (*cache.Entry, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-call.done:
		}
		if errors.Is(call.err, ErrSuperseded) && call.next != nil {
			call = call.next
			continue
		}
		return call.entry, call.err
	}
}
