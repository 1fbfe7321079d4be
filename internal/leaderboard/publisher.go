// internal/leaderboard/publisher.go
//
// Leaderboard publisher: the single write path for score records and the
// fan-out point for live leaderboard views.
// Responsibilities:
//   - Validate, stamp (UUID + UTC time) and persist submissions.
//   - Query ranked views per partition.
//   - Deliver a fresh view to every subscriber of a partition after each
//     local or remote write touching it.
//
// Delivery model:
//   - Each subscription owns one goroutine and a 1-slot "dirty" signal.
//     Writes mark subscriptions dirty without blocking; bursts coalesce into
//     a single recomputed delivery, so a slow callback never stalls Submit.
//   - Every delivery re-reads the store, so the view is always the full
//     current top-N, never a delta.

package leaderboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shakegang/arcade/internal/metrics"
	"github.com/shakegang/arcade/internal/scores"
)

// Publisher wraps a Store with validation and change notification.
type Publisher struct {
	store    scores.Store
	notifier Notifier
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	subs   map[uint64]*subscription
	nextID uint64
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithNotifier fans writes out to, and receives writes from, other processes.
func WithNotifier(n Notifier) Option {
	return func(p *Publisher) { p.notifier = n }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// New builds a Publisher over store. When a notifier is configured its
// listener runs until Close.
func New(store scores.Store, opts ...Option) *Publisher {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Publisher{
		store:    store,
		notifier: noopNotifier{},
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		subs:     make(map[uint64]*subscription),
	}
	for _, o := range opts {
		o(p)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.notifier.Listen(ctx, p.markDirty); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("leaderboard notifier stopped")
		}
	}()
	return p
}

// Submit validates and persists r, then notifies subscribers of its partition.
// The returned record carries the assigned ID and creation time.
func (p *Publisher) Submit(ctx context.Context, r scores.Record) (scores.Record, error) {
	r.PlayerName = strings.TrimSpace(r.PlayerName)
	if err := r.Validate(); err != nil {
		metrics.ScoreSubmitFailures.WithLabelValues(string(r.Game)).Inc()
		return scores.Record{}, err
	}
	r.ID = uuid.NewString()
	r.CreatedAt = p.now().UTC()

	if err := p.store.Append(ctx, r); err != nil {
		metrics.ScoreSubmitFailures.WithLabelValues(string(r.Game)).Inc()
		return scores.Record{}, fmt.Errorf("submit %s score: %w", r.Game, err)
	}
	metrics.ScoresSubmitted.WithLabelValues(string(r.Game)).Inc()

	p.changed(ctx, r.Partition())
	return r, nil
}

// Query returns the ranked top of a partition.
func (p *Publisher) Query(ctx context.Context, f scores.Filter) ([]scores.Record, error) {
	return p.store.List(ctx, f)
}

// Remove deletes a record (moderation) and notifies its partition.
func (p *Publisher) Remove(ctx context.Context, id string) (scores.Record, error) {
	r, err := p.store.Remove(ctx, id)
	if err != nil {
		return scores.Record{}, err
	}
	p.changed(ctx, r.Partition())
	return r, nil
}

func (p *Publisher) changed(ctx context.Context, part scores.Partition) {
	p.markDirty(part)
	if err := p.notifier.Publish(ctx, part); err != nil {
		log.Warn().Err(err).Str("partition", part.String()).Msg("leaderboard fan-out failed")
	}
}

// markDirty schedules a redelivery for every subscription on part.
func (p *Publisher) markDirty(part scores.Partition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.subs {
		if s.filter.Partition == part {
			s.signal()
		}
	}
}

type subscription struct {
	filter scores.Filter
	fn     func([]scores.Record)
	dirty  chan struct{}
	done   chan struct{}

	mu     sync.Mutex // orders detach against the pre-delivery check
	closed bool
}

func (s *subscription) signal() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// detach stops deliveries and reports whether s was still attached.
func (s *subscription) detach() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	close(s.done)
	return true
}

// begin reports whether a delivery may invoke fn. Once it returns true the
// delivery counts as started.
func (s *subscription) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Subscribe delivers the current view of f to fn, then a fresh view after
// every change to f's partition. fn runs on the subscription's own goroutine,
// one call at a time.
//
// The returned function detaches the subscription. Once it returns no
// delivery starts; a call to fn already under way is not waited for, so it is
// safe to call from inside fn. Subscribing to a closed Publisher is a no-op.
func (p *Publisher) Subscribe(f scores.Filter, fn func([]scores.Record)) (unsubscribe func()) {
	s := &subscription{
		filter: f,
		fn:     fn,
		dirty:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	s.dirty <- struct{}{} // initial delivery

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return func() {}
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = s
	p.wg.Add(1)
	p.mu.Unlock()
	metrics.LeaderboardSubscriptions.Inc()

	go p.deliver(s)

	return func() {
		if !s.detach() {
			return
		}
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
		metrics.LeaderboardSubscriptions.Dec()
	}
}

func (p *Publisher) deliver(s *subscription) {
	defer p.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.dirty:
		}
		recs, err := p.store.List(p.ctx, s.filter)
		if err != nil {
			if p.ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("partition", s.filter.Partition.String()).Msg("leaderboard query failed")
			continue
		}
		if !s.begin() {
			return
		}
		s.fn(recs)
	}
}

// Close detaches every subscription, stops the notifier listener and waits
// for delivery goroutines to exit. It must not be called from a subscriber
// callback.
func (p *Publisher) Close() error {
	p.mu.Lock()
	p.closed = true
	subs := make([]*subscription, 0, len(p.subs))
	for id, s := range p.subs {
		subs = append(subs, s)
		delete(p.subs, id)
	}
	p.mu.Unlock()

	for _, s := range subs {
		if s.detach() {
			metrics.LeaderboardSubscriptions.Dec()
		}
	}
	p.cancel()
	p.wg.Wait()
	return p.notifier.Close()
}
