// internal/session/session.go
//
// Shared machinery for the game session controllers.
// Responsibilities:
//   - One mutex per session serializing player input and timer callbacks.
//   - Timer ownership: at most one live timer per session, each start
//     returning a cancel token and bumping a generation counter so a
//     callback already in flight becomes a no-op.
//   - Hook dispatch after the session lock is released.
//   - Asynchronous score submission with a completion channel.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shakegang/arcade/internal/clock"
	"github.com/shakegang/arcade/internal/scores"
)

var (
	ErrClosed     = errors.New("session: closed")
	ErrNotPlaying = errors.New("session: game not in progress")
	ErrWrongPhase = errors.New("session: action not allowed in current phase")
	ErrBadIndex   = errors.New("session: index out of range")
)

// submitTimeout bounds one asynchronous score submission.
const submitTimeout = 10 * time.Second

// Hooks are the audio (or other) feedback callbacks a session fires.
// Any field may be nil. Hooks run on the goroutine that caused them, after the
// session lock is released, so they may call back into the session.
type Hooks struct {
	OnSelect        func()
	OnCorrect       func()
	OnIncorrect     func()
	OnSwap          func()
	OnVictory       func()
	OnCountdownTick func(n int)
}

// Submitter persists a finished game. *leaderboard.Publisher satisfies it.
type Submitter interface {
	Submit(ctx context.Context, r scores.Record) (scores.Record, error)
}

// SubmitResult reports the outcome of an asynchronous submission.
// A failure never rolls back the displayed result.
type SubmitResult struct {
	Record scores.Record `json:"record"`
	Err    error         `json:"-"`
}

type base struct {
	mu      sync.Mutex
	clk     clock.Scheduler
	submit  Submitter
	pending []func()
	closed  bool

	timer clock.Cancel
	gen   uint64

	round       uint64 // bumped at every new game; tags submissions
	last        *SubmitResult
	submissions chan SubmitResult
}

func (b *base) init(clk clock.Scheduler, sub Submitter) {
	if clk == nil {
		clk = clock.Real{}
	}
	b.clk, b.submit = clk, sub
	b.submissions = make(chan SubmitResult, 8)
}

// run executes fn under the session lock, then dispatches queued hooks.
func (b *base) run(fn func() error) error {
	b.mu.Lock()
	var err error
	if b.closed {
		err = ErrClosed
	} else {
		err = fn()
	}
	hooks := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, h := range hooks {
		h()
	}
	return err
}

func (b *base) emit(h func()) {
	if h != nil {
		b.pending = append(b.pending, h)
	}
}

// every replaces the session timer with a repeating one.
func (b *base) every(d time.Duration, fn func()) {
	b.stopTimer()
	g := b.gen
	b.timer = b.clk.Every(d, func() { b.fire(g, fn) })
}

// after replaces the session timer with a one-shot.
func (b *base) after(d time.Duration, fn func()) {
	b.stopTimer()
	g := b.gen
	b.timer = b.clk.After(d, func() { b.fire(g, fn) })
}

func (b *base) fire(g uint64, fn func()) {
	_ = b.run(func() error {
		if g == b.gen {
			fn()
		}
		return nil
	})
}

func (b *base) stopTimer() {
	if b.timer != nil {
		b.timer()
		b.timer = nil
	}
	b.gen++
}

func (b *base) closeLocked() {
	b.stopTimer()
	b.closed = true
}

// submitAsync persists r on its own goroutine. Must be called with the lock held.
func (b *base) submitAsync(r scores.Record) {
	if b.submit == nil {
		return
	}
	round := b.round
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		rec, err := b.submit.Submit(ctx, r)
		res := SubmitResult{Record: rec, Err: err}
		if err != nil {
			log.Warn().Err(err).Str("game", string(r.Game)).Str("player", r.PlayerName).Msg("score submission failed")
		}

		b.mu.Lock()
		if round == b.round {
			b.last = &res
		}
		b.mu.Unlock()

		select {
		case b.submissions <- res:
		default:
		}
	}()
}

// Submission signals each finished asynchronous submission.
func (b *base) Submission() <-chan SubmitResult { return b.submissions }

// ResultView is the snapshot form of the last submission of the current game.
type ResultView struct {
	Record *scores.Record `json:"record,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (b *base) resultLocked() *ResultView {
	if b.last == nil {
		return nil
	}
	if b.last.Err != nil {
		return &ResultView{Error: b.last.Err.Error()}
	}
	r := b.last.Record
	return &ResultView{Record: &r}
}

func (b *base) newRoundLocked() {
	b.round++
	b.last = nil
}
