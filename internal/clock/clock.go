// internal/clock/clock.go
//
// Timer scheduling for game sessions.
// Responsibilities:
//   - Scheduler: repeating (Every) and one-shot (After) timers with cancel tokens.
//   - Real: wall-clock implementation backed by time.Ticker / time.AfterFunc.
//
// Cancel is idempotent and never blocks on a callback already in flight.
// Callers that need "no effect after cancel" guard their callbacks with a
// generation check under their own lock.

package clock

import (
	"sync"
	"time"
)

// Cancel stops a scheduled timer. It is safe to call more than once.
type Cancel func()

// Scheduler starts timers.
type Scheduler interface {
	// Every calls fn every d until cancelled.
	Every(d time.Duration, fn func()) Cancel
	// After calls fn once after d unless cancelled first.
	After(d time.Duration, fn func()) Cancel
}

// Real schedules on the wall clock.
type Real struct{}

// Every runs fn on its own goroutine at each tick of a time.Ticker.
func (Real) Every(d time.Duration, fn func()) Cancel {
	t := time.NewTicker(d)
	stop := make(chan struct{})
	go func() {
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }
}

// After wraps time.AfterFunc.
func (Real) After(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
