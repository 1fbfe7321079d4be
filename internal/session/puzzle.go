package session

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shakegang/arcade/assets"
	"github.com/shakegang/arcade/internal/clock"
	"github.com/shakegang/arcade/internal/metrics"
	"github.com/shakegang/arcade/internal/puzzle"
	"github.com/shakegang/arcade/internal/scores"
	"github.com/shakegang/arcade/internal/trivia"
)

// PuzzlePhase is the lifecycle position of a puzzle session.
type PuzzlePhase string

const (
	PuzzleSetup     PuzzlePhase = "setup"
	PuzzlePlaying   PuzzlePhase = "playing"
	PuzzleCompleted PuzzlePhase = "completed"
)

// PuzzleConfig wires a puzzle session. Clock defaults to the wall clock and
// Rand to a randomly seeded PCG.
type PuzzleConfig struct {
	Clock     clock.Scheduler
	Images    assets.ImageSource
	Submitter Submitter
	Rand      puzzle.Source
	Hooks     Hooks
}

// Puzzle drives one player's sliding-tile games.
type Puzzle struct {
	base
	images assets.ImageSource
	rng    puzzle.Source
	hooks  Hooks

	phase      PuzzlePhase
	player     string
	difficulty puzzle.Difficulty
	board      *puzzle.Board
	elapsed    int
}

// NewPuzzle returns a session in the setup phase at medium difficulty.
func NewPuzzle(cfg PuzzleConfig) *Puzzle {
	p := &Puzzle{
		images:     cfg.Images,
		rng:        cfg.Rand,
		hooks:      cfg.Hooks,
		phase:      PuzzleSetup,
		difficulty: puzzle.Medium,
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	p.init(cfg.Clock, cfg.Submitter)
	return p
}

// Start begins a game. The player name is trimmed and required.
func (p *Puzzle) Start(player string, d puzzle.Difficulty) error {
	name, err := trivia.NormalizePlayer(player)
	if err != nil {
		return err
	}
	if !d.Valid() {
		return fmt.Errorf("puzzle: unknown difficulty %q", d)
	}
	return p.run(func() error {
		if p.phase != PuzzleSetup {
			return ErrWrongPhase
		}
		p.player, p.difficulty = name, d
		p.beginLocked()
		return nil
	})
}

// beginLocked deals a new board and starts the elapsed-time timer.
func (p *Puzzle) beginLocked() {
	image := ""
	if p.images != nil {
		image = p.images.ImageFor(p.difficulty)
	}
	p.board = puzzle.New(p.difficulty, image, p.rng)
	p.elapsed = 0
	p.phase = PuzzlePlaying
	p.newRoundLocked()
	p.every(time.Second, func() {
		if p.phase == PuzzlePlaying {
			p.elapsed++
		}
	})
	metrics.SessionsStarted.WithLabelValues(string(scores.GamePuzzle)).Inc()
}

// Click applies one tile click and reports the engine outcome.
func (p *Puzzle) Click(pos int) (puzzle.Outcome, error) {
	var out puzzle.Outcome
	err := p.run(func() error {
		if p.phase != PuzzlePlaying {
			return ErrNotPlaying
		}
		if pos < 0 || pos >= len(p.board.Tiles) {
			return ErrBadIndex
		}
		out = p.board.SelectOrSwap(pos)
		switch out {
		case puzzle.Rejected:
			p.emit(p.hooks.OnIncorrect)
		case puzzle.Selected, puzzle.Deselected:
			p.emit(p.hooks.OnSelect)
		case puzzle.Swapped:
			p.emit(p.hooks.OnSwap)
		case puzzle.Completed:
			p.stopTimer()
			p.phase = PuzzleCompleted
			p.emit(p.hooks.OnSwap)
			p.emit(p.hooks.OnCorrect)
			p.emit(p.hooks.OnVictory)
			p.submitAsync(scores.Record{
				Game:           scores.GamePuzzle,
				PlayerName:     p.player,
				ElapsedSeconds: p.elapsed,
				Difficulty:     string(p.difficulty),
			})
		}
		return nil
	})
	return out, err
}

// Restart deals a fresh board at the same difficulty with a new image and the
// timer back at zero.
func (p *Puzzle) Restart() error {
	return p.run(func() error {
		if p.phase == PuzzleSetup {
			return ErrWrongPhase
		}
		p.beginLocked()
		return nil
	})
}

// Reset abandons the current game and returns to setup.
func (p *Puzzle) Reset() error {
	return p.run(func() error {
		p.toSetupLocked()
		return nil
	})
}

// ChangeDifficulty selects d and forces the session back to setup.
func (p *Puzzle) ChangeDifficulty(d puzzle.Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("puzzle: unknown difficulty %q", d)
	}
	return p.run(func() error {
		p.difficulty = d
		p.toSetupLocked()
		return nil
	})
}

func (p *Puzzle) toSetupLocked() {
	p.stopTimer()
	p.phase = PuzzleSetup
	p.board = nil
	p.elapsed = 0
}

// Close stops the timer; later calls return ErrClosed.
func (p *Puzzle) Close() {
	p.mu.Lock()
	p.closeLocked()
	p.mu.Unlock()
}

// PuzzleSnapshot is a point-in-time copy of a puzzle session.
type PuzzleSnapshot struct {
	Phase      PuzzlePhase       `json:"phase"`
	Player     string            `json:"playerName,omitempty"`
	Difficulty puzzle.Difficulty `json:"difficulty"`
	GridSize   int               `json:"gridSize,omitempty"`
	Image      string            `json:"image,omitempty"`
	Tiles      []int             `json:"tiles,omitempty"`
	Selected   *int              `json:"selected,omitempty"`
	Locked     int               `json:"locked"`
	Elapsed    int               `json:"elapsedSeconds"`
	Result     *ResultView       `json:"result,omitempty"`
}

func (p *Puzzle) Snapshot() PuzzleSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := PuzzleSnapshot{
		Phase:      p.phase,
		Player:     p.player,
		Difficulty: p.difficulty,
		Elapsed:    p.elapsed,
		Result:     p.resultLocked(),
	}
	if p.board != nil {
		b := p.board.Clone()
		s.GridSize, s.Image, s.Tiles = b.GridSize, b.Image, b.Tiles
		s.Locked = b.LockedCount()
		if sel, ok := b.Selected(); ok {
			s.Selected = &sel
		}
	}
	return s
}
