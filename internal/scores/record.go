// internal/scores/record.go
//
// Score records and the persistence contract shared by every backend.
// Defines:
//   - Record: one finished game (puzzle time or trivia score).
//   - Partition / Filter: which leaderboard a query reads.
//   - Store: append-only persistence with moderation removal.
//   - Ranking order per game kind.

package scores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shakegang/arcade/internal/puzzle"
	"github.com/shakegang/arcade/internal/trivia"
)

// Game identifies which game produced a record.
type Game string

const (
	GamePuzzle Game = "puzzle"
	GameTrivia Game = "trivia"
)

// ParseGame converts a path segment into a Game.
func ParseGame(s string) (Game, error) {
	switch g := Game(s); g {
	case GamePuzzle, GameTrivia:
		return g, nil
	}
	return "", fmt.Errorf("scores: unknown game %q", s)
}

// DefaultLimit is the leaderboard size when a filter leaves it unset.
const DefaultLimit = 10

var (
	ErrNotFound = errors.New("scores: record not found")
	ErrInvalid  = errors.New("scores: invalid record")
)

// Record is one persisted result. Records are never updated.
type Record struct {
	ID             string    `json:"id"`
	Game           Game      `json:"game"`
	PlayerName     string    `json:"playerName"`
	ElapsedSeconds int       `json:"elapsedSeconds,omitempty"` // puzzle
	Difficulty     string    `json:"difficulty,omitempty"`     // puzzle
	Score          int       `json:"score"`                    // trivia, may be negative
	Category       string    `json:"category,omitempty"`       // trivia
	CreatedAt      time.Time `json:"createdAt"`
}

// Partition is the leaderboard a record belongs to.
func (r Record) Partition() Partition {
	if r.Game == GamePuzzle {
		return Partition{Game: GamePuzzle, Key: r.Difficulty}
	}
	return Partition{Game: r.Game, Key: r.Category}
}

// Validate checks the fields a submission must carry.
func (r Record) Validate() error {
	name := strings.TrimSpace(r.PlayerName)
	if name == "" {
		return fmt.Errorf("%w: player name required", ErrInvalid)
	}
	if utf8.RuneCountInString(name) > trivia.MaxPlayerName {
		return fmt.Errorf("%w: player name too long", ErrInvalid)
	}
	switch r.Game {
	case GamePuzzle:
		if !puzzle.Difficulty(r.Difficulty).Valid() {
			return fmt.Errorf("%w: difficulty %q", ErrInvalid, r.Difficulty)
		}
		if r.ElapsedSeconds < 0 {
			return fmt.Errorf("%w: negative elapsed time", ErrInvalid)
		}
	case GameTrivia:
		if !trivia.Category(r.Category).Valid() {
			return fmt.Errorf("%w: category %q", ErrInvalid, r.Category)
		}
	default:
		return fmt.Errorf("%w: game %q", ErrInvalid, r.Game)
	}
	return nil
}

// Partition identifies one leaderboard: puzzle by difficulty, trivia by category.
type Partition struct {
	Game Game   `json:"game"`
	Key  string `json:"key"`
}

func (p Partition) String() string { return string(p.Game) + "/" + p.Key }

// Filter selects the top records of a partition.
type Filter struct {
	Partition
	Limit int
}

// EffectiveLimit returns Limit or DefaultLimit when unset.
func (f Filter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// Ranks reports whether a ranks strictly before b on its leaderboard:
// puzzle ascending by elapsed time, trivia descending by score,
// earlier records first on ties.
func Ranks(a, b Record) bool {
	switch a.Game {
	case GamePuzzle:
		if a.ElapsedSeconds != b.ElapsedSeconds {
			return a.ElapsedSeconds < b.ElapsedSeconds
		}
	default:
		if a.Score != b.Score {
			return a.Score > b.Score
		}
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// Store persists score records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append persists a record that already carries its ID and CreatedAt.
	Append(ctx context.Context, r Record) error

	// List returns the top f.EffectiveLimit() records of f.Partition in rank order.
	List(ctx context.Context, f Filter) ([]Record, error)

	// Remove deletes a record by ID and returns it.
	// Returns ErrNotFound if no such record exists.
	Remove(ctx context.Context, id string) (Record, error)

	// Close releases backend resources.
	Close() error
}
