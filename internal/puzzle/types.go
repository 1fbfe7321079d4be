// internal/puzzle/types.go
//
// Core type definitions for the sliding-tile puzzle engine.
// Defines:
//   - Difficulty: easy / medium / hard and the grid size each maps to.
//   - Outcome: result of a single tile click.
//   - Board: state of one puzzle in progress.

package puzzle

import "fmt"

// Difficulty selects the grid size of a puzzle.
type Difficulty string

const (
	Easy   Difficulty = "easy"   // 4x4
	Medium Difficulty = "medium" // 6x6
	Hard   Difficulty = "hard"   // 8x8
)

// Difficulties lists every supported difficulty in display order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// GridSize returns the side length of the grid for d.
// Unknown values fall back to the medium grid, matching the default selection.
func (d Difficulty) GridSize() int {
	switch d {
	case Easy:
		return 4
	case Hard:
		return 8
	default:
		return 6
	}
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// ParseDifficulty converts user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("puzzle: unknown difficulty %q", s)
	}
	return d, nil
}

// Outcome is the evaluation result of SelectOrSwap.
// Possible values:
//   - "rejected":   the clicked tile (or the swap target) is locked.
//   - "selected":   the tile is now waiting for a swap partner.
//   - "deselected": the selected tile was clicked again.
//   - "swapped":    two tiles were exchanged; the puzzle is not solved yet.
//   - "completed":  two tiles were exchanged and every tile is home.
type Outcome string

const (
	Rejected   Outcome = "rejected"
	Selected   Outcome = "selected"
	Deselected Outcome = "deselected"
	Swapped    Outcome = "swapped"
	Completed  Outcome = "completed"
)

// noSelection marks a board with no tile awaiting a partner.
const noSelection = -1

// Board holds the state of a single puzzle.
type Board struct {
	Difficulty Difficulty // Chosen difficulty.
	GridSize   int        // Side length (4, 6 or 8).
	Image      string     // Opaque image reference used only for display.
	Tiles      []int      // Tiles[pos] = home index of the tile at pos.
	selected   int        // Position awaiting a swap partner, or noSelection.
}

// Selected returns the position awaiting a swap partner.
func (b *Board) Selected() (int, bool) {
	if b.selected == noSelection {
		return 0, false
	}
	return b.selected, true
}

// Locked reports whether the tile at pos is at its home index.
func (b *Board) Locked(pos int) bool { return b.Tiles[pos] == pos }
