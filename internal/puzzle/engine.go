// internal/puzzle/engine.go
//
// Core engine for a single sliding-tile puzzle.
// Responsibilities:
//   - Create new boards with a shuffled, never-solved tile permutation.
//   - Apply the two-phase select/swap move, refusing locked tiles.
//   - Report completion.
//
// Notes:
//   - The engine performs no I/O and owns no timers; callers stop their
//     clocks and submit scores when a move reports Completed.
//   - Positions outside the grid are a caller bug and panic with an index error.
package puzzle

// Source is the uniform random source used for shuffling.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// New constructs a shuffled board for the given difficulty.
func New(d Difficulty, image string, rng Source) *Board {
	size := d.GridSize()
	b := &Board{
		Difficulty: d,
		GridSize:   size,
		Image:      image,
		Tiles:      make([]int, size*size),
		selected:   noSelection,
	}
	for i := range b.Tiles {
		b.Tiles[i] = i
	}
	shuffle(b.Tiles, rng)
	return b
}

// shuffle applies a Fisher–Yates shuffle in place.
// If the result happens to be the identity, the first two positions are
// swapped so a new puzzle never starts solved.
func shuffle(tiles []int, rng Source) {
	for i := len(tiles) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
	if len(tiles) >= 2 && solved(tiles) {
		tiles[0], tiles[1] = tiles[1], tiles[0]
	}
}

// SelectOrSwap applies one tile click at position pos.
//
// Rules:
//   - A locked tile is never selected nor swapped (Rejected).
//   - With nothing selected, pos becomes selected.
//   - Clicking the selected position again clears the selection.
//   - Otherwise the two tiles are exchanged and the selection cleared.
func (b *Board) SelectOrSwap(pos int) Outcome {
	if b.Locked(pos) {
		return Rejected
	}
	if b.selected == noSelection {
		b.selected = pos
		return Selected
	}
	if b.selected == pos {
		b.selected = noSelection
		return Deselected
	}

	from := b.selected
	b.Tiles[from], b.Tiles[pos] = b.Tiles[pos], b.Tiles[from]
	b.selected = noSelection
	if b.IsComplete() {
		return Completed
	}
	return Swapped
}

// IsComplete reports true when every tile sits at its home index.
func (b *Board) IsComplete() bool { return solved(b.Tiles) }

// LockedCount returns how many tiles are already home.
func (b *Board) LockedCount() int {
	n := 0
	for i, t := range b.Tiles {
		if t == i {
			n++
		}
	}
	return n
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (b *Board) Clone() *Board {
	c := *b
	c.Tiles = append([]int(nil), b.Tiles...)
	return &c
}

func solved(tiles []int) bool {
	for i, t := range tiles {
		if t != i {
			return false
		}
	}
	return true
}
