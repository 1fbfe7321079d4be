package puzzle

import (
	"math/rand/v2"
	"testing"
)

// identitySource makes every Fisher–Yates step a no-op swap.
type identitySource struct{}

func (identitySource) IntN(n int) int { return n - 1 }

func isPermutation(tiles []int) bool {
	seen := make([]bool, len(tiles))
	for _, t := range tiles {
		if t < 0 || t >= len(tiles) || seen[t] {
			return false
		}
		seen[t] = true
	}
	return true
}

func TestNewIsUnsolvedPermutation(t *testing.T) {
	for _, d := range Difficulties {
		t.Run(string(d), func(t *testing.T) {
			for seed := uint64(0); seed < 200; seed++ {
				b := New(d, "img", rand.New(rand.NewPCG(seed, seed*31+7)))
				if len(b.Tiles) != d.GridSize()*d.GridSize() {
					t.Fatalf("len(tiles) = %d; want %d", len(b.Tiles), d.GridSize()*d.GridSize())
				}
				if !isPermutation(b.Tiles) {
					t.Fatalf("seed %d: tiles %v are not a permutation", seed, b.Tiles)
				}
				if b.IsComplete() {
					t.Fatalf("seed %d: new board starts solved", seed)
				}
				if _, ok := b.Selected(); ok {
					t.Fatalf("seed %d: new board has a selection", seed)
				}
			}
		})
	}
}

func TestNewIdentityShuffleSwapsFirstTwo(t *testing.T) {
	b := New(Easy, "", identitySource{})
	if b.Tiles[0] != 1 || b.Tiles[1] != 0 {
		t.Fatalf("tiles[0:2] = %v; want [1 0]", b.Tiles[:2])
	}
	for i := 2; i < len(b.Tiles); i++ {
		if b.Tiles[i] != i {
			t.Fatalf("tiles[%d] = %d; want %d", i, b.Tiles[i], i)
		}
	}
	if b.IsComplete() {
		t.Fatal("board reported complete")
	}
}

func TestSelectOrSwapRules(t *testing.T) {
	// positions 0 and 1 are swapped, everything else is home.
	b := &Board{Difficulty: Easy, GridSize: 4, Tiles: []int{1, 0, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, selected: noSelection}

	if got := b.SelectOrSwap(5); got != Rejected {
		t.Fatalf("click on locked tile = %s; want rejected", got)
	}
	if _, ok := b.Selected(); ok {
		t.Fatal("locked click must not select")
	}

	if got := b.SelectOrSwap(0); got != Selected {
		t.Fatalf("first click = %s; want selected", got)
	}
	if got := b.SelectOrSwap(0); got != Deselected {
		t.Fatalf("same click = %s; want deselected", got)
	}
	if _, ok := b.Selected(); ok {
		t.Fatal("selection should be cleared after toggle")
	}

	b.SelectOrSwap(0)
	if got := b.SelectOrSwap(7); got != Rejected {
		t.Fatalf("swap onto locked target = %s; want rejected", got)
	}
	if sel, ok := b.Selected(); !ok || sel != 0 {
		t.Fatalf("selection after rejected target = %d,%v; want 0,true", sel, ok)
	}
	if got := b.SelectOrSwap(1); got != Completed {
		t.Fatalf("final swap = %s; want completed", got)
	}
	if !b.IsComplete() {
		t.Fatal("board should be complete")
	}
}

func TestSwapNotCompleting(t *testing.T) {
	b := &Board{Difficulty: Easy, GridSize: 4, Tiles: make([]int, 16), selected: noSelection}
	for i := range b.Tiles {
		b.Tiles[i] = i
	}
	// three-cycle at 0,1,2
	b.Tiles[0], b.Tiles[1], b.Tiles[2] = 1, 2, 0

	b.SelectOrSwap(0)
	if got := b.SelectOrSwap(2); got != Swapped {
		t.Fatalf("swap = %s; want swapped", got)
	}
	if b.Tiles[0] != 0 {
		t.Fatalf("tiles[0] = %d; want 0 after swap", b.Tiles[0])
	}
	if b.IsComplete() {
		t.Fatal("three-cycle cannot be solved by one swap")
	}
}

func TestLockMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1337))
	b := New(Medium, "", rng)
	locked := make(map[int]bool)
	for i := range b.Tiles {
		if b.Locked(i) {
			locked[i] = true
		}
	}
	for step := 0; step < 5000 && !b.IsComplete(); step++ {
		b.SelectOrSwap(rng.IntN(len(b.Tiles)))
		if !isPermutation(b.Tiles) {
			t.Fatalf("step %d: permutation broken: %v", step, b.Tiles)
		}
		for pos := range locked {
			if b.Tiles[pos] != pos {
				t.Fatalf("step %d: locked tile at %d moved", step, pos)
			}
		}
		for i := range b.Tiles {
			if b.Locked(i) {
				locked[i] = true
			}
		}
	}
}

func TestIsCompleteOnlyForIdentity(t *testing.T) {
	b := &Board{Tiles: []int{0, 1, 2, 3}}
	if !b.IsComplete() {
		t.Fatal("identity should be complete")
	}
	b.Tiles[2], b.Tiles[3] = 3, 2
	if b.IsComplete() {
		t.Fatal("non-identity reported complete")
	}
}

func TestSelectOrSwapOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range index")
		}
	}()
	b := New(Easy, "", rand.New(rand.NewPCG(1, 2)))
	b.SelectOrSwap(len(b.Tiles))
}

func TestParseDifficulty(t *testing.T) {
	cases := []struct {
		in   string
		size int
		ok   bool
	}{
		{"easy", 4, true},
		{"medium", 6, true},
		{"hard", 8, true},
		{"extreme", 0, false},
	}
	for _, tc := range cases {
		d, err := ParseDifficulty(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("ParseDifficulty(%q) err = %v; want ok=%v", tc.in, err, tc.ok)
		}
		if tc.ok && d.GridSize() != tc.size {
			t.Fatalf("GridSize(%s) = %d; want %d", d, d.GridSize(), tc.size)
		}
	}
}
