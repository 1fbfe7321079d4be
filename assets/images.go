package assets

import (
	"errors"
	"math/rand/v2"

	"github.com/shakegang/arcade/internal/puzzle"
)

// ImageSource picks the artwork for a new puzzle.
type ImageSource interface {
	ImageFor(d puzzle.Difficulty) string
}

// Catalogue picks uniformly from a fixed list of image URLs.
// Every difficulty draws from the same list.
type Catalogue struct {
	urls []string
	pick func(n int) int
}

// NewCatalogue returns a catalogue over urls.
func NewCatalogue(urls []string) (*Catalogue, error) {
	if len(urls) == 0 {
		return nil, errors.New("assets: empty image catalogue")
	}
	return &Catalogue{urls: append([]string(nil), urls...), pick: rand.IntN}, nil
}

// DefaultCatalogue loads the embedded images.txt.
func DefaultCatalogue() (*Catalogue, error) {
	urls, err := PuzzleImages()
	if err != nil {
		return nil, err
	}
	return NewCatalogue(urls)
}

func (c *Catalogue) ImageFor(puzzle.Difficulty) string {
	return c.urls[c.pick(len(c.urls))]
}

// All returns a copy of the catalogue, for clients that preload artwork.
func (c *Catalogue) All() []string {
	return append([]string(nil), c.urls...)
}
