// internal/questions/bank.go
//
// Trivia question bank: loading, validation and per-category lookup.
//
// Sources:
//   1. A JSON file named by QUESTIONS_FILE, when configured.
//   2. Otherwise the bank embedded in the assets package.
//
// File format: an object keyed by category, each holding a list of
//
//	{"question": "...", "options": ["a","b",...], "correctIndex": 1}
//	{"question": "...", "options": [...], "correctIndexes": [0, 2]}
//
// "correctIndexes" marks a multi-answer question; "audioUrl" is optional.
//
// Constraints:
//   • Every category key must be a known trivia category.
//   • Each question needs a prompt, at least two options and valid,
//     distinct correct indexes.

package questions

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shakegang/arcade/assets"
	"github.com/shakegang/arcade/internal/trivia"
)

// Bank holds the playable questions per category. It is read-only after load.
type Bank struct {
	byCategory map[trivia.Category][]trivia.Question
}

type rawQuestion struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectIndex   *int     `json:"correctIndex"`
	CorrectIndexes []int    `json:"correctIndexes"`
	AudioURL       string   `json:"audioUrl"`
}

// Load reads path or, when path is empty, the embedded bank.
func Load(path string) (*Bank, error) {
	if path == "" {
		return Embedded()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(b)
}

// Embedded parses the bank shipped in the binary.
func Embedded() (*Bank, error) {
	b, err := assets.QuestionBank()
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes and validates a bank document.
func Parse(data []byte) (*Bank, error) {
	var raw map[string][]rawQuestion
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	bank := &Bank{byCategory: make(map[trivia.Category][]trivia.Question, len(raw))}
	for key, list := range raw {
		cat, err := trivia.ParseCategory(key)
		if err != nil {
			return nil, err
		}
		qs := make([]trivia.Question, 0, len(list))
		for i, rq := range list {
			q, err := rq.convert()
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			qs = append(qs, q)
		}
		bank.byCategory[cat] = qs
	}
	return bank, nil
}

func (rq rawQuestion) convert() (trivia.Question, error) {
	q := trivia.Question{
		Prompt:   strings.TrimSpace(rq.Question),
		Options:  rq.Options,
		AudioURL: rq.AudioURL,
	}
	if q.Prompt == "" {
		return q, fmt.Errorf("empty question")
	}
	if len(q.Options) < 2 {
		return q, fmt.Errorf("need at least two options, got %d", len(q.Options))
	}

	switch {
	case len(rq.CorrectIndexes) > 0:
		q.Correct = append([]int(nil), rq.CorrectIndexes...)
		q.Multiple = true
	case rq.CorrectIndex != nil:
		q.Correct = []int{*rq.CorrectIndex}
	default:
		return q, fmt.Errorf("missing correctIndex or correctIndexes")
	}

	seen := make(map[int]bool, len(q.Correct))
	for _, c := range q.Correct {
		if c < 0 || c >= len(q.Options) {
			return q, fmt.Errorf("correct index %d out of range", c)
		}
		if seen[c] {
			return q, fmt.Errorf("duplicate correct index %d", c)
		}
		seen[c] = true
	}
	return q, nil
}

// QuestionsFor returns the category's questions. Callers must not modify the result.
func (b *Bank) QuestionsFor(c trivia.Category) []trivia.Question {
	return b.byCategory[c]
}

// Stats reports how many questions each category holds.
func (b *Bank) Stats() map[trivia.Category]int {
	out := make(map[trivia.Category]int, len(b.byCategory))
	for c, qs := range b.byCategory {
		out[c] = len(qs)
	}
	return out
}
