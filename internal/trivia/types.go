// internal/trivia/types.go
//
// Core type definitions for the trivia engine.
// Defines:
//   - Category / Mode: the two choices a player makes before the quiz starts.
//   - Phase: the state machine positions of a quiz.
//   - Question: one prompt with its options and correct answer(s).
//   - Outcome / Answer: how a question was scored.

package trivia

import (
	"fmt"
	"slices"
)

const (
	// TotalQuestions is the pool size drawn for each quiz.
	TotalQuestions = 20
	// QuestionSeconds is the per-question budget in timed mode.
	QuestionSeconds = 15
	// CountdownStart is the first value shown by the pre-game countdown.
	CountdownStart = 3
	// MaxPlayerName bounds the player name length in runes.
	MaxPlayerName = 20
)

// Category is a question topic.
type Category string

const (
	CategoryPantCookie Category = "pantcookie"
	CategoryShuraHiwa  Category = "shurahiwa"
	CategoryMusic      Category = "music"
)

// Categories lists the topics offered on the selection screen.
var Categories = []Category{CategoryPantCookie, CategoryShuraHiwa, CategoryMusic}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool { return slices.Contains(Categories, c) }

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("trivia: unknown category %q", s)
	}
	return c, nil
}

// Mode selects whether questions are timed.
type Mode string

const (
	Timed   Mode = "timed"
	Untimed Mode = "untimed"
)

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Timed, Untimed:
		return m, nil
	}
	return "", fmt.Errorf("trivia: unknown mode %q", s)
}

// Phase is a position in the quiz state machine:
//
//	category_select → mode_select → countdown → question → answered → (question | game_over)
type Phase string

const (
	PhaseCategorySelect Phase = "category_select"
	PhaseModeSelect     Phase = "mode_select"
	PhaseCountdown      Phase = "countdown"
	PhaseQuestion       Phase = "question"
	PhaseAnswered       Phase = "answered"
	PhaseGameOver       Phase = "game_over"
)

// Question is one trivia prompt.
// Single-answer questions have exactly one Correct index and Multiple == false;
// multi-answer questions need an explicit submit and are scored by set equality.
type Question struct {
	Prompt   string   `json:"question"`
	Options  []string `json:"options"`
	Correct  []int    `json:"correct"`
	Multiple bool     `json:"multiple"`
	AudioURL string   `json:"audioUrl,omitempty"`
}

// CorrectOptions returns the option texts of the correct answer(s).
func (q Question) CorrectOptions() []string {
	out := make([]string, 0, len(q.Correct))
	for _, i := range q.Correct {
		out = append(out, q.Options[i])
	}
	return out
}

// Outcome classifies a scored question.
type Outcome string

const (
	Correct   Outcome = "correct"
	Partial   Outcome = "partial"
	Incorrect Outcome = "incorrect"
	Timeout   Outcome = "timeout"
)

// Answer describes how the current question was scored.
type Answer struct {
	Question int     `json:"question"` // 0-based index into the pool
	Outcome  Outcome `json:"outcome"`
	Points   int     `json:"points"`
	Feedback string  `json:"feedback"` // localization key
}
