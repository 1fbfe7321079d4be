// internal/trivia/game.go
//
// State machine for a single trivia quiz.
// Responsibilities:
//   - Category and mode selection (player name required, pool sampled once).
//   - The 3-2-1-GO countdown values.
//   - Per-question timing in timed mode (driven by the caller's Tick calls).
//   - Single- and multi-answer submission and scoring.
//   - Advancing to the next question or to game over.
//
// Notes:
//   - The engine owns no timers. Callers schedule Tick / CountdownTick and
//     must cancel their timers before Advance / Reset.
//   - The score changes exactly once per question, on the transition into
//     the answered phase; later ticks and submissions are no-ops.
package trivia

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	ErrWrongPhase      = errors.New("trivia: action not allowed in current phase")
	ErrNameRequired    = errors.New("trivia: player name required")
	ErrNameTooLong     = errors.New("trivia: player name too long")
	ErrUnknownCategory = errors.New("trivia: unknown category")
	ErrUnknownMode     = errors.New("trivia: unknown mode")
	ErrNoQuestions     = errors.New("trivia: category has no questions")
)

// Game holds the state of one quiz from category selection to game over.
type Game struct {
	phase     Phase
	player    string
	category  Category
	mode      Mode
	pool      []Question
	index     int
	remaining int
	selected  []int
	score     int
	countdown int
	last      *Answer
}

// NewGame returns a quiz waiting for a category.
func NewGame() *Game {
	return &Game{phase: PhaseCategorySelect}
}

// NormalizePlayer trims a player name and validates its length.
func NormalizePlayer(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxPlayerName {
		return "", ErrNameTooLong
	}
	return name, nil
}

// SelectCategory locks in the player and category and draws the question pool.
// Once a quiz has moved past category selection the category cannot change;
// use Reset or BackToCategories first.
func (g *Game) SelectCategory(player string, c Category, bank []Question, rng Source) error {
	if g.phase != PhaseCategorySelect {
		return ErrWrongPhase
	}
	name, err := NormalizePlayer(player)
	if err != nil {
		return err
	}
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	pool := Sample(bank, TotalQuestions, rng)
	if len(pool) == 0 {
		return ErrNoQuestions
	}
	g.player, g.category, g.pool = name, c, pool
	g.phase = PhaseModeSelect
	return nil
}

// BackToCategories returns from mode selection to category selection.
func (g *Game) BackToCategories() error {
	if g.phase != PhaseModeSelect {
		return ErrWrongPhase
	}
	g.category, g.pool = "", nil
	g.phase = PhaseCategorySelect
	return nil
}

// BeginCountdown locks in the mode and starts the countdown at CountdownStart.
func (g *Game) BeginCountdown(m Mode) error {
	if g.phase != PhaseModeSelect {
		return ErrWrongPhase
	}
	if m != Timed && m != Untimed {
		return fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	g.mode = m
	g.countdown = CountdownStart
	g.phase = PhaseCountdown
	return nil
}

// CountdownTick advances the countdown by one step.
// It yields 2, 1 and 0 ("GO"); the call after 0 reports done.
func (g *Game) CountdownTick() (value int, done bool) {
	if g.phase != PhaseCountdown {
		return 0, true
	}
	if g.countdown > 0 {
		g.countdown--
		return g.countdown, false
	}
	return 0, true
}

// StartQuestions leaves the countdown and shows the first question.
func (g *Game) StartQuestions() error {
	if g.phase != PhaseCountdown {
		return ErrWrongPhase
	}
	g.score, g.index = 0, 0
	g.resetQuestion()
	return nil
}

// Tick consumes one second of the current question in timed mode.
// It reports true when the tick ran the clock out and scored a timeout.
func (g *Game) Tick() (timedOut bool) {
	if g.phase != PhaseQuestion || g.mode != Timed {
		return false
	}
	if g.remaining <= 1 {
		g.remaining = 0
		g.apply(Timeout)
		return true
	}
	g.remaining--
	return false
}

// ClickOption handles a click on option i of the current question.
// Single-answer questions are scored immediately and ok is true.
// Multi-answer questions toggle i in the selection and ok is false.
func (g *Game) ClickOption(i int) (ans Answer, ok bool) {
	if g.phase != PhaseQuestion {
		return Answer{}, false
	}
	q := g.pool[g.index]
	if i < 0 || i >= len(q.Options) {
		panic(fmt.Sprintf("trivia: option %d out of range [0,%d)", i, len(q.Options)))
	}
	if !q.Multiple {
		g.selected = []int{i}
		return g.apply(Classify(q, g.selected)), true
	}
	if at := slices.Index(g.selected, i); at >= 0 {
		g.selected = slices.Delete(g.selected, at, at+1)
	} else {
		g.selected = append(g.selected, i)
	}
	return Answer{}, false
}

// Submit scores the current multi-answer selection.
// It is a no-op when the question is already answered or nothing is selected.
func (g *Game) Submit() (ans Answer, ok bool) {
	if g.phase != PhaseQuestion || len(g.selected) == 0 {
		return Answer{}, false
	}
	return g.apply(Classify(g.pool[g.index], g.selected)), true
}

// apply records the outcome for the current question. It is the only place
// the score changes.
func (g *Game) apply(o Outcome) Answer {
	pts := Points(g.mode, o, g.remaining)
	g.score += pts
	g.phase = PhaseAnswered
	a := Answer{
		Question: g.index,
		Outcome:  o,
		Points:   pts,
		Feedback: FeedbackKey(g.mode, o, g.remaining),
	}
	g.last = &a
	return a
}

// Advance moves past an answered question.
// It reports true when the quiz is over.
func (g *Game) Advance() (over bool, err error) {
	if g.phase != PhaseAnswered {
		return false, ErrWrongPhase
	}
	if g.index+1 >= len(g.pool) || g.index+1 >= TotalQuestions {
		g.phase = PhaseGameOver
		return true, nil
	}
	g.index++
	g.resetQuestion()
	return false, nil
}

func (g *Game) resetQuestion() {
	g.selected = nil
	g.remaining = QuestionSeconds
	g.last = nil
	g.phase = PhaseQuestion
}

// Reset returns to category selection, keeping only the player name.
func (g *Game) Reset() {
	*g = Game{phase: PhaseCategorySelect, player: g.player}
}

// Phase returns the current state machine position.
func (g *Game) Phase() Phase { return g.phase }

// Player returns the locked-in player name.
func (g *Game) Player() string { return g.player }

// Category returns the selected category.
func (g *Game) Category() Category { return g.category }

// Mode returns the selected mode.
func (g *Game) Mode() Mode { return g.mode }

// Score returns the running total. It can be negative.
func (g *Game) Score() int { return g.score }

// Index returns the 0-based position of the current question.
func (g *Game) Index() int { return g.index }

// PoolSize returns how many questions this quiz has.
func (g *Game) PoolSize() int { return len(g.pool) }

// Remaining returns the seconds left on the current question.
func (g *Game) Remaining() int { return g.remaining }

// Countdown returns the value currently shown by the countdown.
func (g *Game) Countdown() int { return g.countdown }

// Answered reports whether the current question has been scored.
func (g *Game) Answered() bool { return g.phase == PhaseAnswered }

// Selected returns a copy of the current selection.
func (g *Game) Selected() []int { return slices.Clone(g.selected) }

// LastAnswer returns the scoring of the current question once answered.
func (g *Game) LastAnswer() (Answer, bool) {
	if g.last == nil {
		return Answer{}, false
	}
	return *g.last, true
}

// Current returns the question being shown.
func (g *Game) Current() (Question, bool) {
	if g.phase != PhaseQuestion && g.phase != PhaseAnswered {
		return Question{}, false
	}
	return g.pool[g.index], true
}
