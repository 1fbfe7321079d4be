package session

import (
	"math/rand/v2"
	"time"

	"github.com/shakegang/arcade/internal/clock"
	"github.com/shakegang/arcade/internal/metrics"
	"github.com/shakegang/arcade/internal/scores"
	"github.com/shakegang/arcade/internal/trivia"
)

const (
	// countdownStep is the interval between countdown values.
	countdownStep = time.Second
	// goDelay is the pause after "GO" before the first question.
	goDelay = 800 * time.Millisecond
	// questionTick is the resolution of the per-question timer.
	questionTick = time.Second
)

// QuestionSource supplies the questions of a category. *questions.Bank satisfies it.
type QuestionSource interface {
	QuestionsFor(c trivia.Category) []trivia.Question
}

// TriviaConfig wires a trivia session.
type TriviaConfig struct {
	Clock     clock.Scheduler
	Questions QuestionSource
	Submitter Submitter
	Rand      trivia.Source
	Hooks     Hooks
}

// Trivia drives one player's quizzes: selection screens, countdown, timed or
// untimed questions, and the final submission.
type Trivia struct {
	base
	bank  QuestionSource
	rng   trivia.Source
	hooks Hooks

	player string
	game   *trivia.Game
}

// NewTrivia returns a session at category selection.
func NewTrivia(cfg TriviaConfig) *Trivia {
	t := &Trivia{
		bank:  cfg.Questions,
		rng:   cfg.Rand,
		hooks: cfg.Hooks,
		game:  trivia.NewGame(),
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	t.init(cfg.Clock, cfg.Submitter)
	return t
}

// SetPlayer records the name used for the next quiz.
func (t *Trivia) SetPlayer(name string) error {
	n, err := trivia.NormalizePlayer(name)
	if err != nil {
		return err
	}
	return t.run(func() error {
		if t.game.Phase() != trivia.PhaseCategorySelect {
			return ErrWrongPhase
		}
		t.player = n
		return nil
	})
}

// SelectCategory draws the question pool for c and moves to mode selection.
func (t *Trivia) SelectCategory(c trivia.Category) error {
	return t.run(func() error {
		var bank []trivia.Question
		if t.bank != nil {
			bank = t.bank.QuestionsFor(c)
		}
		return t.game.SelectCategory(t.player, c, bank, t.rng)
	})
}

// Back returns from mode selection to category selection.
func (t *Trivia) Back() error {
	return t.run(t.game.BackToCategories)
}

// ChooseMode locks in m and starts the 3-2-1-GO countdown. The first question
// appears goDelay after "GO".
func (t *Trivia) ChooseMode(m trivia.Mode) error {
	return t.run(func() error {
		if err := t.game.BeginCountdown(m); err != nil {
			return err
		}
		t.newRoundLocked()
		t.emitCountdown(t.game.Countdown())
		t.every(countdownStep, t.countdownTickLocked)
		return nil
	})
}

func (t *Trivia) emitCountdown(n int) {
	if h := t.hooks.OnCountdownTick; h != nil {
		t.emit(func() { h(n) })
	}
}

func (t *Trivia) countdownTickLocked() {
	v, done := t.game.CountdownTick()
	if !done {
		t.emitCountdown(v)
		return
	}
	t.after(goDelay, t.startQuestionsLocked)
}

func (t *Trivia) startQuestionsLocked() {
	t.stopTimer()
	if err := t.game.StartQuestions(); err != nil {
		return
	}
	metrics.SessionsStarted.WithLabelValues(string(scores.GameTrivia)).Inc()
	t.startQuestionTimerLocked()
}

func (t *Trivia) startQuestionTimerLocked() {
	if t.game.Mode() != trivia.Timed {
		return
	}
	t.every(questionTick, func() {
		if t.game.Tick() {
			t.stopTimer()
			t.emit(t.hooks.OnIncorrect)
		}
	})
}

// ClickOption clicks option i. Single-answer questions are scored at once;
// multi-answer questions toggle the option.
func (t *Trivia) ClickOption(i int) (ans trivia.Answer, scored bool, err error) {
	err = t.run(func() error {
		q, ok := t.game.Current()
		if !ok {
			return ErrNotPlaying
		}
		if i < 0 || i >= len(q.Options) {
			return ErrBadIndex
		}
		if t.game.Answered() {
			return nil
		}
		ans, scored = t.game.ClickOption(i)
		if scored {
			t.answeredLocked(ans)
		} else {
			t.emit(t.hooks.OnSelect)
		}
		return nil
	})
	return ans, scored, err
}

// Submit scores the current multi-answer selection. It is a no-op when the
// question is already answered or nothing is selected.
func (t *Trivia) Submit() (ans trivia.Answer, scored bool, err error) {
	err = t.run(func() error {
		if _, ok := t.game.Current(); !ok {
			return ErrNotPlaying
		}
		ans, scored = t.game.Submit()
		if scored {
			t.answeredLocked(ans)
		}
		return nil
	})
	return ans, scored, err
}

func (t *Trivia) answeredLocked(a trivia.Answer) {
	t.stopTimer()
	if a.Outcome == trivia.Correct {
		t.emit(t.hooks.OnCorrect)
	} else {
		t.emit(t.hooks.OnIncorrect)
	}
}

// Next advances past an answered question. It reports true when the quiz is
// over; the final score is then submitted asynchronously.
func (t *Trivia) Next() (over bool, err error) {
	err = t.run(func() error {
		over, err = t.game.Advance()
		if err != nil {
			return err
		}
		if over {
			t.stopTimer()
			t.emit(t.hooks.OnVictory)
			t.submitAsync(scores.Record{
				Game:       scores.GameTrivia,
				PlayerName: t.game.Player(),
				Score:      t.game.Score(),
				Category:   string(t.game.Category()),
			})
			return nil
		}
		t.startQuestionTimerLocked()
		return nil
	})
	return over, err
}

// Reset cancels any timer and returns to category selection, keeping the
// player name. The previous quiz's result is dropped, including one still
// being submitted.
func (t *Trivia) Reset() error {
	return t.run(func() error {
		t.stopTimer()
		t.newRoundLocked()
		t.game.Reset()
		return nil
	})
}

// Close stops timers; later calls return ErrClosed.
func (t *Trivia) Close() {
	t.mu.Lock()
	t.closeLocked()
	t.mu.Unlock()
}

// QuestionView is the client-facing form of the current question. The
// correct answers are revealed only once the question is answered.
type QuestionView struct {
	Prompt   string   `json:"question"`
	Options  []string `json:"options"`
	Multiple bool     `json:"multiple"`
	AudioURL string   `json:"audioUrl,omitempty"`
	Correct  []int    `json:"correct,omitempty"`
}

// TriviaSnapshot is a point-in-time copy of a trivia session.
type TriviaSnapshot struct {
	Phase     trivia.Phase    `json:"phase"`
	Player    string          `json:"playerName,omitempty"`
	Category  trivia.Category `json:"category,omitempty"`
	Mode      trivia.Mode     `json:"mode,omitempty"`
	Countdown int             `json:"countdown"`
	Index     int             `json:"index"`
	Total     int             `json:"total"`
	Remaining int             `json:"remaining"`
	Score     int             `json:"score"`
	Question  *QuestionView   `json:"current,omitempty"`
	Selected  []int           `json:"selected,omitempty"`
	Answer    *trivia.Answer  `json:"answer,omitempty"`
	Result    *ResultView     `json:"result,omitempty"`
}

func (t *Trivia) Snapshot() TriviaSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	g := t.game
	player := g.Player()
	if player == "" {
		player = t.player
	}
	s := TriviaSnapshot{
		Phase:     g.Phase(),
		Player:    player,
		Category:  g.Category(),
		Mode:      g.Mode(),
		Countdown: g.Countdown(),
		Index:     g.Index(),
		Total:     g.PoolSize(),
		Remaining: g.Remaining(),
		Score:     g.Score(),
		Selected:  g.Selected(),
		Result:    t.resultLocked(),
	}
	if q, ok := g.Current(); ok {
		v := &QuestionView{
			Prompt:   q.Prompt,
			Options:  append([]string(nil), q.Options...),
			Multiple: q.Multiple,
			AudioURL: q.AudioURL,
		}
		if g.Answered() {
			v.Correct = append([]int(nil), q.Correct...)
		}
		s.Question = v
	}
	if a, ok := g.LastAnswer(); ok {
		s.Answer = &a
	}
	return s
}
