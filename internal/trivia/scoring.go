// internal/trivia/scoring.go
//
// Answer classification and the points table.
//
// Timed mode:   correct → 5 / 3 / 1 / 0 by remaining ≥10 / ≥5 / ≥1 / 0,
//               partial → 1, incorrect → -2, timeout → 0.
// Untimed mode: correct → 5, partial → 1, incorrect → 0.
//
// Partial credit is flat in timed mode regardless of the time left.

package trivia

// Feedback keys resolved by the localization layer.
const (
	FeedbackExcellent = "trivia.feedback.excellent"
	FeedbackCorrect   = "trivia.feedback.correct"
	FeedbackIncorrect = "trivia.feedback.incorrect"
	FeedbackTimeout   = "trivia.feedback.timeout"
)

// Classify scores a selection against q.
//
// Single-answer: correct iff the first selection is the correct index.
// Multi-answer:  correct iff the selection equals the correct set;
// partial iff it hits at least one correct option and at least one wrong one.
func Classify(q Question, selected []int) Outcome {
	if len(selected) == 0 {
		return Incorrect
	}
	if !q.Multiple {
		if len(q.Correct) > 0 && selected[0] == q.Correct[0] {
			return Correct
		}
		return Incorrect
	}

	want := make(map[int]bool, len(q.Correct))
	for _, i := range q.Correct {
		want[i] = true
	}
	got := make(map[int]bool, len(selected))
	for _, i := range selected {
		got[i] = true
	}

	hits, misses := 0, 0
	for i := range got {
		if want[i] {
			hits++
		} else {
			misses++
		}
	}
	if misses == 0 && hits == len(want) {
		return Correct
	}
	if hits > 0 && misses > 0 {
		return Partial
	}
	return Incorrect
}

// TimedPoints returns the credit for a correct timed answer.
func TimedPoints(remaining int) int {
	switch {
	case remaining >= 10:
		return 5
	case remaining >= 5:
		return 3
	case remaining >= 1:
		return 1
	default:
		return 0
	}
}

// Points returns the score delta for an outcome.
func Points(m Mode, o Outcome, remaining int) int {
	switch o {
	case Correct:
		if m == Timed {
			return TimedPoints(remaining)
		}
		return 5
	case Partial:
		return 1
	case Timeout:
		return 0
	}
	if m == Timed {
		return -2
	}
	return 0
}

// FeedbackKey picks the feedback message key shown after scoring.
func FeedbackKey(m Mode, o Outcome, remaining int) string {
	switch o {
	case Correct:
		if m == Timed && remaining > 10 {
			return FeedbackExcellent
		}
		return FeedbackCorrect
	case Timeout:
		return FeedbackTimeout
	default:
		return FeedbackIncorrect
	}
}
