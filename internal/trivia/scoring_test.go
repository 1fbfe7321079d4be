package trivia

import "testing"

func TestPointsTable(t *testing.T) {
	cases := []struct {
		name      string
		mode      Mode
		outcome   Outcome
		remaining int
		want      int
	}{
		{"timed correct 15s", Timed, Correct, 15, 5},
		{"timed correct 10s", Timed, Correct, 10, 5},
		{"timed correct 9s", Timed, Correct, 9, 3},
		{"timed correct 5s", Timed, Correct, 5, 3},
		{"timed correct 4s", Timed, Correct, 4, 1},
		{"timed correct 1s", Timed, Correct, 1, 1},
		{"timed correct 0s", Timed, Correct, 0, 0},
		{"timed partial", Timed, Partial, 12, 1},
		{"timed partial late", Timed, Partial, 2, 1},
		{"timed incorrect", Timed, Incorrect, 14, -2},
		{"timed timeout", Timed, Timeout, 0, 0},
		{"untimed correct", Untimed, Correct, 15, 5},
		{"untimed partial", Untimed, Partial, 15, 1},
		{"untimed incorrect", Untimed, Incorrect, 15, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Points(tc.mode, tc.outcome, tc.remaining)
			if got != tc.want {
				t.Fatalf("Points(%s, %s, %d) = %d; want %d", tc.mode, tc.outcome, tc.remaining, got, tc.want)
			}
			// scoring is a pure function
			if again := Points(tc.mode, tc.outcome, tc.remaining); again != got {
				t.Fatalf("second call = %d; want %d", again, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	single := Question{Options: []string{"a", "b", "c", "d"}, Correct: []int{2}}
	multi := Question{Options: []string{"a", "b", "c", "d"}, Correct: []int{1, 3}, Multiple: true}

	cases := []struct {
		name string
		q    Question
		sel  []int
		want Outcome
	}{
		{"single hit", single, []int{2}, Correct},
		{"single miss", single, []int{0}, Incorrect},
		{"empty", single, nil, Incorrect},
		{"multi exact", multi, []int{3, 1}, Correct},
		{"multi one right one wrong", multi, []int{1, 2}, Partial},
		{"multi subset only", multi, []int{1}, Incorrect},
		{"multi all wrong", multi, []int{0, 2}, Incorrect},
		{"multi superset", multi, []int{0, 1, 3}, Partial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.q, tc.sel); got != tc.want {
				t.Fatalf("Classify(%v) = %s; want %s", tc.sel, got, tc.want)
			}
		})
	}
}

func TestFeedbackKey(t *testing.T) {
	cases := []struct {
		mode      Mode
		outcome   Outcome
		remaining int
		want      string
	}{
		{Timed, Correct, 11, FeedbackExcellent},
		{Timed, Correct, 10, FeedbackCorrect},
		{Untimed, Correct, 15, FeedbackCorrect},
		{Timed, Partial, 12, FeedbackIncorrect},
		{Untimed, Incorrect, 15, FeedbackIncorrect},
		{Timed, Timeout, 0, FeedbackTimeout},
	}
	for _, tc := range cases {
		if got := FeedbackKey(tc.mode, tc.outcome, tc.remaining); got != tc.want {
			t.Fatalf("FeedbackKey(%s,%s,%d) = %q; want %q", tc.mode, tc.outcome, tc.remaining, got, tc.want)
		}
	}
}
