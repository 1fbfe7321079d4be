package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/shakegang/arcade/internal/clock"
	"github.com/shakegang/arcade/internal/leaderboard"
	"github.com/shakegang/arcade/internal/puzzle"
	"github.com/shakegang/arcade/internal/scores"
	"github.com/shakegang/arcade/internal/session"
	"github.com/shakegang/arcade/internal/trivia"
)

type fixedImages struct{}

func (fixedImages) ImageFor(puzzle.Difficulty) string { return "https://img.test/a.jpg" }

// twoQuestions answers every category with two single-answer questions whose
// correct option is 1.
type twoQuestions struct{}

func (twoQuestions) QuestionsFor(trivia.Category) []trivia.Question {
	return []trivia.Question{
		{Prompt: "uno", Options: []string{"a", "b", "c"}, Correct: []int{1}},
		{Prompt: "dos", Options: []string{"a", "b", "c"}, Correct: []int{1}},
	}
}

type harness struct {
	srv *Server
	pub *leaderboard.Publisher
	clk *clock.Manual
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	pub := leaderboard.New(scores.NewMemoryStore())
	t.Cleanup(func() { _ = pub.Close() })
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	clk := clock.NewManual()
	srv := New(Deps{
		Publisher: pub,
		Questions: twoQuestions{},
		Images:    fixedImages{},
		Clock:     clk,
		Auth: AuthConfig{
			Secret:            "test-secret",
			AdminUsername:     "admin",
			AdminPasswordHash: string(hash),
		},
	})
	return &harness{srv: srv, pub: pub, clk: clk}
}

func (h *harness) do(t *testing.T, method, path string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rr := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rr, req)
	return rr
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func wantStatus(t *testing.T, rr *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rr.Code != code {
		t.Fatalf("status = %d; want %d (body %s)", rr.Code, code, rr.Body.String())
	}
}

// waitBoard polls a leaderboard until it holds n entries.
func (h *harness) waitBoard(t *testing.T, path string, n int) []scores.Record {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		rr := h.do(t, http.MethodGet, path, nil)
		wantStatus(t, rr, http.StatusOK)
		var fr boardFrame
		decodeInto(t, rr, &fr)
		if len(fr.Entries) == n {
			return fr.Entries
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s has %d entries; want %d", path, len(fr.Entries), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHealthAndCORS(t *testing.T) {
	h := newHarness(t)
	wantStatus(t, h.do(t, http.MethodGet, "/health", nil), http.StatusOK)
	wantStatus(t, h.do(t, http.MethodGet, "/puzzle/images", nil), http.StatusOK)

	rr := h.do(t, http.MethodOptions, "/puzzle/new", nil)
	wantStatus(t, rr, http.StatusNoContent)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin = %q", got)
	}

	rr = h.do(t, http.MethodGet, "/nope", nil)
	wantStatus(t, rr, http.StatusNotFound)
	if !strings.Contains(rr.Body.String(), "not_found") {
		t.Fatalf("404 body = %s", rr.Body.String())
	}
}

func TestPuzzleHappyPath(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/puzzle/new", map[string]string{"playerName": "  Ana ", "difficulty": "easy"})
	wantStatus(t, rr, http.StatusCreated)
	var created puzzleRes
	decodeInto(t, rr, &created)
	if created.ID == "" || created.State.Phase != session.PuzzlePlaying || created.State.GridSize != 4 {
		t.Fatalf("created = %+v", created)
	}
	if created.State.Player != "Ana" || created.State.Image == "" {
		t.Fatalf("player/image = %q %q", created.State.Player, created.State.Image)
	}

	h.clk.Advance(3 * time.Second)

	base := "/puzzle/" + created.ID
	tiles := created.State.Tiles
	var last puzzle.Outcome
	for last != puzzle.Completed {
		from := -1
		for i, tile := range tiles {
			if tile != i {
				from = i
				break
			}
		}
		to := -1
		for j, tile := range tiles {
			if tile == from {
				to = j
			}
		}
		var res clickRes
		rr := h.do(t, http.MethodPost, base+"/click", map[string]int{"index": from})
		wantStatus(t, rr, http.StatusOK)
		decodeInto(t, rr, &res)
		if res.Outcome != puzzle.Selected {
			t.Fatalf("click %d = %s; want selected", from, res.Outcome)
		}
		rr = h.do(t, http.MethodPost, base+"/click", map[string]int{"index": to})
		wantStatus(t, rr, http.StatusOK)
		decodeInto(t, rr, &res)
		last, tiles = res.Outcome, res.State.Tiles
	}

	entries := h.waitBoard(t, "/leaderboard/puzzle/easy", 1)
	if entries[0].PlayerName != "Ana" || entries[0].ElapsedSeconds != 3 || entries[0].ID == "" {
		t.Fatalf("entry = %+v", entries[0])
	}

	// Further clicks are refused once the game is over.
	wantStatus(t, h.do(t, http.MethodPost, base+"/click", map[string]int{"index": 0}), http.StatusConflict)

	// The stored record shows up in the session once Submit returns.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var snap session.PuzzleSnapshot
		rr = h.do(t, http.MethodGet, base, nil)
		wantStatus(t, rr, http.StatusOK)
		decodeInto(t, rr, &snap)
		if snap.Phase != session.PuzzleCompleted {
			t.Fatalf("final phase = %s", snap.Phase)
		}
		if snap.Result != nil && snap.Result.Record != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no result in snapshot: %+v", snap)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPuzzleLifecycleAndErrors(t *testing.T) {
	h := newHarness(t)

	wantStatus(t, h.do(t, http.MethodPost, "/puzzle/new", map[string]string{"playerName": "Ana", "difficulty": "giant"}), http.StatusBadRequest)
	wantStatus(t, h.do(t, http.MethodPost, "/puzzle/new", map[string]string{"playerName": "   "}), http.StatusBadRequest)
	wantStatus(t, h.do(t, http.MethodGet, "/puzzle/missing", nil), http.StatusNotFound)

	rr := h.do(t, http.MethodPost, "/puzzle/new", map[string]string{"playerName": "Ana"})
	wantStatus(t, rr, http.StatusCreated)
	var created puzzleRes
	decodeInto(t, rr, &created)
	if created.State.Difficulty != puzzle.Medium {
		t.Fatalf("default difficulty = %s", created.State.Difficulty)
	}
	base := "/puzzle/" + created.ID

	wantStatus(t, h.do(t, http.MethodPost, base+"/click", map[string]int{"index": 99}), http.StatusBadRequest)
	wantStatus(t, h.do(t, http.MethodPost, base+"/click", map[string]string{}), http.StatusBadRequest)
	wantStatus(t, h.do(t, http.MethodPost, base+"/restart", nil), http.StatusOK)

	var snap session.PuzzleSnapshot
	rr = h.do(t, http.MethodPost, base+"/difficulty", map[string]string{"difficulty": "hard"})
	wantStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &snap)
	if snap.Phase != session.PuzzleSetup || snap.Difficulty != puzzle.Hard || snap.Tiles != nil {
		t.Fatalf("after difficulty change = %+v", snap)
	}
	wantStatus(t, h.do(t, http.MethodPost, base+"/restart", nil), http.StatusConflict)

	rr = h.do(t, http.MethodPost, base+"/start", nil)
	wantStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &snap)
	if snap.Phase != session.PuzzlePlaying || snap.GridSize != 8 || snap.Player != "Ana" {
		t.Fatalf("after start = %+v", snap)
	}

	wantStatus(t, h.do(t, http.MethodDelete, base, nil), http.StatusOK)
	wantStatus(t, h.do(t, http.MethodGet, base, nil), http.StatusNotFound)
}

func TestTriviaHappyPath(t *testing.T) {
	h := newHarness(t)
	en := []string{"Accept-Language", "en-US,en;q=0.9"}

	rr := h.do(t, http.MethodPost, "/trivia/new", map[string]string{"playerName": "Ana"})
	wantStatus(t, rr, http.StatusCreated)
	var created triviaRes
	decodeInto(t, rr, &created)
	if created.State.Phase != trivia.PhaseCategorySelect {
		t.Fatalf("phase = %s", created.State.Phase)
	}
	base := "/trivia/" + created.ID

	var st triviaState
	rr = h.do(t, http.MethodPost, base+"/category", map[string]string{"category": "music"})
	wantStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &st)
	if st.Phase != trivia.PhaseModeSelect || st.Total != 2 {
		t.Fatalf("after category = %+v", st)
	}

	rr = h.do(t, http.MethodPost, base+"/mode", map[string]string{"mode": "untimed"})
	wantStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &st)
	if st.Phase != trivia.PhaseCountdown || st.Countdown != 3 || st.CountdownText == "" {
		t.Fatalf("after mode = %+v", st)
	}

	h.clk.Advance(4800 * time.Millisecond)
	rr = h.do(t, http.MethodGet, base, nil)
	decodeInto(t, rr, &st)
	if st.Phase != trivia.PhaseQuestion || st.Question == nil || st.Question.Correct != nil {
		t.Fatalf("first question = %+v", st)
	}

	var ans answerRes
	rr = h.do(t, http.MethodPost, base+"/option", map[string]int{"index": 1}, en...)
	wantStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &ans)
	if !ans.Scored || ans.State.Answer == nil || ans.State.Answer.Outcome != trivia.Correct {
		t.Fatalf("answer = %+v", ans)
	}
	if ans.State.FeedbackText != "Correct!" || ans.State.Score != 5 {
		t.Fatalf("feedback %q score %d", ans.State.FeedbackText, ans.State.Score)
	}

	var nx nextRes
	rr = h.do(t, http.MethodPost, base+"/next", nil)
	wantStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &nx)
	if nx.Over || nx.State.Phase != trivia.PhaseQuestion {
		t.Fatalf("next = %+v", nx)
	}

	rr = h.do(t, http.MethodPost, base+"/option", map[string]int{"index": 0})
	wantStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &ans)
	if ans.State.Answer.Outcome != trivia.Incorrect || ans.State.FeedbackText != "Incorrecto" {
		t.Fatalf("second answer = %+v", ans.State)
	}

	rr = h.do(t, http.MethodPost, base+"/next", nil)
	decodeInto(t, rr, &nx)
	if !nx.Over || nx.State.Phase != trivia.PhaseGameOver {
		t.Fatalf("final next = %+v", nx)
	}

	entries := h.waitBoard(t, "/leaderboard/trivia/music", 1)
	if entries[0].Score != 5 || entries[0].PlayerName != "Ana" {
		t.Fatalf("entry = %+v", entries[0])
	}
}

func TestTriviaErrors(t *testing.T) {
	h := newHarness(t)
	wantStatus(t, h.do(t, http.MethodPost, "/trivia/new", map[string]string{"playerName": strings.Repeat("x", 21)}), http.StatusBadRequest)

	rr := h.do(t, http.MethodPost, "/trivia/new", map[string]string{"playerName": "Ana"})
	var created triviaRes
	decodeInto(t, rr, &created)
	base := "/trivia/" + created.ID

	wantStatus(t, h.do(t, http.MethodPost, base+"/mode", map[string]string{"mode": "timed"}), http.StatusConflict)
	wantStatus(t, h.do(t, http.MethodPost, base+"/category", map[string]string{"category": "cooking"}), http.StatusBadRequest)
	wantStatus(t, h.do(t, http.MethodPost, base+"/option", map[string]int{"index": 0}), http.StatusConflict)

	wantStatus(t, h.do(t, http.MethodPost, base+"/category", map[string]string{"category": "shurahiwa"}), http.StatusOK)
	wantStatus(t, h.do(t, http.MethodPost, base+"/mode", map[string]string{"mode": "blitz"}), http.StatusBadRequest)

	var st triviaState
	rr = h.do(t, http.MethodPost, base+"/back", nil)
	wantStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &st)
	if st.Phase != trivia.PhaseCategorySelect || st.Player != "Ana" {
		t.Fatalf("after back = %+v", st)
	}
}

func TestLeaderboardValidation(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{
		"/leaderboard/chess/easy",
		"/leaderboard/puzzle/giant",
		"/leaderboard/trivia/cooking",
		"/leaderboard/puzzle/easy?limit=0",
		"/leaderboard/puzzle/easy?limit=many",
	} {
		t.Run(path, func(t *testing.T) {
			wantStatus(t, h.do(t, http.MethodGet, path, nil), http.StatusBadRequest)
		})
	}

	ctx := context.Background()
	for _, e := range []int{30, 10, 20} {
		if _, err := h.pub.Submit(ctx, scores.Record{Game: scores.GamePuzzle, PlayerName: "p", Difficulty: "hard", ElapsedSeconds: e}); err != nil {
			t.Fatal(err)
		}
	}
	rr := h.do(t, http.MethodGet, "/leaderboard/puzzle/hard?limit=2", nil)
	wantStatus(t, rr, http.StatusOK)
	var fr boardFrame
	decodeInto(t, rr, &fr)
	if len(fr.Entries) != 2 || fr.Entries[0].ElapsedSeconds != 10 || fr.Entries[1].ElapsedSeconds != 20 {
		t.Fatalf("entries = %+v", fr.Entries)
	}
}

func TestModerationRemovesScore(t *testing.T) {
	h := newHarness(t)
	rec, err := h.pub.Submit(context.Background(), scores.Record{Game: scores.GameTrivia, PlayerName: "troll", Category: "music", Score: 999})
	if err != nil {
		t.Fatal(err)
	}

	wantStatus(t, h.do(t, http.MethodDelete, "/scores/"+rec.ID, nil), http.StatusUnauthorized)
	wantStatus(t, h.do(t, http.MethodDelete, "/scores/"+rec.ID, nil, "Authorization", "Bearer junk"), http.StatusUnauthorized)
	wantStatus(t, h.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "wrong"}), http.StatusUnauthorized)

	rr := h.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "hunter22"})
	wantStatus(t, rr, http.StatusOK)
	var login struct {
		Token string `json:"token"`
	}
	decodeInto(t, rr, &login)
	if login.Token == "" {
		t.Fatal("no token")
	}
	if c := rr.Result().Cookies(); len(c) == 0 || c[0].Name != CookieName {
		t.Fatalf("cookies = %v", c)
	}

	auth := []string{"Authorization", "Bearer " + login.Token}
	wantStatus(t, h.do(t, http.MethodDelete, "/scores/"+rec.ID, nil, auth...), http.StatusOK)
	wantStatus(t, h.do(t, http.MethodDelete, "/scores/"+rec.ID, nil, auth...), http.StatusNotFound)
	h.waitBoard(t, "/leaderboard/trivia/music", 0)
}

func TestModerationDisabledWithoutAdmin(t *testing.T) {
	const secret = "dev_secret_change_me"
	pub := leaderboard.New(scores.NewMemoryStore())
	t.Cleanup(func() { _ = pub.Close() })
	h := &harness{
		srv: New(Deps{Publisher: pub, Auth: AuthConfig{Secret: secret, AdminUsername: "admin"}}),
		pub: pub,
	}
	rec, err := pub.Submit(context.Background(), scores.Record{Game: scores.GameTrivia, PlayerName: "ana", Category: "music", Score: 3})
	if err != nil {
		t.Fatal(err)
	}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       "admin",
		"username": "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, h.do(t, http.MethodDelete, "/scores/"+rec.ID, nil, "Authorization", "Bearer "+forged), http.StatusUnauthorized)
	wantStatus(t, h.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": ""}), http.StatusUnauthorized)
	h.waitBoard(t, "/leaderboard/trivia/music", 1)
}

func TestLiveLeaderboard(t *testing.T) {
	h := newHarness(t)
	ts := httptest.NewServer(h.srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/leaderboard/trivia/music/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() boardFrame {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var fr boardFrame
		if err := conn.ReadJSON(&fr); err != nil {
			t.Fatalf("read: %v", err)
		}
		return fr
	}

	if fr := read(); len(fr.Entries) != 0 || fr.Game != scores.GameTrivia || fr.Key != "music" {
		t.Fatalf("initial frame = %+v", fr)
	}
	if _, err := h.pub.Submit(context.Background(), scores.Record{Game: scores.GameTrivia, PlayerName: "Ana", Category: "music", Score: 12}); err != nil {
		t.Fatal(err)
	}
	fr := read()
	if len(fr.Entries) != 1 || fr.Entries[0].Score != 12 {
		t.Fatalf("live frame = %+v", fr)
	}
}
