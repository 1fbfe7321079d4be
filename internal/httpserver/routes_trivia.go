// internal/httpserver/routes_trivia.go
//
// Trivia quiz sessions.
// Endpoints:
//   POST   /trivia/new             {playerName} → {id, state}
//   GET    /trivia/{id}            → state
//   POST   /trivia/{id}/player     {playerName} (category selection only)
//   POST   /trivia/{id}/category   {category}
//   POST   /trivia/{id}/back       mode selection → category selection
//   POST   /trivia/{id}/mode       {mode} → countdown starts
//   POST   /trivia/{id}/option     {index} → {scored, state}
//   POST   /trivia/{id}/submit     multi-answer questions → {scored, state}
//   POST   /trivia/{id}/next       → {over, state}
//   POST   /trivia/{id}/reset
//   DELETE /trivia/{id}
//
// The countdown and per-question timer run server side; clients poll the
// state. Feedback and countdown strings are localized from Accept-Language.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shakegang/arcade/internal/i18n"
	"github.com/shakegang/arcade/internal/session"
	"github.com/shakegang/arcade/internal/trivia"
)

type playerReq struct {
	PlayerName string `json:"playerName"`
}

type categoryReq struct {
	Category string `json:"category"`
}

type modeReq struct {
	Mode string `json:"mode"`
}

// triviaState is a snapshot plus its localized strings.
type triviaState struct {
	session.TriviaSnapshot
	CountdownText string `json:"countdownText,omitempty"`
	FeedbackText  string `json:"feedbackText,omitempty"`
}

type triviaRes struct {
	ID    string      `json:"id"`
	State triviaState `json:"state"`
}

type answerRes struct {
	Scored bool        `json:"scored"`
	State  triviaState `json:"state"`
}

type nextRes struct {
	Over  bool        `json:"over"`
	State triviaState `json:"state"`
}

func localize(snap session.TriviaSnapshot, msg i18n.Resolver) triviaState {
	st := triviaState{TriviaSnapshot: snap}
	if snap.Phase == trivia.PhaseCountdown {
		st.CountdownText = msg.Resolve(i18n.CountdownKey(snap.Countdown))
	}
	if snap.Answer != nil && (snap.Phase == trivia.PhaseAnswered || snap.Phase == trivia.PhaseGameOver) {
		st.FeedbackText = msg.Resolve(snap.Answer.Feedback)
	}
	return st
}

func (s *Server) mountTrivia(r chi.Router) {
	r.Post("/new", s.handleNewTrivia)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.withTrivia(func(w http.ResponseWriter, r *http.Request, t *session.Trivia) error {
			writeJSON(w, http.StatusOK, localize(t.Snapshot(), messages(r)))
			return nil
		}))
		r.Post("/player", s.withTrivia(s.handleTriviaPlayer))
		r.Post("/category", s.withTrivia(s.handleTriviaCategory))
		r.Post("/back", s.withTrivia(triviaAction((*session.Trivia).Back)))
		r.Post("/mode", s.withTrivia(s.handleTriviaMode))
		r.Post("/option", s.withTrivia(s.handleTriviaOption))
		r.Post("/submit", s.withTrivia(s.handleTriviaSubmit))
		r.Post("/next", s.withTrivia(s.handleTriviaNext))
		r.Post("/reset", s.withTrivia(triviaAction((*session.Trivia).Reset)))
		r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			if err := s.trivias.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				writeSessionError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
	})
}

// withTrivia resolves {id} and maps handler errors to responses.
func (s *Server) withTrivia(h func(http.ResponseWriter, *http.Request, *session.Trivia) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.trivias.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		if err := h(w, r, t); err != nil {
			writeSessionError(w, err)
		}
	}
}

func triviaAction(fn func(*session.Trivia) error) func(http.ResponseWriter, *http.Request, *session.Trivia) error {
	return func(w http.ResponseWriter, r *http.Request, t *session.Trivia) error {
		if err := fn(t); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, localize(t.Snapshot(), messages(r)))
		return nil
	}
}

func (s *Server) handleNewTrivia(w http.ResponseWriter, r *http.Request) {
	var req playerReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	t := session.NewTrivia(session.TriviaConfig{
		Clock:     s.deps.Clock,
		Questions: s.deps.Questions,
		Submitter: s.deps.Publisher,
	})
	if err := t.SetPlayer(req.PlayerName); err != nil {
		t.Close()
		writeSessionError(w, err)
		return
	}
	id := newSessionID()
	if err := s.trivias.Save(r.Context(), id, t); err != nil {
		t.Close()
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusCreated, triviaRes{ID: id, State: localize(t.Snapshot(), messages(r))})
}

func (s *Server) handleTriviaPlayer(w http.ResponseWriter, r *http.Request, t *session.Trivia) error {
	var req playerReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return nil
	}
	return triviaAction(func(t *session.Trivia) error { return t.SetPlayer(req.PlayerName) })(w, r, t)
}

func (s *Server) handleTriviaCategory(w http.ResponseWriter, r *http.Request, t *session.Trivia) error {
	var req categoryReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return nil
	}
	c := trivia.Category(req.Category)
	return triviaAction(func(t *session.Trivia) error { return t.SelectCategory(c) })(w, r, t)
}

func (s *Server) handleTriviaMode(w http.ResponseWriter, r *http.Request, t *session.Trivia) error {
	var req modeReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return nil
	}
	m := trivia.Mode(req.Mode)
	return triviaAction(func(t *session.Trivia) error { return t.ChooseMode(m) })(w, r, t)
}

func (s *Server) handleTriviaOption(w http.ResponseWriter, r *http.Request, t *session.Trivia) error {
	var req indexReq
	if err := decode(r, &req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "index required")
		return nil
	}
	_, scored, err := t.ClickOption(*req.Index)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, answerRes{Scored: scored, State: localize(t.Snapshot(), messages(r))})
	return nil
}

func (s *Server) handleTriviaSubmit(w http.ResponseWriter, r *http.Request, t *session.Trivia) error {
	_, scored, err := t.Submit()
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, answerRes{Scored: scored, State: localize(t.Snapshot(), messages(r))})
	return nil
}

func (s *Server) handleTriviaNext(w http.ResponseWriter, r *http.Request, t *session.Trivia) error {
	over, err := t.Next()
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, nextRes{Over: over, State: localize(t.Snapshot(), messages(r))})
	return nil
}
