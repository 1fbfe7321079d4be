// internal/httpserver/routes_puzzle.go
//
// Sliding-tile puzzle sessions.
// Endpoints:
//   GET    /puzzle/images          artwork URLs, for preloading
//   POST   /puzzle/new             {playerName, difficulty} → {id, state}
//   GET    /puzzle/{id}            → state
//   POST   /puzzle/{id}/start      {playerName, difficulty} from setup
//   POST   /puzzle/{id}/click      {index} → {outcome, state}
//   POST   /puzzle/{id}/restart    same difficulty, new board
//   POST   /puzzle/{id}/reset      back to setup
//   POST   /puzzle/{id}/difficulty {difficulty} → back to setup
//   DELETE /puzzle/{id}
//
// A completed game submits its time asynchronously; the result appears in
// state.result once stored.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shakegang/arcade/internal/puzzle"
	"github.com/shakegang/arcade/internal/session"
)

type newPuzzleReq struct {
	PlayerName string `json:"playerName"`
	Difficulty string `json:"difficulty"`
}

type difficultyReq struct {
	Difficulty string `json:"difficulty"`
}

type indexReq struct {
	Index *int `json:"index"`
}

type puzzleRes struct {
	ID    string                 `json:"id"`
	State session.PuzzleSnapshot `json:"state"`
}

type clickRes struct {
	Outcome puzzle.Outcome         `json:"outcome"`
	State   session.PuzzleSnapshot `json:"state"`
}

func (s *Server) mountPuzzle(r chi.Router) {
	r.Get("/images", s.handlePuzzleImages)
	r.Post("/new", s.handleNewPuzzle)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.withPuzzle(func(w http.ResponseWriter, r *http.Request, p *session.Puzzle) error {
			writeJSON(w, http.StatusOK, p.Snapshot())
			return nil
		}))
		r.Post("/start", s.withPuzzle(s.handlePuzzleStart))
		r.Post("/click", s.withPuzzle(s.handlePuzzleClick))
		r.Post("/restart", s.withPuzzle(puzzleAction((*session.Puzzle).Restart)))
		r.Post("/reset", s.withPuzzle(puzzleAction((*session.Puzzle).Reset)))
		r.Post("/difficulty", s.withPuzzle(s.handlePuzzleDifficulty))
		r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			if err := s.puzzles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				writeSessionError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
	})
}

// withPuzzle resolves {id} and maps handler errors to responses.
func (s *Server) withPuzzle(h func(http.ResponseWriter, *http.Request, *session.Puzzle) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.puzzles.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		if err := h(w, r, p); err != nil {
			writeSessionError(w, err)
		}
	}
}

func puzzleAction(fn func(*session.Puzzle) error) func(http.ResponseWriter, *http.Request, *session.Puzzle) error {
	return func(w http.ResponseWriter, r *http.Request, p *session.Puzzle) error {
		if err := fn(p); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, p.Snapshot())
		return nil
	}
}

// imageLister is implemented by image sources that can enumerate their artwork.
type imageLister interface {
	All() []string
}

func (s *Server) handlePuzzleImages(w http.ResponseWriter, r *http.Request) {
	images := []string{}
	if l, ok := s.deps.Images.(imageLister); ok {
		images = l.All()
	}
	writeJSON(w, http.StatusOK, map[string][]string{"images": images})
}

// parseDifficulty reads req.Difficulty, falling back to def when empty.
func (req newPuzzleReq) parseDifficulty(def puzzle.Difficulty) (puzzle.Difficulty, error) {
	if req.Difficulty == "" {
		return def, nil
	}
	return puzzle.ParseDifficulty(req.Difficulty)
}

func (s *Server) handleNewPuzzle(w http.ResponseWriter, r *http.Request) {
	var req newPuzzleReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	d, err := req.parseDifficulty(puzzle.Medium)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := session.NewPuzzle(session.PuzzleConfig{
		Clock:     s.deps.Clock,
		Images:    s.deps.Images,
		Submitter: s.deps.Publisher,
	})
	if err := p.Start(req.PlayerName, d); err != nil {
		p.Close()
		writeSessionError(w, err)
		return
	}
	id := newSessionID()
	if err := s.puzzles.Save(r.Context(), id, p); err != nil {
		p.Close()
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusCreated, puzzleRes{ID: id, State: p.Snapshot()})
}

// handlePuzzleStart begins a new game on a session sitting at setup.
// Missing fields keep the session's current player and difficulty.
func (s *Server) handlePuzzleStart(w http.ResponseWriter, r *http.Request, p *session.Puzzle) error {
	var req newPuzzleReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return nil
	}
	cur := p.Snapshot()
	d, err := req.parseDifficulty(cur.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	if req.PlayerName == "" {
		req.PlayerName = cur.Player
	}
	if err := p.Start(req.PlayerName, d); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
	return nil
}

func (s *Server) handlePuzzleClick(w http.ResponseWriter, r *http.Request, p *session.Puzzle) error {
	var req indexReq
	if err := decode(r, &req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "index required")
		return nil
	}
	out, err := p.Click(*req.Index)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, clickRes{Outcome: out, State: p.Snapshot()})
	return nil
}

func (s *Server) handlePuzzleDifficulty(w http.ResponseWriter, r *http.Request, p *session.Puzzle) error {
	var req difficultyReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return nil
	}
	d, err := puzzle.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	if err := p.ChangeDifficulty(d); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
	return nil
}
