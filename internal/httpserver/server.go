// internal/httpserver/server.go
//
// HTTP server wiring for the arcade backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Puzzle session endpoints: mounted under /puzzle.
//   - Trivia session endpoints: mounted under /trivia.
//   - Leaderboards: JSON snapshot and a live WebSocket stream under /leaderboard.
//   - Moderation: /auth/login and the JWT-gated DELETE /scores/{id}.
//
// Notes:
//   - Sessions live in process memory and are pruned when idle.
//   - The WebSocket route is mounted outside the request timeout.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/shakegang/arcade/assets"
	"github.com/shakegang/arcade/internal/clock"
	"github.com/shakegang/arcade/internal/leaderboard"
	"github.com/shakegang/arcade/internal/scores"
	"github.com/shakegang/arcade/internal/session"
	"github.com/shakegang/arcade/internal/store"
	"github.com/shakegang/arcade/internal/trivia"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Publisher *leaderboard.Publisher
	Questions session.QuestionSource
	Images    assets.ImageSource

	// Clock drives session timers; nil means the wall clock.
	Clock clock.Scheduler

	ClientOrigin     string
	LeaderboardLimit int
	Auth             AuthConfig
}

// Server bundles the router and the live session registries.
type Server struct {
	r       *chi.Mux
	deps    Deps
	puzzles store.Store[*session.Puzzle]
	trivias store.Store[*session.Trivia]
	httpSrv *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.LeaderboardLimit <= 0 {
		d.LeaderboardLimit = scores.DefaultLimit
	}
	s := &Server{
		r:       chi.NewRouter(),
		deps:    d,
		puzzles: store.NewMemoryStore[*session.Puzzle](),
		trivias: store.NewMemoryStore[*session.Trivia](),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)      // add X-Request-ID
	s.r.Use(chimw.RealIP)         // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)      // recover from panics
	s.r.Use(jsonContentType)      // default JSON responses
	s.r.Use(cors(d.ClientOrigin)) // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"arcade","endpoints":["/health","/metrics","/puzzle/*","/trivia/*","/leaderboard/*","/auth/login"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Handle("/metrics", promhttp.Handler())

	// Live leaderboards hold the connection open; no request timeout.
	s.r.Get("/leaderboard/{game}/{key}/live", s.handleLeaderboardLive)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		r.Route("/puzzle", s.mountPuzzle)
		r.Route("/trivia", s.mountTrivia)
		r.Get("/leaderboard/{game}/{key}", s.handleLeaderboard)

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.With(s.requireAuth()).Delete("/scores/{id}", s.handleRemoveScore)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully and closes every live session.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- s.httpSrv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.httpSrv.Shutdown(shutCtx)
	s.closeSessions()
	return err
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// PruneLoop closes sessions idle for longer than idle, checking every
// minute until ctx is cancelled.
func (s *Server) PruneLoop(ctx context.Context, idle time.Duration) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.prune(ctx, idle)
		}
	}
}

func (s *Server) prune(ctx context.Context, idle time.Duration) {
	n := s.puzzles.Prune(ctx, idle) + s.trivias.Prune(ctx, idle)
	if n > 0 {
		log.Info().Int("sessions", n).Msg("pruned idle sessions")
	}
}

func (s *Server) closeSessions() {
	s.prune(context.Background(), -time.Hour)
}

func newSessionID() string { return uuid.NewString() }

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSessionError maps session and engine errors to status codes.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusGone, "session_closed")
	case errors.Is(err, session.ErrNotPlaying),
		errors.Is(err, session.ErrWrongPhase),
		errors.Is(err, trivia.ErrWrongPhase):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrBadIndex),
		errors.Is(err, trivia.ErrNameRequired),
		errors.Is(err, trivia.ErrNameTooLong),
		errors.Is(err, trivia.ErrUnknownCategory),
		errors.Is(err, trivia.ErrUnknownMode),
		errors.Is(err, trivia.ErrNoQuestions):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("session request failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
