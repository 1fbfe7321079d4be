// internal/httpserver/routes_leaderboard.go
//
// Leaderboard endpoints.
//   GET /leaderboard/{game}/{key}?limit=N        → top entries as JSON
//   GET /leaderboard/{game}/{key}/live?limit=N   → WebSocket, one frame per delivery
//
// {game} is "puzzle" or "trivia"; {key} is the difficulty or category.
// Each live frame carries the complete top-N list, so a client never has to
// merge updates.

package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/shakegang/arcade/internal/puzzle"
	"github.com/shakegang/arcade/internal/scores"
	"github.com/shakegang/arcade/internal/trivia"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	maxLimit   = 100
)

// boardFrame is the body of a snapshot response and of every live frame.
type boardFrame struct {
	Game    scores.Game     `json:"game"`
	Key     string          `json:"key"`
	Entries []scores.Record `json:"entries"`
}

// filterFrom validates the path and ?limit= of a leaderboard request.
func (s *Server) filterFrom(r *http.Request) (scores.Filter, error) {
	g, err := scores.ParseGame(chi.URLParam(r, "game"))
	if err != nil {
		return scores.Filter{}, err
	}
	key := chi.URLParam(r, "key")
	switch g {
	case scores.GamePuzzle:
		if _, err := puzzle.ParseDifficulty(key); err != nil {
			return scores.Filter{}, err
		}
	case scores.GameTrivia:
		if _, err := trivia.ParseCategory(key); err != nil {
			return scores.Filter{}, err
		}
	}
	limit := s.deps.LeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			return scores.Filter{}, fmt.Errorf("limit must be 1-%d", maxLimit)
		}
		limit = n
	}
	return scores.Filter{Partition: scores.Partition{Game: g, Key: key}, Limit: limit}, nil
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	f, err := s.filterFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := s.deps.Publisher.Query(r.Context(), f)
	if err != nil {
		log.Error().Err(err).Str("partition", f.String()).Msg("leaderboard query")
		writeError(w, http.StatusInternalServerError, "query_failed")
		return
	}
	writeJSON(w, http.StatusOK, boardFrame{Game: f.Game, Key: f.Key, Entries: recs})
}

func (s *Server) upgrader() websocket.Upgrader {
	origin := s.deps.ClientOrigin
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || origin == "" || o == origin
		},
	}
}

func (s *Server) handleLeaderboardLive(w http.ResponseWriter, r *http.Request) {
	f, err := s.filterFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade")
		return
	}

	c := &liveClient{
		conn: conn,
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}
	unsubscribe := s.deps.Publisher.Subscribe(f, func(recs []scores.Record) {
		b, err := json.Marshal(boardFrame{Game: f.Game, Key: f.Key, Entries: recs})
		if err != nil {
			return
		}
		select {
		case c.send <- b:
		case <-c.done:
		}
	})
	go c.writePump()
	c.readPump()
	unsubscribe()
}

// liveClient streams leaderboard frames to one WebSocket.
type liveClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// readPump discards client messages and returns when the peer goes away.
func (c *liveClient) readPump() {
	defer func() {
		close(c.done)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Msg("leaderboard ws write")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
