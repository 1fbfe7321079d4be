// internal/httpserver/auth.go
//
// Moderator authentication.
// A single admin account is configured through the environment
// (username + bcrypt hash). Logging in yields an HS256 JWT, returned in the
// body and as an HttpOnly cookie; requireAuth accepts either form.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/shakegang/arcade/internal/scores"
)

// CookieName is the auth token cookie.
const CookieName = "arcade_token"

// AuthConfig configures moderator login. Moderation is disabled unless both
// Secret and AdminPasswordHash are set.
type AuthConfig struct {
	Secret            string
	Expires           time.Duration
	AdminUsername     string
	AdminPasswordHash string // bcrypt
	SecureCookie      bool
}

func (a AuthConfig) enabled() bool {
	return a.Secret != "" && a.AdminPasswordHash != ""
}

type loginReq struct{ Username, Password string }

// authUser is placed into request context by requireAuth.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

// handleLogin checks the admin credentials and issues a token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	a := s.deps.Auth
	if !a.enabled() ||
		!strings.EqualFold(strings.TrimSpace(body.Username), a.AdminUsername) ||
		!checkPassword(a.AdminPasswordHash, body.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	tok, exp, err := s.signJWT("admin", a.AdminUsername)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "expiresAt": exp.UTC()})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setAuthCookie(w, "", time.Time{})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleRemoveScore deletes a leaderboard entry and notifies subscribers.
func (s *Server) handleRemoveScore(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	rec, err := s.deps.Publisher.Remove(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, scores.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("remove score")
		writeError(w, http.StatusInternalServerError, "remove_failed")
		return
	}
	if me != nil {
		log.Info().Str("moderator", me.Username).Str("id", rec.ID).Str("player", rec.PlayerName).Msg("score removed")
	}
	writeJSON(w, http.StatusOK, rec)
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/username expiring after Auth.Expires
// (14 days when unset).
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	ttl := s.deps.Auth.Expires
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	now := time.Now()
	exp := now.Add(ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.deps.Auth.Secret))
	return ss, exp, err
}

// setAuthCookie writes the token cookie; an empty token deletes it.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := s.deps.Auth.SecureCookie
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	}
	if token == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.deps.Auth.enabled() {
				writeError(w, http.StatusUnauthorized, "Moderation disabled")
				return
			}
			tokenStr := bearerOrCookie(r)
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(s.deps.Auth.Secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			id, _ := claims["id"].(string)
			username, _ := claims["username"].(string)
			if id == "" || username == "" {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: id, Username: username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
