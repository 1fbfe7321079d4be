// internal/config/config.go
//
// Process configuration loaded from the environment (and a .env file when
// present).
//
// Environment variables:
//   PORT=5175                     HTTP listen port
//   LOG_LEVEL=info                zerolog level
//   APP_ENV=development           "production" marks auth cookies Secure
//   CLIENT_ORIGIN=http://localhost:5173
//   SCORE_STORE=sqlite            memory | sqlite | postgres
//   SQLITE_PATH=./data/scores.db
//   DATABASE_URL=postgres://...   required for SCORE_STORE=postgres
//   REDIS_ADDR / REDIS_PASSWORD / REDIS_DB
//                                 enables cross-process leaderboard fan-out
//   JWT_SECRET / JWT_EXPIRES_DAYS moderation tokens; JWT_SECRET is required
//                                 when APP_ENV=production
//   ADMIN_USERNAME / ADMIN_PASSWORD_HASH (bcrypt)
//   QUESTIONS_FILE                overrides the embedded trivia bank
//   LEADERBOARD_LIMIT=10
//   SESSION_IDLE_MINUTES=30       idle sessions are closed after this long

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// devJWTSecret signs moderation tokens outside production when JWT_SECRET is
// unset.
const devJWTSecret = "dev_secret_change_me"

// Config is the resolved process configuration.
type Config struct {
	Port         string
	LogLevel     string
	Production   bool
	ClientOrigin string

	ScoreStore  string
	SQLitePath  string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret         string
	JWTExpires        time.Duration
	AdminUsername     string
	AdminPasswordHash string

	QuestionsFile    string
	LeaderboardLimit int
	SessionIdle      time.Duration
}

// Load reads .env (if any) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv resolves Config from the current environment only.
func FromEnv() (Config, error) {
	c := Config{
		Port:              getEnv("PORT", "5175"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Production:        os.Getenv("APP_ENV") == "production",
		ClientOrigin:      getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		ScoreStore:        getEnv("SCORE_STORE", "sqlite"),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/scores.db"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		QuestionsFile:     os.Getenv("QUESTIONS_FILE"),
	}

	var err error
	if c.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return c, err
	}
	days, err := envInt("JWT_EXPIRES_DAYS", 14)
	if err != nil {
		return c, err
	}
	c.JWTExpires = time.Duration(days) * 24 * time.Hour
	if c.LeaderboardLimit, err = envInt("LEADERBOARD_LIMIT", 10); err != nil {
		return c, err
	}
	mins, err := envInt("SESSION_IDLE_MINUTES", 30)
	if err != nil {
		return c, err
	}
	c.SessionIdle = time.Duration(mins) * time.Minute

	switch c.ScoreStore {
	case "memory", "sqlite", "postgres":
	default:
		return c, fmt.Errorf("config: SCORE_STORE must be memory, sqlite or postgres, got %q", c.ScoreStore)
	}
	if c.ScoreStore == "postgres" && c.DatabaseURL == "" {
		return c, fmt.Errorf("config: DATABASE_URL is required for SCORE_STORE=postgres")
	}
	if c.JWTSecret == "" {
		if c.Production {
			return c, fmt.Errorf("config: JWT_SECRET is required when APP_ENV=production")
		}
		c.JWTSecret = devJWTSecret
	}
	return c, nil
}

// ScoreDSN returns the connection string for the configured score store.
func (c Config) ScoreDSN() string {
	if c.ScoreStore == "postgres" {
		return c.DatabaseURL
	}
	return c.SQLitePath
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", k, err)
	}
	return n, nil
}
