package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shakegang/arcade/assets"
	"github.com/shakegang/arcade/internal/config"
	"github.com/shakegang/arcade/internal/httpserver"
	"github.com/shakegang/arcade/internal/leaderboard"
	"github.com/shakegang/arcade/internal/questions"
	"github.com/shakegang/arcade/internal/scores"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bank, err := questions.Load(cfg.QuestionsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load question bank")
	}
	for c, n := range bank.Stats() {
		log.Debug().Str("category", string(c)).Int("questions", n).Msg("question bank")
	}
	images, err := assets.DefaultCatalogue()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzle images")
	}

	st, err := scores.Open(ctx, cfg.ScoreStore, cfg.ScoreDSN())
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.ScoreStore).Msg("failed to open score store")
	}

	var opts []leaderboard.Option
	if cfg.RedisAddr != "" {
		n, err := leaderboard.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		opts = append(opts, leaderboard.WithNotifier(n))
		log.Info().Str("addr", cfg.RedisAddr).Msg("leaderboard fan-out via redis")
	}
	pub := leaderboard.New(st, opts...)

	srv := httpserver.New(httpserver.Deps{
		Publisher:        pub,
		Questions:        bank,
		Images:           images,
		ClientOrigin:     cfg.ClientOrigin,
		LeaderboardLimit: cfg.LeaderboardLimit,
		Auth: httpserver.AuthConfig{
			Secret:            cfg.JWTSecret,
			Expires:           cfg.JWTExpires,
			AdminUsername:     cfg.AdminUsername,
			AdminPasswordHash: cfg.AdminPasswordHash,
			SecureCookie:      cfg.Production,
		},
	})
	go srv.PruneLoop(ctx, cfg.SessionIdle)

	log.Info().Str("port", cfg.Port).Str("store", cfg.ScoreStore).Msg("starting arcade server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server exited")
	}

	if err := pub.Close(); err != nil {
		log.Warn().Err(err).Msg("close leaderboard")
	}
	if err := st.Close(); err != nil {
		log.Warn().Err(err).Msg("close score store")
	}
}
