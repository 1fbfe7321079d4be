// Package metrics holds the Prometheus collectors shared by the game server.
// Collectors register with the default registry on init and are exposed at
// /metrics by the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScoresSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scores_submitted_total",
			Help: "Score records persisted, by game",
		},
		[]string{"game"},
	)
	ScoreSubmitFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_submit_failures_total",
			Help: "Score submissions rejected or failed to persist, by game",
		},
		[]string{"game"},
	)
	SessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_sessions_started_total",
			Help: "Game sessions that reached play, by game",
		},
		[]string{"game"},
	)
	LeaderboardSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaderboard_subscriptions",
			Help: "Active leaderboard subscriptions",
		},
	)
)

func init() {
	prometheus.MustRegister(ScoresSubmitted)
	prometheus.MustRegister(ScoreSubmitFailures)
	prometheus.MustRegister(SessionsStarted)
	prometheus.MustRegister(LeaderboardSubscriptions)
}
