package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/shakegang/arcade/internal/scores"
)

// Notifier carries "partition changed" events between server processes that
// share one score database.
type Notifier interface {
	// Publish announces a local write to other processes.
	Publish(ctx context.Context, p scores.Partition) error
	// Listen calls deliver for every remote write until ctx is done.
	Listen(ctx context.Context, deliver func(scores.Partition)) error
	Close() error
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, scores.Partition) error { return nil }

func (noopNotifier) Listen(ctx context.Context, _ func(scores.Partition)) error {
	<-ctx.Done()
	return nil
}

func (noopNotifier) Close() error { return nil }

// DefaultChannel is the Redis pub/sub channel used for leaderboard events.
const DefaultChannel = "leaderboard:updates"

type redisEvent struct {
	Origin    string           `json:"origin"`
	Partition scores.Partition `json:"partition"`
}

// RedisNotifier fans events out over Redis pub/sub. Events published by this
// instance are ignored on receipt; local subscribers were already notified.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	origin  string
}

// NewRedisNotifier wraps an existing client.
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{client: client, channel: channel, origin: uuid.NewString()}
}

// DialRedis connects and pings before returning a notifier.
func DialRedis(ctx context.Context, addr, password string, db int) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisNotifier(client, DefaultChannel), nil
}

func (n *RedisNotifier) Publish(ctx context.Context, p scores.Partition) error {
	b, err := json.Marshal(redisEvent{Origin: n.origin, Partition: p})
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.channel, b).Err()
}

func (n *RedisNotifier) Listen(ctx context.Context, deliver func(scores.Partition)) error {
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", n.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev redisEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Msg("bad leaderboard event")
				continue
			}
			if ev.Origin == n.origin {
				continue
			}
			deliver(ev.Partition)
		}
	}
}

func (n *RedisNotifier) Close() error { return n.client.Close() }
