package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ChangeChannel is the Redis pub/sub channel every RedisMedium announces its
// writes on.
const ChangeChannel = "jobdeck:storage"

type changeEvent struct {
	Origin string `json:"origin"`
	Key    string `json:"key"`
}

// RedisMedium stores collections as plain Redis strings under a key prefix
// and announces each write on ChangeChannel, tagged with a per-instance
// origin so an instance ignores its own announcements.
type RedisMedium struct {
	rdb    *redis.Client
	prefix string
	origin string

	mu     sync.Mutex
	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// NewRedisMedium takes ownership of rdb; Close closes it.
func NewRedisMedium(rdb *redis.Client, prefix string) *RedisMedium {
	return &RedisMedium{rdb: rdb, prefix: prefix, origin: uuid.NewString()}
}

func (m *RedisMedium) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := m.rdb.Get(ctx, m.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (m *RedisMedium) Set(ctx context.Context, key string, payload []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := m.rdb.Set(ctx, m.prefix+key, payload, 0).Err(); err != nil {
		return err
	}
	m.announce(ctx, key)
	return nil
}

func (m *RedisMedium) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := m.rdb.Del(ctx, m.prefix+key).Err(); err != nil {
		return err
	}
	m.announce(ctx, key)
	return nil
}

// announce is best effort; the write itself already succeeded.
func (m *RedisMedium) announce(ctx context.Context, key string) {
	event, _ := json.Marshal(changeEvent{Origin: m.origin, Key: key})
	if err := m.rdb.Publish(ctx, ChangeChannel, event).Err(); err != nil {
		slog.Warn("publish storage change failed", "key", key, "err", err)
	}
}

// Watch subscribes to ChangeChannel and forwards keys announced by other
// instances.
func (m *RedisMedium) Watch(ctx context.Context, notify func(key string)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pubsub != nil {
		return nil
	}

	pubsub := m.rdb.Subscribe(ctx, ChangeChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", ChangeChannel, err)
	}
	m.pubsub = pubsub

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event changeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Warn("malformed storage change", "payload", msg.Payload, "err", err)
					continue
				}
				if event.Origin == m.origin || validateKey(event.Key) != nil {
					continue
				}
				notify(event.Key)
			}
		}
	}()
	return nil
}

func (m *RedisMedium) Close() error {
	m.mu.Lock()
	pubsub := m.pubsub
	m.pubsub = nil
	m.mu.Unlock()

	if pubsub != nil {
		pubsub.Close()
		m.wg.Wait()
	}
	return m.rdb.Close()
}
