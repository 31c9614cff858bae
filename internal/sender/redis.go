package sender

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"statreporter/internal/config"
	"statreporter/internal/logger"
	"statreporter/internal/network"
	"statreporter/internal/snapshot"
)

// RedisSender stores the latest snapshot of each host under
// KeyPrefix+hostname. Keys expire after TTL so stale hosts drop out.
type RedisSender struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	mu     sync.RWMutex
	closed bool
}

// NewRedisSender creates a Redis sender. The connection is established
// lazily on the first Send.
func NewRedisSender(cfg config.RedisConfig, socksCfg config.SOCKSConfig) (*RedisSender, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis sender requires an Address")
	}

	opts := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if socksCfg.Enabled() {
		opts.Dialer = network.DialContextFunc(socksCfg.Host, socksCfg.Port)
	}

	log := logger.WithComponent("redis-sender")
	log.Info().
		Str("address", cfg.Address).
		Int("db", cfg.DB).
		Str("key_prefix", cfg.KeyPrefix).
		Dur("ttl", cfg.TTL).
		Msg("RedisSender initialized")

	return &RedisSender{
		client: redis.NewClient(opts),
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
	}, nil
}

// Key returns the Redis key a snapshot is stored under.
func (s *RedisSender) Key(snap *snapshot.Snapshot) string {
	return s.prefix + snap.Hostname()
}

// Send overwrites the host's key with snap.
func (s *RedisSender) Send(ctx context.Context, snap *snapshot.Snapshot) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("sender is closed")
	}

	data, err := encode(snap, false)
	if err != nil {
		return err
	}

	key := s.Key(snap)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("Redis SET %s failed: %w", key, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
