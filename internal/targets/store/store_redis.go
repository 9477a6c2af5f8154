package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"pcps/internal/targets/models"
	"pcps/pkg/platform/sentinel"
)

var (
	redisOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pcps_targets_redis_duration_seconds",
		Help:    "Latency of target registry Redis operations",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"op"})
)

// maxUpdateAttempts bounds optimistic retries when another writer races us.
const maxUpdateAttempts = 16

// RedisStore keeps the list as one JSON array under a single key, so a
// snapshot is a single GET and never observes a half-applied edit.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) ([]models.Target, error) {
	start := time.Now()
	defer func() { redisOpDuration.WithLabelValues("load").Observe(time.Since(start).Seconds()) }()

	return s.read(ctx, s.client)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) read(ctx context.Context, c getter) ([]models.Target, error) {
	raw, err := c.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w: %w", s.key, sentinel.ErrUnavailable, err)
	}
	var list []models.Target
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	if list == nil {
		list = []models.Target{}
	}
	return list, nil
}

// Update runs fn inside WATCH/MULTI and retries when the key changed underneath.
func (s *RedisStore) Update(ctx context.Context, fn UpdateFunc) ([]models.Target, error) {
	start := time.Now()
	defer func() { redisOpDuration.WithLabelValues("update").Observe(time.Since(start).Seconds()) }()

	var result []models.Target
	txf := func(tx *redis.Tx) error {
		current, err := s.read(ctx, tx)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			next = []models.Target{}
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode targets: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, raw, 0)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("update %s: too many concurrent writers: %w", s.key, sentinel.ErrConflict)
}
