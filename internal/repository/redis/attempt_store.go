package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/domain"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
)

const (
	fieldAttempts      = "attempts"
	fieldLastAttemptAt = "last_attempt_at"
	fieldLockoutUntil  = "lockout_until"
)

// AttemptStoreConfig configures key namespacing and retention for the
// Redis-backed store.
type AttemptStoreConfig struct {
	KeyPrefix string
	// TTL caps how long an untouched record survives in Redis. It should be
	// at least the janitor retention horizon; Redis expiry then acts as a
	// second line of defense behind the janitor.
	TTL time.Duration
}

// AttemptStore persists attempt records in Redis hashes, one hash per key.
// Records that fail to decode are reported as absent so a corrupt entry
// self-heals on the next write instead of wedging the limiter.
type AttemptStore struct {
	client *redis.Client
	cfg    AttemptStoreConfig
}

// NewAttemptStore constructs a store using the provided Redis client.
func NewAttemptStore(client *redis.Client, cfg AttemptStoreConfig) *AttemptStore {
	return &AttemptStore{client: client, cfg: cfg}
}

// Get loads and decodes the record for the key.
func (s *AttemptStore) Get(ctx context.Context, key string) (domain.AttemptRecord, bool, error) {
	values, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return domain.AttemptRecord{}, false, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(values) == 0 {
		return domain.AttemptRecord{}, false, nil
	}

	record, ok := decodeRecord(values)
	if !ok {
		return domain.AttemptRecord{}, false, nil
	}

	return record, true, nil
}

// Put writes the record back and refreshes the retention TTL.
func (s *AttemptStore) Put(ctx context.Context, key string, record domain.AttemptRecord) error {
	storageKey := s.key(key)

	fields := map[string]any{
		fieldAttempts:      record.Attempts,
		fieldLastAttemptAt: record.LastAttemptAt.UnixNano(),
	}
	if record.LockoutUntil != nil {
		fields[fieldLockoutUntil] = record.LockoutUntil.UnixNano()
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, storageKey)
	pipe.HSet(ctx, storageKey, fields)
	if s.cfg.TTL > 0 {
		pipe.Expire(ctx, storageKey, s.cfg.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}

	return nil
}

// Delete removes the record for the key.
func (s *AttemptStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Keys scans for all record keys under the configured prefix, with the
// prefix stripped so callers see the same keys they stored.
func (s *AttemptStore) Keys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)

	pattern := s.key("*")
	prefixLen := len(s.key(""))

	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}

		for _, k := range batch {
			keys = append(keys, k[prefixLen:])
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

func (s *AttemptStore) key(key string) string {
	if s.cfg.KeyPrefix == "" {
		return key
	}
	return s.cfg.KeyPrefix + ":" + key
}

func decodeRecord(values map[string]string) (domain.AttemptRecord, bool) {
	attempts, err := strconv.Atoi(values[fieldAttempts])
	if err != nil || attempts < 0 {
		return domain.AttemptRecord{}, false
	}

	lastNanos, err := strconv.ParseInt(values[fieldLastAttemptAt], 10, 64)
	if err != nil {
		return domain.AttemptRecord{}, false
	}

	record := domain.AttemptRecord{
		Attempts:      attempts,
		LastAttemptAt: time.Unix(0, lastNanos),
	}

	if raw, present := values[fieldLockoutUntil]; present {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.AttemptRecord{}, false
		}
		until := time.Unix(0, nanos)
		record.LockoutUntil = &until
	}

	return record, true
}

var _ port.AttemptStore = (*AttemptStore)(nil)
