package storage

import (
	"context"
	"fmt"
	"time"

	"codebrief/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps run-level delivery state: a marker per delivered day so a
// restarted scheduled process does not double-post, and the rendered digest
// text for a week as an archive. It never stores collected items.
type RedisStore struct {
	rdb *redis.Client
}

// NewClient creates a Redis client from configuration.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func deliveredKey(date string) string {
	return fmt.Sprintf("digest:delivered:%s", date)
}

func archiveKey(date string) string {
	return fmt.Sprintf("digest:archive:%s", date)
}

// IsDelivered reports whether a digest was already delivered for the date
// (YYYY-MM-DD).
func (s *RedisStore) IsDelivered(ctx context.Context, date string) (bool, error) {
	res, err := s.rdb.Get(ctx, deliveredKey(date)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res == "1", nil
}

// MarkDelivered records a successful delivery for the date.
func (s *RedisStore) MarkDelivered(ctx context.Context, date string) error {
	return s.rdb.Set(ctx, deliveredKey(date), "1", 30*24*time.Hour).Err()
}

// ArchiveDigest keeps the rendered message around for inspection.
func (s *RedisStore) ArchiveDigest(ctx context.Context, date, text string) error {
	return s.rdb.Set(ctx, archiveKey(date), text, 7*24*time.Hour).Err()
}

// GetArchivedDigest returns the rendered message for the date, or empty if
// none is stored.
func (s *RedisStore) GetArchivedDigest(ctx context.Context, date string) (string, error) {
	res, err := s.rdb.Get(ctx, archiveKey(date)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return res, nil
}
