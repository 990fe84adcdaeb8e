package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix   = "credential:id:"
	usernameKeyPrefix = "credential:username:"

	// 楽観ロックが競合した場合の再試行回数
	maxWatchRetries = 8
)

// RedisStore は認証情報を JSON ドキュメントとして Redis に保存します。
//
// credential:id:<id> にドキュメント本体、credential:username:<username> に
// 作成順の ID リストを保持し、ユーザー名検索はリストの先頭を参照します。
type RedisStore struct {
	rdb  *redis.Client
	opts Options
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client, opts Options) *RedisStore {
	return &RedisStore{
		rdb:  rdb,
		opts: opts,
	}
}

// Create は新しいレコードを保存し、その ID を返します。
func (s *RedisStore) Create(ctx context.Context, username, passwordHash string) (string, error) {
	record := &Record{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return "", err
	}

	indexKey := usernameKey(username)
	write := func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey(record.ID), payload, 0)
		pipe.RPush(ctx, indexKey, record.ID)
		return nil
	}

	if !s.opts.UniqueUsernames {
		if _, err := s.rdb.TxPipelined(ctx, write); err != nil {
			return "", fmt.Errorf("redis: save credential: %w", err)
		}
		return record.ID, nil
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			n, err := tx.LLen(ctx, indexKey).Result()
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrUsernameTaken
			}
			_, err = tx.TxPipelined(ctx, write)
			return err
		}, indexKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrUsernameTaken) {
			return "", err
		}
		if err != nil {
			return "", fmt.Errorf("redis: save credential: %w", err)
		}
		return record.ID, nil
	}
	return "", fmt.Errorf("redis: save credential: too many concurrent writers for username")
}

// FindByUsername はユーザー名に一致する最初のレコードを返します。
// 見つからない場合は nil, nil を返します。
func (s *RedisStore) FindByUsername(ctx context.Context, username string) (*Record, error) {
	id, err := s.rdb.LIndex(ctx, usernameKey(username), 0).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: lookup username index: %w", err)
	}

	data, err := s.rdb.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: load credential: %w", err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("redis: decode credential %s: %w", id, err)
	}
	return &record, nil
}

func recordKey(id string) string {
	return recordKeyPrefix + id
}

func usernameKey(username string) string {
	return usernameKeyPrefix + username
}
