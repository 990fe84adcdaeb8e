package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore はプロセス内に認証情報を保持します。開発とテスト用です。
type MemoryStore struct {
	opts Options

	mu         sync.RWMutex
	records    map[string]*Record
	byUsername map[string][]string
}

// NewMemoryStore は MemoryStore を作成します。
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:       opts,
		records:    make(map[string]*Record),
		byUsername: make(map[string][]string),
	}
}

// Create は新しいレコードを保存し、その ID を返します。
func (s *MemoryStore) Create(ctx context.Context, username, passwordHash string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.UniqueUsernames && len(s.byUsername[username]) > 0 {
		return "", ErrUsernameTaken
	}

	record := &Record{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.records[record.ID] = record
	s.byUsername[username] = append(s.byUsername[username], record.ID)
	return record.ID, nil
}

// FindByUsername はユーザー名に一致する最初のレコードのコピーを返します。
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUsername[username]
	if len(ids) == 0 {
		return nil, nil
	}
	record := *s.records[ids[0]]
	return &record, nil
}
