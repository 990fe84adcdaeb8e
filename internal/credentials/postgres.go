package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS credentials (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS credentials_username_idx ON credentials (username, created_at)`,
}

// PostgresStore は認証情報を PostgreSQL の credentials テーブルに保存します。
type PostgresStore struct {
	pool *pgxpool.Pool
	opts Options
}

// NewPostgresStore は PostgresStore を作成します。
func NewPostgresStore(pool *pgxpool.Pool, opts Options) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		opts: opts,
	}
}

// EnsureSchema はテーブルとユーザー名インデックスを作成します（既に存在する場合は何もしません）。
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}
	return nil
}

// Create は新しいレコードを保存し、その ID を返します。
func (s *PostgresStore) Create(ctx context.Context, username, passwordHash string) (string, error) {
	id := uuid.NewString()
	createdAt := time.Now().UTC()

	if !s.opts.UniqueUsernames {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO credentials (id, username, password_hash, created_at)
			 VALUES ($1, $2, $3, $4)`,
			id, username, passwordHash, createdAt)
		if err != nil {
			return "", fmt.Errorf("postgres: insert credential: %w", err)
		}
		return id, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// 同じユーザー名での同時サインアップを直列化する
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, username); err != nil {
		return "", fmt.Errorf("postgres: lock username: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO credentials (id, username, password_hash, created_at)
		 SELECT $1::uuid, $2::text, $3::text, $4::timestamptz
		 WHERE NOT EXISTS (SELECT 1 FROM credentials WHERE username = $2::text)`,
		id, username, passwordHash, createdAt)
	if err != nil {
		return "", fmt.Errorf("postgres: insert credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", ErrUsernameTaken
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("postgres: commit: %w", err)
	}
	return id, nil
}

// FindByUsername はユーザー名に一致する最初のレコードを返します。
// 見つからない場合は nil, nil を返します。
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*Record, error) {
	var record Record
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, username, password_hash, created_at
		 FROM credentials
		 WHERE username = $1
		 ORDER BY created_at, id
		 LIMIT 1`,
		username).Scan(&record.ID, &record.Username, &record.PasswordHash, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: find credential: %w", err)
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}
