package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/loginapp/internal/credentials"
)

// CredentialStore は認証情報の保存先です。
type CredentialStore interface {
	Create(ctx context.Context, username, passwordHash string) (string, error)
	FindByUsername(ctx context.Context, username string) (*credentials.Record, error)
}

// Service はサインアップとログインを担います。
type Service struct {
	store  CredentialStore
	hasher *PasswordHasher
	tokens *TokenIssuer
	logger *log.Logger

	// 未登録ユーザーでも照合コストを揃えるためのダミーハッシュ
	dummyHash string
}

// NewService は Service を作成します。
func NewService(store CredentialStore, hasher *PasswordHasher, tokens *TokenIssuer, logger *log.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if hasher == nil {
		return nil, errors.New("hasher is nil")
	}
	if tokens == nil {
		return nil, errors.New("tokens is nil")
	}
	if logger == nil {
		logger = log.Default()
	}
	dummy, err := hasher.Hash("loginapp-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &Service{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Signup はパスワードをハッシュ化して新しいレコードを保存し、その ID を返します。
func (s *Service) Signup(ctx context.Context, username, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return "", err
		}
		return "", fmt.Errorf("hash password: %w", err)
	}

	id, err := s.store.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, credentials.ErrUsernameTaken) {
			return "", ErrUsernameTaken
		}
		s.logger.Printf("signup: credential store create failed: %v", err)
		return "", fmt.Errorf("create credential: %w", err)
	}
	return id, nil
}

// Login は認証情報を照合し、成功した場合は署名済みトークンを返します。
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	record, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Printf("login: credential store lookup failed: %v", err)
		return "", fmt.Errorf("find credential: %w", err)
	}
	if record == nil {
		s.hasher.Verify(password, s.dummyHash)
		return "", ErrUserNotFound
	}

	if !s.hasher.Verify(password, record.PasswordHash) {
		return "", ErrInvalidPassword
	}

	token, err := s.tokens.Issue(record.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// VerifyToken はトークンを検証し、レコード ID を返します。
func (s *Service) VerifyToken(token string) (string, error) {
	return s.tokens.Verify(token)
}
