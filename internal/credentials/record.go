// Package credentials はユーザー名とパスワードハッシュの組を永続化します。
package credentials

import (
	"errors"
	"time"
)

// ErrUsernameTaken はユーザー名の重複を拒否するモードで既存ユーザー名が指定された場合に返ります。
var ErrUsernameTaken = errors.New("credentials: username already exists")

// Record は保存された認証情報です。平文のパスワードは保持しません。
type Record struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Options はストア共通の挙動設定です。
type Options struct {
	// UniqueUsernames が true の場合、Create は既存ユーザー名を ErrUsernameTaken で拒否します。
	// false の場合は同じユーザー名のレコードが複数作られ、検索では最初に作られたものが返ります。
	UniqueUsernames bool
}
