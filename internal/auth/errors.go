// Package auth はサインアップ、ログイン、トークン発行などの認証機能を提供します。
package auth

// Error はクライアントに返すエラーコードとメッセージを保持します。
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrUserNotFound     = &Error{Code: "USER_NOT_FOUND", Message: "User not found"}
	ErrInvalidPassword  = &Error{Code: "INVALID_PASSWORD", Message: "Invalid password"}
	ErrUsernameTaken    = &Error{Code: "USERNAME_TAKEN", Message: "Username already exists"}
	ErrPasswordTooLong  = &Error{Code: "PASSWORD_TOO_LONG", Message: "Password is too long"}
	ErrInvalidToken     = &Error{Code: "INVALID_TOKEN", Message: "Invalid token"}
	ErrTokenExpired     = &Error{Code: "TOKEN_EXPIRED", Message: "Token expired"}
	errInvalidInput     = &Error{Code: "INVALID_INPUT", Message: "username and password are required"}
	errUnifiedLoginFail = &Error{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password"}
)
