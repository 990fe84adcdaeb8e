package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Authenticator はハンドラーが利用する認証処理です。*Service が実装します。
type Authenticator interface {
	Signup(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	VerifyToken(token string) (string, error)
}

// HandlerOptions はレスポンスの挙動を切り替える設定です。
type HandlerOptions struct {
	// UnifyLoginErrors が true の場合、未登録ユーザーとパスワード不一致を同じレスポンスで返します。
	UnifyLoginErrors bool
}

// Handler は認証系エンドポイントの gin ハンドラーをまとめた構造体です。
type Handler struct {
	auth Authenticator
	opts HandlerOptions
}

// NewHandler は Handler を作成します。
func NewHandler(auth Authenticator, opts HandlerOptions) *Handler {
	return &Handler{
		auth: auth,
		opts: opts,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup は POST /signup のハンドラーです。
func (h *Handler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, errInvalidInput)
		return
	}

	if _, err := h.auth.Signup(c.Request.Context(), req.Username, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User created"})
}

// Login は POST /login のハンドラーです。
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, errInvalidInput)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if h.opts.UnifyLoginErrors && (errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidPassword)) {
			err = errUnifiedLoginFail
		}
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me は GET /api/me のハンドラーです。RequireToken の後ろで使います。
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"id": c.GetString(ContextUserIDKey)})
}

func respondWithError(c *gin.Context, err error) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		c.JSON(statusFor(apiErr), gin.H{
			"code":  apiErr.Code,
			"error": apiErr.Message,
		})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusRequestTimeout, gin.H{
			"code":  "REQUEST_CANCELED",
			"error": "Request canceled",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "INTERNAL_ERROR",
			"error": "Internal server error",
		})
	}
}

func statusFor(err *Error) int {
	switch err {
	case ErrUsernameTaken:
		return http.StatusConflict
	case ErrInvalidToken, ErrTokenExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
