package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserIDKey は、検証済みトークンのレコード ID をハンドラー間で共有するためのキーです。
const ContextUserIDKey = "auth.userID"

// RequireToken は Authorization: Bearer ヘッダーのトークンを検証するミドルウェアを返します。
func (h *Handler) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondWithError(c, ErrInvalidToken)
			c.Abort()
			return
		}

		userID, err := h.auth.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			respondWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}
