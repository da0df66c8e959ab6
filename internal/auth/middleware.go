package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "quizcraft.user"

// UserID returns the authenticated user, or "" when the request is
// anonymous.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// Required rejects requests without a valid token.
func (s *Signer) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": ErrMissingToken.Error()})
			return
		}
		claims, err := s.Verify(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": ErrInvalidToken.Error()})
			return
		}
		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}

// Optional attaches the user when a valid token is present and lets
// anonymous requests through.
func (s *Signer) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearer(c); tok != "" {
			if claims, err := s.Verify(tok); err == nil {
				c.Set(userIDKey, claims.Subject)
			}
		}
		c.Next()
	}
}
