package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/auth"
	"github.com/gin-gonic/gin"
)

// Authenticator validates bearer access tokens.
type Authenticator interface {
	Authenticate(accessToken string) (*domain.Claims, error)
}

// Auth requires a valid "Authorization: Bearer <access token>" header and
// records the token subject as the request's actor.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  "MISSING_TOKEN",
			})
			return
		}

		claims, err := a.Authenticate(strings.TrimSpace(token))
		if err != nil {
			code := "INVALID_TOKEN"
			if errors.Is(err, auth.ErrTokenExpired) {
				code = "TOKEN_EXPIRED"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
				"code":  code,
			})
			return
		}

		c.Set(ctxActor, claims.Subject)
		c.Next()
	}
}
