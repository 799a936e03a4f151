package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"archive-service/internal/auth"
	"archive-service/internal/models"
)

// PrincipalContextKey holds the resolved principal in the gin context.
const PrincipalContextKey = "principal"

// SessionAuth resolves the request's session cookies to a principal and
// rejects unauthenticated callers with 401. Callers never see an empty
// 200 in place of an auth failure.
func SessionAuth(resolver *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := resolver.ResolveRequest(c.Request, time.Now())
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}

		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// PrincipalFromContext retrieves the principal set by SessionAuth.
func PrincipalFromContext(c *gin.Context) (models.Principal, bool) {
	val, ok := c.Get(PrincipalContextKey)
	if !ok {
		return models.Principal{}, false
	}
	principal, ok := val.(models.Principal)
	return principal, ok
}
