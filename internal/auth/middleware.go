package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const principalKey = "authPrincipal"

// Middleware extracts the bearer token, resolves it to a principal, and
// stores the principal on the gin context.
//
// If any step fails (missing token, invalid token, unknown principal), the
// request proceeds without a principal. Handlers requiring one call
// RequirePrincipal. This design allows:
// - Public endpoints (no auth required)
// - Protected endpoints (check for principal)
// - Optional auth endpoints (use principal if available)
func Middleware(authService *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			slog.Debug("no authorization header provided")
			c.Next()
			return
		}

		token, err := ExtractToken(authHeader)
		if err != nil {
			slog.Warn("failed to extract bearer token",
				"error", err,
				"auth_header_length", len(authHeader),
			)
			c.Next()
			return
		}

		principal, err := authService.GetPrincipal(token)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				slog.Warn("failed to resolve principal", "error", err)
			}
			c.Next()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the request's principal, if the middleware resolved
// one.
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*Principal)
	return principal, ok && principal != nil
}

// RequirePrincipal returns the request's principal or aborts with 401.
func RequirePrincipal(c *gin.Context) (*Principal, bool) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	return principal, true
}
