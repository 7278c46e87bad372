// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"killbill-service/internal/pkg/jwt"
	"killbill-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxAdminID   = "admin_id"
	ctxEmail     = "admin_email"
	ctxJTI       = "jti"
	ctxExpiresAt = "token_expires_at"
)

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*jwt.Claims, error)
}

// RevocationChecker reports logged-out tokens.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	verifier    TokenVerifier
	revocations RevocationChecker
}

// NewAuthMiddleware builds the middleware. revocations may be nil.
func NewAuthMiddleware(verifier TokenVerifier, revocations RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, revocations: revocations}
}

// Auth validates the bearer token and stores the admin in the context
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				response.Error(c, http.StatusServiceUnavailable, "failed to check session", err)
				return
			}
			if revoked {
				response.Error(c, http.StatusUnauthorized, "session has been logged out", nil)
				return
			}
		}

		c.Set(ctxAdminID, claims.AdminID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ctxExpiresAt, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
