package httpserver

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/adoption-api/internal/identity"
	apierrors "github.com/pawhaven/adoption-api/internal/shared/errors"
)

const principalContextKey = "auth.principal"

// AuthMiddleware resolves bearer tokens into principals via the identity
// provider port.
type AuthMiddleware struct {
	verifier  identity.Verifier
	logger    *slog.Logger
	responder *apierrors.Responder
}

// NewAuthMiddleware builds the middleware around a Verifier.
func NewAuthMiddleware(verifier identity.Verifier, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:  verifier,
		logger:    logger,
		responder: apierrors.DefaultResponder,
	}
}

// RequireAuth verifies the bearer token and stores the principal in the
// request context. Verification failures all collapse into 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			m.responder.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		if m.verifier == nil {
			m.responder.Unauthorized(c, "authentication not configured")
			c.Abort()
			return
		}
		principal, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, identity.ErrUnauthenticated) && m.logger != nil {
				m.logger.LogAttrs(c.Request.Context(), slog.LevelError, "identity provider verification failed",
					slog.String("error", err.Error()))
			}
			m.responder.Unauthorized(c, "invalid credentials")
			c.Abort()
			return
		}
		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// RequireAdmin gates the route on the administrative role claim. Must run
// after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFrom(c)
		if !ok {
			m.responder.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		if !principal.IsAdmin() {
			m.responder.Respond(c, apierrors.ErrForbidden.WithDetail("administrative role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (identity.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return identity.Principal{}, false
	}
	principal, ok := value.(identity.Principal)
	return principal, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
