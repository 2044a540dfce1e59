package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/security"
	"github.com/ctfground/ctf-service/internal/services"
	"github.com/ctfground/ctf-service/internal/utils"
)

// SessionPolicy picks how strictly a route treats the bearer token.
type SessionPolicy int

const (
	// SessionOptional resolves a token when present and lets anonymous
	// requests through with no user attached.
	SessionOptional SessionPolicy = iota
	// SessionRequired rejects requests without a valid session.
	SessionRequired
	// SessionRequiredEmail additionally demands a bound contact email.
	SessionRequiredEmail
)

const currentUserKey = "current_user"

type AuthMiddleware struct {
	auth   services.AuthService
	logger utils.Logger
}

func NewAuthMiddleware(auth services.AuthService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

// Session resolves the bearer token into a user according to policy.
// Expired tokens get a distinct 403 so clients know to re-login rather
// than retry; every other token failure is a plain 401.
func (m *AuthMiddleware) Session(policy SessionPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			if policy == SessionOptional {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
			return
		}

		user, err := m.auth.ResolveUser(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Expired token"})
			case errors.Is(err, security.ErrTokenInvalid):
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Could not validate credentials"})
			default:
				m.logger.Error("session resolution failed", "error", err, "request_id", c.GetString("request_id"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
			}
			return
		}

		if policy == SessionRequiredEmail && !user.HasEmail() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "No email bound to this account"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the session user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func extractBearerToken(c *gin.Context) string {
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
