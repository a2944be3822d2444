package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tourbook/tourbook/internal/infrastructure/auth"
	apperrors "github.com/tourbook/tourbook/internal/shared/errors"
	"github.com/tourbook/tourbook/internal/shared/logger"
	"github.com/tourbook/tourbook/internal/shared/utils"
)

// Context keys set by RequireAuth.
const (
	ContextKeyOperatorID   = "operator_id"
	ContextKeyOperatorRole = "operator_role"
)

// TokenVerifier is satisfied by *auth.JWTService.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	logger   logger.Interface
}

func NewAuthMiddleware(verifier TokenVerifier, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth accepts an operator bearer token from the Authorization header.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.verifier.Verify(parts[1])
		if err != nil {
			var appErr *apperrors.AuthError
			if errors.Is(err, auth.ErrTokenExpired) {
				appErr = apperrors.NewTokenExpiredError("access token")
			} else {
				appErr = apperrors.NewTokenInvalidError("access token")
			}
			if apperrors.ShouldLogAuthError(appErr) {
				m.logger.Warnw("failed to verify token", "error", err, "client_ip", c.ClientIP())
			}
			utils.ErrorResponseWithError(c, appErr)
			c.Abort()
			return
		}

		c.Set(ContextKeyOperatorID, claims.Subject)
		c.Set(ContextKeyOperatorRole, claims.Role.String())

		c.Next()
	}
}
