package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/bnobela/globetalk-api/internal/api/httpx"
	"github.com/bnobela/globetalk-api/internal/domain/auth"
	"github.com/bnobela/globetalk-api/pkg/logger"
)

// UserContextKey is the key type for storing principal info in request context
type UserContextKey string

const (
	// UserIDContextKey stores the principal id in context
	UserIDContextKey UserContextKey = "user_id"
	// UserEmailContextKey stores the principal email in context
	UserEmailContextKey UserContextKey = "user_email"
)

// AuthMiddleware provides bearer-token authentication
type AuthMiddleware struct {
	verifier auth.TokenVerifier
	logger   *logger.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(verifier auth.TokenVerifier, logger *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger.WithComponent("auth-middleware"),
	}
}

// RequireAuth returns a middleware that requires a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Debug("Missing Authorization header")
			httpx.Error(w, http.StatusUnauthorized, "Missing token")
			return
		}

		// A header without an extractable bearer credential reads the same
		// as no header at all; only a well-formed token reaches verification
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			m.logger.Debug("Invalid Authorization header format")
			httpx.Error(w, http.StatusUnauthorized, "Missing token")
			return
		}

		claims, err := m.verifier.Verify(r.Context(), parts[1])
		if err != nil {
			m.logger.Debug("Token verification failed", zap.Error(err))
			httpx.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailContextKey, claims.Email)

		m.logger.Debug("Authentication successful",
			zap.String("user_id", claims.UserID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the principal id from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	return userID, ok && userID != ""
}

// GetUserEmail extracts the principal email from request context
func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailContextKey).(string)
	return email, ok
}
