package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/callboard/internal/server/handlers"
	"github.com/iudanet/callboard/internal/server/token"
)

// AuthMiddleware создает middleware для проверки bearer токена.
// Tenant scope из токена кладется в контекст запроса.
func AuthMiddleware(logger *slog.Logger, manager *token.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractToken(r)
			if !ok {
				logger.Warn("Missing bearer token", "path", r.URL.Path)
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			claims, err := manager.Verify(tokenString)
			if err != nil {
				logger.Warn("Invalid access token", "error", err)
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			ctx := handlers.WithTenantScope(r.Context(), claims.TenantID)

			logger.Debug("Request authenticated", "tenant", claims.TenantID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken достает токен из Authorization: Bearer <...> или,
// для WebSocket-подписок, из query-параметра token
func extractToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1], true
		}
		return "", false
	}

	if t := r.URL.Query().Get("token"); t != "" {
		return t, true
	}

	return "", false
}
