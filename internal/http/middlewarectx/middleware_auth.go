// Package middlewarectx содержит HTTP middleware: проверку bearer-токена,
// проверку роли и ограничение частоты запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studio-churn/internal/http/response"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User: ключ для имени пользователя в контексте
	User Key = "username"
	// Role: ключ для роли пользователя в контексте
	Role Key = "role"
	// UserUID: ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
)

// Identifier определяет пользователя по токену. nil означает, что токен недействителен.
type Identifier interface {
	Identify(ctx context.Context, token string) *models.User
}

// JWTMiddleware проверяет токен из заголовка Authorization и кладёт данные
// пользователя в контекст запроса. Без действительного токена возвращает 401.
func JWTMiddleware(identifier Identifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				log.Warn("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			user := identifier.Identify(r.Context(), tokenStr)
			if user == nil {
				log.Warn("invalid or expired token")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), User, user.Username)
			ctx = context.WithValue(ctx, Role, user.Role)
			ctx = context.WithValue(ctx, UserUID, user.UUID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Username возвращает имя пользователя из контекста запроса.
func Username(ctx context.Context) string {
	username, _ := ctx.Value(User).(string)
	return username
}
