package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/xela07ax/librarium/internal/domain"
	"go.uber.org/zap"
)

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey string

const userKey ctxKey = "current_user"

// UserResolver — контракт к хранилищу для резолва subject из токена.
type UserResolver interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Guard превращает bearer-токен запроса в аутентифицированную личность.
type Guard struct {
	tokens *TokenService
	users  UserResolver
	logger *zap.Logger
}

func NewGuard(tokens *TokenService, users UserResolver, logger *zap.Logger) *Guard {
	return &Guard{
		tokens: tokens,
		users:  users,
		logger: logger.Named("auth-guard"),
	}
}

// Authenticate проверяет токен и загружает пользователя из БД.
// Валидный токен с удаленным после выдачи аккаунтом — это все равно 401.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w)
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := g.tokens.Verify(tokenStr)
		if err != nil {
			g.logger.Warn("token verification failed", zap.Error(err))
			unauthorized(w)
			return
		}

		user, err := g.users.FindByUsername(r.Context(), claims.Subject)
		if err != nil {
			g.logger.Error("identity lookup failed", zap.String("subject", claims.Subject), zap.Error(err))
			unauthorized(w)
			return
		}
		if user == nil || !user.IsActive {
			unauthorized(w)
			return
		}

		// Прокидываем личность в контекст
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin — гейт для admin-роутов, вешается после Authenticate.
// Смотрим на свежезагруженный из БД флаг, а не на снимок в токене:
// разжалованный админ теряет права сразу, не дожидаясь expiry.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if !user.IsAdmin {
			forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext достает аутентифицированного пользователя из контекста.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

// ContextWithUser нужен хендлерам в тестах, чтобы не гонять весь пайплайн.
func ContextWithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// Ответы константной формы: не раскрываем, что именно не так с токеном.
func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "unauthorized"}`))
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error": "forbidden"}`))
}
