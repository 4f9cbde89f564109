package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/librarium/internal/domain"
	"github.com/xela07ax/librarium/internal/infra"
)

// fallbackTTL используется, если вызывающий не задал срок жизни токена.
const fallbackTTL = 15 * time.Minute

// TokenService выпускает и проверяет HS256 токены.
// Секрет инжектится явно через конфиг — внутри бизнес-логики
// переменные окружения не читаем.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
}

func NewTokenService(cfg infra.AuthConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.Secret),
		defaultTTL: cfg.TokenTTL,
	}
}

// DefaultTTL отдает срок жизни токена из конфига (для expires_in в ответе логина).
func (s *TokenService) DefaultTTL() time.Duration {
	if s.defaultTTL > 0 {
		return s.defaultTTL
	}
	return fallbackTTL
}

// Issue подписывает claims {sub, admin} с абсолютным сроком now+ttl.
// При ttl <= 0 берется запасной срок в 15 минут.
func (s *TokenService) Issue(subject string, admin bool, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = fallbackTTL
	}

	now := time.Now()
	claims := &domain.Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify проверяет токен в строгом порядке: подпись, потом срок,
// потом форма claims. Поддельный или протухший токен отбрасывается
// до того, как хоть одному claim поверили.
func (s *TokenService) Verify(tokenStr string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, domain.ErrMalformedClaims
		default:
			return nil, domain.ErrInvalidSignature
		}
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidSignature
	}

	if claims.Subject == "" {
		return nil, domain.ErrMalformedClaims
	}

	return claims, nil
}
