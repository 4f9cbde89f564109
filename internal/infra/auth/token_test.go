package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/librarium/internal/domain"
	"github.com/xela07ax/librarium/internal/infra"
)

func newTestTokenService(secret string, ttl time.Duration) *TokenService {
	return NewTokenService(infra.AuthConfig{Secret: secret, TokenTTL: ttl})
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("super-secret", 30*time.Minute)

	tok, err := s.Issue("alice", true, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if len(strings.Split(tok, ".")) != 3 {
		t.Fatalf("token must be a compact three-segment JWS: %q", tok)
	}

	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, "alice")
	}
	if !claims.Admin {
		t.Fatalf("admin claim lost in round trip")
	}
}

func TestTokenService_Expired(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("secret", 30*time.Minute)

	// Issue подменяет ttl <= 0 дефолтом, поэтому просроченный токен
	// подписываем напрямую тем же секретом.
	now := time.Now()
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &domain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "bob",
			ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-31 * time.Minute)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	if _, err := s.Verify(expired); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_DefaultTTLApplied(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("secret", 0)

	tok, err := s.Issue("carol", false, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 14*time.Minute || ttl > 15*time.Minute {
		t.Fatalf("default ttl must be ~15 minutes, got %v", ttl)
	}
	if s.DefaultTTL() != fallbackTTL {
		t.Fatalf("DefaultTTL must fall back to %v, got %v", fallbackTTL, s.DefaultTTL())
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := newTestTokenService("right-secret", time.Hour)
	verifier := newTestTokenService("wrong-secret", time.Hour)

	tok, err := issuer.Issue("dave", false, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := verifier.Verify(tok); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}
}

func TestTokenService_TamperedPayload(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("secret", time.Hour)

	// Склеиваем payload одного токена с подписью другого:
	// JSON валиден, но подпись больше не сходится.
	tokUser, err := s.Issue("eve", false, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	tokAdmin, err := s.Issue("eve", true, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	userParts := strings.Split(tokUser, ".")
	adminParts := strings.Split(tokAdmin, ".")
	spliced := strings.Join([]string{adminParts[0], adminParts[1], userParts[2]}, ".")

	if _, err := s.Verify(spliced); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature for spliced payload, got %v", err)
	}
}

func TestTokenService_TamperedSignature(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("secret", time.Hour)

	tok, err := s.Issue("frank", false, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Портим один символ подписи
	flipped := tok[:len(tok)-1]
	if strings.HasSuffix(tok, "A") {
		flipped += "B"
	} else {
		flipped += "A"
	}

	if _, err := s.Verify(flipped); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature for tampered signature, got %v", err)
	}
}

func TestTokenService_MissingSubject(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("secret", time.Hour)

	tok, err := s.Issue("", false, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := s.Verify(tok); !errors.Is(err, domain.ErrMalformedClaims) {
		t.Fatalf("want ErrMalformedClaims for empty subject, got %v", err)
	}
}

func TestTokenService_GarbageToken(t *testing.T) {
	t.Parallel()

	s := newTestTokenService("secret", time.Hour)

	if _, err := s.Verify("not.a.jwt"); !errors.Is(err, domain.ErrMalformedClaims) {
		t.Fatalf("want ErrMalformedClaims for garbage token, got %v", err)
	}
}
