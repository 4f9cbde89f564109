package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/librarium/internal/domain"
	"github.com/xela07ax/librarium/internal/infra/auth"
	"go.uber.org/zap"
)

// AuthProvider описывает требования к хранилищу пользователей.
type AuthProvider interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Insert(ctx context.Context, u *domain.User) (*domain.User, error)
}

type AuthService struct {
	repo   AuthProvider
	hasher *auth.Hasher
	tokens *auth.TokenService
	logger *zap.Logger
}

func NewAuthService(repo AuthProvider, hasher *auth.Hasher, tokens *auth.TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger.Named("auth-service"),
	}
}

// dummyHash съедает bcrypt-цикл для несуществующих пользователей,
// чтобы логин не отличался по времени от неверного пароля.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Register создает нового пользователя. Гонку по username/email
// разруливает уникальный констрейнт — получаем domain.ErrConflict
// от репозитория, предварительных SELECT не делаем.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.Insert(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false, // Привилегии при саморегистрации не выдаем
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login проверяет учетные данные и выпускает токен на настроенный TTL.
// Неизвестный логин и неверный пароль наружу неразличимы.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		s.logger.Error("login lookup failed", zap.Error(err))
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user == nil {
		s.hasher.Verify(req.Password, dummyHash)
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive || !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrUnauthorized
	}

	ttl := s.tokens.DefaultTTL()
	token, err := s.tokens.Issue(user.Username, user.IsAdmin, ttl)
	if err != nil {
		s.logger.Error("token issue failed", zap.String("username", user.Username), zap.Error(err))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}
