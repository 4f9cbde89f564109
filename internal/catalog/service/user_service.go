package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/librarium/internal/domain"
	"github.com/xela07ax/librarium/internal/infra/auth"
	"go.uber.org/zap"
)

// UserRepository описывает требования к хранилищу для операций над аккаунтами.
type UserRepository interface {
	List(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Insert(ctx context.Context, u *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type UserService struct {
	repo   UserRepository
	hasher *auth.Hasher
	logger *zap.Logger
}

func NewUserService(repo UserRepository, hasher *auth.Hasher, logger *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		logger: logger.Named("user-service"),
	}
}

// List возвращает всех зарегистрированных пользователей.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("service: could not fetch users: %w", err)
	}

	// Фронтенд должен получить пустой массив [], а не null
	if users == nil {
		return []*domain.User{}, nil
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch user", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// CreateAdmin создает привилегированный аккаунт. Доступно только админам,
// гейт стоит на уровне роутера.
func (s *UserService) CreateAdmin(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.Insert(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin account created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Delete удаляет аккаунт. Уже выданные токены удаленного пользователя
// перестают работать сразу: guard не сможет отрезолвить subject.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete user", zap.Int64("user_id", id), zap.Error(err))
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}
