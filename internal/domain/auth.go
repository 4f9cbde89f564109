package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	// Admin — снимок флага is_admin на момент выдачи токена.
	// Информативен для клиента; авторизация admin-роутов всегда
	// перечитывает флаг из БД (см. auth.RequireAdmin).
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// Secure Token Issuing
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "bearer"
	ExpiresIn   int64  `json:"expires_in"`
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Никогда не отправляем на фронт
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
