package domain

import "errors"

// Единая таксономия ошибок ядра. Хендлеры маппят их на HTTP-статусы
// в одном месте, сервисы и репозитории оборачивают через %w.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("resource already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
)

// Внутренние ошибки верификации токена. Наружу все три схлопываются
// в ErrUnauthorized — клиенту разницу не показываем, только в логи и тесты.
var (
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrMalformedClaims  = errors.New("token claims malformed")
)
