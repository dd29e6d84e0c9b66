// Package client определяет интерфейсы клиентов внутренних сервисов.
package client

import (
	"context"
	"fmt"

	"campusauth/internal/gateway/app/dto"
)

// StatusError переносит статус и тело ответа сервиса аутентификации
// через границу клиента, чтобы gateway мог повторить их клиенту.
type StatusError struct {
	StatusCode int
	Response   dto.ErrorResponse
}

// Error реализует интерфейс error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("auth service returned %d: %s", e.StatusCode, e.Response.Error)
}

// AuthClient определяет интерфейс для обращений к сервису аутентификации.
type AuthClient interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)

	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)

	RefreshTokens(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)

	// Validate проверяет токен доступа. Невалидный токен - не ошибка:
	// ответ несет valid=false и код отказа.
	Validate(ctx context.Context, token string) (*dto.ValidationResult, error)

	Logout(ctx context.Context, accessToken string) error

	LogoutAll(ctx context.Context, accessToken string) error

	GetProfile(ctx context.Context, accessToken string) (*dto.UserProfileResponse, error)

	Close() error
}
