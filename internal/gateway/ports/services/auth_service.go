// Package services определяет интерфейсы сервисов gateway.
package services

import (
	"context"

	"campusauth/internal/gateway/app/dto"
)

// AuthService определяет интерфейс для работы с сервисом аутентификации.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)

	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)

	RefreshTokens(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)

	// ValidateToken проверяет токен доступа через сервис аутентификации.
	ValidateToken(ctx context.Context, token string) (*dto.ValidationResult, error)

	Logout(ctx context.Context, accessToken string) error

	LogoutFromAllDevices(ctx context.Context, accessToken string) error

	GetUserProfile(ctx context.Context, accessToken string) (*dto.UserProfileResponse, error)
}
