package api

import (
	"context"

	"campusauth/internal/auth/domain/entities"
	"campusauth/internal/auth/domain/services"
)

// LoginContext содержит сведения о клиенте, выполняющем вход.
type LoginContext struct {
	IPAddress  string
	UserAgent  string
	RememberMe bool
}

// LoginResult - результат успешного входа.
type LoginResult struct {
	Tokens       *services.TokenPair
	User         *entities.User
	Authorities  []string
	IsFirstLogin bool
}

// AuthUseCase определяет основной порт для операций аутентификации.
type AuthUseCase interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*entities.User, error)

	Login(ctx context.Context, email, password string, client LoginContext) (*LoginResult, error)

	RefreshTokens(ctx context.Context, refreshToken string) (*services.TokenPair, error)

	// ValidateToken никогда не возвращает ошибку: любой сбой выражается
	// невалидным результатом со стабильным кодом.
	ValidateToken(ctx context.Context, token string, includeDetails bool) *services.TokenValidationResult

	Logout(ctx context.Context, userID, accessToken string) error

	LogoutFromAllDevices(ctx context.Context, userID string) error
}
