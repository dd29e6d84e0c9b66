package repositories

import (
	"context"

	"campusauth/internal/auth/domain/services"
)

// TokenRepository определяет порт для хранения refresh-токенов.
type TokenRepository interface {
	Store(ctx context.Context, token *services.RefreshToken) error

	FindByToken(ctx context.Context, token string) (*services.RefreshToken, error)

	// DeleteUserTokens удаляет все refresh-токены пользователя.
	// Политика одной сессии: новый вход инвалидирует предыдущие токены.
	DeleteUserTokens(ctx context.Context, userID string) error

	CleanupExpired(ctx context.Context) error
}
