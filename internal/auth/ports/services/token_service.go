package services

import (
	"context"
	"time"

	"campusauth/internal/auth/domain/entities"
	domain "campusauth/internal/auth/domain/services"
)

// TokenService определяет интерфейс для операций с подписанными токенами.
type TokenService interface {
	// GenerateAccessToken выпускает токен доступа с указанным временем жизни.
	GenerateAccessToken(ctx context.Context, user *entities.User, ttl time.Duration) (string, time.Time, error)

	// GenerateRefreshToken выпускает refresh-токен с сокращенным набором
	// утверждений.
	GenerateRefreshToken(ctx context.Context, user *entities.User) (string, time.Time, error)

	// ValidateToken проверяет подпись, обязательные утверждения и издателя.
	// Просроченный или искаженный токен возвращается как ошибка, а не как
	// особое значение утверждений.
	ValidateToken(ctx context.Context, token string) (*domain.JWTClaims, error)

	// IsExpired сообщает, истек ли срок действия токена. Искаженный токен
	// не считается истекшим - он отклоняется при проверке подписи.
	IsExpired(ctx context.Context, token string) bool

	// ExpirationUnix возвращает момент истечения токена в формате Unix.
	ExpirationUnix(ctx context.Context, token string) (int64, error)
}
