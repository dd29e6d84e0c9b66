package services

import (
	"context"
	"time"
)

// TokenBlacklist определяет порт отзыва токенов: множество с TTL-ключами.
// Записи истекают самостоятельно; список проверяется при каждой проверке
// токена в дополнение к проверке подписи.
type TokenBlacklist interface {
	Blacklist(ctx context.Context, token string, ttl time.Duration) error

	IsBlacklisted(ctx context.Context, token string) (bool, error)

	Remove(ctx context.Context, token string) error

	// TTL возвращает оставшееся время жизни записи или ошибку,
	// если запись отсутствует.
	TTL(ctx context.Context, token string) (time.Duration, error)
}
