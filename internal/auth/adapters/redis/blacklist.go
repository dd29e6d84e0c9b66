// Package redis содержит адаптеры портов аутентификации поверх Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"campusauth/internal/auth/ports/services"
	redisdb "campusauth/pkg/db/redis"
	"campusauth/pkg/logger"
)

// blacklistKeyPrefix - префикс ключей отозванных токенов.
const blacklistKeyPrefix = "blacklist:token:"

// blacklistedValue - значение-маркер; сам факт существования ключа
// означает отзыв.
const blacklistedValue = "blacklisted"

// ErrTokenNotBlacklisted возвращается, когда для токена нет записи об отзыве.
var ErrTokenNotBlacklisted = errors.New("token is not blacklisted")

// TokenBlacklist реализует интерфейс services.TokenBlacklist поверх Redis.
// Записи создаются с TTL, равным остатку времени жизни токена, и истекают
// вместе с ним.
type TokenBlacklist struct {
	client *redisdb.Client
}

// NewTokenBlacklist создает новый черный список токенов.
func NewTokenBlacklist(client *redisdb.Client) services.TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func blacklistKey(token string) string {
	return blacklistKeyPrefix + token
}

// Blacklist помещает токен в черный список на указанное время.
func (b *TokenBlacklist) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	log := logger.Log(ctx).With(zap.String("adapter", "blacklist"), zap.String("method", "Blacklist"))

	if ttl <= 0 {
		log.Debug(ctx, "token already expired, skipping blacklist")
		return nil
	}

	if err := b.client.Set(ctx, blacklistKey(token), blacklistedValue, ttl); err != nil {
		log.Error(ctx, "error blacklisting token", zap.Error(err))
		return fmt.Errorf("error blacklisting token: %w", err)
	}

	log.Debug(ctx, "token blacklisted", zap.Duration("ttl", ttl))
	return nil
}

// IsBlacklisted проверяет наличие токена в черном списке.
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	log := logger.Log(ctx).With(zap.String("adapter", "blacklist"), zap.String("method", "IsBlacklisted"))

	count, err := b.client.RawClient().Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		log.Error(ctx, "error checking token blacklist", zap.Error(err))
		return false, fmt.Errorf("error checking token blacklist: %w", err)
	}

	return count > 0, nil
}

// Remove удаляет токен из черного списка.
func (b *TokenBlacklist) Remove(ctx context.Context, token string) error {
	log := logger.Log(ctx).With(zap.String("adapter", "blacklist"), zap.String("method", "Remove"))

	if err := b.client.Delete(ctx, blacklistKey(token)); err != nil {
		log.Error(ctx, "error removing token from blacklist", zap.Error(err))
		return fmt.Errorf("error removing token from blacklist: %w", err)
	}

	return nil
}

// TTL возвращает оставшееся время жизни записи об отзыве.
func (b *TokenBlacklist) TTL(ctx context.Context, token string) (time.Duration, error) {
	log := logger.Log(ctx).With(zap.String("adapter", "blacklist"), zap.String("method", "TTL"))

	ttl, err := b.client.RawClient().TTL(ctx, blacklistKey(token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, ErrTokenNotBlacklisted
		}
		log.Error(ctx, "error reading blacklist ttl", zap.Error(err))
		return 0, fmt.Errorf("error reading blacklist ttl: %w", err)
	}

	// Redis возвращает -2 для отсутствующего ключа и -1 для ключа без TTL.
	if ttl < 0 {
		return 0, ErrTokenNotBlacklisted
	}

	return ttl, nil
}
