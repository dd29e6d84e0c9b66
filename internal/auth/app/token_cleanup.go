package app

import (
	"context"
	"time"

	"campusauth/internal/auth/ports/repositories"
	"campusauth/pkg/logger"

	"go.uber.org/zap"
)

// DefaultTokenCleanupInterval - период удаления просроченных refresh-токенов.
const DefaultTokenCleanupInterval = time.Hour

const (
	methodTokenCleanup = "TokenCleanup"

	msgTokenCleanupStarted = "expired token cleanup started"
	msgTokenCleanupStopped = "expired token cleanup stopped"
	msgExpiredTokensSwept  = "expired refresh tokens removed"

	msgErrTokenCleanup = "failed to clean up expired refresh tokens"
)

// TokenCleaner периодически удаляет просроченные refresh-токены из
// хранилища. Истекший токен и так не принимается при обмене, очистка
// лишь не дает таблице расти бесконечно.
type TokenCleaner struct {
	tokenRepo repositories.TokenRepository
	interval  time.Duration
}

// NewTokenCleaner создает новый экземпляр очистки токенов.
func NewTokenCleaner(tokenRepo repositories.TokenRepository, interval time.Duration) *TokenCleaner {
	if interval <= 0 {
		interval = DefaultTokenCleanupInterval
	}
	return &TokenCleaner{tokenRepo: tokenRepo, interval: interval}
}

// Run блокируется до отмены контекста, выполняя очистку с заданным
// периодом. Сбой одного прохода логируется и не останавливает цикл.
func (c *TokenCleaner) Run(ctx context.Context) {
	log := logger.Log(ctx).With(zap.String("method", methodTokenCleanup))
	log.Debug(ctx, msgTokenCleanupStarted, zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug(ctx, msgTokenCleanupStopped)
			return
		case <-ticker.C:
			if err := c.tokenRepo.CleanupExpired(ctx); err != nil {
				log.Error(ctx, msgErrTokenCleanup, zap.Error(err))
				continue
			}
			log.Debug(ctx, msgExpiredTokensSwept)
		}
	}
}
