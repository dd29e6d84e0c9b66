// Package notifications реализует порт уведомлений. Текущая реализация
// пишет структурированные записи в журнал; доставка через внешний
// почтовый шлюз подключается той же оберткой отказоустойчивости.
package notifications

import (
	"context"

	"go.uber.org/zap"

	"campusauth/internal/auth/ports/services"
	"campusauth/pkg/logger"
	"campusauth/pkg/resilience"
)

// Константы для логирования.
const (
	msgSuspiciousActivity = "suspicious activity detected: account locked after repeated failed logins"
	msgWelcomeEmail       = "welcome email dispatched"
)

// ServiceLog реализует интерфейс services.NotificationService записью в журнал.
type ServiceLog struct {
	resilience *resilience.ServiceResilience
}

// NewLogNotifier создает новый журнальный сервис уведомлений.
func NewLogNotifier() services.NotificationService {
	return &ServiceLog{
		resilience: resilience.NewServiceResilience("notifications"),
	}
}

// NotifySuspiciousActivity сообщает о блокировке учетной записи после
// серии неудачных попыток входа.
func (s *ServiceLog) NotifySuspiciousActivity(ctx context.Context, userID, email, ipAddress, userAgent string) error {
	return s.resilience.Execute(ctx, "NotifySuspiciousActivity", func() error {
		logger.Log(ctx).Warn(ctx, msgSuspiciousActivity,
			zap.String("userID", userID),
			zap.String("email", email),
			zap.String("ipAddress", ipAddress),
			zap.String("userAgent", userAgent),
		)
		return nil
	})
}

// SendWelcomeEmail отправляет приветственное письмо после регистрации.
func (s *ServiceLog) SendWelcomeEmail(ctx context.Context, userID, email, fullName string) error {
	return s.resilience.Execute(ctx, "SendWelcomeEmail", func() error {
		logger.Log(ctx).Info(ctx, msgWelcomeEmail,
			zap.String("userID", userID),
			zap.String("email", email),
			zap.String("fullName", fullName),
		)
		return nil
	})
}
