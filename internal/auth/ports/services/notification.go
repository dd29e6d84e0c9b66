package services

import "context"

// NotificationService определяет порт доставки уведомлений.
// Все операции fire-and-forget: сбои логируются и никогда не влияют
// на исход основной операции.
type NotificationService interface {
	NotifySuspiciousActivity(ctx context.Context, userID, email, ipAddress, userAgent string) error

	SendWelcomeEmail(ctx context.Context, userID, email, fullName string) error
}
