// Package services предоставляет фабрику для создания и доступа к различным сервисам аутентификации,
// таким как сервисы работы с паролями и подписанными токенами.
package services

import (
	"time"

	"campusauth/internal/auth/ports/services"
	"campusauth/pkg/clock"
)

// ServiceFactory создает все необходимые сервисы для аутентификации.
type ServiceFactory struct {
	passwordService services.PasswordService
	tokenService    services.TokenService
}

// NewServiceFactory создает новую фабрику сервисов с настройками по умолчанию.
func NewServiceFactory(
	jwtSecretKey, jwtIssuer string,
	refreshTokenTTL time.Duration,
	bcryptCost int,
	clk clock.Clock,
) *ServiceFactory {
	return &ServiceFactory{
		passwordService: NewBcrypt(bcryptCost),
		tokenService:    NewJWT(jwtSecretKey, jwtIssuer, refreshTokenTTL, clk),
	}
}

// PasswordService возвращает сервис для работы с паролями.
func (f *ServiceFactory) PasswordService() services.PasswordService {
	return f.passwordService
}

// TokenService возвращает сервис для работы с токенами.
func (f *ServiceFactory) TokenService() services.TokenService {
	return f.tokenService
}
