package services

import (
	"time"

	"campusauth/internal/auth/domain/entities"
)

// ValidationCode - стабильный код результата проверки токена.
type ValidationCode string

// Коды отказа проверки токена.
const (
	// CodeExpired - срок действия токена истек.
	CodeExpired ValidationCode = "EXPIRED"
	// CodeInvalid - подпись или формат токена некорректны.
	CodeInvalid ValidationCode = "INVALID"
	// CodeUserNotFound - субъект токена больше не существует.
	CodeUserNotFound ValidationCode = "USER_NOT_FOUND"
	// CodeAccountDisabled - статус учетной записи изменился после выдачи.
	CodeAccountDisabled ValidationCode = "ACCOUNT_DISABLED"
	// CodeValidationError - непредвиденный внутренний сбой проверки.
	CodeValidationError ValidationCode = "VALIDATION_ERROR"
	// CodeRevoked - токен отозван до естественного истечения.
	CodeRevoked ValidationCode = "REVOKED"
)

// TokenValidationResult - результат проверки токена. Проверка никогда не
// возвращает ошибку вызывающему: любой отказ выражается невалидным
// результатом с кодом.
type TokenValidationResult struct {
	Valid       bool
	Code        ValidationCode
	Message     string
	UserID      string
	Email       string
	Role        string
	Authorities []string
	ExpiresAt   time.Time
	User        *entities.User
}

// InvalidToken создает невалидный результат с кодом и сообщением.
func InvalidToken(code ValidationCode, message string) *TokenValidationResult {
	return &TokenValidationResult{
		Valid:   false,
		Code:    code,
		Message: message,
	}
}

// ValidToken создает валидный результат для пользователя.
func ValidToken(user *entities.User, expiresAt time.Time) *TokenValidationResult {
	return &TokenValidationResult{
		Valid:       true,
		UserID:      user.ID.String(),
		Email:       user.Email.String(),
		Role:        user.Role.Code(),
		Authorities: []string{user.Role.Code()},
		ExpiresAt:   expiresAt,
	}
}
