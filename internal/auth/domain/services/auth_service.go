package services

import (
	"errors"
	"fmt"
	"time"

	"campusauth/internal/auth/domain/entities"
)

// Ошибки домена аутентификации.
var (
	// ErrInvalidCredentials покрывает неверный email, неверный пароль и
	// статусы, которые намеренно не раскрываются внешнему вызывающему.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountLocked - временная блокировка после неудачных попыток входа.
	ErrAccountLocked = errors.New("account is temporarily locked")
	// ErrAccountNotActivated - учетная запись еще не прошла подтверждение.
	ErrAccountNotActivated = errors.New("account is not activated")
	// ErrUserAlreadyExists - попытка регистрации с занятым email.
	ErrUserAlreadyExists = errors.New("user with this email already exists")
	// ErrPasswordUnchanged - новый пароль совпадает с текущим.
	ErrPasswordUnchanged = errors.New("new password must be different from current password")
	// ErrInvalidRefreshToken - refresh токен не найден или некорректен.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrTokenGenerationFailed - не удалось сгенерировать токены.
	ErrTokenGenerationFailed = errors.New("failed to generate authentication tokens")
)

// AccountLockedError несет срок окончания блокировки для заголовка retry-after.
type AccountLockedError struct {
	LockedUntil *time.Time
}

// Error реализует интерфейс error.
func (e *AccountLockedError) Error() string {
	if e.LockedUntil == nil {
		return ErrAccountLocked.Error()
	}
	return fmt.Sprintf("%s until %s", ErrAccountLocked.Error(), e.LockedUntil.Format(time.RFC3339))
}

// Is позволяет errors.Is сопоставлять ошибку с ErrAccountLocked.
func (*AccountLockedError) Is(target error) bool {
	return target == ErrAccountLocked
}

// NewAccountLockedError создает ошибку блокировки с указанным сроком.
func NewAccountLockedError(lockedUntil *time.Time) *AccountLockedError {
	return &AccountLockedError{LockedUntil: lockedUntil}
}

// AuthenticationPolicy - доменная политика аутентификации без состояния.
// Решает, допускается ли пользователь к входу в его текущем статусе.
type AuthenticationPolicy struct{}

// NewAuthenticationPolicy создает новую политику аутентификации.
func NewAuthenticationPolicy() *AuthenticationPolicy {
	return &AuthenticationPolicy{}
}

// ValidateForLogin проверяет статус учетной записи перед сверкой пароля.
// Порядок проверок фиксирован: наличие пользователя, допуск по статусу,
// затем повторная проверка временной блокировки.
func (*AuthenticationPolicy) ValidateForLogin(user *entities.User, now time.Time) error {
	if user == nil {
		return ErrInvalidCredentials
	}

	if !user.Status.CanLogin() {
		if err := statusError(user, now); err != nil {
			return err
		}
	}

	// Статус мог смениться между проверками - временная блокировка
	// проверяется отдельно.
	if user.IsTemporarilyLocked(now) {
		return NewAccountLockedError(user.LockedUntil)
	}

	return nil
}

// statusError возвращает ошибку, соответствующую статусу учетной записи.
// SUSPENDED и INACTIVE намеренно маскируются под неверные учетные данные,
// чтобы не раскрывать существование и состояние учетной записи.
func statusError(user *entities.User, now time.Time) error {
	switch user.Status {
	case entities.StatusPendingVerification:
		return ErrAccountNotActivated
	case entities.StatusLocked:
		// Ленивая проверка истечения блокировки.
		if user.CanLogin(now) {
			return nil
		}
		return NewAccountLockedError(user.LockedUntil)
	case entities.StatusSuspended, entities.StatusInactive:
		return ErrInvalidCredentials
	default:
		return ErrInvalidCredentials
	}
}

// ValidatePasswordChange проверяет правила смены пароля. Совпадение
// проверяется по открытому тексту до хэширования: ловится только повторная
// отправка того же пароля, без анализа истории.
func (*AuthenticationPolicy) ValidatePasswordChange(user *entities.User, currentPassword, newPassword entities.Password, now time.Time) error {
	if user == nil {
		return ErrInvalidCredentials
	}

	if !user.CanLogin(now) {
		return ErrInvalidCredentials
	}

	if !currentPassword.IsHashed() && !newPassword.IsHashed() &&
		newPassword.Value() == currentPassword.Value() {
		return ErrPasswordUnchanged
	}

	return nil
}
