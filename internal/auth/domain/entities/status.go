package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStatus возвращается при разборе неизвестного статуса.
var ErrUnknownStatus = errors.New("unknown user status")

// UserStatus - состояние учетной записи пользователя.
type UserStatus string

// Возможные состояния учетной записи.
const (
	// StatusPendingVerification - учетная запись создана, но еще не прошла
	// подтверждение и не допускается к входу.
	StatusPendingVerification UserStatus = "PENDING_VERIFICATION"
	// StatusActive - учетная запись активна.
	StatusActive UserStatus = "ACTIVE"
	// StatusLocked - временная блокировка после превышения числа неудачных
	// попыток входа; снимается автоматически по истечении срока.
	StatusLocked UserStatus = "LOCKED"
	// StatusSuspended - административная блокировка; снимается только явной
	// разблокировкой.
	StatusSuspended UserStatus = "SUSPENDED"
	// StatusInactive - зарезервированное состояние, не производится ни одной
	// операцией ядра.
	StatusInactive UserStatus = "INACTIVE"
)

// StatusOf разбирает статус из строкового кода.
func StatusOf(code string) (UserStatus, error) {
	switch UserStatus(strings.ToUpper(strings.TrimSpace(code))) {
	case StatusPendingVerification:
		return StatusPendingVerification, nil
	case StatusActive:
		return StatusActive, nil
	case StatusLocked:
		return StatusLocked, nil
	case StatusSuspended:
		return StatusSuspended, nil
	case StatusInactive:
		return StatusInactive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, code)
	}
}

// CanLogin сообщает, допускает ли статус вход в систему.
func (s UserStatus) CanLogin() bool {
	return s == StatusActive
}

// RequiresVerification сообщает, требуется ли подтверждение учетной записи.
func (s UserStatus) RequiresVerification() bool {
	return s == StatusPendingVerification
}

// IsBlocked сообщает, заблокирована ли учетная запись.
func (s UserStatus) IsBlocked() bool {
	return s == StatusLocked || s == StatusSuspended
}

// String возвращает код статуса.
func (s UserStatus) String() string {
	return string(s)
}
