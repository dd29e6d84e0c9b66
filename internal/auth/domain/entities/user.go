package entities

import (
	"errors"
	"strings"
	"time"
)

// Ошибки домена пользователя.
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmptyFirstName        = errors.New("first name cannot be empty")
	ErrEmptyLastName         = errors.New("last name cannot be empty")
	ErrPasswordNotHashed     = errors.New("user password must be hashed")
	ErrNotPendingActivation  = errors.New("user is not in pending verification status")
	ErrUserCannotLogin       = errors.New("user cannot login in current status")
	ErrUserAlreadySuspended  = errors.New("user is already suspended")
	ErrInvalidAggregateState = errors.New("user aggregate is in invalid state")
)

// Политика блокировки учетной записи.
const (
	// MaxFailedLoginAttempts - число неудачных попыток, после которого
	// учетная запись блокируется.
	MaxFailedLoginAttempts = 5
	// LockoutDuration - длительность временной блокировки.
	LockoutDuration = 30 * time.Minute
)

// User - корень агрегата пользователя. Инкапсулирует состояние учетной
// записи и машину состояний. Читается, изменяется и сохраняется как единое
// целое; Version служит для оптимистической блокировки при записи.
type User struct {
	ID                  UserID
	Email               Email
	Password            Password
	Role                UserRole
	Status              UserStatus
	FirstName           string
	LastName            string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	LastLoginAt         *time.Time
	FailedLoginAttempts int
	LockedUntil         *time.Time
	Version             int64
}

// NewUser создает нового пользователя в статусе PENDING_VERIFICATION.
// Пароль должен быть предварительно захэширован.
func NewUser(email Email, password Password, role UserRole, firstName, lastName string, now time.Time) (*User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if firstName == "" {
		return nil, ErrEmptyFirstName
	}
	if lastName == "" {
		return nil, ErrEmptyLastName
	}
	if !password.IsHashed() {
		return nil, ErrPasswordNotHashed
	}

	user := &User{
		ID:                  NewUserID(),
		Email:               email,
		Password:            password,
		Role:                role,
		Status:              StatusPendingVerification,
		FirstName:           firstName,
		LastName:            lastName,
		CreatedAt:           now,
		UpdatedAt:           now,
		FailedLoginAttempts: 0,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Activate переводит учетную запись из PENDING_VERIFICATION в ACTIVE.
func (u *User) Activate(now time.Time) error {
	if !u.Status.RequiresVerification() {
		return ErrNotPendingActivation
	}

	u.Status = StatusActive
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = now
	return nil
}

// RecordSuccessfulLogin фиксирует успешный вход и сбрасывает счетчик
// неудачных попыток.
func (u *User) RecordSuccessfulLogin(now time.Time) error {
	if !u.CanLogin(now) {
		return ErrUserCannotLogin
	}

	loginAt := now
	u.LastLoginAt = &loginAt
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = now
	return nil
}

// RecordFailedLoginAttempt увеличивает счетчик неудачных попыток.
// При достижении порога учетная запись временно блокируется.
func (u *User) RecordFailedLoginAttempt(now time.Time) {
	u.FailedLoginAttempts++
	u.UpdatedAt = now

	if u.FailedLoginAttempts >= MaxFailedLoginAttempts && u.Status != StatusLocked {
		u.Status = StatusLocked
		lockedUntil := now.Add(LockoutDuration)
		u.LockedUntil = &lockedUntil
	}
}

// ChangePassword заменяет пароль на новый захэшированный и сбрасывает
// счетчик неудачных попыток.
func (u *User) ChangePassword(newPassword Password, now time.Time) error {
	if !u.CanLogin(now) {
		return ErrUserCannotLogin
	}
	if !newPassword.IsHashed() {
		return ErrPasswordNotHashed
	}

	u.Password = newPassword
	u.FailedLoginAttempts = 0
	u.UpdatedAt = now
	return nil
}

// UpdateProfile обновляет имя и фамилию пользователя.
func (u *User) UpdateProfile(firstName, lastName string, now time.Time) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if firstName == "" {
		return ErrEmptyFirstName
	}
	if lastName == "" {
		return ErrEmptyLastName
	}

	u.FirstName = firstName
	u.LastName = lastName
	u.UpdatedAt = now
	return nil
}

// Suspend накладывает административную блокировку.
func (u *User) Suspend(now time.Time) error {
	if u.Status == StatusSuspended {
		return ErrUserAlreadySuspended
	}

	u.Status = StatusSuspended
	u.LockedUntil = nil
	u.UpdatedAt = now
	return nil
}

// Unlock снимает любую блокировку (административное действие).
func (u *User) Unlock(now time.Time) {
	u.Status = StatusActive
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = now
}

// CanLogin сообщает, может ли пользователь войти в систему.
// Если срок временной блокировки истек, запись разблокируется прямо здесь:
// истечение блокировки вычисляется лениво при следующей попытке входа,
// а не фоновым процессом.
func (u *User) CanLogin(now time.Time) bool {
	if u.Status == StatusLocked && u.LockedUntil != nil {
		if now.After(*u.LockedUntil) {
			u.Status = StatusActive
			u.FailedLoginAttempts = 0
			u.LockedUntil = nil
			u.UpdatedAt = now
			return true
		}
		return false
	}

	return u.Status.CanLogin()
}

// IsTemporarilyLocked сообщает, действует ли временная блокировка.
func (u *User) IsTemporarilyLocked(now time.Time) bool {
	return u.Status == StatusLocked && u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// IsFirstLogin сообщает, входил ли пользователь ранее.
func (u *User) IsFirstLogin() bool {
	return u.LastLoginAt == nil
}

// FullName возвращает полное имя пользователя.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Validate проверяет инварианты агрегата.
func (u *User) Validate() error {
	if u.ID.IsZero() ||
		u.Email.IsZero() ||
		u.Password.IsZero() ||
		u.Role.IsZero() ||
		u.Status == "" ||
		u.FirstName == "" ||
		u.LastName == "" ||
		u.CreatedAt.IsZero() {
		return ErrInvalidAggregateState
	}
	return nil
}
