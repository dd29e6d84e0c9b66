package entities

import (
	"errors"
	"regexp"
	"strings"
)

// Ошибки валидации email.
var (
	ErrEmptyEmail   = errors.New("email cannot be empty")
	ErrEmailTooLong = errors.New("email exceeds maximum length")
	ErrInvalidEmail = errors.New("invalid email format")
)

// MaxEmailLength - предел длины email согласно RFC 5321.
const MaxEmailLength = 320

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email - нормализованный адрес электронной почты.
// Сравнение и ключи хранения используют нормализованную форму.
type Email struct {
	value string
}

// NewEmail создает email, нормализуя и проверяя входную строку.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	if normalized == "" {
		return Email{}, ErrEmptyEmail
	}
	if len(normalized) > MaxEmailLength {
		return Email{}, ErrEmailTooLong
	}
	if !emailRegex.MatchString(normalized) {
		return Email{}, ErrInvalidEmail
	}

	return Email{value: normalized}, nil
}

// String возвращает нормализованное значение.
func (e Email) String() string {
	return e.value
}

// IsZero сообщает, пустой ли email.
func (e Email) IsZero() bool {
	return e.value == ""
}

// LocalPart возвращает часть адреса до символа @.
func (e Email) LocalPart() string {
	at := strings.IndexByte(e.value, '@')
	return e.value[:at]
}

// Domain возвращает доменную часть адреса.
func (e Email) Domain() string {
	at := strings.IndexByte(e.value, '@')
	return e.value[at+1:]
}
