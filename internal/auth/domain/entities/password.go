package entities

import (
	"errors"
	"regexp"
)

// Ошибки валидации пароля. Каждое правило имеет собственную ошибку,
// чтобы вызывающий код мог назвать нарушенное требование.
var (
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password cannot exceed 128 characters")
	ErrPasswordNoUppercase = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLowercase = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoDigit     = errors.New("password must contain at least one digit")
	ErrPasswordNoSymbol    = errors.New("password must contain at least one special character")
	ErrInvalidPasswordHash = errors.New("invalid hashed password format")
)

// Требования к стойкости пароля.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128

	minHashLength = 10
	maxHashLength = 255
)

var (
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	digitRegex     = regexp.MustCompile(`\d`)
	symbolRegex    = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]`)
)

// Password - пароль в одном из двух непересекающихся вариантов:
// сырой текст (проверяется на стойкость) или непрозрачный хэш
// (проверяется только длина). Сырое значение никогда не сравнивается
// с хэшем напрямую - для этого служит PasswordService.
type Password struct {
	value  string
	hashed bool
}

// NewRawPassword создает пароль из открытого текста с проверкой стойкости.
func NewRawPassword(raw string) (Password, error) {
	if raw == "" {
		return Password{}, ErrEmptyPassword
	}
	if len(raw) < MinPasswordLength {
		return Password{}, ErrPasswordTooShort
	}
	if len(raw) > MaxPasswordLength {
		return Password{}, ErrPasswordTooLong
	}
	if !uppercaseRegex.MatchString(raw) {
		return Password{}, ErrPasswordNoUppercase
	}
	if !lowercaseRegex.MatchString(raw) {
		return Password{}, ErrPasswordNoLowercase
	}
	if !digitRegex.MatchString(raw) {
		return Password{}, ErrPasswordNoDigit
	}
	if !symbolRegex.MatchString(raw) {
		return Password{}, ErrPasswordNoSymbol
	}

	return Password{value: raw, hashed: false}, nil
}

// RawPasswordAttempt оборачивает произвольную строку как сырой пароль без
// проверки стойкости. Служит для сверки попытки входа с сохраненным хэшем:
// несовпадающая попытка должна быть сосчитана политикой блокировки,
// а не отброшена валидацией до сравнения.
func RawPasswordAttempt(raw string) Password {
	return Password{value: raw, hashed: false}
}

// NewHashedPassword создает пароль из уже захэшированного значения.
func NewHashedPassword(hash string) (Password, error) {
	if hash == "" {
		return Password{}, ErrEmptyPassword
	}
	if len(hash) < minHashLength || len(hash) > maxHashLength {
		return Password{}, ErrInvalidPasswordHash
	}

	return Password{value: hash, hashed: true}, nil
}

// Value возвращает хранимое значение: открытый текст или хэш.
func (p Password) Value() string {
	return p.value
}

// IsHashed сообщает, хранится ли пароль в виде хэша.
func (p Password) IsHashed() bool {
	return p.hashed
}

// IsZero сообщает, пустой ли пароль.
func (p Password) IsZero() bool {
	return p.value == ""
}

// String скрывает значение пароля в логах и сообщениях об ошибках.
func (p Password) String() string {
	if p.hashed {
		return "[HASHED]"
	}
	return "[RAW]"
}
