// Package dto содержит структуры данных для HTTP API сервиса аутентификации.
package dto

import "time"

// RegisterRequest - запрос на регистрацию нового пользователя.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegisterResponse - ответ на регистрацию.
type RegisterResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// LoginRequest - запрос на вход.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResponse - ответ на успешный вход.
type LoginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	ExpiresIn    int64     `json:"expiresIn"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	Authorities  []string  `json:"authorities"`
	IsFirstLogin bool      `json:"isFirstLogin"`
}

// RefreshRequest - запрос на обновление пары токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse - ответ с новой парой токенов.
type RefreshResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	ExpiresIn    int64     `json:"expiresIn"`
}

// ValidateRequest - запрос на проверку токена доступа.
type ValidateRequest struct {
	Token          string `json:"token"`
	IncludeDetails bool   `json:"includeDetails"`
}

// ValidateResponse - результат проверки токена. Код присутствует только
// для невалидного токена.
type ValidateResponse struct {
	Valid       bool         `json:"valid"`
	Code        string       `json:"code,omitempty"`
	Message     string       `json:"message,omitempty"`
	UserID      string       `json:"userId,omitempty"`
	Email       string       `json:"email,omitempty"`
	Role        string       `json:"role,omitempty"`
	Authorities []string     `json:"authorities,omitempty"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
	User        *UserProfile `json:"user,omitempty"`
}

// ChangePasswordRequest - запрос на смену пароля.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserProfile - представление профиля пользователя.
type UserProfile struct {
	UserID              string     `json:"userId"`
	Email               string     `json:"email"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	Role                string     `json:"role"`
	Status              string     `json:"status"`
	CreatedAt           time.Time  `json:"createdAt"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `json:"failedLoginAttempts"`
	LockedUntil         *time.Time `json:"lockedUntil,omitempty"`
}

// MessageResponse - ответ с информационным сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse - ответ с описанием ошибки.
type ErrorResponse struct {
	Error       string     `json:"error"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}
