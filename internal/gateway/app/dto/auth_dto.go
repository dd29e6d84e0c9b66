// Package dto содержит объекты передачи данных для gateway.
package dto

import (
	"time"
)

// RegisterRequest содержит данные для регистрации пользователя.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegisterResponse содержит результат регистрации.
type RegisterResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// LoginRequest содержит данные для входа пользователя.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// TokenResponse содержит данные о выданных токенах.
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	ExpiresIn    int64     `json:"expiresIn"`
	UserID       string    `json:"userId,omitempty"`
	Email        string    `json:"email,omitempty"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Role         string    `json:"role,omitempty"`
	Authorities  []string  `json:"authorities,omitempty"`
	IsFirstLogin bool      `json:"isFirstLogin,omitempty"`
}

// RefreshRequest содержит данные для обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ValidationResult содержит результат проверки токена доступа.
type ValidationResult struct {
	Valid       bool       `json:"valid"`
	Code        string     `json:"code,omitempty"`
	Message     string     `json:"message,omitempty"`
	UserID      string     `json:"userId,omitempty"`
	Email       string     `json:"email,omitempty"`
	Role        string     `json:"role,omitempty"`
	Authorities []string   `json:"authorities,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// UserProfileResponse содержит данные профиля пользователя.
type UserProfileResponse struct {
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

// MessageResponse содержит информационное сообщение.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse содержит описание ошибки.
type ErrorResponse struct {
	Error       string     `json:"error"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}
