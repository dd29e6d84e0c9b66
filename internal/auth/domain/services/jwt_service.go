package services

import (
	"errors"
	"time"
)

// Ошибки, связанные с JWT токенами.
var (
	ErrInvalidJWTToken    = errors.New("invalid JWT token")
	ErrExpiredJWTToken    = errors.New("JWT token has expired")
	ErrWrongTokenKind     = errors.New("unexpected JWT token kind")
	ErrGeneratingJWTToken = errors.New("failed to generate JWT token")
)

// TokenKind различает два вида токенов, разделяющих общий формат.
type TokenKind string

// Виды токенов.
const (
	// KindAccess - токен доступа, авторизующий отдельные запросы.
	KindAccess TokenKind = "access"
	// KindRefresh - токен обновления; обменивается на новый токен доступа
	// и никогда не используется для авторизации напрямую.
	KindRefresh TokenKind = "refresh"
)

// JWTConfig содержит настройки для JWT сервиса.
type JWTConfig struct {
	SecretKey       []byte
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// JWTClaims - доменное представление утверждений токена.
// Refresh токены несут только Subject, Email и Kind.
type JWTClaims struct {
	Subject   string
	Email     string
	Role      string
	FirstName string
	LastName  string
	Status    string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair представляет пару токенов аутентификации.
type TokenPair struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	ExpiresIn    int64
}

// RefreshToken представляет сохраненную сущность refresh-токена.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
