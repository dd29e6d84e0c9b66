package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"campusauth/internal/auth/domain/entities"
	"campusauth/internal/auth/domain/services"
	svc "campusauth/internal/auth/ports/services"
	"campusauth/pkg/clock"
	"campusauth/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodGenerateAccessToken  = "GenerateAccessToken"
	methodGenerateRefreshToken = "GenerateRefreshToken"
	methodValidateToken        = "ValidateToken"

	msgGeneratingAccessToken  = "generating access token"
	msgGeneratingRefreshToken = "generating refresh token"
	msgTokenGenerated         = "token generated successfully"
	msgInvalidToken           = "invalid token format"
	msgJWTTokenExpired        = "token has expired"

	//nolint:gosec
	errSigningToken = "error signing token"
	//nolint:gosec
	errParsingToken       = "error parsing token"
	errCtxGeneratingToken = "generating token"
	errCtxParsingToken    = "parsing token"
	errCtxValidatingToken = "validating token"
)

// ErrInvalidAlgorithm представляет статическую ошибку неверного алгоритма подписи.
var ErrInvalidAlgorithm = errors.New("invalid signing algorithm")

// Claims адаптирует доменную модель утверждений к библиотеке JWT.
// Refresh токены несут только subject, email и type.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Status    string `json:"status,omitempty"`
	Kind      string `json:"type"`
	jwt.RegisteredClaims
}

// ServiceJWT реализует интерфейс TokenService с подписью HMAC-SHA256.
type ServiceJWT struct {
	config services.JWTConfig
	clock  clock.Clock
}

// NewJWT создает новый экземпляр сервиса JWT.
func NewJWT(secretKey, issuer string, refreshTokenTTL time.Duration, clk clock.Clock) svc.TokenService {
	return &ServiceJWT{
		config: services.JWTConfig{
			SecretKey:       []byte(secretKey),
			Issuer:          issuer,
			RefreshTokenTTL: refreshTokenTTL,
		},
		clock: clk,
	}
}

// jwtToDomainClaims преобразует claims формата библиотеки в доменные claims.
func jwtToDomainClaims(claims *Claims) *services.JWTClaims {
	var expiresAt, issuedAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}

	return &services.JWTClaims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Status:    claims.Status,
		Kind:      services.TokenKind(claims.Kind),
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
}

// GenerateAccessToken выпускает подписанный токен доступа с полным набором
// утверждений и указанным временем жизни.
func (s *ServiceJWT) GenerateAccessToken(ctx context.Context, user *entities.User, ttl time.Duration) (string, time.Time, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodGenerateAccessToken),
		zap.String("userID", user.ID.String()),
	)
	log.Debug(ctx, msgGeneratingAccessToken)

	if len(s.config.SecretKey) == 0 {
		return "", time.Time{}, fmt.Errorf("%s: %w: empty secret key", errCtxGeneratingToken, services.ErrGeneratingJWTToken)
	}

	now := s.clock.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Email:     user.Email.String(),
		Role:      user.Role.Code(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Status:    user.Status.String(),
		Kind:      string(services.KindAccess),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.config.SecretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%s: %w: %w", errCtxGeneratingToken, services.ErrGeneratingJWTToken, err)
	}

	log.Debug(ctx, msgTokenGenerated, zap.Time("expiresAt", expiresAt))
	return tokenString, expiresAt, nil
}

// GenerateRefreshToken выпускает refresh-токен с сокращенным набором
// утверждений: он обменивается на новый токен доступа и не используется
// для авторизации.
func (s *ServiceJWT) GenerateRefreshToken(ctx context.Context, user *entities.User) (string, time.Time, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodGenerateRefreshToken),
		zap.String("userID", user.ID.String()),
	)
	log.Debug(ctx, msgGeneratingRefreshToken)

	if len(s.config.SecretKey) == 0 {
		return "", time.Time{}, fmt.Errorf("%s: %w: empty secret key", errCtxGeneratingToken, services.ErrGeneratingJWTToken)
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.config.RefreshTokenTTL)

	claims := Claims{
		Email: user.Email.String(),
		Kind:  string(services.KindRefresh),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.config.SecretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%s: %w: %w", errCtxGeneratingToken, services.ErrGeneratingJWTToken, err)
	}

	log.Debug(ctx, msgTokenGenerated, zap.Time("expiresAt", expiresAt))
	return tokenString, expiresAt, nil
}

// ValidateToken проверяет подпись, издателя и обязательные утверждения
// и возвращает доменные claims.
func (s *ServiceJWT) ValidateToken(ctx context.Context, tokenString string) (*services.JWTClaims, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidateToken))

	claims, err := s.parse(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgJWTTokenExpired)
			return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrExpiredJWTToken)
		}
		log.Debug(ctx, errParsingToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxParsingToken, services.ErrInvalidJWTToken, err)
	}

	if claims.Subject == "" {
		log.Debug(ctx, msgInvalidToken)
		return nil, fmt.Errorf("%s: %w: empty subject", errCtxValidatingToken, services.ErrInvalidJWTToken)
	}
	if claims.Kind != string(services.KindAccess) && claims.Kind != string(services.KindRefresh) {
		log.Debug(ctx, msgInvalidToken)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, services.ErrWrongTokenKind)
	}

	return jwtToDomainClaims(claims), nil
}

// IsExpired сообщает, истек ли срок действия токена. Искаженный токен
// не считается истекшим - он отклоняется как некорректный при проверке.
func (s *ServiceJWT) IsExpired(_ context.Context, tokenString string) bool {
	_, err := s.parse(tokenString)
	return errors.Is(err, jwt.ErrTokenExpired)
}

// ExpirationUnix возвращает момент истечения токена в формате Unix.
func (s *ServiceJWT) ExpirationUnix(_ context.Context, tokenString string) (int64, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", errCtxParsingToken, services.ErrInvalidJWTToken, err)
	}
	if claims.ExpiresAt == nil {
		return 0, fmt.Errorf("%s: %w: missing expiration", errCtxValidatingToken, services.ErrInvalidJWTToken)
	}

	return claims.ExpiresAt.Unix(), nil
}

// parse разбирает токен, проверяя алгоритм подписи и издателя.
func (s *ServiceJWT) parse(tokenString string) (*Claims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithTimeFunc(s.clock.Now),
	}
	if s.config.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
		}
		return s.config.SecretKey, nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, services.ErrInvalidJWTToken
	}

	return claims, nil
}
