package app

import (
	"context"
	"errors"

	"campusauth/internal/auth/domain/entities"
	"campusauth/internal/auth/domain/services"
	"campusauth/pkg/logger"

	"go.uber.org/zap"
)

const (
	methodValidateToken = "ValidateToken"

	msgTokenRevoked       = "token validation failed: token is blacklisted"
	msgTokenExpired       = "token validation failed: token expired"
	msgTokenMalformed     = "token validation failed: invalid token"
	msgTokenUserMissing   = "token validation failed: user not found"
	msgTokenUserDisabled  = "token validation failed: user cannot login"
	msgTokenValid         = "token validated successfully"
	msgTokenInternalError = "unexpected error during token validation"
)

// Сообщения невалидных результатов проверки.
const (
	reasonRevoked       = "Token has been revoked"
	reasonExpired       = "Token has expired"
	reasonInvalid       = "Invalid token format"
	reasonUserNotFound  = "User no longer exists"
	reasonDisabled      = "User account is disabled"
	reasonInternalError = "Token validation failed"
)

// ValidateToken проверяет access токен и возвращает его утверждения.
// Метод стоит на горячем пути и никогда не возвращает ошибку: любой сбой,
// включая панику зависимости, превращается в невалидный результат.
func (a *AuthUseCaseImpl) ValidateToken(ctx context.Context, token string, includeDetails bool) (result *services.TokenValidationResult) {
	log := logger.Log(ctx).With(zap.String("method", methodValidateToken))

	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, msgTokenInternalError, zap.Any("panic", r))
			result = services.InvalidToken(services.CodeValidationError, reasonInternalError)
		}
	}()

	revoked, err := a.blacklist.IsBlacklisted(ctx, token)
	if err != nil {
		log.Error(ctx, msgTokenInternalError, zap.Error(err))
		return services.InvalidToken(services.CodeValidationError, reasonInternalError)
	}
	if revoked {
		log.Debug(ctx, msgTokenRevoked)
		return services.InvalidToken(services.CodeRevoked, reasonRevoked)
	}

	if a.tokenSvc.IsExpired(ctx, token) {
		log.Debug(ctx, msgTokenExpired)
		return services.InvalidToken(services.CodeExpired, reasonExpired)
	}

	claims, err := a.tokenSvc.ValidateToken(ctx, token)
	if err != nil || claims.Kind != services.KindAccess {
		log.Debug(ctx, msgTokenMalformed, zap.Error(err))
		return services.InvalidToken(services.CodeInvalid, reasonInvalid)
	}

	userID, err := entities.ParseUserID(claims.Subject)
	if err != nil {
		log.Debug(ctx, msgTokenMalformed, zap.Error(err))
		return services.InvalidToken(services.CodeInvalid, reasonInvalid)
	}

	user, err := a.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Warn(ctx, msgTokenUserMissing, zap.String("userID", userID.String()))
			return services.InvalidToken(services.CodeUserNotFound, reasonUserNotFound)
		}
		log.Error(ctx, msgTokenInternalError, zap.Error(err))
		return services.InvalidToken(services.CodeValidationError, reasonInternalError)
	}

	if !user.CanLogin(a.clock.Now()) {
		log.Warn(ctx, msgTokenUserDisabled,
			zap.String("userID", userID.String()),
			zap.String("status", user.Status.String()))
		return services.InvalidToken(services.CodeAccountDisabled, reasonDisabled)
	}

	validated := services.ValidToken(user, claims.ExpiresAt)
	if includeDetails {
		validated.User = user
	}

	log.Debug(ctx, msgTokenValid, zap.String("userID", userID.String()))
	return validated
}
