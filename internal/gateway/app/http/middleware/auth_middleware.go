package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"campusauth/internal/gateway/app/dto"
	"campusauth/internal/gateway/ports/services"
	"campusauth/pkg/logger"
)

// Ключи Locals, заполняемые промежуточным ПО аутентификации.
const (
	LocalUserID      = "userID"
	LocalUserRole    = "userRole"
	LocalBearerToken = "bearerToken"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorTokenRejected      = "token rejected"
	ErrorAuthUnavailable    = "authentication service unavailable"
)

// AuthenticatedUserID возвращает идентификатор пользователя текущего запроса.
func AuthenticatedUserID(c fiber.Ctx) string {
	if id, ok := c.Locals(LocalUserID).(string); ok {
		return id
	}
	return ""
}

// BearerToken возвращает токен доступа текущего запроса.
func BearerToken(c fiber.Ctx) string {
	if token, ok := c.Locals(LocalBearerToken).(string); ok {
		return token
	}
	return ""
}

// NewAuthMiddleware проверяет Bearer токен через сервис аутентификации
// и помещает субъект в контекст запроса.
func NewAuthMiddleware(authService services.AuthService) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx := c.UserContext()
		log := logger.Log(ctx).With(zap.String("middleware", "auth"))
		log.Debug(ctx, LogAuthMiddleware)

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			log.Debug(ctx, ErrorNoAuthHeader)
			return c.Status(http.StatusUnauthorized).JSON(dto.ErrorResponse{Error: ErrorNoAuthHeader})
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			log.Debug(ctx, ErrorInvalidTokenFormat)
			return c.Status(http.StatusUnauthorized).JSON(dto.ErrorResponse{Error: ErrorInvalidTokenFormat})
		}

		result, err := authService.ValidateToken(ctx, token)
		if err != nil {
			log.Warn(ctx, ErrorAuthUnavailable, zap.Error(err))
			return c.Status(http.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: ErrorAuthUnavailable})
		}
		if !result.Valid {
			log.Debug(ctx, ErrorTokenRejected, zap.String("code", result.Code))
			return c.Status(http.StatusUnauthorized).JSON(dto.ErrorResponse{Error: result.Message})
		}

		c.Locals(LocalUserID, result.UserID)
		c.Locals(LocalUserRole, result.Role)
		c.Locals(LocalBearerToken, token)

		return c.Next()
	}
}
