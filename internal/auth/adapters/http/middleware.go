package http

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"campusauth/internal/auth/adapters/http/dto"
	"campusauth/internal/auth/ports/api"
	"campusauth/pkg/logger"
)

// Ключи Locals, заполняемые промежуточным ПО аутентификации.
const (
	localUserID      = "userID"
	localUserRole    = "userRole"
	localBearerToken = "bearerToken"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorForbidden          = "insufficient privileges"
)

// AuthenticatedUserID возвращает идентификатор пользователя, установленный
// промежуточным ПО аутентификации.
func AuthenticatedUserID(c fiber.Ctx) string {
	if id, ok := c.Locals(localUserID).(string); ok {
		return id
	}
	return ""
}

// BearerToken возвращает токен доступа текущего запроса.
func BearerToken(c fiber.Ctx) string {
	if token, ok := c.Locals(localBearerToken).(string); ok {
		return token
	}
	return ""
}

// NewRequestIDMiddleware присваивает каждому запросу идентификатор
// для сквозного логирования.
func NewRequestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}

		c.SetUserContext(logger.NewRequestIDContext(c.UserContext(), requestID))
		c.Set("X-Request-ID", requestID)

		return c.Next()
	}
}

// NewLoggerMiddleware создает промежуточное ПО для логирования HTTP запросов.
func NewLoggerMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx := c.UserContext()
		start := time.Now()

		log := logger.Log(ctx).With(
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.String("ip", c.IP()),
		)

		log.Debug(ctx, "request started")

		err := c.Next()

		logFields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}

		if err != nil {
			log.Error(ctx, "request failed", append(logFields, zap.Error(err))...)
			return fmt.Errorf("request processing error: %w", err)
		}

		log.Info(ctx, "request completed", logFields...)
		return nil
	}
}

// NewRecoveryMiddleware создает промежуточное ПО для восстановления после паники.
func NewRecoveryMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx := c.UserContext()
		log := logger.Log(ctx)

		defer func() {
			if r := recover(); r != nil {
				log.Error(ctx, "server panic",
					zap.String("error", fmt.Sprintf("%v", r)),
					zap.String("stack", string(debug.Stack())),
				)

				if err := c.Status(http.StatusInternalServerError).JSON(dto.ErrorResponse{
					Error: "internal server error",
				}); err != nil {
					log.Error(ctx, "failed to send error response after panic", zap.Error(err))
				}
			}
		}()

		return c.Next()
	}
}

// NewAuthMiddleware создает промежуточное ПО аутентификации: проверяет
// Bearer токен и помещает субъект и роль в контекст запроса.
func NewAuthMiddleware(authUseCase api.AuthUseCase) fiber.Handler {
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

		result := authUseCase.ValidateToken(ctx, token, false)
		if !result.Valid {
			log.Debug(ctx, "token rejected", zap.String("code", string(result.Code)))
			return c.Status(http.StatusUnauthorized).JSON(dto.ErrorResponse{Error: result.Message})
		}

		c.Locals(localUserID, result.UserID)
		c.Locals(localUserRole, result.Role)
		c.Locals(localBearerToken, token)

		return c.Next()
	}
}

// NewRequireRoleMiddleware ограничивает маршрут пользователями с указанной ролью.
func NewRequireRoleMiddleware(role string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if userRole, ok := c.Locals(localUserRole).(string); !ok || userRole != role {
			return c.Status(http.StatusForbidden).JSON(dto.ErrorResponse{Error: ErrorForbidden})
		}
		return c.Next()
	}
}
