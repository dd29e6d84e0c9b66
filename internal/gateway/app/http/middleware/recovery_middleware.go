package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"campusauth/internal/gateway/app/dto"
	"campusauth/pkg/logger"
)

// NewRecoveryMiddleware создает новое промежуточное ПО для восстановления после паники.
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
