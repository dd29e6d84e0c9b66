package middleware

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"campusauth/internal/gateway/app/dto"
	"campusauth/internal/gateway/ratelimit"
	"campusauth/pkg/logger"
)

// Константы для логирования.
const (
	LogRateLimitExceeded = "rate limit exceeded"

	ErrorTooManyRequests = "too many requests, please try again later"
)

// NewRateLimitMiddleware ограничивает частоту запросов на клиентский адрес.
// Адрес определяется по первой записи X-Forwarded-For, иначе по адресу
// соединения.
func NewRateLimitMiddleware(limiter *ratelimit.Limiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		clientIP := c.IP()
		if ips := c.IPs(); len(ips) > 0 {
			clientIP = ips[0]
		}

		if !limiter.Allow(clientIP) {
			ctx := c.UserContext()
			logger.Log(ctx).Warn(ctx, LogRateLimitExceeded,
				zap.String("ip", clientIP),
				zap.String("path", c.Path()),
			)

			c.Set("Retry-After", strconv.Itoa(int(limiter.RetryAfter().Seconds())+1))
			c.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			c.Set("X-RateLimit-Remaining", "0")

			return c.Status(http.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: ErrorTooManyRequests,
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(clientIP)))

		return c.Next()
	}
}
