// Package http содержит маршрутизацию HTTP сервера шлюза.
package http

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	authhandlers "campusauth/internal/gateway/app/http/auth"
	"campusauth/internal/gateway/app/dto"
	"campusauth/internal/gateway/app/http/middleware"
	"campusauth/internal/gateway/config"
	"campusauth/internal/gateway/ports/services"
	"campusauth/internal/gateway/ratelimit"
)

// SetupRouter настраивает маршрутизацию HTTP сервера шлюза.
func SetupRouter(app *fiber.App, cfg *config.Config, authService services.AuthService, limiter *ratelimit.Limiter) {
	handler := authhandlers.NewHandler(authService)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())

	if cfg.RateLimit.Enabled {
		app.Use(middleware.NewRateLimitMiddleware(limiter))
	}

	app.Get("/health", func(c fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(dto.MessageResponse{Message: "ok"})
	})

	// API версии 1.
	apiV1 := app.Group("/api/v1")

	// Auth routes (публичные).
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", handler.Register)
	authRoutes.Post("/login", handler.Login)
	authRoutes.Post("/refresh", handler.RefreshTokens)

	// Auth routes (защищенные).
	authProtected := authRoutes.Group("", middleware.NewAuthMiddleware(authService))
	authProtected.Post("/logout", handler.Logout)
	authProtected.Post("/logout-all", handler.LogoutAll)

	// User routes (защищенные).
	userRoutes := apiV1.Group("/users", middleware.NewAuthMiddleware(authService))
	userRoutes.Get("/profile", handler.GetProfile)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(http.StatusNotFound).JSON(dto.ErrorResponse{Error: "route not found"})
	})
}
