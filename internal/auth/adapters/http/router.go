package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"campusauth/internal/auth/adapters/http/dto"
	"campusauth/internal/auth/domain/entities"
	"campusauth/internal/auth/ports/api"
)

const timeFormat = time.RFC3339

// SetupRouter настраивает маршрутизацию HTTP сервера аутентификации.
func SetupRouter(app *fiber.App, authUseCase api.AuthUseCase, userUseCase api.UserUseCase) {
	authHandler := NewAuthHandler(authUseCase)
	userHandler := NewUserHandler(userUseCase)

	// Middleware для всех запросов.
	app.Use(NewRequestIDMiddleware())
	app.Use(NewLoggerMiddleware())
	app.Use(NewRecoveryMiddleware())

	app.Get("/health", func(c fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(dto.MessageResponse{Message: "ok"})
	})

	// API версии 1.
	apiV1 := app.Group("/api/v1")

	// Auth routes (публичные).
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshTokens)
	authRoutes.Post("/validate", authHandler.ValidateToken)

	// Auth routes (защищенные).
	authProtected := authRoutes.Group("", NewAuthMiddleware(authUseCase))
	authProtected.Post("/logout", authHandler.Logout)
	authProtected.Post("/logout-all", authHandler.LogoutAll)

	// User routes.
	userRoutes := apiV1.Group("/users")
	userRoutes.Post("/:id/activate", userHandler.Activate)

	userProtected := userRoutes.Group("", NewAuthMiddleware(authUseCase))
	userProtected.Get("/profile", userHandler.GetProfile)
	userProtected.Post("/change-password", userHandler.ChangePassword)

	// Административные операции.
	adminRoutes := userProtected.Group("", NewRequireRoleMiddleware(entities.RoleAdmin.Code()))
	adminRoutes.Post("/:id/suspend", userHandler.Suspend)
	adminRoutes.Post("/:id/unlock", userHandler.Unlock)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(http.StatusNotFound).JSON(dto.ErrorResponse{Error: "route not found"})
	})
}
