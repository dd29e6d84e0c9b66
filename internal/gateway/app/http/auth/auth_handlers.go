// Package auth содержит HTTP обработчики для работы с сервисом аутентификации.
package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"campusauth/internal/gateway/app/dto"
	"campusauth/internal/gateway/app/http/middleware"
	"campusauth/internal/gateway/ports/client"
	"campusauth/internal/gateway/ports/services"
	"campusauth/pkg/logger"
	"campusauth/pkg/resilience"
)

// Константы для логирования.
const (
	LogHandlerRegister = "gateway handler: register"
	LogHandlerLogin    = "gateway handler: login"
	//nolint:gosec
	LogHandlerRefreshTokens = "gateway handler: refresh tokens"
	LogHandlerLogout        = "gateway handler: logout"
	LogHandlerLogoutAll     = "gateway handler: logout from all devices"
	LogHandlerGetProfile    = "gateway handler: get profile"

	ErrorInvalidRequest       = "invalid request"
	ErrorFailedToServeRequest = "failed to serve request"
	ErrorServiceUnavailable   = "authentication service unavailable"
)

// Handler содержит HTTP обработчики шлюза для операций аутентификации.
type Handler struct {
	authService services.AuthService
}

// NewHandler создает новый экземпляр обработчика аутентификации.
func NewHandler(authService services.AuthService) *Handler {
	return &Handler{
		authService: authService,
	}
}

// relayError повторяет клиенту ответ сервиса аутентификации; недоступность
// сервиса выражается статусом 503.
func relayError(c fiber.Ctx, err error) error {
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		return c.Status(statusErr.StatusCode).JSON(statusErr.Response)
	}

	if errors.Is(err, resilience.ErrCircuitOpen) {
		return c.Status(http.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: ErrorServiceUnavailable})
	}

	return c.Status(http.StatusBadGateway).JSON(dto.ErrorResponse{Error: ErrorServiceUnavailable})
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(dto.ErrorResponse{Error: message})
}

// Register проксирует запрос на регистрацию нового пользователя.
func (h *Handler) Register(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(c, ErrorInvalidRequest)
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	response, err := h.authService.Register(ctx, &req)
	if err != nil {
		log.Warn(ctx, ErrorFailedToServeRequest, zap.Error(err))
		return relayError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(response)
}

// Login проксирует запрос на вход пользователя.
func (h *Handler) Login(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(c, ErrorInvalidRequest)
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	response, err := h.authService.Login(ctx, &req)
	if err != nil {
		log.Debug(ctx, ErrorFailedToServeRequest, zap.Error(err))
		return relayError(c, err)
	}

	return c.Status(http.StatusOK).JSON(response)
}

// RefreshTokens проксирует запрос на обновление токенов.
func (h *Handler) RefreshTokens(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerRefreshTokens)

	var req dto.RefreshRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(c, ErrorInvalidRequest)
	}

	if req.RefreshToken == "" {
		return badRequest(c, "refresh token is required")
	}

	response, err := h.authService.RefreshTokens(ctx, &req)
	if err != nil {
		log.Debug(ctx, ErrorFailedToServeRequest, zap.Error(err))
		return relayError(c, err)
	}

	return c.Status(http.StatusOK).JSON(response)
}

// Logout проксирует запрос на выход с текущего устройства.
func (h *Handler) Logout(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerLogout)

	if err := h.authService.Logout(ctx, middleware.BearerToken(c)); err != nil {
		log.Warn(ctx, ErrorFailedToServeRequest, zap.Error(err))
		return relayError(c, err)
	}

	return c.Status(http.StatusOK).JSON(dto.MessageResponse{Message: "logged out successfully"})
}

// LogoutAll проксирует запрос на выход со всех устройств.
func (h *Handler) LogoutAll(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerLogoutAll)

	if err := h.authService.LogoutFromAllDevices(ctx, middleware.BearerToken(c)); err != nil {
		log.Warn(ctx, ErrorFailedToServeRequest, zap.Error(err))
		return relayError(c, err)
	}

	return c.Status(http.StatusOK).JSON(dto.MessageResponse{Message: "logged out from all devices"})
}

// GetProfile проксирует запрос на получение профиля пользователя.
func (h *Handler) GetProfile(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Debug(ctx, LogHandlerGetProfile)

	profile, err := h.authService.GetUserProfile(ctx, middleware.BearerToken(c))
	if err != nil {
		log.Warn(ctx, ErrorFailedToServeRequest, zap.Error(err))
		return relayError(c, err)
	}

	return c.Status(http.StatusOK).JSON(profile)
}
