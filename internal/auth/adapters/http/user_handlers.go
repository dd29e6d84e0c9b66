package http

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"campusauth/internal/auth/adapters/http/dto"
	"campusauth/internal/auth/ports/api"
	"campusauth/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerGetProfile     = "processing get profile request"
	LogHandlerActivate       = "processing activate user request"
	LogHandlerChangePassword = "processing change password request"
	LogHandlerSuspend        = "processing suspend user request"
	LogHandlerUnlock         = "processing unlock user request"
)

// UserHandler содержит HTTP обработчики управления учетными записями.
type UserHandler struct {
	userUseCase api.UserUseCase
}

// NewUserHandler создает новый обработчик учетных записей.
func NewUserHandler(userUseCase api.UserUseCase) *UserHandler {
	return &UserHandler{userUseCase: userUseCase}
}

// GetProfile возвращает профиль аутентифицированного пользователя.
func (h *UserHandler) GetProfile(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Debug(ctx, LogHandlerGetProfile)

	user, err := h.userUseCase.GetUserProfile(ctx, AuthenticatedUserID(c))
	if err != nil {
		log.Debug(ctx, "get profile failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(toUserProfile(user))
}

// Activate переводит учетную запись из PENDING_VERIFICATION в ACTIVE.
func (h *UserHandler) Activate(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerActivate)

	userID := c.Params("id")
	if userID == "" {
		return badRequest(c, "user id is required")
	}

	if err := h.userUseCase.ActivateUser(ctx, userID); err != nil {
		log.Debug(ctx, "activation failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(dto.MessageResponse{Message: "account activated"})
}

// ChangePassword меняет пароль аутентифицированного пользователя.
func (h *UserHandler) ChangePassword(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerChangePassword)

	var req dto.ChangePasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(c, ErrorInvalidRequest)
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return badRequest(c, "current and new passwords are required")
	}

	err := h.userUseCase.ChangePassword(ctx, AuthenticatedUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		log.Debug(ctx, "password change failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(dto.MessageResponse{Message: "password changed"})
}

// Suspend приостанавливает учетную запись.
func (h *UserHandler) Suspend(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerSuspend)

	userID := c.Params("id")
	if userID == "" {
		return badRequest(c, "user id is required")
	}

	if err := h.userUseCase.SuspendUser(ctx, userID); err != nil {
		log.Debug(ctx, "suspension failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(dto.MessageResponse{Message: "account suspended"})
}

// Unlock снимает блокировку учетной записи вручную.
func (h *UserHandler) Unlock(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerUnlock)

	userID := c.Params("id")
	if userID == "" {
		return badRequest(c, "user id is required")
	}

	if err := h.userUseCase.UnlockUser(ctx, userID); err != nil {
		log.Debug(ctx, "unlock failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(dto.MessageResponse{Message: "account unlocked"})
}
