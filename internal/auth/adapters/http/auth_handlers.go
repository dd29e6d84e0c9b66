// Package http предоставляет HTTP API сервиса аутентификации.
package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"campusauth/internal/auth/adapters/http/dto"
	"campusauth/internal/auth/domain/entities"
	domain "campusauth/internal/auth/domain/services"
	"campusauth/internal/auth/ports/api"
	"campusauth/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister = "processing register request"
	LogHandlerLogin    = "processing login request"
	//nolint:gosec
	LogHandlerRefresh   = "processing refresh token request"
	LogHandlerValidate  = "processing validate token request"
	LogHandlerLogout    = "processing logout request"
	LogHandlerLogoutAll = "processing logout from all devices request"

	ErrorInvalidRequest = "invalid request"
)

// AuthHandler содержит HTTP обработчики операций аутентификации.
type AuthHandler struct {
	authUseCase api.AuthUseCase
}

// NewAuthHandler создает новый обработчик аутентификации.
func NewAuthHandler(authUseCase api.AuthUseCase) *AuthHandler {
	return &AuthHandler{authUseCase: authUseCase}
}

// statusForError переводит доменную ошибку в HTTP статус.
func statusForError(err error) int {
	var locked *domain.AccountLockedError

	switch {
	case errors.As(err, &locked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidRefreshToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountNotActivated):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, entities.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrInvalidEmail),
		errors.Is(err, entities.ErrEmptyEmail),
		errors.Is(err, entities.ErrEmailTooLong),
		errors.Is(err, entities.ErrInvalidUserID),
		errors.Is(err, domain.ErrPasswordUnchanged),
		isPasswordPolicyError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isPasswordPolicyError(err error) bool {
	return errors.Is(err, entities.ErrPasswordTooShort) ||
		errors.Is(err, entities.ErrPasswordTooLong) ||
		errors.Is(err, entities.ErrPasswordNoUppercase) ||
		errors.Is(err, entities.ErrPasswordNoLowercase) ||
		errors.Is(err, entities.ErrPasswordNoDigit) ||
		errors.Is(err, entities.ErrPasswordNoSymbol)
}

// respondError отправляет унифицированный ответ с ошибкой. Для
// заблокированной учетной записи в ответ включается момент разблокировки.
func respondError(c fiber.Ctx, err error) error {
	resp := dto.ErrorResponse{Error: err.Error()}

	var locked *domain.AccountLockedError
	if errors.As(err, &locked) {
		resp.LockedUntil = locked.LockedUntil
	}

	return c.Status(statusForError(err)).JSON(resp)
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(dto.ErrorResponse{Error: message})
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(c, ErrorInvalidRequest)
	}

	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return badRequest(c, "email, password, firstName and lastName are required")
	}

	user, err := h.authUseCase.Register(ctx, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		log.Debug(ctx, "register failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(dto.RegisterResponse{
		UserID:    user.ID.String(),
		Email:     user.Email.String(),
		Status:    user.Status.String(),
		CreatedAt: user.CreatedAt.Format(timeFormat),
	})
}

// Login обрабатывает запрос на вход пользователя.
func (h *AuthHandler) Login(c fiber.Ctx) error {
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

	result, err := h.authUseCase.Login(ctx, req.Email, req.Password, api.LoginContext{
		IPAddress:  clientIP(c),
		UserAgent:  c.Get(fiber.HeaderUserAgent),
		RememberMe: req.RememberMe,
	})
	if err != nil {
		log.Debug(ctx, "login failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(dto.LoginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    result.Tokens.TokenType,
		ExpiresAt:    result.Tokens.ExpiresAt,
		ExpiresIn:    result.Tokens.ExpiresIn,
		UserID:       result.User.ID.String(),
		Email:        result.User.Email.String(),
		FirstName:    result.User.FirstName,
		LastName:     result.User.LastName,
		Role:         result.User.Role.Code(),
		Authorities:  result.Authorities,
		IsFirstLogin: result.IsFirstLogin,
	})
}

// RefreshTokens обрабатывает запрос на обновление пары токенов.
func (h *AuthHandler) RefreshTokens(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerRefresh)

	var req dto.RefreshRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(c, ErrorInvalidRequest)
	}

	if req.RefreshToken == "" {
		return badRequest(c, "refresh token is required")
	}

	pair, err := h.authUseCase.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		log.Debug(ctx, "token refresh failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(dto.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresAt:    pair.ExpiresAt,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// ValidateToken обрабатывает запрос на проверку токена доступа.
// Ответ всегда 200: отказ выражается телом с valid=false и кодом.
func (h *AuthHandler) ValidateToken(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Debug(ctx, LogHandlerValidate)

	var req dto.ValidateRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Debug(ctx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(c, ErrorInvalidRequest)
	}

	if req.Token == "" {
		return badRequest(c, "token is required")
	}

	result := h.authUseCase.ValidateToken(ctx, req.Token, req.IncludeDetails)

	resp := dto.ValidateResponse{
		Valid:   result.Valid,
		Code:    string(result.Code),
		Message: result.Message,
	}
	if result.Valid {
		resp.UserID = result.UserID
		resp.Email = result.Email
		resp.Role = result.Role
		resp.Authorities = result.Authorities
		expiresAt := result.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	if result.User != nil {
		resp.User = toUserProfile(result.User)
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// Logout обрабатывает запрос на выход с текущего устройства.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerLogout)

	userID := AuthenticatedUserID(c)
	token := BearerToken(c)

	if err := h.authUseCase.Logout(ctx, userID, token); err != nil {
		log.Debug(ctx, "logout failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(dto.MessageResponse{Message: "logged out successfully"})
}

// LogoutAll обрабатывает запрос на выход со всех устройств.
func (h *AuthHandler) LogoutAll(c fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.Log(ctx)
	log.Info(ctx, LogHandlerLogoutAll)

	userID := AuthenticatedUserID(c)

	if err := h.authUseCase.LogoutFromAllDevices(ctx, userID); err != nil {
		log.Debug(ctx, "logout from all devices failed", zap.Error(err))
		return respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(dto.MessageResponse{Message: "logged out from all devices"})
}

// clientIP определяет адрес клиента: первая запись X-Forwarded-For,
// иначе адрес соединения.
func clientIP(c fiber.Ctx) string {
	if ips := c.IPs(); len(ips) > 0 {
		return ips[0]
	}
	return c.IP()
}

func toUserProfile(user *entities.User) *dto.UserProfile {
	return &dto.UserProfile{
		UserID:              user.ID.String(),
		Email:               user.Email.String(),
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		Role:                user.Role.Code(),
		Status:              user.Status.String(),
		CreatedAt:           user.CreatedAt,
		LastLoginAt:         user.LastLoginAt,
		FailedLoginAttempts: user.FailedLoginAttempts,
		LockedUntil:         user.LockedUntil,
	}
}
