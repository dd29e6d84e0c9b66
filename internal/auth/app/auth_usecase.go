// Package app реализует сценарии использования сервиса аутентификации.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusauth/internal/auth/domain/entities"
	"campusauth/internal/auth/domain/services"
	"campusauth/internal/auth/ports/api"
	"campusauth/internal/auth/ports/repositories"
	svc "campusauth/internal/auth/ports/services"
	"campusauth/pkg/clock"
	"campusauth/pkg/logger"

	"go.uber.org/zap"
)

// Политика времени жизни токенов.
const (
	// DefaultAccessTokenTTL - срок действия токена доступа.
	DefaultAccessTokenTTL = 24 * time.Hour
	// ExtendedAccessTokenTTL - срок действия при запросе remember-me.
	ExtendedAccessTokenTTL = 30 * 24 * time.Hour
	// RefreshTokenTTL - срок действия refresh-токена.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// maxSaveAttempts ограничивает повторы записи при конфликте версий.
	maxSaveAttempts = 3

	// notifyTimeout ограничивает фоновую доставку уведомлений.
	notifyTimeout = 5 * time.Second

	// BearerTokenType - тип выдаваемых токенов.
	BearerTokenType = "Bearer"
)

const (
	methodRegister       = "Register"
	methodLogin          = "Login"
	methodRefreshTokens  = "RefreshTokens"
	methodLogout         = "Logout"
	methodLogoutAll      = "LogoutFromAllDevices"
	methodGenerateTokens = "generateTokenPair"

	msgStartRegistration   = "starting user registration"
	msgInvalidRegistration = "invalid registration data"
	msgEmailExists         = "user with this email already exists"
	msgUserRegistered      = "user registered successfully"
	msgLoginAttempt        = "login attempt"
	msgLoginNonExistent    = "login attempt with non-existent email"
	msgLoginRejected       = "login rejected by authentication policy"
	msgInvalidPasswordAuth = "invalid password provided"
	msgAccountAutoLocked   = "account locked after repeated failed login attempts"
	msgUserLoggedIn        = "user logged in successfully"
	msgRefreshingTokens    = "refreshing tokens"
	msgTokensRefreshed     = "tokens refreshed successfully"
	msgProcessingLogout    = "processing logout request"
	msgUserLoggedOut       = "user logged out successfully"
	msgLogoutEverywhere    = "revoking sessions on all devices"
	msgTokenPairGenerated  = "token pair generated successfully"

	msgErrCheckExistingUser  = "failed to check existing user"
	msgErrHashPassword       = "failed to hash password"
	msgErrCreateUser         = "failed to create user"
	msgErrFindingUser        = "error finding user by email"
	msgErrVerifyingPassword  = "error verifying password"
	msgErrRecordingFailure   = "failed to record failed login attempt"
	msgErrPersistingLogin    = "failed to persist successful login"
	msgErrGenerateTokens     = "failed to generate tokens"
	msgErrWelcomeEmail       = "failed to send welcome email"
	msgErrSuspiciousActivity = "failed to deliver suspicious activity notification"
	msgErrFindingUserByToken = "failed to find user for refresh token"
	msgErrRevokingTokens     = "failed to revoke refresh tokens"
	msgErrBlacklistingToken  = "failed to blacklist access token"

	errCtxValidatingEmail     = "validating email"
	errCtxValidatingPassword  = "validating password"
	errCtxCheckingUser        = "checking existing user"
	errCtxEmailRegistered     = "email already registered"
	errCtxHashingPassword     = "hashing password"
	errCtxCreatingUser        = "creating user"
	errCtxSavingUser          = "saving user"
	errCtxInvalidCredentials  = "invalid credentials"
	errCtxLoginPolicy         = "login policy"
	errCtxGeneratingTokens    = "generating tokens"
	errCtxFindingRefreshToken = "finding refresh token"
	errCtxRefreshTokenExpired = "refresh token expired"
	errCtxFindingUser         = "finding user"
	errCtxRevokingTokens      = "revoking refresh tokens"
	errCtxBlacklistingToken   = "blacklisting access token"
	errCtxStoringRefreshToken = "storing refresh token"
)

// AuthUseCaseImpl реализует интерфейс api.AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	tokenRepo   repositories.TokenRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
	blacklist   svc.TokenBlacklist
	notifier    svc.NotificationService
	policy      *services.AuthenticationPolicy
	clock       clock.Clock
}

// NewAuthUseCase создает новый экземпляр сценариев аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	tokenRepo repositories.TokenRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
	blacklist svc.TokenBlacklist,
	notifier svc.NotificationService,
	clk clock.Clock,
) api.AuthUseCase {
	return &AuthUseCaseImpl{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		blacklist:   blacklist,
		notifier:    notifier,
		policy:      services.NewAuthenticationPolicy(),
		clock:       clk,
	}
}

// Register создает нового пользователя в статусе PENDING_VERIFICATION.
func (a *AuthUseCaseImpl) Register(ctx context.Context, email, password, firstName, lastName string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("email", email))
	log.Debug(ctx, msgStartRegistration)

	addr, err := entities.NewEmail(email)
	if err != nil {
		log.Debug(ctx, msgInvalidRegistration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
	}

	rawPassword, err := entities.NewRawPassword(password)
	if err != nil {
		log.Debug(ctx, msgInvalidRegistration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	exists, err := a.userRepo.ExistsByEmail(ctx, addr)
	if err != nil {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if exists {
		log.Debug(ctx, msgEmailExists)
		return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrUserAlreadyExists)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, rawPassword)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	newUser, err := entities.NewUser(addr, hashedPassword, entities.RoleUser, firstName, lastName, a.clock.Now())
	if err != nil {
		log.Debug(ctx, msgInvalidRegistration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	savedUser, err := a.userRepo.Save(ctx, newUser)
	if err != nil {
		log.Error(ctx, msgErrCreateUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxSavingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.String("userID", savedUser.ID.String()))

	a.fireAndForget(ctx, msgErrWelcomeEmail, func(nctx context.Context) error {
		return a.notifier.SendWelcomeEmail(nctx, savedUser.ID.String(), savedUser.Email.String(), savedUser.FullName())
	})

	return savedUser, nil
}

// Login аутентифицирует пользователя по email и паролю и выдает пару токенов.
// Непредвиденные внутренние сбои маскируются под неверные учетные данные.
func (a *AuthUseCaseImpl) Login(ctx context.Context, email, password string, client api.LoginContext) (*api.LoginResult, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("email", email))
	log.Debug(ctx, msgLoginAttempt)

	now := a.clock.Now()

	addr, err := entities.NewEmail(email)
	if err != nil {
		log.Debug(ctx, msgLoginNonExistent)
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	user, err := a.userRepo.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgLoginNonExistent)
		} else {
			// Внутренняя ошибка не раскрывается вызывающему.
			log.Error(ctx, msgErrFindingUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	if err := a.policy.ValidateForLogin(user, now); err != nil {
		log.Debug(ctx, msgLoginRejected, zap.Error(err), zap.String("status", user.Status.String()))
		return nil, fmt.Errorf("%s: %w", errCtxLoginPolicy, err)
	}

	// Попытка не проходит проверку стойкости: любая строка сверяется
	// с хэшем, и каждое несовпадение учитывается политикой блокировки.
	valid := false
	if attempt := entities.RawPasswordAttempt(password); !attempt.IsZero() {
		valid, err = a.passwordSvc.Verify(ctx, attempt, user.Password)
		if err != nil {
			log.Error(ctx, msgErrVerifyingPassword, zap.Error(err), zap.String("userID", user.ID.String()))
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
	}
	if !valid {
		a.handleFailedLogin(ctx, user, client)
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	isFirstLogin := user.IsFirstLogin()

	updatedUser, err := a.saveWithRetry(ctx, user, func(u *entities.User) error {
		return u.RecordSuccessfulLogin(a.clock.Now())
	})
	if err != nil {
		log.Error(ctx, msgErrPersistingLogin, zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	accessTTL := DefaultAccessTokenTTL
	if client.RememberMe {
		accessTTL = ExtendedAccessTokenTTL
	}

	tokens, err := a.generateTokenPair(ctx, updatedUser, accessTTL)
	if err != nil {
		log.Error(ctx, msgErrGenerateTokens, zap.Error(err), zap.String("userID", updatedUser.ID.String()))
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingTokens, services.ErrTokenGenerationFailed)
	}

	log.Info(ctx, msgUserLoggedIn,
		zap.String("userID", updatedUser.ID.String()),
		zap.String("ip", client.IPAddress))

	return &api.LoginResult{
		Tokens:       tokens,
		User:         updatedUser,
		Authorities:  []string{updatedUser.Role.Code()},
		IsFirstLogin: isFirstLogin,
	}, nil
}

// handleFailedLogin фиксирует неудачную попытку входа. Сбои обработчика
// логируются и не влияют на исход аутентификации.
func (a *AuthUseCaseImpl) handleFailedLogin(ctx context.Context, user *entities.User, client api.LoginContext) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("userID", user.ID.String()))
	log.Debug(ctx, msgInvalidPasswordAuth)

	updated, err := a.saveWithRetry(ctx, user, func(u *entities.User) error {
		u.RecordFailedLoginAttempt(a.clock.Now())
		return nil
	})
	if err != nil {
		log.Error(ctx, msgErrRecordingFailure, zap.Error(err))
		return
	}

	if updated.IsTemporarilyLocked(a.clock.Now()) {
		log.Warn(ctx, msgAccountAutoLocked, zap.Int("failedAttempts", updated.FailedLoginAttempts))

		a.fireAndForget(ctx, msgErrSuspiciousActivity, func(nctx context.Context) error {
			return a.notifier.NotifySuspiciousActivity(nctx,
				updated.ID.String(), updated.Email.String(), client.IPAddress, client.UserAgent)
		})
	}
}

// RefreshTokens обменивает refresh-токен на новую пару токенов.
// Использованный токен отзывается: одна активная сессия на пользователя.
func (a *AuthUseCaseImpl) RefreshTokens(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRefreshTokens))
	log.Debug(ctx, msgRefreshingTokens)

	now := a.clock.Now()

	claims, err := a.tokenSvc.ValidateToken(ctx, refreshToken)
	if err != nil || claims.Kind != services.KindRefresh {
		log.Debug(ctx, errCtxFindingRefreshToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingRefreshToken, services.ErrInvalidRefreshToken)
	}

	stored, err := a.tokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		log.Debug(ctx, errCtxFindingRefreshToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingRefreshToken, services.ErrInvalidRefreshToken)
	}

	log = log.With(zap.String("userID", stored.UserID))

	if now.After(stored.ExpiresAt) {
		if err := a.tokenRepo.DeleteUserTokens(ctx, stored.UserID); err != nil {
			log.Error(ctx, msgErrRevokingTokens, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxRefreshTokenExpired, services.ErrInvalidRefreshToken)
	}

	userID, err := entities.ParseUserID(stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, services.ErrInvalidRefreshToken)
	}

	user, err := a.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Error(ctx, msgErrFindingUserByToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, services.ErrInvalidRefreshToken)
	}

	if !user.CanLogin(now) {
		log.Debug(ctx, msgLoginRejected, zap.String("status", user.Status.String()))
		return nil, fmt.Errorf("%s: %w", errCtxFindingRefreshToken, services.ErrInvalidRefreshToken)
	}

	tokens, err := a.generateTokenPair(ctx, user, DefaultAccessTokenTTL)
	if err != nil {
		log.Error(ctx, msgErrGenerateTokens, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingTokens, services.ErrTokenGenerationFailed)
	}

	log.Info(ctx, msgTokensRefreshed)
	return tokens, nil
}

// Logout удаляет refresh-токены пользователя и заносит предъявленный
// access токен в список отзыва на оставшееся время его жизни.
func (a *AuthUseCaseImpl) Logout(ctx context.Context, userID, accessToken string) error {
	log := logger.Log(ctx).With(zap.String("method", methodLogout), zap.String("userID", userID))
	log.Debug(ctx, msgProcessingLogout)

	if err := a.tokenRepo.DeleteUserTokens(ctx, userID); err != nil {
		log.Error(ctx, msgErrRevokingTokens, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxRevokingTokens, err)
	}

	expiresAt, err := a.tokenSvc.ExpirationUnix(ctx, accessToken)
	if err != nil {
		// Токен некорректен или уже истек - отзывать нечего.
		log.Debug(ctx, msgErrBlacklistingToken, zap.Error(err))
		return nil
	}

	remaining := time.Unix(expiresAt, 0).Sub(a.clock.Now())
	if remaining > 0 {
		if err := a.blacklist.Blacklist(ctx, accessToken, remaining); err != nil {
			log.Error(ctx, msgErrBlacklistingToken, zap.Error(err))
			return fmt.Errorf("%s: %w", errCtxBlacklistingToken, err)
		}
	}

	log.Info(ctx, msgUserLoggedOut)
	return nil
}

// LogoutFromAllDevices удаляет все refresh-токены пользователя.
func (a *AuthUseCaseImpl) LogoutFromAllDevices(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodLogoutAll), zap.String("userID", userID))
	log.Debug(ctx, msgLogoutEverywhere)

	if err := a.tokenRepo.DeleteUserTokens(ctx, userID); err != nil {
		log.Error(ctx, msgErrRevokingTokens, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxRevokingTokens, err)
	}

	log.Info(ctx, msgUserLoggedOut)
	return nil
}

// generateTokenPair выпускает пару токенов и сохраняет refresh-токен,
// предварительно удалив предыдущие токены пользователя.
func (a *AuthUseCaseImpl) generateTokenPair(ctx context.Context, user *entities.User, accessTTL time.Duration) (*services.TokenPair, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodGenerateTokens),
		zap.String("userID", user.ID.String()),
	)

	accessToken, accessExpires, err := a.tokenSvc.GenerateAccessToken(ctx, user, accessTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingTokens, err)
	}

	refreshToken, refreshExpires, err := a.tokenSvc.GenerateRefreshToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingTokens, err)
	}

	if err := a.tokenRepo.DeleteUserTokens(ctx, user.ID.String()); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxRevokingTokens, err)
	}

	if err := a.tokenRepo.Store(ctx, &services.RefreshToken{
		UserID:    user.ID.String(),
		Token:     refreshToken,
		ExpiresAt: refreshExpires,
		CreatedAt: a.clock.Now(),
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxStoringRefreshToken, err)
	}

	log.Debug(ctx, msgTokenPairGenerated)

	return &services.TokenPair{
		UserID:       user.ID.String(),
		Email:        user.Email.String(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    BearerTokenType,
		ExpiresAt:    accessExpires,
		ExpiresIn:    int64(accessTTL.Seconds()),
	}, nil
}

// saveWithRetry применяет мутацию и сохраняет агрегат, повторяя попытку
// со свежей копией при конфликте версий. Две гонящиеся неудачные попытки
// не должны терять инкременты счетчика блокировки.
func (a *AuthUseCaseImpl) saveWithRetry(ctx context.Context, user *entities.User, mutate func(*entities.User) error) (*entities.User, error) {
	current := user

	for attempt := 1; ; attempt++ {
		if err := mutate(current); err != nil {
			return nil, err
		}

		saved, err := a.userRepo.Save(ctx, current)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) || attempt >= maxSaveAttempts {
			return nil, fmt.Errorf("%s: %w", errCtxSavingUser, err)
		}

		fresh, findErr := a.userRepo.FindByID(ctx, current.ID)
		if findErr != nil {
			return nil, fmt.Errorf("%s: %w", errCtxFindingUser, findErr)
		}
		current = fresh
	}
}

// fireAndForget выполняет побочный эффект в фоне; сбой логируется
// и никогда не влияет на основную операцию.
func (a *AuthUseCaseImpl) fireAndForget(ctx context.Context, failureMsg string, fn func(context.Context) error) {
	log := logger.Log(ctx)

	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		if err := fn(nctx); err != nil {
			log.Warn(nctx, failureMsg, zap.Error(err))
		}
	}()
}
