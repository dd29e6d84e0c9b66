package app

import (
	"context"
	"fmt"

	"campusauth/internal/auth/domain/entities"
	"campusauth/internal/auth/domain/services"
	"campusauth/internal/auth/ports/api"
	"campusauth/internal/auth/ports/repositories"
	svc "campusauth/internal/auth/ports/services"
	"campusauth/pkg/clock"
	"campusauth/pkg/logger"

	"go.uber.org/zap"
)

const (
	methodGetUserProfile = "GetUserProfile"
	methodActivateUser   = "ActivateUser"
	methodChangePassword = "ChangePassword"
	methodSuspendUser    = "SuspendUser"
	methodUnlockUser     = "UnlockUser"

	msgFetchingProfile  = "fetching user profile"
	msgActivatingUser   = "activating user account"
	msgUserActivated    = "user account activated"
	msgChangingPassword = "changing user password"
	msgPasswordChanged  = "user password changed"
	msgSuspendingUser   = "suspending user account"
	msgUserSuspended    = "user account suspended"
	msgUnlockingUser    = "unlocking user account"
	msgUserUnlocked     = "user account unlocked"

	msgErrUserLookup     = "failed to find user"
	msgErrActivation     = "failed to activate user"
	msgErrPasswordChange = "failed to change password"
	msgErrSuspension     = "failed to suspend user"
	msgErrUnlock         = "failed to unlock user"

	errCtxParsingUserID   = "parsing user id"
	errCtxActivatingUser  = "activating user"
	errCtxChangingPass    = "changing password"
	errCtxPasswordPolicy  = "password change policy"
	errCtxSuspendingUser  = "suspending user"
	errCtxUnlockingUser   = "unlocking user"
	errCtxCurrentPassword = "verifying current password"
)

// UserUseCaseImpl реализует интерфейс api.UserUseCase.
type UserUseCaseImpl struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	policy      *services.AuthenticationPolicy
	clock       clock.Clock
}

// NewUserUseCase создает новый экземпляр сценариев управления пользователями.
func NewUserUseCase(userRepo repositories.UserRepository, passwordSvc svc.PasswordService, clk clock.Clock) api.UserUseCase {
	return &UserUseCaseImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		policy:      services.NewAuthenticationPolicy(),
		clock:       clk,
	}
}

// GetUserProfile возвращает агрегат пользователя по идентификатору.
func (u *UserUseCaseImpl) GetUserProfile(ctx context.Context, userID string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetUserProfile), zap.String("userID", userID))
	log.Debug(ctx, msgFetchingProfile)

	user, err := u.findUser(ctx, userID)
	if err != nil {
		log.Debug(ctx, msgErrUserLookup, zap.Error(err))
		return nil, err
	}

	return user, nil
}

// ActivateUser переводит учетную запись из PENDING_VERIFICATION в ACTIVE.
func (u *UserUseCaseImpl) ActivateUser(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodActivateUser), zap.String("userID", userID))
	log.Debug(ctx, msgActivatingUser)

	user, err := u.findUser(ctx, userID)
	if err != nil {
		log.Debug(ctx, msgErrUserLookup, zap.Error(err))
		return err
	}

	if err := user.Activate(u.clock.Now()); err != nil {
		log.Debug(ctx, msgErrActivation, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxActivatingUser, err)
	}

	if _, err := u.userRepo.Save(ctx, user); err != nil {
		log.Error(ctx, msgErrActivation, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxActivatingUser, err)
	}

	log.Info(ctx, msgUserActivated)
	return nil
}

// ChangePassword меняет пароль пользователя после проверки текущего.
func (u *UserUseCaseImpl) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	log := logger.Log(ctx).With(zap.String("method", methodChangePassword), zap.String("userID", userID))
	log.Debug(ctx, msgChangingPassword)

	user, err := u.findUser(ctx, userID)
	if err != nil {
		log.Debug(ctx, msgErrUserLookup, zap.Error(err))
		return err
	}

	current := entities.RawPasswordAttempt(currentPassword)
	if current.IsZero() {
		return fmt.Errorf("%s: %w", errCtxCurrentPassword, services.ErrInvalidCredentials)
	}

	replacement, err := entities.NewRawPassword(newPassword)
	if err != nil {
		log.Debug(ctx, msgErrPasswordChange, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxChangingPass, err)
	}

	if err := u.policy.ValidatePasswordChange(user, current, replacement, u.clock.Now()); err != nil {
		log.Debug(ctx, msgErrPasswordChange, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxPasswordPolicy, err)
	}

	valid, err := u.passwordSvc.Verify(ctx, current, user.Password)
	if err != nil {
		log.Error(ctx, msgErrPasswordChange, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxCurrentPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgErrPasswordChange)
		return fmt.Errorf("%s: %w", errCtxCurrentPassword, services.ErrInvalidCredentials)
	}

	hashed, err := u.passwordSvc.Hash(ctx, replacement)
	if err != nil {
		log.Error(ctx, msgErrPasswordChange, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxChangingPass, err)
	}

	if err := user.ChangePassword(hashed, u.clock.Now()); err != nil {
		log.Debug(ctx, msgErrPasswordChange, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxChangingPass, err)
	}

	if _, err := u.userRepo.Save(ctx, user); err != nil {
		log.Error(ctx, msgErrPasswordChange, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxChangingPass, err)
	}

	log.Info(ctx, msgPasswordChanged)
	return nil
}

// SuspendUser накладывает административную блокировку.
func (u *UserUseCaseImpl) SuspendUser(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodSuspendUser), zap.String("userID", userID))
	log.Debug(ctx, msgSuspendingUser)

	user, err := u.findUser(ctx, userID)
	if err != nil {
		log.Debug(ctx, msgErrUserLookup, zap.Error(err))
		return err
	}

	if err := user.Suspend(u.clock.Now()); err != nil {
		log.Debug(ctx, msgErrSuspension, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxSuspendingUser, err)
	}

	if _, err := u.userRepo.Save(ctx, user); err != nil {
		log.Error(ctx, msgErrSuspension, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxSuspendingUser, err)
	}

	log.Info(ctx, msgUserSuspended)
	return nil
}

// UnlockUser снимает блокировку (административное действие).
func (u *UserUseCaseImpl) UnlockUser(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodUnlockUser), zap.String("userID", userID))
	log.Debug(ctx, msgUnlockingUser)

	user, err := u.findUser(ctx, userID)
	if err != nil {
		log.Debug(ctx, msgErrUserLookup, zap.Error(err))
		return err
	}

	user.Unlock(u.clock.Now())

	if _, err := u.userRepo.Save(ctx, user); err != nil {
		log.Error(ctx, msgErrUnlock, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxUnlockingUser, err)
	}

	log.Info(ctx, msgUserUnlocked)
	return nil
}

// findUser загружает агрегат по строковому идентификатору.
func (u *UserUseCaseImpl) findUser(ctx context.Context, userID string) (*entities.User, error) {
	id, err := entities.ParseUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxParsingUserID, err)
	}

	user, err := u.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	return user, nil
}
