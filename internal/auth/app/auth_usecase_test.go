package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campusauth/internal/auth/app"
	"campusauth/internal/auth/domain/entities"
	"campusauth/internal/auth/domain/services"
	"campusauth/internal/auth/ports/api"
	"campusauth/internal/auth/ports/repositories"
	"campusauth/pkg/clock"
)

var errDatabase = errors.New("database connection error")

const (
	testEmail       = "ivan.petrov@example.com"
	testPassword    = "Str0ng!Pass"
	testHashedValue = "$2a$10$abcdefghijklmnopqrstuv"
	testAccessToken = "access-token-123"
	//nolint:gosec
	testRefreshToken = "refresh-token-456"
)

type useCaseFixture struct {
	userRepo  *mockUserRepository
	tokenRepo *mockTokenRepository
	password  *mockPasswordService
	tokens    *mockTokenService
	blacklist *mockTokenBlacklist
	notifier  *mockNotificationService
	clock     *clock.Fake
	useCase   api.AuthUseCase
}

func newUseCaseFixture(t *testing.T) *useCaseFixture {
	t.Helper()

	f := &useCaseFixture{
		userRepo:  &mockUserRepository{},
		tokenRepo: &mockTokenRepository{},
		password:  &mockPasswordService{},
		tokens:    &mockTokenService{},
		blacklist: &mockTokenBlacklist{},
		notifier:  &mockNotificationService{},
		clock:     clock.NewFake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)),
	}

	// Уведомления уходят в фоне и не влияют на исход операций.
	f.notifier.On("SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifier.On("NotifySuspiciousActivity", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f.useCase = app.NewAuthUseCase(f.userRepo, f.tokenRepo, f.password, f.tokens, f.blacklist, f.notifier, f.clock)
	return f
}

func (f *useCaseFixture) activeUser(t *testing.T) *entities.User {
	t.Helper()

	email, err := entities.NewEmail(testEmail)
	require.NoError(t, err)

	password, err := entities.NewHashedPassword(testHashedValue)
	require.NoError(t, err)

	user, err := entities.NewUser(email, password, entities.RoleUser, "Ivan", "Petrov", f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, user.Activate(f.clock.Now()))

	return user
}

func (f *useCaseFixture) expectTokenPair(user *entities.User, accessTTL time.Duration) {
	now := f.clock.Now()
	f.tokens.On("GenerateAccessToken", mock.Anything, mock.Anything, accessTTL).
		Return(testAccessToken, now.Add(accessTTL), nil).Once()
	f.tokens.On("GenerateRefreshToken", mock.Anything, mock.Anything).
		Return(testRefreshToken, now.Add(app.RefreshTokenTTL), nil).Once()
	f.tokenRepo.On("DeleteUserTokens", mock.Anything, user.ID.String()).Return(nil).Once()
	f.tokenRepo.On("Store", mock.Anything, mock.MatchedBy(func(rt *services.RefreshToken) bool {
		return rt.UserID == user.ID.String() && rt.Token == testRefreshToken
	})).Return(nil).Once()
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("success - user registered in pending status", func(t *testing.T) {
		f := newUseCaseFixture(t)

		hashed, err := entities.NewHashedPassword(testHashedValue)
		require.NoError(t, err)

		f.userRepo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil).Once()
		f.password.On("Hash", mock.Anything, mock.Anything).Return(hashed, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Status == entities.StatusPendingVerification && u.Email.String() == testEmail
		})).Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
			return u, nil
		}).Once()

		user, err := f.useCase.Register(ctx, testEmail, testPassword, "Ivan", "Petrov")

		require.NoError(t, err)
		assert.Equal(t, entities.StatusPendingVerification, user.Status)
		assert.Equal(t, entities.RoleUser, user.Role)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("error - duplicate email", func(t *testing.T) {
		f := newUseCaseFixture(t)

		f.userRepo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(true, nil).Once()

		user, err := f.useCase.Register(ctx, testEmail, testPassword, "Ivan", "Petrov")

		require.ErrorIs(t, err, services.ErrUserAlreadyExists)
		assert.Nil(t, user)
		f.password.AssertNotCalled(t, "Hash", mock.Anything, mock.Anything)
	})

	t.Run("error - invalid email rejected before any lookup", func(t *testing.T) {
		f := newUseCaseFixture(t)

		_, err := f.useCase.Register(ctx, "not-an-email", testPassword, "Ivan", "Petrov")

		require.ErrorIs(t, err, entities.ErrInvalidEmail)
		f.userRepo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	})

	t.Run("error - weak password", func(t *testing.T) {
		f := newUseCaseFixture(t)

		_, err := f.useCase.Register(ctx, testEmail, "weakpass", "Ivan", "Petrov")

		require.ErrorIs(t, err, entities.ErrPasswordNoUppercase)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	client := api.LoginContext{IPAddress: "203.0.113.7", UserAgent: "test-agent"}

	t.Run("success - first login issues token pair", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()
		f.password.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.Anything).
			Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
				return u, nil
			}).Once()
		f.expectTokenPair(user, app.DefaultAccessTokenTTL)

		result, err := f.useCase.Login(ctx, testEmail, testPassword, client)

		require.NoError(t, err)
		assert.True(t, result.IsFirstLogin)
		assert.Equal(t, testAccessToken, result.Tokens.AccessToken)
		assert.Equal(t, testRefreshToken, result.Tokens.RefreshToken)
		assert.Equal(t, app.BearerTokenType, result.Tokens.TokenType)
		assert.Equal(t, []string{entities.RoleUser.Code()}, result.Authorities)
		require.NotNil(t, result.User.LastLoginAt)
	})

	t.Run("success - remember me extends access token ttl", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()
		f.password.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.Anything).
			Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
				return u, nil
			}).Once()
		f.expectTokenPair(user, app.ExtendedAccessTokenTTL)

		remembered := client
		remembered.RememberMe = true

		result, err := f.useCase.Login(ctx, testEmail, testPassword, remembered)

		require.NoError(t, err)
		assert.Equal(t, int64(app.ExtendedAccessTokenTTL.Seconds()), result.Tokens.ExpiresIn)
		f.tokens.AssertExpectations(t)
	})

	t.Run("error - unknown email masked as invalid credentials", func(t *testing.T) {
		f := newUseCaseFixture(t)

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, entities.ErrUserNotFound).Once()

		_, err := f.useCase.Login(ctx, testEmail, testPassword, client)

		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("error - repository failure masked as invalid credentials", func(t *testing.T) {
		f := newUseCaseFixture(t)

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, errDatabase).Once()

		_, err := f.useCase.Login(ctx, testEmail, testPassword, client)

		require.ErrorIs(t, err, services.ErrInvalidCredentials)
		assert.NotErrorIs(t, err, errDatabase)
	})

	t.Run("error - wrong password increments failed attempts", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()
		f.password.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.FailedLoginAttempts == 1
		})).Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
			return u, nil
		}).Once()

		_, err := f.useCase.Login(ctx, testEmail, "Wr0ng!Pass1", client)

		require.ErrorIs(t, err, services.ErrInvalidCredentials)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("error - fifth failed attempt locks the account", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)
		user.FailedLoginAttempts = entities.MaxFailedLoginAttempts - 1

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()
		f.password.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Status == entities.StatusLocked && u.LockedUntil != nil
		})).Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
			return u, nil
		}).Once()

		_, err := f.useCase.Login(ctx, testEmail, "Wr0ng!Pass1", client)

		require.ErrorIs(t, err, services.ErrInvalidCredentials)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("error - repeated weak guesses lock the account", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil)
		// Попытка не проверяется на стойкость: произвольная строка
		// доходит до сравнения с хэшем.
		f.password.On("Verify", mock.Anything, mock.MatchedBy(func(p entities.Password) bool {
			return !p.IsHashed() && p.Value() == "wrong"
		}), mock.Anything).Return(false, nil)
		f.userRepo.On("Save", mock.Anything, mock.Anything).
			Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
				return u, nil
			})

		for i := 0; i < entities.MaxFailedLoginAttempts; i++ {
			_, err := f.useCase.Login(ctx, testEmail, "wrong", client)
			require.ErrorIs(t, err, services.ErrInvalidCredentials)
		}

		assert.Equal(t, entities.MaxFailedLoginAttempts, user.FailedLoginAttempts)
		assert.Equal(t, entities.StatusLocked, user.Status)
		require.NotNil(t, user.LockedUntil)

		_, err := f.useCase.Login(ctx, testEmail, "wrong", client)
		require.ErrorIs(t, err, services.ErrAccountLocked)
	})

	t.Run("error - empty password counts as failed attempt", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.FailedLoginAttempts == 1
		})).Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
			return u, nil
		}).Once()

		_, err := f.useCase.Login(ctx, testEmail, "", client)

		require.ErrorIs(t, err, services.ErrInvalidCredentials)
		f.password.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("error - locked account reports lock expiry", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)
		user.Status = entities.StatusLocked
		lockedUntil := f.clock.Now().Add(entities.LockoutDuration)
		user.LockedUntil = &lockedUntil

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()

		_, err := f.useCase.Login(ctx, testEmail, testPassword, client)

		require.ErrorIs(t, err, services.ErrAccountLocked)

		var lockedErr *services.AccountLockedError
		require.True(t, errors.As(err, &lockedErr))
		assert.Equal(t, lockedUntil, *lockedErr.LockedUntil)
		f.password.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success - login allowed after lock expires", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)
		user.Status = entities.StatusLocked
		user.FailedLoginAttempts = entities.MaxFailedLoginAttempts
		lockedUntil := f.clock.Now().Add(entities.LockoutDuration)
		user.LockedUntil = &lockedUntil

		f.clock.Advance(entities.LockoutDuration + time.Minute)

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()
		f.password.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.Anything).
			Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
				return u, nil
			}).Once()
		f.expectTokenPair(user, app.DefaultAccessTokenTTL)

		result, err := f.useCase.Login(ctx, testEmail, testPassword, client)

		require.NoError(t, err)
		assert.Equal(t, entities.StatusActive, result.User.Status)
		assert.Equal(t, 0, result.User.FailedLoginAttempts)
	})

	t.Run("error - pending account is not activated", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)
		user.Status = entities.StatusPendingVerification

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()

		_, err := f.useCase.Login(ctx, testEmail, testPassword, client)

		require.ErrorIs(t, err, services.ErrAccountNotActivated)
	})

	t.Run("error - token generation failure", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()
		f.password.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.Anything).
			Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
				return u, nil
			}).Once()
		f.tokens.On("GenerateAccessToken", mock.Anything, mock.Anything, mock.Anything).
			Return("", time.Time{}, services.ErrGeneratingJWTToken).Once()

		_, err := f.useCase.Login(ctx, testEmail, testPassword, client)

		require.ErrorIs(t, err, services.ErrTokenGenerationFailed)
	})

	t.Run("success - version conflict on save is retried with fresh copy", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)
		fresh := f.activeUser(t)
		fresh.ID = user.ID
		fresh.Version = user.Version + 1

		f.userRepo.On("FindByEmail", mock.Anything, mock.Anything).Return(user, nil).Once()
		f.password.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.Anything).Return(nil, repositories.ErrVersionConflict).Once()
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(fresh, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.Anything).
			Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
				return u, nil
			}).Once()
		f.expectTokenPair(user, app.DefaultAccessTokenTTL)

		_, err := f.useCase.Login(ctx, testEmail, testPassword, client)

		require.NoError(t, err)
		f.userRepo.AssertExpectations(t)
	})
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()

	refreshClaims := func(userID string) *services.JWTClaims {
		return &services.JWTClaims{
			Subject: userID,
			Email:   testEmail,
			Kind:    services.KindRefresh,
		}
	}

	t.Run("success - used token is rotated", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)

		f.tokens.On("ValidateToken", mock.Anything, testRefreshToken).
			Return(refreshClaims(user.ID.String()), nil).Once()
		f.tokenRepo.On("FindByToken", mock.Anything, testRefreshToken).Return(&services.RefreshToken{
			UserID:    user.ID.String(),
			Token:     testRefreshToken,
			ExpiresAt: f.clock.Now().Add(time.Hour),
		}, nil).Once()
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
		f.expectTokenPair(user, app.DefaultAccessTokenTTL)

		pair, err := f.useCase.RefreshTokens(ctx, testRefreshToken)

		require.NoError(t, err)
		assert.Equal(t, testAccessToken, pair.AccessToken)
		f.tokenRepo.AssertExpectations(t)
	})

	t.Run("error - access token is not accepted as refresh token", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)

		claims := refreshClaims(user.ID.String())
		claims.Kind = services.KindAccess
		f.tokens.On("ValidateToken", mock.Anything, testAccessToken).Return(claims, nil).Once()

		_, err := f.useCase.RefreshTokens(ctx, testAccessToken)

		require.ErrorIs(t, err, services.ErrInvalidRefreshToken)
		f.tokenRepo.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
	})

	t.Run("error - unknown token", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)

		f.tokens.On("ValidateToken", mock.Anything, testRefreshToken).
			Return(refreshClaims(user.ID.String()), nil).Once()
		f.tokenRepo.On("FindByToken", mock.Anything, testRefreshToken).
			Return(nil, services.ErrInvalidRefreshToken).Once()

		_, err := f.useCase.RefreshTokens(ctx, testRefreshToken)

		require.ErrorIs(t, err, services.ErrInvalidRefreshToken)
	})

	t.Run("error - expired stored token revokes the session", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)

		f.tokens.On("ValidateToken", mock.Anything, testRefreshToken).
			Return(refreshClaims(user.ID.String()), nil).Once()
		f.tokenRepo.On("FindByToken", mock.Anything, testRefreshToken).Return(&services.RefreshToken{
			UserID:    user.ID.String(),
			Token:     testRefreshToken,
			ExpiresAt: f.clock.Now().Add(-time.Minute),
		}, nil).Once()
		f.tokenRepo.On("DeleteUserTokens", mock.Anything, user.ID.String()).Return(nil).Once()

		_, err := f.useCase.RefreshTokens(ctx, testRefreshToken)

		require.ErrorIs(t, err, services.ErrInvalidRefreshToken)
		f.tokenRepo.AssertExpectations(t)
	})

	t.Run("error - suspended user cannot refresh", func(t *testing.T) {
		f := newUseCaseFixture(t)
		user := f.activeUser(t)
		require.NoError(t, user.Suspend(f.clock.Now()))

		f.tokens.On("ValidateToken", mock.Anything, testRefreshToken).
			Return(refreshClaims(user.ID.String()), nil).Once()
		f.tokenRepo.On("FindByToken", mock.Anything, testRefreshToken).Return(&services.RefreshToken{
			UserID:    user.ID.String(),
			Token:     testRefreshToken,
			ExpiresAt: f.clock.Now().Add(time.Hour),
		}, nil).Once()
		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()

		_, err := f.useCase.RefreshTokens(ctx, testRefreshToken)

		require.ErrorIs(t, err, services.ErrInvalidRefreshToken)
		f.tokens.AssertNotCalled(t, "GenerateAccessToken", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	userID := entities.NewUserID().String()

	t.Run("success - tokens revoked and access token blacklisted", func(t *testing.T) {
		f := newUseCaseFixture(t)
		expiresAt := f.clock.Now().Add(time.Hour)

		f.tokenRepo.On("DeleteUserTokens", mock.Anything, userID).Return(nil).Once()
		f.tokens.On("ExpirationUnix", mock.Anything, testAccessToken).Return(expiresAt.Unix(), nil).Once()
		f.blacklist.On("Blacklist", mock.Anything, testAccessToken, mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl > 59*time.Minute && ttl <= time.Hour
		})).Return(nil).Once()

		require.NoError(t, f.useCase.Logout(ctx, userID, testAccessToken))
		f.blacklist.AssertExpectations(t)
	})

	t.Run("success - expired access token is not blacklisted", func(t *testing.T) {
		f := newUseCaseFixture(t)

		f.tokenRepo.On("DeleteUserTokens", mock.Anything, userID).Return(nil).Once()
		f.tokens.On("ExpirationUnix", mock.Anything, testAccessToken).
			Return(f.clock.Now().Add(-time.Minute).Unix(), nil).Once()

		require.NoError(t, f.useCase.Logout(ctx, userID, testAccessToken))
		f.blacklist.AssertNotCalled(t, "Blacklist", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success - malformed access token is ignored", func(t *testing.T) {
		f := newUseCaseFixture(t)

		f.tokenRepo.On("DeleteUserTokens", mock.Anything, userID).Return(nil).Once()
		f.tokens.On("ExpirationUnix", mock.Anything, "garbage").
			Return(int64(0), services.ErrInvalidJWTToken).Once()

		require.NoError(t, f.useCase.Logout(ctx, userID, "garbage"))
	})

	t.Run("error - revocation failure is returned", func(t *testing.T) {
		f := newUseCaseFixture(t)

		f.tokenRepo.On("DeleteUserTokens", mock.Anything, userID).Return(errDatabase).Once()

		require.ErrorIs(t, f.useCase.Logout(ctx, userID, testAccessToken), errDatabase)
	})
}

func TestLogoutFromAllDevices(t *testing.T) {
	ctx := context.Background()
	userID := entities.NewUserID().String()

	t.Run("success - all refresh tokens removed", func(t *testing.T) {
		f := newUseCaseFixture(t)

		f.tokenRepo.On("DeleteUserTokens", mock.Anything, userID).Return(nil).Once()

		require.NoError(t, f.useCase.LogoutFromAllDevices(ctx, userID))
	})

	t.Run("error - revocation failure is returned", func(t *testing.T) {
		f := newUseCaseFixture(t)

		f.tokenRepo.On("DeleteUserTokens", mock.Anything, userID).Return(errDatabase).Once()

		require.ErrorIs(t, f.useCase.LogoutFromAllDevices(ctx, userID), errDatabase)
	})
}
