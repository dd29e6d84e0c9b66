package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campusauth/internal/auth/app"
	"campusauth/internal/auth/domain/entities"
	"campusauth/internal/auth/domain/services"
	"campusauth/internal/auth/ports/api"
	"campusauth/pkg/clock"
)

type userUseCaseFixture struct {
	userRepo *mockUserRepository
	password *mockPasswordService
	clock    *clock.Fake
	useCase  api.UserUseCase
}

func newUserUseCaseFixture(t *testing.T) *userUseCaseFixture {
	t.Helper()

	f := &userUseCaseFixture{
		userRepo: &mockUserRepository{},
		password: &mockPasswordService{},
		clock:    clock.NewFake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)),
	}
	f.useCase = app.NewUserUseCase(f.userRepo, f.password, f.clock)
	return f
}

func (f *userUseCaseFixture) pendingUser(t *testing.T) *entities.User {
	t.Helper()

	email, err := entities.NewEmail(testEmail)
	require.NoError(t, err)

	password, err := entities.NewHashedPassword(testHashedValue)
	require.NoError(t, err)

	user, err := entities.NewUser(email, password, entities.RoleUser, "Ivan", "Petrov", f.clock.Now())
	require.NoError(t, err)
	return user
}

func (f *userUseCaseFixture) activeUser(t *testing.T) *entities.User {
	t.Helper()

	user := f.pendingUser(t)
	require.NoError(t, user.Activate(f.clock.Now()))
	return user
}

func TestGetUserProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("success - profile returned", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()

		profile, err := f.useCase.GetUserProfile(ctx, user.ID.String())

		require.NoError(t, err)
		assert.Same(t, user, profile)
	})

	t.Run("error - malformed user id", func(t *testing.T) {
		f := newUserUseCaseFixture(t)

		_, err := f.useCase.GetUserProfile(ctx, "not-a-uuid")

		require.ErrorIs(t, err, entities.ErrInvalidUserID)
		f.userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("error - user not found", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		id := entities.NewUserID()

		f.userRepo.On("FindByID", mock.Anything, id).Return(nil, entities.ErrUserNotFound).Once()

		_, err := f.useCase.GetUserProfile(ctx, id.String())

		require.ErrorIs(t, err, entities.ErrUserNotFound)
	})
}

func TestActivateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success - pending user activated and saved", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.pendingUser(t)

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Status == entities.StatusActive
		})).Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
			return u, nil
		}).Once()

		require.NoError(t, f.useCase.ActivateUser(ctx, user.ID.String()))
		f.userRepo.AssertExpectations(t)
	})

	t.Run("error - active user cannot be activated again", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()

		err := f.useCase.ActivateUser(ctx, user.ID.String())

		require.ErrorIs(t, err, entities.ErrNotPendingActivation)
		f.userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	const newPassword = "N3wStr0ng!Pass"

	t.Run("success - password verified, hashed and saved", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.activeUser(t)

		newHash, err := entities.NewHashedPassword("$2a$10$vutsrqponmlkjihgfedcba")
		require.NoError(t, err)

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
		f.password.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()
		f.password.On("Hash", mock.Anything, mock.Anything).Return(newHash, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Password.Value() == newHash.Value()
		})).Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
			return u, nil
		}).Once()

		require.NoError(t, f.useCase.ChangePassword(ctx, user.ID.String(), testPassword, newPassword))
		f.userRepo.AssertExpectations(t)
	})

	t.Run("error - same password rejected by policy", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()

		err := f.useCase.ChangePassword(ctx, user.ID.String(), testPassword, testPassword)

		require.ErrorIs(t, err, services.ErrPasswordUnchanged)
		f.password.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("error - wrong current password", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
		f.password.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()

		err := f.useCase.ChangePassword(ctx, user.ID.String(), "Wr0ng!Pass1", newPassword)

		require.ErrorIs(t, err, services.ErrInvalidCredentials)
		f.password.AssertNotCalled(t, "Hash", mock.Anything, mock.Anything)
	})

	t.Run("error - weak current password still compared against hash", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
		f.password.On("Verify", mock.Anything, mock.MatchedBy(func(p entities.Password) bool {
			return !p.IsHashed() && p.Value() == "wrong"
		}), mock.Anything).Return(false, nil).Once()

		err := f.useCase.ChangePassword(ctx, user.ID.String(), "wrong", newPassword)

		require.ErrorIs(t, err, services.ErrInvalidCredentials)
		f.password.AssertExpectations(t)
	})

	t.Run("error - weak new password", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()

		err := f.useCase.ChangePassword(ctx, user.ID.String(), testPassword, "weak")

		require.ErrorIs(t, err, entities.ErrPasswordTooShort)
	})
}

func TestSuspendUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success - user suspended", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.activeUser(t)

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Status == entities.StatusSuspended
		})).Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
			return u, nil
		}).Once()

		require.NoError(t, f.useCase.SuspendUser(ctx, user.ID.String()))
	})

	t.Run("error - already suspended", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.activeUser(t)
		require.NoError(t, user.Suspend(f.clock.Now()))

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()

		err := f.useCase.SuspendUser(ctx, user.ID.String())

		require.ErrorIs(t, err, entities.ErrUserAlreadySuspended)
	})
}

func TestUnlockUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success - suspended user restored to active", func(t *testing.T) {
		f := newUserUseCaseFixture(t)
		user := f.activeUser(t)
		require.NoError(t, user.Suspend(f.clock.Now()))

		f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil).Once()
		f.userRepo.On("Save", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
			return u.Status == entities.StatusActive && u.FailedLoginAttempts == 0
		})).Return(func(_ context.Context, u *entities.User) (*entities.User, error) {
			return u, nil
		}).Once()

		require.NoError(t, f.useCase.UnlockUser(ctx, user.ID.String()))
		f.userRepo.AssertExpectations(t)
	})
}
