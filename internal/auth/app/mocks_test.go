package app_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"campusauth/internal/auth/domain/entities"
	"campusauth/internal/auth/domain/services"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Save(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	// Тесты могут возвращать функцию, чтобы эхом вернуть сохраняемый агрегат.
	if fn, ok := args.Get(0).(func(context.Context, *entities.User) (*entities.User, error)); ok {
		return fn(ctx, user)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id entities.UserID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email entities.Email) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email entities.Email) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Store(ctx context.Context, token *services.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepository) FindByToken(ctx context.Context, token string) (*services.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RefreshToken), args.Error(1)
}

func (m *mockTokenRepository) DeleteUserTokens(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockTokenRepository) CleanupExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(ctx context.Context, raw entities.Password) (entities.Password, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(entities.Password), args.Error(1)
}

func (m *mockPasswordService) Verify(ctx context.Context, raw, hashed entities.Password) (bool, error) {
	args := m.Called(ctx, raw, hashed)
	return args.Bool(0), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateAccessToken(ctx context.Context, user *entities.User, ttl time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, user, ttl)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) GenerateRefreshToken(ctx context.Context, user *entities.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) ValidateToken(ctx context.Context, token string) (*services.JWTClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.JWTClaims), args.Error(1)
}

func (m *mockTokenService) IsExpired(ctx context.Context, token string) bool {
	args := m.Called(ctx, token)
	return args.Bool(0)
}

func (m *mockTokenService) ExpirationUnix(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

type mockTokenBlacklist struct {
	mock.Mock
}

func (m *mockTokenBlacklist) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	args := m.Called(ctx, token, ttl)
	return args.Error(0)
}

func (m *mockTokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenBlacklist) Remove(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenBlacklist) TTL(ctx context.Context, token string) (time.Duration, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(time.Duration), args.Error(1)
}

type mockNotificationService struct {
	mock.Mock
}

func (m *mockNotificationService) NotifySuspiciousActivity(ctx context.Context, userID, email, ipAddress, userAgent string) error {
	args := m.Called(ctx, userID, email, ipAddress, userAgent)
	return args.Error(0)
}

func (m *mockNotificationService) SendWelcomeEmail(ctx context.Context, userID, email, fullName string) error {
	args := m.Called(ctx, userID, email, fullName)
	return args.Error(0)
}
