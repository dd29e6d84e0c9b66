package services_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusauth/internal/gateway/app/dto"
	"campusauth/internal/gateway/app/services"
	"campusauth/internal/gateway/ports/client"
)

const accessToken = "access-token-123"

// fakeAuthClient подменяет клиент сервиса аутентификации и считает вызовы.
type fakeAuthClient struct {
	mu sync.Mutex

	loginErr   error
	loginCalls int

	profile      *dto.UserProfileResponse
	profileErr   error
	profileCalls int

	logoutErr error
}

func (f *fakeAuthClient) Register(_ context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return &dto.RegisterResponse{Email: req.Email, Status: "PENDING_VERIFICATION"}, nil
}

func (f *fakeAuthClient) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.TokenResponse{AccessToken: accessToken, TokenType: "Bearer"}, nil
}

func (f *fakeAuthClient) RefreshTokens(_ context.Context, _ *dto.RefreshRequest) (*dto.TokenResponse, error) {
	return &dto.TokenResponse{AccessToken: accessToken, TokenType: "Bearer"}, nil
}

func (f *fakeAuthClient) Validate(_ context.Context, _ string) (*dto.ValidationResult, error) {
	return &dto.ValidationResult{Valid: true, UserID: "user-1"}, nil
}

func (f *fakeAuthClient) Logout(_ context.Context, _ string) error {
	return f.logoutErr
}

func (f *fakeAuthClient) LogoutAll(_ context.Context, _ string) error {
	return f.logoutErr
}

func (f *fakeAuthClient) GetProfile(_ context.Context, _ string) (*dto.UserProfileResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeAuthClient) Close() error {
	return nil
}

// fakeCache хранит записи в памяти процесса.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Close() error {
	return nil
}

func (c *fakeCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func TestLoginForwardsServiceVerdictWithoutRetry(t *testing.T) {
	ctx := context.Background()

	fake := &fakeAuthClient{
		loginErr: &client.StatusError{
			StatusCode: http.StatusUnauthorized,
			Response:   dto.ErrorResponse{Error: "invalid email or password"},
		},
	}

	svc := services.NewAuthService(fake, newFakeCache())

	_, err := svc.Login(ctx, &dto.LoginRequest{Email: "user@example.com", Password: "Wr0ng!Pass1"})

	require.Error(t, err)

	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

	// Осмысленный вердикт сервиса не повторяется: повтор сжег бы попытку входа.
	assert.Equal(t, 1, fake.loginCalls)
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuthClient{}

	svc := services.NewAuthService(fake, newFakeCache())

	tokens, err := svc.Login(ctx, &dto.LoginRequest{Email: "user@example.com", Password: "Str0ng!Pass"})

	require.NoError(t, err)
	assert.Equal(t, accessToken, tokens.AccessToken)
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAuthClient{}

	svc := services.NewAuthService(fake, newFakeCache())

	result, err := svc.ValidateToken(ctx, accessToken)

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "user-1", result.UserID)
}

func TestGetUserProfileCachesResult(t *testing.T) {
	ctx := context.Background()

	fake := &fakeAuthClient{
		profile: &dto.UserProfileResponse{UserID: "user-1", Email: "user@example.com"},
	}
	cache := newFakeCache()

	svc := services.NewAuthService(fake, cache)

	first, err := svc.GetUserProfile(ctx, accessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", first.UserID)
	assert.Equal(t, 1, fake.profileCalls)
	assert.Equal(t, 1, cache.size())

	// Повторный запрос обслуживается из кэша без похода в сервис.
	second, err := svc.GetUserProfile(ctx, accessToken)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, 1, fake.profileCalls)
}

func TestLogoutDropsCachedProfile(t *testing.T) {
	ctx := context.Background()

	fake := &fakeAuthClient{
		profile: &dto.UserProfileResponse{UserID: "user-1", Email: "user@example.com"},
	}
	cache := newFakeCache()

	svc := services.NewAuthService(fake, cache)

	_, err := svc.GetUserProfile(ctx, accessToken)
	require.NoError(t, err)
	require.Equal(t, 1, cache.size())

	require.NoError(t, svc.Logout(ctx, accessToken))
	assert.Equal(t, 0, cache.size())

	// После выхода профиль запрашивается заново.
	_, err = svc.GetUserProfile(ctx, accessToken)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.profileCalls)
}

func TestLogoutFromAllDevicesDropsCachedProfile(t *testing.T) {
	ctx := context.Background()

	fake := &fakeAuthClient{
		profile: &dto.UserProfileResponse{UserID: "user-1"},
	}
	cache := newFakeCache()

	svc := services.NewAuthService(fake, cache)

	_, err := svc.GetUserProfile(ctx, accessToken)
	require.NoError(t, err)
	require.Equal(t, 1, cache.size())

	require.NoError(t, svc.LogoutFromAllDevices(ctx, accessToken))
	assert.Equal(t, 0, cache.size())
}
