// Package services содержит реализации сервисов для gateway.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"campusauth/internal/gateway/app/dto"
	"campusauth/internal/gateway/ports/cache"
	"campusauth/internal/gateway/ports/client"
	"campusauth/internal/gateway/ports/services"
	"campusauth/pkg/logger"
	"campusauth/pkg/resilience"
)

// Константы для логирования.
const (
	LogServiceRegister = "auth service: register user"
	LogServiceLogin    = "auth service: login user"
	//nolint:gosec
	LogServiceTokenRefresh = "auth service: token refresh"
	LogServiceValidate     = "auth service: validate token"
	LogServiceLogout       = "auth service: logout"
	LogServiceLogoutAll    = "auth service: logout from all devices"
	LogServiceGetProfile   = "auth service: get user profile"

	ErrorRegisterFailed     = "failed to register user"
	ErrorLoginFailed        = "failed to login"
	ErrorUpdateTokensFailed = "failed to update tokens"
	ErrorValidateFailed     = "failed to validate token"
	ErrorLogoutFailed       = "failed to logout"
	ErrorGetProfileFailed   = "failed to get user profile"
)

// Константы для кэширования.
const (
	ProfileCacheKeyPrefix = "profile:"
	ProfileCacheTTL       = 60 * time.Second
)

// AuthServiceImpl реализует интерфейс AuthService.
type AuthServiceImpl struct {
	authClient client.AuthClient
	cache      cache.Cache
	resilience *resilience.ServiceResilience
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(authClient client.AuthClient, cache cache.Cache) services.AuthService {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.ShouldRetry = shouldRetryAuthCall

	return &AuthServiceImpl{
		authClient: authClient,
		cache:      cache,
		resilience: resilience.NewServiceResilienceWithRetry("auth-service", retryCfg),
	}
}

// shouldRetryAuthCall не повторяет запросы, на которые сервис ответил
// осмысленным статусом: повтор не изменит вердикт и может сжечь попытку входа.
func shouldRetryAuthCall(err error) bool {
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Register регистрирует нового пользователя.
func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceRegister)

	result, err := resilience.ExecuteWithResult(ctx, s.resilience, "Register", func() (*dto.RegisterResponse, error) {
		return s.authClient.Register(ctx, req)
	})
	if err != nil {
		log.Warn(ctx, ErrorRegisterFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorRegisterFailed, err)
	}

	return result, nil
}

// Login выполняет вход пользователя в систему.
func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceLogin)

	result, err := resilience.ExecuteWithResult(ctx, s.resilience, "Login", func() (*dto.TokenResponse, error) {
		return s.authClient.Login(ctx, req)
	})
	if err != nil {
		log.Warn(ctx, ErrorLoginFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorLoginFailed, err)
	}

	return result, nil
}

// RefreshTokens обновляет пару токенов.
func (s *AuthServiceImpl) RefreshTokens(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceTokenRefresh)

	result, err := resilience.ExecuteWithResult(ctx, s.resilience, "RefreshTokens", func() (*dto.TokenResponse, error) {
		return s.authClient.RefreshTokens(ctx, req)
	})
	if err != nil {
		log.Warn(ctx, ErrorUpdateTokensFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorUpdateTokensFailed, err)
	}

	return result, nil
}

// ValidateToken проверяет токен доступа через сервис аутентификации.
func (s *AuthServiceImpl) ValidateToken(ctx context.Context, token string) (*dto.ValidationResult, error) {
	log := logger.Log(ctx)
	log.Debug(ctx, LogServiceValidate)

	result, err := resilience.ExecuteWithResult(ctx, s.resilience, "ValidateToken", func() (*dto.ValidationResult, error) {
		return s.authClient.Validate(ctx, token)
	})
	if err != nil {
		log.Warn(ctx, ErrorValidateFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorValidateFailed, err)
	}

	return result, nil
}

// Logout завершает текущую сессию пользователя.
func (s *AuthServiceImpl) Logout(ctx context.Context, accessToken string) error {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceLogout)

	err := s.resilience.Execute(ctx, "Logout", func() error {
		return s.authClient.Logout(ctx, accessToken)
	})
	if err != nil {
		log.Warn(ctx, ErrorLogoutFailed, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorLogoutFailed, err)
	}

	s.dropCachedProfile(ctx, accessToken)
	return nil
}

// LogoutFromAllDevices завершает все сессии пользователя.
func (s *AuthServiceImpl) LogoutFromAllDevices(ctx context.Context, accessToken string) error {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceLogoutAll)

	err := s.resilience.Execute(ctx, "LogoutFromAllDevices", func() error {
		return s.authClient.LogoutAll(ctx, accessToken)
	})
	if err != nil {
		log.Warn(ctx, ErrorLogoutFailed, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorLogoutFailed, err)
	}

	s.dropCachedProfile(ctx, accessToken)
	return nil
}

// GetUserProfile возвращает профиль пользователя, кэшируя его на короткое
// время, чтобы разгрузить сервис аутентификации.
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, accessToken string) (*dto.UserProfileResponse, error) {
	log := logger.Log(ctx)
	log.Debug(ctx, LogServiceGetProfile)

	cacheKey := profileCacheKey(accessToken)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var profile dto.UserProfileResponse
		if err := json.Unmarshal([]byte(cached), &profile); err == nil {
			return &profile, nil
		}
	}

	result, err := resilience.ExecuteWithResult(ctx, s.resilience, "GetUserProfile", func() (*dto.UserProfileResponse, error) {
		return s.authClient.GetProfile(ctx, accessToken)
	})
	if err != nil {
		log.Warn(ctx, ErrorGetProfileFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorGetProfileFailed, err)
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(payload), ProfileCacheTTL); err != nil {
			log.Debug(ctx, "failed to cache profile", zap.Error(err))
		}
	}

	return result, nil
}

func (s *AuthServiceImpl) dropCachedProfile(ctx context.Context, accessToken string) {
	if err := s.cache.Delete(ctx, profileCacheKey(accessToken)); err != nil {
		logger.Log(ctx).Debug(ctx, "failed to drop cached profile", zap.Error(err))
	}
}

// profileCacheKey строит ключ кэша по токену, не раскрывая сам токен.
func profileCacheKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return ProfileCacheKeyPrefix + hex.EncodeToString(sum[:])
}
