// Package auth реализует HTTP клиент сервиса аутентификации.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"campusauth/internal/gateway/app/dto"
	"campusauth/internal/gateway/config"
	"campusauth/internal/gateway/ports/client"
	"campusauth/pkg/logger"
)

// Константы для логирования.
const (
	LogClientRequest = "auth client request"

	ErrorBuildRequest   = "failed to build request"
	ErrorSendRequest    = "failed to send request"
	ErrorDecodeResponse = "failed to decode response"
)

// Пути API сервиса аутентификации.
const (
	pathRegister  = "/api/v1/auth/register"
	pathLogin     = "/api/v1/auth/login"
	pathRefresh   = "/api/v1/auth/refresh"
	pathValidate  = "/api/v1/auth/validate"
	pathLogout    = "/api/v1/auth/logout"
	pathLogoutAll = "/api/v1/auth/logout-all"
	pathProfile   = "/api/v1/users/profile"
)

// Client реализует интерфейс client.AuthClient поверх HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewAuthClient создает новый клиент сервиса аутентификации.
func NewAuthClient(cfg *config.AuthConfig) client.AuthClient {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// do выполняет запрос и декодирует успешный ответ в out. Ответ со статусом
// ошибки преобразуется в client.StatusError с телом сервиса.
func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	log := logger.Log(ctx).With(
		zap.String("client", "auth"),
		zap.String("method", method),
		zap.String("path", path),
	)
	log.Debug(ctx, LogClientRequest)

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrorBuildRequest, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorBuildRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if requestID, _ := logger.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn(ctx, ErrorSendRequest, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorSendRequest, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn(ctx, "failed to close response body", zap.Error(closeErr))
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		statusErr := &client.StatusError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(&statusErr.Response); err != nil {
			statusErr.Response.Error = http.StatusText(resp.StatusCode)
		}
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Warn(ctx, ErrorDecodeResponse, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorDecodeResponse, err)
	}

	return nil
}

// Register регистрирует нового пользователя.
func (c *Client) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var resp dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, pathRegister, "", req, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &resp, nil
}

// Login выполняет вход пользователя.
func (c *Client) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	var resp dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, pathLogin, "", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

// RefreshTokens обновляет пару токенов.
func (c *Client) RefreshTokens(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	var resp dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, pathRefresh, "", req, &resp); err != nil {
		return nil, fmt.Errorf("refresh tokens: %w", err)
	}
	return &resp, nil
}

// Validate проверяет токен доступа.
func (c *Client) Validate(ctx context.Context, token string) (*dto.ValidationResult, error) {
	var resp dto.ValidationResult
	body := map[string]any{"token": token}
	if err := c.do(ctx, http.MethodPost, pathValidate, "", body, &resp); err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}
	return &resp, nil
}

// Logout завершает текущую сессию пользователя.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, pathLogout, accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// LogoutAll завершает все сессии пользователя.
func (c *Client) LogoutAll(ctx context.Context, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, pathLogoutAll, accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout from all devices: %w", err)
	}
	return nil
}

// GetProfile возвращает профиль пользователя.
func (c *Client) GetProfile(ctx context.Context, accessToken string) (*dto.UserProfileResponse, error) {
	var resp dto.UserProfileResponse
	if err := c.do(ctx, http.MethodGet, pathProfile, accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &resp, nil
}

// Close освобождает ресурсы клиента.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
