package config

import "time"

// AuthConfig содержит настройки подключения к сервису аутентификации.
type AuthConfig struct {
	BaseURL string        `yaml:"base_url" env:"GATEWAY_AUTH_BASE_URL" env-default:"http://localhost:8081"`
	Timeout time.Duration `yaml:"timeout" env:"GATEWAY_AUTH_TIMEOUT" env-default:"5s"`
}
