package config

import (
	"time"
)

// ShutdownConfig содержит настройки корректного завершения работы.
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"AUTH_GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// GetTimeout возвращает предел ожидания завершения.
func (s *ShutdownConfig) GetTimeout() time.Duration {
	return s.Timeout
}
