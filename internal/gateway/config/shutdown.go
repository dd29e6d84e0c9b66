package config

import "time"

// ShutdownConfig содержит настройки корректного завершения работы gateway.
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"GATEWAY_GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// GetTimeout возвращает предел ожидания завершения.
func (c *ShutdownConfig) GetTimeout() time.Duration {
	return c.Timeout
}
