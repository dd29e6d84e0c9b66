package config

// RateLimitConfig содержит настройки ограничителя частоты запросов.
type RateLimitConfig struct {
	// RequestsPerMinute - потолок запросов с одного клиентского адреса
	// в пределах одной минуты.
	RequestsPerMinute int  `yaml:"requests_per_minute" env:"GATEWAY_RATE_LIMIT_PER_MINUTE" env-default:"100"`
	Enabled           bool `yaml:"enabled" env:"GATEWAY_RATE_LIMIT_ENABLED" env-default:"true"`
}
