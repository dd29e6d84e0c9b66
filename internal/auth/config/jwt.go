package config

import "time"

// JWTConfig содержит настройки для JWT токенов.
type JWTConfig struct {
	SecretKey       string `yaml:"secret_key" env:"AUTH_JWT_SECRET_KEY" env-default:"super-secret-key-change-me-in-production"`
	Issuer          string `yaml:"issuer" env:"AUTH_JWT_ISSUER" env-default:"campusauth"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl" env:"AUTH_JWT_REFRESH_TOKEN_TTL" env-default:"720h"`
	BCryptCost      int    `yaml:"bcrypt_cost" env:"AUTH_JWT_BCRYPT_COST" env-default:"10"`
}

// GetRefreshTokenTTL возвращает продолжительность времени жизни refresh токена.
func (c *JWTConfig) GetRefreshTokenTTL() time.Duration {
	duration, err := time.ParseDuration(c.RefreshTokenTTL)
	if err != nil {
		return 720 * time.Hour
	}
	return duration
}
