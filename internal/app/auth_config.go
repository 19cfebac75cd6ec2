package app

import (
	"strings"

	"github.com/studyhub/studyhub/internal/auth"
	"github.com/studyhub/studyhub/internal/database"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// DatabaseOpenConfig converts DatabaseConfig into database.Open parameters.
// Host based settings are used only for the driver that is enabled.
func (c DatabaseConfig) DatabaseOpenConfig() database.Config {
	cfg := database.Config{
		Driver:             c.Driver,
		Path:               c.Path,
		DSN:                c.DSN,
		SlowQueryThreshold: c.SlowQueryThreshold,
	}

	var hosted *DBAuthConfig
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "postgres", "postgresql":
		hosted = &c.Postgres
	case "mysql":
		hosted = &c.MySQL
	}
	if hosted != nil && hosted.Enabled {
		cfg.Host = hosted.Host
		cfg.Port = hosted.Port
		cfg.Name = hosted.Database
		cfg.User = hosted.Username
		cfg.Password = hosted.Password
	}
	return cfg
}
