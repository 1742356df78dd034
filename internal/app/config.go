package app

import (
	"fmt"
	"time"

	"github.com/Dyslex1k/SceneSearch/internal/platform/envutil"
)

// Config is everything the process reads from the environment besides the
// store connection settings, which the platform clients read themselves.
type Config struct {
	Port    string
	GinMode string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURL  string

	CORSAllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:    envutil.Str("PORT", "8080"),
		GinMode: envutil.Str("GIN_MODE", "debug"),

		JWTSecretKey:   envutil.Str("JWT_SECRET_KEY", ""),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL_SECONDS", 24*time.Hour),

		DiscordClientID:     envutil.Str("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: envutil.Str("DISCORD_CLIENT_SECRET", ""),
		DiscordRedirectURL:  envutil.Str("DISCORD_REDIRECT_URL", ""),

		CORSAllowedOrigins: []string{envutil.Str("CORS_ALLOWED_ORIGIN", "http://localhost:5173")},
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("config: JWT_SECRET_KEY is required")
	}
	if cfg.DiscordClientID == "" || cfg.DiscordClientSecret == "" || cfg.DiscordRedirectURL == "" {
		return nil, fmt.Errorf("config: DISCORD_CLIENT_ID, DISCORD_CLIENT_SECRET and DISCORD_REDIRECT_URL are required")
	}
	return cfg, nil
}
