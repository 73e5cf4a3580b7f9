// Package config reads service configuration from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/bryan-buckman/syndicate/internal/model"
)

// Config is everything the service needs at startup.
type Config struct {
	ListenAddr string

	// Text generation.
	GeminiAPIKey string
	GeminiModel  string
	GeminiAPIURL string // override for tests; empty means the public endpoint

	// Scheduling defaults.
	DefaultIntervalMinutes int

	// Per-platform publish credentials. A platform with no access token
	// is treated as not connected and is skipped at batch creation.
	Credentials map[model.Platform]model.Credential
}

// Load reads configuration from the environment, after loading a local
// .env file if one exists.
func Load(logger *logrus.Logger) Config {
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	}

	return Config{
		ListenAddr:             GetEnv("LISTEN_ADDR", ":8080"),
		GeminiAPIKey:           GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:            GetEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiAPIURL:           GetEnv("GEMINI_API_URL", ""),
		DefaultIntervalMinutes: GetEnvInt("DEFAULT_INTERVAL_MINUTES", 60),
		Credentials: map[model.Platform]model.Credential{
			model.PlatformTwitter: {
				AccessToken: GetEnv("TWITTER_ACCESS_TOKEN", ""),
			},
			model.PlatformLinkedIn: {
				AccessToken: GetEnv("LINKEDIN_ACCESS_TOKEN", ""),
				MemberID:    GetEnv("LINKEDIN_MEMBER_ID", ""),
			},
			model.PlatformInstagram: {
				AccessToken: GetEnv("INSTAGRAM_ACCESS_TOKEN", ""),
			},
			model.PlatformFacebook: {
				AccessToken: GetEnv("FACEBOOK_ACCESS_TOKEN", ""),
			},
		},
	}
}

// Connected returns the platforms that have a usable credential.
func (c Config) Connected() []model.Platform {
	var out []model.Platform
	for _, p := range []model.Platform{
		model.PlatformTwitter, model.PlatformInstagram,
		model.PlatformLinkedIn, model.PlatformFacebook,
	} {
		if c.Credentials[p].AccessToken != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetEnv gets an environment variable with a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer environment variable with a default value.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
