package config

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/syndicate/internal/model"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LISTEN_ADDR", "GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_API_URL",
		"DEFAULT_INTERVAL_MINUTES", "TWITTER_ACCESS_TOKEN",
		"LINKEDIN_ACCESS_TOKEN", "LINKEDIN_MEMBER_ID",
		"INSTAGRAM_ACCESS_TOKEN", "FACEBOOK_ACCESS_TOKEN",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load(testLogger())
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 60, cfg.DefaultIntervalMinutes)
	assert.Empty(t, cfg.Connected())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("DEFAULT_INTERVAL_MINUTES", "15")
	t.Setenv("TWITTER_ACCESS_TOKEN", "tw-tok")
	t.Setenv("LINKEDIN_ACCESS_TOKEN", "li-tok")
	t.Setenv("LINKEDIN_MEMBER_ID", "m1")

	cfg := Load(testLogger())
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, 15, cfg.DefaultIntervalMinutes)

	connected := cfg.Connected()
	require.Len(t, connected, 2)
	assert.Contains(t, connected, model.PlatformTwitter)
	assert.Contains(t, connected, model.PlatformLinkedIn)
	assert.Equal(t, "m1", cfg.Credentials[model.PlatformLinkedIn].MemberID)
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SOME_INT", "42")
	assert.Equal(t, 42, GetEnvInt("SOME_INT", 7))

	t.Setenv("SOME_INT", "not a number")
	assert.Equal(t, 7, GetEnvInt("SOME_INT", 7))
}
