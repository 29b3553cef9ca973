package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("AUTH_MODE", "none")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "personalizer.db", cfg.DBPath)
	assert.Equal(t, 4, cfg.ApplyWorkers)
	assert.False(t, cfg.SlackEnabled())
}

func TestLoad_APIKeyRequiredInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUTH_MODE", "api-key")
	t.Setenv("API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_JWTModeRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "topsecret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "jwt", cfg.AuthMode)
}

func TestValidate_UnknownAuthMode(t *testing.T) {
	cfg := &Config{AuthMode: "oauth", ApplyWorkers: 4}
	assert.Error(t, cfg.Validate())
}

func TestValidate_WorkerCount(t *testing.T) {
	cfg := &Config{AuthMode: "none", ApplyWorkers: 0}
	assert.Error(t, cfg.Validate())
}

func TestSlackEnabled(t *testing.T) {
	cfg := &Config{SlackBotToken: "xoxb-test", SlackChannel: "#brand-alerts"}
	assert.True(t, cfg.SlackEnabled())

	cfg.SlackChannel = ""
	assert.False(t, cfg.SlackEnabled())
}
