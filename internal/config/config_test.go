package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	values := Config{}

	applyDefaults(&values, defaultConfig)

	assert.Equal(t, ":8080", values.RunAddr)
	assert.Equal(t, "info", values.LogLevel)
	assert.Equal(t, "artcls_session", values.SessionCookieName)
	assert.NotZero(t, values.SessionTTL)
	assert.NotEmpty(t, values.SessionSigningSecretKey)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	values := Config{
		RunAddr:  ":9090",
		LogLevel: "debug",
	}

	applyDefaults(&values, defaultConfig)

	assert.Equal(t, ":9090", values.RunAddr)
	assert.Equal(t, "debug", values.LogLevel)
	assert.Equal(t, "artcls_session", values.SessionCookieName)
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_DSN", "host=localhost dbname=artcls")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "host=localhost dbname=artcls", cfg.DatabaseDSN)
}

func TestConfigEnvOverridesDefaults(t *testing.T) {
	t.Setenv("SESSION_COOKIE_NAME", "blog_session")
	t.Setenv("SESSION_TTL", "1h")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "blog_session", cfg.SessionCookieName)
	assert.Equal(t, "1h0m0s", cfg.SessionTTL.String())
}

func TestConfigRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := New(WithDisableFlagsParsing(true))
	require.Error(t, err)
}

func TestConfigRejectsMalformedSecretKey(t *testing.T) {
	t.Setenv("SESSION_SECRET_KEY", "not*base64url!")

	_, err := New(WithDisableFlagsParsing(true))
	require.Error(t, err)
}
