package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"ENVIRONMENT", "PORT", "LOG_LEVEL", "ALLOWED_ORIGINS", "JWT_SECRET",
		"DATABASE_URL", "REDIS_URL", "ADMIN_USERNAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
		"CHAT_POST_RATE", "CHAT_POST_BURST", "TRUST_PROXY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 5000, cfg.Port)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, 1.0, cfg.ChatPostRate)
	assert.Equal(t, 5, cfg.ChatPostBurst)
	assert.False(t, cfg.TrustProxy)
}

func TestLoadConfigTrustProxy(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.TrustProxy)

	t.Setenv("TRUST_PROXY", "maybe")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "TRUST_PROXY")
}

func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", MemoryDSN)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.UsesMemoryStore())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"PORT":            "80",
		"CHAT_POST_RATE":  "-1",
		"CHAT_POST_BURST": "zero",
		"ADMIN_USERNAME":  "root",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
