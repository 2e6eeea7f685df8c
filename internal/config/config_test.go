package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.OpenAIBaseURL)
	assert.Equal(t, "disable", cfg.DBSSLMode)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_NAME", "anke_custom")
	t.Setenv("CRON_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "anke_custom", cfg.DBName)
	assert.Equal(t, "s3cret", cfg.CronSecret)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "5433",
		DBUser:     "anke",
		DBPassword: "pw",
		DBName:     "anke",
		DBSSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal user=anke password=pw dbname=anke port=5433 sslmode=require TimeZone=UTC",
		cfg.DSN())
}
