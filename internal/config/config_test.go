package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for k := range defaults {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "*", cfg.CORSAllowedOrigin)
	assert.Empty(t, cfg.StaticDir)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 8192, cfg.LLM.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout())
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxFileSizeBytes())
	assert.Equal(t, 10, cfg.Upload.MaxCrossFiles)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("LLM_MODEL", "o3-mini")
	t.Setenv("LLM_MAX_TOKENS", "2048")
	t.Setenv("MAX_FILE_SIZE_MB", "2")
	t.Setenv("MAX_CROSS_FILES", "3")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "o3-mini", cfg.LLM.Model)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, int64(2<<20), cfg.Upload.MaxFileSizeBytes())
	assert.Equal(t, 3, cfg.Upload.MaxCrossFiles)
	assert.Equal(t, 4*(2<<20)+1<<20, cfg.BodyLimit())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "invalid")
	t.Setenv("LLM_TIMEOUT_SEC", "-5")
	t.Setenv("MAX_CROSS_FILES", "0")

	cfg := Load()

	assert.Equal(t, 8192, cfg.LLM.MaxTokens)
	assert.Equal(t, 120, cfg.LLM.TimeoutSec)
	assert.Equal(t, 10, cfg.Upload.MaxCrossFiles)
}
