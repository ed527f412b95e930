package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LLMConfig holds the chat-completion provider settings.
type LLMConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	TimeoutSec int
}

// Timeout returns the per-request provider deadline.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// UploadConfig bounds what one analysis request may carry.
type UploadConfig struct {
	MaxFileSizeMB int
	MaxCrossFiles int
}

// MaxFileSizeBytes returns the per-file limit in bytes.
func (c UploadConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port              string
	Env               string
	LogLevel          string
	CORSAllowedOrigin string
	StaticDir         string
	LLM               LLMConfig
	Upload            UploadConfig
}

// BodyLimit is the largest request body the HTTP server accepts: every file
// at its maximum size plus room for form fields and multipart framing.
func (c *AppConfig) BodyLimit() int {
	files := int64(c.Upload.MaxCrossFiles + 1)
	return int(files*c.Upload.MaxFileSizeBytes() + 1<<20)
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &AppConfig{
		Port:              getString(v, "PORT"),
		Env:               getString(v, "APP_ENV"),
		LogLevel:          getString(v, "LOG_LEVEL"),
		CORSAllowedOrigin: getString(v, "CORS_ALLOWED_ORIGIN"),
		StaticDir:         v.GetString("STATIC_DIR"),
		LLM: LLMConfig{
			APIKey:     v.GetString("LLM_API_KEY"),
			BaseURL:    v.GetString("LLM_BASE_URL"),
			Model:      getString(v, "LLM_MODEL"),
			MaxTokens:  getPositiveInt(v, "LLM_MAX_TOKENS"),
			TimeoutSec: getPositiveInt(v, "LLM_TIMEOUT_SEC"),
		},
		Upload: UploadConfig{
			MaxFileSizeMB: getPositiveInt(v, "MAX_FILE_SIZE_MB"),
			MaxCrossFiles: getPositiveInt(v, "MAX_CROSS_FILES"),
		},
	}
}

var defaults = map[string]any{
	"PORT":                "8080",
	"APP_ENV":             "development",
	"LOG_LEVEL":           "info",
	"CORS_ALLOWED_ORIGIN": "*",
	"STATIC_DIR":          "",
	"LLM_API_KEY":         "",
	"LLM_BASE_URL":        "",
	"LLM_MODEL":           "gpt-4o-mini",
	"LLM_MAX_TOKENS":      8192,
	"LLM_TIMEOUT_SEC":     120,
	"MAX_FILE_SIZE_MB":    10,
	"MAX_CROSS_FILES":     10,
}

func setDefaults(v *viper.Viper) {
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
}

// getString treats a blank environment value as unset.
func getString(v *viper.Viper, key string) string {
	if s := strings.TrimSpace(v.GetString(key)); s != "" {
		return s
	}
	s, _ := defaults[key].(string)
	return s
}

// getPositiveInt falls back to the default for unparsable or non-positive values.
func getPositiveInt(v *viper.Viper, key string) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	n, _ := defaults[key].(int)
	return n
}
