// ABOUTME: Runtime configuration for the proxy, client and local store
// ABOUTME: Resolves defaults, an optional XDG config file, .env and the process environment via viper
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default values, mirrored in the README env table.
const (
	DefaultPort              = 4000
	DefaultCORSOrigin        = "http://localhost:5173"
	DefaultProvider          = "openai"
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultProviderTimeoutMS = 30000
	DefaultRateLimitMax      = 20
	DefaultRateLimitWindowMS = 60000
	DefaultTemperature       = 0.7
	DefaultAPIURL            = "http://localhost:4000"
	DefaultChatTimeoutMS     = 25000
	DefaultLogLevel          = "info"
	appName                  = "nudge"
	configFileName           = "config.yaml"
)

// Config is resolved once at startup and passed to constructors.
type Config struct {
	Port       int
	CORSOrigin string

	Provider        string
	Model           string
	AllowedModels   []string
	OpenAIAPIKey    string
	GeminiAPIKey    string
	ProviderBaseURL string
	ProviderTimeout time.Duration

	RateLimitMax       int
	RateLimitWindow    time.Duration
	DefaultTemperature float64

	APIURL      string
	ChatTimeout time.Duration

	DBPath   string
	LogLevel string
}

// Dir returns the XDG data directory for nudge.
func Dir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// DefaultDBPath is where the SQLite store lives unless NUDGE_DB_PATH says otherwise.
func DefaultDBPath() string {
	return filepath.Join(Dir(), "nudge.db")
}

// FilePath is the optional YAML config file.
func FilePath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

// Load resolves configuration. Precedence, lowest first: defaults, the
// config file, .env in the working directory, the process environment.
// .env never overrides variables already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(viper.New(), FilePath())
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()

	cfg := &Config{
		Port:               v.GetInt("port"),
		CORSOrigin:         strings.TrimSpace(v.GetString("cors_origin")),
		Provider:           strings.ToLower(strings.TrimSpace(v.GetString("provider"))),
		Model:              strings.TrimSpace(v.GetString("model")),
		OpenAIAPIKey:       v.GetString("openai_api_key"),
		GeminiAPIKey:       v.GetString("gemini_api_key"),
		ProviderBaseURL:    v.GetString("provider_base_url"),
		ProviderTimeout:    millis(v.GetInt("openai_timeout_ms")),
		RateLimitMax:       v.GetInt("rate_limit_max"),
		RateLimitWindow:    millis(v.GetInt("rate_limit_window_ms")),
		DefaultTemperature: v.GetFloat64("default_temperature"),
		APIURL:             strings.TrimRight(v.GetString("nudge_api_url"), "/"),
		ChatTimeout:        millis(v.GetInt("chat_timeout_ms")),
		DBPath:             v.GetString("nudge_db_path"),
		LogLevel:           strings.ToLower(v.GetString("log_level")),
	}

	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
		if cfg.Provider == "gemini" {
			cfg.Model = DefaultGeminiModel
		}
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	cfg.AllowedModels = splitList(v.GetString("allowed_models"))
	if len(cfg.AllowedModels) == 0 {
		cfg.AllowedModels = []string{cfg.Model}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("cors_origin", DefaultCORSOrigin)
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("model", "")
	v.SetDefault("allowed_models", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("provider_base_url", "")
	v.SetDefault("openai_timeout_ms", DefaultProviderTimeoutMS)
	v.SetDefault("rate_limit_max", DefaultRateLimitMax)
	v.SetDefault("rate_limit_window_ms", DefaultRateLimitWindowMS)
	v.SetDefault("default_temperature", DefaultTemperature)
	v.SetDefault("nudge_api_url", DefaultAPIURL)
	v.SetDefault("chat_timeout_ms", DefaultChatTimeoutMS)
	v.SetDefault("nudge_db_path", "")
	v.SetDefault("log_level", DefaultLogLevel)
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("invalid PORT %d", c.Port)
	case c.Provider != "openai" && c.Provider != "gemini":
		return fmt.Errorf("invalid PROVIDER %q (want openai or gemini)", c.Provider)
	case c.ProviderTimeout <= 0:
		return fmt.Errorf("OPENAI_TIMEOUT_MS must be positive")
	case c.RateLimitMax < 1:
		return fmt.Errorf("RATE_LIMIT_MAX must be at least 1")
	case c.RateLimitWindow <= 0:
		return fmt.Errorf("RATE_LIMIT_WINDOW_MS must be positive")
	case c.DefaultTemperature < 0 || c.DefaultTemperature > 2:
		return fmt.Errorf("DEFAULT_TEMPERATURE must be between 0 and 2")
	case c.ChatTimeout <= 0:
		return fmt.Errorf("CHAT_TIMEOUT_MS must be positive")
	}
	return nil
}

// APIKey returns the key for the selected provider.
func (c *Config) APIKey() string {
	if c.Provider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// Addr is the listen address for the proxy.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ModelAllowed reports whether a client-requested model may be forwarded.
func (c *Config) ModelAllowed(model string) bool {
	for _, m := range c.AllowedModels {
		if m == model {
			return true
		}
	}
	return false
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
