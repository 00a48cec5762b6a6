// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Telegram struct {
		Token       string
		OwnerChatID int64
	}
	GPT struct {
		APIKey    string
		Model     string
		BaseURL   string
		Timeout   time.Duration
		MaxTokens int
	}
	Storage struct {
		Path string
	}
	Server struct {
		Port string
	}
	Advice struct {
		Debounce time.Duration
	}
	Log struct {
		Development bool
	}
	ShutdownTimeout time.Duration
}

const (
	DefaultModel    = "gpt-4o-mini"
	DefaultPort     = "8080"
	DefaultDebounce = time.Second
)

// Load loads the configuration
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("$HOME/.nutrivision")

	v.SetDefault("ShutdownTimeout", 10*time.Second)
	v.SetDefault("GPT.Model", DefaultModel)
	v.SetDefault("GPT.MaxTokens", 1500)
	v.SetDefault("Server.Port", DefaultPort)
	v.SetDefault("Storage.Path", defaultStoragePath())
	v.SetDefault("Advice.Debounce", DefaultDebounce)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		return fromEnv()
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// fromEnv builds the configuration from plain environment variables when no
// config file is present.
func fromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	if owner := os.Getenv("TELEGRAM_OWNER_CHAT_ID"); owner != "" {
		id, err := strconv.ParseInt(owner, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_OWNER_CHAT_ID: %w", err)
		}
		cfg.Telegram.OwnerChatID = id
	}

	cfg.GPT.APIKey = os.Getenv("GPT_API_KEY")
	if cfg.GPT.APIKey == "" {
		cfg.GPT.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.GPT.Model = getEnvOr("GPT_MODEL", DefaultModel)
	cfg.GPT.BaseURL = os.Getenv("GPT_BASE_URL")
	cfg.GPT.MaxTokens = 1500

	cfg.Storage.Path = getEnvOr("STORAGE_PATH", defaultStoragePath())
	cfg.Server.Port = getEnvOr("SERVER_PORT", DefaultPort)
	cfg.Log.Development = os.Getenv("LOG_DEVELOPMENT") == "true"
	cfg.ShutdownTimeout = 10 * time.Second

	var err error
	if cfg.GPT.Timeout, err = getDurationOr("GPT_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.Advice.Debounce, err = getDurationOr("ADVICE_DEBOUNCE", DefaultDebounce); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateGPT reports whether the AI service is configured.
func (c *Config) ValidateGPT() error {
	if c.GPT.APIKey == "" {
		return errors.New("GPT API key is not configured")
	}
	return nil
}

// ValidateTelegram reports whether the bot can run.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram token is not configured")
	}
	if c.Telegram.OwnerChatID == 0 {
		return errors.New("telegram owner chat id is not configured")
	}
	return nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nutrivision.db"
	}
	return filepath.Join(home, ".nutrivision", "nutrivision.db")
}

// Helper function to get environment variable with default value
func getEnvOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOr(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
