package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress    = "localhost:8080"
	defaultLogLevel         = "warn"
	defaultEnv              = "local"
	defaultConfigDir        = ".mydiary"
	defaultRequestTimeout   = 30 * time.Second
	defaultPasswordCacheTTL = 5 * time.Minute
)

type Config struct {
	Env              string        `mapstructure:"app_env"`
	ServerAddress    string        `mapstructure:"server_address"`
	LogLevel         string        `mapstructure:"log_level"`
	ConfigDir        string        `mapstructure:"config_dir"`
	TokenPath        string        `mapstructure:"token_path"`
	EnableTLS        bool          `mapstructure:"enable_tls"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	PasswordCacheTTL time.Duration `mapstructure:"password_cache_ttl"`
}

// Load читает .env (если есть), конфигурационный файл, уже прочитанный в v, и переменные окружения.
func Load(v *viper.Viper) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("ENABLE_TLS", false)
	v.SetDefault("REQUEST_TIMEOUT", defaultRequestTimeout)
	v.SetDefault("PASSWORD_CACHE_TTL", defaultPasswordCacheTTL)

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		configDir = filepath.Join(homeDir, configDir)
	}

	cfg := &Config{
		Env:              v.GetString("APP_ENV"),
		ServerAddress:    v.GetString("SERVER_ADDRESS"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		ConfigDir:        configDir,
		TokenPath:        filepath.Join(configDir, "token"),
		EnableTLS:        v.GetBool("ENABLE_TLS"),
		RequestTimeout:   v.GetDuration("REQUEST_TIMEOUT"),
		PasswordCacheTTL: v.GetDuration("PASSWORD_CACHE_TTL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout должен быть положительным")
	}
	if c.PasswordCacheTTL < 0 {
		return fmt.Errorf("password_cache_ttl не может быть отрицательным")
	}
	return nil
}

// BaseURL возвращает адрес сервера со схемой.
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
