package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env        string
	DB         DB
	Server     Server
	Logger     Logger
	Protection Protection
	Session    Session
}

type DB struct {
	Driver      string `env:"STORAGE_DRIVER"`
	DatabaseURI string `env:"DATABASE_URI"`
	SQLitePath  string `env:"SQLITE_PATH"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type Server struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

type Logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Protection настраивает блокировку и хэширование паролей записей.
type Protection struct {
	MaxAttempts         int           `env:"LOCKOUT_MAX_ATTEMPTS"`
	LockoutDuration     time.Duration `env:"LOCKOUT_DURATION"`
	BcryptCost          int           `env:"PROTECTION_BCRYPT_COST"`
	HashWorkers         int           `env:"PROTECTION_HASH_WORKERS"`
	VerifyRatePerMinute int           `env:"VERIFY_RATE_PER_MINUTE"`
}

type Session struct {
	TTL time.Duration `env:"SESSION_TTL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("run_address", ":8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("storage_driver", DriverPostgres)
	v.SetDefault("sqlite_path", "mydiary.db")
	v.SetDefault("migrations_path", "migrations")
	v.SetDefault("log_level", "info")
	v.SetDefault("lockout_max_attempts", 3)
	v.SetDefault("lockout_duration", 3*time.Hour)
	v.SetDefault("protection_bcrypt_cost", 10)
	v.SetDefault("protection_hash_workers", 0)
	v.SetDefault("verify_rate_per_minute", 30)
	v.SetDefault("session_ttl", 24*time.Hour)
}

// MustLoad читает .env (если есть) и переменные окружения.
func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := Load(viper.New())
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Env: v.GetString("app_env"),
		DB: DB{
			Driver:      v.GetString("storage_driver"),
			DatabaseURI: v.GetString("database_uri"),
			SQLitePath:  v.GetString("sqlite_path"),
			Migrations:  v.GetString("migrations_path"),
		},
		Server: Server{
			RunAddress:      v.GetString("run_address"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Logger: Logger{LogLevel: v.GetString("log_level")},
		Protection: Protection{
			MaxAttempts:         v.GetInt("lockout_max_attempts"),
			LockoutDuration:     v.GetDuration("lockout_duration"),
			BcryptCost:          v.GetInt("protection_bcrypt_cost"),
			HashWorkers:         v.GetInt("protection_hash_workers"),
			VerifyRatePerMinute: v.GetInt("verify_rate_per_minute"),
		},
		Session: Session{TTL: v.GetDuration("session_ttl")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.Env)
	}

	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.DatabaseURI == "" {
			return fmt.Errorf("DATABASE_URI is required for the %s driver", DriverPostgres)
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s driver", DriverSQLite)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.DB.Driver)
	}

	if c.Protection.MaxAttempts <= 0 {
		return fmt.Errorf("LOCKOUT_MAX_ATTEMPTS must be positive")
	}
	if c.Protection.LockoutDuration <= 0 {
		return fmt.Errorf("LOCKOUT_DURATION must be positive")
	}

	return nil
}
