package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Import       ImportConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret         string
	SessionTTLMinutes int
	BcryptCost        int
	SingleSession     bool
}

// ImportConfig bounds the bulk user import.
type ImportConfig struct {
	MaxUploadBytes int
	ErrorPreview   int
}

// NotificationConfig points the event sink at a broker. An empty URL keeps
// notifications log-only.
type NotificationConfig struct {
	AMQPURL      string
	AMQPExchange string
}

// Load reads configuration from .env and the environment, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  v.GetString("APP_NAME"),
			Env:                   v.GetString("APP_ENV"),
			Host:                  v.GetString("APP_HOST"),
			Port:                  v.GetString("APP_PORT"),
			Version:               v.GetString("APP_VERSION"),
			RequestTimeoutSeconds: v.GetInt("HTTP_REQUEST_TIMEOUT_SECONDS"),
		},
		Postgres: PostgresConfig{
			DSN:            v.GetString("POSTGRES_DSN"),
			MaxConns:       v.GetInt32("POSTGRES_MAX_CONNS"),
			MinConns:       v.GetInt32("POSTGRES_MIN_CONNS"),
			RunMigrations:  v.GetBool("POSTGRES_RUN_MIGRATIONS"),
			ConnMaxIdleSec: v.GetInt32("POSTGRES_CONN_MAX_IDLE_SECONDS"),
			ConnMaxLifeSec: v.GetInt32("POSTGRES_CONN_MAX_LIFE_SECONDS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Auth: AuthConfig{
			JWTSecret:         v.GetString("AUTH_JWT_SECRET"),
			SessionTTLMinutes: v.GetInt("AUTH_SESSION_TTL_MINUTES"),
			BcryptCost:        v.GetInt("AUTH_BCRYPT_COST"),
			SingleSession:     v.GetBool("AUTH_SINGLE_SESSION"),
		},
		Import: ImportConfig{
			MaxUploadBytes: v.GetInt("IMPORT_MAX_UPLOAD_BYTES"),
			ErrorPreview:   v.GetInt("IMPORT_ERROR_PREVIEW"),
		},
		Notification: NotificationConfig{
			AMQPURL:      strings.TrimSpace(v.GetString("NOTIFY_AMQP_URL")),
			AMQPExchange: v.GetString("NOTIFY_AMQP_EXCHANGE"),
		},
	}

	if cfg.App.Env == "production" && cfg.Auth.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set in production")
	}

	return cfg, nil
}

const defaultJWTSecret = "dev-secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "facility-helpdesk")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("HTTP_REQUEST_TIMEOUT_SECONDS", 30)

	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("POSTGRES_MAX_CONNS", 10)
	v.SetDefault("POSTGRES_MIN_CONNS", 2)
	v.SetDefault("POSTGRES_RUN_MIGRATIONS", true)
	v.SetDefault("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)
	v.SetDefault("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("AUTH_JWT_SECRET", defaultJWTSecret)
	v.SetDefault("AUTH_SESSION_TTL_MINUTES", 120)
	v.SetDefault("AUTH_BCRYPT_COST", 12)
	v.SetDefault("AUTH_SINGLE_SESSION", true)

	v.SetDefault("IMPORT_MAX_UPLOAD_BYTES", 10*1024*1024)
	v.SetDefault("IMPORT_ERROR_PREVIEW", 10)

	v.SetDefault("NOTIFY_AMQP_URL", "")
	v.SetDefault("NOTIFY_AMQP_EXCHANGE", "helpdesk.events")
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL returns how long an issued session stays valid.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}
