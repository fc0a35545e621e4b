package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	View     ViewConfig
	Source   SourceConfig
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

// RedisConfig holds Redis connection values. An empty Addr disables the
// snapshot cache.
type RedisConfig struct {
	Addr               string
	Password           string
	DB                 int
	SnapshotKey        string
	SnapshotTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	OperatorEmail         string
	OperatorPasswordHash  string
	BcryptCost            int
	Disabled              bool
}

// ViewConfig holds table defaults.
type ViewConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	Collation       string
}

// SourceConfig selects where queue snapshots come from.
type SourceConfig struct {
	Kind        string
	FilePath    string
	RefreshCron string
}

const (
	SourceKindFile     = "file"
	SourceKindPostgres = "postgres"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "queue-dashboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:               os.Getenv("REDIS_ADDR"),
			Password:           os.Getenv("REDIS_PASSWORD"),
			DB:                 redisDB,
			SnapshotKey:        getEnv("REDIS_SNAPSHOT_KEY", "queue-dashboard:snapshot"),
			SnapshotTTLSeconds: getEnvAsInt("REDIS_SNAPSHOT_TTL_SECONDS", 60),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			OperatorEmail:         os.Getenv("AUTH_OPERATOR_EMAIL"),
			OperatorPasswordHash:  os.Getenv("AUTH_OPERATOR_PASSWORD_HASH"),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			Disabled:              getEnvAsBool("AUTH_DISABLED", false),
		},
		View: ViewConfig{
			DefaultPageSize: getEnvAsInt("VIEW_DEFAULT_PAGE_SIZE", 10),
			MaxPageSize:     getEnvAsInt("VIEW_MAX_PAGE_SIZE", 100),
			Collation:       getEnv("VIEW_COLLATION", "en"),
		},
		Source: SourceConfig{
			Kind:        strings.ToLower(getEnv("SOURCE_KIND", SourceKindFile)),
			FilePath:    getEnv("SOURCE_FILE", "testdata/queues.json"),
			RefreshCron: getEnv("SOURCE_REFRESH_CRON", "@every 1m"),
		},
	}

	if cfg.Source.Kind != SourceKindFile && cfg.Source.Kind != SourceKindPostgres {
		return nil, fmt.Errorf("invalid SOURCE_KIND %q", cfg.Source.Kind)
	}
	if cfg.Source.Kind == SourceKindPostgres && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("SOURCE_KIND=postgres requires POSTGRES_DSN")
	}
	if cfg.View.DefaultPageSize <= 0 {
		cfg.View.DefaultPageSize = 10
	}
	if cfg.View.MaxPageSize < cfg.View.DefaultPageSize {
		cfg.View.MaxPageSize = cfg.View.DefaultPageSize
	}

	return cfg, nil
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

// SnapshotTTL returns how long a cached snapshot stays valid.
func (r RedisConfig) SnapshotTTL() time.Duration {
	if r.SnapshotTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.SnapshotTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
