package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Engine   EngineConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EngineConfig tunes the bulk timetable mutation engine.
type EngineConfig struct {
	// AlternativeSlotAttempts bounds how many alternative time slots a
	// reschedule tries before failing an entry.
	AlternativeSlotAttempts int
	// ProgressUpdateEvery is the entry interval between persisted progress
	// updates during an executor loop.
	ProgressUpdateEvery int
	// WorkloadWarnRatio is the new/old active-entry ratio above which a
	// faculty replacement emits a workload warning.
	WorkloadWarnRatio float64
	// Throughput constants (entries per minute) per operation kind, used by
	// the dry-run duration estimate.
	CloneThroughput      int
	ReplaceThroughput    int
	RescheduleThroughput int
	// ProgressCacheTTL bounds how long a progress poll may be served from
	// redis before re-reading the store.
	ProgressCacheTTL time.Duration
	// AsyncWorkers sizes the background queue for async operation execution.
	AsyncWorkers int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Engine = EngineConfig{
		AlternativeSlotAttempts: v.GetInt("ENGINE_ALTERNATIVE_SLOT_ATTEMPTS"),
		ProgressUpdateEvery:     v.GetInt("ENGINE_PROGRESS_UPDATE_EVERY"),
		WorkloadWarnRatio:       v.GetFloat64("ENGINE_WORKLOAD_WARN_RATIO"),
		CloneThroughput:         v.GetInt("ENGINE_CLONE_THROUGHPUT"),
		ReplaceThroughput:       v.GetInt("ENGINE_REPLACE_THROUGHPUT"),
		RescheduleThroughput:    v.GetInt("ENGINE_RESCHEDULE_THROUGHPUT"),
		ProgressCacheTTL:        parseDuration(v.GetString("ENGINE_PROGRESS_CACHE_TTL"), 2*time.Second),
		AsyncWorkers:            v.GetInt("ENGINE_ASYNC_WORKERS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "college_management")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENGINE_ALTERNATIVE_SLOT_ATTEMPTS", 3)
	v.SetDefault("ENGINE_PROGRESS_UPDATE_EVERY", 5)
	v.SetDefault("ENGINE_WORKLOAD_WARN_RATIO", 1.2)
	v.SetDefault("ENGINE_CLONE_THROUGHPUT", 20)
	v.SetDefault("ENGINE_REPLACE_THROUGHPUT", 50)
	v.SetDefault("ENGINE_RESCHEDULE_THROUGHPUT", 30)
	v.SetDefault("ENGINE_PROGRESS_CACHE_TTL", "2s")
	v.SetDefault("ENGINE_ASYNC_WORKERS", 1)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
