package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Log      LogConfig
	CORS     CORSConfig
	Analyzer AnalyzerConfig
	Limits   LimitsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for analysis history.
// History is optional: when Enabled is false the service runs stateless.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for archiving uploaded documents. Optional.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings. When File is set, logs are teed to it
// in addition to stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LimitsConfig holds upload limits.
type LimitsConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// AnalyzerProviderConfig holds settings for a single model provider.
type AnalyzerProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// AnalyzerConfig holds model analyzer settings with an optional secondary
// provider used as a rate-limit fallback, plus the retry policy applied
// around the whole chain.
type AnalyzerConfig struct {
	Primary   AnalyzerProviderConfig `mapstructure:"primary"`
	Secondary AnalyzerProviderConfig `mapstructure:"secondary"`

	MaxAttempts int           `mapstructure:"max_attempts"`
	MinBackoff  time.Duration `mapstructure:"min_backoff"`
	MaxBackoff  time.Duration `mapstructure:"max_backoff"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (a *AnalyzerConfig) SecondaryConfig() *AnalyzerProviderConfig {
	if a.Secondary.Provider != "" {
		return &a.Secondary
	}
	return nil
}

// Load reads configuration from environment variables with the SCANNO_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCANNO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults (history disabled unless configured)
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "scanno")
	v.SetDefault("db.password", "scanno_secret")
	v.SetDefault("db.name", "scanno_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 archive defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "scanno-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Limits defaults
	v.SetDefault("limits.max_file_size_mb", 25)

	// Analyzer defaults: OpenAI primary, no secondary, the retry policy of
	// the standalone analyzer (3 attempts, exponential wait from 4s to 10s).
	v.SetDefault("analyzer.primary.provider", "openai")
	v.SetDefault("analyzer.primary.api_key", "")
	v.SetDefault("analyzer.primary.default_model", "gpt-4o")
	v.SetDefault("analyzer.primary.timeout_secs", 120)
	v.SetDefault("analyzer.secondary.provider", "")
	v.SetDefault("analyzer.secondary.api_key", "")
	v.SetDefault("analyzer.secondary.default_model", "")
	v.SetDefault("analyzer.secondary.timeout_secs", 120)
	v.SetDefault("analyzer.max_attempts", 3)
	v.SetDefault("analyzer.min_backoff", "4s")
	v.SetDefault("analyzer.max_backoff", "10s")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                      "SCANNO_SERVER_PORT",
		"server.read_timeout":              "SCANNO_SERVER_READ_TIMEOUT",
		"server.write_timeout":             "SCANNO_SERVER_WRITE_TIMEOUT",
		"server.environment":               "SCANNO_SERVER_ENVIRONMENT",
		"db.enabled":                       "SCANNO_DB_ENABLED",
		"db.host":                          "SCANNO_DB_HOST",
		"db.port":                          "SCANNO_DB_PORT",
		"db.user":                          "SCANNO_DB_USER",
		"db.password":                      "SCANNO_DB_PASSWORD",
		"db.name":                          "SCANNO_DB_NAME",
		"db.sslmode":                       "SCANNO_DB_SSLMODE",
		"db.max_open":                      "SCANNO_DB_MAX_OPEN",
		"db.max_idle":                      "SCANNO_DB_MAX_IDLE",
		"s3.enabled":                       "SCANNO_S3_ENABLED",
		"s3.region":                        "SCANNO_S3_REGION",
		"s3.bucket":                        "SCANNO_S3_BUCKET",
		"s3.endpoint":                      "SCANNO_S3_ENDPOINT",
		"s3.access_key":                    "SCANNO_S3_ACCESS_KEY",
		"s3.secret_key":                    "SCANNO_S3_SECRET_KEY",
		"s3.presign_expiry":                "SCANNO_S3_PRESIGN_EXPIRY",
		"log.level":                        "SCANNO_LOG_LEVEL",
		"log.file":                         "SCANNO_LOG_FILE",
		"cors.allowed_origins":             "SCANNO_CORS_ALLOWED_ORIGINS",
		"limits.max_file_size_mb":          "SCANNO_LIMITS_MAX_FILE_SIZE_MB",
		"analyzer.primary.provider":        "SCANNO_ANALYZER_PRIMARY_PROVIDER",
		"analyzer.primary.api_key":         "SCANNO_ANALYZER_PRIMARY_API_KEY",
		"analyzer.primary.default_model":   "SCANNO_ANALYZER_PRIMARY_DEFAULT_MODEL",
		"analyzer.primary.timeout_secs":    "SCANNO_ANALYZER_PRIMARY_TIMEOUT_SECS",
		"analyzer.secondary.provider":      "SCANNO_ANALYZER_SECONDARY_PROVIDER",
		"analyzer.secondary.api_key":       "SCANNO_ANALYZER_SECONDARY_API_KEY",
		"analyzer.secondary.default_model": "SCANNO_ANALYZER_SECONDARY_DEFAULT_MODEL",
		"analyzer.secondary.timeout_secs":  "SCANNO_ANALYZER_SECONDARY_TIMEOUT_SECS",
		"analyzer.max_attempts":            "SCANNO_ANALYZER_MAX_ATTEMPTS",
		"analyzer.min_backoff":             "SCANNO_ANALYZER_MIN_BACKOFF",
		"analyzer.max_backoff":             "SCANNO_ANALYZER_MAX_BACKOFF",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SCANNO_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SCANNO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Enabled:       v.GetBool("s3.enabled"),
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
		File:  v.GetString("log.file"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Limits = LimitsConfig{
		MaxFileSizeMB: v.GetInt64("limits.max_file_size_mb"),
	}

	cfg.Analyzer = AnalyzerConfig{
		Primary: AnalyzerProviderConfig{
			Provider:     v.GetString("analyzer.primary.provider"),
			APIKey:       v.GetString("analyzer.primary.api_key"),
			DefaultModel: v.GetString("analyzer.primary.default_model"),
			TimeoutSecs:  v.GetInt("analyzer.primary.timeout_secs"),
		},
		Secondary: AnalyzerProviderConfig{
			Provider:     v.GetString("analyzer.secondary.provider"),
			APIKey:       v.GetString("analyzer.secondary.api_key"),
			DefaultModel: v.GetString("analyzer.secondary.default_model"),
			TimeoutSecs:  v.GetInt("analyzer.secondary.timeout_secs"),
		},
		MaxAttempts: v.GetInt("analyzer.max_attempts"),
		MinBackoff:  v.GetDuration("analyzer.min_backoff"),
		MaxBackoff:  v.GetDuration("analyzer.max_backoff"),
	}

	return cfg, nil
}
