package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	AI       AIConfig       `mapstructure:"ai"`
	PDF      PDFConfig      `mapstructure:"pdf"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	// ClamdAddr 为空时跳过上传文件的病毒扫描。
	ClamdAddr string `mapstructure:"clamd_addr"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Name       string `mapstructure:"name"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	SSLMode    string `mapstructure:"sslmode"`
	LogQueries bool   `mapstructure:"log_queries"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	PublicEndpoint  string `mapstructure:"public_endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	// BucketLookup: auto | dns | path
	BucketLookup     string        `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool          `mapstructure:"auto_create_bucket"`
	LinkTTL          time.Duration `mapstructure:"link_ttl"`
}

// AuthConfig holds the RS256 key pair and token lifetimes. Empty keys make
// the API generate an ephemeral pair at boot.
type AuthConfig struct {
	PrivateKeyPEM   string        `mapstructure:"private_key_pem"`
	PublicKeyPEM    string        `mapstructure:"public_key_pem"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	// 登录节流：每 IP+邮箱每小时的尝试次数，连续失败达到阈值后锁定 LoginLockTTL。
	LoginRateLimitPerHour int           `mapstructure:"login_rate_limit_per_hour"`
	LoginLockThreshold    int           `mapstructure:"login_lock_threshold"`
	LoginLockTTL          time.Duration `mapstructure:"login_lock_ttl"`
	CookieDomain          string        `mapstructure:"cookie_domain"`
}

// AIConfig configures the generative-model providers used by template import.
type AIConfig struct {
	DefaultProvider string        `mapstructure:"default_provider"`
	Timeout         time.Duration `mapstructure:"timeout"`
	GeminiAPIKey    string        `mapstructure:"gemini_api_key"`
	GeminiModel     string        `mapstructure:"gemini_model"`
	GeminiBaseURL   string        `mapstructure:"gemini_base_url"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	OpenAIModel     string        `mapstructure:"openai_model"`
	OpenAIBaseURL   string        `mapstructure:"openai_base_url"`
}

// PDFConfig configures the headless browser pool.
type PDFConfig struct {
	BrowserBin    string        `mapstructure:"browser_bin"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
}

// LimitsConfig contains per-user quotas.
type LimitsConfig struct {
	MaxResumes     int   `mapstructure:"max_resumes"`
	ImportsPerHour int   `mapstructure:"imports_per_hour"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// WorkerConfig contains asynq server settings.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxRetry    int `mapstructure:"max_retry"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AI.DefaultProvider = strings.ToLower(strings.TrimSpace(cfg.AI.DefaultProvider))

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDatabase 只读取数据库相关配置，供运维命令使用，不要求 MinIO/Redis 等变量。
func LoadDatabase() (DatabaseConfig, error) {
	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return DatabaseConfig{}, fmt.Errorf("bind env: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DatabaseConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validateDatabase(cfg.Database); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg.Database, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "curriculo")
	v.SetDefault("database.user", "curriculo")
	v.SetDefault("database.password", "curriculo")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_queries", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "curriculos")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("minio.link_ttl", 15*time.Minute)
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.login_rate_limit_per_hour", 10)
	v.SetDefault("auth.login_lock_threshold", 5)
	v.SetDefault("auth.login_lock_ttl", 15*time.Minute)
	v.SetDefault("ai.default_provider", "gemini")
	v.SetDefault("ai.timeout", 90*time.Second)
	v.SetDefault("ai.gemini_model", "gemini-2.5-flash")
	v.SetDefault("ai.openai_model", "gpt-4.1-mini")
	v.SetDefault("pdf.timeout", 30*time.Second)
	v.SetDefault("pdf.max_concurrent", 2)
	v.SetDefault("limits.max_resumes", 50)
	v.SetDefault("limits.imports_per_hour", 10)
	v.SetDefault("limits.max_upload_bytes", 8<<20)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.max_retry", 3)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                       "API_PORT",
		"api.allowed_origins":            "API_ALLOWED_ORIGINS",
		"database.host":                  "DATABASE_HOST",
		"database.port":                  "DATABASE_PORT",
		"database.name":                  "POSTGRES_DB",
		"database.user":                  "POSTGRES_USER",
		"database.password":              "POSTGRES_PASSWORD",
		"database.sslmode":               "DATABASE_SSLMODE",
		"database.log_queries":           "DATABASE_LOG_QUERIES",
		"redis.host":                     "REDIS_HOST",
		"redis.port":                     "REDIS_PORT",
		"minio.endpoint":                 "MINIO_ENDPOINT",
		"minio.public_endpoint":          "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":            "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":        "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":                  "MINIO_USE_SSL",
		"minio.bucket":                   "MINIO_BUCKET",
		"minio.region":                   "MINIO_REGION",
		"minio.bucket_lookup":            "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket":       "MINIO_AUTO_CREATE_BUCKET",
		"minio.link_ttl":                 "MINIO_LINK_TTL",
		"auth.private_key_pem":           "JWT_PRIVATE_KEY",
		"auth.public_key_pem":            "JWT_PUBLIC_KEY",
		"auth.access_token_ttl":          "JWT_ACCESS_TTL",
		"auth.refresh_token_ttl":         "JWT_REFRESH_TTL",
		"auth.login_rate_limit_per_hour": "LOGIN_RATE_LIMIT_PER_HOUR",
		"auth.login_lock_threshold":      "LOGIN_LOCK_THRESHOLD",
		"auth.login_lock_ttl":            "LOGIN_LOCK_TTL",
		"auth.cookie_domain":             "COOKIE_DOMAIN",
		"ai.default_provider":            "AI_PROVIDER",
		"ai.timeout":                     "AI_TIMEOUT",
		"ai.gemini_api_key":              "GEMINI_API_KEY",
		"ai.gemini_model":                "GEMINI_MODEL",
		"ai.gemini_base_url":             "GEMINI_BASE_URL",
		"ai.openai_api_key":              "OPENAI_API_KEY",
		"ai.openai_model":                "OPENAI_MODEL",
		"ai.openai_base_url":             "OPENAI_BASE_URL",
		"pdf.browser_bin":                "PDF_BROWSER_BIN",
		"pdf.timeout":                    "PDF_TIMEOUT",
		"pdf.max_concurrent":             "PDF_MAX_CONCURRENT",
		"limits.max_resumes":             "LIMIT_MAX_RESUMES",
		"limits.imports_per_hour":        "LIMIT_IMPORTS_PER_HOUR",
		"limits.max_upload_bytes":        "LIMIT_MAX_UPLOAD_BYTES",
		"worker.concurrency":             "WORKER_CONCURRENCY",
		"worker.max_retry":               "WORKER_MAX_RETRY",
		"clamd_addr":                     "CLAMD_ADDR",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validateDatabase(d DatabaseConfig) error {
	switch {
	case d.Host == "":
		return errors.New("database host is required")
	case d.Port <= 0:
		return errors.New("database port must be positive")
	case d.Name == "":
		return errors.New("database name is required")
	case d.User == "":
		return errors.New("database user is required")
	case d.Password == "":
		return errors.New("database password is required")
	case d.SSLMode == "":
		return errors.New("database sslmode is required")
	}
	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if err := validateDatabase(cfg.Database); err != nil {
		return err
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	switch cfg.MinIO.BucketLookup {
	case "", "auto", "dns", "path":
	default:
		return fmt.Errorf("minio bucket lookup %q is invalid", cfg.MinIO.BucketLookup)
	}
	if (cfg.Auth.PrivateKeyPEM == "") != (cfg.Auth.PublicKeyPEM == "") {
		return errors.New("jwt private and public keys must be set together")
	}
	if cfg.Auth.AccessTokenTTL <= 0 || cfg.Auth.RefreshTokenTTL <= 0 {
		return errors.New("jwt token ttl must be positive")
	}
	if cfg.Auth.LoginRateLimitPerHour <= 0 || cfg.Auth.LoginLockThreshold <= 0 || cfg.Auth.LoginLockTTL <= 0 {
		return errors.New("login throttling settings must be positive")
	}
	switch cfg.AI.DefaultProvider {
	case "gemini", "chatgpt", "openai":
	default:
		return fmt.Errorf("ai provider %q is invalid", cfg.AI.DefaultProvider)
	}
	if cfg.AI.Timeout <= 0 {
		return errors.New("ai timeout must be positive")
	}
	if cfg.PDF.MaxConcurrent <= 0 {
		return errors.New("pdf max concurrent must be positive")
	}
	if cfg.Limits.MaxResumes <= 0 {
		return errors.New("max resumes must be positive")
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	return nil
}
