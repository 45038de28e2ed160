package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "foodgram-dev-secret"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	SQLitePath  string
	AutoMigrate bool

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Image storage
	ImageStorage string
	MediaDir     string
	MediaURL     string
	S3BucketName string
	S3Region     string
	S3PublicURL  string

	// Recipe creation limit per user per hour, 0 disables it
	RecipeCreateLimit int

	LogMode string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig reads everything from environment variables; CI has no secrets directory.
func loadCIConfig(cfg *Config) error {
	loadCommon(cfg, func(key, _ string, def string) string {
		return envOr(key, def)
	})
	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	if cfg.DBPassword == "" {
		cfg.DBPassword = os.Getenv("DB_PASSWORD")
	}
	if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
		return fmt.Errorf("TEST_DB_PASSWORD environment variable is required in CI environment")
	}
	if secret := os.Getenv("TEST_JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	return nil
}

// loadDevConfig prefers environment variables, then Docker secrets, then local defaults.
func loadDevConfig(cfg *Config) error {
	loadCommon(cfg, func(key, secret, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v := readSecret(secret); v != "" {
			return v
		}
		return def
	})
	return nil
}

// loadProdConfig prefers Docker secrets over environment variables and has no secret defaults.
func loadProdConfig(cfg *Config) error {
	loadCommon(cfg, func(key, secret, def string) string {
		if v := readSecret(secret); v != "" {
			return v
		}
		return envOr(key, def)
	})
	return nil
}

type lookupFunc func(envKey, secretName, def string) string

func loadCommon(cfg *Config, get lookupFunc) {
	cfg.ServerPort = get("SERVER_PORT", "server_port", "8080")
	cfg.ServerHost = get("SERVER_HOST", "server_host", "0.0.0.0")
	cfg.CORSOrigins = splitList(get("CORS_ORIGINS", "cors_origins", "http://localhost:3000,http://localhost:5173"))

	cfg.DBDriver = strings.ToLower(get("DB_DRIVER", "db_driver", "postgres"))
	cfg.DBHost = get("DB_HOST", "db_host", "localhost")
	cfg.DBPort = get("DB_PORT", "db_port", "5432")
	cfg.DBUser = get("DB_USER", "db_user", "postgres")
	cfg.DBPassword = get("DB_PASSWORD", "db_password", "postgres")
	cfg.DBName = get("DB_NAME", "db_name", "foodgram")
	cfg.DBSSLMode = get("DB_SSL_MODE", "db_ssl_mode", "disable")
	cfg.SQLitePath = get("SQLITE_PATH", "sqlite_path", "foodgram.db")
	cfg.AutoMigrate = parseBool(get("DB_AUTO_MIGRATE", "db_auto_migrate", "true"))

	cfg.RedisHost = get("REDIS_HOST", "redis_host", "")
	cfg.RedisPort = get("REDIS_PORT", "redis_port", "6379")
	cfg.RedisPassword = get("REDIS_PASSWORD", "redis_password", "")
	cfg.RedisDB = parseInt(get("REDIS_DB", "redis_db", "0"), 0)
	cfg.RedisURL = get("REDIS_URL", "redis_url", "")

	cfg.JWTSecret = get("JWT_SECRET", "jwt_secret", defaultJWTSecret)
	cfg.JWTTTL = parseDuration(get("JWT_TTL", "jwt_ttl", "24h"), 24*time.Hour)

	cfg.ImageStorage = strings.ToLower(get("IMAGE_STORAGE", "image_storage", "local"))
	cfg.MediaDir = get("MEDIA_DIR", "media_dir", "media")
	cfg.MediaURL = get("MEDIA_URL", "media_url", "/media")
	cfg.S3BucketName = get("S3_BUCKET_NAME", "s3_bucket_name", "")
	cfg.S3Region = get("AWS_REGION", "aws_region", "")
	cfg.S3PublicURL = get("S3_PUBLIC_URL", "s3_public_url", "")

	cfg.RecipeCreateLimit = parseInt(get("RECIPE_CREATE_LIMIT", "recipe_create_limit", "30"), 30)
	cfg.LogMode = get("LOG_MODE", "log_mode", string(GetEnvironment()))
}

// DSN builds the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether a Redis endpoint was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
