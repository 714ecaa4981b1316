package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis (backs the asynq queues)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Server
	ApiPort string

	// REA syndication API
	ReaTokenURL     string
	ReaExportURL    string
	ReaClientID     string
	ReaClientSecret string
	ReaScope        string
	ReaHTTPTimeout  time.Duration

	// Token cache: fraction of the issuer-stated lifetime we are willing to
	// reuse a token for. Kept below 1.0 so a token is never used right at
	// the boundary of its expiry.
	TokenLifetimeRatio float64
	TokenLifetime      time.Duration // nominal lifetime when the issuer does not state one

	// Export retry policy
	ExportMaxAttempts int
	ExportRetryDelay  time.Duration

	// Admin alerting
	AdminEmails     []string
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string

	// AWS S3 (REAXML document archive)
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ArchiveDocuments   bool

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second

	// App Defaults
	AppName string
}

// Named defaults for the retry policy. Delay and attempt count are
// configurable but default to the values the syndication pipeline has
// always used.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 5 * time.Minute
)

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	// Load basic string values
	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.ApiPort = getEnv("API_PORT", "8080")

	cfg.ReaTokenURL, err = getRequiredEnv("REA_TOKEN_URL")
	if err != nil {
		return nil, err
	}
	cfg.ReaExportURL, err = getRequiredEnv("REA_EXPORT_URL")
	if err != nil {
		return nil, err
	}
	cfg.ReaClientID, err = getRequiredEnv("REA_CLIENT_ID")
	if err != nil {
		return nil, err
	}
	cfg.ReaClientSecret, err = getRequiredEnv("REA_CLIENT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ReaScope = getEnv("REA_SCOPE", "listings:write")

	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@grokstate.example.com")

	adminEmails := getEnv("ADMIN_EMAILS", "")
	for _, addr := range strings.Split(adminEmails, ",") {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			cfg.AdminEmails = append(cfg.AdminEmails, trimmed)
		}
	}

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ArchiveDocuments = getEnv("ARCHIVE_DOCUMENTS", "false") == "true"

	cfg.AppName = getEnv("APP_NAME", "grokstate")

	// Load numeric and time duration values with defaults and parsing
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	httpTimeoutSeconds, err := strconv.ParseInt(getEnv("REA_HTTP_TIMEOUT_SECONDS", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REA_HTTP_TIMEOUT_SECONDS: %w", err)
	}
	cfg.ReaHTTPTimeout = time.Duration(httpTimeoutSeconds) * time.Second

	cfg.TokenLifetimeRatio, err = strconv.ParseFloat(getEnv("TOKEN_LIFETIME_RATIO", "0.97"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_LIFETIME_RATIO: %w", err)
	}
	if cfg.TokenLifetimeRatio <= 0 || cfg.TokenLifetimeRatio > 1 {
		return nil, fmt.Errorf("TOKEN_LIFETIME_RATIO must be in (0, 1], got %f", cfg.TokenLifetimeRatio)
	}

	tokenLifetimeSeconds, err := strconv.ParseInt(getEnv("TOKEN_LIFETIME_SECONDS", "3600"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_LIFETIME_SECONDS: %w", err)
	}
	cfg.TokenLifetime = time.Duration(tokenLifetimeSeconds) * time.Second

	cfg.ExportMaxAttempts, err = strconv.Atoi(getEnv("EXPORT_MAX_ATTEMPTS", strconv.Itoa(DefaultMaxAttempts)))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_MAX_ATTEMPTS: %w", err)
	}
	if cfg.ExportMaxAttempts < 1 {
		return nil, fmt.Errorf("EXPORT_MAX_ATTEMPTS must be at least 1, got %d", cfg.ExportMaxAttempts)
	}

	retryDelaySeconds, err := strconv.ParseInt(getEnv("EXPORT_RETRY_DELAY_SECONDS", "300"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_RETRY_DELAY_SECONDS: %w", err)
	}
	cfg.ExportRetryDelay = time.Duration(retryDelaySeconds) * time.Second

	// Rate Limiting
	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
