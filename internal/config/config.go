package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Cache      CacheConfig
	Email      EmailConfig
	Cloudinary CloudinaryConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
	ServerName      string
	BaseURL         string

	CORSAllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	ConnectTimeout     time.Duration
	SlowQueryThreshold time.Duration
	EnableQueryLogging bool
	MigrationsPath     string

	// Retry behavior for initial connection
	MaxRetryAttempts int
	RetryBackoff     time.Duration
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	JWTIssuer  string
	BCryptCost int

	// Password reset tokens
	ResetTokenExpiry time.Duration
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Backend is "memory" or "redis"
	Backend  string
	RedisURL string
	Prefix   string
}

// EmailConfig holds outbound email configuration
type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// CloudinaryConfig holds Cloudinary configuration
type CloudinaryConfig struct {
	CloudName      string
	APIKey         string
	APISecret      string
	UploadFolder   string
	MaxFileSize    int64
	AllowedFormats []string
}

// RateLimitConfig holds per-endpoint-class rate limits
type RateLimitConfig struct {
	Enabled bool

	// General API traffic
	APIRequests int
	APIWindow   time.Duration

	// Login/register/reset attempts
	AuthRequests int
	AuthWindow   time.Duration

	// Application submissions
	ApplyRequests int
	ApplyWindow   time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load()
		}
	}

	config := &Config{
		Server:     loadServerConfig(env),
		Database:   loadDatabaseConfig(env),
		Auth:       loadAuthConfig(),
		Cache:      loadCacheConfig(),
		Email:      loadEmailConfig(),
		Cloudinary: loadCloudinaryConfig(),
		RateLimit:  loadRateLimitConfig(env),
		Logging:    loadLoggingConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Environment:     env,
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20),
		ServerName:      getEnv("SERVER_NAME", "JobMatchHub"),
		BaseURL:         getEnv("APP_BASE_URL", "http://localhost:9000"),
	}

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		config.CORSAllowedOrigins = strings.Split(origins, ",")
	} else if env == "production" {
		config.CORSAllowedOrigins = nil
	} else {
		config.CORSAllowedOrigins = []string{"*"}
	}

	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	var defaultMaxOpen, defaultMaxIdle int
	var defaultConnLifetime time.Duration

	switch env {
	case "production":
		defaultMaxOpen = 50
		defaultMaxIdle = 20
		defaultConnLifetime = 15 * time.Minute
	case "staging":
		defaultMaxOpen = 25
		defaultMaxIdle = 10
		defaultConnLifetime = 10 * time.Minute
	default: // development
		defaultMaxOpen = 10
		defaultMaxIdle = 5
		defaultConnLifetime = 5 * time.Minute
	}

	return DatabaseConfig{
		URL:                os.Getenv("DATABASE_URL"),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", defaultMaxOpen),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", defaultMaxIdle),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", defaultConnLifetime),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		EnableQueryLogging: getBoolEnv("DB_ENABLE_QUERY_LOGGING", env == "development"),
		MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		MaxRetryAttempts:   getIntEnv("DB_MAX_RETRY_ATTEMPTS", 5),
		RetryBackoff:       getDurationEnv("DB_RETRY_BACKOFF", 1*time.Second),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTExpiry:        getDurationEnv("JWT_EXPIRY", 24*time.Hour),
		JWTIssuer:        getEnv("JWT_ISSUER", "jobmatchhub"),
		BCryptCost:       getIntEnv("BCRYPT_COST", 12),
		ResetTokenExpiry: getDurationEnv("RESET_TOKEN_EXPIRY", 10*time.Minute),
	}
}

func loadCacheConfig() CacheConfig {
	backend := getEnv("CACHE_BACKEND", "memory")
	if getEnv("REDIS_URL", "") != "" {
		backend = getEnv("CACHE_BACKEND", "redis")
	}
	return CacheConfig{
		Backend:  backend,
		RedisURL: getEnv("REDIS_URL", ""),
		Prefix:   getEnv("CACHE_PREFIX", "jobmatchhub"),
	}
}

func loadEmailConfig() EmailConfig {
	return EmailConfig{
		Enabled:  getBoolEnv("EMAIL_ENABLED", getEnv("EMAIL_HOST", "") != ""),
		Host:     getEnv("EMAIL_HOST", ""),
		Port:     getIntEnv("EMAIL_PORT", 587),
		Username: getEnv("EMAIL_USER", ""),
		Password: getEnv("EMAIL_PASS", ""),
		From:     getEnv("EMAIL_FROM", "noreply@jobmatchhub.com"),
	}
}

func loadCloudinaryConfig() CloudinaryConfig {
	config := CloudinaryConfig{
		CloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		APIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		APISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "jobmatchhub"),
		MaxFileSize:  getInt64Env("CLOUDINARY_MAX_FILE_SIZE", 5*1024*1024),
	}
	if formats := getEnv("CLOUDINARY_ALLOWED_FORMATS", "pdf,doc,docx,jpg,jpeg,png"); formats != "" {
		config.AllowedFormats = strings.Split(formats, ",")
	}
	return config
}

func loadRateLimitConfig(env string) RateLimitConfig {
	return RateLimitConfig{
		Enabled:       getBoolEnv("RATE_LIMIT_ENABLED", env != "development"),
		APIRequests:   getIntEnv("RATE_LIMIT_API_REQUESTS", 100),
		APIWindow:     getDurationEnv("RATE_LIMIT_API_WINDOW", 15*time.Minute),
		AuthRequests:  getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 5),
		AuthWindow:    getDurationEnv("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),
		ApplyRequests: getIntEnv("RATE_LIMIT_APPLY_REQUESTS", 10),
		ApplyWindow:   getDurationEnv("RATE_LIMIT_APPLY_WINDOW", 1*time.Hour),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
		Output: getEnv("LOG_OUTPUT", "stdout"),
	}
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Auth.Validate(c.Server.Environment); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit config: %w", err)
	}

	return nil
}

// Validate validates database configuration
func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}

	if d.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}

	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}

	if d.ConnMaxLifetime <= 0 {
		return fmt.Errorf("ConnMaxLifetime must be positive")
	}

	if d.SlowQueryThreshold <= 0 {
		return fmt.Errorf("SlowQueryThreshold must be positive")
	}

	return nil
}

// Validate validates auth configuration
func (a *AuthConfig) Validate(env string) error {
	if a.JWTSecret == "" && env == "production" {
		return fmt.Errorf("JWT_SECRET must be set for production")
	}

	if a.BCryptCost < 4 || a.BCryptCost > 31 {
		return fmt.Errorf("BCryptCost must be between 4 and 31")
	}

	if a.JWTExpiry <= 0 {
		return fmt.Errorf("JWTExpiry must be positive")
	}

	if a.ResetTokenExpiry <= 0 {
		return fmt.Errorf("ResetTokenExpiry must be positive")
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}

	return nil
}

// Validate validates rate limit configuration
func (r *RateLimitConfig) Validate() error {
	if !r.Enabled {
		return nil
	}

	if r.APIRequests <= 0 || r.AuthRequests <= 0 || r.ApplyRequests <= 0 {
		return fmt.Errorf("rate limit request counts must be positive")
	}

	if r.APIWindow <= 0 || r.AuthWindow <= 0 || r.ApplyWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}
