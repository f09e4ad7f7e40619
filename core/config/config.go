package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration, populated from the environment.
type Config struct {
	Env        string
	Version    string
	ServerPort string
	BaseURL    string

	// Database
	DBDriver   string // sqlite, mysql, postgres
	DBPath     string // sqlite file path
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Auth
	JWTSecret      string
	JWTExpiryHours int
	CookieName     string
	CookieSecure   bool

	// Storage
	StorageProvider  string // local or s3
	StoragePath      string
	StorageBaseURL   string
	StorageAPIKey    string
	StorageAPISecret string
	StorageEndpoint  string
	StorageBucket    string
	StorageRegion    string
	CDN              string

	// Email
	EmailProvider    string // sendgrid, postmark, smtp, or empty for none
	EmailFromAddress string
	EmailFromName    string
	SendgridAPIKey   string
	PostmarkAPIKey   string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string

	// Search result cache
	SearchCacheSize int           // maximum number of cached result pages
	SearchCacheTTL  time.Duration // per-entry time to live

	WebSocketEnabled bool

	Middleware MiddlewareConfig
}

// MiddlewareConfig controls which global middleware is applied.
type MiddlewareConfig struct {
	CORSEnabled    bool
	LoggingEnabled bool
	LoggingSkip    []string // path prefixes excluded from request logging
}

// IsLoggingRequired reports whether requests to path should be logged.
func (m *MiddlewareConfig) IsLoggingRequired(path string) bool {
	if !m.LoggingEnabled {
		return false
	}
	for _, prefix := range m.LoggingSkip {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// NewConfig builds a Config from environment variables with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Env:        getEnv("ENV", "development"),
		Version:    getEnv("APP_VERSION", "1.0.0"),
		ServerPort: normalizePort(getEnv("SERVER_PORT", ":8100")),
		BaseURL:    getEnv("APP_BASE_URL", "http://localhost:8100"),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBPath:     getEnv("DB_PATH", "storage/bookstack.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "bookstack"),

		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 72),
		CookieName:     getEnv("AUTH_COOKIE_NAME", "bookstack_token"),
		CookieSecure:   getEnvBool("AUTH_COOKIE_SECURE", false),

		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		StoragePath:      getEnv("STORAGE_PATH", "storage/uploads"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "/storage/uploads"),
		StorageAPIKey:    getEnv("STORAGE_API_KEY", ""),
		StorageAPISecret: getEnv("STORAGE_API_SECRET", ""),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageBucket:    getEnv("STORAGE_BUCKET", ""),
		StorageRegion:    getEnv("STORAGE_REGION", "us-east-1"),
		CDN:              getEnv("STORAGE_CDN", ""),

		EmailProvider:    getEnv("EMAIL_PROVIDER", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@bookstack.local"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Bookstack"),
		SendgridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		PostmarkAPIKey:   getEnv("POSTMARK_API_KEY", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),

		SearchCacheSize: getEnvInt("SEARCH_CACHE_SIZE", 512),
		SearchCacheTTL:  time.Duration(getEnvInt("SEARCH_CACHE_TTL_SECONDS", 300)) * time.Second,

		WebSocketEnabled: getEnvBool("WEBSOCKET_ENABLED", true),

		Middleware: MiddlewareConfig{
			CORSEnabled:    getEnvBool("CORS_ENABLED", true),
			LoggingEnabled: getEnvBool("REQUEST_LOGGING_ENABLED", true),
			LoggingSkip:    []string{"/health", "/static", "/storage", "/swagger"},
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// normalizePort ensures the port is in ":8100" form.
func normalizePort(port string) string {
	if port == "" {
		return ":8100"
	}
	if !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}
