package config

import (
	"os"
	"strconv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port          string
	GoEnv         string // "development" or "production"
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	// Per-user issue creation limit (per day)
	IssueLimitPrefix string
	DailyIssueLimit  int
	// Cloudinary
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	// Mail transport
	SMTPHost   string
	SMTPPort   int
	EmailUser  string
	EmailPass  string
	AdminEmail string
	// CORS
	CORSAllowedOrigins string
}

// Load reads environment variables into Config with sane defaults for local dev.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		GoEnv:               getEnv("GO_ENV", "development"),
		MongoURI:            getEnv("MONGODB_URI", ""),
		MongoDB:             getEnv("MONGODB_DB", "citysense"),
		RedisAddr:           getEnv("REDIS_ADDRESS", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		IssueLimitPrefix:    getEnv("REDIS_QUEUE_FOR_ISSUE_LIMIT", "issue-limit"),
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		SMTPHost:            getEnv("SMTP_HOST", "smtp.gmail.com"),
		EmailUser:           getEnv("EMAIL_USER", ""),
		EmailPass:           getEnv("EMAIL_PASS", ""),
		AdminEmail:          getEnv("ADMIN_EMAIL", "admin@citysense.com"),
		CORSAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}

	port, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, err
	}
	cfg.SMTPPort = port

	limit, err := strconv.Atoi(getEnv("DAILY_ISSUE_LIMIT", "10"))
	if err != nil {
		return nil, err
	}
	cfg.DailyIssueLimit = limit

	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
// In production, 500 responses never include internal error text.
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
