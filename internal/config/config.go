package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Schema   SchemaConfig
	Auth     AuthConfig
	Audit    AuditRules
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	ArchiveLogPath     string
	CorsAllowedOrigins string
	UploadDir          string
	ReportDir          string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	Store string // "memory" or "redis"
	TTL   time.Duration
}

type SchemaConfig struct {
	QuestionsTTL time.Duration
	SitesTTL     time.Duration
	RulesPath    string
}

type AuthConfig struct {
	JwtSecret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ArchiveLogPath:     getEnv("ARCHIVE_LOG_PATH", "logs/archive.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
			ReportDir:          getEnv("REPORT_DIR", "./reports"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			Store: getEnv("SESSION_STORE", "memory"),
			TTL:   getEnvAsDuration("SESSION_TTL", 12*time.Hour),
		},
		Schema: SchemaConfig{
			// Same refresh windows as the spreadsheet cache this replaces.
			QuestionsTTL: getEnvAsDuration("SCHEMA_CACHE_TTL", 10*time.Minute),
			SitesTTL:     getEnvAsDuration("SITES_CACHE_TTL", time.Hour),
			RulesPath:    getEnv("AUDIT_RULES_PATH", "config/audit_rules.yaml"),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
	}

	rules, err := LoadRules(cfg.Schema.RulesPath)
	if err != nil {
		log.Printf("Note: audit rules not loaded from %s (%v), using defaults", cfg.Schema.RulesPath, err)
		rules = DefaultRules()
	}
	cfg.Audit = rules

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("600").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
