package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"resort-backend/utils"
)

type Config struct {
	Port        string
	CORSOrigins []string

	DBDriver      string
	DBSlowQuery   time.Duration
	DBAutoMigrate bool

	JWTSecret string
	JWTExpiry time.Duration

	AMQPURL   string
	UploadDir string

	LogLevel  string
	LogFormat string

	SeedAdminEmail    string
	SeedAdminPassword string

	Mail utils.MailConfig
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(envOrDefault(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(envOrDefault(key, def.String()))
	if err != nil {
		return def
	}
	return v
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}
	origins := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Port:        envOrDefault("PORT", "8080"),
		CORSOrigins: parseCorsOrigins(os.Getenv("CORS_ORIGINS")),

		DBDriver:      strings.ToLower(envOrDefault("DB_DRIVER", "mysql")),
		DBSlowQuery:   time.Duration(envInt("DB_SLOW_QUERY_MS", 1000)) * time.Millisecond,
		DBAutoMigrate: envBool("DB_AUTO_MIGRATE", true),

		JWTSecret: envOrDefault("JWT_SECRET", "change-me"),
		JWTExpiry: envDuration("JWT_EXPIRY", 12*time.Hour),

		AMQPURL:   strings.TrimSpace(os.Getenv("AMQP_URL")),
		UploadDir: envOrDefault("UPLOAD_DIR", "uploads/checkin"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		SeedAdminEmail:    envOrDefault("SEED_ADMIN_EMAIL", "admin@resort.local"),
		SeedAdminPassword: envOrDefault("SEED_ADMIN_PASSWORD", "admin123"),

		Mail: utils.MailConfig{
			Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:     strings.TrimSpace(os.Getenv("SMTP_PORT")),
			Username: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
			Password: os.Getenv("SMTP_PASSWORD"),
			FromName: envOrDefault("SMTP_FROM_NAME", "Resort"),
		},
	}
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(envOrDefault(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}
