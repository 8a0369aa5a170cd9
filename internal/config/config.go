package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const devSessionSecret = "dev_session_secret_change_me"

type Config struct {
	Port           string
	DBDriver       string // postgres | sqlite
	DatabaseURL    string
	JWTSecret      string
	SessionSecret  string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	CORSOrigins    []string
	LogLevel       string
	LogFormat      string // json | console
	GinMode        string
}

// Load 读取 .env（可选）和环境变量
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		TokenTTL:       getDuration("TOKEN_TTL", 168*time.Hour),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		GinMode:        os.Getenv("GIN_MODE"),
	}

	// 只有非 release 模式才使用开发用的 session 密钥
	if cfg.SessionSecret == "" && cfg.GinMode != "release" {
		log.Warn().Msg("SESSION_SECRET not set, using development default")
		cfg.SessionSecret = devSessionSecret
	}

	if cfg.DatabaseURL == "" {
		switch cfg.DBDriver {
		case "sqlite":
			cfg.DatabaseURL = "newsdesk.db"
		default:
			// Fallback for local dev if not set
			cfg.DatabaseURL = "host=localhost user=postgres password=postgres dbname=newsdesk port=5432 sslmode=disable TimeZone=UTC"
		}
	}

	return cfg
}

// Validate 启动 HTTP 服务前检查必需的密钥
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET environment variable is not set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
