package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/glucose-insights/internal/logger"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	TelegramToken string
	GeminiAPIKey  string
	GeminiModel   string
	HTTPAddr      string
	StoreDriver   string
	DB            DBConfig
	Redis         RedisConfig
	Analysis      AnalysisConfig
	Logger        LoggerConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DSN returns the postgres connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

type RedisConfig struct {
	Host string
	Port string
}

// Enabled reports whether session state should live in redis
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type AnalysisConfig struct {
	WindowDays int
	TargetLow  float64
	TargetHigh float64
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

// Load reads the configuration from the environment and validates it.
// All problems are reported at once.
func Load() (*Config, error) {
	var problems []string

	intEnv := func(key string, def int) int {
		raw := getEnvOrDefault(key, strconv.Itoa(def))
		v, err := strconv.Atoi(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %q is not an integer", key, raw))
			return def
		}
		return v
	}
	floatEnv := func(key string, def float64) float64 {
		raw := getEnvOrDefault(key, strconv.FormatFloat(def, 'f', -1, 64))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %q is not a number", key, raw))
			return def
		}
		return v
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		HTTPAddr:      getEnvOrDefault("HTTP_ADDR", ":8080"),
		StoreDriver:   strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverPostgres)),
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "glucose_insights"),
		},
		Redis: RedisConfig{
			Host: os.Getenv("REDIS_HOST"),
			Port: getEnvOrDefault("REDIS_PORT", "6379"),
		},
		Analysis: AnalysisConfig{
			WindowDays: intEnv("ANALYSIS_DAYS", 30),
			TargetLow:  floatEnv("TARGET_LOW", 70),
			TargetHigh: floatEnv("TARGET_HIGH", 180),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	problems = append(problems, cfg.validate()...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return cfg, nil
}

func (c *Config) validate() []string {
	var problems []string
	if c.StoreDriver != StoreDriverPostgres && c.StoreDriver != StoreDriverMemory {
		problems = append(problems, fmt.Sprintf("STORE_DRIVER: unknown driver %q", c.StoreDriver))
	}
	if c.Analysis.WindowDays <= 0 {
		problems = append(problems, "ANALYSIS_DAYS: must be positive")
	}
	if c.Analysis.TargetLow <= 0 || c.Analysis.TargetLow >= c.Analysis.TargetHigh {
		problems = append(problems, fmt.Sprintf("TARGET_LOW/TARGET_HIGH: invalid range %.0f-%.0f",
			c.Analysis.TargetLow, c.Analysis.TargetHigh))
	}
	return problems
}
