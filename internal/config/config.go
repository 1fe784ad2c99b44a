package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port    string
	Env     string
	LogMode string

	// Durable store: "postgres", "sqlite" or "none"
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	// Redis (optional; scrape cache + live updates)
	RedisURL string

	// JWT
	JWTSecret string

	// Classifier
	ClassifierProvider string
	GeminiAPIKey       string
	GeminiModel        string
	OpenAIAPIKey       string
	OpenAIModel        string
	ClassifierMaxWords int
	TaxonomyPath       string
	BatchConcurrency   int

	// Scraper
	ScrapeTimeoutSeconds  int
	ScrapeCacheTTLMinutes int

	// Domain rules
	RuleMatchLoose bool

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:    getEnvOrDefault("PORT", "8080"),
		Env:     getEnvOrDefault("ENV", "development"),
		LogMode: getEnvOrDefault("LOG_MODE", getEnvOrDefault("ENV", "development")),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "postgres")),
		SQLitePath:     getEnvOrDefault("SQLITE_PATH", "./cognisense.db"),
		RedisURL:       getEnvOrDefault("REDIS_URL", ""),
		JWTSecret:      mustGetEnv("JWT_SECRET"),

		ClassifierProvider: strings.ToLower(getEnvOrDefault("CLASSIFIER_PROVIDER", "gemini")),
		GeminiAPIKey:       getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:       getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		ClassifierMaxWords: getEnvAsIntOrDefault("CLASSIFIER_MAX_WORDS", 512),
		TaxonomyPath:       getEnvOrDefault("TAXONOMY_PATH", ""),
		BatchConcurrency:   getEnvAsIntOrDefault("BATCH_CONCURRENCY", 4),

		ScrapeTimeoutSeconds:  getEnvAsIntOrDefault("SCRAPE_TIMEOUT_SECONDS", 10),
		ScrapeCacheTTLMinutes: getEnvAsIntOrDefault("SCRAPE_CACHE_TTL_MINUTES", 60),

		RuleMatchLoose: getEnvAsBoolOrDefault("RULE_MATCH_LOOSE", false),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	if cfg.DatabaseDriver == "postgres" {
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	}

	return cfg
}

// PersistenceEnabled reports whether a durable store is configured.
func (c *Config) PersistenceEnabled() bool {
	return c.DatabaseDriver == "postgres" || c.DatabaseDriver == "sqlite"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
