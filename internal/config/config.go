package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	JWTSecret        string
	MongoURI         string
	DBName           string
	PostgresURI      string // Optional external aggregation source
	SkipAuth         bool
	Environment      string
	AppId            string
	LogRetentionDays int
	PreviewDebounce  time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	retention, err := strconv.Atoi(getEnv("LOG_RETENTION_DAYS", "90"))
	if err != nil || retention < 1 {
		retention = 90
	}

	debounceMs, err := strconv.Atoi(getEnv("PREVIEW_DEBOUNCE_MS", "800"))
	if err != nil || debounceMs < 0 {
		debounceMs = 800
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("DB_NAME", "cxtrack"),
		PostgresURI:      getEnv("POSTGRES_URI", ""),
		SkipAuth:         getEnv("SKIP_AUTH", "false") == "true",
		Environment:      getEnv("ENVIRONMENT", "development"),
		AppId:            getEnv("APP_ID", "cxtrack-reports"),
		LogRetentionDays: retention,
		PreviewDebounce:  time.Duration(debounceMs) * time.Millisecond,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
