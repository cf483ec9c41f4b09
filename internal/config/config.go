package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	MongoURI       string
	MongoDatabase  string
	APIPort        string
	JWTSecret      string
	AllowedOrigins []string
	Environment    string
	// How often the reminder sweep runs.
	ReminderInterval time.Duration
}

func New() *Config {
	return &Config{
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGO_DATABASE", "vetcare"),
		APIPort:          getEnv("API_PORT", "8080"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		Environment:      getEnv("ENVIRONMENT", "development"),
		ReminderInterval: time.Hour,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
