// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server binary needs to start.
type Config struct {
	HTTPAddr string

	// DataDir holds the CSV game tables.
	DataDir string

	// DatabaseURL enables pgx persistence when non-empty.
	DatabaseURL string

	// RedisAddr enables the action history stream when non-empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	MaxTurns     int
	TurnDuration time.Duration
	LogLevel     logrus.Level
}

// Load reads .env if present, then the environment. Missing values fall
// back to defaults suitable for local development.
func Load(log *logrus.Logger) Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}
	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		DataDir:       getenv("DATA_DIR", "data"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getint("REDIS_DB", 0),
		JWTSecret:     getenv("JWT_SECRET", "dev-secret"),
		MaxTurns:      getint("MAX_TURNS", 200),
		TurnDuration:  getdur("TURN_DURATION", 0),
		LogLevel:      getlevel("LOG_LEVEL", logrus.InfoLevel),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getlevel(key string, fallback logrus.Level) logrus.Level {
	if v := os.Getenv(key); v != "" {
		if lvl, err := logrus.ParseLevel(v); err == nil {
			return lvl
		}
	}
	return fallback
}
