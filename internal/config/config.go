package config

import (
	"os"
	"strconv"

	"github.com/taskflow/taskflow-api/internal/constants"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret       string
	TokenTTLMinutes int

	// Seed credentials for the super-admin row created at first migration.
	SuperAdminEmail    string
	SuperAdminUsername string
	SuperAdminPassword string

	GinMode string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "taskflow"),
		DBPassword: getEnv("DB_PASSWORD", "taskflow"),
		DBName:     getEnv("DB_NAME", "taskflow"),

		JWTSecret:       getEnv("JWT_SECRET", "default-secret-key-change-me"),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", constants.DefaultTokenTTLMinutes),

		SuperAdminEmail:    getEnv("SUPERADMIN_EMAIL", "superadmin@taskflow.local"),
		SuperAdminUsername: getEnv("SUPERADMIN_USERNAME", "superadmin"),
		SuperAdminPassword: getEnv("SUPERADMIN_PASSWORD", ""),

		GinMode: getEnv("GIN_MODE", "debug"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
