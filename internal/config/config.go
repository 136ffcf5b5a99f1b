package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	JWTSecret       string
	ServerPort      string
	LLMAPIKey       string
	LLMAPIURL       string
	LLMModel        string
	ResponseWorkers int
	QueueSize       int
	DailyCharacter  bool
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "rizzranker"),
		JWTSecret:       getEnv("JWT_SECRET", "super-secret-key-change-me"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		LLMAPIURL:       getEnv("LLM_API_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:        getEnv("LLM_MODEL", "gemini-2.0-flash-001"),
		ResponseWorkers: getEnvInt("RESPONSE_WORKERS", 4),
		QueueSize:       getEnvInt("RESPONSE_QUEUE_SIZE", 256),
		DailyCharacter:  getEnv("DAILY_CHARACTER", "true") == "true",
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
