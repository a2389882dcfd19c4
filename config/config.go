package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// External ML generation service
	MLServiceURL        string
	MLServiceTimeoutSec int
	MLServiceMaxRetries int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "postgres"),
		DBPassword:          getEnv("DB_PASSWORD", "postgres"),
		DBName:              getEnv("DB_NAME", "pathcrafter"),
		JWTSecret:           getEnv("JWT_SECRET", "secret"),
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		MLServiceURL:        getEnv("ML_SERVICE_URL", "http://localhost:8000"),
		MLServiceTimeoutSec: getEnvInt("ML_SERVICE_TIMEOUT", 30),
		MLServiceMaxRetries: getEnvInt("ML_SERVICE_MAX_RETRIES", 3),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
