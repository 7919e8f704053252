package configs

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type ENV struct {
	AppEnv     string
	Port       string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	AppAuthKey string
	AppEncKey  string

	CSRFKey     string
	CSRFEnabled bool

	RedisAddr     string
	RedisPassword string
}

func LoadEnv() ENV {
	if err := godotenv.Load(".env"); err != nil {
		zap.L().Warn("no .env file found, relying on process environment")
	}

	return ENV{
		AppEnv:        getenv("APP_ENV", "development"),
		Port:          getenv("APP_PORT", ":8080"),
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        getenv("DB_PORT", "3306"),
		AppAuthKey:    os.Getenv("APP_AUTH_KEY"),
		AppEncKey:     os.Getenv("APP_ENC_KEY"),
		CSRFKey:       os.Getenv("CSRF_KEY"),
		CSRFEnabled:   os.Getenv("CSRF_ENABLED") == "true",
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
