package config

import (
	"os"
	"strconv"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

type AppConfig struct {
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	KafkaBrokers []string
	SMTP         SMTPConfig

	MinPasswordLength   int
	MinPasswordStrength int // 0-4, zxcvbn scale
	DefaultDigestFreq   string
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8001"),
		RedisAddr:    getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass:    getEnv("REDIS_PASS", ""),
		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", []string{"kafka-service:9092"}),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "465"),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
		},

		MinPasswordLength:   getEnvAsInt("MIN_PASSWORD_LENGTH", 8),
		MinPasswordStrength: getEnvAsInt("MIN_PASSWORD_STRENGTH", 1),
		DefaultDigestFreq:   getEnv("DEFAULT_DIGEST_FREQ", "off"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
