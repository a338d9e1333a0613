// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Required variables are enforced by must();
// a missing value halts startup with a fatal log message.
type Config struct {
	Env           string // application environment (dev/test/prod)
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	JWTSecret     string // secret used to sign access tokens
	AccessTTLMin  int    // access token time-to-live in minutes
	AdminUser     string // admin login name
	AdminPassHash string // bcrypt hash of the admin password
	AMQPURL       string // RabbitMQ URL; empty disables event publishing
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  mustInt("ACCESS_TOKEN_TTL_MIN"),
		AdminUser:     must("ADMIN_USER"),
		AdminPassHash: must("ADMIN_PASS_HASH"),
		AMQPURL:       os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
