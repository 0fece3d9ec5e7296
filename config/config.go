package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database config
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"rentdesk"`
	DBPath     string `envconfig:"DB_PATH" default:"./rentdesk.db"` // SQLite database file path
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Auth config
	JWTSecret      string `envconfig:"JWT_SECRET" default:"rentdesk_default_secret_key"`
	JWTExpiryHours int    `envconfig:"JWT_EXPIRY_HOURS" default:"24"`

	// App config
	Port        string `envconfig:"PORT" default:"5000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Payment gateway config
	RazorpayKey    string `envconfig:"RAZORPAY_KEY"`
	RazorpaySecret string `envconfig:"RAZORPAY_SECRET"`

	// Trial period granted to newly registered organizations
	TrialDays int `envconfig:"TRIAL_DAYS" default:"14"`
}

var AppConfig Config

// InitConfig initializes the application configuration from the environment
func InitConfig() error {
	if err := envconfig.Process("", &AppConfig); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	return nil
}

// GetJWTExpiration returns JWT expiration time
func GetJWTExpiration() time.Duration {
	return time.Duration(AppConfig.JWTExpiryHours) * time.Hour
}

// IsDevelopment returns true if the application is running in development mode
func IsDevelopment() bool {
	return AppConfig.Environment == "development"
}
