package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the referral service
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Referral ReferralConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds verification settings for platform-issued tokens
type JWTConfig struct {
	Secret string
	Issuer string
}

// ReferralConfig holds referral domain settings
type ReferralConfig struct {
	CustomerExpiryDays     int    // days before a customer referral expires
	ProfessionalExpiryDays int    // days before a professional hand-off expires
	CodeMintAttempts       int    // bounded retries on code collisions
	SweepCron              string // cron spec for the expiration sweep
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Referral: loadReferralConfig(),
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "autolink_referral"),
	}
}

// loadJWTConfig loads token verification config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return JWTConfig{
		Secret: getEnv(prefix+"JWT_SECRET", "default_secret"),
		Issuer: getEnv("JWT_ISSUER", "autolink-platform"),
	}
}

// loadReferralConfig loads referral domain settings
func loadReferralConfig() ReferralConfig {
	customerDays, _ := strconv.Atoi(getEnv("CUSTOMER_REFERRAL_EXPIRY_DAYS", "90"))
	professionalDays, _ := strconv.Atoi(getEnv("PROFESSIONAL_REFERRAL_EXPIRY_DAYS", "30"))
	mintAttempts, _ := strconv.Atoi(getEnv("CODE_MINT_ATTEMPTS", "5"))

	return ReferralConfig{
		CustomerExpiryDays:     customerDays,
		ProfessionalExpiryDays: professionalDays,
		CodeMintAttempts:       mintAttempts,
		SweepCron:              getEnv("SWEEP_CRON", "@hourly"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://app.autolink.example"
	}
	return origins
}
