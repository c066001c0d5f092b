package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the GORM postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// FxConfig holds settings for the external exchange-rate provider.
type FxConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	DBConfig      DatabaseConfig
	RedisURL      string
	KafkaBrokers  []string
	FxConfig      FxConfig
	AdminSecret   string
	BaseCurrency  string
	PromoIssuePct int
}

// Load reads configuration from environment variables and returns a ServiceConfig.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("FX_BASE_URL", "https://open.er-api.com")
	v.SetDefault("FX_TIMEOUT", "5s")
	v.SetDefault("BASE_CURRENCY", "RSD")
	v.SetDefault("PROMO_ISSUE_PCT", 5)

	if v.GetString("DB_NAME") == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}

	fxTimeout, err := time.ParseDuration(v.GetString("FX_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid FX_TIMEOUT: %w", err)
	}

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		RedisURL:      v.GetString("REDIS_URL"),
		KafkaBrokers:  strings.Split(v.GetString("KAFKA_BROKERS"), ","),
		FxConfig:      FxConfig{BaseURL: v.GetString("FX_BASE_URL"), Timeout: fxTimeout},
		AdminSecret:   v.GetString("ADMIN_SECRET"),
		BaseCurrency:  v.GetString("BASE_CURRENCY"),
		PromoIssuePct: v.GetInt("PROMO_ISSUE_PCT"),
	}, nil
}
