package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Interest  InterestConfig  `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	TokenExpiry time.Duration `mapstructure:"JWT_TOKEN_EXPIRY"`
}

type SchedulerConfig struct {
	SweepSpec     string `mapstructure:"SWEEP_CRON_SPEC"`
	Timezone      string `mapstructure:"SCHEDULER_TIMEZONE"`
	InternalToken string `mapstructure:"INTERNAL_SWEEP_TOKEN"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

// InterestConfig carries the loan pricing parameters. They were ambient
// environment lookups in earlier iterations of this system; here they are
// loaded once and passed explicitly to the calculator and the sweep.
type InterestConfig struct {
	BaseMonth               int    `mapstructure:"BASE_MONTH"`
	BaseInterestRate        string `mapstructure:"BASE_INTEREST_RATE"`
	SingleMonthInterestRate string `mapstructure:"SINGLE_MONTH_INTEREST_RATE"`
	ServiceCharge           string `mapstructure:"SERVICE_CHARGE"`
	PenaltyRate             string `mapstructure:"PENALTY_RATE"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_TOKEN_EXPIRY", "24h")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("SWEEP_CRON_SPEC", "0 0 1 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "Africa/Banjul")
	viper.SetDefault("BASE_MONTH", 3)
	viper.SetDefault("BASE_INTEREST_RATE", "2.5")
	viper.SetDefault("SINGLE_MONTH_INTEREST_RATE", "0.8333")
	viper.SetDefault("SERVICE_CHARGE", "300")
	viper.SetDefault("PENALTY_RATE", "0.05")

	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Interest.BaseMonth <= 0 {
		return fmt.Errorf("BASE_MONTH must be greater than 0")
	}

	for name, value := range map[string]string{
		"BASE_INTEREST_RATE":         c.Interest.BaseInterestRate,
		"SINGLE_MONTH_INTEREST_RATE": c.Interest.SingleMonthInterestRate,
		"SERVICE_CHARGE":             c.Interest.ServiceCharge,
		"PENALTY_RATE":               c.Interest.PenaltyRate,
	} {
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", name, err)
		}
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetBaseInterestRate returns the per-base-period interest rate as decimal
func (c *Config) GetBaseInterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Interest.BaseInterestRate)
	return rate
}

// GetSingleMonthInterestRate returns the single-month interest rate as decimal
func (c *Config) GetSingleMonthInterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Interest.SingleMonthInterestRate)
	return rate
}

// GetServiceCharge returns the fixed service charge as decimal
func (c *Config) GetServiceCharge() decimal.Decimal {
	charge, _ := decimal.NewFromString(c.Interest.ServiceCharge)
	return charge
}

// GetPenaltyRate returns the late-payment penalty rate as decimal
func (c *Config) GetPenaltyRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Interest.PenaltyRate)
	return rate
}
