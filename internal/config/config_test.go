package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080", Host: "0.0.0.0", Env: "development"},
		Database: DatabaseConfig{URL: "postgres://localhost/loans?sslmode=disable"},
		Auth:     AuthConfig{JWTSecret: "secret"},
		Interest: InterestConfig{
			BaseMonth:               3,
			BaseInterestRate:        "2.5",
			SingleMonthInterestRate: "0.8333",
			ServiceCharge:           "300",
			PenaltyRate:             "0.05",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URL = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Auth.JWTSecret = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.Port = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadDecimals(t *testing.T) {
	cfg := validConfig()
	cfg.Interest.PenaltyRate = "five percent"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Interest.BaseInterestRate = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_BaseMonth(t *testing.T) {
	cfg := validConfig()
	cfg.Interest.BaseMonth = 0
	assert.Error(t, cfg.Validate())
}

func TestGetters(t *testing.T) {
	cfg := validConfig()

	assert.True(t, cfg.GetBaseInterestRate().Equal(decimal.RequireFromString("2.5")))
	assert.True(t, cfg.GetSingleMonthInterestRate().Equal(decimal.RequireFromString("0.8333")))
	assert.True(t, cfg.GetServiceCharge().Equal(decimal.NewFromInt(300)))
	assert.True(t, cfg.GetPenaltyRate().Equal(decimal.RequireFromString("0.05")))
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}
