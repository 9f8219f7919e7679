package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			User:     "relay",
			Password: "secret",
			DBName:   "guild_relay",
		},
		Transport: TransportConfig{
			BaseURL:        "https://gateway.example.com/api",
			BotToken:       "token-123",
			RequestTimeout: 15 * time.Second,
			MaxRetries:     3,
		},
		Setup: SetupConfig{
			SessionTTLMinutes:    30,
			SweepIntervalMinutes: 5,
		},
		Scheduler: SchedulerConfig{
			DailyResetHour: 0,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfigValidateRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing server port", func(c *Config) { c.Server.Port = "" }},
		{"missing database host", func(c *Config) { c.Database.Host = "" }},
		{"missing database user", func(c *Config) { c.Database.User = "" }},
		{"missing database name", func(c *Config) { c.Database.DBName = "" }},
		{"missing transport base url", func(c *Config) { c.Transport.BaseURL = "" }},
		{"missing bot token", func(c *Config) { c.Transport.BotToken = "" }},
		{"zero session ttl", func(c *Config) { c.Setup.SessionTTLMinutes = 0 }},
		{"negative session ttl", func(c *Config) { c.Setup.SessionTTLMinutes = -5 }},
		{"reset hour too large", func(c *Config) { c.Scheduler.DailyResetHour = 24 }},
		{"reset hour negative", func(c *Config) { c.Scheduler.DailyResetHour = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConfigGetDSN(t *testing.T) {
	cfg := validConfig()

	dsn := cfg.Database.GetDSN()
	assert.Equal(t, "relay:secret@tcp(localhost:3306)/guild_relay?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}

func TestSetupConfigSessionTTL(t *testing.T) {
	cfg := SetupConfig{SessionTTLMinutes: 45}
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 15*time.Second, cfg.Transport.RequestTimeout)
	assert.Equal(t, 3, cfg.Transport.MaxRetries)
	assert.Equal(t, 30, cfg.Setup.SessionTTLMinutes)
	assert.Equal(t, 5, cfg.Setup.SweepIntervalMinutes)
	assert.Equal(t, 0, cfg.Scheduler.DailyResetHour)
}
