package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Transport TransportConfig `mapstructure:"transport"`
	Setup     SetupConfig     `mapstructure:"setup"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// TransportConfig holds chat-platform API client configuration
type TransportConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	BotToken       string        `mapstructure:"bot_token"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

// SetupConfig holds setup-wizard session configuration
type SetupConfig struct {
	SessionTTLMinutes    int `mapstructure:"session_ttl_minutes"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	DailyResetHour int `mapstructure:"daily_reset_hour"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)

	viper.SetDefault("transport.request_timeout", "15s")
	viper.SetDefault("transport.max_retries", 3)

	viper.SetDefault("setup.session_ttl_minutes", 30)
	viper.SetDefault("setup.sweep_interval_minutes", 5)

	viper.SetDefault("scheduler.daily_reset_hour", 0)
}

func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	// Transport
	viper.BindEnv("transport.base_url", "TRANSPORT_BASE_URL")
	viper.BindEnv("transport.bot_token", "TRANSPORT_BOT_TOKEN")
	viper.BindEnv("transport.request_timeout", "TRANSPORT_REQUEST_TIMEOUT")
	viper.BindEnv("transport.max_retries", "TRANSPORT_MAX_RETRIES")

	// Setup wizard
	viper.BindEnv("setup.session_ttl_minutes", "SETUP_SESSION_TTL_MINUTES")
	viper.BindEnv("setup.sweep_interval_minutes", "SETUP_SWEEP_INTERVAL_MINUTES")

	// Scheduler
	viper.BindEnv("scheduler.daily_reset_hour", "SCHEDULER_DAILY_RESET_HOUR")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// SessionTTL returns the setup session time-to-live as a duration
func (c *SetupConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	if c.Transport.BaseURL == "" || c.Transport.BotToken == "" {
		return fmt.Errorf("transport base_url and bot_token are required")
	}

	if c.Setup.SessionTTLMinutes <= 0 {
		return fmt.Errorf("setup session TTL must be greater than 0")
	}

	if c.Scheduler.DailyResetHour < 0 || c.Scheduler.DailyResetHour > 23 {
		return fmt.Errorf("daily reset hour must be between 0 and 23")
	}

	return nil
}
