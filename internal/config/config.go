package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Draws     DrawsConfig     `mapstructure:"draws"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Jackpot   JackpotConfig   `mapstructure:"jackpot"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DrawsConfig holds the draw history API configuration
type DrawsConfig struct {
	APIURL   string        `mapstructure:"api_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Rate     float64       `mapstructure:"rate"` // requests per second, 0 = unlimited
	Retries  int           `mapstructure:"retries"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// GeneratorConfig holds line generation defaults
type GeneratorConfig struct {
	History     int  `mapstructure:"history"`
	Lines       int  `mapstructure:"lines"`
	TopN        int  `mapstructure:"top_n"`
	AvoidLatest bool `mapstructure:"avoid_latest"`
}

// StorageConfig holds storage and persistence configuration
type StorageConfig struct {
	DBPath     string `mapstructure:"db_path"`
	MaxTickets int    `mapstructure:"max_tickets"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// ScheduleConfig holds the draw-night refresh schedule
type ScheduleConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

// JackpotConfig holds live jackpot lookup configuration
type JackpotConfig struct {
	XMLURL     string        `mapstructure:"xml_url"`
	ResultsURL string        `mapstructure:"results_url"`
	APIURL     string        `mapstructure:"api_url"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// LUCKYLOGIC_DRAWS_API_URL overrides draws.api_url
	v.SetEnvPrefix("LUCKYLOGIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Draws defaults
	v.SetDefault("draws.api_url", "https://euromillions.api.pedromealha.dev/v1/draws")
	v.SetDefault("draws.timeout", "20s")
	v.SetDefault("draws.rate", 1.0)
	v.SetDefault("draws.retries", 3)
	v.SetDefault("draws.cache_ttl", "6h")

	// Generator defaults
	v.SetDefault("generator.history", 250)
	v.SetDefault("generator.lines", 4)
	v.SetDefault("generator.top_n", 5)
	v.SetDefault("generator.avoid_latest", false)

	// Storage defaults
	v.SetDefault("storage.db_path", "./data/luckylogic.db")
	v.SetDefault("storage.max_tickets", 500)

	// Server defaults
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", "30s")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Schedule defaults: 22:30 London time on Tuesday and Friday draw nights
	v.SetDefault("schedule.enabled", true)
	v.SetDefault("schedule.cron", "30 22 * * 2,5")
	v.SetDefault("schedule.timezone", "Europe/London")

	// Jackpot defaults
	v.SetDefault("jackpot.xml_url", "https://www.national-lottery.co.uk/results/euromillions/draw-history/xml")
	v.SetDefault("jackpot.results_url", "https://www.national-lottery.co.uk/results/euromillions")
	v.SetDefault("jackpot.api_url", "https://euromillions.api.pedromealha.dev/v1/draws")
	v.SetDefault("jackpot.cache_ttl", "15m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Draws config
	if c.Draws.APIURL == "" {
		return fmt.Errorf("draws.api_url is required")
	}
	if c.Draws.Timeout < time.Second {
		return fmt.Errorf("draws.timeout must be at least 1 second")
	}
	if c.Draws.Rate < 0 {
		return fmt.Errorf("draws.rate must not be negative")
	}
	if c.Draws.Retries < 1 {
		return fmt.Errorf("draws.retries must be at least 1")
	}
	if c.Draws.CacheTTL < 0 {
		return fmt.Errorf("draws.cache_ttl must not be negative")
	}

	// Validate Generator config
	if c.Generator.History < 1 {
		return fmt.Errorf("generator.history must be at least 1")
	}
	if c.Generator.Lines < 1 || c.Generator.Lines > 10 {
		return fmt.Errorf("generator.lines must be between 1 and 10")
	}
	if c.Generator.TopN < 3 || c.Generator.TopN > 10 {
		return fmt.Errorf("generator.top_n must be between 3 and 10")
	}

	// Validate Storage config
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.MaxTickets < 0 {
		return fmt.Errorf("storage.max_tickets must not be negative")
	}

	// Validate Server config
	if c.Server.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required when the server is enabled")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Schedule config
	if c.Schedule.Enabled {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron is invalid: %w", err)
		}
		if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
			return fmt.Errorf("schedule.timezone is invalid: %w", err)
		}
	}

	// Validate Jackpot config
	if c.Jackpot.CacheTTL < 0 {
		return fmt.Errorf("jackpot.cache_ttl must not be negative")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
