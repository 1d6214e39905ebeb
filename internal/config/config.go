package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"MoexLens/internal/chart"
	"MoexLens/internal/model"
)

// Error is a validation failure for a single config field.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrRequired   = errors.New("is required")
	ErrOutOfRange = errors.New("out of range")
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Feed struct {
		CandlesPath string `yaml:"candles_path"`
		BondsPath   string `yaml:"bonds_path"`
		Ticker      string `yaml:"ticker"`
	} `yaml:"feed"`
	Chart struct {
		Width      float64 `yaml:"width"`
		Height     float64 `yaml:"height"`
		PixelRatio float64 `yaml:"pixel_ratio"`
		OutputPath string  `yaml:"output_path"`
	} `yaml:"chart"`
	Bonds struct {
		Limit    int    `yaml:"limit"`
		Currency string `yaml:"currency"`
		YearsTo  int    `yaml:"years_to"`
	} `yaml:"bonds"`
	Schedule struct {
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CANDLES_PATH"); v != "" {
		cfg.Feed.CandlesPath = v
	}
	if v := os.Getenv("BONDS_PATH"); v != "" {
		cfg.Feed.BondsPath = v
	}
	if v := os.Getenv("TICKER"); v != "" {
		cfg.Feed.Ticker = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DIGEST"); v != "" {
		cfg.Schedule.DigestCron = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BONDS_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Bonds.Limit = n
		}
	}

	// Defaults
	if cfg.Feed.Ticker == "" {
		cfg.Feed.Ticker = "SiH6"
	}
	if cfg.Feed.CandlesPath == "" {
		cfg.Feed.CandlesPath = "data/candles/{ticker}.json"
	}
	if cfg.Feed.BondsPath == "" {
		cfg.Feed.BondsPath = "data/bonds.json"
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = 960
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = 540
	}
	if cfg.Chart.PixelRatio == 0 {
		cfg.Chart.PixelRatio = 2
	}
	if cfg.Chart.OutputPath == "" {
		cfg.Chart.OutputPath = "data/chart.png"
	}
	if cfg.Bonds.Limit == 0 {
		cfg.Bonds.Limit = 3
	}
	if cfg.Bonds.Currency == "" {
		cfg.Bonds.Currency = "RUB"
	}
	if cfg.Bonds.YearsTo == 0 {
		cfg.Bonds.YearsTo = 50
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 10 * * 1-5"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return &Error{Field: "telegram.bot_token", Err: ErrRequired}
	}
	if c.Telegram.ChatID == "" {
		return &Error{Field: "telegram.chat_id", Err: ErrRequired}
	}
	if c.Chart.Width <= 0 || c.Chart.Width > chart.MaxSide {
		return &Error{Field: "chart.width", Err: ErrOutOfRange}
	}
	if c.Chart.Height <= 0 || c.Chart.Height > chart.MaxSide {
		return &Error{Field: "chart.height", Err: ErrOutOfRange}
	}
	if c.Chart.PixelRatio <= 0 || c.Chart.PixelRatio > chart.MaxPixelRatio {
		return &Error{Field: "chart.pixel_ratio", Err: ErrOutOfRange}
	}
	if c.Bonds.Limit < 1 || c.Bonds.Limit > 100 {
		return &Error{Field: "bonds.limit", Err: ErrOutOfRange}
	}
	if c.Bonds.YearsTo < 0 || c.Bonds.YearsTo > 50 {
		return &Error{Field: "bonds.years_to", Err: ErrOutOfRange}
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.DigestCron); err != nil {
		return &Error{Field: "schedule.digest_cron", Err: err}
	}
	return nil
}

// Viewport returns the chart geometry used for scheduled and bot charts.
func (c *Config) Viewport() model.ViewportState {
	return model.ViewportState{
		CSSWidth:         c.Chart.Width,
		CSSHeight:        c.Chart.Height,
		DevicePixelRatio: c.Chart.PixelRatio,
	}
}
