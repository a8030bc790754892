// Package config loads the bot configuration from an optional YAML file
// with environment variable overrides applied on top.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// RunMode selects how updates are received from Telegram.
type RunMode string

const (
	// RunModePolling receives updates via long polling.
	RunModePolling RunMode = "polling"
	// RunModeWebhook receives updates via an HTTPS webhook.
	RunModeWebhook RunMode = "webhook"
)

// Config aggregates every tunable of the bot process.
type Config struct {
	Telegram  Telegram  `yaml:"telegram"`
	Webhook   Webhook   `yaml:"webhook"`
	Logging   Logging   `yaml:"logging"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Sender    Sender    `yaml:"sender"`
}

// Telegram holds token, transport and channel settings.
type Telegram struct {
	Token                  string  `yaml:"token" envconfig:"TELEGRAM_TOKEN"`
	RunMode                RunMode `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE" default:"polling"`
	LongPollTimeoutSeconds int     `yaml:"long_poll_timeout_seconds" envconfig:"TELEGRAM_LONG_POLL_TIMEOUT" default:"30"`
	RequestTimeoutSeconds  int     `yaml:"request_timeout_seconds" envconfig:"TELEGRAM_REQUEST_TIMEOUT" default:"35"`
}

// Webhook configures webhook mode; ignored while polling.
type Webhook struct {
	Listen    string `yaml:"listen" envconfig:"WEBHOOK_LISTEN" default:":8443"`
	PublicURL string `yaml:"public_url" envconfig:"WEBHOOK_PUBLIC_URL"`
}

// Logging configures the structured log pipeline.
type Logging struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	Profile     string `yaml:"profile" envconfig:"LOG_PROFILE" default:"prod"`
	KeysOrder   string `yaml:"keys_order" envconfig:"LOG_KEYS_ORDER" default:"default"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file" envconfig:"LOG_BOT_FILE"`
	DebugSample string `yaml:"debug_sample" envconfig:"LOG_DEBUG_SAMPLE" default:"1/50"`
}

// RateLimit throttles per-user update handling.
type RateLimit struct {
	Enabled       bool    `yaml:"enabled" envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	PerUserPerSec float64 `yaml:"per_user_per_sec" envconfig:"RATE_LIMIT_PER_USER" default:"1"`
	Burst         int     `yaml:"burst" envconfig:"RATE_LIMIT_BURST" default:"3"`
}

// Sender tunes the outbound dispatcher.
type Sender struct {
	Workers    int `yaml:"workers" envconfig:"SENDER_WORKERS" default:"4"`
	QueueSize  int `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE" default:"256"`
	MaxRetries int `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES" default:"3"`
}

// Load reads the YAML file at path (if path is non-empty and the file
// exists), applies environment overrides, then normalizes and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Env-only configuration is allowed.
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize trims fields and fills defaults that envconfig cannot
// express, keeping downstream code free of empty-value checks.
func (c *Config) Normalize() {
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	c.Telegram.RunMode = RunMode(strings.ToLower(strings.TrimSpace(string(c.Telegram.RunMode))))
	if c.Telegram.RunMode == "" {
		c.Telegram.RunMode = RunModePolling
	}
	if c.Telegram.LongPollTimeoutSeconds <= 0 {
		c.Telegram.LongPollTimeoutSeconds = 30
	}
	if c.Telegram.RequestTimeoutSeconds <= 0 {
		c.Telegram.RequestTimeoutSeconds = c.Telegram.LongPollTimeoutSeconds + 5
	}
	c.Webhook.Listen = strings.TrimSpace(c.Webhook.Listen)
	c.Webhook.PublicURL = strings.TrimRight(strings.TrimSpace(c.Webhook.PublicURL), "/")
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Profile = strings.ToLower(strings.TrimSpace(c.Logging.Profile))
	if c.RateLimit.PerUserPerSec <= 0 {
		c.RateLimit.PerUserPerSec = 1
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 3
	}
	if c.Sender.Workers <= 0 {
		c.Sender.Workers = 4
	}
	if c.Sender.QueueSize <= 0 {
		c.Sender.QueueSize = 256
	}
	if c.Sender.MaxRetries < 0 {
		c.Sender.MaxRetries = 0
	}
}

// Validate reports configuration errors that make startup pointless.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("config: telegram token is required (TELEGRAM_TOKEN)")
	}
	switch c.Telegram.RunMode {
	case RunModePolling, RunModeWebhook:
	default:
		return fmt.Errorf("config: unknown run mode %q", c.Telegram.RunMode)
	}
	if c.Telegram.RunMode == RunModeWebhook && c.Webhook.PublicURL == "" {
		return fmt.Errorf("config: webhook mode requires WEBHOOK_PUBLIC_URL")
	}
	return nil
}
