package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/contact-solution/leadbot/core/database"
	"github.com/contact-solution/leadbot/core/logger"
)

// WhatsAppConfig holds WhatsApp Cloud API settings.
type WhatsAppConfig struct {
	// VerifyToken is compared against hub.verify_token during the Meta
	// webhook verification handshake.
	VerifyToken   string `yaml:"verify_token" envconfig:"VERIFY_TOKEN"`
	AccessToken   string `yaml:"access_token" envconfig:"WHATSAPP_TOKEN"`
	PhoneNumberID string `yaml:"phone_number_id" envconfig:"PHONE_NUMBER_ID"`
	APIVersion    string `yaml:"api_version" envconfig:"WHATSAPP_API_VERSION"`
}

// SendEnabled reports whether outbound delivery is configured.
// Without credentials the bot still processes webhooks and logs replies.
func (c WhatsAppConfig) SendEnabled() bool {
	return strings.TrimSpace(c.AccessToken) != "" && strings.TrimSpace(c.PhoneNumberID) != ""
}

// ServerConfig specifies the webhook HTTP listener.
type ServerConfig struct {
	Listen string `yaml:"listen" envconfig:"SERVER_LISTEN"`
	Port   int    `yaml:"port" envconfig:"PORT"`
}

// SessionConfig selects the conversation session backend and its TTL.
type SessionConfig struct {
	Backend    string `yaml:"backend" envconfig:"SESSION_BACKEND"`
	TTLMinutes int    `yaml:"ttl_minutes" envconfig:"SESSION_TTL_MINUTES"`
}

// SheetsConfig configures the Google Sheets lead sink.
type SheetsConfig struct {
	SheetID string `yaml:"sheet_id" envconfig:"GSHEET_ID"`
	// ServiceAccountB64 carries the service account JSON base64-encoded,
	// so it can travel through a single environment variable.
	ServiceAccountB64 string `yaml:"service_account_b64" envconfig:"GOOGLE_SERVICE_ACCOUNT_B64"`
}

// Enabled reports whether the Sheets sink is fully configured.
func (c SheetsConfig) Enabled() bool {
	return strings.TrimSpace(c.SheetID) != "" && strings.TrimSpace(c.ServiceAccountB64) != ""
}

// RateLimitConfig holds settings for per-sender rate limiting.
type RateLimitConfig struct {
	IntervalMS int `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
}

const (
	// SessionBackendMemory keeps sessions in process memory.
	SessionBackendMemory = "memory"
	// SessionBackendPostgres persists sessions in the database.
	SessionBackendPostgres = "postgres"
)

const defaultAPIVersion = "v20.0"

// Config aggregates the whole leadbot configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	WhatsApp  WhatsAppConfig  `yaml:"whatsapp"`
	Session   SessionConfig   `yaml:"session"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Database  database.Config `yaml:"database"`
	Logging   logger.Config   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.WhatsApp.VerifyToken) == "" {
		return fmt.Errorf("whatsapp.verify_token is required")
	}
	if strings.TrimSpace(cfg.WhatsApp.APIVersion) == "" {
		cfg.WhatsApp.APIVersion = defaultAPIVersion
	}

	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = "0.0.0.0"
	}
	if cfg.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if backend == "" {
		backend = SessionBackendMemory
	}
	switch backend {
	case SessionBackendMemory, SessionBackendPostgres:
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, postgres", cfg.Session.Backend)
	}
	cfg.Session.Backend = backend

	if cfg.Session.TTLMinutes < 0 {
		return fmt.Errorf("session.ttl_minutes must be >= 0")
	}
	if cfg.Session.TTLMinutes == 0 {
		cfg.Session.TTLMinutes = 30
	}

	if cfg.RateLimit.IntervalMS < 0 {
		return fmt.Errorf("rate_limit.interval_ms must be >= 0")
	}

	return nil
}
