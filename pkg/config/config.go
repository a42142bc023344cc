// Package config loads the service configuration. Components never read
// ambient state themselves; everything they need is parsed here once and
// injected at construction time.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "45s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Store    StoreConfig    `yaml:"store"`
	Sessions SessionConfig  `yaml:"sessions"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// WorkflowConfig configures the chat webhook. When URL is empty and
// OpenAIAPIKey is set, chat runs against the model directly.
type WorkflowConfig struct {
	URL               string   `yaml:"url"`
	Token             string   `yaml:"token"`
	Timeout           Duration `yaml:"timeout"`
	RetryCount        int      `yaml:"retry_count"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	OpenAIAPIKey      string   `yaml:"openai_api_key"`
	OpenAIModel       string   `yaml:"openai_model"`
}

// StoreConfig configures the table store. Exactly one of URL (REST) or DSN
// (direct Postgres) must be set.
type StoreConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

// SessionConfig configures per-session transcript limits.
type SessionConfig struct {
	MaxMessages   int      `yaml:"max_messages"`
	MaxCharacters int      `yaml:"max_characters"`
	IdleTTL       Duration `yaml:"idle_ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file at path (when path is non-empty), then applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return cfg, nil
}

// applyEnv lets deployment secrets override the file so tokens never need
// to live on disk.
func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "DASHBOARD_ADDR")
	setString(&c.Workflow.URL, "WEBHOOK_URL")
	setString(&c.Workflow.Token, "BEARER_TOKEN")
	setString(&c.Workflow.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.Workflow.OpenAIModel, "OPENAI_MODEL")
	setString(&c.Store.URL, "STORE_URL")
	setString(&c.Store.APIKey, "STORE_API_KEY")
	setString(&c.Store.DSN, "STORE_DSN")
	setString(&c.Store.Table, "STORE_TABLE")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("WORKFLOW_RETRY_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workflow.RetryCount = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Store.Table == "" {
		c.Store.Table = "decisions"
	}
	if c.Sessions.IdleTTL == 0 {
		c.Sessions.IdleTTL = Duration(2 * time.Hour)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the configuration is usable before anything is built
// from it.
func (c *Config) Validate() error {
	if c.Workflow.URL == "" && c.Workflow.OpenAIAPIKey == "" {
		return errors.New("either workflow url or OpenAI API key must be configured")
	}
	if c.Workflow.URL != "" && c.Workflow.Token == "" {
		return errors.New("workflow token is required when workflow url is set")
	}

	if c.Store.URL == "" && c.Store.DSN == "" {
		return errors.New("either store url or store dsn must be configured")
	}
	if c.Store.URL != "" && c.Store.DSN != "" {
		return errors.New("store url and store dsn are mutually exclusive")
	}
	if c.Store.URL != "" && c.Store.APIKey == "" {
		return errors.New("store api key is required when store url is set")
	}

	return nil
}
