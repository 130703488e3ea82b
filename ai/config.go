package ai

import (
	"errors"
	"strings"
)

// Config holds settings for the genre tagging service.
type Config struct {
	// Host is the base URL for an OpenAI-compatible chat API.
	// Example: "http://localhost:11434/v1" for a local server
	Host string

	// Model is the chat model used for tagging.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	Model string

	// Token is the API token. Local servers accept any value.
	Token string

	// Labels is the closed set of genres the tagger may return.
	Labels []string

	// MaxGenres caps how many labels are returned per title.
	// Default: 3
	MaxGenres int
}

// ConfigOption configures a Config.
type ConfigOption func(*Config)

func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

func WithLabels(labels ...string) ConfigOption {
	return func(c *Config) {
		c.Labels = append([]string(nil), labels...)
	}
}

func WithMaxGenres(n int) ConfigOption {
	return func(c *Config) {
		c.MaxGenres = n
	}
}

// DefaultConfig returns a Config pointing at a local OpenAI-compatible server.
// Labels must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		Host:      "http://localhost:11434/v1",
		Model:     "qwen2.5:3b",
		Token:     "none",
		MaxGenres: 3,
	}
}

// NewConfig returns DefaultConfig with opts applied.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures Host ends with /v1.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.Token == "" {
		c.Token = "none"
	}
}

// Validate normalizes and checks the configuration.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if len(c.Labels) == 0 {
		return errors.New("ai config: at least one label is required")
	}
	if c.MaxGenres < 1 {
		return errors.New("ai config: MaxGenres must be at least 1")
	}
	return nil
}
