package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/titlelens/aggregate"
	"github.com/poiesic/titlelens/gate"
	"github.com/poiesic/titlelens/groups"
	"gopkg.in/yaml.v3"
)

// Lookup kinds
const (
	LookupCatalog = "catalog"
	LookupHTTP    = "http"
)

// Config is the full titlelens configuration.
type Config struct {
	MinQueryLength int          `yaml:"min_query_length" validate:"min=1"`
	FlushEvery     int          `yaml:"flush_every" validate:"min=1"`
	URIBase        string       `yaml:"uri_base"`
	IconHint       string       `yaml:"icon_hint"`
	MimeType       string       `yaml:"mime_type" validate:"required"`
	Genres         []string     `yaml:"genres" validate:"min=1,dive,required"`
	Lookup         LookupConfig `yaml:"lookup"`
	Tagger         TaggerConfig `yaml:"tagger"`
}

// LookupConfig selects and tunes the upstream lookup.
type LookupConfig struct {
	Kind           string        `yaml:"kind" validate:"oneof=catalog http"`
	CatalogPath    string        `yaml:"catalog_path"`
	InMemory       bool          `yaml:"in_memory"`
	Endpoint       string        `yaml:"endpoint" validate:"omitempty,url"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" validate:"gte=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0s"`
	MaxRetries     int           `yaml:"max_retries" validate:"min=1"`
	RetryDelay     time.Duration `yaml:"retry_delay" validate:"gte=0s"`
}

// TaggerConfig enables the LLM genre fallback for titles the lookup has no genres for.
type TaggerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host" validate:"required_if=Enabled true"`
	Model   string `yaml:"model" validate:"required_if=Enabled true"`
	Token   string `yaml:"token"`
}

// Option modifies a Config after defaults and file values are applied.
type Option func(*Config)

// WithCatalog selects the local catalog stored at path.
func WithCatalog(path string, inMemory bool) Option {
	return func(c *Config) {
		c.Lookup.Kind = LookupCatalog
		c.Lookup.CatalogPath = path
		c.Lookup.InMemory = inMemory
	}
}

// WithEndpoint selects a remote lookup server.
func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.Lookup.Kind = LookupHTTP
		c.Lookup.Endpoint = endpoint
	}
}

// WithGenres replaces the genre table.
func WithGenres(genres ...string) Option {
	return func(c *Config) {
		c.Genres = append([]string(nil), genres...)
	}
}

// WithMinQueryLength overrides the gate's minimum query length.
func WithMinQueryLength(n int) Option {
	return func(c *Config) {
		c.MinQueryLength = n
	}
}

// Default returns the built-in configuration: an in-memory catalog and the
// default genre table.
func Default(opts ...Option) *Config {
	c := &Config{
		MinQueryLength: gate.DefaultMinQueryLength,
		FlushEvery:     aggregate.DefaultFlushEvery,
		URIBase:        aggregate.DefaultURIBase,
		IconHint:       aggregate.DefaultIconHint,
		MimeType:       aggregate.DefaultMimeType,
		Genres:         append([]string(nil), groups.DefaultGenres...),
		Lookup: LookupConfig{
			Kind:           LookupCatalog,
			InMemory:       true,
			RequestTimeout: 5 * time.Second,
			MaxRetries:     3,
			RetryDelay:     200 * time.Millisecond,
		},
		Tagger: TaggerConfig{
			Host:  "http://localhost:11434",
			Model: "qwen2.5:3b",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the YAML file at path over the defaults, applies opts, and validates.
func Load(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML from r over the defaults, applies opts, and validates.
func Parse(r io.Reader, opts ...Option) (*Config, error) {
	c := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch c.Lookup.Kind {
	case LookupCatalog:
		if !c.Lookup.InMemory && c.Lookup.CatalogPath == "" {
			return fmt.Errorf("%w: catalog lookup needs catalog_path or in_memory", ErrInvalidConfig)
		}
	case LookupHTTP:
		if c.Lookup.Endpoint == "" {
			return fmt.Errorf("%w: http lookup needs an endpoint", ErrInvalidConfig)
		}
	}

	if _, err := groups.New(c.Genres...); err != nil {
		return fmt.Errorf("%w: genres: %w", ErrInvalidConfig, err)
	}
	return nil
}
