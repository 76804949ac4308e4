package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load for fields left unset in the YAML file.
const (
	DefaultListenAddr      = ":8080"
	DefaultRefreshInterval = 5 * time.Minute
	DefaultClassifierWait  = 5 * time.Second
	DefaultConfidence      = 0.8
	DefaultSessionTTL      = 30 * time.Minute
)

// ValidClassifierProviders lists the LLM backends the classifier knows how
// to construct. An unknown provider is reported as a warning rather than an
// error so that newer backends can be tried without a code change.
var ValidClassifierProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"gemini":    true,
	"ollama":    true,
	"deepseek":  true,
	"mistral":   true,
	"groq":      true,
}

// Load reads, defaults, and validates the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML configuration from r, applies defaults, and
// validates the result. Unknown YAML keys are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = CatalogYAML
	}
	if c.Catalog.RefreshInterval == 0 {
		c.Catalog.RefreshInterval = Duration(DefaultRefreshInterval)
	}
	if c.Classifier.Timeout == 0 {
		c.Classifier.Timeout = Duration(DefaultClassifierWait)
	}
	if c.Classifier.ConfidenceThreshold == 0 {
		c.Classifier.ConfidenceThreshold = DefaultConfidence
	}
	if c.Session.Backend == "" {
		c.Session.Backend = SessionMemory
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = Duration(DefaultSessionTTL)
	}
}

// Validate checks the configuration for errors. All failures are collected
// and returned joined, so a broken file is reported in one pass.
func (c *Config) Validate() error {
	var errs []error

	if !c.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level: unknown level %q", c.Server.LogLevel))
	}

	switch {
	case !c.Catalog.Source.IsValid():
		errs = append(errs, fmt.Errorf("catalog.source: unknown source %q", c.Catalog.Source))
	case c.Catalog.Source == CatalogYAML && c.Catalog.Path == "":
		errs = append(errs, errors.New("catalog.path: required when catalog.source is yaml"))
	case c.Catalog.Source == CatalogPostgres && c.Catalog.PostgresDSN == "":
		errs = append(errs, errors.New("catalog.postgres_dsn: required when catalog.source is postgres"))
	}
	if c.Catalog.RefreshInterval < 0 {
		errs = append(errs, errors.New("catalog.refresh_interval: must not be negative"))
	}

	if c.Classifier.Model == "" {
		errs = append(errs, errors.New("classifier.model: required"))
	}
	if c.Classifier.Timeout <= 0 {
		errs = append(errs, errors.New("classifier.timeout: must be positive"))
	}
	if c.Classifier.ConfidenceThreshold < 0 || c.Classifier.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("classifier.confidence_threshold: %v outside [0, 1]",
			c.Classifier.ConfidenceThreshold))
	}
	if c.Classifier.Provider == "" {
		errs = append(errs, errors.New("classifier.provider: required"))
	} else if !ValidClassifierProviders[c.Classifier.Provider] {
		slog.Warn("unrecognised classifier provider, continuing anyway",
			"provider", c.Classifier.Provider)
	}

	switch {
	case !c.Session.Backend.IsValid():
		errs = append(errs, fmt.Errorf("session.backend: unknown backend %q", c.Session.Backend))
	case c.Session.Backend == SessionRedis && c.Session.RedisAddr == "":
		errs = append(errs, errors.New("session.redis_addr: required when session.backend is redis"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl: must be positive"))
	}

	return errors.Join(errs...)
}
