// Package config loads aigen settings and providers from a YAML file, with ${VAR}
// references filled from the environment and an optional .env file.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/feitianbubu/aigen"
	"github.com/feitianbubu/aigen/internal/logging"
)

// Config is the whole configuration file.
type Config struct {
	Client    ClientConfig  `yaml:"client"`
	Poller    PollerConfig  `yaml:"poller"`
	Fetcher   FetcherConfig `yaml:"fetcher"`
	Log       LogConfig     `yaml:"log"`
	Providers []Provider    `yaml:"providers"`
}

// ClientConfig holds transport timeouts.
type ClientConfig struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	Debug          bool          `yaml:"debug"`
}

// PollerConfig controls video job polling.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
	DownloadDir string        `yaml:"download_dir"`
}

// FetcherConfig controls downloads.
type FetcherConfig struct {
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// LogConfig selects the log level, format and optional file.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Provider is one provider entry as written in the file.
type Provider struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Capability string         `yaml:"capability"`
	Kind       string         `yaml:"kind,omitempty"`
	Endpoint   string         `yaml:"endpoint"`
	Credential string         `yaml:"credential,omitempty"`
	Model      string         `yaml:"model,omitempty"`
	Auth       string         `yaml:"auth,omitempty"`
	Headers    Headers        `yaml:"headers,omitempty"`
	Params     map[string]any `yaml:"params,omitempty"`
	Timeout    time.Duration  `yaml:"timeout,omitempty"`
	Default    bool           `yaml:"default,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	client := aigen.DefaultClientConfig()
	poller := aigen.DefaultPollerConfig()
	fetcher := aigen.DefaultFetcherConfig()
	return &Config{
		Client: ClientConfig{
			ConnectTimeout: client.ConnectTimeout,
			ReadTimeout:    client.ReadTimeout,
			WriteTimeout:   client.WriteTimeout,
		},
		Poller: PollerConfig{
			Interval:    poller.Interval,
			MaxAttempts: poller.MaxAttempts,
		},
		Fetcher: FetcherConfig{
			Retries:    fetcher.Retries,
			RetryDelay: fetcher.RetryDelay,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads path on top of the defaults. A .env file next to path is loaded first and ${VAR}
// references are expanded; a missing config file yields the defaults.
func Load(path string) (*Config, error) {
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"))

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config file")
	}

	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references with their values. A bare $ is left alone.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// loadDotEnv sets variables from a .env file without overriding the environment.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("failed to load .env file", zap.String("path", path), zap.Error(err))
	}
}

// Spec converts an entry into a provider spec.
func (p Provider) Spec() aigen.ProviderSpec {
	return aigen.ProviderSpec{
		ID:          p.ID,
		Name:        p.Name,
		Capability:  aigen.Capability(p.Capability),
		Kind:        aigen.ProviderKind(p.Kind),
		Endpoint:    p.Endpoint,
		Credential:  p.Credential,
		Model:       p.Model,
		Auth:        aigen.AuthScheme(p.Auth),
		Headers:     []aigen.Header(p.Headers),
		ExtraParams: p.Params,
		Timeout:     p.Timeout,
		IsDefault:   p.Default,
	}
}

// FromProviderConfig converts a provider config back into a file entry.
func FromProviderConfig(c aigen.ProviderConfig) Provider {
	return Provider{
		ID:         c.ID,
		Name:       c.Name,
		Capability: string(c.Capability),
		Kind:       string(c.Kind),
		Endpoint:   c.Endpoint,
		Credential: c.Credential,
		Model:      c.Model,
		Auth:       string(c.Auth),
		Headers:    Headers(c.Headers),
		Params:     c.ExtraParams,
		Timeout:    c.Timeout,
		Default:    c.IsDefault,
	}
}

// ProviderConfigs validates every provider entry.
func (c *Config) ProviderConfigs() ([]aigen.ProviderConfig, error) {
	out := make([]aigen.ProviderConfig, 0, len(c.Providers))
	for i, p := range c.Providers {
		cfg, err := aigen.NewProviderConfig(p.Spec())
		if err != nil {
			return nil, errors.Wrapf(err, "provider %d (%s)", i, p.Name)
		}
		out = append(out, cfg)
	}
	return out, nil
}

// ClientConfig builds the client configuration.
func (c *Config) ClientConfig(logger *zap.Logger) *aigen.ClientConfig {
	return &aigen.ClientConfig{
		ConnectTimeout: c.Client.ConnectTimeout,
		ReadTimeout:    c.Client.ReadTimeout,
		WriteTimeout:   c.Client.WriteTimeout,
		Debug:          c.Client.Debug,
		Logger:         logger,
	}
}

// PollerConfig builds the poller configuration.
func (c *Config) PollerConfig(logger *zap.Logger) *aigen.PollerConfig {
	return &aigen.PollerConfig{
		Interval:    c.Poller.Interval,
		MaxAttempts: c.Poller.MaxAttempts,
		DownloadDir: c.Poller.DownloadDir,
		Logger:      logger,
	}
}

// FetcherConfig builds the fetcher configuration.
func (c *Config) FetcherConfig(logger *zap.Logger) *aigen.FetcherConfig {
	return &aigen.FetcherConfig{
		Retries:    c.Fetcher.Retries,
		RetryDelay: c.Fetcher.RetryDelay,
		Logger:     logger,
	}
}

// LogOptions returns the logger options.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File}
}
