package config

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/output"
	"github.com/adrianliechti/tts-playground/pkg/registry"
	"github.com/adrianliechti/tts-playground/pkg/runtime"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddress = ":8000"
	DefaultUploads = "temp_uploads"
)

type Config struct {
	Address string

	Output  output.Policy
	Uploads string

	CacheDir  string
	VoicesDir string

	Registry *registry.Registry

	logger *slog.Logger
	closer io.Closer

	runtimes      map[string]runtime.Runtime
	runtimeErrors map[string]error

	bindings map[string]*engineBinding

	mu      sync.Mutex
	engines map[string]engine.Engine
}

type Option func(*Config)

// WithRuntime registers a runtime under id before engines are probed.
func WithRuntime(id string, r runtime.Runtime) Option {
	return func(c *Config) {
		c.RegisterRuntime(id, r)
	}
}

func Parse(ctx context.Context, path string, options ...Option) (*Config, error) {
	file, err := parseFile(path)

	if err != nil {
		return nil, err
	}

	return build(ctx, file, options...)
}

// Default runs every engine on a local python worker.
func Default(ctx context.Context, options ...Option) (*Config, error) {
	return build(ctx, &configFile{
		Runtimes: map[string]runtimeConfig{
			"local": {
				Type:    "local",
				Command: "python3",
				Args:    []string{"-m", "tts_worker"},
			},
		},
	}, options...)
}

func build(ctx context.Context, file *configFile, options ...Option) (*Config, error) {
	c := &Config{
		Address: DefaultAddress,
		Uploads: DefaultUploads,

		runtimes:      make(map[string]runtime.Runtime),
		runtimeErrors: make(map[string]error),

		bindings: make(map[string]*engineBinding),
		engines:  make(map[string]engine.Engine),
	}

	for _, option := range options {
		option(c)
	}

	if file.Address != "" {
		c.Address = file.Address
	}

	if file.Output != "" {
		c.Output.BaseDir = file.Output
	}

	if file.Uploads != "" {
		c.Uploads = file.Uploads
	}

	c.CacheDir = file.Cache
	c.VoicesDir = file.Voices

	if err := c.registerLogger(file); err != nil {
		return nil, err
	}

	if err := c.registerRuntimes(file); err != nil {
		return nil, err
	}

	if err := c.registerEngines(ctx, file); err != nil {
		return nil, err
	}

	return c, nil
}

type configFile struct {
	Address string `yaml:"address"`

	Output  string `yaml:"output"`
	Uploads string `yaml:"uploads"`

	Cache  string `yaml:"cache"`
	Voices string `yaml:"voices"`

	Logging loggingConfig `yaml:"logging"`

	Runtimes map[string]runtimeConfig `yaml:"runtimes"`

	Engines yaml.Node `yaml:"engines"`
}

func parseFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var config configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		if errors.Is(err, io.EOF) {
			return &config, nil
		}

		return nil, err
	}

	return &config, nil
}

func (cfg *Config) Logger() *slog.Logger {
	if cfg.logger != nil {
		return cfg.logger
	}

	return slog.Default()
}

// Close stops runtime workers and flushes the log file.
func (cfg *Config) Close() error {
	var errs []error

	for _, r := range cfg.runtimes {
		if c, ok := r.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}

	if cfg.closer != nil {
		errs = append(errs, cfg.closer.Close())
	}

	return errors.Join(errs...)
}

func createLimiter(limit *int) *rate.Limiter {
	if limit == nil {
		return nil
	}

	return rate.NewLimiter(rate.Limit(*limit), *limit)
}
