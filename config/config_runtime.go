package config

import (
	"errors"
	"strings"
	"time"

	"github.com/adrianliechti/tts-playground/pkg/runtime"
	"github.com/adrianliechti/tts-playground/pkg/runtime/local"
	"github.com/adrianliechti/tts-playground/pkg/runtime/openai"
	"github.com/adrianliechti/tts-playground/pkg/runtime/replicate"
)

// interpreter modules each engine kind imports in the local worker
var defaultModules = map[string][]string{
	"xtts-hindi":      {"TTS"},
	"indic-parler":    {"parler_tts", "transformers"},
	"indri":           {"transformers", "torch"},
	"kokoro":          {"kokoro"},
	"f5-hindi":        {"f5_tts"},
	"vibevoice-hindi": {"vibevoice"},
}

func (cfg *Config) RegisterRuntime(id string, r runtime.Runtime) {
	if cfg.runtimes == nil {
		cfg.runtimes = make(map[string]runtime.Runtime)
	}

	cfg.runtimes[id] = r
}

func (cfg *Config) Runtime(id string) (runtime.Runtime, error) {
	if err, ok := cfg.runtimeErrors[id]; ok {
		return nil, err
	}

	if cfg.runtimes != nil {
		if r, ok := cfg.runtimes[id]; ok {
			return r, nil
		}
	}

	return nil, errors.New("runtime not found: " + id)
}

type runtimeConfig struct {
	Type string `yaml:"type"`

	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Dir     string   `yaml:"dir"`
	Env     []string `yaml:"env"`

	Timeout string `yaml:"timeout"`

	Model   string              `yaml:"model"`
	Models  map[string]string   `yaml:"models"`
	Modules map[string][]string `yaml:"modules"`
}

// registerRuntimes keeps going when a runtime cannot be created. Engines bound to it
// are reported unavailable instead. Runtimes passed as options take precedence.
func (cfg *Config) registerRuntimes(f *configFile) error {
	for id, config := range f.Runtimes {
		if _, ok := cfg.runtimes[id]; ok {
			continue
		}

		r, err := cfg.createRuntime(config)

		if err != nil {
			cfg.Logger().Warn("runtime unavailable", "runtime", id, "error", err)
			cfg.runtimeErrors[id] = err

			continue
		}

		cfg.RegisterRuntime(id, r)
	}

	return nil
}

func (cfg *Config) createRuntime(c runtimeConfig) (runtime.Runtime, error) {
	switch strings.ToLower(c.Type) {
	case "local", "":
		return cfg.localRuntime(c)

	case "replicate":
		return cfg.replicateRuntime(c)

	case "openai":
		return cfg.openaiRuntime(c)

	default:
		return nil, errors.New("invalid runtime type: " + c.Type)
	}
}

func (cfg *Config) localRuntime(c runtimeConfig) (runtime.Runtime, error) {
	options := []local.Option{
		local.WithLogger(cfg.Logger()),
	}

	if len(c.Args) > 0 {
		options = append(options, local.WithArgs(c.Args...))
	}

	if c.Dir != "" {
		options = append(options, local.WithDir(c.Dir))
	}

	if len(c.Env) > 0 {
		options = append(options, local.WithEnv(c.Env...))
	}

	if c.Timeout != "" {
		timeout, err := time.ParseDuration(c.Timeout)

		if err != nil {
			return nil, err
		}

		options = append(options, local.WithProbeTimeout(timeout))
	}

	modules := c.Modules

	if modules == nil {
		modules = defaultModules
	}

	for engine, list := range modules {
		options = append(options, local.WithModules(engine, list...))
	}

	command := c.Command

	if command == "" {
		command = "python3"
	}

	return local.New(command, options...)
}

func (cfg *Config) replicateRuntime(c runtimeConfig) (runtime.Runtime, error) {
	var options []replicate.Option

	if c.URL != "" {
		options = append(options, replicate.WithURL(c.URL))
	}

	if c.Token != "" {
		options = append(options, replicate.WithToken(c.Token))
	}

	for engine, identifier := range c.Models {
		options = append(options, replicate.WithModel(engine, identifier))
	}

	return replicate.New(options...)
}

func (cfg *Config) openaiRuntime(c runtimeConfig) (runtime.Runtime, error) {
	var options []openai.Option

	if c.Token != "" {
		options = append(options, openai.WithToken(c.Token))
	}

	if c.Model != "" {
		options = append(options, openai.WithModel(c.Model))
	}

	return openai.New(c.URL, options...)
}
