package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/engine/f5"
	"github.com/adrianliechti/tts-playground/pkg/engine/indri"
	"github.com/adrianliechti/tts-playground/pkg/engine/kokoro"
	"github.com/adrianliechti/tts-playground/pkg/engine/parler"
	"github.com/adrianliechti/tts-playground/pkg/engine/vibevoice"
	"github.com/adrianliechti/tts-playground/pkg/engine/xtts"
	"github.com/adrianliechti/tts-playground/pkg/limiter"
	"github.com/adrianliechti/tts-playground/pkg/otel"
	"github.com/adrianliechti/tts-playground/pkg/registry"
	"github.com/adrianliechti/tts-playground/pkg/runtime"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

var errNotConfigured = errors.New("engine not configured")

// Catalog lists the built-in engines. Probes are bound per configuration.
func Catalog() []registry.Entry {
	return []registry.Entry{
		{
			Name:    xtts.Name,
			Aliases: []string{"xtts_hindi"},

			Description: "XTTS v2 fine-tuned for Hindi, clones a voice from one reference recording",
			Features:    []string{"voice-cloning"},
			Languages:   []string{"hi"},

			Constructor: func(cfg engine.Config) (engine.Engine, error) {
				return xtts.New(cfg)
			},
		},
		{
			Name:    parler.Name,
			Aliases: []string{"indic_parler"},

			Description: "Indic Parler-TTS, 22 Indian languages with the voice described in text",
			Features:    []string{"voice-description", "multilingual"},
			Languages:   slices.Sorted(maps.Keys(parler.Languages)),

			Constructor: func(cfg engine.Config) (engine.Engine, error) {
				return parler.New(cfg)
			},
		},
		{
			Name: indri.Name,

			Description: "Indri 350M, English and Hindi with 13 built-in speakers",
			Features:    []string{"speakers"},
			Languages:   []string{"en", "hi"},

			Constructor: func(cfg engine.Config) (engine.Engine, error) {
				return indri.New(cfg)
			},
		},
		{
			Name:    kokoro.Name,
			Aliases: []string{"kokoro-hindi"},

			Description: "Kokoro 82M, fast lightweight synthesis with Hindi voices",
			Features:    []string{"speakers", "speed"},
			Languages:   []string{"hi", "en"},

			Constructor: func(cfg engine.Config) (engine.Engine, error) {
				return kokoro.New(cfg)
			},
		},
		{
			Name:    f5.Name,
			Aliases: []string{"f5_hindi"},

			Description: "F5-TTS Hindi, voice cloning from a reference recording and its transcript",
			Features:    []string{"voice-cloning", "speed"},
			Languages:   []string{"hi"},

			Constructor: func(cfg engine.Config) (engine.Engine, error) {
				return f5.New(cfg)
			},
		},
		{
			Name:    vibevoice.Name,
			Aliases: []string{"vibevoice_hindi"},

			Description: "VibeVoice 1.5B for Hindi, long form speech with up to four speakers",
			Features:    []string{"speakers", "voice-cloning", "multi-speaker"},
			Languages:   []string{"hi", "en"},

			Constructor: func(cfg engine.Config) (engine.Engine, error) {
				return vibevoice.New(cfg)
			},
		},
	}
}

type engineConfig struct {
	Runtime string `yaml:"runtime"`

	Model  string `yaml:"model"`
	Device string `yaml:"device"`

	Token string `yaml:"token"`
	Voice string `yaml:"voice"`

	Limit *int `yaml:"limit"`
}

type engineBinding struct {
	runtime string
	config  engineConfig

	limiter *rate.Limiter
}

func (cfg *Config) registerEngines(ctx context.Context, f *configFile) error {
	configs, err := decodeEngines(&f.Engines)

	if err != nil {
		return err
	}

	catalog := Catalog()

	if len(configs) == 0 {
		id := cfg.defaultRuntime(f)

		for _, e := range catalog {
			cfg.bindings[e.Name] = &engineBinding{runtime: id}
		}
	}

	for _, c := range configs {
		name, ok := canonicalName(catalog, c.name)

		if !ok {
			return errors.New("invalid engine: " + c.name)
		}

		id := c.config.Runtime

		if id == "" {
			id = cfg.defaultRuntime(f)
		}

		cfg.bindings[name] = &engineBinding{
			runtime: id,
			config:  c.config,

			limiter: createLimiter(c.config.Limit),
		}
	}

	for i := range catalog {
		entry := &catalog[i]
		binding := cfg.bindings[entry.Name]

		entry.Probe = func(ctx context.Context) error {
			if binding == nil {
				return errNotConfigured
			}

			r, err := cfg.Runtime(binding.runtime)

			if err != nil {
				return err
			}

			return r.Probe(ctx, entry.Name)
		}
	}

	r, err := registry.New(ctx, catalog...)

	if err != nil {
		return err
	}

	for _, info := range r.Entries() {
		if !info.Available {
			cfg.Logger().Warn("engine unavailable", "engine", info.Name, "reason", info.Reason)
		}
	}

	cfg.Registry = r
	return nil
}

// defaultRuntime prefers a runtime named local, then the only configured runtime.
func (cfg *Config) defaultRuntime(f *configFile) string {
	if _, ok := f.Runtimes["local"]; ok {
		return "local"
	}

	if len(f.Runtimes) == 1 {
		for id := range f.Runtimes {
			return id
		}
	}

	return "local"
}

type namedEngineConfig struct {
	name   string
	config engineConfig
}

// decodeEngines reads the engines mapping in file order. Unknown keys are
// rejected the same way they are for the rest of the file.
func decodeEngines(node *yaml.Node) ([]namedEngineConfig, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}

	if node.Kind != yaml.MappingNode {
		return nil, errors.New("invalid engines: expected a mapping")
	}

	var result []namedEngineConfig

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var config engineConfig

		if err := decodeStrict(value, &config); err != nil {
			return nil, fmt.Errorf("invalid engine %s: %w", key.Value, err)
		}

		result = append(result, namedEngineConfig{key.Value, config})
	}

	return result, nil
}

func decodeStrict(node *yaml.Node, v any) error {
	data, err := yaml.Marshal(node)

	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func canonicalName(catalog []registry.Entry, name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))

	for _, e := range catalog {
		if e.Name == name || slices.Contains(e.Aliases, name) {
			return e.Name, true
		}
	}

	return "", false
}

// Engine returns the shared instance for a name or alias, constructing it on first use.
// Failed constructions are not cached.
func (cfg *Config) Engine(name string) (engine.Engine, error) {
	canonical, ok := cfg.Registry.Canonical(name)

	if !ok {
		return nil, &engine.UnknownEngineError{Name: name, Available: cfg.Registry.Names()}
	}

	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	if e, ok := cfg.engines[canonical]; ok {
		return e, nil
	}

	var r runtime.Runtime

	binding := cfg.bindings[canonical]

	if binding != nil {
		var err error

		if r, err = cfg.Runtime(binding.runtime); err != nil {
			return nil, &engine.InitializationError{Engine: canonical, Err: err}
		}
	} else {
		// unconfigured engines failed their probe and Get reports why
		binding = &engineBinding{}
	}

	e, err := cfg.Registry.Get(canonical, engine.Config{
		Model:  binding.config.Model,
		Device: binding.config.Device,

		Token: binding.config.Token,
		Voice: binding.config.Voice,

		OutputDir: cfg.Output.BaseDir,
		CacheDir:  cfg.CacheDir,
		VoicesDir: cfg.VoicesDir,

		Runtime: r,
		Logger:  cfg.Logger(),
	})

	if err != nil {
		return nil, err
	}

	e = otel.NewEngine(binding.runtime, e)

	if binding.limiter != nil {
		e = limiter.NewEngine(binding.limiter, e)
	}

	cfg.engines[canonical] = e
	return e, nil
}

// Initialized reports the lifecycle state of every constructed engine.
func (cfg *Config) Initialized() map[string]bool {
	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	result := make(map[string]bool, len(cfg.engines))

	for name, e := range cfg.engines {
		result[name] = e.IsInitialized()
	}

	return result
}
