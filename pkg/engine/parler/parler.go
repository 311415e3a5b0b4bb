package parler

import (
	"context"
	"maps"
	"os"
	"slices"

	"github.com/adrianliechti/tts-playground/pkg/audio"
	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/output"
	"github.com/adrianliechti/tts-playground/pkg/runtime"
)

const (
	Name = "indic-parler"

	DefaultModel       = "ai4bharat/indic-parler-tts"
	DefaultDescription = "A female speaker with a calm and clear voice."
	DefaultSampleRate  = 44100
)

// Languages maps the supported language codes to their names.
var Languages = map[string]string{
	"as":  "Assamese",
	"bn":  "Bengali",
	"brx": "Bodo",
	"doi": "Dogri",
	"en":  "English",
	"gom": "Konkani",
	"gu":  "Gujarati",
	"hi":  "Hindi",
	"kn":  "Kannada",
	"ks":  "Kashmiri",
	"mai": "Maithili",
	"ml":  "Malayalam",
	"mni": "Manipuri",
	"mr":  "Marathi",
	"ne":  "Nepali",
	"or":  "Odia",
	"pa":  "Punjabi",
	"sa":  "Sanskrit",
	"sat": "Santali",
	"sd":  "Sindhi",
	"ta":  "Tamil",
	"te":  "Telugu",
}

var descriptions = map[string]string{
	"male_calm":         "A male speaker with a calm and clear voice.",
	"female_calm":       "A female speaker with a calm and clear voice.",
	"male_expressive":   "A male speaker with an expressive and energetic voice.",
	"female_expressive": "A female speaker with an expressive and energetic voice.",
}

var (
	_ engine.Engine        = (*Engine)(nil)
	_ engine.Describer     = (*Engine)(nil)
	_ engine.SpeakerLister = (*Engine)(nil)
)

// Engine renders text in a voice described in natural language.
type Engine struct {
	config engine.Config

	policy    output.Policy
	lifecycle engine.Lifecycle

	runtime runtime.Runtime
	handle  *runtime.Handle

	description string
}

func New(cfg engine.Config) (*Engine, error) {
	if cfg.Runtime == nil {
		return nil, engine.NewConfigurationError(Name, "runtime required")
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv("HF_TOKEN")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if cfg.Device == "" {
		cfg.Device = "cpu"
	}

	description := DefaultDescription

	if cfg.Voice != "" {
		description = expand(cfg.Voice)
	}

	return &Engine{
		config: cfg,

		policy:  output.Policy{BaseDir: cfg.OutputDir},
		runtime: cfg.Runtime,

		description: description,
	}, nil
}

func (e *Engine) Name() string {
	return Name
}

func (e *Engine) IsInitialized() bool {
	return e.lifecycle.Initialized()
}

func (e *Engine) SupportedLanguages() []string {
	return slices.Sorted(maps.Keys(Languages))
}

func (e *Engine) Descriptions() map[string]string {
	return maps.Clone(descriptions)
}

// Speakers lists the description presets, which can be passed as speaker or description.
func (e *Engine) Speakers() []engine.Speaker {
	var result []engine.Speaker

	for _, id := range slices.Sorted(maps.Keys(descriptions)) {
		result = append(result, engine.Speaker{ID: id, Description: descriptions[id]})
	}

	return result
}

func (e *Engine) Initialize(ctx context.Context) error {
	return e.lifecycle.Do(ctx, Name, e.load)
}

func (e *Engine) load(ctx context.Context) error {
	e.config.Log().Info("loading model", "engine", Name, "model", e.config.Model, "device", e.config.Device)

	options := map[string]any{}

	if e.config.Token != "" {
		options["token"] = e.config.Token
	}

	handle, err := e.runtime.Load(ctx, runtime.Model{
		Engine: Name,

		Name:   e.config.Model,
		Device: e.config.Device,

		Options: options,
	})

	if err != nil {
		return err
	}

	e.handle = handle
	return nil
}

func (e *Engine) Synthesize(ctx context.Context, text string, options *engine.SynthesizeOptions) (*engine.Result, error) {
	if options == nil {
		options = new(engine.SynthesizeOptions)
	}

	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	description := e.description

	switch {
	case options.Description != "":
		description = expand(options.Description)
	case options.Speaker != "":
		description = expand(options.Speaker)
	}

	input := runtime.Input{
		"description": description,
		"prompt":      text,
	}

	if options.Language != "" {
		input["language"] = options.Language
	}

	if options.Temperature != nil {
		input["temperature"] = *options.Temperature
	}

	if options.MaxNewTokens != nil {
		input["max_new_tokens"] = *options.MaxNewTokens
	}

	out, err := e.runtime.Run(ctx, e.handle, input)

	if err != nil {
		return nil, engine.Synthesis(Name, err)
	}

	buf, err := e.normalize(out)

	if err != nil {
		return nil, engine.Synthesis(Name, err)
	}

	return engine.Write(e.policy, Name, buf, options)
}

// normalize accepts the generated waveform, optionally wrapped as {audio, sampling_rate}.
// The sampling rate otherwise comes from the loaded model config.
func (e *Engine) normalize(out runtime.Output) (*audio.Buffer, error) {
	rate := DefaultSampleRate

	if sr, ok := runtime.ConfigValue[float64](e.handle, "sampling_rate"); ok && sr > 0 {
		rate = int(sr)
	}

	if val, ok := runtime.Field(out, "audio"); ok {
		if sr, ok := runtime.Field(out, "sampling_rate", "sample_rate"); ok {
			if n, ok := runtime.Int(sr); ok {
				rate = n
			}
		}

		out = val
	}

	if file, ok := out.(*runtime.File); ok {
		return audio.Decode(file.Content, file.ContentType)
	}

	tensor, err := audio.ParseTensor(out)

	if err != nil {
		return nil, err
	}

	return tensor.Squeeze().Buffer(rate)
}

func expand(description string) string {
	if preset, ok := descriptions[description]; ok {
		return preset
	}

	return description
}
