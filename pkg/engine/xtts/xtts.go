package xtts

import (
	"context"
	"errors"
	"os"

	"github.com/adrianliechti/tts-playground/pkg/audio"
	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/hub"
	"github.com/adrianliechti/tts-playground/pkg/output"
	"github.com/adrianliechti/tts-playground/pkg/runtime"
)

const (
	Name = "xtts-hindi"

	DefaultModel      = "Abhinay45/XTTS-Hindi-finetuned"
	DefaultLanguage   = "hi"
	DefaultSampleRate = 24000
)

var (
	_ engine.Engine      = (*Engine)(nil)
	_ engine.VoiceCloner = (*Engine)(nil)
)

// Engine clones the voice of a single reference recording.
type Engine struct {
	config engine.Config

	policy    output.Policy
	lifecycle engine.Lifecycle

	hub     *hub.Client
	runtime runtime.Runtime
	handle  *runtime.Handle

	reference string
}

func New(cfg engine.Config) (*Engine, error) {
	if cfg.Runtime == nil {
		return nil, engine.NewConfigurationError(Name, "runtime required")
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv("HF_TOKEN")
	}

	if cfg.Token == "" {
		return nil, engine.NewConfigurationError(Name, "a HuggingFace token is required, pass one or set HF_TOKEN")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if cfg.Device == "" {
		cfg.Device = "cpu"
	}

	return &Engine{
		config: cfg,

		policy:  output.Policy{BaseDir: cfg.OutputDir},
		hub:     cfg.HubClient(cfg.Token),
		runtime: cfg.Runtime,
	}, nil
}

func (e *Engine) Name() string {
	return Name
}

func (e *Engine) IsInitialized() bool {
	return e.lifecycle.Initialized()
}

func (e *Engine) SupportedLanguages() []string {
	return []string{"hi"}
}

func (e *Engine) CloneVoice() {}

// Reference returns the speaker recording discovered in the model repository.
func (e *Engine) Reference() string {
	return e.reference
}

func (e *Engine) Initialize(ctx context.Context) error {
	return e.lifecycle.Do(ctx, Name, e.load)
}

func (e *Engine) load(ctx context.Context) error {
	logger := e.config.Log()

	logger.Info("downloading model", "engine", Name, "model", e.config.Model)

	dir, err := e.hub.Snapshot(ctx, e.config.Model)

	if err != nil {
		if errors.Is(err, hub.ErrUnauthorized) {
			return &engine.ConfigurationError{Engine: Name, Message: "model access denied, check the HuggingFace token", Err: err}
		}

		return err
	}

	model, err := findCheckpoint(dir)

	if err != nil {
		return err
	}

	reference := findReference(model.Dir)

	if reference != "" {
		logger.Info("found default speaker reference", "engine", Name, "path", reference)
	}

	handle, err := e.runtime.Load(ctx, runtime.Model{
		Engine: Name,

		Name:   e.config.Model,
		Device: e.config.Device,

		Options: map[string]any{
			"model_dir":  runtime.LocalFile(model.Dir),
			"checkpoint": runtime.LocalFile(model.Checkpoint),
			"config":     runtime.LocalFile(model.Config),

			"gpu": e.config.Device != "cpu",
		},
	})

	if err != nil {
		return err
	}

	e.handle = handle
	e.reference = reference

	return nil
}

func (e *Engine) Synthesize(ctx context.Context, text string, options *engine.SynthesizeOptions) (*engine.Result, error) {
	if options == nil {
		options = new(engine.SynthesizeOptions)
	}

	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	reference := options.SpeakerWAV

	if reference == "" {
		reference = e.reference
	}

	if reference == "" {
		return nil, engine.NewConfigurationError(Name, "a speaker reference audio file (speaker_wav) is required, none was found in the model repository")
	}

	if _, err := os.Stat(reference); err != nil {
		return nil, &engine.ConfigurationError{Engine: Name, Message: "speaker reference not readable", Err: err}
	}

	language := DefaultLanguage

	if options.Language != "" {
		language = options.Language
	}

	split := true

	if options.SplitSentences != nil {
		split = *options.SplitSentences
	}

	out, err := e.runtime.Run(ctx, e.handle, runtime.Input{
		"text":        text,
		"speaker_wav": runtime.LocalFile(reference),

		"language":        language,
		"split_sentences": split,
	})

	if err != nil {
		return nil, engine.Synthesis(Name, err)
	}

	buf, err := e.normalize(out)

	if err != nil {
		return nil, engine.Synthesis(Name, err)
	}

	return engine.Write(e.policy, Name, buf, options)
}

// normalize accepts an encoded file, a flat waveform or a {wav} object.
func (e *Engine) normalize(out runtime.Output) (*audio.Buffer, error) {
	rate := DefaultSampleRate

	if sr, ok := runtime.ConfigValue[float64](e.handle, "output_sample_rate"); ok && sr > 0 {
		rate = int(sr)
	}

	if val, ok := runtime.Field(out, "wav", "audio"); ok {
		if sr, ok := runtime.Field(out, "sample_rate"); ok {
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
