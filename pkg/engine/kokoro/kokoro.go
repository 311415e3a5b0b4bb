package kokoro

import (
	"context"
	"errors"
	"slices"

	"github.com/adrianliechti/tts-playground/pkg/audio"
	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/output"
	"github.com/adrianliechti/tts-playground/pkg/runtime"
)

const (
	Name = "kokoro"

	DefaultModel      = "hexgrad/Kokoro-82M"
	DefaultVoice      = "hf_alpha"
	DefaultSampleRate = 24000

	// lang_code of the Hindi pipeline
	langCode = "h"
)

var voices = []engine.Speaker{
	{ID: "hf_alpha", Description: "Hindi Female Alpha"},
	{ID: "hf_beta", Description: "Hindi Female Beta"},
	{ID: "hm_omega", Description: "Hindi Male Omega"},
	{ID: "hm_psi", Description: "Hindi Male Psi"},
}

var errNoAudio = errors.New("no audio generated")

var (
	_ engine.Engine        = (*Engine)(nil)
	_ engine.SpeakerLister = (*Engine)(nil)
)

// Engine runs the lightweight Kokoro pipeline, which yields audio sentence by sentence.
type Engine struct {
	config engine.Config

	policy    output.Policy
	lifecycle engine.Lifecycle

	runtime runtime.Runtime
	handle  *runtime.Handle

	voice string
}

func New(cfg engine.Config) (*Engine, error) {
	if cfg.Runtime == nil {
		return nil, engine.NewConfigurationError(Name, "runtime required")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if cfg.Device == "" {
		cfg.Device = "cpu"
	}

	voice := DefaultVoice

	if cfg.Voice != "" {
		voice = cfg.Voice
	}

	return &Engine{
		config: cfg,

		policy:  output.Policy{BaseDir: cfg.OutputDir},
		runtime: cfg.Runtime,

		voice: voice,
	}, nil
}

func (e *Engine) Name() string {
	return Name
}

func (e *Engine) IsInitialized() bool {
	return e.lifecycle.Initialized()
}

func (e *Engine) SupportedLanguages() []string {
	return []string{"hi", "en"}
}

func (e *Engine) Speakers() []engine.Speaker {
	return slices.Clone(voices)
}

func (e *Engine) Initialize(ctx context.Context) error {
	return e.lifecycle.Do(ctx, Name, e.load)
}

func (e *Engine) load(ctx context.Context) error {
	e.config.Log().Info("loading model", "engine", Name, "model", e.config.Model, "device", e.config.Device, "voice", e.voice)

	handle, err := e.runtime.Load(ctx, runtime.Model{
		Engine: Name,

		Name:   e.config.Model,
		Device: e.config.Device,

		Options: map[string]any{
			"lang_code": langCode,
		},
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

	voice := e.voice

	switch {
	case options.Voice != "":
		voice = options.Voice
	case options.Speaker != "":
		voice = options.Speaker
	}

	speed := 1.0

	if options.Speed != nil {
		speed = *options.Speed
	}

	out, err := e.runtime.Run(ctx, e.handle, runtime.Input{
		"text":  text,
		"voice": voice,
		"speed": speed,
	})

	if err != nil {
		return nil, engine.Synthesis(Name, err)
	}

	buf, err := normalize(out)

	if err != nil {
		return nil, engine.Synthesis(Name, err)
	}

	return engine.Write(e.policy, Name, buf, options)
}

// normalize joins the generated chunks in order. A single encoded file or flat waveform
// counts as one chunk.
func normalize(out runtime.Output) (*audio.Buffer, error) {
	if val, ok := runtime.Field(out, "chunks", "audio"); ok {
		out = val
	}

	var chunks []any

	switch val := out.(type) {
	case nil:
	case *runtime.File:
		chunks = []any{val}

	case []any:
		if len(val) > 0 {
			if _, ok := runtime.Number(val[0]); ok {
				chunks = []any{val}
				break
			}
		}

		chunks = val

	default:
		return nil, errors.New("unsupported result")
	}

	if len(chunks) == 0 {
		return nil, errNoAudio
	}

	buffers := make([]*audio.Buffer, 0, len(chunks))

	for _, chunk := range chunks {
		buf, err := decodeChunk(chunk)

		if err != nil {
			return nil, err
		}

		buffers = append(buffers, buf)
	}

	return audio.Concat(buffers...)
}

func decodeChunk(chunk any) (*audio.Buffer, error) {
	if val, ok := runtime.Field(chunk, "audio"); ok {
		chunk = val
	}

	if file, ok := chunk.(*runtime.File); ok {
		return audio.Decode(file.Content, file.ContentType)
	}

	tensor, err := audio.ParseTensor(chunk)

	if err != nil {
		return nil, err
	}

	return tensor.Squeeze().Buffer(DefaultSampleRate)
}
