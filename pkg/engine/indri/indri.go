package indri

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
	Name = "indri"

	DefaultModel      = "11mlabs/indri-0.1-350m-tts"
	DefaultSpeaker    = "[spkr_68]"
	DefaultSampleRate = 24000

	defaultMaxNewTokens = 2048
	defaultTemperature  = 1.0
)

var speakers = []engine.Speaker{
	{ID: "[spkr_63]", Description: "British male, book reader"},
	{ID: "[spkr_67]", Description: "American male, influencer"},
	{ID: "[spkr_68]", Description: "Indian male, book reader"},
	{ID: "[spkr_69]", Description: "Indian male, book reader"},
	{ID: "[spkr_70]", Description: "Indian male, motivational speaker"},
	{ID: "[spkr_62]", Description: "Indian male, heavy book reader"},
	{ID: "[spkr_53]", Description: "Indian female, recipe reciter"},
	{ID: "[spkr_60]", Description: "Indian female, book reader"},
	{ID: "[spkr_74]", Description: "American male, book reader"},
	{ID: "[spkr_75]", Description: "Indian male, entrepreneur"},
	{ID: "[spkr_76]", Description: "British male, nature lover"},
	{ID: "[spkr_77]", Description: "Indian male, influencer"},
	{ID: "[spkr_66]", Description: "Indian male, politician"},
}

var (
	_ engine.Engine        = (*Engine)(nil)
	_ engine.SpeakerLister = (*Engine)(nil)
)

// Engine speaks with one of a fixed set of trained speakers. Reference audio is not supported.
type Engine struct {
	config engine.Config

	policy    output.Policy
	lifecycle engine.Lifecycle

	runtime runtime.Runtime
	handle  *runtime.Handle

	speaker string
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

	speaker := DefaultSpeaker

	if cfg.Voice != "" {
		speaker = cfg.Voice
	}

	return &Engine{
		config: cfg,

		policy:  output.Policy{BaseDir: cfg.OutputDir},
		runtime: cfg.Runtime,

		speaker: speaker,
	}, nil
}

func (e *Engine) Name() string {
	return Name
}

func (e *Engine) IsInitialized() bool {
	return e.lifecycle.Initialized()
}

func (e *Engine) SupportedLanguages() []string {
	return []string{"en", "hi"}
}

func (e *Engine) Speakers() []engine.Speaker {
	return slices.Clone(speakers)
}

func (e *Engine) Initialize(ctx context.Context) error {
	return e.lifecycle.Do(ctx, Name, e.load)
}

func (e *Engine) load(ctx context.Context) error {
	device := "cuda"

	if e.config.Device == "cpu" {
		device = "cpu"
	}

	e.config.Log().Info("loading model", "engine", Name, "model", e.config.Model, "device", device)

	handle, err := e.runtime.Load(ctx, runtime.Model{
		Engine: Name,

		Name:   e.config.Model,
		Device: device,
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

	warnings := engine.NewWarnings(Name, e.config.Log())

	if options.SpeakerWAV != "" {
		warnings.Add("reference audio is not supported, using a built-in speaker", "speaker_wav", options.SpeakerWAV)
	}

	speaker := e.speaker

	if options.Speaker != "" {
		speaker = options.Speaker
	}

	if !knownSpeaker(speaker) {
		warnings.Add("unknown speaker, using default", "speaker", speaker, "default", DefaultSpeaker)
		speaker = DefaultSpeaker
	}

	maxNewTokens := defaultMaxNewTokens

	if options.MaxNewTokens != nil {
		maxNewTokens = *options.MaxNewTokens
	}

	temperature := defaultTemperature

	if options.Temperature != nil {
		temperature = *options.Temperature
	}

	out, err := e.runtime.Run(ctx, e.handle, runtime.Input{
		"text":    []any{text},
		"speaker": speaker,

		"max_new_tokens": maxNewTokens,
		"do_sample":      true,
		"temperature":    temperature,
	})

	if err != nil {
		return nil, engine.Synthesis(Name, err)
	}

	buf, err := normalize(out)

	if err != nil {
		return nil, engine.Synthesis(Name, err)
	}

	result, err := engine.Write(e.policy, Name, buf, options)

	if err != nil {
		return nil, err
	}

	result.Warnings = warnings.Messages()
	return result, nil
}

func knownSpeaker(id string) bool {
	return slices.ContainsFunc(speakers, func(s engine.Speaker) bool {
		return s.ID == id
	})
}

// normalize accepts the pipeline result as a one element batch, an (audio, rate) pair,
// an {audio, sample_rate} object or a bare tensor.
func normalize(out runtime.Output) (*audio.Buffer, error) {
	if list, ok := out.([]any); ok && len(list) == 1 {
		if _, nested := list[0].([]any); nested || isObject(list[0]) {
			out = list[0]
		}
	}

	if val, ok := runtime.Field(out, "audio"); ok {
		if _, isMap := val.(map[string]any); isMap || isPair(val) {
			out = val
		}
	}

	if file, ok := out.(*runtime.File); ok {
		return audio.Decode(file.Content, file.ContentType)
	}

	data := out
	rate := DefaultSampleRate

	switch {
	case isPair(out):
		pair := out.([]any)

		data = pair[0]
		rate, _ = runtime.Int(pair[1])

	case isObject(out):
		val, ok := runtime.Field(out, "audio")

		if !ok {
			return nil, errors.New("result has no audio")
		}

		data = val

		if sr, ok := runtime.Field(out, "sample_rate", "sampling_rate"); ok {
			if n, ok := runtime.Int(sr); ok {
				rate = n
			}
		}
	}

	if file, ok := data.(*runtime.File); ok {
		return audio.Decode(file.Content, file.ContentType)
	}

	tensor, err := audio.ParseTensor(data)

	if err != nil {
		return nil, err
	}

	tensor = tensor.Squeeze()

	if tensor.Dims() == 2 && tensor.Shape[0] < tensor.Shape[1] {
		if tensor, err = tensor.Transpose(); err != nil {
			return nil, err
		}
	}

	return tensor.Buffer(rate)
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// isPair reports whether v looks like an (audio, sample rate) tuple.
func isPair(v any) bool {
	list, ok := v.([]any)

	if !ok || len(list) != 2 {
		return false
	}

	if _, ok := list[0].([]any); !ok {
		if _, ok := list[0].(*runtime.File); !ok {
			return false
		}
	}

	rate, ok := runtime.Int(list[1])
	return ok && rate > 0
}
