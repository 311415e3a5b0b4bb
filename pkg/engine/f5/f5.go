package f5

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrianliechti/tts-playground/pkg/audio"
	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/hub"
	"github.com/adrianliechti/tts-playground/pkg/output"
	"github.com/adrianliechti/tts-playground/pkg/runtime"
)

const (
	Name = "f5-hindi"

	DefaultModel      = "SPRINGLab/F5-Hindi-24KHz"
	DefaultSampleRate = 24000

	checkpointFile = "model_2500000.safetensors"
	vocabFile      = "vocab.txt"
	modelType      = "F5TTS_Small"
)

// recordings looked up in the working directory when no reference is passed
var defaultReferences = []string{"my_voice.wav", "reference.wav", "speaker.wav"}

var (
	_ engine.Engine      = (*Engine)(nil)
	_ engine.VoiceCloner = (*Engine)(nil)
)

// Engine clones a voice from a reference recording and, optionally, its transcript.
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

func (e *Engine) Reference() string {
	return e.reference
}

func (e *Engine) Initialize(ctx context.Context) error {
	return e.lifecycle.Do(ctx, Name, e.load)
}

func (e *Engine) load(ctx context.Context) error {
	logger := e.config.Log()

	logger.Info("downloading model", "engine", Name, "model", e.config.Model)

	checkpoint, err := e.download(ctx, checkpointFile)

	if err != nil {
		return err
	}

	vocab, err := e.download(ctx, vocabFile)

	if err != nil {
		return err
	}

	options := map[string]any{
		"model":      modelType,
		"ckpt_file":  runtime.LocalFile(checkpoint),
		"vocab_file": runtime.LocalFile(vocab),
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
	e.reference = findReference()

	if e.reference != "" {
		logger.Info("found default speaker reference", "engine", Name, "path", e.reference)
	}

	return nil
}

func (e *Engine) download(ctx context.Context, name string) (string, error) {
	path, err := e.hub.Download(ctx, e.config.Model, name)

	if errors.Is(err, hub.ErrUnauthorized) {
		return "", &engine.ConfigurationError{Engine: Name, Message: "model access denied, check the HuggingFace token", Err: err}
	}

	return path, err
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
		return nil, engine.NewConfigurationError(Name, "a speaker reference audio file (speaker_wav) is required, pass one or place my_voice.wav in the working directory")
	}

	if _, err := os.Stat(reference); err != nil {
		return nil, &engine.ConfigurationError{Engine: Name, Message: "speaker reference not readable", Err: err}
	}

	speed := 1.0

	if options.Speed != nil {
		speed = *options.Speed
	}

	input := runtime.Input{
		"ref_file": runtime.LocalFile(reference),
		"ref_text": options.RefText,
		"gen_text": text,

		"speed": speed,
	}

	if options.Seed != nil {
		input["seed"] = *options.Seed
	}

	out, err := e.runtime.Run(ctx, e.handle, input)

	if err != nil {
		return nil, engine.Synthesis(Name, err)
	}

	buf, err := normalize(out)

	if err != nil {
		return nil, engine.Synthesis(Name, err)
	}

	return engine.Write(e.policy, Name, buf, options)
}

// normalize accepts a (wav, sample rate, spectrogram) tuple, an encoded file or a bare waveform.
func normalize(out runtime.Output) (*audio.Buffer, error) {
	rate := DefaultSampleRate

	if list, ok := out.([]any); ok && len(list) >= 2 {
		if _, nested := list[0].([]any); nested {
			if n, ok := runtime.Int(list[1]); ok && n > 0 {
				out = list[0]
				rate = n
			}
		}
	}

	if val, ok := runtime.Field(out, "wav", "audio"); ok {
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

func findReference() string {
	for _, name := range defaultReferences {
		info, err := os.Stat(name)

		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		if path, err := filepath.Abs(name); err == nil {
			return path
		}
	}

	return ""
}
