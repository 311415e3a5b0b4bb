package vibevoice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/adrianliechti/tts-playground/pkg/audio"
	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/output"
	"github.com/adrianliechti/tts-playground/pkg/runtime"
)

const (
	Name = "vibevoice-hindi"

	DefaultModel      = "tarun7r/vibevoice-hindi-1.5B"
	DefaultDevice     = "cuda"
	DefaultSpeaker    = "hi-Priya_woman"
	DefaultVoicesDir  = "demo/voices"
	DefaultSampleRate = 24000

	DefaultCFGScale = 1.3

	// MaxSpeakers is the number of distinct voices one inference call can render.
	MaxSpeakers = 4

	customPrefix = "custom-"
)

var builtinSpeakers = []engine.Speaker{
	{ID: "hi-Priya_woman", Description: "Hindi Female (Priya)"},
	{ID: "hi-Raj_man", Description: "Hindi Male (Raj)"},
}

var defaultReferences = []string{"my_voice.wav", "reference.wav", "speaker.wav"}

var (
	_ engine.Engine        = (*Engine)(nil)
	_ engine.SpeakerLister = (*Engine)(nil)
	_ engine.VoiceCloner   = (*Engine)(nil)
)

// Turn is one line of a conversation.
type Turn struct {
	Speaker string
	Text    string
}

// Engine renders long form speech with up to four speakers, each voiced by a sample recording.
type Engine struct {
	config engine.Config

	policy    output.Policy
	lifecycle engine.Lifecycle

	runtime runtime.Runtime
	handle  *runtime.Handle

	voicesDir string
	reference string

	mu     sync.RWMutex
	custom []engine.Speaker
	paths  map[string]string
}

func New(cfg engine.Config) (*Engine, error) {
	if cfg.Runtime == nil {
		return nil, engine.NewConfigurationError(Name, "runtime required")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if cfg.Device == "" {
		cfg.Device = DefaultDevice
	}

	voicesDir := cfg.VoicesDir

	if voicesDir == "" {
		voicesDir = DefaultVoicesDir
	}

	return &Engine{
		config: cfg,

		policy:  output.Policy{BaseDir: cfg.OutputDir},
		runtime: cfg.Runtime,

		voicesDir: voicesDir,
		paths:     map[string]string{},
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

func (e *Engine) CloneVoice() {}

// Speakers lists the built-in speakers followed by voices added to this instance.
func (e *Engine) Speakers() []engine.Speaker {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]engine.Speaker, 0, len(builtinSpeakers)+len(e.custom))
	result = append(result, builtinSpeakers...)
	result = append(result, e.custom...)

	return result
}

// AddCustomVoice registers a voice sample under the id custom-<name> and returns the id.
func (e *Engine) AddCustomVoice(name, path string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return "", errors.New("voice name required")
	}

	info, err := os.Stat(path)

	if err != nil {
		return "", err
	}

	if !info.Mode().IsRegular() {
		return "", errors.New("voice sample is not a file: " + path)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	id := customPrefix + name

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.paths[id]; !exists {
		e.custom = append(e.custom, engine.Speaker{ID: id, Description: "Custom voice (" + name + ")"})
	}

	e.paths[id] = path

	return id, nil
}

func (e *Engine) Initialize(ctx context.Context) error {
	return e.lifecycle.Do(ctx, Name, e.load)
}

func (e *Engine) load(ctx context.Context) error {
	logger := e.config.Log()

	logger.Info("loading model", "engine", Name, "model", e.config.Model, "device", e.config.Device)

	dtype := "float32"

	if e.config.Device == "cuda" {
		dtype = "float16"
	}

	handle, err := e.runtime.Load(ctx, runtime.Model{
		Engine: Name,

		Name:   e.config.Model,
		Device: e.config.Device,

		Options: map[string]any{
			"torch_dtype": dtype,
		},
	})

	if err != nil {
		return err
	}

	if err := os.MkdirAll(e.voicesDir, 0755); err != nil {
		return err
	}

	e.handle = handle
	e.reference = findReference()

	if e.reference != "" {
		logger.Info("found default speaker reference", "engine", Name, "path", e.reference)
	}

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

	speaker := options.Speaker

	if speaker == "" {
		speaker = DefaultSpeaker
	}

	voice := options.SpeakerWAV

	if voice != "" {
		if _, err := os.Stat(voice); err != nil {
			return nil, &engine.ConfigurationError{Engine: Name, Message: "speaker reference not readable", Err: err}
		}
	}

	if voice == "" && options.Speaker != "" {
		voice = e.voicePath(options.Speaker)
	}

	if voice == "" {
		voice = e.reference
	}

	var voices []string

	if voice != "" {
		voices = append(voices, voice)
	} else {
		warnings.Add("no voice sample found, using the model voice", "speaker", speaker)
	}

	script := "Speaker 1: " + text

	return e.generate(ctx, script, []string{speaker}, voices, options, warnings)
}

// SynthesizeConversation renders all turns in one call. Speakers are numbered in order
// of first appearance and each needs a voice sample.
func (e *Engine) SynthesizeConversation(ctx context.Context, turns []Turn, options *engine.SynthesizeOptions) (*engine.Result, error) {
	if options == nil {
		options = new(engine.SynthesizeOptions)
	}

	if len(turns) == 0 {
		return nil, engine.NewConfigurationError(Name, "conversation has no turns")
	}

	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	var speakers []string
	var voices []string

	numbers := map[string]int{}
	lines := make([]string, 0, len(turns))

	for _, turn := range turns {
		speaker := turn.Speaker

		if speaker == "" {
			speaker = DefaultSpeaker
		}

		n, ok := numbers[speaker]

		if !ok {
			if len(speakers) == MaxSpeakers {
				return nil, engine.NewConfigurationError(Name, "a conversation supports at most "+strconv.Itoa(MaxSpeakers)+" speakers")
			}

			voice := e.voicePath(speaker)

			if voice == "" {
				return nil, engine.NewConfigurationError(Name, "no voice sample for speaker "+speaker)
			}

			speakers = append(speakers, speaker)
			voices = append(voices, voice)

			n = len(speakers)
			numbers[speaker] = n
		}

		lines = append(lines, "Speaker "+strconv.Itoa(n)+": "+strings.TrimSpace(turn.Text))
	}

	warnings := engine.NewWarnings(Name, e.config.Log())

	return e.generate(ctx, strings.Join(lines, "\n"), speakers, voices, options, warnings)
}

func (e *Engine) generate(ctx context.Context, script string, speakers, voices []string, options *engine.SynthesizeOptions, warnings *engine.Warnings) (*engine.Result, error) {
	cfgScale := DefaultCFGScale

	if options.CFGScale != nil {
		cfgScale = *options.CFGScale
	}

	input := runtime.Input{
		"text":     script,
		"speakers": speakers,

		"cfg_scale": cfgScale,
	}

	if len(voices) > 0 {
		samples := make([]runtime.LocalFile, len(voices))

		for i, v := range voices {
			samples[i] = runtime.LocalFile(v)
		}

		input["voice_samples"] = samples
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

	result, err := engine.Write(e.policy, Name, buf, options)

	if err != nil {
		return nil, err
	}

	result.Warnings = warnings.Messages()
	return result, nil
}

// voicePath resolves a speaker id to its sample: custom voices first, then <voices dir>/<id>.wav.
func (e *Engine) voicePath(speaker string) string {
	e.mu.RLock()
	path, ok := e.paths[speaker]
	e.mu.RUnlock()

	if ok {
		return path
	}

	path = filepath.Join(e.voicesDir, speaker+".wav")

	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return path
	}

	return ""
}

// normalize unwraps {audio}, {waveform} or a tuple, drops leading unit dimensions and
// scales clipped audio back into range.
func normalize(out runtime.Output) (*audio.Buffer, error) {
	if val, ok := runtime.Field(out, "audio", "waveform"); ok {
		out = val
	}

	if list, ok := out.([]any); ok && len(list) > 1 {
		switch list[0].(type) {
		case []any, *runtime.File:
			if _, number := runtime.Number(list[1]); number {
				out = list[0]
			}
		}
	}

	var buf *audio.Buffer

	if file, ok := out.(*runtime.File); ok {
		decoded, err := audio.Decode(file.Content, file.ContentType)

		if err != nil {
			return nil, err
		}

		buf = decoded
	} else {
		tensor, err := audio.ParseTensor(out)

		if err != nil {
			return nil, err
		}

		if buf, err = tensor.SqueezeLeading().Buffer(DefaultSampleRate); err != nil {
			return nil, err
		}
	}

	buf.NormalizePeak()
	return buf, nil
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
