package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/adrianliechti/tts-playground/pkg/hub"
	"github.com/adrianliechti/tts-playground/pkg/runtime"
)

// Engine is the contract every text-to-speech backend implements.
//
// Initialize acquires the model and is idempotent. Synthesize initializes on demand.
// SupportedLanguages and IsInitialized have no side effects. An Engine is not safe for
// concurrent Synthesize calls.
type Engine interface {
	Name() string

	Initialize(ctx context.Context) error
	IsInitialized() bool

	SupportedLanguages() []string

	Synthesize(ctx context.Context, text string, options *SynthesizeOptions) (*Result, error)
}

// SpeakerLister is implemented by engines with a speaker catalog.
type SpeakerLister interface {
	Speakers() []Speaker
}

// VoiceCloner is implemented by engines that accept reference audio in SpeakerWAV.
type VoiceCloner interface {
	CloneVoice()
}

// Describer is implemented by engines that accept a free text voice description.
type Describer interface {
	Descriptions() map[string]string
}

// Wrapper is implemented by decorators around an engine.
type Wrapper interface {
	Unwrap() Engine
}

// As returns the first engine in a decorator chain that implements T.
func As[T any](e Engine) (T, bool) {
	for e != nil {
		if v, ok := e.(T); ok {
			return v, true
		}

		w, ok := e.(Wrapper)

		if !ok {
			break
		}

		e = w.Unwrap()
	}

	var zero T
	return zero, false
}

type Speaker struct {
	ID          string
	Description string
}

// Config holds construction settings. Engines apply their own defaults to empty fields.
type Config struct {
	Model  string
	Device string

	Token string
	Voice string

	OutputDir string
	CacheDir  string
	VoicesDir string

	Runtime runtime.Runtime
	Logger  *slog.Logger

	// Hub overrides the model hub client built from Token and CacheDir.
	Hub *hub.Client
}

func (c Config) Log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return slog.Default()
}

// HubClient returns the configured hub client or one for the given token.
func (c Config) HubClient(token string) *hub.Client {
	if c.Hub != nil {
		return c.Hub
	}

	var options []hub.Option

	if token != "" {
		options = append(options, hub.WithToken(token))
	}

	if c.CacheDir != "" {
		options = append(options, hub.WithCache(c.CacheDir))
	}

	options = append(options, hub.WithLogger(c.Log()))

	return hub.New(options...)
}

type SynthesizeOptions struct {
	// OutputPath selects file mode. Without it the encoded audio is returned as bytes.
	OutputPath string

	// UseDefaultOutputDir places relative paths below output/<engine>/. Defaults to true.
	UseDefaultOutputDir *bool

	Speaker    string
	SpeakerWAV string

	Language    string
	Description string
	Voice       string

	RefText string

	Speed       *float64
	Temperature *float64
	CFGScale    *float64

	MaxNewTokens *int
	Seed         *int64

	SplitSentences *bool
}

func (o *SynthesizeOptions) DefaultOutputDir() bool {
	if o == nil || o.UseDefaultOutputDir == nil {
		return true
	}

	return *o.UseDefaultOutputDir
}

// Result holds either a Path or Content, never both.
type Result struct {
	Path    string
	Content []byte

	SampleRate int
	Channels   int
	Duration   time.Duration

	Warnings []string
}

func (r *Result) IsFile() bool {
	return r.Path != ""
}

func Ptr[T any](v T) *T {
	return &v
}
