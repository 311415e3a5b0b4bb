package engine

import (
	"log/slog"

	"github.com/adrianliechti/tts-playground/pkg/audio"
	"github.com/adrianliechti/tts-playground/pkg/output"
)

// Write applies the output path policy to normalized audio.
func Write(policy output.Policy, engine string, buf *audio.Buffer, options *SynthesizeOptions) (*Result, error) {
	if options == nil {
		options = new(SynthesizeOptions)
	}

	written, err := policy.Write(engine, options.OutputPath, options.DefaultOutputDir(), buf)

	if err != nil {
		return nil, &SynthesisError{Engine: engine, Err: err}
	}

	return &Result{
		Path:    written.Path,
		Content: written.Content,

		SampleRate: written.SampleRate,
		Channels:   written.Channels,
		Duration:   written.Duration,
	}, nil
}

// Warnings collects non-fatal capability warnings raised during one call.
type Warnings struct {
	engine string
	logger *slog.Logger

	messages []string
}

func NewWarnings(engine string, logger *slog.Logger) *Warnings {
	if logger == nil {
		logger = slog.Default()
	}

	return &Warnings{
		engine: engine,
		logger: logger,
	}
}

func (w *Warnings) Add(message string, args ...any) {
	w.logger.Warn(message, append([]any{"engine", w.engine}, args...)...)
	w.messages = append(w.messages, message)
}

func (w *Warnings) Messages() []string {
	return w.messages
}
