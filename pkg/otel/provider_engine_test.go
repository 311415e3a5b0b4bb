package otel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adrianliechti/tts-playground/pkg/engine"

	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	initialized atomic.Bool
	calls       atomic.Int64

	err error
}

func (e *fakeEngine) Name() string                 { return "indri" }
func (e *fakeEngine) IsInitialized() bool          { return e.initialized.Load() }
func (e *fakeEngine) SupportedLanguages() []string { return []string{"en", "hi"} }

func (e *fakeEngine) Speakers() []engine.Speaker {
	return []engine.Speaker{{ID: "[spkr_68]"}}
}

func (e *fakeEngine) Initialize(ctx context.Context) error {
	e.initialized.Store(true)
	return nil
}

func (e *fakeEngine) Synthesize(ctx context.Context, text string, options *engine.SynthesizeOptions) (*engine.Result, error) {
	e.calls.Add(1)

	if e.err != nil {
		return nil, e.err
	}

	return &engine.Result{
		Content:  []byte("RIFF"),
		Duration: time.Second,
		Warnings: []string{"speaker_wav ignored"},
	}, nil
}

func TestEngine(t *testing.T) {
	inner := &fakeEngine{}
	e := NewEngine("local", inner)

	require.Equal(t, "indri", e.Name())
	require.Equal(t, []string{"en", "hi"}, e.SupportedLanguages())

	require.NoError(t, e.Initialize(context.Background()))
	require.True(t, e.IsInitialized())

	result, err := e.Synthesize(context.Background(), "hello", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"speaker_wav ignored"}, result.Warnings)
	require.Equal(t, int64(1), inner.calls.Load())

	lister, ok := engine.As[engine.SpeakerLister](e)
	require.True(t, ok)
	require.Len(t, lister.Speakers(), 1)

	_, ok = engine.As[engine.VoiceCloner](e)
	require.False(t, ok)
}

func TestEngineError(t *testing.T) {
	cause := &engine.SynthesisError{Engine: "indri", Err: errors.New("worker crashed")}

	e := NewEngine("local", &fakeEngine{err: cause})

	_, err := e.Synthesize(context.Background(), "hello", nil)
	require.ErrorIs(t, err, cause)
	require.True(t, engine.IsSynthesis(err))
}
