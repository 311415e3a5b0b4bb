package limiter

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adrianliechti/tts-playground/pkg/engine"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type countingEngine struct {
	calls atomic.Int64
}

func (e *countingEngine) Name() string                         { return "kokoro" }
func (e *countingEngine) Initialize(ctx context.Context) error { return nil }
func (e *countingEngine) IsInitialized() bool                  { return true }
func (e *countingEngine) SupportedLanguages() []string         { return []string{"hi"} }

func (e *countingEngine) Synthesize(ctx context.Context, text string, options *engine.SynthesizeOptions) (*engine.Result, error) {
	e.calls.Add(1)
	return &engine.Result{Content: []byte("RIFF")}, nil
}

func TestEngineUnlimited(t *testing.T) {
	inner := &countingEngine{}
	e := NewEngine(nil, inner)

	for range 5 {
		_, err := e.Synthesize(context.Background(), "hello", nil)
		require.NoError(t, err)
	}

	require.Equal(t, int64(5), inner.calls.Load())
	require.Equal(t, inner, e.Unwrap())
}

func TestEngineLimited(t *testing.T) {
	inner := &countingEngine{}
	e := NewEngine(rate.NewLimiter(rate.Every(time.Hour), 1), inner)

	_, err := e.Synthesize(context.Background(), "first", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = e.Synthesize(ctx, "second", nil)
	require.Error(t, err)

	require.Equal(t, int64(1), inner.calls.Load())
}
