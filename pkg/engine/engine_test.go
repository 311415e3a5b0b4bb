package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/adrianliechti/tts-playground/pkg/audio"
	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/output"

	"github.com/stretchr/testify/require"
)

// fakeEngine counts initializations and fails on configured texts.
type fakeEngine struct {
	lifecycle engine.Lifecycle

	loads   atomic.Int64
	loadErr error

	failOn string
}

func (e *fakeEngine) Name() string {
	return "fake"
}

func (e *fakeEngine) Initialize(ctx context.Context) error {
	return e.lifecycle.Do(ctx, e.Name(), func(ctx context.Context) error {
		e.loads.Add(1)
		return e.loadErr
	})
}

func (e *fakeEngine) IsInitialized() bool {
	return e.lifecycle.Initialized()
}

func (e *fakeEngine) SupportedLanguages() []string {
	return []string{"hi"}
}

func (e *fakeEngine) Synthesize(ctx context.Context, text string, options *engine.SynthesizeOptions) (*engine.Result, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	if e.failOn != "" && text == e.failOn {
		return nil, engine.Synthesis(e.Name(), errors.New("CUDA out of memory"))
	}

	buf := &audio.Buffer{
		Samples:    []float32{0.1, 0.2, 0.3, 0.4},
		SampleRate: 16000,
		Channels:   1,
	}

	return engine.Write(output.Policy{}, e.Name(), buf, options)
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("initializes once", func(t *testing.T) {
		e := &fakeEngine{}

		require.False(t, e.IsInitialized())

		_, err := e.Synthesize(ctx, "one", nil)
		require.NoError(t, err)

		_, err = e.Synthesize(ctx, "two", nil)
		require.NoError(t, err)

		require.NoError(t, e.Initialize(ctx))

		require.True(t, e.IsInitialized())
		require.EqualValues(t, 1, e.loads.Load())
	})

	t.Run("concurrent initialize", func(t *testing.T) {
		e := &fakeEngine{}

		var wg sync.WaitGroup

		for range 8 {
			wg.Add(1)

			go func() {
				defer wg.Done()
				e.Initialize(ctx)
			}()
		}

		wg.Wait()

		require.EqualValues(t, 1, e.loads.Load())
	})

	t.Run("failure can be retried", func(t *testing.T) {
		e := &fakeEngine{loadErr: errors.New("network unreachable")}

		err := e.Initialize(ctx)
		require.Error(t, err)
		require.True(t, engine.IsInitialization(err))
		require.Contains(t, err.Error(), "network unreachable")
		require.False(t, e.IsInitialized())

		e.loadErr = nil

		require.NoError(t, e.Initialize(ctx))
		require.True(t, e.IsInitialized())
		require.EqualValues(t, 2, e.loads.Load())
	})

	t.Run("configuration errors keep their type", func(t *testing.T) {
		e := &fakeEngine{loadErr: engine.NewConfigurationError("fake", "token required")}

		err := e.Initialize(ctx)
		require.True(t, engine.IsConfiguration(err))
		require.False(t, engine.IsInitialization(err))
	})
}

func TestUse(t *testing.T) {
	e := &fakeEngine{}

	err := engine.Use(context.Background(), e, func(e engine.Engine) error {
		require.True(t, e.IsInitialized())
		return nil
	})

	require.NoError(t, err)
	require.True(t, e.IsInitialized())

	failing := &fakeEngine{loadErr: errors.New("boom")}

	called := false

	err = engine.Use(context.Background(), failing, func(engine.Engine) error {
		called = true
		return nil
	})

	require.Error(t, err)
	require.False(t, called)
}

func TestSynthesizeBatch(t *testing.T) {
	t.Chdir(t.TempDir())

	ctx := context.Background()

	t.Run("numbered files in order", func(t *testing.T) {
		dir := filepath.Join("batch", "ok")

		paths, err := engine.SynthesizeBatch(ctx, &fakeEngine{}, []string{"a", "b", "c"}, dir, nil)
		require.NoError(t, err)

		require.Equal(t, []string{
			filepath.Join(dir, "output_0001.wav"),
			filepath.Join(dir, "output_0002.wav"),
			filepath.Join(dir, "output_0003.wav"),
		}, paths)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		require.NoDirExists(t, output.DefaultDir)
	})

	t.Run("failure aborts without rollback", func(t *testing.T) {
		dir := filepath.Join("batch", "fail")

		_, err := engine.SynthesizeBatch(ctx, &fakeEngine{failOn: "b"}, []string{"a", "b", "c"}, dir, nil)
		require.Error(t, err)
		require.True(t, engine.IsSynthesis(err))

		require.FileExists(t, filepath.Join(dir, "output_0001.wav"))
		require.NoFileExists(t, filepath.Join(dir, "output_0002.wav"))
		require.NoFileExists(t, filepath.Join(dir, "output_0003.wav"))
	})
}

func TestErrors(t *testing.T) {
	err := &engine.UnknownEngineError{Name: "UNKNOWN", Available: []string{"indri", "kokoro", "kokoro-hindi"}}

	require.True(t, engine.IsUnknownEngine(err))
	require.True(t, strings.HasSuffix(err.Error(), "indri, kokoro, kokoro-hindi"))

	wrapped := engine.Synthesis("indri", errors.New("tensor size mismatch"))
	require.True(t, engine.IsSynthesis(wrapped))
	require.Contains(t, wrapped.Error(), "tensor size mismatch")

	config := engine.NewConfigurationError("f5-hindi", "reference audio required")
	require.Same(t, config, engine.Synthesis("f5-hindi", config))

	require.Nil(t, engine.Synthesis("indri", nil))
}
