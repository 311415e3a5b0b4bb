package parler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/runtime/runtimetest"

	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, rt *runtimetest.Runtime) *Engine {
	t.Helper()

	e, err := New(engine.Config{
		Token:     "hf_test",
		Runtime:   rt,
		OutputDir: filepath.Join(t.TempDir(), "output"),
	})

	require.NoError(t, err)
	return e
}

func TestSupportedLanguages(t *testing.T) {
	e := newEngine(t, &runtimetest.Runtime{})

	languages := e.SupportedLanguages()

	require.Len(t, languages, 22)
	require.Contains(t, languages, "hi")
	require.Contains(t, languages, "sat")
}

func TestSynthesizeDescription(t *testing.T) {
	rt := &runtimetest.Runtime{
		Config: map[string]any{"sampling_rate": 44100.0},
		Output: runtimetest.Tone(441),
	}

	e := newEngine(t, rt)

	t.Run("default", func(t *testing.T) {
		result, err := e.Synthesize(context.Background(), "नमस्ते", nil)
		require.NoError(t, err)

		require.Equal(t, 44100, result.SampleRate)
		require.Equal(t, DefaultDescription, rt.LastInput()["description"])
		require.Equal(t, "नमस्ते", rt.LastInput()["prompt"])
	})

	t.Run("preset", func(t *testing.T) {
		_, err := e.Synthesize(context.Background(), "hello", &engine.SynthesizeOptions{
			Description: "male_expressive",
		})

		require.NoError(t, err)
		require.Equal(t, descriptions["male_expressive"], rt.LastInput()["description"])
	})

	t.Run("free text", func(t *testing.T) {
		_, err := e.Synthesize(context.Background(), "hello", &engine.SynthesizeOptions{
			Description: "An old man whispering.",
			Language:    "ta",
		})

		require.NoError(t, err)
		require.Equal(t, "An old man whispering.", rt.LastInput()["description"])
		require.Equal(t, "ta", rt.LastInput()["language"])
	})

	require.Equal(t, int64(1), rt.Loads())
	require.Equal(t, "hf_test", rt.LastModel().Options["token"])
}

func TestNormalize(t *testing.T) {
	rt := &runtimetest.Runtime{
		Output: map[string]any{"audio": []any{runtimetest.Tone(100)}, "sampling_rate": 16000.0},
	}

	e := newEngine(t, rt)

	result, err := e.Synthesize(context.Background(), "hello", nil)
	require.NoError(t, err)

	require.Equal(t, 16000, result.SampleRate)
	require.Equal(t, 1, result.Channels)
}

func TestNormalizeDefaultRate(t *testing.T) {
	rt := &runtimetest.Runtime{Output: runtimetest.Tone(100)}
	e := newEngine(t, rt)

	result, err := e.Synthesize(context.Background(), "hello", nil)
	require.NoError(t, err)
	require.Equal(t, DefaultSampleRate, result.SampleRate)
}
