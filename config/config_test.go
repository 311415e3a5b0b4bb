package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/engine/kokoro"
	"github.com/adrianliechti/tts-playground/pkg/limiter"
	"github.com/adrianliechti/tts-playground/pkg/runtime/runtimetest"

	"github.com/stretchr/testify/require"
)

const testConfig = `
address: ":9000"
output: ${TTS_TEST_OUTPUT}

logging:
  file: ${TTS_TEST_LOGS}/server.log
  level: debug

runtimes:
  local:
    type: local
    command: tts-worker-that-does-not-exist

  hosted:
    type: openai
    url: http://localhost:8880/v1

engines:
  indri:
    runtime: hosted
    limit: 2

  kokoro-hindi:
    runtime: hosted
    voice: hf_beta

  xtts-hindi:
    runtime: local
    token: hf_test
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

func parseTestConfig(t *testing.T) *Config {
	t.Helper()

	dir := t.TempDir()

	t.Setenv("TTS_TEST_OUTPUT", filepath.Join(dir, "output"))
	t.Setenv("TTS_TEST_LOGS", filepath.Join(dir, "logs"))

	cfg, err := Parse(context.Background(), writeConfig(t, testConfig))
	require.NoError(t, err)

	t.Cleanup(func() { cfg.Close() })

	return cfg
}

func TestParse(t *testing.T) {
	cfg := parseTestConfig(t)

	require.Equal(t, ":9000", cfg.Address)
	require.Equal(t, "output", filepath.Base(cfg.Output.BaseDir))
	require.Equal(t, DefaultUploads, cfg.Uploads)

	available := map[string]bool{}
	reasons := map[string]string{}

	for _, info := range cfg.Registry.Entries() {
		available[info.Name] = info.Available
		reasons[info.Name] = info.Reason
	}

	require.Len(t, available, 6)

	require.True(t, available["indri"])
	require.True(t, available["kokoro"])

	require.False(t, available["xtts-hindi"])
	require.Contains(t, reasons["xtts-hindi"], "tts-worker-that-does-not-exist")

	require.False(t, available["indic-parler"])
	require.Equal(t, errNotConfigured.Error(), reasons["indic-parler"])
}

func TestEngine(t *testing.T) {
	cfg := parseTestConfig(t)

	t.Run("cached", func(t *testing.T) {
		a, err := cfg.Engine("kokoro-hindi")
		require.NoError(t, err)

		b, err := cfg.Engine("kokoro")
		require.NoError(t, err)

		require.Same(t, a, b)

		_, ok := engine.As[*kokoro.Engine](a)
		require.True(t, ok)
	})

	t.Run("limited", func(t *testing.T) {
		e, err := cfg.Engine("indri")
		require.NoError(t, err)

		_, ok := engine.As[limiter.Engine](e)
		require.True(t, ok)

		_, ok = engine.As[engine.SpeakerLister](e)
		require.True(t, ok)
	})

	t.Run("unavailable", func(t *testing.T) {
		_, err := cfg.Engine("f5_hindi")
		require.True(t, engine.IsInitialization(err))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := cfg.Engine("piper")
		require.True(t, engine.IsUnknownEngine(err))
		require.Contains(t, err.Error(), "kokoro-hindi")
	})

	initialized := cfg.Initialized()

	require.Contains(t, initialized, "kokoro")
	require.Contains(t, initialized, "indri")
	require.False(t, initialized["kokoro"])
}

func TestLogFile(t *testing.T) {
	cfg := parseTestConfig(t)

	cfg.Logger().Info("hello from test")
	require.NoError(t, cfg.Close())

	require.FileExists(t, filepath.Join(os.Getenv("TTS_TEST_LOGS"), "server.log"))
}

func TestParseErrors(t *testing.T) {
	t.Run("unknown field", func(t *testing.T) {
		_, err := Parse(context.Background(), writeConfig(t, "adress: \":8000\"\n"))
		require.Error(t, err)
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, err := Parse(context.Background(), writeConfig(t, "engines:\n  piper:\n    device: cpu\n"))
		require.Error(t, err)
	})

	t.Run("invalid runtime", func(t *testing.T) {
		cfg, err := Parse(context.Background(), writeConfig(t, "runtimes:\n  local:\n    type: grpc\n"))
		require.NoError(t, err)

		info, ok := cfg.Registry.Lookup("indri")
		require.True(t, ok)
		require.False(t, info.Available)
		require.Contains(t, info.Reason, "invalid runtime type")
	})

	t.Run("unknown engine field", func(t *testing.T) {
		_, err := Parse(context.Background(), writeConfig(t, "engines:\n  kokoro:\n    devcie: cpu\n"))
		require.ErrorContains(t, err, "devcie")
	})

	t.Run("engines not a mapping", func(t *testing.T) {
		_, err := Parse(context.Background(), writeConfig(t, "engines:\n  - kokoro\n"))
		require.Error(t, err)
	})

	t.Run("log level", func(t *testing.T) {
		_, err := Parse(context.Background(), writeConfig(t, "logging:\n  level: loud\n"))
		require.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	t.Setenv("PATH", "")

	cfg, err := Default(context.Background())
	require.NoError(t, err)

	require.Equal(t, DefaultAddress, cfg.Address)
	require.Len(t, cfg.Registry.Entries(), 6)
	require.Contains(t, cfg.Registry.Names(), "xtts_hindi")

	for _, info := range cfg.Registry.Entries() {
		require.False(t, info.Available, info.Name)
	}
}

func TestWithRuntime(t *testing.T) {
	rt := &runtimetest.Runtime{}

	cfg, err := Parse(context.Background(), writeConfig(t, "engines:\n  indri:\n    runtime: local\n"), WithRuntime("local", rt))
	require.NoError(t, err)

	info, ok := cfg.Registry.Lookup("indri")
	require.True(t, ok)
	require.True(t, info.Available)

	r, err := cfg.Runtime("local")
	require.NoError(t, err)
	require.Same(t, rt, r)

	require.Equal(t, int64(1), rt.Probes())
}

func TestEngineNames(t *testing.T) {
	rt := &runtimetest.Runtime{}

	cfg, err := Parse(context.Background(), writeConfig(t, "engines:\n  Kokoro:\n    runtime: local\n  \" XTTS_Hindi \":\n    runtime: local\n  indri:\n"), WithRuntime("local", rt))
	require.NoError(t, err)

	for _, name := range []string{"kokoro", "xtts-hindi", "indri"} {
		info, ok := cfg.Registry.Lookup(name)
		require.True(t, ok, name)
		require.True(t, info.Available, name)
	}

	info, ok := cfg.Registry.Lookup("f5-hindi")
	require.True(t, ok)
	require.False(t, info.Available)
}

func TestEngineRuntimeMissing(t *testing.T) {
	rt := &runtimetest.Runtime{}

	cfg, err := Parse(context.Background(), writeConfig(t, "engines:\n  kokoro:\n    runtime: local\n"), WithRuntime("local", rt))
	require.NoError(t, err)

	cfg.bindings["kokoro"].runtime = "gone"

	_, err = cfg.Engine("kokoro")
	require.True(t, engine.IsInitialization(err))
	require.ErrorContains(t, err, "runtime not found: gone")

	require.NotContains(t, cfg.Initialized(), "kokoro")
}
