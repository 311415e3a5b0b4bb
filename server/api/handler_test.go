package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrianliechti/tts-playground/config"
	"github.com/adrianliechti/tts-playground/pkg/runtime/runtimetest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const testConfig = `
output: ${TTS_TEST_DIR}/output
uploads: ${TTS_TEST_DIR}/uploads
voices: ${TTS_TEST_DIR}/voices

engines:
  indri:
    runtime: fake
  kokoro:
    runtime: fake
  vibevoice-hindi:
    runtime: fake
    device: cpu
`

type testServer struct {
	*httptest.Server

	dir     string
	runtime *runtimetest.Runtime
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("TTS_TEST_DIR", dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0644))

	rt := &runtimetest.Runtime{
		Output: []any{runtimetest.Tone(2400)},
	}

	cfg, err := config.Parse(context.Background(), path, config.WithRuntime("fake", rt))
	require.NoError(t, err)

	t.Cleanup(func() { cfg.Close() })

	h, err := New(cfg)
	require.NoError(t, err)

	r := chi.NewRouter()
	h.Attach(r)

	s := httptest.NewServer(r)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,

		dir:     dir,
		runtime: rt,
	}
}

func (s *testServer) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(s.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)

	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	return v
}

func TestIndexAndHealth(t *testing.T) {
	s := newTestServer(t)

	resp, err := http.Get(s.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	index := decode[IndexResponse](t, resp)
	require.Equal(t, Name, index.Name)
	require.Contains(t, index.Engines, "xtts-hindi")
	require.Contains(t, index.Engines, "kokoro-hindi")
	require.Contains(t, index.Endpoints, "synthesize")

	resp, err = http.Get(s.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	health := decode[HealthResponse](t, resp)
	require.Equal(t, "healthy", health.Status)
	require.Empty(t, health.EnginesInitialized)
}

func TestModels(t *testing.T) {
	s := newTestServer(t)

	s.postJSON(t, "/synthesize", SynthesizeRequest{Text: "hello", Model: "kokoro"})

	resp, err := http.Get(s.URL + "/models")
	require.NoError(t, err)
	defer resp.Body.Close()

	list := decode[ModelList](t, resp)
	require.Len(t, list.Models, 6)

	models := map[string]Model{}

	for _, m := range list.Models {
		models[m.Name] = m
	}

	require.True(t, models["indri"].Available)
	require.True(t, models["kokoro"].Available)
	require.True(t, models["kokoro"].Initialized)
	require.False(t, models["indri"].Initialized)

	require.False(t, models["xtts-hindi"].Available)
	require.NotEmpty(t, models["xtts-hindi"].Reason)
	require.Contains(t, models["xtts-hindi"].Aliases, "xtts_hindi")
}

func TestSpeakers(t *testing.T) {
	s := newTestServer(t)

	t.Run("default model", func(t *testing.T) {
		resp, err := http.Get(s.URL + "/speakers")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		list := decode[SpeakerList](t, resp)
		require.Equal(t, "indri", list.Model)
		require.Equal(t, 13, list.Total)
		require.Len(t, list.Speakers, 13)
	})

	t.Run("kokoro", func(t *testing.T) {
		resp, err := http.Get(s.URL + "/speakers?model=kokoro")
		require.NoError(t, err)
		defer resp.Body.Close()

		list := decode[SpeakerList](t, resp)
		require.Equal(t, "kokoro", list.Model)
		require.NotZero(t, list.Total)
	})

	t.Run("unavailable", func(t *testing.T) {
		resp, err := http.Get(s.URL + "/speakers?model=indic-parler")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("unknown", func(t *testing.T) {
		resp, err := http.Get(s.URL + "/speakers?model=piper")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		e := decode[ErrorResponse](t, resp)
		require.Contains(t, e.Detail, "available engines")
	})
}

func TestSynthesize(t *testing.T) {
	s := newTestServer(t)

	t.Run("default filename", func(t *testing.T) {
		resp := s.postJSON(t, "/synthesize", SynthesizeRequest{Text: "Hello, world! नमस्ते"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := decode[SynthesizeResponse](t, resp)
		require.True(t, result.Success)
		require.Equal(t, "indri", result.ModelUsed)
		require.Equal(t, filepath.Join(s.dir, "output", "indri", "Hello_world_नमस्ते.wav"), result.OutputPath)
		require.Positive(t, result.FileSize)
		require.Empty(t, result.Warnings)

		require.FileExists(t, result.OutputPath)
	})

	t.Run("speaker wav warning", func(t *testing.T) {
		resp := s.postJSON(t, "/synthesize", SynthesizeRequest{
			Text:           "hello",
			OutputFilename: "warned.wav",
			SpeakerWAV:     "/does/not/matter.wav",
		})

		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := decode[SynthesizeResponse](t, resp)
		require.Len(t, result.Warnings, 1)
	})

	t.Run("alias", func(t *testing.T) {
		resp := s.postJSON(t, "/synthesize", SynthesizeRequest{
			Text:           "hello",
			Model:          "kokoro-hindi",
			OutputFilename: "alias.wav",
		})

		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := decode[SynthesizeResponse](t, resp)
		require.Equal(t, "kokoro", result.ModelUsed)
		require.Equal(t, filepath.Join(s.dir, "output", "kokoro", "alias.wav"), result.OutputPath)
	})

	t.Run("empty text", func(t *testing.T) {
		resp := s.postJSON(t, "/synthesize", SynthesizeRequest{Text: "  "})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown model", func(t *testing.T) {
		resp := s.postJSON(t, "/synthesize", SynthesizeRequest{Text: "hello", Model: "piper"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unavailable model", func(t *testing.T) {
		resp := s.postJSON(t, "/synthesize", SynthesizeRequest{Text: "hello", Model: "f5-hindi"})
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestSynthesizeError(t *testing.T) {
	s := newTestServer(t)
	s.runtime.Output = map[string]any{"unexpected": true}

	resp := s.postJSON(t, "/synthesize", SynthesizeRequest{Text: "hello"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func postVoice(t *testing.T, s *testServer, fields map[string]string, voice []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	if voice != nil {
		part, err := w.CreateFormFile("voice_file", "sample.wav")
		require.NoError(t, err)

		part.Write(voice)
	}

	require.NoError(t, w.Close())

	resp, err := http.Post(s.URL+"/synthesize-with-voice", w.FormDataContentType(), &body)
	require.NoError(t, err)

	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestSynthesizeWithVoice(t *testing.T) {
	s := newTestServer(t)

	t.Run("cloned", func(t *testing.T) {
		resp := postVoice(t, s, map[string]string{
			"text":  "Hello there",
			"model": "vibevoice-hindi",
		}, []byte("RIFF"))

		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := decode[SynthesizeResponse](t, resp)
		require.Equal(t, "vibevoice-hindi", result.ModelUsed)
		require.Equal(t, filepath.Join(s.dir, "output", "vibevoice-hindi", "Hello_there_cloned.wav"), result.OutputPath)

		samples, ok := s.runtime.LastInput()["voice_samples"]
		require.True(t, ok)
		require.Len(t, samples, 1)

		staged, err := filepath.Glob(filepath.Join(s.dir, "uploads", "*"))
		require.NoError(t, err)
		require.Empty(t, staged)
	})

	t.Run("no voice cloning", func(t *testing.T) {
		resp := postVoice(t, s, map[string]string{
			"text":  "hello",
			"model": "indri",
		}, []byte("RIFF"))

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		resp := postVoice(t, s, map[string]string{
			"text":  "hello",
			"model": "vibevoice-hindi",
		}, nil)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unavailable default", func(t *testing.T) {
		resp := postVoice(t, s, map[string]string{
			"text": "hello",
		}, []byte("RIFF"))

		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestDownloadAndCleanup(t *testing.T) {
	s := newTestServer(t)

	resp := s.postJSON(t, "/synthesize", SynthesizeRequest{Text: "hello", OutputFilename: "hello.wav"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("download", func(t *testing.T) {
		resp, err := http.Get(s.URL + "/download/indri/hello.wav")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "audio/wav", resp.Header.Get("Content-Type"))

		var data bytes.Buffer
		data.ReadFrom(resp.Body)
		require.Equal(t, "RIFF", data.String()[:4])
	})

	t.Run("missing", func(t *testing.T) {
		resp, err := http.Get(s.URL + "/download/indri/missing.wav")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("hidden", func(t *testing.T) {
		resp, err := http.Get(s.URL + "/download/indri/..hidden.wav")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("cleanup unknown", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, s.URL+"/cleanup/piper", nil)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("cleanup", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, s.URL+"/cleanup/all", nil)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		result := decode[CleanupResponse](t, resp)
		require.True(t, result.Success)
		require.Equal(t, "Deleted 1 files", result.Message)
		require.Len(t, result.ModelsCleaned, 6)

		require.NoFileExists(t, filepath.Join(s.dir, "output", "indri", "hello.wav"))
	})
}

func TestDefaultFilename(t *testing.T) {
	tests := []struct {
		text   string
		suffix string
		want   string
	}{
		{"hello world", ".wav", "hello_world.wav"},
		{"a/b\\c", ".wav", "abc.wav"},
		{"!!!", "_cloned.wav", "output_cloned.wav"},
		{"abcdefghijklmnopqrstuvwxyz0123456789", ".wav", "abcdefghijklmnopqrstuvwxyz0123.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			require.Equal(t, tt.want, defaultFilename(tt.text, tt.suffix))
		})
	}
}
