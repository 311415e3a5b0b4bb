package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adrianliechti/tts-playground/pkg/runtime"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/speech", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "audio/wav")
		w.Write([]byte("RIFF...."))
	}))

	defer server.Close()

	r, err := New(server.URL+"/v1", WithModel("kokoro"))
	require.NoError(t, err)

	ctx := context.Background()

	handle, err := r.Load(ctx, runtime.Model{Engine: "kokoro", Name: "hexgrad/Kokoro-82M"})
	require.NoError(t, err)

	output, err := r.Run(ctx, handle, runtime.Input{
		"text":  "नमस्ते",
		"voice": "hf_alpha",
		"speed": 1.25,
	})

	require.NoError(t, err)

	file, ok := output.(*runtime.File)
	require.True(t, ok)
	require.Equal(t, "audio/wav", file.ContentType)
	require.Equal(t, []byte("RIFF...."), file.Content)

	require.Equal(t, "kokoro", received["model"])
	require.Equal(t, "hf_alpha", received["voice"])
	require.Equal(t, "wav", received["response_format"])
	require.Equal(t, 1.25, received["speed"])
}

func TestRunRejectsReferenceAudio(t *testing.T) {
	r, err := New("http://localhost:1/v1")
	require.NoError(t, err)

	handle, _ := r.Load(context.Background(), runtime.Model{Engine: "kokoro", Name: "kokoro"})

	_, err = r.Run(context.Background(), handle, runtime.Input{
		"text":        "hello",
		"speaker_wav": runtime.LocalFile("ref.wav"),
	})

	require.ErrorContains(t, err, "reference audio")
}
