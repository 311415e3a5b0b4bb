package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrianliechti/tts-playground/config"
	"github.com/adrianliechti/tts-playground/pkg/runtime/runtimetest"

	"github.com/stretchr/testify/require"
)

func TestServer(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: "+filepath.Join(dir, "output")+"\n"), 0644))

	cfg, err := config.Parse(context.Background(), path, config.WithRuntime("local", &runtimetest.Runtime{}))
	require.NoError(t, err)

	s, err := New(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(s)
	defer ts.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "healthy", body["status"])
	})

	t.Run("cors", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/synthesize", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("shutdown", func(t *testing.T) {
		cfg.Address = "127.0.0.1:0"

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, s.ListenAndServe(ctx))
	})
}
