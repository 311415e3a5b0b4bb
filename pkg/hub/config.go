package hub

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

type Config struct {
	url   string
	token string

	cache string

	client *http.Client
	logger *slog.Logger
}

type Option func(*Config)

func WithURL(url string) Option {
	return func(c *Config) {
		c.url = url
	}
}

func WithToken(token string) Option {
	return func(c *Config) {
		c.token = token
	}
}

func WithCache(dir string) Option {
	return func(c *Config) {
		c.cache = dir
	}
}

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// DefaultCache follows the huggingface_hub cache location.
func DefaultCache() string {
	if dir := os.Getenv("HF_HUB_CACHE"); dir != "" {
		return dir
	}

	if dir := os.Getenv("HF_HOME"); dir != "" {
		return filepath.Join(dir, "hub")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "huggingface", "hub")
	}

	return filepath.Join(os.TempDir(), "huggingface", "hub")
}
