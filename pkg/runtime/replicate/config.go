package replicate

import (
	"net/http"

	"github.com/replicate/replicate-go"
)

type Config struct {
	url   string
	token string

	client *http.Client

	models map[string]string
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

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

// WithModel maps an engine kind to a hosted model identifier ("owner/name" or "owner/name:version").
func WithModel(engine, identifier string) Option {
	return func(c *Config) {
		if c.models == nil {
			c.models = make(map[string]string)
		}

		c.models[engine] = identifier
	}
}

func (c *Config) Options() []replicate.ClientOption {
	options := []replicate.ClientOption{
		replicate.WithToken(c.token),
	}

	if c.url != "" {
		options = append(options, replicate.WithBaseURL(c.url))
	}

	if c.client != nil {
		options = append(options, replicate.WithHTTPClient(c.client))
	}

	return options
}
