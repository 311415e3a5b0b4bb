package client

import (
	"net/http"
	"strings"
)

type RequestOption func(*RequestConfig)

type RequestConfig struct {
	URL   string
	Token string

	Client *http.Client
}

func WithURL(url string) RequestOption {
	return func(c *RequestConfig) {
		c.URL = strings.TrimRight(url, "/")
	}
}

func WithToken(token string) RequestOption {
	return func(c *RequestConfig) {
		c.Token = token
	}
}

func WithClient(client *http.Client) RequestOption {
	return func(c *RequestConfig) {
		c.Client = client
	}
}
