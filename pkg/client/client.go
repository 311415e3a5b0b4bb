package client

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adrianliechti/tts-playground/server/api"
)

type Client struct {
	Status StatusService
	Models ModelService

	Syntheses SynthesisService
	Outputs   OutputService
}

func New(url string, opts ...RequestOption) *Client {
	opts = append(opts, WithURL(url))

	return &Client{
		Status: NewStatusService(opts...),
		Models: NewModelService(opts...),

		Syntheses: NewSynthesisService(opts...),
		Outputs:   NewOutputService(opts...),
	}
}

func newRequestConfig(opts ...RequestOption) *RequestConfig {
	c := &RequestConfig{
		Client: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *RequestConfig) authorize(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

// responseError prefers the detail message of an error response over the status line.
func responseError(resp *http.Response) error {
	var body api.ErrorResponse

	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
		return &Error{StatusCode: resp.StatusCode, Message: body.Detail}
	}

	return &Error{StatusCode: resp.StatusCode, Message: resp.Status}
}

type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status of a failed request, or 0.
func StatusCode(err error) int {
	var target *Error

	if errors.As(err, &target) {
		return target.StatusCode
	}

	return 0
}

func Ptr[T any](v T) *T {
	return &v
}
