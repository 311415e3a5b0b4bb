package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/adrianliechti/tts-playground/server/api"
)

type Info = api.IndexResponse
type Health = api.HealthResponse

type StatusService struct {
	Options []RequestOption
}

func NewStatusService(opts ...RequestOption) StatusService {
	return StatusService{
		Options: opts,
	}
}

func (r *StatusService) Info(ctx context.Context, opts ...RequestOption) (*Info, error) {
	var result Info

	if err := getJSON(ctx, "/", &result, append(r.Options, opts...)...); err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *StatusService) Health(ctx context.Context, opts ...RequestOption) (*Health, error) {
	var result Health

	if err := getJSON(ctx, "/health", &result, append(r.Options, opts...)...); err != nil {
		return nil, err
	}

	return &result, nil
}

func getJSON(ctx context.Context, path string, v any, opts ...RequestOption) error {
	c := newRequestConfig(opts...)

	req, _ := http.NewRequestWithContext(ctx, "GET", c.URL+path, nil)
	c.authorize(req)

	resp, err := c.Client.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
