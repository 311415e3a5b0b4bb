package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/adrianliechti/tts-playground/server/api"
)

type OutputService struct {
	Options []RequestOption
}

func NewOutputService(opts ...RequestOption) OutputService {
	return OutputService{
		Options: opts,
	}
}

type Cleanup = api.CleanupResponse

// Download streams a synthesized file to w.
func (r *OutputService) Download(ctx context.Context, model, filename string, w io.Writer, opts ...RequestOption) error {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, _ := http.NewRequestWithContext(ctx, "GET", c.URL+"/download/"+url.PathEscape(model)+"/"+url.PathEscape(filename), nil)
	c.authorize(req)

	resp, err := c.Client.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	_, err = io.Copy(w, resp.Body)
	return err
}

// Cleanup deletes the files of one model, or of every model for "all".
func (r *OutputService) Cleanup(ctx context.Context, model string, opts ...RequestOption) (*Cleanup, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, _ := http.NewRequestWithContext(ctx, "DELETE", c.URL+"/cleanup/"+url.PathEscape(model), nil)
	c.authorize(req)

	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var result Cleanup

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
