package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/adrianliechti/tts-playground/server/api"
)

type SynthesisService struct {
	Options []RequestOption
}

func NewSynthesisService(opts ...RequestOption) SynthesisService {
	return SynthesisService{
		Options: opts,
	}
}

type Synthesis = api.SynthesizeResponse
type SynthesizeRequest = api.SynthesizeRequest

type CloneRequest struct {
	Model string
	Text  string

	OutputFilename      string
	UseDefaultOutputDir *bool

	Language string
	RefText  string

	Name   string
	Reader io.Reader
}

func (r *SynthesisService) New(ctx context.Context, input SynthesizeRequest, opts ...RequestOption) (*Synthesis, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	var body bytes.Buffer

	if err := json.NewEncoder(&body).Encode(input); err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", c.URL+"/synthesize", &body)
	req.Header.Set("Content-Type", "application/json")

	c.authorize(req)

	return doSynthesis(c, req)
}

// Clone uploads a reference recording and synthesizes text in that voice.
func (r *SynthesisService) Clone(ctx context.Context, input CloneRequest, opts ...RequestOption) (*Synthesis, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fields := map[string]string{
		"text":            input.Text,
		"model":           input.Model,
		"output_filename": input.OutputFilename,
		"language":        input.Language,
		"ref_text":        input.RefText,
	}

	if input.UseDefaultOutputDir != nil {
		fields["use_default_output_dir"] = strconv.FormatBool(*input.UseDefaultOutputDir)
	}

	for key, val := range fields {
		if val == "" {
			continue
		}

		if err := w.WriteField(key, val); err != nil {
			return nil, err
		}
	}

	name := input.Name

	if name == "" {
		name = "voice.wav"
	}

	part, err := w.CreateFormFile("voice_file", name)

	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(part, input.Reader); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", c.URL+"/synthesize-with-voice", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	c.authorize(req)

	return doSynthesis(c, req)
}

func doSynthesis(c *RequestConfig, req *http.Request) (*Synthesis, error) {
	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var result Synthesis

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
