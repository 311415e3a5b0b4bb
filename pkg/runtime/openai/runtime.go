package openai

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/adrianliechti/tts-playground/pkg/runtime"

	"github.com/openai/openai-go/v3"
)

var _ runtime.Runtime = (*Runtime)(nil)

// Runtime synthesizes through an OpenAI compatible /audio/speech endpoint.
type Runtime struct {
	*Config
	speech openai.AudioSpeechService
}

func New(url string, options ...Option) (*Runtime, error) {
	cfg := &Config{
		url: url,
	}

	for _, option := range options {
		option(cfg)
	}

	return &Runtime{
		Config: cfg,
		speech: openai.NewAudioSpeechService(cfg.Options()...),
	}, nil
}

func (r *Runtime) Probe(ctx context.Context, engine string) error {
	if r.url == "" {
		return errors.New("speech server url required")
	}

	return nil
}

func (r *Runtime) Load(ctx context.Context, model runtime.Model) (*runtime.Handle, error) {
	id := model.Name

	if r.model != "" {
		id = r.model
	}

	return &runtime.Handle{
		ID:    id,
		Model: model,
	}, nil
}

func (r *Runtime) Run(ctx context.Context, handle *runtime.Handle, input runtime.Input) (runtime.Output, error) {
	if handle == nil {
		return nil, errors.New("model not loaded")
	}

	for key, val := range input {
		switch val.(type) {
		case runtime.LocalFile, []runtime.LocalFile:
			return nil, errors.New("speech server does not accept reference audio (" + key + "): " + runtime.ErrUnsupported.Error())
		}
	}

	text, _ := input["text"].(string)

	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text required")
	}

	params := openai.AudioSpeechNewParams{
		Model: handle.ID,
		Input: text,

		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	}

	if voice, ok := input["voice"].(string); ok && voice != "" {
		params.Voice = openai.AudioSpeechNewParamsVoice(voice)
	}

	if speed, ok := runtime.Number(input["speed"]); ok {
		params.Speed = openai.Float(speed)
	}

	if instructions, ok := input["instructions"].(string); ok && instructions != "" {
		params.Instructions = openai.String(instructions)
	}

	resp, err := r.speech.New(ctx, params)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")

	if contentType == "" {
		contentType = "audio/wav"
	}

	return &runtime.File{
		Content:     data,
		ContentType: contentType,
	}, nil
}
