package client

import (
	"context"
	"net/url"

	"github.com/adrianliechti/tts-playground/server/api"
)

type ModelService struct {
	Options []RequestOption
}

func NewModelService(opts ...RequestOption) ModelService {
	return ModelService{
		Options: opts,
	}
}

type Model = api.Model
type Speaker = api.Speaker

func (r *ModelService) List(ctx context.Context, opts ...RequestOption) ([]Model, error) {
	var result api.ModelList

	if err := getJSON(ctx, "/models", &result, append(r.Options, opts...)...); err != nil {
		return nil, err
	}

	return result.Models, nil
}

// Speakers lists the speaker catalog of a model. An empty model selects the server default.
func (r *ModelService) Speakers(ctx context.Context, model string, opts ...RequestOption) ([]Speaker, error) {
	path := "/speakers"

	if model != "" {
		path += "?model=" + url.QueryEscape(model)
	}

	var result api.SpeakerList

	if err := getJSON(ctx, path, &result, append(r.Options, opts...)...); err != nil {
		return nil, err
	}

	return result.Speakers, nil
}
