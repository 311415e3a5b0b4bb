package replicate

import (
	"context"
	"errors"
	"io"
	"maps"

	"github.com/adrianliechti/tts-playground/pkg/runtime"
)

var _ runtime.Runtime = (*Runtime)(nil)

// Runtime runs engines as hosted predictions.
type Runtime struct {
	*Client
}

func New(options ...Option) (*Runtime, error) {
	client, err := NewClient(options...)

	if err != nil {
		return nil, err
	}

	return &Runtime{
		Client: client,
	}, nil
}

func (r *Runtime) Probe(ctx context.Context, engine string) error {
	if r.token == "" {
		return errors.New("replicate token required")
	}

	if len(r.models) > 0 {
		if _, ok := r.models[engine]; !ok {
			return errors.New("no hosted model configured for " + engine)
		}
	}

	return nil
}

func (r *Runtime) Load(ctx context.Context, model runtime.Model) (*runtime.Handle, error) {
	identifier := model.Name

	if id, ok := r.models[model.Engine]; ok {
		identifier = id
	}

	if identifier == "" {
		return nil, errors.New("no hosted model configured for " + model.Engine)
	}

	return &runtime.Handle{
		ID:    identifier,
		Model: model,
	}, nil
}

func (r *Runtime) Run(ctx context.Context, handle *runtime.Handle, input runtime.Input) (runtime.Output, error) {
	if handle == nil {
		return nil, errors.New("model not loaded")
	}

	prediction := make(PredictionInput, len(input))
	maps.Copy(prediction, input)

	var uploads []string

	defer func() {
		for _, id := range uploads {
			r.DeleteFile(context.Background(), id)
		}
	}()

	for key, val := range input {
		switch v := val.(type) {
		case runtime.LocalFile:
			file, err := r.UploadLocalFile(ctx, string(v))

			if err != nil {
				return nil, err
			}

			uploads = append(uploads, file.ID)
			prediction[key] = file.URLs["get"]

		case []runtime.LocalFile:
			var urls []string

			for _, path := range v {
				file, err := r.UploadLocalFile(ctx, string(path))

				if err != nil {
					return nil, err
				}

				uploads = append(uploads, file.ID)
				urls = append(urls, file.URLs["get"])
			}

			prediction[key] = urls
		}
	}

	output, err := r.Client.Run(ctx, handle.ID, prediction)

	if err != nil {
		return nil, err
	}

	return convertOutput(output)
}

func convertOutput(v any) (any, error) {
	switch val := v.(type) {
	case *FileOutput:
		defer val.Close()

		data, err := io.ReadAll(val)

		if err != nil {
			return nil, err
		}

		return &runtime.File{
			Name: val.URL,

			Content: data,
		}, nil

	case []any:
		result := make([]any, len(val))

		for i, item := range val {
			out, err := convertOutput(item)

			if err != nil {
				return nil, err
			}

			result[i] = out
		}

		return result, nil

	case map[string]any:
		result := make(map[string]any, len(val))

		for k, item := range val {
			out, err := convertOutput(item)

			if err != nil {
				return nil, err
			}

			result[k] = out
		}

		return result, nil
	}

	return v, nil
}
