package replicate

import (
	"context"
	"os"
	"path/filepath"

	"github.com/adrianliechti/tts-playground/pkg/runtime"

	"github.com/replicate/replicate-go"
)

type Client struct {
	*Config
	client *replicate.Client
}

type PredictionInput = replicate.PredictionInput
type PredictionOutput = replicate.PredictionOutput

type File = replicate.File
type FileOutput = replicate.FileOutput

func NewClient(options ...Option) (*Client, error) {
	cfg := &Config{}

	for _, option := range options {
		option(cfg)
	}

	client, err := replicate.NewClient(cfg.Options()...)

	if err != nil {
		return nil, err
	}

	return &Client{
		Config: cfg,
		client: client,
	}, nil
}

func (c *Client) Run(ctx context.Context, model string, input PredictionInput) (PredictionOutput, error) {
	return c.client.RunWithOptions(ctx, model, input, nil, replicate.WithBlockUntilDone(), replicate.WithFileOutput())
}

func (c *Client) UploadFile(ctx context.Context, file runtime.File) (*File, error) {
	return c.client.CreateFileFromBytes(ctx, file.Content, &replicate.CreateFileOptions{
		Filename:    file.Name,
		ContentType: file.ContentType,
	})
}

func (c *Client) UploadLocalFile(ctx context.Context, path string) (*File, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	return c.UploadFile(ctx, runtime.File{
		Name: filepath.Base(path),

		Content:     data,
		ContentType: contentType(path),
	})
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.client.DeleteFile(ctx, fileID)
}

func contentType(path string) string {
	switch filepath.Ext(path) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	}

	return "application/octet-stream"
}
