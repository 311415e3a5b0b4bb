package runtime

import (
	"context"
	"errors"
)

// Runtime executes model inference outside of the Go process.
type Runtime interface {
	// Probe reports whether the runtime can serve the given engine kind.
	Probe(ctx context.Context, engine string) error

	Load(ctx context.Context, model Model) (*Handle, error)
	Run(ctx context.Context, handle *Handle, input Input) (Output, error)
}

type Model struct {
	Engine string

	Name   string
	Device string

	Options map[string]any
}

// Handle references a loaded model. Config carries metadata the runtime reports
// about the loaded checkpoint, such as its sampling rate.
type Handle struct {
	ID    string
	Model Model

	Config map[string]any
}

// Input is a backend call. Values are JSON compatible, except LocalFile which
// references a file on this host that the runtime makes reachable to the backend.
type Input map[string]any

type LocalFile string

// Output is the backend native result: numbers, []any, map[string]any, string or *File.
type Output = any

type File struct {
	Name string

	Content     []byte
	ContentType string
}

var ErrUnsupported = errors.New("operation not supported by runtime")

// ConfigValue reads a typed value reported by Load.
func ConfigValue[T any](h *Handle, key string) (T, bool) {
	var zero T

	if h == nil || h.Config == nil {
		return zero, false
	}

	v, ok := h.Config[key].(T)
	return v, ok
}
