// Package runtimetest provides an in-memory runtime for engine tests.
package runtimetest

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/adrianliechti/tts-playground/pkg/runtime"
)

var _ runtime.Runtime = (*Runtime)(nil)

// Runtime records every call and answers with fixed values or RunFunc.
type Runtime struct {
	ProbeErr error
	LoadErr  error
	RunErr   error

	// Config is reported on the handle returned by Load.
	Config map[string]any

	Output  runtime.Output
	RunFunc func(input runtime.Input) (runtime.Output, error)

	probes atomic.Int64
	loads  atomic.Int64
	runs   atomic.Int64

	mu     sync.Mutex
	models []runtime.Model
	inputs []runtime.Input
}

func (r *Runtime) Probe(ctx context.Context, engine string) error {
	r.probes.Add(1)
	return r.ProbeErr
}

func (r *Runtime) Load(ctx context.Context, model runtime.Model) (*runtime.Handle, error) {
	r.loads.Add(1)

	r.mu.Lock()
	r.models = append(r.models, model)
	r.mu.Unlock()

	if r.LoadErr != nil {
		return nil, r.LoadErr
	}

	return &runtime.Handle{
		ID:     model.Engine + "/" + model.Name,
		Model:  model,
		Config: r.Config,
	}, nil
}

func (r *Runtime) Run(ctx context.Context, handle *runtime.Handle, input runtime.Input) (runtime.Output, error) {
	r.runs.Add(1)

	r.mu.Lock()
	r.inputs = append(r.inputs, input)
	r.mu.Unlock()

	if handle == nil {
		return nil, errors.New("model not loaded")
	}

	if r.RunErr != nil {
		return nil, r.RunErr
	}

	if r.RunFunc != nil {
		return r.RunFunc(input)
	}

	return r.Output, nil
}

func (r *Runtime) Probes() int64 {
	return r.probes.Load()
}

func (r *Runtime) Loads() int64 {
	return r.loads.Load()
}

func (r *Runtime) Runs() int64 {
	return r.runs.Load()
}

func (r *Runtime) LastModel() runtime.Model {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.models) == 0 {
		return runtime.Model{}
	}

	return r.models[len(r.models)-1]
}

func (r *Runtime) LastInput() runtime.Input {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.inputs) == 0 {
		return nil
	}

	return r.inputs[len(r.inputs)-1]
}

// Tone returns n samples of a quiet sine wave shaped like decoded JSON.
func Tone(n int) []any {
	samples := make([]any, n)

	for i := range samples {
		samples[i] = 0.5 * math.Sin(float64(i)/8)
	}

	return samples
}
