package engine

import (
	"context"
	"sync"
	"sync/atomic"
)

// Lifecycle runs an initialization function at most once successfully.
// A failed attempt leaves the lifecycle uninitialized so that it can be retried.
type Lifecycle struct {
	mu          sync.Mutex
	initialized atomic.Bool
}

func (l *Lifecycle) Initialized() bool {
	return l.initialized.Load()
}

func (l *Lifecycle) Do(ctx context.Context, engine string, fn func(ctx context.Context) error) error {
	if l.initialized.Load() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized.Load() {
		return nil
	}

	if err := fn(ctx); err != nil {
		if IsConfiguration(err) || IsInitialization(err) {
			return err
		}

		return &InitializationError{Engine: engine, Err: err}
	}

	l.initialized.Store(true)
	return nil
}
