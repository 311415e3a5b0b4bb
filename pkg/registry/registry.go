package registry

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/adrianliechti/tts-playground/pkg/engine"
)

// Entry describes an engine that can be constructed on demand.
type Entry struct {
	Name    string
	Aliases []string

	Description string
	Features    []string
	Languages   []string

	Constructor func(cfg engine.Config) (engine.Engine, error)

	// Probe checks that the engine's dependencies are reachable. A nil probe always succeeds.
	Probe func(ctx context.Context) error
}

type Info struct {
	Name    string
	Aliases []string

	Description string
	Features    []string
	Languages   []string

	Available bool
	Reason    string
}

// Registry resolves engine names. It is immutable once built.
type Registry struct {
	entries []entry
	lookup  map[string]int

	names []string
}

type entry struct {
	Entry

	err error
}

// New validates the entries and probes each of them once. A failing probe marks only
// that entry unavailable.
func New(ctx context.Context, entries ...Entry) (*Registry, error) {
	r := &Registry{
		lookup: make(map[string]int),
	}

	for i, e := range entries {
		e.Name = normalize(e.Name)

		if e.Constructor == nil {
			return nil, errors.New("engine constructor missing: " + e.Name)
		}

		for _, name := range append([]string{e.Name}, e.Aliases...) {
			key := normalize(name)

			if key == "" {
				return nil, errors.New("engine name required")
			}

			if _, exists := r.lookup[key]; exists {
				return nil, errors.New("duplicate engine name: " + key)
			}

			r.lookup[key] = i
			r.names = append(r.names, key)
		}

		var err error

		if e.Probe != nil {
			err = e.Probe(ctx)
		}

		r.entries = append(r.entries, entry{
			Entry: e,
			err:   err,
		})
	}

	return r, nil
}

// Get resolves a name or alias and constructs a new, uninitialized engine.
func (r *Registry) Get(name string, cfg engine.Config) (engine.Engine, error) {
	i, ok := r.lookup[normalize(name)]

	if !ok {
		return nil, &engine.UnknownEngineError{
			Name:      name,
			Available: r.Names(),
		}
	}

	e := r.entries[i]

	if e.err != nil {
		return nil, &engine.InitializationError{Engine: e.Name, Err: e.err}
	}

	result, err := e.Constructor(cfg)

	if err != nil {
		if engine.IsConfiguration(err) || engine.IsInitialization(err) {
			return nil, err
		}

		return nil, &engine.InitializationError{Engine: e.Name, Err: err}
	}

	return result, nil
}

// Names lists every name and alias in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Canonical maps a name or alias to the entry name.
func (r *Registry) Canonical(name string) (string, bool) {
	i, ok := r.lookup[normalize(name)]

	if !ok {
		return "", false
	}

	return r.entries[i].Name, true
}

func (r *Registry) Lookup(name string) (Info, bool) {
	i, ok := r.lookup[normalize(name)]

	if !ok {
		return Info{}, false
	}

	return r.entries[i].info(), true
}

func (r *Registry) Entries() []Info {
	result := make([]Info, 0, len(r.entries))

	for _, e := range r.entries {
		result = append(result, e.info())
	}

	return result
}

func (e entry) info() Info {
	info := Info{
		Name:    e.Name,
		Aliases: slices.Clone(e.Aliases),

		Description: e.Description,
		Features:    slices.Clone(e.Features),
		Languages:   slices.Clone(e.Languages),

		Available: e.err == nil,
	}

	if e.err != nil {
		info.Reason = e.err.Error()
	}

	return info
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
