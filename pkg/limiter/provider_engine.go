package limiter

import (
	"context"

	"github.com/adrianliechti/tts-playground/pkg/engine"

	"golang.org/x/time/rate"
)

type Engine interface {
	Limiter
	engine.Engine
	engine.Wrapper
}

type limitedEngine struct {
	limiter  *rate.Limiter
	provider engine.Engine
}

func NewEngine(l *rate.Limiter, p engine.Engine) Engine {
	return &limitedEngine{
		limiter:  l,
		provider: p,
	}
}

func (p *limitedEngine) limiterSetup() {
}

func (p *limitedEngine) Unwrap() engine.Engine {
	return p.provider
}

func (p *limitedEngine) Name() string {
	return p.provider.Name()
}

func (p *limitedEngine) Initialize(ctx context.Context) error {
	return p.provider.Initialize(ctx)
}

func (p *limitedEngine) IsInitialized() bool {
	return p.provider.IsInitialized()
}

func (p *limitedEngine) SupportedLanguages() []string {
	return p.provider.SupportedLanguages()
}

func (p *limitedEngine) Synthesize(ctx context.Context, text string, options *engine.SynthesizeOptions) (*engine.Result, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return p.provider.Synthesize(ctx, text, options)
}
