package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// SynthesizeBatch writes texts[i] to outputDir/output_<i+1>.wav, four digits zero padded.
// The first failure aborts the batch. Files written before it are kept.
func SynthesizeBatch(ctx context.Context, e Engine, texts []string, outputDir string, options *SynthesizeOptions) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	var shared SynthesizeOptions

	if options != nil {
		shared = *options
	}

	paths := make([]string, 0, len(texts))

	for i, text := range texts {
		opts := shared

		opts.OutputPath = filepath.Join(outputDir, fmt.Sprintf("output_%04d.wav", i+1))
		opts.UseDefaultOutputDir = Ptr(false)

		result, err := e.Synthesize(ctx, text, &opts)

		if err != nil {
			return paths, err
		}

		paths = append(paths, result.Path)
	}

	return paths, nil
}

// Use initializes the engine and runs fn with it. Nothing is released afterwards since
// engines hold no external resources.
func Use(ctx context.Context, e Engine, fn func(Engine) error) error {
	if err := e.Initialize(ctx); err != nil {
		return err
	}

	return fn(e)
}
