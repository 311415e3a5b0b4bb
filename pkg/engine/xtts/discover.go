package xtts

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const maxReferenceSize = 10 << 20

var (
	checkpointNames = []string{"model.pth", "model.pt", "best_model.pth"}

	// auxiliary weights shipped next to the checkpoint
	checkpointExcludes = []string{"dvae.pth", "speakers_xtts.pth", "mel_stats.pth"}

	referencePatterns = []string{"*.wav", "*.flac", "*.mp3"}
	referenceHints    = []string{"speaker", "voice", "reference", "sample"}
)

type checkpoint struct {
	Dir string

	Checkpoint string
	Config     string
}

// findCheckpoint locates the model weights in a snapshot, first at the top level and
// then one directory down. The model config must sit next to the weights or at the top level.
func findCheckpoint(root string) (*checkpoint, error) {
	path := checkpointIn(root)

	if path == "" {
		entries, err := os.ReadDir(root)

		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}

			if path = checkpointIn(filepath.Join(root, entry.Name())); path != "" {
				break
			}
		}
	}

	if path == "" {
		return nil, errors.New("no model checkpoint found in " + root)
	}

	dir := filepath.Dir(path)

	config := filepath.Join(dir, "config.json")

	if !isFile(config) {
		config = filepath.Join(root, "config.json")
	}

	if !isFile(config) {
		return nil, errors.New("config.json not found in " + root)
	}

	return &checkpoint{
		Dir: dir,

		Checkpoint: path,
		Config:     config,
	}, nil
}

func checkpointIn(dir string) string {
	for _, name := range checkpointNames {
		if path := filepath.Join(dir, name); isFile(path) {
			return path
		}
	}

	for _, pattern := range []string{"*.pth", "*.pt"} {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))

		for _, path := range matches {
			if slices.Contains(checkpointExcludes, filepath.Base(path)) {
				continue
			}

			return path
		}
	}

	return ""
}

// findReference picks a speaker recording shipped with the model. Files named like a
// reference are preferred, otherwise the first small enough recording is used.
func findReference(dir string) string {
	var candidates []string

	for _, pattern := range referencePatterns {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))

		for _, path := range matches {
			info, err := os.Stat(path)

			if err != nil || !info.Mode().IsRegular() || info.Size() >= maxReferenceSize {
				continue
			}

			candidates = append(candidates, path)
		}
	}

	for _, path := range candidates {
		name := strings.ToLower(filepath.Base(path))

		for _, hint := range referenceHints {
			if strings.Contains(name, hint) {
				return path
			}
		}
	}

	if len(candidates) > 0 {
		return candidates[0]
	}

	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
