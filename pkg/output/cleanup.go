package output

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("invalid file name")

// Open resolves a file inside an engine's default directory. Names that would
// escape the directory are rejected.
func (p Policy) Open(engine, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}

	if engine == "" || engine != filepath.Base(engine) || strings.HasPrefix(engine, ".") {
		return "", ErrInvalidName
	}

	path := filepath.Join(p.Dir(engine), name)

	info, err := os.Stat(path)

	if err != nil {
		return "", err
	}

	if info.IsDir() {
		return "", os.ErrNotExist
	}

	return path, nil
}

// Clean removes the WAV files in an engine's default directory and reports how many were deleted.
func (p Policy) Clean(engine string) (int, error) {
	if engine == "" || engine != filepath.Base(engine) || strings.HasPrefix(engine, ".") {
		return 0, ErrInvalidName
	}

	files, err := filepath.Glob(filepath.Join(p.Dir(engine), "*.wav"))

	if err != nil {
		return 0, err
	}

	count := 0

	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return count, err
		}

		count++
	}

	return count, nil
}

// ContentType is the media type of files written by the policy.
func ContentType(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".wav") {
		return "audio/wav"
	}

	return "application/octet-stream"
}
