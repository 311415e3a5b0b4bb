package output

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrianliechti/tts-playground/pkg/audio"
)

const DefaultDir = "output"

// Policy decides where synthesized audio ends up.
//
// An empty path returns the encoded audio as bytes. Absolute paths are used verbatim.
// Relative paths are placed below BaseDir/<engine>/ unless the caller opts out, in which
// case they are relative to the working directory.
type Policy struct {
	BaseDir string
}

type Written struct {
	Path    string
	Content []byte

	SampleRate int
	Channels   int
	Duration   time.Duration
}

func (p Policy) baseDir() string {
	if p.BaseDir == "" {
		return DefaultDir
	}

	return p.BaseDir
}

// Dir returns the default output directory of an engine.
func (p Policy) Dir(engine string) string {
	return filepath.Join(p.baseDir(), engine)
}

// Resolve maps a requested path to the file that will be written and creates its parent directories.
func (p Policy) Resolve(engine, path string, useDefaultDir bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("output path required")
	}

	target := path

	if !filepath.IsAbs(path) && useDefaultDir {
		target = filepath.Join(p.Dir(engine), path)
	}

	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	return target, nil
}

// Write encodes the buffer as WAV according to the policy.
func (p Policy) Write(engine, path string, useDefaultDir bool, buf *audio.Buffer) (*Written, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	result := &Written{
		SampleRate: buf.SampleRate,
		Channels:   buf.Channels,
		Duration:   buf.Duration(),
	}

	if path == "" {
		data, err := roundTrip(buf)

		if err != nil {
			return nil, err
		}

		result.Content = data
		return result, nil
	}

	target, err := p.Resolve(engine, path, useDefaultDir)

	if err != nil {
		return nil, err
	}

	if err := writeFile(target, buf); err != nil {
		return nil, err
	}

	result.Path = target
	return result, nil
}

// roundTrip writes to a temporary file and reads it back, so bytes mode goes through
// the same encoder as file mode.
func roundTrip(buf *audio.Buffer) ([]byte, error) {
	f, err := os.CreateTemp("", "tts-*.wav")

	if err != nil {
		return nil, err
	}

	defer os.Remove(f.Name())

	if err := audio.EncodeWAV(f, buf); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.Close(); err != nil {
		return nil, err
	}

	return os.ReadFile(f.Name())
}

// writeFile encodes next to the target and renames into place, so a failed write
// never leaves a partial file behind.
func writeFile(target string, buf *audio.Buffer) error {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-*")

	if err != nil {
		return err
	}

	defer os.Remove(f.Name())

	if err := audio.EncodeWAV(f, buf); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), target)
}
