package api

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

func valueModel(r *http.Request, fallback string) string {
	if val := r.FormValue("model"); val != "" {
		return val
	}

	return fallback
}

func valueBool(r *http.Request, key string, fallback bool) bool {
	val := r.FormValue(key)

	if val == "" {
		return fallback
	}

	b, err := strconv.ParseBool(val)

	if err != nil {
		return fallback
	}

	return b
}

// defaultFilename derives a file name from the first 30 characters of the text.
func defaultFilename(text, suffix string) string {
	runes := []rune(text)

	if len(runes) > 30 {
		runes = runes[:30]
	}

	var b strings.Builder

	for _, r := range runes {
		switch {
		case unicode.IsLetter(r), unicode.IsMark(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	name := strings.TrimRight(b.String(), "_")

	if name == "" {
		name = "output"
	}

	return name + suffix
}

// stageUpload copies a multipart file into dir under a random name.
func stageUpload(dir string, file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))

	if ext == "" {
		ext = ".wav"
	}

	path := filepath.Join(dir, uuid.NewString()+ext)

	f, err := os.Create(path)

	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, file); err != nil {
		f.Close()
		os.Remove(path)

		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)

	if err != nil {
		return 0
	}

	return info.Size()
}
