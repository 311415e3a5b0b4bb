package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/output"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	filename := chi.URLParam(r, "filename")

	if name, ok := h.Registry.Canonical(model); ok {
		model = name
	}

	path, err := h.Output.Open(model, filename)

	if err != nil {
		switch {
		case errors.Is(err, output.ErrInvalidName):
			writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, os.ErrNotExist):
			writeError(w, http.StatusNotFound, errors.New("file not found"))
		default:
			writeError(w, http.StatusInternalServerError, err)
		}

		return
	}

	f, err := os.Open(path)

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	defer f.Close()

	info, err := f.Stat()

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", output.ContentType(filename))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")

	var models []string

	if model == "all" {
		for _, e := range h.Registry.Entries() {
			models = append(models, e.Name)
		}
	} else {
		name, ok := h.Registry.Canonical(model)

		if !ok {
			err := &engine.UnknownEngineError{Name: model, Available: h.Registry.Names()}
			writeError(w, errorStatus(err), err)
			return
		}

		models = append(models, name)
	}

	total := 0

	for _, name := range models {
		count, err := h.Output.Clean(name)

		if err != nil && !errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		total += count
	}

	writeJson(w, CleanupResponse{
		Success: true,
		Message: fmt.Sprintf("Deleted %d files", total),

		ModelsCleaned: models,
	})
}
