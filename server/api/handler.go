package api

import (
	"encoding/json"
	"net/http"

	"github.com/adrianliechti/tts-playground/config"
	"github.com/adrianliechti/tts-playground/pkg/engine"

	"github.com/go-chi/chi/v5"
)

const (
	Name    = "TTS Playground API"
	Version = "1.0.0"
)

type Handler struct {
	*config.Config
}

func New(cfg *config.Config) (*Handler, error) {
	h := &Handler{
		Config: cfg,
	}

	return h, nil
}

func (h *Handler) Attach(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/health", h.handleHealth)

	r.Get("/models", h.handleModels)
	r.Get("/speakers", h.handleSpeakers)

	r.Post("/synthesize", h.handleSynthesize)
	r.Post("/synthesize-with-voice", h.handleSynthesizeWithVoice)

	r.Get("/download/{model}/{filename}", h.handleDownload)
	r.Delete("/cleanup/{model}", h.handleCleanup)
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	text := http.StatusText(code)

	if err != nil {
		text = err.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(ErrorResponse{
		Detail: text,
	})
}

// errorStatus maps the engine error taxonomy to a response code.
func errorStatus(err error) int {
	switch {
	case engine.IsUnknownEngine(err), engine.IsConfiguration(err):
		return http.StatusBadRequest

	case engine.IsInitialization(err):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
