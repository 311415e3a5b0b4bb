package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/engine/indri"
	"github.com/adrianliechti/tts-playground/pkg/engine/xtts"
)

const maxUploadSize = 32 << 20

var errTextRequired = errors.New("text is required")

func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req SynthesizeRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, errTextRequired)
		return
	}

	model := req.Model

	if model == "" {
		model = indri.Name
	}

	e, err := h.Engine(model)

	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}

	filename := req.OutputFilename

	if filename == "" {
		filename = defaultFilename(req.Text, ".wav")
	}

	options := &engine.SynthesizeOptions{
		OutputPath:          filename,
		UseDefaultOutputDir: req.UseDefaultOutputDir,

		Speaker:    req.Speaker,
		SpeakerWAV: req.SpeakerWAV,

		Language:    req.Language,
		Description: req.Description,
		Voice:       req.Voice,

		RefText: req.RefText,

		Speed:        req.Speed,
		Temperature:  req.Temperature,
		CFGScale:     req.CFGScale,
		MaxNewTokens: req.MaxNewTokens,
		Seed:         req.Seed,
	}

	h.synthesize(w, r, e, req.Text, options)
}

func (h *Handler) handleSynthesizeWithVoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	text := r.FormValue("text")

	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, errTextRequired)
		return
	}

	model := valueModel(r, xtts.Name)

	e, err := h.Engine(model)

	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}

	if _, ok := engine.As[engine.VoiceCloner](e); !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("model %q does not support voice cloning", model))
		return
	}

	file, header, err := r.FormFile("voice_file")

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	defer file.Close()

	reference, err := stageUpload(h.Uploads, file, header)

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	defer os.Remove(reference)

	filename := r.FormValue("output_filename")

	if filename == "" {
		filename = defaultFilename(text, "_cloned.wav")
	}

	options := &engine.SynthesizeOptions{
		OutputPath:          filename,
		UseDefaultOutputDir: engine.Ptr(valueBool(r, "use_default_output_dir", true)),

		SpeakerWAV: reference,

		Language: r.FormValue("language"),
		RefText:  r.FormValue("ref_text"),
	}

	h.synthesize(w, r, e, text, options)
}

func (h *Handler) synthesize(w http.ResponseWriter, r *http.Request, e engine.Engine, text string, options *engine.SynthesizeOptions) {
	result, err := e.Synthesize(r.Context(), text, options)

	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}

	warnings := result.Warnings

	if warnings == nil {
		warnings = []string{}
	}

	writeJson(w, SynthesizeResponse{
		Success: true,
		Message: "Speech synthesized successfully",

		OutputPath: result.Path,
		ModelUsed:  e.Name(),
		FileSize:   fileSize(result.Path),

		Warnings: warnings,
	})
}
