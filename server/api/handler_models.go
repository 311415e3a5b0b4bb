package api

import (
	"fmt"
	"net/http"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/engine/indri"
)

func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	initialized := h.Initialized()

	result := ModelList{
		Models: make([]Model, 0),
	}

	for _, e := range h.Registry.Entries() {
		result.Models = append(result.Models, Model{
			Name:    e.Name,
			Aliases: e.Aliases,

			Description: e.Description,
			Languages:   e.Languages,
			Features:    e.Features,

			Available:   e.Available,
			Reason:      e.Reason,
			Initialized: initialized[e.Name],
		})
	}

	writeJson(w, result)
}

func (h *Handler) handleSpeakers(w http.ResponseWriter, r *http.Request) {
	model := valueModel(r, indri.Name)

	e, err := h.Engine(model)

	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}

	lister, ok := engine.As[engine.SpeakerLister](e)

	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("model %q has no speaker catalog", model))
		return
	}

	result := SpeakerList{
		Model:    e.Name(),
		Speakers: make([]Speaker, 0),
	}

	for _, s := range lister.Speakers() {
		result.Speakers = append(result.Speakers, Speaker{
			ID:          s.ID,
			Description: s.Description,
		})
	}

	result.Total = len(result.Speakers)

	writeJson(w, result)
}
