package api

import (
	"net/http"
)

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJson(w, IndexResponse{
		Name:    Name,
		Version: Version,

		Engines: h.Registry.Names(),

		Endpoints: map[string]string{
			"health":                "GET /health",
			"models":                "GET /models",
			"speakers":              "GET /speakers?model=indri",
			"synthesize":            "POST /synthesize",
			"synthesize_with_voice": "POST /synthesize-with-voice",
			"download":              "GET /download/{model}/{filename}",
			"cleanup":               "DELETE /cleanup/{model}",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, HealthResponse{
		Status: "healthy",

		EnginesInitialized: h.Initialized(),
	})
}
