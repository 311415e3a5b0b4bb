package api

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type IndexResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	Engines   []string          `json:"engines"`
	Endpoints map[string]string `json:"endpoints"`
}

type HealthResponse struct {
	Status string `json:"status"`

	EnginesInitialized map[string]bool `json:"engines_initialized"`
}

type Model struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`

	Description string   `json:"description"`
	Languages   []string `json:"languages"`
	Features    []string `json:"features"`

	Available   bool   `json:"available"`
	Reason      string `json:"reason,omitempty"`
	Initialized bool   `json:"initialized"`
}

type ModelList struct {
	Models []Model `json:"models"`
}

type Speaker struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type SpeakerList struct {
	Model    string    `json:"model"`
	Speakers []Speaker `json:"speakers"`
	Total    int       `json:"total"`
}

type SynthesizeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`

	OutputFilename      string `json:"output_filename,omitempty"`
	UseDefaultOutputDir *bool  `json:"use_default_output_dir,omitempty"`

	Speaker    string `json:"speaker,omitempty"`
	SpeakerWAV string `json:"speaker_wav,omitempty"`

	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
	Voice       string `json:"voice,omitempty"`

	RefText string `json:"ref_text,omitempty"`

	Speed        *float64 `json:"speed,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	CFGScale     *float64 `json:"cfg_scale,omitempty"`
	MaxNewTokens *int     `json:"max_new_tokens,omitempty"`
	Seed         *int64   `json:"seed,omitempty"`
}

type SynthesizeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	OutputPath string `json:"output_path,omitempty"`
	ModelUsed  string `json:"model_used"`
	FileSize   int64  `json:"file_size,omitempty"`

	Warnings []string `json:"warnings"`
}

type CleanupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	ModelsCleaned []string `json:"models_cleaned"`
}
