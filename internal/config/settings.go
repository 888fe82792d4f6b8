package config

import (
	"encoding/json"
	"os"
	"time"
)

// Settings mirrors settings.json at the repository root. Missing keys fall
// back to the defaults below; a missing or unreadable file yields pure
// defaults so the pipeline can always start.
type Settings struct {
	LLM                  LLMSettings          `json:"llm"`
	DocumentVerification VerificationSettings `json:"document_verification"`
}

type LLMSettings struct {
	Backend             string  `json:"backend"`
	Model               string  `json:"model"`
	SynthesisModel      string  `json:"synthesis_model"`
	Temperature         float32 `json:"temperature"`
	TimeoutSeconds      int     `json:"timeout"`
	MaxRetries          int     `json:"max_retries"`
	EnableTokenTracking bool    `json:"enable_token_tracking"`
}

type VerificationSettings struct {
	AutoVerifyCaseSummary bool     `json:"auto_verify_case_summary"`
	VerificationMode      string   `json:"verification_mode"`
	VerificationFocus     []string `json:"verification_focus"`
	VerificationTiming    string   `json:"verification_timing"`
	SourcesDir            string   `json:"sources_dir"`
	SourceGlob            string   `json:"source_glob"`
}

func DefaultSettings() *Settings {
	return &Settings{
		LLM: LLMSettings{
			Backend:             "gemini",
			Model:               "gemini-2.5-flash",
			SynthesisModel:      "gemini-2.5-pro",
			Temperature:         0.35,
			TimeoutSeconds:      90,
			MaxRetries:          3,
			EnableTokenTracking: true,
		},
		DocumentVerification: VerificationSettings{
			AutoVerifyCaseSummary: true,
			VerificationMode:      "single",
			VerificationFocus:     []string{"facts", "claims", "procedural"},
			VerificationTiming:    "immediate",
		},
	}
}

// LoadSettings reads settings.json and overlays it on the defaults. Errors
// are swallowed into the returned bool so callers can log a warning and
// proceed.
func LoadSettings(path string) (*Settings, bool) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, false
	}
	if err := json.Unmarshal(data, settings); err != nil {
		return DefaultSettings(), false
	}

	// Re-apply defaults for keys the file left zero-valued.
	defaults := DefaultSettings()
	if settings.LLM.Backend == "" {
		settings.LLM.Backend = defaults.LLM.Backend
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = defaults.LLM.Model
	}
	if settings.LLM.SynthesisModel == "" {
		settings.LLM.SynthesisModel = defaults.LLM.SynthesisModel
	}
	if settings.LLM.Temperature == 0 {
		settings.LLM.Temperature = defaults.LLM.Temperature
	}
	if settings.LLM.TimeoutSeconds == 0 {
		settings.LLM.TimeoutSeconds = defaults.LLM.TimeoutSeconds
	}
	if settings.LLM.MaxRetries == 0 {
		settings.LLM.MaxRetries = defaults.LLM.MaxRetries
	}
	if settings.DocumentVerification.VerificationMode == "" {
		settings.DocumentVerification.VerificationMode = defaults.DocumentVerification.VerificationMode
	}
	if len(settings.DocumentVerification.VerificationFocus) == 0 {
		settings.DocumentVerification.VerificationFocus = defaults.DocumentVerification.VerificationFocus
	}
	if settings.DocumentVerification.VerificationTiming == "" {
		settings.DocumentVerification.VerificationTiming = defaults.DocumentVerification.VerificationTiming
	}
	if settings.DocumentVerification.VerificationTiming == "off" {
		settings.DocumentVerification.AutoVerifyCaseSummary = false
	}

	return settings, true
}

func (s *Settings) LLMTimeout() time.Duration {
	return time.Duration(s.LLM.TimeoutSeconds) * time.Second
}
