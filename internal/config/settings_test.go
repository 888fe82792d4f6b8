package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettingsMissingFile(t *testing.T) {
	settings, loaded := LoadSettings(filepath.Join(t.TempDir(), "settings.json"))
	if loaded {
		t.Error("loaded should be false for a missing file")
	}
	if settings.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q, want default", settings.LLM.Model)
	}
	if !settings.DocumentVerification.AutoVerifyCaseSummary {
		t.Error("verification should default to enabled")
	}
}

func TestLoadSettingsPartialOverlay(t *testing.T) {
	path := writeSettings(t, `{"llm": {"backend": "openai", "model": "gpt-4o-mini"}}`)

	settings, loaded := LoadSettings(path)
	if !loaded {
		t.Fatal("expected loaded = true")
	}
	if settings.LLM.Backend != "openai" || settings.LLM.Model != "gpt-4o-mini" {
		t.Errorf("overrides not applied: %+v", settings.LLM)
	}
	// Untouched keys keep their defaults.
	if settings.LLM.SynthesisModel != "gemini-2.5-pro" {
		t.Errorf("synthesis model = %q", settings.LLM.SynthesisModel)
	}
	if settings.LLM.MaxRetries != 3 {
		t.Errorf("max retries = %d", settings.LLM.MaxRetries)
	}
	if settings.LLMTimeout() != 90*time.Second {
		t.Errorf("timeout = %v", settings.LLMTimeout())
	}
}

func TestLoadSettingsVerificationTimingOff(t *testing.T) {
	path := writeSettings(t, `{"document_verification": {"verification_timing": "off"}}`)

	settings, _ := LoadSettings(path)
	if settings.DocumentVerification.AutoVerifyCaseSummary {
		t.Error("timing off must disable auto verification")
	}
}

func TestLoadSettingsMalformedFile(t *testing.T) {
	path := writeSettings(t, `{not json`)

	settings, loaded := LoadSettings(path)
	if loaded {
		t.Error("loaded should be false for malformed json")
	}
	if settings.LLM.Model != "gemini-2.5-flash" {
		t.Error("malformed file must yield pure defaults")
	}
}
