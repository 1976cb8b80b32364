package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.MaxQuestions != 8 {
		t.Fatalf("MaxQuestions = %d, want 8", cfg.MaxQuestions)
	}
	if cfg.GateAfterQuestions != 3 {
		t.Fatalf("GateAfterQuestions = %d, want 3", cfg.GateAfterQuestions)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_MAX_QUESTIONS", "6")
	t.Setenv("APP_CODING_GATE_AFTER", "2")
	t.Setenv("APP_SESSION_TTL", "5m")
	t.Setenv("SPEECH_PROVIDER", "mock")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxQuestions != 6 || cfg.GateAfterQuestions != 2 {
		t.Fatalf("knobs = %d/%d", cfg.MaxQuestions, cfg.GateAfterQuestions)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.SpeechProvider != "mock" {
		t.Fatalf("SpeechProvider = %q", cfg.SpeechProvider)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"APP_SESSION_TTL", "10s"},
		{"APP_MAX_QUESTIONS", "0"},
		{"APP_CODING_GATE_AFTER", "9"},
		{"SPEECH_PROVIDER", "gramophone"},
		{"VISION_PROVIDER", "tarot"},
		{"APP_MAX_QUESTIONS", "eight"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() accepted %s=%s", tc.key, tc.value)
			}
		})
	}
}
