// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all runtime settings for the interview service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	SessionTTL       time.Duration
	MetricsNamespace string
	AllowAnyOrigin   bool

	// Session state machine knobs. The defaults match the original product
	// behavior; both are tunable rather than hard-wired.
	MaxQuestions       int
	GateAfterQuestions int

	// Text-generation collaborator. An empty API key runs the service in
	// rule-based mode.
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAITemperature float64
	BrainTimeout      time.Duration

	// Speech synthesis: auto|http|mock|off.
	SpeechProvider string
	SpeechEndpoint string
	SpeechAPIKey   string
	SpeechFormat   string
	SpeechTimeout  time.Duration

	// Video analysis: heuristic|off.
	VisionProvider string
	VisionTimeout  time.Duration

	// Session store. Empty means in-memory.
	DatabaseURL string
}

// Load reads a .env file when present, then environment variables, and
// applies safe defaults.
func Load() (Config, error) {
	// Missing .env is the common case in production; only explicit env wins.
	_ = godotenv.Load()

	cfg := Config{
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "preptalk"),
		ShutdownTimeout:    15 * time.Second,
		SessionTTL:         30 * time.Minute,
		MaxQuestions:       8,
		GateAfterQuestions: 3,
		OpenAIAPIKey:       trimmedEnv("OPENAI_API_KEY"),
		OpenAIBaseURL:      envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:        envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITemperature:  0.3,
		BrainTimeout:       30 * time.Second,
		SpeechProvider:     envOrDefault("SPEECH_PROVIDER", "auto"),
		SpeechEndpoint:     trimmedEnv("SPEECH_ENDPOINT"),
		SpeechAPIKey:       trimmedEnv("SPEECH_API_KEY"),
		SpeechFormat:       envOrDefault("SPEECH_FORMAT", "mp3"),
		SpeechTimeout:      15 * time.Second,
		VisionProvider:     envOrDefault("VISION_PROVIDER", "heuristic"),
		VisionTimeout:      10 * time.Second,
		DatabaseURL:        trimmedEnv("DATABASE_URL"),
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL, err = durationFromEnv("APP_SESSION_TTL", cfg.SessionTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.BrainTimeout, err = durationFromEnv("APP_BRAIN_TIMEOUT", cfg.BrainTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SpeechTimeout, err = durationFromEnv("APP_SPEECH_TIMEOUT", cfg.SpeechTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.VisionTimeout, err = durationFromEnv("APP_VISION_TIMEOUT", cfg.VisionTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxQuestions, err = intFromEnv("APP_MAX_QUESTIONS", cfg.MaxQuestions)
	if err != nil {
		return Config{}, err
	}
	cfg.GateAfterQuestions, err = intFromEnv("APP_CODING_GATE_AFTER", cfg.GateAfterQuestions)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.OpenAITemperature, err = floatFromEnv("OPENAI_TEMPERATURE", cfg.OpenAITemperature)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionTTL < time.Minute {
		return Config{}, fmt.Errorf("APP_SESSION_TTL must be at least 1m")
	}
	if cfg.MaxQuestions < 1 {
		return Config{}, fmt.Errorf("APP_MAX_QUESTIONS must be positive")
	}
	if cfg.GateAfterQuestions < 1 {
		return Config{}, fmt.Errorf("APP_CODING_GATE_AFTER must be positive")
	}
	if cfg.GateAfterQuestions >= cfg.MaxQuestions {
		return Config{}, fmt.Errorf("APP_CODING_GATE_AFTER must be below APP_MAX_QUESTIONS")
	}

	switch strings.ToLower(cfg.SpeechProvider) {
	case "auto", "http", "mock", "off":
	default:
		return Config{}, fmt.Errorf("invalid SPEECH_PROVIDER %q (expected auto|http|mock|off)", cfg.SpeechProvider)
	}
	switch strings.ToLower(cfg.VisionProvider) {
	case "heuristic", "off":
	default:
		return Config{}, fmt.Errorf("invalid VISION_PROVIDER %q (expected heuristic|off)", cfg.VisionProvider)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
