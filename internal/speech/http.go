package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// HTTPConfig points the synthesizer at a TTS HTTP endpoint that accepts
// {"text": ...} and responds with encoded audio bytes.
type HTTPConfig struct {
	Endpoint string
	APIKey   string
	Format   string
	Timeout  time.Duration
}

// HTTPSynthesizer posts text to a remote TTS service.
type HTTPSynthesizer struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTPSynthesizer(cfg HTTPConfig) (*HTTPSynthesizer, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("speech endpoint is required")
	}
	if strings.TrimSpace(cfg.Format) == "" {
		cfg.Format = "mp3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &HTTPSynthesizer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text string) (Clip, error) {
	if strings.TrimSpace(text) == "" {
		return Clip{}, errors.New("empty text")
	}

	payload, err := json.Marshal(map[string]string{"text": text, "format": s.cfg.Format})
	if err != nil {
		return Clip{}, fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Clip{}, fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Clip{}, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Clip{}, fmt.Errorf("tts status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Clip{}, fmt.Errorf("read tts response: %w", err)
	}
	if len(audio) == 0 {
		return Clip{}, errors.New("tts returned no audio")
	}

	return Clip{
		DataURI: "data:audio/" + s.cfg.Format + ";base64," + base64.StdEncoding.EncodeToString(audio),
		Format:  s.cfg.Format,
	}, nil
}
