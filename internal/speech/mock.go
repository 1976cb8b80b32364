package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// MockSynthesizer is a local fallback that encodes the text bytes themselves.
// Useful for development and tests where real audio is irrelevant.
type MockSynthesizer struct{}

func NewMockSynthesizer() *MockSynthesizer { return &MockSynthesizer{} }

func (s *MockSynthesizer) Synthesize(_ context.Context, text string) (Clip, error) {
	if strings.TrimSpace(text) == "" {
		return Clip{}, errors.New("empty text")
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	return Clip{
		DataURI: "data:audio/mock;base64," + encoded,
		Format:  "mock",
	}, nil
}
