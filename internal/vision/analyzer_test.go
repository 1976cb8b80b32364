package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeTestFrame(t *testing.T, fill color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestAnalyzeFrameInvalidInputIsNeutral(t *testing.T) {
	a := NewHeuristicAnalyzer()
	for _, frame := range []string{"", "not-base64!!!", base64.StdEncoding.EncodeToString([]byte("not an image"))} {
		got := a.AnalyzeFrame(context.Background(), frame)
		for _, m := range []Metric{got.EyeContact, got.Posture, got.FacialExpressions, got.HandGestures} {
			if m.Score != 5.0 {
				t.Fatalf("neutral score = %v, want 5.0", m.Score)
			}
			if m.Feedback == "" {
				t.Fatal("neutral metric missing advisory")
			}
		}
		if got.ConfidenceScore != 5.0 {
			t.Fatalf("confidence = %v, want 5.0", got.ConfidenceScore)
		}
	}
}

func TestAnalyzeFrameScoresInRange(t *testing.T) {
	a := NewHeuristicAnalyzer()
	frames := []string{
		encodeTestFrame(t, color.RGBA{R: 220, G: 210, B: 200, A: 255}),
		encodeTestFrame(t, color.RGBA{R: 20, G: 20, B: 20, A: 255}),
		"data:image/png;base64," + encodeTestFrame(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}),
	}
	for _, frame := range frames {
		got := a.AnalyzeFrame(context.Background(), frame)
		metrics := []Metric{got.EyeContact, got.Posture, got.FacialExpressions, got.HandGestures}
		var sum float64
		for _, m := range metrics {
			if m.Score < 0 || m.Score > 10 {
				t.Fatalf("score %v out of range", m.Score)
			}
			if m.Feedback == "" {
				t.Fatal("metric missing advisory text")
			}
			sum += m.Score
		}
		want := sum / 4
		if diff := got.ConfidenceScore - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("confidence = %v, want mean %v", got.ConfidenceScore, want)
		}
	}
}

func TestNeutralAnalysisConfidence(t *testing.T) {
	got := NeutralAnalysis()
	if got.ConfidenceScore != 5.0 {
		t.Fatalf("confidence = %v, want 5.0", got.ConfidenceScore)
	}
}
