// Package vision analyzes webcam frames for presentation cues.
package vision

import "context"

// Metric is one scored presentation cue.
type Metric struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Analysis carries the four presentation sub-metrics for one frame plus an
// aggregate confidence equal to their arithmetic mean.
type Analysis struct {
	EyeContact        Metric  `json:"eye_contact"`
	Posture           Metric  `json:"posture"`
	FacialExpressions Metric  `json:"facial_expressions"`
	HandGestures      Metric  `json:"hand_gestures"`
	ConfidenceScore   float64 `json:"confidence_score"`
}

// Analyzer extracts presentation cues from a single base64-encoded frame.
// Implementations must never fail outward: detection problems yield neutral
// per-metric defaults instead of an error.
type Analyzer interface {
	AnalyzeFrame(ctx context.Context, frameBase64 string) Analysis
}

// NeutralAnalysis is the contract's fallback when nothing can be detected.
func NeutralAnalysis() Analysis {
	a := Analysis{
		EyeContact:        Metric{Score: 5.0, Feedback: "Unable to detect eyes"},
		Posture:           Metric{Score: 5.0, Feedback: "Unable to detect posture"},
		FacialExpressions: Metric{Score: 5.0, Feedback: "Unable to detect expressions"},
		HandGestures:      Metric{Score: 5.0, Feedback: "Unable to detect gestures"},
	}
	a.ConfidenceScore = meanConfidence(a)
	return a
}

func meanConfidence(a Analysis) float64 {
	return (a.EyeContact.Score + a.Posture.Score + a.FacialExpressions.Score + a.HandGestures.Score) / 4
}
