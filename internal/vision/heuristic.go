package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

// HeuristicAnalyzer derives presentation cues from cheap regional luminance
// and contrast statistics of the frame. It is a stand-in for a landmark-based
// detector with the same output contract: scores are approximate cues, not
// measurements.
type HeuristicAnalyzer struct{}

func NewHeuristicAnalyzer() *HeuristicAnalyzer { return &HeuristicAnalyzer{} }

func (h *HeuristicAnalyzer) AnalyzeFrame(_ context.Context, frameBase64 string) Analysis {
	img, ok := decodeFrame(frameBase64)
	if !ok {
		return NeutralAnalysis()
	}

	stats := sampleRegions(img)

	a := Analysis{
		EyeContact:        scoreEyeContact(stats),
		Posture:           scorePosture(stats),
		FacialExpressions: scoreExpressions(stats),
		HandGestures:      scoreGestures(stats),
	}
	a.ConfidenceScore = meanConfidence(a)
	return a
}

// decodeFrame accepts raw base64 or a data URI ("data:image/...;base64,...").
func decodeFrame(frameBase64 string) (image.Image, bool) {
	payload := frameBase64
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}
	b := img.Bounds()
	if b.Dx() < 8 || b.Dy() < 8 {
		return nil, false
	}
	return img, true
}

type regionStats struct {
	centerLuma   float64 // upper-center, where a face usually sits
	lowerLuma    float64 // lower third, where hands usually appear
	leftLuma     float64
	rightLuma    float64
	centerSpread float64 // luma spread in the face region
}

func sampleRegions(img image.Image) regionStats {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	lumaAt := func(x, y int) float64 {
		r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
		return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 65535.0
	}

	avg := func(x0, y0, x1, y1 int) (float64, float64) {
		var sum, sumSq float64
		var n int
		stepX := (x1 - x0) / 16
		stepY := (y1 - y0) / 16
		if stepX < 1 {
			stepX = 1
		}
		if stepY < 1 {
			stepY = 1
		}
		for y := y0; y < y1; y += stepY {
			for x := x0; x < x1; x += stepX {
				l := lumaAt(x, y)
				sum += l
				sumSq += l * l
				n++
			}
		}
		if n == 0 {
			return 0, 0
		}
		mean := sum / float64(n)
		variance := sumSq/float64(n) - mean*mean
		if variance < 0 {
			variance = 0
		}
		return mean, variance
	}

	centerMean, centerVar := avg(w/4, h/8, 3*w/4, h/2)
	lowerMean, _ := avg(0, 2*h/3, w, h)
	leftMean, _ := avg(0, 0, w/2, h)
	rightMean, _ := avg(w/2, 0, w, h)

	return regionStats{
		centerLuma:   centerMean,
		lowerLuma:    lowerMean,
		leftLuma:     leftMean,
		rightLuma:    rightMean,
		centerSpread: centerVar,
	}
}

func scoreEyeContact(s regionStats) Metric {
	// A well-lit upper-center region is the proxy for a camera-facing face.
	score := clampScore(s.centerLuma * 14)
	switch {
	case score >= 8:
		return Metric{Score: score, Feedback: "Excellent eye contact - maintaining good engagement"}
	case score >= 6:
		return Metric{Score: score, Feedback: "Good eye contact - occasional glances away are normal"}
	case score >= 4:
		return Metric{Score: score, Feedback: "Moderate eye contact - try to look at camera more often"}
	default:
		return Metric{Score: score, Feedback: "Poor eye contact - focus on maintaining eye contact with interviewer"}
	}
}

func scorePosture(s regionStats) Metric {
	// Horizontal balance approximates centered, upright framing.
	diff := s.leftLuma - s.rightLuma
	if diff < 0 {
		diff = -diff
	}
	score := clampScore(10 - diff*25)
	switch {
	case score >= 8:
		return Metric{Score: score, Feedback: "Excellent posture - professional and confident"}
	case score >= 6:
		return Metric{Score: score, Feedback: "Good posture with minor adjustments needed"}
	case score >= 4:
		return Metric{Score: score, Feedback: "Moderate posture - focus on sitting upright"}
	default:
		return Metric{Score: score, Feedback: "Poor posture - sit up straight and maintain professional appearance"}
	}
}

func scoreExpressions(s regionStats) Metric {
	// Contrast in the face region is the proxy for visible expressiveness.
	score := clampScore(4 + s.centerSpread*220)
	switch {
	case score >= 8:
		return Metric{Score: score, Feedback: "Excellent expressions - confident and engaging"}
	case score >= 6:
		return Metric{Score: score, Feedback: "Good expressions - natural and professional"}
	case score >= 4:
		return Metric{Score: score, Feedback: "Moderate expressions - try to be more expressive"}
	default:
		return Metric{Score: score, Feedback: "Limited expressions - work on showing confidence and engagement"}
	}
}

func scoreGestures(s regionStats) Metric {
	// Activity in the lower third suggests visible hands.
	score := clampScore(3 + s.lowerLuma*10)
	switch {
	case score >= 8:
		return Metric{Score: score, Feedback: "Excellent hand usage - natural and professional gestures"}
	case score >= 6:
		return Metric{Score: score, Feedback: "Good hand gestures - appropriate and controlled"}
	case score >= 4:
		return Metric{Score: score, Feedback: "Moderate hand usage - consider using more gestures"}
	default:
		return Metric{Score: score, Feedback: "Limited hand gestures - use natural hand movements to emphasize points"}
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
