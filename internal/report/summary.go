// Package report aggregates per-turn scores into an end-of-session summary.
package report

import "math"

const (
	strengthThreshold    = 7.5
	improvementThreshold = 4.0
	maxHighlights        = 5
)

// Summary is the end-of-session report.
type Summary struct {
	TotalQuestions  int      `json:"total_questions"`
	AverageScore    float64  `json:"average_score"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	OverallFeedback string   `json:"overall_feedback"`
}

// Aggregate computes the session summary from the parallel question, answer,
// score and feedback sequences. It is pure: no input is retained or mutated.
func Aggregate(questions, answers []string, scores []float64, feedback []string) Summary {
	if len(questions) == 0 {
		return Summary{
			Strengths:       []string{},
			Improvements:    []string{},
			OverallFeedback: "No questions answered.",
		}
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	n := len(scores)
	if n == 0 {
		n = 1
	}
	average := math.Round(sum/float64(n)*100) / 100

	strengths := make([]string, 0, maxHighlights)
	improvements := make([]string, 0, maxHighlights)
	for i, q := range questions {
		if i >= len(scores) {
			break
		}
		switch {
		case scores[i] >= strengthThreshold:
			if len(strengths) < maxHighlights {
				strengths = append(strengths, q)
			}
		case scores[i] <= improvementThreshold:
			if len(improvements) < maxHighlights {
				improvements = append(improvements, q)
			}
		}
	}

	var overall string
	switch {
	case average >= 7.5:
		overall = "Strong performance. You are well-prepared; refine advanced topics."
	case average >= 5.0:
		overall = "Moderate performance. Strengthen fundamentals and practice structured answers."
	default:
		overall = "Needs improvement. Focus on foundations and practice mock interviews."
	}

	return Summary{
		TotalQuestions:  len(questions),
		AverageScore:    average,
		Strengths:       strengths,
		Improvements:    improvements,
		OverallFeedback: overall,
	}
}
