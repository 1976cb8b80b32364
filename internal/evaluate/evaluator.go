// Package evaluate scores a single free-text answer against a question.
package evaluate

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/preplab/preptalk/internal/brain"
)

var fillerTokens = []string{"umm", "uh", "like ", "you know"}

var reasoningConnectors = []string{"because", "therefore", "so that"}

const fallbackFeedback = "Let's continue with a simpler next step: describe one concrete trade-off you made recently and why."

// Result is the outcome of evaluating one answer.
type Result struct {
	Feedback string
	Score    float64
}

// Evaluator scores answers. With a brain client it delegates to generated
// evaluation; on the first client failure it downgrades permanently to the
// rule-based path for the rest of the process lifetime.
type Evaluator struct {
	client   brain.Client
	degraded atomic.Bool
}

func New(client brain.Client) *Evaluator {
	e := &Evaluator{client: client}
	if client == nil {
		e.degraded.Store(true)
	}
	return e
}

// Degraded reports whether the evaluator has fallen back to rule-based mode.
func (e *Evaluator) Degraded() bool { return e.degraded.Load() }

func (e *Evaluator) Evaluate(ctx context.Context, question, answer string) Result {
	if !e.degraded.Load() {
		prompt := fmt.Sprintf(
			"Evaluate the candidate's answer to the interview question.\n"+
				"Question: %s\nAnswer: %s\n"+
				"Provide: concise feedback (2-4 sentences) and a numeric score 0-10.\n"+
				"Respond as: FEEDBACK: <text>\nSCORE: <0-10>",
			question, answer)
		raw, err := e.client.Complete(ctx, prompt)
		if err != nil {
			// One failure disables generation for good; the caller still
			// receives a valid result built from the fixed fallback line.
			e.degraded.Store(true)
			log.Printf("evaluator degraded to rule-based mode: %v", err)
			feedback, score := parseFeedbackAndScore(fallbackFeedback)
			return Result{Feedback: feedback, Score: score}
		}
		feedback, score := parseFeedbackAndScore(raw)
		return Result{Feedback: feedback, Score: score}
	}
	feedback, score := ruleBasedEvaluate(answer)
	return Result{Feedback: feedback, Score: score}
}

// parseFeedbackAndScore extracts the labeled FEEDBACK and SCORE fields from a
// plain-text completion. Missing or unparsable scores default to 5.0.
func parseFeedbackAndScore(raw string) (string, float64) {
	feedback := raw
	score := 5.0
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "FEEDBACK:") {
			feedback = strings.TrimSpace(line[len("FEEDBACK:"):])
		}
		if strings.HasPrefix(upper, "SCORE:") {
			val := strings.TrimSpace(line[len("SCORE:"):])
			if parsed, err := strconv.ParseFloat(val, 64); err == nil {
				score = parsed
			}
		}
	}
	return feedback, clamp(score)
}

func ruleBasedEvaluate(answer string) (string, float64) {
	lower := strings.ToLower(answer)

	lengthScore := float64(len(strings.Fields(answer))) / 20.0 * 10.0
	if lengthScore > 10.0 {
		lengthScore = 10.0
	}

	var fillerPenalty float64
	for _, tok := range fillerTokens {
		fillerPenalty += float64(strings.Count(lower, tok)) * 0.5
	}

	var clarityBonus float64
	for _, conn := range reasoningConnectors {
		if strings.Contains(lower, conn) {
			clarityBonus = 1.0
			break
		}
	}

	score := clamp(lengthScore - fillerPenalty + clarityBonus)

	var bits []string
	if lengthScore < 4 {
		bits = append(bits, "Expand with more concrete details and examples.")
	}
	if fillerPenalty > 0 {
		bits = append(bits, "Reduce filler words to improve clarity.")
	}
	if clarityBonus == 0 {
		bits = append(bits, "Structure your answer with reasoning connectors (e.g., 'because').")
	}
	if len(bits) == 0 {
		bits = append(bits, "Well-structured and sufficiently detailed answer.")
	}
	return strings.Join(bits, " "), score
}

func clamp(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 10.0 {
		return 10.0
	}
	return v
}
