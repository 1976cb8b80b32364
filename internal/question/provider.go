// Package question supplies behavioral interview questions.
package question

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/preplab/preptalk/internal/brain"
)

// endToken is the reserved completion output that signals the interview
// should end. Compared case-insensitively after trimming.
const endToken = "END"

// fallbackBank is the fixed ordered list of topic-probing follow-ups used in
// rule-based mode. Selection is "first entry not yet asked".
var fallbackBank = []string{
	"Can you discuss a trade-off you considered in a recent project?",
	"Walk me through your debugging process for a tricky issue.",
	"How do you ensure reliability and observability in your systems?",
	"Describe a time you mentored someone or were mentored.",
	"How do you prioritize tasks when facing conflicting deadlines?",
}

// Provider generates the first and follow-up questions. With a brain client it
// delegates to generated questions; the first client failure flips the
// provider into rule-based mode for the rest of the process lifetime.
type Provider struct {
	client   brain.Client
	degraded atomic.Bool
}

func NewProvider(client brain.Client) *Provider {
	p := &Provider{client: client}
	if client == nil {
		p.degraded.Store(true)
	}
	return p
}

// Degraded reports whether the provider has fallen back to rule-based mode.
func (p *Provider) Degraded() bool { return p.degraded.Load() }

// First returns the opening question for a role and seniority. It never fails:
// generation errors degrade to the rule-based question.
func (p *Provider) First(ctx context.Context, role, seniority string) string {
	if !p.degraded.Load() {
		prompt := fmt.Sprintf(
			"You are an interviewer. Ask a single concise first question for a %s %s. "+
				"Focus on fundamentals. Output only the question.",
			seniority, role)
		q, err := p.client.Complete(ctx, prompt)
		if err == nil && strings.TrimSpace(q) != "" {
			return strings.TrimSpace(q)
		}
		p.degraded.Store(true)
		log.Printf("question provider degraded to rule-based mode: %v", err)
	}
	return firstFromRules(role, seniority)
}

// Next returns the follow-up question, or ("", false) when the interview
// should end: the fallback bank is exhausted or generation emitted the
// reserved end token.
func (p *Provider) Next(ctx context.Context, role, seniority, previousQuestion, answer, feedback string, asked []string) (string, bool) {
	if !p.degraded.Load() {
		prompt := fmt.Sprintf(
			"You are an interviewer. Based on the previous question and candidate's answer, ask the next question.\n"+
				"Role: %s\nSeniority: %s\n"+
				"Previous question: %s\nAnswer: %s\nYour feedback: %s\n"+
				"Ask a single concise next question that probes a different area. "+
				"If the interview should end, reply EXACTLY with: END.",
			role, seniority, previousQuestion, answer, feedback)
		q, err := p.client.Complete(ctx, prompt)
		if err == nil {
			q = strings.TrimSpace(q)
			if strings.EqualFold(q, endToken) {
				return "", false
			}
			if q != "" {
				return q, true
			}
		}
		if err != nil {
			p.degraded.Store(true)
			log.Printf("question provider degraded to rule-based mode: %v", err)
		}
	}
	return nextFromBank(asked)
}

func firstFromRules(role, seniority string) string {
	roleNorm := strings.ToLower(role)
	switch {
	case strings.Contains(roleNorm, "backend"):
		return "Explain how you would design a scalable REST API for a high-traffic service."
	case strings.Contains(roleNorm, "frontend"):
		return "How do you optimize performance in a large React application?"
	case strings.Contains(roleNorm, "data"):
		return "Describe how you would design a data pipeline for real-time analytics."
	}
	return fmt.Sprintf("What are the core responsibilities of a %s %s?", seniority, role)
}

func nextFromBank(asked []string) (string, bool) {
	for _, q := range fallbackBank {
		seen := false
		for _, a := range asked {
			if a == q {
				seen = true
				break
			}
		}
		if !seen {
			return q, true
		}
	}
	return "", false
}
