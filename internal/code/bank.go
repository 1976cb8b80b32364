// Package code holds the coding-question bank and the heuristic code assessor.
package code

import (
	_ "embed"
	"fmt"
	"math/rand"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var bankYAML []byte

// Question is an immutable coding challenge from the static bank.
type Question struct {
	ProblemStatement string   `json:"problem_statement" yaml:"problem_statement"`
	Examples         []string `json:"examples" yaml:"examples"`
	Constraints      []string `json:"constraints" yaml:"constraints"`
	Difficulty       string   `json:"difficulty" yaml:"difficulty"`
	Category         string   `json:"category" yaml:"category"`
}

// Fixture is a worked example used only to estimate a pass count. It is never
// executed.
type Fixture struct {
	Input    string `yaml:"input"`
	Expected string `yaml:"expected"`
}

type bankCategory struct {
	Questions []Question `yaml:"questions"`
	Fixtures  []Fixture  `yaml:"fixtures"`
}

type bankDocument struct {
	Categories map[string]bankCategory `yaml:"categories"`
}

// Bank is the static, read-only coding-question and fixture bank.
type Bank struct {
	categories map[string]bankCategory
}

// codingRoleKeywords gates which roles receive a coding question at all.
var codingRoleKeywords = []string{
	"backend", "frontend", "fullstack", "software", "developer", "engineer",
	"programmer", "data scientist", "machine learning", "devops", "sre",
}

func NewBank() (*Bank, error) {
	var doc bankDocument
	if err := yaml.Unmarshal(bankYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("question bank has no categories")
	}
	for name, cat := range doc.Categories {
		for i := range cat.Questions {
			cat.Questions[i].Category = name
		}
		doc.Categories[name] = cat
	}
	return &Bank{categories: doc.Categories}, nil
}

// Categories lists every category in the bank.
func (b *Bank) Categories() []string {
	out := make([]string, 0, len(b.categories))
	for name := range b.categories {
		out = append(out, name)
	}
	return out
}

// FixturesFor returns the fixture test cases for a category. Categories with
// no fixtures yield an empty slice.
func (b *Bank) FixturesFor(category string) []Fixture {
	return b.categories[category].Fixtures
}

// QuestionFor picks a coding question appropriate for the role and seniority,
// or nil when the role is non-technical. Difficulty preference follows the
// seniority: junior levels get easy, mid gets easy/medium, senior and above
// get medium/hard.
func (b *Bank) QuestionFor(role, seniority string) *Question {
	roleLower := strings.ToLower(role)
	coding := false
	for _, kw := range codingRoleKeywords {
		if strings.Contains(roleLower, kw) {
			coding = true
			break
		}
	}
	if !coding {
		return nil
	}

	var preferred []string
	switch strings.ToLower(seniority) {
	case "junior", "entry", "intern":
		preferred = []string{"easy"}
	case "mid", "middle", "intermediate":
		preferred = []string{"easy", "medium"}
	default:
		preferred = []string{"medium", "hard"}
	}

	var eligible []Question
	for _, cat := range b.categories {
		for _, q := range cat.Questions {
			for _, d := range preferred {
				if q.Difficulty == d {
					eligible = append(eligible, q)
					break
				}
			}
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	picked := eligible[rand.Intn(len(eligible))]
	return &picked
}
