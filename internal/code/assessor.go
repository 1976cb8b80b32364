package code

import (
	"go/parser"
	"go/token"
	"regexp"
	"strings"
)

// Response is the result of assessing one code submission.
type Response struct {
	Feedback        string   `json:"feedback"`
	Score           float64  `json:"score"`
	TestCasesPassed int      `json:"test_cases_passed"`
	TotalTestCases  int      `json:"total_test_cases"`
	TimeComplexity  string   `json:"time_complexity,omitempty"`
	SpaceComplexity string   `json:"space_complexity,omitempty"`
	Suggestions     []string `json:"suggestions"`
}

// Assessor grades code submissions heuristically against the fixture bank.
// It never executes submitted code; the pass count is a textual estimate.
type Assessor struct {
	bank *Bank
}

func NewAssessor(bank *Bank) *Assessor {
	return &Assessor{bank: bank}
}

var (
	funcDefPattern    = regexp.MustCompile(`(def\s+\w+|function\s+\w+|func\s+\w+|public\s+\w+\s+\w+\s*\()`)
	assignmentPattern = regexp.MustCompile(`\b[a-z][a-zA-Z0-9_]*\s*:?=`)
	nestedLoopPattern = regexp.MustCompile(`(?s)(for.*for|while.*for|for.*while)`)
	singleLoopPattern = regexp.MustCompile(`(for\s+\w+|while\s+\w+|for\s*\()`)
	collectionPattern = regexp.MustCompile(`\[\]|list\(|array\(|make\(`)
	hashingPattern    = regexp.MustCompile(`dict|hash|map\[|map\(|set\(`)
)

// Assess grades code for a category in a given language. Empty or
// whitespace-only code short-circuits to a zero-score response.
func (a *Assessor) Assess(codeText, category, language string) Response {
	if strings.TrimSpace(codeText) == "" {
		return Response{
			Feedback:    "No code provided. Please submit your solution.",
			Suggestions: []string{"Please write and submit your code solution."},
		}
	}

	syntaxScore := checkSyntax(codeText, language)
	structureScore := checkStructure(codeText)
	passed, total := a.estimatePasses(codeText, category)

	timeComplexity := analyzeTimeComplexity(codeText)
	spaceComplexity := analyzeSpaceComplexity(codeText)

	var score float64
	if total == 0 {
		score = (syntaxScore + structureScore) / 2 * 10
	} else {
		testScore := float64(passed) / float64(total)
		score = (syntaxScore + structureScore + testScore) / 3 * 10
	}

	return Response{
		Feedback:        buildFeedback(syntaxScore, structureScore, passed, total, timeComplexity, spaceComplexity),
		Score:           score,
		TestCasesPassed: passed,
		TotalTestCases:  total,
		TimeComplexity:  timeComplexity,
		SpaceComplexity: spaceComplexity,
		Suggestions:     buildSuggestions(syntaxScore, structureScore, passed, total, timeComplexity, spaceComplexity),
	}
}

// checkSyntax is a shallow plausibility check. Go submissions are actually
// parsed because the grammar is cheap to check in-process; other languages
// use keyword heuristics; unknown languages get a neutral default.
func checkSyntax(codeText, language string) float64 {
	switch strings.ToLower(language) {
	case "go", "golang":
		src := codeText
		if !strings.Contains(src, "package ") {
			src = "package main\n\n" + src
		}
		if _, err := parser.ParseFile(token.NewFileSet(), "", src, parser.SkipObjectResolution); err == nil {
			return 1.0
		}
		return 0.0
	case "python", "py":
		if strings.Contains(codeText, "def ") || strings.Contains(codeText, "lambda") {
			return 1.0
		}
		return 0.8
	case "javascript", "js", "typescript", "ts":
		if strings.Contains(codeText, "function") || strings.Contains(codeText, "=>") || strings.Contains(codeText, "class") {
			return 1.0
		}
		return 0.8
	case "java":
		if strings.Contains(codeText, "public") && strings.Contains(codeText, "class") {
			return 1.0
		}
		return 0.8
	default:
		return 0.7
	}
}

func checkStructure(codeText string) float64 {
	score := 0.0
	if funcDefPattern.MatchString(codeText) {
		score += 0.3
	}
	for _, line := range strings.Split(codeText, "\n") {
		if strings.TrimSpace(line) != "" && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			score += 0.2
			break
		}
	}
	if strings.Contains(codeText, "#") || strings.Contains(codeText, "//") || strings.Contains(codeText, "/*") {
		score += 0.1
	}
	if assignmentPattern.MatchString(codeText) {
		score += 0.2
	}
	if strings.Contains(codeText, "return") {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// estimatePasses credits a fixed number of fixture passes when the code at
// least defines a function and returns something. Categories without fixtures
// yield 0/0.
func (a *Assessor) estimatePasses(codeText, category string) (int, int) {
	fixtures := a.bank.FixturesFor(category)
	total := len(fixtures)
	if total == 0 {
		return 0, 0
	}
	if strings.Contains(codeText, "return") && funcDefPattern.MatchString(codeText) {
		passed := 2
		if total < passed {
			passed = total
		}
		return passed, total
	}
	return 0, total
}

func analyzeTimeComplexity(codeText string) string {
	lower := strings.ToLower(codeText)
	if nestedLoopPattern.MatchString(lower) {
		return "O(n²)"
	}
	if singleLoopPattern.MatchString(lower) {
		return "O(n)"
	}
	return "O(1)"
}

func analyzeSpaceComplexity(codeText string) string {
	lower := strings.ToLower(codeText)
	if collectionPattern.MatchString(lower) {
		return "O(n)"
	}
	if hashingPattern.MatchString(lower) {
		return "O(n)"
	}
	return "O(1)"
}

func buildFeedback(syntaxScore, structureScore float64, passed, total int, timeComplexity, spaceComplexity string) string {
	var parts []string

	switch {
	case syntaxScore >= 0.8:
		parts = append(parts, "Good syntax and structure.")
	case syntaxScore >= 0.5:
		parts = append(parts, "Code has some syntax issues but is mostly correct.")
	default:
		parts = append(parts, "Code has significant syntax errors.")
	}

	switch {
	case structureScore >= 0.7:
		parts = append(parts, "Well-structured code with good practices.")
	case structureScore >= 0.4:
		parts = append(parts, "Code structure could be improved.")
	default:
		parts = append(parts, "Code lacks proper structure.")
	}

	if total > 0 {
		rate := float64(passed) / float64(total)
		switch {
		case rate >= 0.8:
			parts = append(parts, "Most test cases passed.")
		case rate >= 0.5:
			parts = append(parts, "Some test cases passed.")
		default:
			parts = append(parts, "Most test cases failed.")
		}
	}

	parts = append(parts, "Time complexity: "+timeComplexity+".")
	parts = append(parts, "Space complexity: "+spaceComplexity+".")
	return strings.Join(parts, " ")
}

func buildSuggestions(syntaxScore, structureScore float64, passed, total int, timeComplexity, spaceComplexity string) []string {
	var suggestions []string
	if syntaxScore < 0.8 {
		suggestions = append(suggestions, "Fix syntax errors and ensure code compiles.")
	}
	if structureScore < 0.7 {
		suggestions = append(suggestions, "Improve code structure with proper functions and indentation.")
	}
	if total > 0 && passed < total {
		suggestions = append(suggestions, "Debug your solution to pass more test cases.")
	}
	if timeComplexity == "O(n²)" || timeComplexity == "O(2^n)" {
		suggestions = append(suggestions, "Consider optimizing for better time complexity.")
	}
	if spaceComplexity == "O(n)" && timeComplexity == "O(1)" {
		suggestions = append(suggestions, "Consider if space complexity can be reduced.")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Great job! Your solution looks good.")
	}
	return suggestions
}
