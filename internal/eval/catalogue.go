// Package eval is the evaluation harness: it generates a fixed catalogue of
// synthetic test cases, drives each through the full agent pipeline, scores
// the responses, and aggregates everything into a persisted report.
package eval

import (
	"encoding/json"
	"fmt"
	"os"
)

// Suites group test cases for threshold lookup and reporting.
const (
	SuiteBasic   = "basic"
	SuiteComplex = "complex"
	SuiteEdge    = "edge-case"
)

// TestCase is one synthetic evaluation scenario. The catalogue is fixed;
// cases are never mutated after generation.
type TestCase struct {
	ID             string   `json:"id"`
	Suite          string   `json:"suite"`
	Query          string   `json:"query"`
	ExpectedTopics []string `json:"expected_topics"`
	ExpectedTools  []string `json:"expected_tools"`
	Difficulty     string   `json:"difficulty"`
	Category       string   `json:"category"`
	GroundTruth    string   `json:"ground_truth,omitempty"`
}

// BasicCases returns the definitional and current-events scenarios.
func BasicCases() []TestCase {
	return []TestCase{
		{
			ID:             "basic_001",
			Suite:          SuiteBasic,
			Query:          "What is artificial intelligence?",
			ExpectedTopics: []string{"AI", "machine learning", "technology"},
			ExpectedTools:  []string{"knowledge_base"},
			Difficulty:     "easy",
			Category:       "definition",
			GroundTruth:    "AI is a branch of computer science that aims to create intelligent machines.",
		},
		{
			ID:             "basic_002",
			Suite:          SuiteBasic,
			Query:          "Explain the concept of machine learning",
			ExpectedTopics: []string{"ML", "algorithms", "data"},
			ExpectedTools:  []string{"knowledge_base"},
			Difficulty:     "easy",
			Category:       "explanation",
		},
		{
			ID:             "basic_003",
			Suite:          SuiteBasic,
			Query:          "What are the latest developments in quantum computing?",
			ExpectedTopics: []string{"quantum", "computing", "recent"},
			ExpectedTools:  []string{"web_search"},
			Difficulty:     "medium",
			Category:       "current_events",
		},
		{
			ID:             "basic_004",
			Suite:          SuiteBasic,
			Query:          "How does climate change affect biodiversity?",
			ExpectedTopics: []string{"climate", "biodiversity", "environment"},
			ExpectedTools:  []string{"knowledge_base", "web_search"},
			Difficulty:     "medium",
			Category:       "scientific",
		},
		{
			ID:             "basic_005",
			Suite:          SuiteBasic,
			Query:          "What happened in the latest SpaceX launch?",
			ExpectedTopics: []string{"SpaceX", "launch", "space"},
			ExpectedTools:  []string{"web_search"},
			Difficulty:     "easy",
			Category:       "current_events",
		},
	}
}

// ComplexCases returns the comparative and analytical scenarios.
func ComplexCases() []TestCase {
	return []TestCase{
		{
			ID:             "complex_001",
			Suite:          SuiteComplex,
			Query:          "Compare the economic impacts of renewable energy adoption versus traditional fossil fuels in developing countries",
			ExpectedTopics: []string{"renewable energy", "economics", "developing countries"},
			ExpectedTools:  []string{"knowledge_base", "web_search"},
			Difficulty:     "hard",
			Category:       "comparative_analysis",
		},
		{
			ID:             "complex_002",
			Suite:          SuiteComplex,
			Query:          "What are the ethical implications of AI in healthcare decision-making?",
			ExpectedTopics: []string{"AI ethics", "healthcare", "decision making"},
			ExpectedTools:  []string{"knowledge_base"},
			Difficulty:     "hard",
			Category:       "ethics",
		},
		{
			ID:             "complex_003",
			Suite:          SuiteComplex,
			Query:          "Analyze the relationship between social media usage and mental health in teenagers",
			ExpectedTopics: []string{"social media", "mental health", "teenagers"},
			ExpectedTools:  []string{"knowledge_base", "web_search"},
			Difficulty:     "hard",
			Category:       "social_research",
		},
	}
}

// EdgeCases returns the degenerate-input scenarios.
func EdgeCases() []TestCase {
	return []TestCase{
		{
			ID:            "edge_001",
			Suite:         SuiteEdge,
			Query:         "",
			ExpectedTools: []string{},
			Difficulty:    "edge",
			Category:      "empty_query",
		},
		{
			ID:            "edge_002",
			Suite:         SuiteEdge,
			Query:         "asdjfkl asdlkfj aslkdfj",
			ExpectedTools: []string{"knowledge_base"},
			Difficulty:    "edge",
			Category:      "nonsense_query",
		},
		{
			ID:             "edge_003",
			Suite:          SuiteEdge,
			Query:          "Tell me everything about everything",
			ExpectedTopics: []string{"general"},
			ExpectedTools:  []string{"knowledge_base"},
			Difficulty:     "edge",
			Category:       "overly_broad",
		},
		{
			ID:             "edge_004",
			Suite:          SuiteEdge,
			Query:          "What is the exact temperature in New York City at this very moment?",
			ExpectedTopics: []string{"weather", "current"},
			ExpectedTools:  []string{"web_search"},
			Difficulty:     "edge",
			Category:       "impossible_precision",
		},
	}
}

// Catalogue returns the complete fixed test catalogue in run order.
func Catalogue() []TestCase {
	var cases []TestCase
	cases = append(cases, BasicCases()...)
	cases = append(cases, ComplexCases()...)
	cases = append(cases, EdgeCases()...)
	return cases
}

// SaveCatalogue writes the full catalogue as indented JSON to path.
func SaveCatalogue(path string) error {
	data, err := json.MarshalIndent(Catalogue(), "", "  ")
	if err != nil {
		return fmt.Errorf("eval: marshal catalogue: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("eval: write catalogue: %w", err)
	}
	return nil
}
