package eval

import (
	"strings"
	"time"

	"github.com/MrWong99/inquiro/internal/agent"
	"github.com/MrWong99/inquiro/internal/config"
)

// defaultRelevance is assigned when a case carries no expected topics, so
// topic-free edge cases neither reward nor punish the relevance mean.
const defaultRelevance = 0.8

// Scores holds the per-case metric values.
type Scores struct {
	ToolSelectionAccuracy float64 `json:"tool_selection_accuracy"`
	Relevance             float64 `json:"relevance"`
	ResponseTime          float64 `json:"response_time"`
	Confidence            float64 `json:"confidence"`
	CitationPresent       bool    `json:"citation_present"`
}

// TestResult is the scored outcome of one test case.
type TestResult struct {
	TestCaseID    string   `json:"test_case_id"`
	Suite         string   `json:"suite"`
	Query         string   `json:"query"`
	ResponseText  string   `json:"response_content"`
	ToolsUsed     []string `json:"tools_used"`
	ExpectedTools []string `json:"expected_tools"`
	Confidence    float64  `json:"confidence"`
	Sources       []string `json:"sources"`
	Degraded      bool     `json:"degraded"`
	Metrics       Scores   `json:"metrics"`
	Passed        bool     `json:"passed"`
	Diagnostic    string   `json:"diagnostic,omitempty"`
}

// score evaluates one pipeline outcome against its test case.
func score(tc TestCase, out *agent.Result, elapsed time.Duration, t config.Thresholds) TestResult {
	resp := out.Response
	metrics := Scores{
		ToolSelectionAccuracy: toolSelectionAccuracy(resp.ToolsUsed, tc.ExpectedTools),
		Relevance:             relevance(resp.Text, tc.ExpectedTopics),
		ResponseTime:          elapsed.Seconds(),
		Confidence:            resp.Confidence,
		CitationPresent:       len(resp.Citations) > 0,
	}

	return TestResult{
		TestCaseID:    tc.ID,
		Suite:         tc.Suite,
		Query:         tc.Query,
		ResponseText:  resp.Text,
		ToolsUsed:     resp.ToolsUsed,
		ExpectedTools: tc.ExpectedTools,
		Confidence:    resp.Confidence,
		Sources:       resp.Citations,
		Degraded:      resp.Degraded,
		Metrics:       metrics,
		Passed:        passed(tc, resp.Text, resp.Confidence, t),
	}
}

// failedResult records a case that could not be scored normally, with a
// diagnostic note of what went wrong.
func failedResult(tc TestCase, elapsed time.Duration, diagnostic string) TestResult {
	return TestResult{
		TestCaseID:    tc.ID,
		Suite:         tc.Suite,
		Query:         tc.Query,
		ExpectedTools: tc.ExpectedTools,
		Metrics: Scores{
			Relevance:    relevance("", tc.ExpectedTopics),
			ResponseTime: elapsed.Seconds(),
		},
		Passed:     false,
		Diagnostic: diagnostic,
	}
}

// passed applies the configurable pass checks: non-empty response text,
// confidence at or above the minimum, and (outside the edge-case suite)
// at least one expected topic keyword present in the response.
func passed(tc TestCase, text string, confidence float64, t config.Thresholds) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if confidence < t.MinConfidence {
		return false
	}
	if tc.Suite == SuiteEdge {
		return true
	}
	lower := strings.ToLower(text)
	for _, topic := range tc.ExpectedTopics {
		if strings.Contains(lower, strings.ToLower(topic)) {
			return true
		}
	}
	return len(tc.ExpectedTopics) == 0
}

// toolSelectionAccuracy is the intersection-over-union of the actual and
// expected tool sets. Two empty sets count as a perfect match.
func toolSelectionAccuracy(actual, expected []string) float64 {
	actualSet := toSet(actual)
	expectedSet := toSet(expected)

	if len(actualSet) == 0 && len(expectedSet) == 0 {
		return 1.0
	}

	intersection := 0
	for id := range actualSet {
		if expectedSet[id] {
			intersection++
		}
	}
	union := len(actualSet) + len(expectedSet) - intersection
	return float64(intersection) / float64(union)
}

// relevance is the fraction of expected topic keywords found in the response
// text by case-insensitive containment. Cases without topics get a fixed
// default score.
func relevance(text string, topics []string) float64 {
	if len(topics) == 0 {
		return defaultRelevance
	}
	lower := strings.ToLower(text)
	matches := 0
	for _, topic := range topics {
		if strings.Contains(lower, strings.ToLower(topic)) {
			matches++
		}
	}
	return float64(matches) / float64(len(topics))
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
