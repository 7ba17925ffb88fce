package eval

import (
	"math"
	"testing"
	"time"

	"github.com/MrWong99/inquiro/internal/agent"
	"github.com/MrWong99/inquiro/internal/config"
	"github.com/MrWong99/inquiro/internal/synthesizer"
)

func TestToolSelectionAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		actual   []string
		expected []string
		want     float64
	}{
		{
			name:     "partial overlap",
			actual:   []string{"a", "b"},
			expected: []string{"b", "c"},
			want:     1.0 / 3.0,
		},
		{
			name: "both empty",
			want: 1.0,
		},
		{
			name:     "disjoint non-empty",
			actual:   []string{"a"},
			expected: []string{"b"},
			want:     0.0,
		},
		{
			name:     "exact match",
			actual:   []string{"knowledge_base", "web_search"},
			expected: []string{"web_search", "knowledge_base"},
			want:     1.0,
		},
		{
			name:     "actual empty expected non-empty",
			expected: []string{"knowledge_base"},
			want:     0.0,
		},
		{
			name:   "duplicates collapse to sets",
			actual: []string{"a", "a"},
			expected: []string{
				"a",
			},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toolSelectionAccuracy(tt.actual, tt.expected)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("toolSelectionAccuracy(%v, %v) = %v, want %v", tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		topics []string
		want   float64
	}{
		{
			name:   "all topics present case-insensitively",
			text:   "Machine Learning uses DATA and algorithms.",
			topics: []string{"machine learning", "data", "algorithms"},
			want:   1.0,
		},
		{
			name:   "partial match",
			text:   "This is about climate change.",
			topics: []string{"climate", "biodiversity"},
			want:   0.5,
		},
		{
			name: "no topics gets the default",
			text: "anything",
			want: defaultRelevance,
		},
		{
			name:   "no matches",
			text:   "completely unrelated",
			topics: []string{"quantum", "computing"},
			want:   0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := relevance(tt.text, tt.topics)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("relevance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPassed(t *testing.T) {
	thresholds := config.Thresholds{MinConfidence: 0.5}
	basicCase := TestCase{Suite: SuiteBasic, ExpectedTopics: []string{"AI", "technology"}}
	edgeCase := TestCase{Suite: SuiteEdge}

	tests := []struct {
		name       string
		tc         TestCase
		text       string
		confidence float64
		want       bool
	}{
		{
			name:       "meets all checks",
			tc:         basicCase,
			text:       "AI is transformative technology.",
			confidence: 0.9,
			want:       true,
		},
		{
			name:       "empty response fails",
			tc:         basicCase,
			text:       "   ",
			confidence: 0.9,
			want:       false,
		},
		{
			name:       "low confidence fails",
			tc:         basicCase,
			text:       "AI is transformative.",
			confidence: 0.2,
			want:       false,
		},
		{
			name:       "missing keywords fail outside edge suite",
			tc:         basicCase,
			text:       "unrelated response text",
			confidence: 0.9,
			want:       false,
		},
		{
			name:       "edge suite skips the keyword check",
			tc:         edgeCase,
			text:       "any non-empty text",
			confidence: 0.9,
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := passed(tt.tc, tt.text, tt.confidence, thresholds); got != tt.want {
				t.Errorf("passed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_CarriesResponseFields(t *testing.T) {
	tc := TestCase{
		ID:             "basic_001",
		Suite:          SuiteBasic,
		Query:          "What is artificial intelligence?",
		ExpectedTopics: []string{"AI"},
		ExpectedTools:  []string{"knowledge_base"},
	}
	out := &agent.Result{
		Response: &synthesizer.Response{
			Text:       "AI is a branch of computer science.",
			Confidence: 0.95,
			ToolsUsed:  []string{"knowledge_base"},
			Citations:  []string{"internal_knowledge_base"},
		},
	}

	res := score(tc, out, 120*time.Millisecond, config.Thresholds{MinConfidence: 0.5})

	if !res.Passed {
		t.Error("expected case to pass")
	}
	if res.Metrics.ToolSelectionAccuracy != 1.0 {
		t.Errorf("ToolSelectionAccuracy = %v, want 1.0", res.Metrics.ToolSelectionAccuracy)
	}
	if res.Metrics.Relevance != 1.0 {
		t.Errorf("Relevance = %v, want 1.0", res.Metrics.Relevance)
	}
	if !res.Metrics.CitationPresent {
		t.Error("CitationPresent = false, want true")
	}
	if res.Metrics.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", res.Metrics.Confidence)
	}
	if math.Abs(res.Metrics.ResponseTime-0.12) > 1e-9 {
		t.Errorf("ResponseTime = %v, want 0.12", res.Metrics.ResponseTime)
	}
}
