package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SummaryMetrics are the six aggregate quality metrics of one run.
type SummaryMetrics struct {
	// Accuracy is the fraction of cases that passed.
	Accuracy float64 `json:"accuracy"`

	// Relevance is the mean per-case relevance score.
	Relevance float64 `json:"relevance"`

	// ToolSelectionAccuracy is the mean per-case intersection-over-union.
	ToolSelectionAccuracy float64 `json:"tool_selection_accuracy"`

	// ResponseTime is the mean per-case wall-clock duration in seconds.
	ResponseTime float64 `json:"response_time"`

	// ConfidenceCalibration is the mean reported response confidence.
	ConfidenceCalibration float64 `json:"confidence_calibration"`

	// SourceCitationRate is the fraction of cases carrying a citation.
	SourceCitationRate float64 `json:"source_citation_rate"`
}

// Report is the terminal artifact of one evaluation run.
type Report struct {
	RunID             string         `json:"run_id"`
	Timestamp         time.Time      `json:"timestamp"`
	EvaluationSummary SummaryMetrics `json:"evaluation_summary"`
	TotalTests        int            `json:"total_tests"`
	PassedTests       int            `json:"passed_tests"`
	FailedTests       int            `json:"failed_tests"`
	TestResults       []TestResult   `json:"test_results"`
}

// buildReport aggregates scored results into a report with a fresh run id.
func buildReport(results []TestResult) *Report {
	report := &Report{
		RunID:       uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		TotalTests:  len(results),
		TestResults: results,
	}
	if len(results) == 0 {
		return report
	}

	var relevance, toolAccuracy, responseTime, confidence float64
	cited := 0
	for _, r := range results {
		if r.Passed {
			report.PassedTests++
		}
		relevance += r.Metrics.Relevance
		toolAccuracy += r.Metrics.ToolSelectionAccuracy
		responseTime += r.Metrics.ResponseTime
		confidence += r.Metrics.Confidence
		if r.Metrics.CitationPresent {
			cited++
		}
	}
	report.FailedTests = report.TotalTests - report.PassedTests

	n := float64(len(results))
	report.EvaluationSummary = SummaryMetrics{
		Accuracy:              float64(report.PassedTests) / n,
		Relevance:             relevance / n,
		ToolSelectionAccuracy: toolAccuracy / n,
		ResponseTime:          responseTime / n,
		ConfidenceCalibration: confidence / n,
		SourceCitationRate:    float64(cited) / n,
	}
	return report
}

// Write persists the report as indented JSON under dir, creating the
// directory if needed. It returns the path of the written file.
func (r *Report) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("eval: create output dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("evaluation_report_%s.json", r.RunID))

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("eval: marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("eval: write report: %w", err)
	}
	return path, nil
}

// Summary renders a human-readable run summary for terminal output.
func (r *Report) Summary() string {
	var b strings.Builder
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "EVALUATION SUMMARY")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Total Tests: %d\n", r.TotalTests)
	fmt.Fprintf(&b, "Passed: %d\n", r.PassedTests)
	fmt.Fprintf(&b, "Failed: %d\n", r.FailedTests)
	fmt.Fprintf(&b, "Overall Accuracy: %.2f%%\n", r.EvaluationSummary.Accuracy*100)
	fmt.Fprintf(&b, "Average Relevance: %.2f%%\n", r.EvaluationSummary.Relevance*100)
	fmt.Fprintf(&b, "Tool Selection Accuracy: %.2f%%\n", r.EvaluationSummary.ToolSelectionAccuracy*100)
	fmt.Fprintf(&b, "Average Response Time: %.2fs\n", r.EvaluationSummary.ResponseTime)
	fmt.Fprintf(&b, "Source Citation Rate: %.2f%%\n", r.EvaluationSummary.SourceCitationRate*100)
	fmt.Fprint(&b, rule)
	return b.String()
}
