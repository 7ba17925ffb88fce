package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrWong99/inquiro/internal/agent"
	"github.com/MrWong99/inquiro/internal/config"
)

// AgentFactory builds a fresh agent session. The harness calls it once per
// test case so cases cannot contaminate each other's conversation memory.
type AgentFactory func() *agent.Agent

// Harness runs the synthetic catalogue through the agent pipeline and
// aggregates the scored results into a [Report].
type Harness struct {
	factory AgentFactory
	cfg     config.EvalConfig
}

// NewHarness creates a harness using factory for per-case sessions.
func NewHarness(factory AgentFactory, cfg config.EvalConfig) *Harness {
	return &Harness{factory: factory, cfg: cfg}
}

// Run executes the full catalogue sequentially and returns the aggregated
// report. Per-case failures (timeouts, panics) are recorded as failed
// results and never abort the remaining cases.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	cases := Catalogue()
	slog.Info("starting evaluation", "cases", len(cases))

	results := make([]TestResult, 0, len(cases))
	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("eval: run aborted: %w", err)
		}

		results = append(results, h.runCase(ctx, tc))

		done := i + 1
		if done%h.cfg.TestBatchSize == 0 || done == len(cases) {
			slog.Info("evaluation progress", "completed", done, "total", len(cases))
		}
	}

	report := buildReport(results)
	slog.Info("evaluation completed",
		"passed", report.PassedTests,
		"failed", report.FailedTests,
		"accuracy", report.EvaluationSummary.Accuracy)
	return report, nil
}

// runCase drives one test case through a fresh agent session under the
// per-case timeout. A panic inside the pipeline is caught and recorded as a
// failed result.
func (h *Harness) runCase(ctx context.Context, tc TestCase) (result TestResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("test case panicked", "case", tc.ID, "panic", r)
			result = failedResult(tc, time.Since(start), fmt.Sprintf("pipeline panic: %v", r))
		}
	}()

	caseCtx, cancel := context.WithTimeout(ctx, h.cfg.CaseTimeout.Std())
	defer cancel()

	session := h.factory()
	out := session.ProcessQuery(caseCtx, tc.Query)
	elapsed := time.Since(start)

	if errors.Is(caseCtx.Err(), context.DeadlineExceeded) {
		slog.Warn("test case timed out", "case", tc.ID, "timeout", h.cfg.CaseTimeout.Std())
		return failedResult(tc, elapsed, fmt.Sprintf("case exceeded timeout of %s", h.cfg.CaseTimeout.Std()))
	}

	return score(tc, out, elapsed, h.cfg.ThresholdsFor(tc.Suite))
}
