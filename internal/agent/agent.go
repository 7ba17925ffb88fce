// Package agent wires the query router, tool invoker, response synthesizer,
// and conversation memory into the research assistant pipeline.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MrWong99/inquiro/internal/config"
	"github.com/MrWong99/inquiro/internal/invoker"
	"github.com/MrWong99/inquiro/internal/memory"
	"github.com/MrWong99/inquiro/internal/observe"
	"github.com/MrWong99/inquiro/internal/router"
	"github.com/MrWong99/inquiro/internal/synthesizer"
	"github.com/MrWong99/inquiro/internal/tool"
	"github.com/MrWong99/inquiro/pkg/provider/llm"
)

// emptyQueryText is the response shown when the query contains no content.
const emptyQueryText = "I cannot process an empty query. Please ask me a question about a topic you would like to research."

// Result is the outcome of one processed query.
type Result struct {
	// Response is the synthesized answer. Never nil.
	Response *synthesizer.Response

	// Category is the router's classification of the query. Empty when the
	// query itself was empty.
	Category router.Category

	// ToolsRequested lists the tool identifiers the router selected, sorted.
	ToolsRequested []string

	// ToolResults holds one entry per requested tool.
	ToolResults map[string]tool.Result
}

// Agent is a single conversational session: one memory, one pipeline.
// Safe for concurrent use.
type Agent struct {
	registry *tool.Registry
	router   *router.Router
	invoker  *invoker.Invoker
	synth    *synthesizer.Synthesizer
	memory   *memory.Memory
	metrics  *observe.Metrics
	degraded float64
}

// New assembles an agent from the given configuration, generation provider,
// and tool registry.
func New(cfg *config.Config, provider llm.Provider, registry *tool.Registry, metrics *observe.Metrics) *Agent {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}

	mem := memory.New(cfg.Memory.WindowSize)
	return &Agent{
		registry: registry,
		router:   router.New(registry),
		invoker: invoker.New(invoker.Config{
			Registry: registry,
			Timeout:  cfg.Tools.Timeout.Std(),
			Metrics:  metrics,
		}),
		synth: synthesizer.New(synthesizer.Config{
			Provider:           provider,
			ProviderName:       cfg.Provider.Name,
			Memory:             mem,
			Metrics:            metrics,
			Temperature:        cfg.Generation.Temperature,
			TopP:               cfg.Generation.TopP,
			MaxTokens:          cfg.Generation.MaxOutputTokens,
			Timeout:            cfg.Generation.Timeout.Std(),
			ContextTurns:       cfg.Memory.ContextTurns,
			DegradedConfidence: cfg.Generation.DegradedConfidence,
		}),
		memory:   mem,
		metrics:  metrics,
		degraded: cfg.Generation.DegradedConfidence,
	}
}

// ProcessQuery runs the full pipeline for one user query: classify, invoke
// the selected tools concurrently, and synthesize a response. It never
// returns an error for a degenerate query; an empty query yields a degraded
// response without touching tools or memory.
func (a *Agent) ProcessQuery(ctx context.Context, query string) *Result {
	start := time.Now()
	defer func() {
		a.metrics.QueryDuration.Record(ctx, time.Since(start).Seconds())
	}()

	classification, err := a.router.Classify(query)
	if err != nil {
		if !errors.Is(err, router.ErrEmptyQuery) {
			slog.Warn("query classification failed", "err", err)
		}
		return &Result{
			Response: &synthesizer.Response{
				Text:       emptyQueryText,
				Confidence: a.degraded,
				Degraded:   true,
				Latency:    time.Since(start),
			},
		}
	}

	slog.Debug("query classified",
		"category", classification.Category,
		"tools", classification.RequiredTools)

	results, err := a.invoker.Invoke(ctx, classification.RequiredTools, query)
	if err != nil {
		// The router always selects at least one tool, so this only fires
		// when a registered tool disappeared under us.
		slog.Warn("tool invocation failed", "err", err)
		results = map[string]tool.Result{}
	}

	resp := a.synth.Synthesize(ctx, query, results)
	resp.Latency = time.Since(start)

	return &Result{
		Response:       resp,
		Category:       classification.Category,
		ToolsRequested: classification.RequiredTools,
		ToolResults:    results,
	}
}

// Memory exposes the session's conversation log.
func (a *Agent) Memory() *memory.Memory { return a.memory }

// Reset clears the session's conversation memory.
func (a *Agent) Reset() { a.memory.Clear() }
