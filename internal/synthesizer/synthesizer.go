// Package synthesizer turns gathered tool results into a cited, scored
// response.
//
// The synthesizer builds a bounded generation context from recent conversation
// turns and successful tool payloads, calls the external generation service,
// and attaches a confidence score plus source citations. The generation call
// is an explicit two-path contract: the primary call goes through a circuit
// breaker with a timeout, and any failure (error, timeout, open breaker, or
// empty output) takes the deterministic local fallback path instead of
// propagating. Either way the completed exchange is appended to conversation
// memory exactly once.
package synthesizer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/MrWong99/inquiro/internal/memory"
	"github.com/MrWong99/inquiro/internal/observe"
	"github.com/MrWong99/inquiro/internal/resilience"
	"github.com/MrWong99/inquiro/internal/tool"
	"github.com/MrWong99/inquiro/pkg/provider/llm"
)

// DefaultDegradedConfidence is the confidence assigned to fallback responses
// when none is configured. It sits below the harness's default acceptance
// threshold so degraded answers are never mistaken for confident ones.
const DefaultDegradedConfidence = 0.2

// DefaultContextTurns is the number of recent memory turns included in the
// generation context when none is configured.
const DefaultContextTurns = 5

// systemPrompt instructs the model how to use the gathered context.
const systemPrompt = `You are a research assistant. Based on the provided context and tool results, give a comprehensive and helpful response to the user's query.

Guidelines:
1. Provide accurate information based on the context.
2. Be clear and concise.
3. Cite sources when available.
4. If uncertain, acknowledge limitations.`

// Response is the agent's answer to one query. It is immutable once produced.
type Response struct {
	// Text is the response text shown to the user.
	Text string

	// Confidence is the agent's self-assessed reliability in [0, 1].
	Confidence float64

	// ToolsUsed lists the identifiers of tools whose results succeeded,
	// sorted.
	ToolsUsed []string

	// Citations is the sorted union of source references from successful
	// tool results. May be empty.
	Citations []string

	// Latency is the total processing time for the query. Stamped by the
	// pipeline, not by the synthesizer.
	Latency time.Duration

	// Degraded reports whether this response came from the local fallback
	// path rather than the generation service.
	Degraded bool
}

// Config configures a [Synthesizer].
type Config struct {
	// Provider is the generation backend. Must not be nil.
	Provider llm.Provider

	// ProviderName labels the backend in logs and metrics.
	ProviderName string

	// Memory is the session's conversation log. Must not be nil.
	Memory *memory.Memory

	// Breaker guards generation calls. When nil a breaker with default
	// settings is created.
	Breaker *resilience.CircuitBreaker

	// Metrics receives latency and status recordings.
	// Defaults to [observe.DefaultMetrics] when nil.
	Metrics *observe.Metrics

	// Temperature, TopP, and MaxTokens are the sampling parameters forwarded
	// to the generation service.
	Temperature float64
	TopP        float64
	MaxTokens   int

	// Timeout bounds a single generation call. Default: 30s.
	Timeout time.Duration

	// ContextTurns is how many recent memory turns are included in the
	// generation context. Defaults to [DefaultContextTurns].
	ContextTurns int

	// DegradedConfidence is the fixed confidence assigned on the fallback
	// path. Defaults to [DefaultDegradedConfidence].
	DegradedConfidence float64
}

// Synthesizer builds responses from tool results and conversation memory.
// Safe for concurrent use; memory appends are serialized by the Memory itself.
type Synthesizer struct {
	provider     llm.Provider
	providerName string
	memory       *memory.Memory
	breaker      *resilience.CircuitBreaker
	metrics      *observe.Metrics

	temperature        float64
	topP               float64
	maxTokens          int
	timeout            time.Duration
	contextTurns       int
	degradedConfidence float64
}

// New creates a Synthesizer with the given configuration.
func New(cfg Config) *Synthesizer {
	if cfg.Breaker == nil {
		cfg.Breaker = resilience.New(resilience.Config{Name: "generation"})
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ContextTurns <= 0 {
		cfg.ContextTurns = DefaultContextTurns
	}
	if cfg.DegradedConfidence <= 0 {
		cfg.DegradedConfidence = DefaultDegradedConfidence
	}
	return &Synthesizer{
		provider:           cfg.Provider,
		providerName:       cfg.ProviderName,
		memory:             cfg.Memory,
		breaker:            cfg.Breaker,
		metrics:            cfg.Metrics,
		temperature:        cfg.Temperature,
		topP:               cfg.TopP,
		maxTokens:          cfg.MaxTokens,
		timeout:            cfg.Timeout,
		contextTurns:       cfg.ContextTurns,
		degradedConfidence: cfg.DegradedConfidence,
	}
}

// Synthesize produces the response for query from the given tool results.
// It never fails: when the generation service is unreachable the deterministic
// fallback response is returned, marked degraded. The completed exchange is
// appended to conversation memory exactly once on both paths.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results map[string]tool.Result) *Response {
	toolsUsed, citations := usedAndCited(results)

	req := llm.CompletionRequest{
		Messages:     s.buildMessages(query, results),
		SystemPrompt: systemPrompt,
		Temperature:  s.temperature,
		TopP:         s.topP,
		MaxTokens:    s.maxTokens,
	}

	text, err := s.generate(ctx, req)
	resp := &Response{
		ToolsUsed: toolsUsed,
		Citations: citations,
	}
	if err != nil {
		slog.Warn("generation failed, using fallback response",
			"provider", s.providerName, "err", err)
		s.metrics.DegradedResponses.Add(ctx, 1)

		resp.Text = FallbackText(query, results)
		resp.Confidence = s.degradedConfidence
		resp.Degraded = true
	} else {
		resp.Text = text
		resp.Confidence = confidence(results, len(citations) > 0)
	}

	s.memory.Append(query, resp.Text)
	return resp
}

// generate performs the primary generation call through the circuit breaker.
// An empty completion counts as a failure.
func (s *Synthesizer) generate(ctx context.Context, req llm.CompletionRequest) (string, error) {
	var content string

	start := time.Now()
	err := s.breaker.Execute(func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		resp, err := s.provider.Complete(callCtx, req)
		if err != nil {
			return err
		}
		if resp == nil || strings.TrimSpace(resp.Content) == "" {
			return fmt.Errorf("synthesizer: empty completion from provider %q", s.providerName)
		}
		content = resp.Content
		return nil
	})

	s.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordProviderRequest(ctx, s.providerName, "failure")
		s.metrics.RecordProviderError(ctx, s.providerName)
		return "", err
	}
	s.metrics.RecordProviderRequest(ctx, s.providerName, "success")
	return content, nil
}

// buildMessages assembles the bounded generation context: recent conversation
// turns, then one user message carrying the tool results and the query.
func (s *Synthesizer) buildMessages(query string, results map[string]tool.Result) []llm.Message {
	turns := s.memory.Recent(s.contextTurns)

	messages := make([]llm.Message, 0, len(turns)*2+1)
	for _, t := range turns {
		messages = append(messages,
			llm.Message{Role: "user", Content: t.Query},
			llm.Message{Role: "assistant", Content: t.Response},
		)
	}

	var b strings.Builder
	for _, id := range sortedIDs(results) {
		res := results[id]
		if res.Status != tool.StatusSuccess || res.Payload == "" {
			continue
		}
		fmt.Fprintf(&b, "%s results:\n%s\n", id, res.Payload)
		if len(res.Sources) > 0 {
			fmt.Fprintf(&b, "Sources: %s\n", strings.Join(res.Sources, ", "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User query: %s", query)

	return append(messages, llm.Message{Role: "user", Content: b.String()})
}

// FallbackText composes the deterministic degraded response from whatever
// tool payloads succeeded. It is a first-class function so the fallback path
// can be tested independently of the primary call.
func FallbackText(query string, results map[string]tool.Result) string {
	var parts []string
	for _, id := range sortedIDs(results) {
		res := results[id]
		if res.Status != tool.StatusSuccess || res.Payload == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s reported: %s", id, snippet(res.Payload)))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("I was unable to reach the generation service and no tool results are available for %q. Please try again.", query)
	}
	return fmt.Sprintf("The generation service is currently unavailable, so here is a summary of the gathered material for %q. %s",
		query, strings.Join(parts, " "))
}

// confidence scores a successful response: the fraction of requested tools
// that succeeded, capped at 0.9, with a small bump when at least one source
// is cited. Always in [0, 1].
func confidence(results map[string]tool.Result, cited bool) float64 {
	if len(results) == 0 {
		return 0
	}
	ok := 0
	for _, res := range results {
		if res.Status == tool.StatusSuccess {
			ok++
		}
	}

	c := float64(ok) / float64(len(results))
	if c > 0.9 {
		c = 0.9
	}
	if cited {
		c += 0.05
	}
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

// usedAndCited extracts the sorted successful tool ids and the sorted,
// deduplicated union of their source references.
func usedAndCited(results map[string]tool.Result) (used []string, citations []string) {
	seen := map[string]bool{}
	for _, id := range sortedIDs(results) {
		res := results[id]
		if res.Status != tool.StatusSuccess {
			continue
		}
		used = append(used, id)
		for _, src := range res.Sources {
			if src != "" && !seen[src] {
				seen[src] = true
				citations = append(citations, src)
			}
		}
	}
	sort.Strings(citations)
	return used, citations
}

// snippet trims a payload to a single readable line for the fallback text.
func snippet(payload string) string {
	const maxLen = 200
	s := strings.Join(strings.Fields(payload), " ")
	if len(s) > maxLen {
		s = s[:maxLen] + "…"
	}
	return s
}

// sortedIDs returns the result map's keys in sorted order for deterministic
// prompt and fallback construction.
func sortedIDs(results map[string]tool.Result) []string {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
