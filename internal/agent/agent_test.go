package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/MrWong99/inquiro/internal/config"
	"github.com/MrWong99/inquiro/internal/router"
	"github.com/MrWong99/inquiro/internal/tool"
	mocktool "github.com/MrWong99/inquiro/internal/tool/mock"
	"github.com/MrWong99/inquiro/pkg/provider/llm"
	mockllm "github.com/MrWong99/inquiro/pkg/provider/llm/mock"
)

func testRegistry(t *testing.T) (*tool.Registry, *mocktool.Tool, *mocktool.Tool) {
	t.Helper()
	search := &mocktool.Tool{ToolName: "web_search", Payload: "search results", Sources: []string{"https://example.com"}}
	kb := &mocktool.Tool{ToolName: "knowledge_base", Payload: "stored facts", Sources: []string{"internal_knowledge_base"}}

	reg := tool.NewRegistry()
	if err := reg.Register(search, tool.CapabilityCurrentEvents); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(kb, tool.CapabilityGeneralKnowledge); err != nil {
		t.Fatal(err)
	}
	return reg, search, kb
}

func TestProcessQuery_BasicDefinitionalQuery(t *testing.T) {
	reg, search, kb := testRegistry(t)
	provider := &mockllm.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "AI is the study of intelligent machines."},
	}
	a := New(config.Default(), provider, reg, nil)

	out := a.ProcessQuery(context.Background(), "What is artificial intelligence?")

	if out.Category != router.CategoryBasic {
		t.Errorf("Category = %q, want basic", out.Category)
	}
	if len(out.ToolsRequested) != 1 || out.ToolsRequested[0] != "knowledge_base" {
		t.Errorf("ToolsRequested = %v, want [knowledge_base]", out.ToolsRequested)
	}
	resp := out.Response
	if resp.Text == "" {
		t.Error("response text is empty")
	}
	if resp.Confidence < 0.5 {
		t.Errorf("Confidence = %v, want >= 0.5", resp.Confidence)
	}
	if len(resp.ToolsUsed) != 1 || resp.ToolsUsed[0] != "knowledge_base" {
		t.Errorf("ToolsUsed = %v, want [knowledge_base]", resp.ToolsUsed)
	}
	if kb.CallCount() != 1 {
		t.Errorf("knowledge_base invoked %d times, want 1", kb.CallCount())
	}
	if search.CallCount() != 0 {
		t.Errorf("web_search invoked %d times, want 0", search.CallCount())
	}
	if resp.Latency <= 0 {
		t.Error("latency not stamped")
	}
}

func TestProcessQuery_EmptyQuerySkipsTools(t *testing.T) {
	reg, search, kb := testRegistry(t)
	provider := &mockllm.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "should never be called"},
	}
	a := New(config.Default(), provider, reg, nil)

	out := a.ProcessQuery(context.Background(), "   ")

	resp := out.Response
	if !resp.Degraded {
		t.Error("empty query must yield a degraded response")
	}
	if resp.Text == "" {
		t.Error("degraded response text is empty")
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		t.Errorf("Confidence = %v, out of [0,1]", resp.Confidence)
	}
	if search.CallCount() != 0 || kb.CallCount() != 0 {
		t.Errorf("tools invoked on empty query: %d, %d, want 0, 0", search.CallCount(), kb.CallCount())
	}
	if len(provider.Calls()) != 0 {
		t.Error("generation service called on empty query")
	}
	if a.Memory().Len() != 0 {
		t.Errorf("memory turns = %d, want 0 for empty query", a.Memory().Len())
	}
}

func TestProcessQuery_GenerationFailureDegrades(t *testing.T) {
	reg, _, _ := testRegistry(t)
	provider := &mockllm.Provider{CompleteErr: errors.New("forced timeout")}

	cfg := config.Default()
	cfg.Generation.DegradedConfidence = 0.2
	a := New(cfg, provider, reg, nil)

	out := a.ProcessQuery(context.Background(), "Explain machine learning")

	resp := out.Response
	if !resp.Degraded {
		t.Fatal("response not marked degraded after generation failure")
	}
	if resp.Confidence != 0.2 {
		t.Errorf("Confidence = %v, want configured fallback constant 0.2", resp.Confidence)
	}
	if a.Memory().Len() != 1 {
		t.Errorf("memory turns = %d, want exactly 1", a.Memory().Len())
	}
}

func TestProcessQuery_ConfidenceAlwaysInRange(t *testing.T) {
	reg, _, _ := testRegistry(t)

	providers := map[string]*mockllm.Provider{
		"success":  {CompleteResponse: &llm.CompletionResponse{Content: "fine"}},
		"degraded": {CompleteErr: errors.New("down")},
	}
	queries := []string{
		"What is artificial intelligence?",
		"Compare renewable energy versus fossil fuels",
		"asdjfkl asdlkfj aslkdfj",
		"",
	}

	for name, provider := range providers {
		t.Run(name, func(t *testing.T) {
			a := New(config.Default(), provider, reg, nil)
			for _, q := range queries {
				out := a.ProcessQuery(context.Background(), q)
				if c := out.Response.Confidence; c < 0 || c > 1 {
					t.Errorf("query %q: confidence %v out of [0,1]", q, c)
				}
			}
		})
	}
}

func TestProcessQuery_MemoryCarriesAcrossTurns(t *testing.T) {
	reg, _, _ := testRegistry(t)
	provider := &mockllm.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "an answer"},
	}
	a := New(config.Default(), provider, reg, nil)

	a.ProcessQuery(context.Background(), "What is artificial intelligence?")
	a.ProcessQuery(context.Background(), "Explain machine learning")

	if a.Memory().Len() != 2 {
		t.Fatalf("memory turns = %d, want 2", a.Memory().Len())
	}

	// The second call must have replayed the first exchange as context.
	calls := provider.Calls()
	if len(calls) != 2 {
		t.Fatalf("provider calls = %d, want 2", len(calls))
	}
	second := calls[1].Req.Messages
	if len(second) < 3 {
		t.Fatalf("second request carries %d messages, want prior turn plus query", len(second))
	}
	if second[0].Content != "What is artificial intelligence?" {
		t.Errorf("prior query not replayed: %q", second[0].Content)
	}
}

func TestReset_ClearsMemory(t *testing.T) {
	reg, _, _ := testRegistry(t)
	provider := &mockllm.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "an answer"},
	}
	a := New(config.Default(), provider, reg, nil)

	a.ProcessQuery(context.Background(), "What is artificial intelligence?")
	a.Reset()

	if a.Memory().Len() != 0 {
		t.Errorf("memory turns after Reset = %d, want 0", a.Memory().Len())
	}
	if got := a.Memory().Recent(5); len(got) != 0 {
		t.Errorf("Recent(5) after Reset returned %d turns", len(got))
	}
}
