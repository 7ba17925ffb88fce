package router

import (
	"errors"
	"reflect"
	"testing"

	"github.com/MrWong99/inquiro/internal/tool"
	mocktool "github.com/MrWong99/inquiro/internal/tool/mock"
)

func newTestRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	reg := tool.NewRegistry()
	if err := reg.Register(&mocktool.Tool{ToolName: "web_search"}, tool.CapabilityCurrentEvents); err != nil {
		t.Fatalf("register web_search: %v", err)
	}
	if err := reg.Register(&mocktool.Tool{ToolName: "knowledge_base"}, tool.CapabilityGeneralKnowledge); err != nil {
		t.Fatalf("register knowledge_base: %v", err)
	}
	return reg
}

func TestClassify_EmptyQuery(t *testing.T) {
	r := New(newTestRegistry(t))

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := r.Classify(query)
		if !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("Classify(%q) error = %v, want ErrEmptyQuery", query, err)
		}
	}
}

func TestClassify_Scenarios(t *testing.T) {
	r := New(newTestRegistry(t))

	tests := []struct {
		name      string
		query     string
		wantCat   Category
		wantTools []string
	}{
		{
			name:      "definitional query",
			query:     "What is artificial intelligence?",
			wantCat:   CategoryBasic,
			wantTools: []string{"knowledge_base"},
		},
		{
			name:      "explanation query",
			query:     "Explain the concept of machine learning",
			wantCat:   CategoryBasic,
			wantTools: []string{"knowledge_base"},
		},
		{
			name:      "current events query",
			query:     "What are the latest developments in quantum computing?",
			wantCat:   CategoryBasic,
			wantTools: []string{"web_search"},
		},
		{
			name:      "comparative query selects both tools",
			query:     "Compare the economic impacts of renewable energy adoption versus traditional fossil fuels in developing countries",
			wantCat:   CategoryComplex,
			wantTools: []string{"knowledge_base", "web_search"},
		},
		{
			name:      "analytical query",
			query:     "Analyze the relationship between social media usage and mental health in teenagers",
			wantCat:   CategoryComplex,
			wantTools: []string{"knowledge_base", "web_search"},
		},
		{
			name:      "nonsense falls back to knowledge base",
			query:     "asdjfkl asdlkfj aslkdfj",
			wantCat:   CategoryEdgeCase,
			wantTools: []string{"knowledge_base"},
		},
		{
			name:      "overly broad request",
			query:     "Tell me everything about everything",
			wantCat:   CategoryEdgeCase,
			wantTools: []string{"knowledge_base"},
		},
		{
			name:    "impossible precision request",
			query:   "What is the exact temperature in New York City at this very moment?",
			wantCat: CategoryEdgeCase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Classify(tt.query)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCat)
			}
			if tt.wantTools != nil && !reflect.DeepEqual(got.RequiredTools, tt.wantTools) {
				t.Errorf("RequiredTools = %v, want %v", got.RequiredTools, tt.wantTools)
			}
			if len(got.RequiredTools) == 0 {
				t.Error("RequiredTools is empty; every non-empty query must select at least one tool")
			}
		})
	}
}

func TestClassify_FuzzyKeywordMatch(t *testing.T) {
	r := New(newTestRegistry(t))

	// "latst" is a typo of the current-events keyword "latest".
	got, err := r.Classify("What are the latst developments in quantum computing?")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !reflect.DeepEqual(got.RequiredTools, []string{"web_search"}) {
		t.Errorf("RequiredTools = %v, want [web_search]", got.RequiredTools)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	r := New(newTestRegistry(t))

	first, err := r.Classify("Compare renewable energy versus fossil fuels")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := r.Classify("Compare renewable energy versus fossil fuels")
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Classify() = %+v, want %+v", i, got, first)
		}
	}
}

func TestClassify_SparseRegistryStillResolves(t *testing.T) {
	reg := tool.NewRegistry()
	if err := reg.Register(&mocktool.Tool{ToolName: "web_search"}, tool.CapabilityCurrentEvents); err != nil {
		t.Fatalf("register: %v", err)
	}
	r := New(reg)

	// The query maps to general knowledge, which no tool covers; the router
	// must still return something rather than an empty set.
	got, err := r.Classify("What is artificial intelligence?")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !reflect.DeepEqual(got.RequiredTools, []string{"web_search"}) {
		t.Errorf("RequiredTools = %v, want [web_search]", got.RequiredTools)
	}
}
