// Package router classifies incoming queries and selects the retrieval tools
// required to answer them.
//
// Classification is purely lexical: an ordered rule set matches keyword lists
// against the query (case-insensitive containment, with a deterministic
// Jaro-Winkler pass so near-miss spellings still route) and maps each hit to a
// tool capability. The union of all matched capabilities is resolved against
// the capability registry. For a fixed registry and rule set the same query
// always yields the same classification.
package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/MrWong99/inquiro/internal/tool"
)

// ErrEmptyQuery is returned by [Router.Classify] when the query is empty or
// whitespace-only. Callers must route this to a degraded "cannot process"
// response instead of invoking tools.
var ErrEmptyQuery = errors.New("router: query is empty")

// Category buckets a query by the kind of handling it needs.
type Category string

const (
	// CategoryBasic covers definitional and explanatory queries.
	CategoryBasic Category = "basic"

	// CategoryComplex covers comparative, analytical, and multi-domain queries.
	CategoryComplex Category = "complex"

	// CategoryEdgeCase covers degenerate inputs: nonsense text, overly broad
	// requests, and impossible-precision requests.
	CategoryEdgeCase Category = "edge-case"
)

// Classification is the result of classifying one query.
type Classification struct {
	// Category is the assigned query category.
	Category Category

	// RequiredTools is the non-empty, sorted set of tool identifiers to invoke.
	RequiredTools []string
}

// fuzzyThreshold is the minimum Jaro-Winkler score for a query word to count
// as a match against a single-word rule keyword.
const fuzzyThreshold = 0.85

// rule maps a keyword list to a tool capability.
type rule struct {
	keywords   []string
	capability tool.Capability
	analytical bool
}

// rules is the ordered classification rule set. Multi-word keywords are
// matched by containment only; single words additionally get the fuzzy pass.
var rules = []rule{
	{
		keywords:   []string{"current", "latest", "recent", "news", "today"},
		capability: tool.CapabilityCurrentEvents,
	},
	{
		keywords:   []string{"fact", "definition", "what is", "explain"},
		capability: tool.CapabilityGeneralKnowledge,
	},
	{
		// Comparative/analytical phrasing needs both stored knowledge and
		// fresh material.
		keywords:   []string{"compare", "versus", " vs ", "analyze", "analyse", "relationship between", "implications", "impact of", "ethical"},
		capability: tool.CapabilityGeneralKnowledge,
		analytical: true,
	},
}

// commonWords is a small vocabulary of function words used by the nonsense
// heuristic: a query containing none of these and matching no rule keyword is
// treated as nonsense.
var commonWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "about": {}, "are": {}, "can": {}, "do": {},
	"does": {}, "for": {}, "how": {}, "in": {}, "is": {}, "it": {}, "me": {},
	"of": {}, "on": {}, "tell": {}, "the": {}, "to": {}, "was": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "who": {}, "why": {}, "with": {},
}

// Router classifies queries against a capability registry.
// It is read-only after construction and safe for concurrent use.
type Router struct {
	registry *tool.Registry
}

// New creates a Router backed by the given registry.
func New(registry *tool.Registry) *Router {
	return &Router{registry: registry}
}

// Classify assigns a category and the required tool set for query.
//
// Returns [ErrEmptyQuery] for empty or whitespace-only input. Every other
// query yields at least one tool: when no rule matches, the general-knowledge
// capability is used as the fallback.
func (r *Router) Classify(query string) (Classification, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return Classification{}, ErrEmptyQuery
	}

	lower := strings.ToLower(trimmed)
	words := strings.Fields(lower)

	matched := map[tool.Capability]bool{}
	analytical := false
	for _, ru := range rules {
		if matchesRule(lower, words, ru) {
			matched[ru.capability] = true
			if ru.analytical {
				analytical = true
				matched[tool.CapabilityCurrentEvents] = true
			}
		}
	}

	category := categorize(lower, words, len(matched), analytical)

	// Fallback guarantee: unmatched queries go to general knowledge.
	if len(matched) == 0 {
		matched[tool.CapabilityGeneralKnowledge] = true
	}

	ids := r.resolve(matched)
	if len(ids) == 0 {
		return Classification{}, fmt.Errorf("router: no tool registered for capabilities of query %q", trimmed)
	}

	return Classification{Category: category, RequiredTools: ids}, nil
}

// resolve maps a capability set to the sorted union of registered tool ids.
// If no tool covers any matched capability, all registered tools are returned
// so that the fallback guarantee still holds on a sparse registry.
func (r *Router) resolve(caps map[tool.Capability]bool) []string {
	seen := map[string]bool{}
	var ids []string
	for c := range caps {
		for _, id := range r.registry.ByCapability(c) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		ids = r.registry.IDs()
	}
	sort.Strings(ids)
	return ids
}

// matchesRule reports whether the query matches any keyword of the rule.
func matchesRule(lower string, words []string, ru rule) bool {
	for _, kw := range ru.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
		if !strings.ContainsRune(strings.TrimSpace(kw), ' ') {
			for _, w := range words {
				if matchr.JaroWinkler(w, strings.TrimSpace(kw), false) >= fuzzyThreshold {
					return true
				}
			}
		}
	}
	return false
}

// categorize applies the category heuristics in priority order:
// edge-case patterns first, then complexity, then basic.
func categorize(lower string, words []string, matchedCaps int, analytical bool) Category {
	// Overly broad requests ("tell me everything about everything").
	if strings.Count(lower, "everything") >= 2 {
		return CategoryEdgeCase
	}
	// Impossible-precision requests.
	if strings.Contains(lower, "exact") &&
		(strings.Contains(lower, "at this very moment") || strings.Contains(lower, "right now")) {
		return CategoryEdgeCase
	}
	// Nonsense: no rule matched and no recognisable function word.
	if matchedCaps == 0 && !containsCommonWord(words) {
		return CategoryEdgeCase
	}

	if analytical || matchedCaps > 1 {
		return CategoryComplex
	}
	return CategoryBasic
}

// containsCommonWord reports whether at least one query word is in the
// common-word vocabulary.
func containsCommonWord(words []string) bool {
	for _, w := range words {
		if _, ok := commonWords[strings.Trim(w, "?.!,")]; ok {
			return true
		}
	}
	return false
}
