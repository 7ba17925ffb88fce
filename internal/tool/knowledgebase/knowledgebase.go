// Package knowledgebase implements a static knowledge lookup backend.
//
// Entries are a fixed in-process table keyed by topic keywords. The lookup is
// deterministic: the same query always yields the same facts, which the
// evaluation harness relies on when scoring relevance.
package knowledgebase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MrWong99/inquiro/internal/tool"
)

// Name is the identifier this tool registers under.
const Name = "knowledge_base"

// SourceID is the source reference attached to every successful lookup.
const SourceID = "internal_knowledge_base"

// Response is the payload structure the tool emits as JSON.
type Response struct {
	Query string   `json:"query"`
	Facts []string `json:"facts"`
}

// topicEntry holds the stored facts for one topic.
type topicEntry struct {
	keywords []string
	facts    []string
}

// topics is the static fact table. Keywords are matched case-insensitively by
// containment against the query.
var topics = []topicEntry{
	{
		keywords: []string{"artificial intelligence", "ai"},
		facts: []string{
			"Artificial intelligence (AI) is a branch of computer science that aims to create intelligent machines.",
			"Modern AI systems rely heavily on machine learning and large datasets.",
			"AI applications span language, vision, robotics, and decision support technology.",
		},
	},
	{
		keywords: []string{"machine learning", "ml"},
		facts: []string{
			"Machine learning (ML) is the study of algorithms that improve automatically through experience.",
			"Common ML paradigms include supervised, unsupervised, and reinforcement learning over data.",
			"Neural networks are the dominant model family in contemporary machine learning.",
		},
	},
	{
		keywords: []string{"climate", "biodiversity", "environment"},
		facts: []string{
			"Climate change shifts temperature and precipitation patterns that ecosystems depend on.",
			"Biodiversity loss accelerates when species cannot adapt or migrate fast enough.",
			"Environment protection policies target both emission reduction and habitat preservation.",
		},
	},
	{
		keywords: []string{"renewable", "energy", "fossil"},
		facts: []string{
			"Renewable energy costs have fallen sharply over the past decade.",
			"Fossil fuel dependence exposes economies to price volatility.",
			"Developing countries increasingly leapfrog to distributed renewable generation for economic reasons.",
		},
	},
	{
		keywords: []string{"ethics", "healthcare"},
		facts: []string{
			"AI ethics in healthcare centres on accountability, bias, and patient consent in decision making.",
			"Clinical decision-support systems require human oversight for high-stakes outcomes.",
		},
	},
	{
		keywords: []string{"social media", "mental health", "teenager"},
		facts: []string{
			"Research links heavy social media usage with sleep disruption in teenagers.",
			"Observed effects on mental health vary strongly with usage patterns and context.",
		},
	},
	{
		keywords: []string{"quantum"},
		facts: []string{
			"Quantum computing exploits superposition and entanglement to process information.",
			"Current quantum hardware remains noisy and limited in qubit count.",
		},
	},
}

// genericFacts is returned when no topic matches the query.
var genericFacts = []string{
	"General reference information related to the query.",
	"Additional contextual data from the knowledge base.",
	"Historical background information.",
}

// Lookup is a static knowledge base tool. It implements [tool.Tool].
type Lookup struct{}

// New creates a knowledge base lookup tool.
func New() *Lookup {
	return &Lookup{}
}

// Name implements tool.Tool.
func (l *Lookup) Name() string { return Name }

// Description implements tool.Tool.
func (l *Lookup) Description() string {
	return "Access the internal knowledge base for factual information"
}

// Invoke implements tool.Tool. Facts from every matching topic are
// concatenated in table order; unmatched queries get the generic fact set.
func (l *Lookup) Invoke(ctx context.Context, query string) (string, []string, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	lower := strings.ToLower(query)
	var facts []string
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				facts = append(facts, t.facts...)
				break
			}
		}
	}
	if len(facts) == 0 {
		facts = genericFacts
	}

	payload, err := json.Marshal(Response{Query: query, Facts: facts})
	if err != nil {
		return "", nil, fmt.Errorf("knowledgebase: marshal facts: %w", err)
	}

	return string(payload), []string{SourceID}, nil
}

// Ensure Lookup implements tool.Tool at compile time.
var _ tool.Tool = (*Lookup)(nil)
