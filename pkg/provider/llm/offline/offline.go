// Package offline provides a deterministic generation backend that needs no
// network or credentials. It echoes the research context it is handed, which
// keeps development and evaluation runs meaningful without a real model.
package offline

import (
	"context"
	"fmt"

	"github.com/MrWong99/inquiro/pkg/provider/llm"
)

// Provider is a local, deterministic [llm.Provider].
type Provider struct{}

// New returns a ready-to-use offline provider.
func New() *Provider {
	return &Provider{}
}

// Complete echoes the final user message back as the completion, so tool
// payloads and the query text survive into the response verbatim.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var last string
	for _, msg := range req.Messages {
		if msg.Role == "user" {
			last = msg.Content
		}
	}
	if last == "" {
		return nil, fmt.Errorf("offline: request contains no user message")
	}

	return &llm.CompletionResponse{
		Content: "Mock response to: " + last,
	}, nil
}
