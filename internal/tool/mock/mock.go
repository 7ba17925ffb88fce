// Package mock provides a test double for the tool.Tool contract.
//
// Use Tool in unit tests to feed controlled payloads into the invoker and to
// inspect what queries a component issued, without touching real backends.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/MrWong99/inquiro/internal/tool"
)

// InvokeCall records a single invocation of Invoke.
type InvokeCall struct {
	// Ctx is the context passed to Invoke.
	Ctx context.Context
	// Query is the query string passed to Invoke.
	Query string
}

// Tool is a mock implementation of tool.Tool.
// Zero values cause Invoke to return empty output and no error.
type Tool struct {
	mu sync.Mutex

	// ToolName is returned by Name. Tests must set it; registries reject
	// empty names.
	ToolName string

	// Payload is returned as the payload from Invoke.
	Payload string

	// Sources is returned as the source list from Invoke.
	Sources []string

	// Err, if non-nil, is returned as the error from Invoke.
	Err error

	// Delay, if positive, makes Invoke block for the given duration or until
	// ctx is done — whichever comes first. Used to exercise timeout paths.
	Delay time.Duration

	// InvokeCalls records every invocation of Invoke in order.
	InvokeCalls []InvokeCall
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return t.ToolName }

// Description implements tool.Tool.
func (t *Tool) Description() string { return "mock tool " + t.ToolName }

// Invoke records the call and returns Payload, Sources, Err.
// If Delay is set and ctx expires first, the context error is returned instead.
func (t *Tool) Invoke(ctx context.Context, query string) (string, []string, error) {
	t.mu.Lock()
	t.InvokeCalls = append(t.InvokeCalls, InvokeCall{Ctx: ctx, Query: query})
	payload, sources, err, delay := t.Payload, t.Sources, t.Err, t.Delay
	t.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}
	return payload, sources, err
}

// CallCount returns the number of recorded Invoke calls. Thread-safe.
func (t *Tool) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.InvokeCalls)
}

// Ensure Tool implements tool.Tool at compile time.
var _ tool.Tool = (*Tool)(nil)
