// Package tool defines the shared [Tool] contract implemented by all retrieval
// backends, the [Result] type they produce, and the capability [Registry] the
// query router consults for tool selection.
package tool

import (
	"context"
	"time"
)

// Capability is a declared class of queries a tool is suited to answer.
type Capability string

const (
	// CapabilityCurrentEvents marks tools that can retrieve up-to-date,
	// time-sensitive information.
	CapabilityCurrentEvents Capability = "current-events"

	// CapabilityGeneralKnowledge marks tools that answer definitional and
	// factual queries from stored knowledge.
	CapabilityGeneralKnowledge Capability = "general-knowledge"
)

// Status indicates whether a tool invocation produced usable output.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the outcome of invoking a single tool for one query.
// Every requested tool yields exactly one Result, failure included.
type Result struct {
	// Tool is the identifier of the tool that produced this result.
	Tool string

	// Status reports whether the invocation succeeded.
	Status Status

	// Payload is the tool's textual output. Empty on failure.
	Payload string

	// Sources lists source references (URLs or backend identifiers) backing
	// the payload. May be empty.
	Sources []string

	// Latency is how long the invocation took, including any timeout wait.
	Latency time.Duration

	// Err holds the failure cause when Status is StatusFailure, nil otherwise.
	Err error
}

// Tool is the contract every retrieval backend implements.
//
// Implementations must be safe for concurrent use and must respect context
// cancellation: when ctx is done, Invoke should return promptly with ctx's error.
type Tool interface {
	// Name returns the tool's unique identifier (e.g., "web_search").
	Name() string

	// Description explains what the tool does, for logs and prompts.
	Description() string

	// Invoke runs the tool against the given query and returns its payload
	// text plus source references. A non-nil error marks the invocation
	// failed; the invoker converts it into a failure Result.
	Invoke(ctx context.Context, query string) (payload string, sources []string, err error)
}
