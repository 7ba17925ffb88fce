// Package invoker runs the tools selected for a query.
//
// Each tool is invoked in its own goroutine and all invocations are joined
// before the result map is returned. A single tool's failure or timeout never
// aborts its siblings: the failure is converted into a [tool.Result] with
// status failure in place, so every requested tool identifier yields exactly
// one result.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/inquiro/internal/observe"
	"github.com/MrWong99/inquiro/internal/tool"
)

// ErrNoTools is returned by [Invoker.Invoke] when the requested tool set is
// empty. This is the only whole-operation failure the invoker signals.
var ErrNoTools = errors.New("invoker: no tools requested")

// DefaultTimeout bounds a single tool invocation when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Invoker invokes registered tools concurrently. It is read-only after
// construction and safe for concurrent use.
type Invoker struct {
	registry *tool.Registry
	timeout  time.Duration
	metrics  *observe.Metrics
}

// Config configures an [Invoker].
type Config struct {
	// Registry resolves tool identifiers to implementations. Must not be nil.
	Registry *tool.Registry

	// Timeout bounds each individual tool invocation.
	// Defaults to [DefaultTimeout] if zero or negative.
	Timeout time.Duration

	// Metrics receives per-tool latency and status recordings.
	// Defaults to [observe.DefaultMetrics] when nil.
	Metrics *observe.Metrics
}

// New creates an Invoker with the given configuration.
func New(cfg Config) *Invoker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	return &Invoker{
		registry: cfg.Registry,
		timeout:  cfg.Timeout,
		metrics:  cfg.Metrics,
	}
}

// Invoke runs every tool in ids against query and returns one [tool.Result]
// per requested identifier, keyed by tool id. Unknown identifiers and failing
// tools produce failure results; only an empty ids set returns an error.
func (iv *Invoker) Invoke(ctx context.Context, ids []string, query string) (map[string]tool.Result, error) {
	if len(ids) == 0 {
		return nil, ErrNoTools
	}

	var (
		mu      sync.Mutex
		results = make(map[string]tool.Result, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			res := iv.invokeOne(gctx, id, query)

			mu.Lock()
			results[id] = res
			mu.Unlock()

			status := string(res.Status)
			iv.metrics.RecordToolCall(gctx, id, status)
			iv.metrics.ToolDuration.Record(gctx, res.Latency.Seconds())

			// Failures are carried in the result, never as a group error —
			// returning one here would cancel sibling invocations.
			return nil
		})
	}

	// Err is always nil; Wait is the join point.
	_ = g.Wait()

	return results, nil
}

// invokeOne runs a single tool with the per-tool timeout and converts any
// failure into a failure Result.
func (iv *Invoker) invokeOne(ctx context.Context, id, query string) tool.Result {
	start := time.Now()

	t, err := iv.registry.Get(id)
	if err != nil {
		return failureResult(id, time.Since(start), err)
	}

	toolCtx, cancel := context.WithTimeout(ctx, iv.timeout)
	defer cancel()

	payload, sources, err := t.Invoke(toolCtx, query)
	latency := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("invoker: tool %q timed out after %v: %w", id, iv.timeout, err)
		}
		return failureResult(id, latency, err)
	}

	return tool.Result{
		Tool:    id,
		Status:  tool.StatusSuccess,
		Payload: payload,
		Sources: sources,
		Latency: latency,
	}
}

// failureResult builds the failure Result for one tool and logs it.
func failureResult(id string, latency time.Duration, err error) tool.Result {
	slog.Warn("tool invocation failed", "tool", id, "err", err)
	return tool.Result{
		Tool:    id,
		Status:  tool.StatusFailure,
		Latency: latency,
		Err:     err,
	}
}
