// Package memory implements the bounded conversation log consulted when
// building generation context.
//
// A [Memory] holds at most W turns. Appending turn W+1 evicts the oldest turn
// (strict FIFO). Sequence numbers keep increasing across evictions and Clear,
// so a turn's Seq identifies it for the lifetime of the session.
//
// All methods are safe for concurrent use; appends are serialized, so turns
// are stored in strict call order even with multiple queries in flight.
package memory

import (
	"sync"
	"time"
)

// DefaultWindow is the turn capacity used when none is configured.
const DefaultWindow = 10

// Turn is one completed query/response exchange.
// Turns are immutable after creation.
type Turn struct {
	// Seq is the monotonically increasing sequence number of this turn.
	Seq uint64

	// Query is the user's query text.
	Query string

	// Response is the agent's response text.
	Response string

	// At is when the turn was recorded.
	At time.Time
}

// Memory is a bounded FIFO log of conversation turns.
type Memory struct {
	mu      sync.Mutex
	window  int
	nextSeq uint64
	turns   []Turn
}

// New creates a Memory holding at most window turns.
// A non-positive window falls back to [DefaultWindow].
func New(window int) *Memory {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Memory{
		window: window,
		turns:  make([]Turn, 0, window),
	}
}

// Append records a new turn, evicting the oldest one when the window is full.
// The turn's Seq and At fields are assigned here; caller-supplied values are
// overwritten.
func (m *Memory) Append(query, response string) Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSeq++
	t := Turn{
		Seq:      m.nextSeq,
		Query:    query,
		Response: response,
		At:       time.Now(),
	}

	if len(m.turns) >= m.window {
		// FIFO eviction of the oldest turn.
		copy(m.turns, m.turns[1:])
		m.turns = m.turns[:len(m.turns)-1]
	}
	m.turns = append(m.turns, t)
	return t
}

// Recent returns the n most recent turns in chronological order.
// When n exceeds the current size the full available sequence is returned;
// n <= 0 returns an empty slice.
func (m *Memory) Recent(n int) []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 {
		return nil
	}
	if n > len(m.turns) {
		n = len(m.turns)
	}
	out := make([]Turn, n)
	copy(out, m.turns[len(m.turns)-n:])
	return out
}

// Len returns the current number of stored turns.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Clear discards all turns. Sequence numbering continues where it left off.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = m.turns[:0]
}
