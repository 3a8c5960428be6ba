// Package ratelimit provides request cooldown policies for the thesis
// pipeline. Two alternative designs exist: a process-wide single-slot
// cooldown and a per-key fixed-window counter. Both are abuse mitigation,
// not billing-grade accounting; state resets on process restart.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of a limiter check. RetryAfter is positive only
// when the request was rejected.
type Result struct {
	OK         bool
	Remaining  int
	RetryAfter time.Duration
	Reset      time.Time
}

// Limiter decides whether a request keyed by client identity may proceed.
type Limiter interface {
	Allow(key string) Result
}

// Cooldown enforces a minimum interval between requests using a single
// process-wide slot. The key argument is ignored.
type Cooldown struct {
	window time.Duration
	mu     sync.Mutex
	last   time.Time
}

// NewCooldown creates a single-slot cooldown with the given window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{window: window}
}

// Allow succeeds when the window has elapsed since the last accepted
// request and records the new timestamp.
func (c *Cooldown) Allow(_ string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if !c.last.IsZero() {
		elapsed := now.Sub(c.last)
		if elapsed < c.window {
			return Result{
				OK:         false,
				RetryAfter: c.window - elapsed,
				Reset:      c.last.Add(c.window),
			}
		}
	}

	c.last = now
	return Result{OK: true, Reset: now.Add(c.window)}
}

// CounterStore tracks per-key request counts inside a fixed window. Incr
// bumps the counter for key, starting a fresh window when none is active,
// and reports the new count plus the time left in the window.
type CounterStore interface {
	Incr(key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

// FixedWindow allows up to Limit requests per key within each window. The
// counter resets when the window expires. The window check and the counter
// update are not atomic across instances; under true parallel access two
// requests may pass the same slot, which is accepted behavior here.
type FixedWindow struct {
	limit  int
	window time.Duration
	store  CounterStore
}

// NewFixedWindow creates a per-key fixed-window limiter backed by store.
func NewFixedWindow(limit int, window time.Duration, store CounterStore) *FixedWindow {
	return &FixedWindow{limit: limit, window: window, store: store}
}

// Allow admits the request while the key's window counter is within the
// limit. Store failures fail open: blocking traffic because the counter
// backend is down would hurt more than letting a burst through.
func (f *FixedWindow) Allow(key string) Result {
	count, remaining, err := f.store.Incr(key, f.window)
	if err != nil {
		return Result{OK: true, Remaining: f.limit}
	}

	reset := time.Now().Add(remaining)
	if count > int64(f.limit) {
		return Result{OK: false, RetryAfter: remaining, Reset: reset}
	}

	return Result{OK: true, Remaining: f.limit - int(count), Reset: reset}
}

// MemoryStore is the in-memory CounterStore used by a single service
// instance. The mutex keeps the map consistent; it makes no cross-instance
// promise.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*windowState
}

type windowState struct {
	count int64
	start time.Time
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*windowState)}
}

// Incr implements CounterStore.
func (s *MemoryStore) Incr(key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	state, ok := s.windows[key]
	if !ok || now.Sub(state.start) >= window {
		state = &windowState{start: now}
		s.windows[key] = state
	}

	state.count++
	remaining := window - now.Sub(state.start)
	return state.count, remaining, nil
}

// Cleanup drops windows that expired more than window ago. Call
// periodically to keep the map from growing with one-off clients.
func (s *MemoryStore) Cleanup(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, state := range s.windows {
		if now.Sub(state.start) >= 2*window {
			delete(s.windows, key)
		}
	}
}
