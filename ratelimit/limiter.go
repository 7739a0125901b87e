// ABOUTME: Per-client fixed-window request quota for the chat proxy
// ABOUTME: Counters live in memory behind a mutex; expired windows are swept lazily
package ratelimit

import (
	"sync"
	"time"
)

// Defaults match the proxy's out-of-the-box quota.
const (
	DefaultMax    = 20
	DefaultWindow = time.Minute
)

// Limiter decides whether a client may spend one more request.
type Limiter interface {
	TryConsume(clientID string) bool
}

// Status describes a client's quota after a TryConsume call.
type Status struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

type window struct {
	start time.Time
	count int
}

// Window is a fixed-window Limiter. Each client gets max requests per window;
// windows of different clients are independent.
type Window struct {
	mu        sync.Mutex
	max       int
	length    time.Duration
	now       func() time.Time
	clients   map[string]*window
	lastSweep time.Time
}

// Option customises a Window.
type Option func(*Window)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Window) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWindow builds a limiter allowing max requests per length. Non-positive
// values fall back to the defaults.
func NewWindow(max int, length time.Duration, opts ...Option) *Window {
	if max < 1 {
		max = DefaultMax
	}
	if length <= 0 {
		length = DefaultWindow
	}
	w := &Window{
		max:     max,
		length:  length,
		now:     time.Now,
		clients: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// TryConsume records one request for clientID and reports whether it is
// within quota.
func (w *Window) TryConsume(clientID string) bool {
	ok, _ := w.Consume(clientID)
	return ok
}

// Consume is TryConsume plus the resulting quota status, used for the
// RateLimit-* response headers.
func (w *Window) Consume(clientID string) (bool, Status) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.sweep(now)

	win, ok := w.clients[clientID]
	if !ok || !now.Before(win.start.Add(w.length)) {
		win = &window{start: now}
		w.clients[clientID] = win
	}

	allowed := win.count < w.max
	if allowed {
		win.count++
	}

	return allowed, Status{
		Limit:     w.max,
		Remaining: w.max - win.count,
		Reset:     win.start.Add(w.length),
	}
}

// Len returns the number of clients with a live window.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

// sweep drops expired windows at most once per window length. Callers hold mu.
func (w *Window) sweep(now time.Time) {
	if now.Sub(w.lastSweep) < w.length {
		return
	}
	for id, win := range w.clients {
		if !now.Before(win.start.Add(w.length)) {
			delete(w.clients, id)
		}
	}
	w.lastSweep = now
}
