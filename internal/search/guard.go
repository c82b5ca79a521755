package search

import (
	"iter"
	"time"
)

// Guard is the wall-clock budget of one search, covering process execution
// and output parsing together. It is cooperative: it only fires when the
// caller checks it.
type Guard struct {
	start   time.Time
	timeout time.Duration
	now     func() time.Time
	expired bool
}

// NewGuard starts a budget of timeout measured from now().
func NewGuard(timeout time.Duration, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{start: now(), timeout: timeout, now: now}
}

// Elapsed returns the time spent since the guard started.
func (g *Guard) Elapsed() time.Duration {
	return g.now().Sub(g.start)
}

// Timeout returns the configured budget.
func (g *Guard) Timeout() time.Duration {
	return g.timeout
}

// Check reports whether the budget has been exceeded. Once expired the guard
// stays expired.
func (g *Guard) Check() bool {
	if !g.expired && g.Elapsed() > g.timeout {
		g.expired = true
	}
	return g.expired
}

// Expired reports whether any earlier Check found the budget exceeded.
func (g *Guard) Expired() bool {
	return g.expired
}

// Watch yields lines until the budget runs out. The check runs before each
// line; after the sequence stops the caller must consult Expired.
func (g *Guard) Watch(lines iter.Seq[string]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range lines {
			if g.Check() {
				return
			}
			if !yield(line) {
				return
			}
		}
	}
}
