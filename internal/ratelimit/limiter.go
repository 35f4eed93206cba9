// Package ratelimit paces how often the pipeline recomputes an instrument.
// Sub-bar ticks arrive far faster than closed candles, so callers gate each
// recompute through a per-instrument limiter instead of analyzing every tick.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter paces recomputation for a single instrument.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// NewLimiter creates a limiter allowing perSecond recomputes with the given
// burst. perSecond <= 0 disables pacing entirely; burst below 1 is raised
// to 1.
func NewLimiter(name string, perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1), name: name}
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst), name: name}
}

// Wait blocks until a recompute slot is available or the context is
// cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a recompute may happen right now without waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Name returns the limiter name.
func (l *Limiter) Name() string {
	return l.name
}

// MultiLimiter manages per-instrument limiters sharing one rate policy,
// creating them on first use.
type MultiLimiter struct {
	mu        sync.Mutex
	perSecond float64
	burst     int
	limiters  map[string]*Limiter
}

// NewMultiLimiter creates a multi-limiter applying the given policy to every
// instrument.
func NewMultiLimiter(perSecond float64, burst int) *MultiLimiter {
	return &MultiLimiter{
		perSecond: perSecond,
		burst:     burst,
		limiters:  make(map[string]*Limiter),
	}
}

// Get returns the limiter for the instrument, creating it if needed.
func (m *MultiLimiter) Get(name string) *Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	limiter, ok := m.limiters[name]
	if !ok {
		limiter = NewLimiter(name, m.perSecond, m.burst)
		m.limiters[name] = limiter
	}
	return limiter
}

// Wait waits on the instrument's limiter.
func (m *MultiLimiter) Wait(ctx context.Context, name string) error {
	return m.Get(name).Wait(ctx)
}
