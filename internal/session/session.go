// Package session wraps the analysis pipeline with the caching and pacing a
// long-lived caller needs. The pipeline itself is pure, so results are
// memoized by (symbol, last candle time, candle count); concurrent requests
// for the same window share one computation, and per-instrument rate limits
// absorb sub-bar tick storms.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Atifelx/CryptoClever-sub000/internal/ratelimit"
	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// Analyzer is the computation a session memoizes.
type Analyzer interface {
	Analyze(candles []model.Candle) (*model.AnalysisResult, error)
}

// Config controls session caching and pacing.
type Config struct {
	// RecomputePerSec is the per-instrument recompute rate. Zero or
	// negative disables pacing.
	RecomputePerSec float64
	// Burst is how many recomputes an instrument may run back to back.
	Burst int
	// CacheSize bounds how many results stay memoized; the oldest entry
	// is evicted first.
	CacheSize int
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() Config {
	return Config{
		RecomputePerSec: 4,
		Burst:           2,
		CacheSize:       64,
	}
}

// Session is a concurrency-safe front to the analyzer.
type Session struct {
	analyzer Analyzer
	limiters *ratelimit.MultiLimiter
	group    singleflight.Group
	log      zerolog.Logger

	mu    sync.RWMutex
	cache map[string]*model.AnalysisResult
	order []string
	size  int
}

// New creates a session around the analyzer.
func New(analyzer Analyzer, config Config, log zerolog.Logger) *Session {
	if config.CacheSize < 1 {
		config.CacheSize = DefaultConfig().CacheSize
	}
	return &Session{
		analyzer: analyzer,
		limiters: ratelimit.NewMultiLimiter(config.RecomputePerSec, config.Burst),
		log:      log,
		cache:    make(map[string]*model.AnalysisResult, config.CacheSize),
		size:     config.CacheSize,
	}
}

// Analyze returns the analysis for the candle window, reusing a memoized
// result when the window has not advanced. The pipeline is deterministic, so
// a cached result is indistinguishable from a fresh one.
func (s *Session) Analyze(ctx context.Context, symbol string, candles []model.Candle) (*model.AnalysisResult, error) {
	key := cacheKey(symbol, candles)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		s.log.Debug().Str("symbol", symbol).Str("key", key).Msg("session cache hit")
		return cached, nil
	}

	result, err, shared := s.group.Do(key, func() (interface{}, error) {
		if err := s.limiters.Wait(ctx, symbol); err != nil {
			return nil, fmt.Errorf("pacing recompute for %s: %w", symbol, err)
		}
		res, err := s.analyzer.Analyze(candles)
		if err != nil {
			return nil, err
		}
		s.store(key, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug().Str("symbol", symbol).Str("key", key).Msg("session computation shared")
	}
	return result.(*model.AnalysisResult), nil
}

// store memoizes a result, evicting the oldest entry once full.
func (s *Session) store(key string, result *model.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cache[key]; exists {
		s.cache[key] = result
		return
	}
	if len(s.order) >= s.size {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.cache, oldest)
	}
	s.cache[key] = result
	s.order = append(s.order, key)
}

// Len reports how many results are currently memoized.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// cacheKey identifies a candle window. Determinism of the pipeline makes
// (symbol, last time, count) sufficient: any tick that does not close a new
// candle maps to the same key.
func cacheKey(symbol string, candles []model.Candle) string {
	var lastTime int64
	if len(candles) > 0 {
		lastTime = candles[len(candles)-1].Time
	}
	return fmt.Sprintf("%s|%d|%d", symbol, lastTime, len(candles))
}
