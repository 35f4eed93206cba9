// Package scanner runs the analysis pipeline across many instruments in
// parallel and aggregates the per-instrument results into one report.
package scanner

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Atifelx/CryptoClever-sub000/internal/marketdata"
	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// ProgressCallback is called with progress updates.
type ProgressCallback func(scanned, total int)

// AnalyzeFunc runs one instrument's candle window through the pipeline.
// Typically this is a session's Analyze method so scans share its cache.
type AnalyzeFunc func(ctx context.Context, symbol string, candles []model.Candle) (*model.AnalysisResult, error)

// Config controls scan parallelism.
type Config struct {
	// Workers is the number of concurrent analysis goroutines.
	Workers int
	// Timeout bounds a whole scan.
	Timeout time.Duration
	// CandleLimit caps how much history is loaded per instrument;
	// zero means all available.
	CandleLimit int
}

// DefaultConfig returns the standard scanner settings.
func DefaultConfig() Config {
	return Config{
		Workers:     8,
		Timeout:     60 * time.Second,
		CandleLimit: 500,
	}
}

// Scanner performs parallel instrument scanning.
type Scanner struct {
	provider     marketdata.Provider
	analyze      AnalyzeFunc
	config       Config
	log          zerolog.Logger
	progressFunc ProgressCallback
}

// NewScanner creates a scanner over the provider's instruments.
func NewScanner(p marketdata.Provider, analyze AnalyzeFunc, config Config, log zerolog.Logger) *Scanner {
	def := DefaultConfig()
	if config.Workers < 1 {
		config.Workers = def.Workers
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	return &Scanner{
		provider: p,
		analyze:  analyze,
		config:   config,
		log:      log,
	}
}

// SetProgressCallback sets the progress callback function.
func (s *Scanner) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

// Scan analyzes every instrument the provider lists.
func (s *Scanner) Scan(ctx context.Context) (*model.ScanReport, error) {
	symbols, err := s.provider.Symbols(ctx)
	if err != nil {
		return nil, err
	}
	return s.ScanSymbols(ctx, symbols)
}

// ScanSymbols analyzes the given instruments with a bounded worker pool.
// Instruments that fail to load or analyze are counted and logged, not
// fatal. Reports come back sorted by symbol.
func (s *Scanner) ScanSymbols(ctx context.Context, symbols []string) (*model.ScanReport, error) {
	startTime := time.Now()

	if len(symbols) == 0 {
		return &model.ScanReport{
			Reports:  []model.InstrumentReport{},
			ScanTime: time.Since(startTime),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	jobChan := make(chan string, len(symbols))
	resultChan := make(chan model.InstrumentReport, len(symbols))

	for _, symbol := range symbols {
		jobChan <- symbol
	}
	close(jobChan)

	var scannedCount, failedCount int64

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
					if report, ok := s.scanOne(ctx, symbol); ok {
						resultChan <- report
					} else {
						atomic.AddInt64(&failedCount, 1)
					}

					count := atomic.AddInt64(&scannedCount, 1)
					if s.progressFunc != nil {
						s.progressFunc(int(count), len(symbols))
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	reports := make([]model.InstrumentReport, 0, len(symbols))
	for report := range resultChan {
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Symbol < reports[j].Symbol
	})

	return &model.ScanReport{
		TotalScanned: len(symbols),
		Failed:       int(atomic.LoadInt64(&failedCount)),
		Reports:      reports,
		ScanTime:     time.Since(startTime),
	}, nil
}

// scanOne loads and analyzes a single instrument.
func (s *Scanner) scanOne(ctx context.Context, symbol string) (model.InstrumentReport, bool) {
	candles, err := s.provider.Candles(ctx, symbol, s.config.CandleLimit)
	if err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("loading candles failed")
		return model.InstrumentReport{}, false
	}

	result, err := s.analyze(ctx, symbol, candles)
	if err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("analysis failed")
		return model.InstrumentReport{}, false
	}

	return model.InstrumentReport{
		Symbol:  symbol,
		Candles: len(candles),
		Result:  result,
	}, true
}
