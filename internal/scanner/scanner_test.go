package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// fakeProvider serves in-memory candles keyed by symbol.
type fakeProvider struct {
	symbols    []string
	candles    map[string][]model.Candle
	symbolsErr error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Symbols(ctx context.Context) ([]string, error) {
	if p.symbolsErr != nil {
		return nil, p.symbolsErr
	}
	return p.symbols, nil
}

func (p *fakeProvider) Candles(ctx context.Context, symbol string, limit int) ([]model.Candle, error) {
	candles, ok := p.candles[symbol]
	if !ok {
		return nil, fmt.Errorf("no candles for %s", symbol)
	}
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func testCandles(n int) []model.Candle {
	candles := make([]model.Candle, n)
	for i := range candles {
		candles[i] = model.Candle{
			Time: int64(1000 + i*3600),
			Open: 100, High: 101, Low: 99, Close: 100,
			Volume: 10,
		}
	}
	return candles
}

func newFakeProvider(symbols ...string) *fakeProvider {
	p := &fakeProvider{symbols: symbols, candles: map[string][]model.Candle{}}
	for _, s := range symbols {
		p.candles[s] = testCandles(60)
	}
	return p
}

func passthroughAnalyze(ctx context.Context, symbol string, candles []model.Candle) (*model.AnalysisResult, error) {
	return &model.AnalysisResult{
		Structure:  model.StructureRange,
		Regime:     model.RegimeRange,
		Confidence: float64(len(candles)),
		Pivots:     []model.Pivot{},
		Zones:      []model.TradingZone{},
	}, nil
}

func testScannerConfig() Config {
	return Config{Workers: 3, Timeout: 10 * time.Second, CandleLimit: 0}
}

func TestScanAllSymbols(t *testing.T) {
	provider := newFakeProvider("ETHUSDT", "BTCUSDT", "SOLUSDT", "ADAUSDT", "XRPUSDT")
	scanner := NewScanner(provider, passthroughAnalyze, testScannerConfig(), zerolog.Nop())

	report, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.TotalScanned != 5 {
		t.Errorf("Expected 5 scanned, got %d", report.TotalScanned)
	}
	if report.Failed != 0 {
		t.Errorf("Expected no failures, got %d", report.Failed)
	}
	if len(report.Reports) != 5 {
		t.Fatalf("Expected 5 reports, got %d", len(report.Reports))
	}
	for i := 1; i < len(report.Reports); i++ {
		if report.Reports[i-1].Symbol >= report.Reports[i].Symbol {
			t.Errorf("Reports not sorted: %s before %s", report.Reports[i-1].Symbol, report.Reports[i].Symbol)
		}
	}
	for _, r := range report.Reports {
		if r.Candles != 60 || r.Result == nil {
			t.Errorf("Report %s: expected 60 candles and a result, got %d and %v", r.Symbol, r.Candles, r.Result)
		}
	}
	if report.ScanTime <= 0 {
		t.Errorf("Expected a positive scan time, got %v", report.ScanTime)
	}
}

func TestScanCountsFailures(t *testing.T) {
	provider := newFakeProvider("BTCUSDT", "ETHUSDT", "SOLUSDT")
	delete(provider.candles, "ETHUSDT") // loading fails

	badAnalyze := func(ctx context.Context, symbol string, candles []model.Candle) (*model.AnalysisResult, error) {
		if symbol == "SOLUSDT" {
			return nil, errors.New("pipeline exploded")
		}
		return passthroughAnalyze(ctx, symbol, candles)
	}
	scanner := NewScanner(provider, badAnalyze, testScannerConfig(), zerolog.Nop())

	report, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.TotalScanned != 3 {
		t.Errorf("Expected 3 scanned, got %d", report.TotalScanned)
	}
	if report.Failed != 2 {
		t.Errorf("Expected 2 failures, got %d", report.Failed)
	}
	if len(report.Reports) != 1 || report.Reports[0].Symbol != "BTCUSDT" {
		t.Errorf("Expected only BTCUSDT to survive, got %+v", report.Reports)
	}
}

func TestScanSymbolsErrorPropagates(t *testing.T) {
	wantErr := errors.New("directory unreadable")
	provider := &fakeProvider{symbolsErr: wantErr}
	scanner := NewScanner(provider, passthroughAnalyze, testScannerConfig(), zerolog.Nop())

	if _, err := scanner.Scan(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Expected the provider error, got %v", err)
	}
}

func TestScanEmptySymbolList(t *testing.T) {
	scanner := NewScanner(newFakeProvider(), passthroughAnalyze, testScannerConfig(), zerolog.Nop())

	report, err := scanner.ScanSymbols(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.TotalScanned != 0 || report.Failed != 0 {
		t.Errorf("Expected an empty report, got %+v", report)
	}
	if report.Reports == nil || len(report.Reports) != 0 {
		t.Errorf("Expected an empty report slice, got %v", report.Reports)
	}
}

func TestScanProgressReachesTotal(t *testing.T) {
	provider := newFakeProvider("BTCUSDT", "ETHUSDT", "SOLUSDT", "ADAUSDT")
	scanner := NewScanner(provider, passthroughAnalyze, testScannerConfig(), zerolog.Nop())

	var mu sync.Mutex
	maxScanned, total := 0, 0
	scanner.SetProgressCallback(func(scanned, t int) {
		mu.Lock()
		defer mu.Unlock()
		if scanned > maxScanned {
			maxScanned = scanned
		}
		total = t
	})

	if _, err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if maxScanned != 4 || total != 4 {
		t.Errorf("Expected progress to reach 4/4, got %d/%d", maxScanned, total)
	}
}

func TestScanCancelledContext(t *testing.T) {
	provider := newFakeProvider("BTCUSDT", "ETHUSDT", "SOLUSDT")
	scanner := NewScanner(provider, passthroughAnalyze, testScannerConfig(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := scanner.ScanSymbols(ctx, []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(report.Reports) != 0 {
		t.Errorf("Expected no reports under a cancelled context, got %d", len(report.Reports))
	}
}

func TestScannerAppliesCandleLimit(t *testing.T) {
	provider := newFakeProvider("BTCUSDT")
	cfg := testScannerConfig()
	cfg.CandleLimit = 25
	scanner := NewScanner(provider, passthroughAnalyze, cfg, zerolog.Nop())

	report, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(report.Reports) != 1 || report.Reports[0].Candles != 25 {
		t.Errorf("Expected the 25-candle tail, got %+v", report.Reports)
	}
}
