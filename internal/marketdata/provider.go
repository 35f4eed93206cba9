// Package marketdata supplies candle history to the analysis pipeline. The
// shipped provider reads CSV files from a directory; the interface keeps the
// scanner and session independent of where candles come from.
package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// Provider supplies candle history for instruments.
type Provider interface {
	// Name returns the provider name for logs and errors.
	Name() string

	// Symbols lists the instruments this provider can serve.
	Symbols(ctx context.Context) ([]string, error)

	// Candles returns up to limit most recent candles for the symbol, in
	// ascending time order. limit <= 0 means no cap.
	Candles(ctx context.Context, symbol string, limit int) ([]model.Candle, error)
}

// ProviderError wraps a failure with the provider that produced it.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DirectoryProvider serves candles from per-instrument CSV files in a single
// directory. The file stem is the instrument name, e.g. BTCUSDT_1h.csv.
type DirectoryProvider struct {
	dir string
}

// NewDirectoryProvider creates a provider over the given directory.
func NewDirectoryProvider(dir string) *DirectoryProvider {
	return &DirectoryProvider{dir: dir}
}

// Name returns the provider name.
func (p *DirectoryProvider) Name() string {
	return "csv-dir"
}

// Symbols lists the instrument names found in the directory, sorted so scan
// order is stable across runs.
func (p *DirectoryProvider) Symbols(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("listing %s: %w", p.dir, err)}
	}

	symbols := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Candles loads the symbol's CSV file and returns its most recent candles.
func (p *DirectoryProvider) Candles(ctx context.Context, symbol string, limit int) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(p.dir, symbol+".csv")
	candles, err := ReadCandlesFile(path)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err}
	}
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}
