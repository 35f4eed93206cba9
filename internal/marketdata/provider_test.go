package marketdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFixture(t *testing.T, dir, name string, bars int) {
	t.Helper()
	if err := WriteCandlesFile(filepath.Join(dir, name), fixtureCandles(bars)); err != nil {
		t.Fatalf("Expected fixture write to succeed, got %v", err)
	}
}

func TestDirectoryProviderSymbols(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "ETHUSDT_1h.csv", 5)
	writeFixture(t, dir, "BTCUSDT_1h.csv", 5)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "archive.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	p := NewDirectoryProvider(dir)
	if p.Name() != "csv-dir" {
		t.Errorf("Expected provider name csv-dir, got %s", p.Name())
	}

	symbols, err := p.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{"BTCUSDT_1h", "ETHUSDT_1h"}
	if !reflect.DeepEqual(symbols, want) {
		t.Errorf("Expected %v, got %v", want, symbols)
	}
}

func TestDirectoryProviderEmptyDir(t *testing.T) {
	p := NewDirectoryProvider(t.TempDir())
	symbols, err := p.Symbols(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(symbols) != 0 {
		t.Errorf("Expected no symbols, got %v", symbols)
	}
}

func TestDirectoryProviderCandlesLimit(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "BTCUSDT_1h.csv", 10)
	p := NewDirectoryProvider(dir)
	ctx := context.Background()

	all, err := p.Candles(ctx, "BTCUSDT_1h", 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(all) != 10 {
		t.Fatalf("Expected 10 candles without a limit, got %d", len(all))
	}

	tail, err := p.Candles(ctx, "BTCUSDT_1h", 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(tail) != 4 {
		t.Fatalf("Expected 4 candles, got %d", len(tail))
	}
	if !reflect.DeepEqual(tail, all[6:]) {
		t.Errorf("Expected the most recent candles, got %+v", tail)
	}

	over, err := p.Candles(ctx, "BTCUSDT_1h", 50)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(over) != 10 {
		t.Errorf("Expected all 10 candles for an oversized limit, got %d", len(over))
	}
}

func TestDirectoryProviderMissingSymbol(t *testing.T) {
	p := NewDirectoryProvider(t.TempDir())

	_, err := p.Candles(context.Background(), "NOPEUSDT_1h", 0)
	if err == nil {
		t.Fatal("Expected an error for a missing symbol")
	}
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected a ProviderError, got %T: %v", err, err)
	}
	if provErr.Provider != "csv-dir" {
		t.Errorf("Expected the csv-dir provider in the error, got %s", provErr.Provider)
	}
}

func TestDirectoryProviderContextCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "BTCUSDT_1h.csv", 5)
	p := NewDirectoryProvider(dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Symbols(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled from Symbols, got %v", err)
	}
	if _, err := p.Candles(ctx, "BTCUSDT_1h", 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled from Candles, got %v", err)
	}
}
