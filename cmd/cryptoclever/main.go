package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Atifelx/CryptoClever-sub000/internal/analysis"
	"github.com/Atifelx/CryptoClever-sub000/internal/config"
	"github.com/Atifelx/CryptoClever-sub000/internal/logging"
	"github.com/Atifelx/CryptoClever-sub000/internal/marketdata"
	"github.com/Atifelx/CryptoClever-sub000/internal/scanner"
	"github.com/Atifelx/CryptoClever-sub000/internal/semafor"
	"github.com/Atifelx/CryptoClever-sub000/internal/session"
	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	analyzeFile    string
	analyzeSymbol  string
	analyzeDataDir string
	analyzeLimit   int
	analyzeFormat  string

	scanDataDir       string
	scanWorkers       int
	scanLimit         int
	scanMinConfidence float64
	scanFormat        string

	replayFile   string
	replayStart  int
	replayFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cryptoclever",
		Short: "Deterministic market structure analysis for OHLCV candles",
		Long: `CryptoClever turns OHLCV candle history into market structure: swing
pivots, directional bias, impulse strength, volatility regime, confidence and
trade zones. The pipeline is deterministic and non-repainting: the same
candles always produce the same result, and a pivot confirmed by a closing
move never repaints.

Examples:
  cryptoclever analyze --file data/BTCUSDT_1H.csv
  cryptoclever analyze --symbol BTCUSDT_1H --data-dir data --format json
  cryptoclever scan --data-dir data --workers 8 --min-confidence 60
  cryptoclever replay --file data/BTCUSDT_1H.csv --start 50`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console, json")

	rootCmd.AddCommand(newAnalyzeCmd(), newScanCmd(), newReplayCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one instrument's candle history",
		RunE:  runAnalyze,
	}
	cmd.Flags().StringVar(&analyzeFile, "file", "", "candle CSV file")
	cmd.Flags().StringVar(&analyzeSymbol, "symbol", "", "instrument to load from the data directory, e.g. BTCUSDT_1H")
	cmd.Flags().StringVar(&analyzeDataDir, "data-dir", "", "candle data directory")
	cmd.Flags().IntVar(&analyzeLimit, "limit", 0, "most recent candles to analyze")
	cmd.Flags().StringVar(&analyzeFormat, "format", "table", "output format: table, json")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.Data.Dir = analyzeDataDir
	}
	if cmd.Flags().Changed("limit") {
		cfg.Data.Limit = analyzeLimit
	}

	ctx, cancel := signalContext()
	defer cancel()

	candles, name, err := loadAnalyzeCandles(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := buildAnalyzer(cfg).Analyze(candles)
	if err != nil {
		return err
	}

	if analyzeFormat == "json" {
		return outputJSON(model.InstrumentReport{Symbol: name, Candles: len(candles), Result: result})
	}
	outputAnalysis(name, len(candles), result)
	return nil
}

func loadAnalyzeCandles(ctx context.Context, cfg *config.Config) ([]model.Candle, string, error) {
	switch {
	case analyzeFile != "":
		candles, err := marketdata.ReadCandlesFile(analyzeFile)
		if err != nil {
			return nil, "", err
		}
		if cfg.Data.Limit > 0 && len(candles) > cfg.Data.Limit {
			candles = candles[len(candles)-cfg.Data.Limit:]
		}
		name := strings.TrimSuffix(filepath.Base(analyzeFile), filepath.Ext(analyzeFile))
		return candles, name, nil
	case analyzeSymbol != "":
		provider := marketdata.NewDirectoryProvider(cfg.Data.Dir)
		candles, err := provider.Candles(ctx, analyzeSymbol, cfg.Data.Limit)
		if err != nil {
			return nil, "", err
		}
		return candles, analyzeSymbol, nil
	default:
		return nil, "", fmt.Errorf("either --file or --symbol is required")
	}
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Analyze every instrument in the data directory",
		RunE:  runScan,
	}
	cmd.Flags().StringVar(&scanDataDir, "data-dir", "", "candle data directory")
	cmd.Flags().IntVar(&scanWorkers, "workers", 0, "number of parallel workers")
	cmd.Flags().IntVar(&scanLimit, "limit", 0, "most recent candles to analyze per instrument")
	cmd.Flags().Float64Var(&scanMinConfidence, "min-confidence", 0, "only report instruments at or above this confidence")
	cmd.Flags().StringVar(&scanFormat, "format", "table", "output format: table, json")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.Data.Dir = scanDataDir
	}
	if scanWorkers > 0 {
		cfg.Scanner.Workers = scanWorkers
	}
	if cmd.Flags().Changed("limit") {
		cfg.Data.Limit = scanLimit
	}

	ctx, cancel := signalContext()
	defer cancel()

	provider := marketdata.NewDirectoryProvider(cfg.Data.Dir)
	symbols, err := provider.Symbols(ctx)
	if err != nil {
		return fmt.Errorf("listing instruments: %w", err)
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no candle files found in %s", cfg.Data.Dir)
	}

	sess := session.New(buildAnalyzer(cfg), sessionConfig(cfg), log)
	s := scanner.NewScanner(provider, sess.Analyze, scanner.Config{
		Workers:     cfg.Scanner.Workers,
		Timeout:     cfg.Scanner.Timeout,
		CandleLimit: cfg.Data.Limit,
	}, log)

	fmt.Printf("Scanning %d instruments...\n\n", len(symbols))

	bar := newProgressBar(len(symbols), "Scanning")
	s.SetProgressCallback(func(scanned, total int) {
		bar.Set(scanned)
	})

	report, err := s.ScanSymbols(ctx, symbols)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	bar.Finish()
	fmt.Println()

	if scanMinConfidence > 0 {
		filtered := report.Reports[:0]
		for _, r := range report.Reports {
			if r.Result != nil && r.Result.Confidence >= scanMinConfidence {
				filtered = append(filtered, r)
			}
		}
		report.Reports = filtered
	}

	if scanFormat == "json" {
		return outputJSON(report)
	}
	outputScanTable(report)
	return nil
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run the pipeline bar by bar over a candle history",
		Long: `Replay grows the candle window one bar at a time and reports every
structure or regime transition. It also checks that pivots confirmed in an
earlier window never change in a later one.`,
		RunE: runReplay,
	}
	cmd.Flags().StringVar(&replayFile, "file", "", "candle CSV file")
	cmd.Flags().IntVar(&replayStart, "start", 30, "window size of the first analysis")
	cmd.Flags().StringVar(&replayFormat, "format", "table", "final result format: table, json")
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if replayFile == "" {
		return fmt.Errorf("--file is required")
	}

	ctx, cancel := signalContext()
	defer cancel()

	candles, err := marketdata.ReadCandlesFile(replayFile)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(replayFile), filepath.Ext(replayFile))

	start := replayStart
	if start < cfg.Analyzer.MinCandles {
		start = cfg.Analyzer.MinCandles
	}
	if start > len(candles) {
		return fmt.Errorf("start window %d exceeds history of %d candles", start, len(candles))
	}

	// Replay is a batch backfill, pacing would only slow it down.
	sessCfg := sessionConfig(cfg)
	sessCfg.RecomputePerSec = 0
	sess := session.New(buildAnalyzer(cfg), sessCfg, log)

	fmt.Printf("Replaying %s over %d candles from bar %d...\n\n", name, len(candles), start)

	bar := newProgressBar(len(candles)-start+1, "Replaying")

	var prev *model.AnalysisResult
	transitions := 0
	for i := start; i <= len(candles); i++ {
		select {
		case <-ctx.Done():
			bar.Finish()
			return ctx.Err()
		default:
		}

		result, err := sess.Analyze(ctx, name, candles[:i])
		if err != nil {
			return fmt.Errorf("analyzing window of %d: %w", i, err)
		}

		if prev != nil {
			if err := checkPivotPrefix(prev.Pivots, result.Pivots); err != nil {
				return fmt.Errorf("window of %d: %w", i, err)
			}
			if result.Structure != prev.Structure || result.Regime != prev.Regime {
				bar.Clear()
				fmt.Printf("bar %4d  %s/%s -> %s/%s  (confidence %.0f)\n",
					i-1, prev.Structure, prev.Regime, result.Structure, result.Regime, result.Confidence)
				transitions++
			}
		}
		prev = result
		bar.Set(i - start + 1)
	}

	bar.Finish()
	fmt.Printf("\n%d transitions, confirmed pivots stable across %d windows\n",
		transitions, len(candles)-start+1)

	if replayFormat == "json" {
		return outputJSON(model.InstrumentReport{Symbol: name, Candles: len(candles), Result: prev})
	}
	outputAnalysis(name, len(candles), prev)
	return nil
}

// checkPivotPrefix verifies confirmed pivots never repaint as the window
// grows. The final pivot of the earlier window may still be provisional, so
// everything before it must reappear unchanged and in place.
func checkPivotPrefix(prev, cur []model.Pivot) error {
	stable := len(prev)
	if stable > 0 {
		stable--
	}
	if len(cur) < stable {
		return fmt.Errorf("confirmed pivots regressed: had %d, now %d", len(prev), len(cur))
	}
	for i := 0; i < stable; i++ {
		if cur[i] != prev[i] {
			return fmt.Errorf("pivot %d repainted: %+v -> %+v", i, prev[i], cur[i])
		}
	}
	return nil
}

// setup loads the config, applies log flag overrides, and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = logFormat
	}
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted. Stopping...")
		cancel()
	}()
	return ctx, cancel
}

// buildAnalyzer wires the fractal signal source into the pipeline. Config
// validation guarantees exactly three spans.
func buildAnalyzer(cfg *config.Config) *analysis.MarketAnalyzer {
	spans := cfg.Semafor.Spans
	detector := semafor.NewDetector(semafor.Config{
		Spans:     [3]int{spans[0], spans[1], spans[2]},
		DedupATR:  cfg.Semafor.DedupATR,
		ATRPeriod: cfg.Analyzer.ATRPeriod,
	})
	return analysis.NewMarketAnalyzer(analysis.Config{
		ATRPeriod:    cfg.Analyzer.ATRPeriod,
		MinCandles:   cfg.Analyzer.MinCandles,
		SignalWindow: cfg.Analyzer.SignalWindow,
		Snapshot:     cfg.Analyzer.Snapshot,
		Pivots: analysis.PivotConfig{
			ReversalATR: cfg.Analyzer.ReversalATR,
		},
		Zones: analysis.ZoneConfig{
			Window:   cfg.Analyzer.ZoneWindow,
			MaxZones: cfg.Analyzer.ZoneLimit,
			StopATR:  cfg.Analyzer.StopATR,
		},
	}, detector.Source())
}

func sessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		RecomputePerSec: cfg.Session.RecomputePerSec,
		Burst:           cfg.Session.Burst,
		CacheSize:       cfg.Session.CacheSize,
	}
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func outputAnalysis(symbol string, candleCount int, result *model.AnalysisResult) {
	fmt.Printf("\n[%s] %d candles\n\n", symbol, candleCount)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Structure", "Regime", "Impulse", "Confidence", "Pivots", "Zones"}),
	)
	table.Append([]string{
		string(result.Structure),
		string(result.Regime),
		fmt.Sprintf("%.1f", result.ImpulseScore),
		fmt.Sprintf("%.1f", result.Confidence),
		fmt.Sprintf("%d", len(result.Pivots)),
		fmt.Sprintf("%d", len(result.Zones)),
	})
	table.Render()

	if len(result.Pivots) > 0 {
		fmt.Println("\n--- Recent Pivots ---")
		pivotTable := tablewriter.NewTable(os.Stdout,
			tablewriter.WithHeader([]string{"Type", "Price", "Bar", "Time"}),
		)
		pivots := result.Pivots
		if len(pivots) > 8 {
			pivots = pivots[len(pivots)-8:]
		}
		for _, p := range pivots {
			pivotTable.Append([]string{
				string(p.Type),
				fmt.Sprintf("%.2f", p.Price),
				fmt.Sprintf("%d", p.Index),
				time.Unix(p.Time, 0).UTC().Format("2006-01-02 15:04"),
			})
		}
		pivotTable.Render()
	}

	if len(result.Zones) > 0 {
		fmt.Println("\n--- Trade Zones ---")
		zoneTable := tablewriter.NewTable(os.Stdout,
			tablewriter.WithHeader([]string{"Type", "Entry", "Target", "Stop", "Conf"}),
		)
		for _, z := range result.Zones {
			zoneTable.Append([]string{
				string(z.Type),
				fmt.Sprintf("%.2f", z.EntryPrice),
				fmt.Sprintf("%.2f", z.ProfitTarget),
				fmt.Sprintf("%.2f", z.StopLoss),
				fmt.Sprintf("%.0f%%", z.Confidence),
			})
		}
		zoneTable.Render()
	}

	if t := result.Technical; t != nil {
		fmt.Printf("\n  EMA(20): %.2f | EMA(50): %.2f", t.EMA20, t.EMA50)
		if t.EMA200 > 0 {
			fmt.Printf(" | EMA(200): %.2f", t.EMA200)
		}
		fmt.Printf("\n  RSI(14): %.1f | Trend: %s\n", t.RSI14, t.Trend)
	}

	fmt.Printf("\n%s\n", result.Reasoning)
}

func outputScanTable(report *model.ScanReport) {
	if len(report.Reports) == 0 {
		fmt.Println("No instruments to report.")
		fmt.Printf("Scanned %d instruments in %s (%d failed)\n",
			report.TotalScanned, report.ScanTime.Round(time.Second), report.Failed)
		return
	}

	// Sort by confidence descending, symbol as tiebreaker
	reports := report.Reports
	sort.Slice(reports, func(i, j int) bool {
		ci, cj := reports[i].Result.Confidence, reports[j].Result.Confidence
		if ci != cj {
			return ci > cj
		}
		return reports[i].Symbol < reports[j].Symbol
	})

	fmt.Printf("Found %d instruments:\n\n", len(reports))

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Symbol", "Candles", "Structure", "Regime", "Impulse", "Conf", "Zones"}),
	)
	for _, r := range reports {
		table.Append([]string{
			r.Symbol,
			fmt.Sprintf("%d", r.Candles),
			string(r.Result.Structure),
			string(r.Result.Regime),
			fmt.Sprintf("%.0f", r.Result.ImpulseScore),
			fmt.Sprintf("%.0f%%", r.Result.Confidence),
			fmt.Sprintf("%d", len(r.Result.Zones)),
		})
	}
	table.Render()

	fmt.Println("\n--- Analysis Details ---")
	count := 0
	for _, r := range reports {
		if count >= 5 {
			break
		}
		fmt.Printf("\n[%s]\n", r.Symbol)
		fmt.Printf("  %s\n", r.Result.Reasoning)
		if t := r.Result.Technical; t != nil {
			fmt.Printf("  RSI(14): %.1f | Trend: %s\n", t.RSI14, t.Trend)
		}
		fmt.Printf("  >> Confidence: %.0f%%\n", r.Result.Confidence)
		count++
	}

	fmt.Printf("\nScanned %d instruments in %s (%d failed)\n",
		report.TotalScanned, report.ScanTime.Round(time.Second), report.Failed)
}

func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
