package analysis

import (
	"fmt"

	"github.com/Atifelx/CryptoClever-sub000/internal/indicator"
	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// Config holds the orchestrator settings.
type Config struct {
	// ATRPeriod is the Wilder smoothing period for the volatility series.
	ATRPeriod int
	// MinCandles is the minimum history for a non-degenerate result.
	MinCandles int
	// SignalWindow is how many bars back external signals can override the
	// pivot-based structure.
	SignalWindow int
	// Snapshot attaches an EMA/RSI snapshot when enough history exists.
	Snapshot bool

	Pivots PivotConfig
	Zones  ZoneConfig
}

// DefaultConfig returns the standard analyzer settings.
func DefaultConfig() Config {
	return Config{
		ATRPeriod:    DefaultATRPeriod,
		MinCandles:   20,
		SignalWindow: 30,
		Snapshot:     true,
		Pivots:       DefaultPivotConfig(),
		Zones:        DefaultZoneConfig(),
	}
}

// MarketAnalyzer runs the full structure pipeline over a candle window:
// ATR, pivots, structure, impulse, regime, confidence, zones and reasoning.
// The analyzer holds no mutable state, so a single instance is safe to use
// from many goroutines, and identical input always yields an identical
// result.
type MarketAnalyzer struct {
	config  Config
	engine  *PivotEngine
	zones   *ZoneGenerator
	signals model.SignalSource
}

// NewMarketAnalyzer creates an analyzer. The signal source may be nil, in
// which case the structure override and zone generation see an empty feed.
func NewMarketAnalyzer(config Config, signals model.SignalSource) *MarketAnalyzer {
	def := DefaultConfig()
	if config.ATRPeriod <= 0 {
		config.ATRPeriod = def.ATRPeriod
	}
	if config.MinCandles <= 0 {
		config.MinCandles = def.MinCandles
	}
	if config.SignalWindow <= 0 {
		config.SignalWindow = def.SignalWindow
	}
	return &MarketAnalyzer{
		config:  config,
		engine:  NewPivotEngine(config.Pivots),
		zones:   NewZoneGenerator(config.Zones),
		signals: signals,
	}
}

// Analyze runs the pipeline over the candles. It returns an error only for
// malformed input (non-finite values, unordered or duplicate timestamps);
// short histories produce a degenerate result instead.
func (a *MarketAnalyzer) Analyze(candles []model.Candle) (*model.AnalysisResult, error) {
	if err := model.ValidateCandles(candles); err != nil {
		return nil, fmt.Errorf("analyzing candles: %w", err)
	}

	if len(candles) < a.config.MinCandles {
		return &model.AnalysisResult{
			Structure: model.StructureRange,
			Regime:    model.RegimeRange,
			Pivots:    []model.Pivot{},
			Zones:     []model.TradingZone{},
			Reasoning: fmt.Sprintf("Insufficient candles for analysis: need %d, got %d",
				a.config.MinCandles, len(candles)),
		}, nil
	}

	atr := CalculateATR(candles, a.config.ATRPeriod)
	pivots := a.engine.Detect(candles, atr)
	structure := ClassifyStructure(pivots)

	var signals []model.Signal
	if a.signals != nil {
		signals = a.signals(candles)
	}
	structure = a.overrideStructure(structure, signals, len(candles))

	impulseScore := ScoreImpulse(candles, pivots, atr)
	regime := ClassifyRegime(candles, pivots, atr)
	confidence := AggregateConfidence(structure, impulseScore, regime)

	currentPrice := candles[len(candles)-1].Close
	zones := a.zones.Generate(candles, signals, atr, currentPrice, confidence)

	result := &model.AnalysisResult{
		Structure:    structure,
		Regime:       regime,
		ImpulseScore: impulseScore,
		Confidence:   confidence,
		Pivots:       pivots,
		Zones:        zones,
		Reasoning:    BuildReasoning(structure, regime, impulseScore, signals, zones, len(candles)),
	}
	if a.config.Snapshot {
		result.Technical = indicator.Compute(candles)
	}
	return result, nil
}

// overrideStructure lets a dense cluster of recent directional signals win
// over the pivot-based label. A 60% majority flips the structure outright;
// below that, a simple majority of at least two signals still flips it.
func (a *MarketAnalyzer) overrideStructure(structure model.MarketStructure, signals []model.Signal, candleCount int) model.MarketStructure {
	buys, sells := countSignals(signals, candleCount-a.config.SignalWindow)
	total := buys + sells
	if total == 0 {
		return structure
	}
	buyRatio := float64(buys) / float64(total)
	sellRatio := float64(sells) / float64(total)
	switch {
	case sellRatio >= 0.6:
		return model.StructureBearish
	case buyRatio >= 0.6:
		return model.StructureBullish
	case sells > buys && sells >= 2:
		return model.StructureBearish
	case buys > sells && buys >= 2:
		return model.StructureBullish
	default:
		return structure
	}
}
