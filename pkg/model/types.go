package model

import "time"

// Candle represents a single OHLCV candlestick. Time is epoch seconds.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// PivotType marks a swing extreme as a high or a low
type PivotType string

const (
	PivotHigh PivotType = "HIGH"
	PivotLow  PivotType = "LOW"
)

// Pivot is a confirmed swing extreme. Pivots confirmed by a closing move
// never change as the window grows; only a pivot locked in at the very end
// of the window may still be revised by later candles.
type Pivot struct {
	Type  PivotType `json:"type"`
	Price float64   `json:"price"`
	Index int       `json:"index"`
	Time  int64     `json:"time"`
}

// MarketStructure labels the directional bias read from swing pivots
type MarketStructure string

const (
	StructureBullish MarketStructure = "Bullish"
	StructureBearish MarketStructure = "Bearish"
	StructureRange   MarketStructure = "Range"
)

// MarketRegime labels the volatility/trend character of the market
type MarketRegime string

const (
	RegimeExpansion   MarketRegime = "EXPANSION"
	RegimeCompression MarketRegime = "COMPRESSION"
	RegimeTrend       MarketRegime = "TREND"
	RegimeRange       MarketRegime = "RANGE"
)

// SignalType represents the direction of a trading signal
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

// Signal is one entry of the external signal feed consumed by the zone
// generator. Signal is empty while the underlying extreme is still forming;
// only confirmed entries carry a direction.
type Signal struct {
	Time           int64      `json:"time"`
	Price          float64    `json:"price"`
	Type           PivotType  `json:"type"`
	Strength       int        `json:"strength"`
	BarIndex       int        `json:"bar_index"`
	Signal         SignalType `json:"signal,omitempty"`
	SignalStrength int        `json:"signal_strength,omitempty"`
}

// SignalSource produces the signal feed for a candle window. Implementations
// must be deterministic and must not retain or mutate the candle slice.
type SignalSource func(candles []Candle) []Signal

// TradingZone is a candidate trade derived from an external signal and still
// valid against the current price. Zones are rebuilt on every analysis call.
type TradingZone struct {
	ID           string     `json:"id"`
	Type         SignalType `json:"type"`
	EntryPrice   float64    `json:"entry_price"`
	ProfitTarget float64    `json:"profit_target"`
	StopLoss     float64    `json:"stop_loss"`
	Confidence   float64    `json:"confidence"`
	Reasoning    string     `json:"reasoning"`
	Time         int64      `json:"time"`
}

// Trend labels for the indicator snapshot
const (
	TrendBullish = "BULLISH"
	TrendBearish = "BEARISH"
	TrendNeutral = "NEUTRAL"
)

// IndicatorSnapshot carries supplementary EMA/RSI context for a result.
// Values are 0 when the history is too short for the period.
type IndicatorSnapshot struct {
	EMA20  float64 `json:"ema20"`
	EMA50  float64 `json:"ema50"`
	EMA200 float64 `json:"ema200"`
	RSI14  float64 `json:"rsi14"`
	Trend  string  `json:"trend"`
}

// AnalysisResult is the single output of one analysis run
type AnalysisResult struct {
	Structure    MarketStructure    `json:"structure"`
	Regime       MarketRegime       `json:"regime"`
	ImpulseScore float64            `json:"impulse_score"`
	Confidence   float64            `json:"confidence"`
	Pivots       []Pivot            `json:"pivots"`
	Reasoning    string             `json:"reasoning"`
	Zones        []TradingZone      `json:"zones"`
	Technical    *IndicatorSnapshot `json:"technical,omitempty"`
}

// InstrumentReport pairs a symbol with its analysis result
type InstrumentReport struct {
	Symbol  string          `json:"symbol"`
	Candles int             `json:"candles"`
	Result  *AnalysisResult `json:"result"`
}

// ScanReport represents the final multi-symbol scan output
type ScanReport struct {
	TotalScanned int                `json:"total_scanned"`
	Failed       int                `json:"failed"`
	Reports      []InstrumentReport `json:"reports"`
	ScanTime     time.Duration      `json:"scan_time"`
}
