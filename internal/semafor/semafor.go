// Package semafor implements a multi-level fractal signal detector. Each
// level looks for bars whose wick is the extreme of a symmetric window; wider
// windows mark more significant turning points. Lows become BUY signals and
// highs become SELL signals, with the window level as the signal strength.
package semafor

import (
	"math"

	"github.com/Atifelx/CryptoClever-sub000/internal/analysis"
	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// Config controls fractal detection.
type Config struct {
	// Spans are the window half-widths for levels 1 through 3, smallest
	// first. A bar is a level-k extreme when no bar within Spans[k-1] on
	// either side exceeds it.
	Spans [3]int
	// DedupATR collapses consecutive same-direction signals closer than
	// this many ATRs in price. Zero disables the collapse.
	DedupATR float64
	// ATRPeriod is the smoothing period for the dedup distance.
	ATRPeriod int
}

// DefaultConfig returns the standard detector settings.
func DefaultConfig() Config {
	return Config{
		Spans:     [3]int{2, 5, 13},
		DedupATR:  0.5,
		ATRPeriod: analysis.DefaultATRPeriod,
	}
}

// Detector finds fractal extremes over a candle window. It is stateless and
// safe for concurrent use.
type Detector struct {
	config Config
}

// NewDetector creates a detector with the given settings.
func NewDetector(config Config) *Detector {
	def := DefaultConfig()
	for i, span := range config.Spans {
		if span < 1 {
			config.Spans[i] = def.Spans[i]
		}
	}
	if config.Spans[0] > config.Spans[1] || config.Spans[1] > config.Spans[2] {
		config.Spans = def.Spans
	}
	if config.DedupATR < 0 {
		config.DedupATR = def.DedupATR
	}
	if config.ATRPeriod < 1 {
		config.ATRPeriod = def.ATRPeriod
	}
	return &Detector{config: config}
}

// Source adapts the detector to the signal feed shape the analyzer consumes.
func (d *Detector) Source() model.SignalSource {
	return d.Detect
}

// Detect returns confirmed fractal signals in bar order, followed by at most
// one still-forming extreme near the window's end. Confirmed entries carry a
// BUY or SELL direction; the forming entry has an empty direction because
// later candles may still displace it. The returned slice is never nil.
func (d *Detector) Detect(candles []model.Candle) []model.Signal {
	signals := []model.Signal{}
	n := len(candles)
	if n < 2*d.config.Spans[0]+1 {
		return signals
	}

	atr := analysis.CalculateATR(candles, d.config.ATRPeriod)

	levels := make([]int, n)
	types := make([]model.PivotType, n)
	ambiguous := make([]bool, n)

	for level := 3; level >= 1; level-- {
		span := d.config.Spans[level-1]
		for i := span; i <= n-1-span; i++ {
			if levels[i] != 0 || ambiguous[i] {
				continue
			}
			isHigh := windowHigh(candles, i, span)
			isLow := windowLow(candles, i, span)
			switch {
			case isHigh && isLow:
				ambiguous[i] = true
			case isHigh:
				levels[i] = level
				types[i] = model.PivotHigh
			case isLow:
				levels[i] = level
				types[i] = model.PivotLow
			}
		}
	}

	for i := 0; i < n; i++ {
		if levels[i] == 0 {
			continue
		}
		sig := model.Signal{
			Time:           candles[i].Time,
			Type:           types[i],
			Strength:       levels[i],
			BarIndex:       i,
			SignalStrength: levels[i],
		}
		if types[i] == model.PivotHigh {
			sig.Price = candles[i].High
			sig.Signal = model.SignalSell
		} else {
			sig.Price = candles[i].Low
			sig.Signal = model.SignalBuy
		}
		signals = dedupAppend(signals, sig, atr, d.config.DedupATR)
	}

	if forming, ok := d.formingExtreme(candles); ok {
		signals = append(signals, forming)
	}
	return signals
}

// windowHigh reports whether the bar's high is unbeaten within span bars on
// both sides. Equal highs do not disqualify the bar.
func windowHigh(candles []model.Candle, i, span int) bool {
	for j := i - span; j <= i+span; j++ {
		if j == i {
			continue
		}
		if candles[j].High > candles[i].High {
			return false
		}
	}
	return true
}

// windowLow mirrors windowHigh for lows.
func windowLow(candles []model.Candle, i, span int) bool {
	for j := i - span; j <= i+span; j++ {
		if j == i {
			continue
		}
		if candles[j].Low < candles[i].Low {
			return false
		}
	}
	return true
}

// dedupAppend appends the signal, collapsing it with the previous one when
// both point the same way and sit closer together than the ATR distance. The
// more extreme price wins; on a tie the earlier signal stays.
func dedupAppend(signals []model.Signal, sig model.Signal, atr []float64, dedupATR float64) []model.Signal {
	if dedupATR <= 0 || len(signals) == 0 {
		return append(signals, sig)
	}
	prev := &signals[len(signals)-1]
	if prev.Type != sig.Type || math.Abs(sig.Price-prev.Price) >= dedupATR*atr[sig.BarIndex] {
		return append(signals, sig)
	}
	better := (sig.Type == model.PivotHigh && sig.Price > prev.Price) ||
		(sig.Type == model.PivotLow && sig.Price < prev.Price)
	if better || sig.Strength > prev.Strength {
		*prev = sig
	}
	return signals
}

// formingExtreme looks at the bars whose right-hand window is still open and
// returns the newest one that is the extreme of everything seen since its
// left window began. It may be displaced by later candles, so it carries no
// direction yet.
func (d *Detector) formingExtreme(candles []model.Candle) (model.Signal, bool) {
	n := len(candles)
	span := d.config.Spans[0]
	for i := n - 1; i > n-1-span && i >= span; i-- {
		isHigh := tailHigh(candles, i, span)
		isLow := tailLow(candles, i, span)
		if isHigh == isLow {
			continue
		}
		sig := model.Signal{
			Time:     candles[i].Time,
			Strength: 1,
			BarIndex: i,
		}
		if isHigh {
			sig.Type = model.PivotHigh
			sig.Price = candles[i].High
		} else {
			sig.Type = model.PivotLow
			sig.Price = candles[i].Low
		}
		return sig, true
	}
	return model.Signal{}, false
}

// tailHigh checks extremity over the left window plus every bar up to the
// window's end, since no full right window exists yet.
func tailHigh(candles []model.Candle, i, span int) bool {
	for j := i - span; j < len(candles); j++ {
		if j == i {
			continue
		}
		if candles[j].High > candles[i].High {
			return false
		}
	}
	return true
}

// tailLow mirrors tailHigh for lows.
func tailLow(candles []model.Candle, i, span int) bool {
	for j := i - span; j < len(candles); j++ {
		if j == i {
			continue
		}
		if candles[j].Low < candles[i].Low {
			return false
		}
	}
	return true
}
