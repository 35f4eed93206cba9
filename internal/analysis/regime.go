package analysis

import (
	"math"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// ClassifyRegime labels the volatility regime from three measures: the slope
// of the ATR over two adjacent lookback windows, the contraction between the
// two most recent swing amplitudes, and the dispersion of recent closes.
// The checks run in a fixed priority order, first match wins. Fewer than 20
// candles or ATR values yields RANGE.
func ClassifyRegime(candles []model.Candle, pivots []model.Pivot, atr []float64) model.MarketRegime {
	if len(candles) < 20 || len(atr) < 20 {
		return model.RegimeRange
	}

	lookback := 20
	if half := len(candles) / 2; half < lookback {
		lookback = half
	}

	slope := atrSlopePercent(atr, lookback)
	contraction := swingContractionPercent(pivots)
	dispersion := closeDispersionPercent(candles, lookback)

	switch {
	case slope > 5 && contraction < -10:
		return model.RegimeExpansion
	case slope < -5 && contraction > 10:
		return model.RegimeCompression
	case math.Abs(slope) > 3 && dispersion > 1 && math.Abs(contraction) < 5:
		return model.RegimeTrend
	default:
		return model.RegimeRange
	}
}

// atrSlopePercent compares the mean ATR over the last lookback values with
// the mean over the window immediately before it.
func atrSlopePercent(atr []float64, lookback int) float64 {
	if lookback < 1 || len(atr) < 2*lookback {
		return 0
	}
	recent := mean(atr[len(atr)-lookback:])
	older := mean(atr[len(atr)-2*lookback : len(atr)-lookback])
	if older == 0 {
		return 0
	}
	return (recent - older) / older * 100
}

// swingContractionPercent measures how much the latest swing shrank relative
// to the swing before it. Positive values mean contraction, negative means
// the latest swing expanded. Needs at least three pivots for two amplitudes.
func swingContractionPercent(pivots []model.Pivot) float64 {
	if len(pivots) < 3 {
		return 0
	}
	lastAmp := math.Abs(pivots[len(pivots)-1].Price - pivots[len(pivots)-2].Price)
	prevAmp := math.Abs(pivots[len(pivots)-2].Price - pivots[len(pivots)-3].Price)
	if prevAmp == 0 {
		return 0
	}
	return (prevAmp - lastAmp) / prevAmp * 100
}

// closeDispersionPercent is the population standard deviation of the last
// lookback closes expressed as a percentage of their mean.
func closeDispersionPercent(candles []model.Candle, lookback int) float64 {
	if lookback < 1 || len(candles) < lookback {
		return 0
	}
	closes := make([]float64, lookback)
	for i := 0; i < lookback; i++ {
		closes[i] = candles[len(candles)-lookback+i].Close
	}
	m := mean(closes)
	if m == 0 {
		return 0
	}
	var variance float64
	for _, c := range closes {
		variance += (c - m) * (c - m)
	}
	variance /= float64(lookback)
	return math.Sqrt(variance) / m * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
