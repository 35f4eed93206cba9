// Package indicator computes a compact EMA/RSI snapshot used to annotate
// analysis results.
package indicator

import (
	"github.com/markcheno/go-talib"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// minCloses is the shortest history that yields a meaningful snapshot; below
// it the fast/slow EMA pair cannot be compared.
const minCloses = 50

// Compute returns an indicator snapshot for the candle window, or nil when
// fewer than 50 closes are available. EMA200 stays zero until 200 closes
// exist.
func Compute(candles []model.Candle) *model.IndicatorSnapshot {
	if len(candles) < minCloses {
		return nil
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	snap := &model.IndicatorSnapshot{
		EMA20: lastNonZero(talib.Ema(closes, 20)),
		EMA50: lastNonZero(talib.Ema(closes, 50)),
		RSI14: lastNonZero(talib.Rsi(closes, 14)),
	}
	if len(closes) >= 200 {
		snap.EMA200 = lastNonZero(talib.Ema(closes, 200))
	}

	switch {
	case snap.EMA20 > snap.EMA50*1.002:
		snap.Trend = model.TrendBullish
	case snap.EMA20 < snap.EMA50*0.998:
		snap.Trend = model.TrendBearish
	default:
		snap.Trend = model.TrendNeutral
	}
	return snap
}

// lastNonZero walks an indicator series backwards past the zero padding
// talib emits during warmup.
func lastNonZero(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != 0 {
			return values[i]
		}
	}
	return 0
}
