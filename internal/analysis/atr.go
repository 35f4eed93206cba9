package analysis

import (
	"math"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// DefaultATRPeriod is the Wilder smoothing period used across the pipeline
const DefaultATRPeriod = 14

// CalculateATR computes an Average True Range series index-aligned with the
// input candles. True range per bar is max(high-low, |high-prevClose|,
// |low-prevClose|); the first bar has no previous close so its TR is
// high-low. Values before a full period are the expanding simple average of
// the true ranges seen so far, which also serves as the only mode for
// histories shorter than the period; from index `period` on the series uses
// Wilder smoothing. The output length always equals the input length.
func CalculateATR(candles []model.Candle, period int) []float64 {
	n := len(candles)
	atr := make([]float64, n)
	if n == 0 {
		return atr
	}
	if period < 1 {
		period = 1
	}

	tr := make([]float64, n)
	tr[0] = candles[0].High - candles[0].Low
	for i := 1; i < n; i++ {
		highLow := candles[i].High - candles[i].Low
		highClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowClose := math.Abs(candles[i].Low - candles[i-1].Close)
		tr[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}

	var sum float64
	for i := 0; i < n; i++ {
		if i < period {
			sum += tr[i]
			atr[i] = sum / float64(i+1)
			continue
		}
		atr[i] = (atr[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return atr
}
