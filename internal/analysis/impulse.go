package analysis

import (
	"math"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// ScoreImpulse rates the size and speed of the most recent completed swing
// on a 0-100 scale. The score blends three capped factors: the ratio of the
// swing to the pullback before it (up to 40), close velocity relative to ATR
// (up to 30), and swing size in ATR units (up to 30). It returns 0 when
// fewer than four pivots exist, when the latest two pivots do not form a
// directional leg, or when the ATR or bar span of the leg is zero.
func ScoreImpulse(candles []model.Candle, pivots []model.Pivot, atr []float64) float64 {
	if len(pivots) < 4 || len(atr) == 0 {
		return 0
	}

	last := pivots[len(pivots)-1]
	secondLast := pivots[len(pivots)-2]
	thirdLast := pivots[len(pivots)-3]

	bullish := last.Type == model.PivotHigh && secondLast.Type == model.PivotLow
	bearish := last.Type == model.PivotLow && secondLast.Type == model.PivotHigh
	if !bullish && !bearish {
		return 0
	}

	impulseSize := math.Abs(last.Price - secondLast.Price)
	pullback := 0.0
	if thirdLast.Type == last.Type {
		pullback = math.Abs(thirdLast.Price - secondLast.Price)
	}

	numberOfBars := last.Index - secondLast.Index
	if numberOfBars <= 0 {
		return 0
	}

	currentATR := atr[len(atr)-1]
	if last.Index >= 0 && last.Index < len(atr) {
		currentATR = atr[last.Index]
	}
	if currentATR <= 0 {
		return 0
	}

	impulseRatio := 0.0
	if pullback > 0 {
		impulseRatio = impulseSize / pullback
	}
	velocity := impulseSize / float64(numberOfBars)
	normalized := impulseSize / currentATR

	score := math.Min(impulseRatio*20, 40)
	score += math.Min(velocity/currentATR*30, 30)
	score += math.Min(normalized*10, 30)

	return math.Max(0, math.Min(score, 100))
}
