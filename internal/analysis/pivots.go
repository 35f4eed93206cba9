package analysis

import (
	"math"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// PivotConfig controls swing pivot confirmation.
type PivotConfig struct {
	// ReversalATR is the ATR multiple a close must travel away from the
	// last confirmed pivot before the pending opposite extreme is locked in.
	ReversalATR float64
}

// DefaultPivotConfig returns the standard confirmation settings.
func DefaultPivotConfig() PivotConfig {
	return PivotConfig{ReversalATR: 1.5}
}

// PivotEngine detects alternating swing pivots over a candle window. A pivot
// is held as a pending candidate until price closes far enough away from the
// previous confirmed pivot; confirmed pivots are never revised afterwards, so
// re-running the engine over a longer window leaves earlier confirmations
// intact.
type PivotEngine struct {
	config PivotConfig
}

// NewPivotEngine creates a pivot engine with the given settings.
func NewPivotEngine(config PivotConfig) *PivotEngine {
	if config.ReversalATR <= 0 {
		config.ReversalATR = DefaultPivotConfig().ReversalATR
	}
	return &PivotEngine{config: config}
}

// Detect scans the candles and returns confirmed pivots in time order. The
// atr slice must be index-aligned with the candles; on a length mismatch or
// fewer than three candles the result is empty. The returned slice is never
// nil.
func (e *PivotEngine) Detect(candles []model.Candle, atr []float64) []model.Pivot {
	pivots := []model.Pivot{}
	n := len(candles)
	if n < 3 || len(atr) != n {
		return pivots
	}

	var (
		last       model.Pivot
		hasLast    bool
		pending    model.Pivot
		hasPending bool
	)
	seen := make(map[int64]struct{}, n)

	confirm := func() {
		if !hasLast || pending.Time > last.Time {
			pivots = append(pivots, pending)
		}
		last = pending
		hasLast = true
		hasPending = false
	}

	offer := func(t model.PivotType, price float64, index int, ts int64) {
		if !hasPending {
			pending = model.Pivot{Type: t, Price: price, Index: index, Time: ts}
			hasPending = true
			return
		}
		if pending.Type != t {
			return
		}
		if (t == model.PivotHigh && price > pending.Price) ||
			(t == model.PivotLow && price < pending.Price) {
			pending = model.Pivot{Type: t, Price: price, Index: index, Time: ts}
		}
	}

	for i := 1; i <= n-2; i++ {
		c := candles[i]
		if _, dup := seen[c.Time]; dup {
			continue
		}
		seen[c.Time] = struct{}{}

		isHigh := c.High >= candles[i-1].High && c.High >= candles[i+1].High
		isLow := c.Low <= candles[i-1].Low && c.Low <= candles[i+1].Low
		highEligible := isHigh && (!hasLast || last.Type != model.PivotHigh)
		lowEligible := isLow && (!hasLast || last.Type != model.PivotLow)

		switch {
		case highEligible && lowEligible:
			// ambiguous bar, qualifies as both extremes; offer nothing
		case highEligible:
			offer(model.PivotHigh, c.High, i, c.Time)
		case lowEligible:
			offer(model.PivotLow, c.Low, i, c.Time)
		}

		if hasLast && hasPending {
			if math.Abs(c.Close-last.Price) >= atr[i]*e.config.ReversalATR {
				confirm()
			}
		}

		if !hasLast && hasPending && i >= 2 {
			confirm()
		}
	}

	// A pending extreme at the end of the window is locked in when the final
	// close already sits a full reversal away from the last confirmation.
	// Until then it stays provisional and may be revised by later candles.
	if hasPending && hasLast {
		final := candles[n-1]
		if math.Abs(final.Close-last.Price) >= atr[n-1]*e.config.ReversalATR {
			confirm()
		}
	}

	return pivots
}
