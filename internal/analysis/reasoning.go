package analysis

import (
	"fmt"
	"strings"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// BuildReasoning renders the analysis into one human-readable paragraph.
// The output is a pure function of its inputs so identical analyses always
// produce identical text.
func BuildReasoning(structure model.MarketStructure, regime model.MarketRegime, impulseScore float64, signals []model.Signal, zones []model.TradingZone, candleCount int) string {
	var b strings.Builder

	recentBuys, recentSells := countSignals(signals, candleCount-10)
	fmt.Fprintf(&b, "Market structure is %s with %d BUY and %d SELL signals in the last 10 bars.",
		structure, recentBuys, recentSells)

	fmt.Fprintf(&b, " Regime: %s.", regime)

	bucket := "moderate momentum"
	if impulseScore > 60 {
		bucket = "strong directional move"
	} else if impulseScore < 40 {
		bucket = "weak momentum"
	}
	fmt.Fprintf(&b, " Impulse %.0f/100 (%s).", impulseScore, bucket)

	if len(zones) == 0 {
		b.WriteString(" No active trade zones.")
		return b.String()
	}
	var buyZones, sellZones int
	for _, z := range zones {
		switch z.Type {
		case model.SignalBuy:
			buyZones++
		case model.SignalSell:
			sellZones++
		}
	}
	fmt.Fprintf(&b, " Active zones: %d BUY, %d SELL.", buyZones, sellZones)
	return b.String()
}

// countSignals tallies directional signals at or after the given bar index.
func countSignals(signals []model.Signal, minIndex int) (buys, sells int) {
	for _, sig := range signals {
		if sig.BarIndex < minIndex {
			continue
		}
		switch sig.Signal {
		case model.SignalBuy:
			buys++
		case model.SignalSell:
			sells++
		}
	}
	return buys, sells
}
