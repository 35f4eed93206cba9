package analysis

import "github.com/Atifelx/CryptoClever-sub000/pkg/model"

// ClassifyStructure labels the directional bias implied by the confirmed
// pivot sequence. Bullish requires both the last two swing highs and the
// last two swing lows to be strictly rising, Bearish requires both strictly
// falling, and anything else is Range. Fewer than four pivots, or fewer than
// two of either type, is Range.
func ClassifyStructure(pivots []model.Pivot) model.MarketStructure {
	if len(pivots) < 4 {
		return model.StructureRange
	}

	var highs, lows []model.Pivot
	for i := len(pivots) - 1; i >= 0 && (len(highs) < 2 || len(lows) < 2); i-- {
		switch pivots[i].Type {
		case model.PivotHigh:
			if len(highs) < 2 {
				highs = append(highs, pivots[i])
			}
		case model.PivotLow:
			if len(lows) < 2 {
				lows = append(lows, pivots[i])
			}
		}
	}
	if len(highs) < 2 || len(lows) < 2 {
		return model.StructureRange
	}

	higherHighs := highs[0].Price > highs[1].Price
	higherLows := lows[0].Price > lows[1].Price
	lowerHighs := highs[0].Price < highs[1].Price
	lowerLows := lows[0].Price < lows[1].Price

	switch {
	case higherHighs && higherLows:
		return model.StructureBullish
	case lowerHighs && lowerLows:
		return model.StructureBearish
	default:
		return model.StructureRange
	}
}
