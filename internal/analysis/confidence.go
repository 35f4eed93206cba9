package analysis

import (
	"math"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// AggregateConfidence blends structure, impulse and regime into a single
// 0-100 score. A directional structure contributes 40 points against 20 for
// Range; the impulse score scales into 30 points; the regime contributes up
// to 30 depending on how well it agrees with the structure.
func AggregateConfidence(structure model.MarketStructure, impulseScore float64, regime model.MarketRegime) float64 {
	structureScore := 20.0
	if structure == model.StructureBullish || structure == model.StructureBearish {
		structureScore = 40.0
	}

	impulseContribution := impulseScore / 100 * 30

	var regimeScore float64
	switch regime {
	case model.RegimeTrend, model.RegimeExpansion:
		regimeScore = 30
		if structure == model.StructureRange {
			regimeScore = 15
		}
	case model.RegimeCompression:
		regimeScore = 10
	case model.RegimeRange:
		regimeScore = 20
		if structure != model.StructureRange {
			regimeScore = 10
		}
	}

	confidence := structureScore + impulseContribution + regimeScore
	return math.Max(0, math.Min(confidence, 100))
}
