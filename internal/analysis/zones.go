package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// zoneNamespace seeds the name-based UUIDs so a signal always maps to the
// same zone ID across runs and processes.
var zoneNamespace = uuid.MustParse("7f0d3a52-9c6e-4b8d-a1f3-2e5b8c9d0a41")

// ZoneConfig controls trade zone generation.
type ZoneConfig struct {
	// Window is how many bars back a signal remains zone-eligible.
	Window int
	// MaxZones caps how many of the most recent eligible signals are used.
	MaxZones int
	// StopATR is the stop-loss distance in ATR units.
	StopATR float64
	// ProximityPct is how far the current price may sit from the entry,
	// as a fraction of the entry price.
	ProximityPct float64
}

// DefaultZoneConfig returns the standard zone generation settings.
func DefaultZoneConfig() ZoneConfig {
	return ZoneConfig{
		Window:       50,
		MaxZones:     10,
		StopATR:      0.8,
		ProximityPct: 0.05,
	}
}

// ZoneGenerator turns recent directional signals into actionable trade zones
// with entry, target and stop levels sized by the current ATR.
type ZoneGenerator struct {
	config ZoneConfig
}

// NewZoneGenerator creates a zone generator with the given settings.
func NewZoneGenerator(config ZoneConfig) *ZoneGenerator {
	def := DefaultZoneConfig()
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.MaxZones <= 0 {
		config.MaxZones = def.MaxZones
	}
	if config.StopATR <= 0 {
		config.StopATR = def.StopATR
	}
	if config.ProximityPct <= 0 {
		config.ProximityPct = def.ProximityPct
	}
	return &ZoneGenerator{config: config}
}

// Generate builds trade zones from the signal feed. Only signals carrying a
// direction and landing inside the recency window are considered, capped to
// the most recent MaxZones entries. Zones whose target or stop the current
// price has already crossed, or whose entry sits too far from the current
// price, are dropped. A non-positive final ATR disables zone generation.
// The returned slice is never nil.
func (g *ZoneGenerator) Generate(candles []model.Candle, signals []model.Signal, atr []float64, currentPrice, overallConfidence float64) []model.TradingZone {
	zones := []model.TradingZone{}
	if len(candles) == 0 || len(atr) == 0 {
		return zones
	}
	currentATR := atr[len(atr)-1]
	if currentATR <= 0 {
		return zones
	}

	minIndex := len(candles) - g.config.Window
	eligible := make([]model.Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Signal == "" || sig.BarIndex < minIndex {
			continue
		}
		eligible = append(eligible, sig)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].BarIndex < eligible[j].BarIndex
	})
	if len(eligible) > g.config.MaxZones {
		eligible = eligible[len(eligible)-g.config.MaxZones:]
	}

	for _, sig := range eligible {
		entry := sig.Price
		if entry <= 0 {
			continue
		}

		strength := sig.SignalStrength
		atrMultiplier := 1.5
		switch strength {
		case 3:
			atrMultiplier = 2.5
		case 2:
			atrMultiplier = 2.0
		}

		baseConfidence := float64(strength) * 20
		confidenceMultiplier := 0.5 + overallConfidence/100
		zoneConfidence := math.Min(100, math.Round(baseConfidence*confidenceMultiplier))

		nearEntry := math.Abs(currentPrice-entry)/entry <= g.config.ProximityPct

		var target, stop float64
		switch sig.Signal {
		case model.SignalBuy:
			target = entry + currentATR*atrMultiplier
			stop = entry - currentATR*g.config.StopATR
			if currentPrice >= target || currentPrice <= stop {
				continue
			}
			if !nearEntry && currentPrice < entry*(1-g.config.ProximityPct) {
				continue
			}
		case model.SignalSell:
			target = entry - currentATR*atrMultiplier
			stop = entry + currentATR*g.config.StopATR
			if currentPrice <= target || currentPrice >= stop {
				continue
			}
			if !nearEntry && currentPrice > entry*(1+g.config.ProximityPct) {
				continue
			}
		default:
			continue
		}

		zones = append(zones, model.TradingZone{
			ID:           zoneID(sig),
			Type:         sig.Signal,
			EntryPrice:   entry,
			ProfitTarget: target,
			StopLoss:     stop,
			Confidence:   zoneConfidence,
			Reasoning: fmt.Sprintf("%s signal strength %d: target %.2f, stop %.2f",
				sig.Signal, strength, target, stop),
			Time: sig.Time,
		})
	}

	return zones
}

// zoneID derives a stable identifier from the signal that produced the zone.
func zoneID(sig model.Signal) string {
	name := fmt.Sprintf("%s|%d|%d|%.8f", sig.Signal, sig.Time, sig.BarIndex, sig.Price)
	return uuid.NewSHA1(zoneNamespace, []byte(name)).String()
}
