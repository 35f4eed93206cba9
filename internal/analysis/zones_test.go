package analysis

import (
	"reflect"
	"testing"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

func buySignal(barIndex int, price float64, strength int) model.Signal {
	return model.Signal{
		Time:           int64(2000 + barIndex),
		Price:          price,
		Type:           model.PivotLow,
		Strength:       strength,
		BarIndex:       barIndex,
		Signal:         model.SignalBuy,
		SignalStrength: strength,
	}
}

func sellSignal(barIndex int, price float64, strength int) model.Signal {
	return model.Signal{
		Time:           int64(2000 + barIndex),
		Price:          price,
		Type:           model.PivotHigh,
		Strength:       strength,
		BarIndex:       barIndex,
		Signal:         model.SignalSell,
		SignalStrength: strength,
	}
}

func TestZoneGeneratorBuyZone(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	atr := uniformATR(60, 2.0)
	gen := NewZoneGenerator(DefaultZoneConfig())

	zones := gen.Generate(candles, []model.Signal{buySignal(55, 100, 2)}, atr, 101, 50)
	if len(zones) != 1 {
		t.Fatalf("Expected 1 zone, got %d", len(zones))
	}

	z := zones[0]
	if z.Type != model.SignalBuy {
		t.Errorf("Expected BUY zone, got %s", z.Type)
	}
	if !floatNear(z.EntryPrice, 100) || !floatNear(z.ProfitTarget, 104) || !floatNear(z.StopLoss, 98.4) {
		t.Errorf("Expected entry 100, target 104, stop 98.4; got %v, %v, %v",
			z.EntryPrice, z.ProfitTarget, z.StopLoss)
	}
	if !(z.StopLoss < z.EntryPrice && z.EntryPrice < z.ProfitTarget) {
		t.Errorf("Expected stop < entry < target, got %v, %v, %v", z.StopLoss, z.EntryPrice, z.ProfitTarget)
	}
	// Base 40 for strength 2 times the 1.0 multiplier at 50 overall.
	if z.Confidence != 40 {
		t.Errorf("Expected zone confidence 40, got %v", z.Confidence)
	}
	if z.Time != 2055 {
		t.Errorf("Expected zone time 2055, got %d", z.Time)
	}
	if z.ID == "" {
		t.Error("Expected a non-empty zone ID")
	}
	want := "BUY signal strength 2: target 104.00, stop 98.40"
	if z.Reasoning != want {
		t.Errorf("Expected reasoning %q, got %q", want, z.Reasoning)
	}
}

func TestZoneGeneratorSellZone(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	atr := uniformATR(60, 2.0)
	gen := NewZoneGenerator(DefaultZoneConfig())

	zones := gen.Generate(candles, []model.Signal{sellSignal(55, 100, 3)}, atr, 99, 100)
	if len(zones) != 1 {
		t.Fatalf("Expected 1 zone, got %d", len(zones))
	}

	z := zones[0]
	if z.Type != model.SignalSell {
		t.Errorf("Expected SELL zone, got %s", z.Type)
	}
	if !floatNear(z.ProfitTarget, 95) || !floatNear(z.StopLoss, 101.6) {
		t.Errorf("Expected target 95 and stop 101.6, got %v and %v", z.ProfitTarget, z.StopLoss)
	}
	if !(z.ProfitTarget < z.EntryPrice && z.EntryPrice < z.StopLoss) {
		t.Errorf("Expected target < entry < stop, got %v, %v, %v", z.ProfitTarget, z.EntryPrice, z.StopLoss)
	}
	// Base 60 for strength 3 times the 1.5 multiplier at 100 overall.
	if z.Confidence != 90 {
		t.Errorf("Expected zone confidence 90, got %v", z.Confidence)
	}
}

func TestZoneGeneratorExcludesCrossedLevels(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	atr := uniformATR(60, 2.0)
	gen := NewZoneGenerator(DefaultZoneConfig())

	tests := []struct {
		name         string
		signal       model.Signal
		currentPrice float64
	}{
		{"buy target already hit", buySignal(55, 100, 2), 105},
		{"buy price at target", buySignal(55, 100, 2), 104},
		{"buy stop already hit", buySignal(55, 100, 2), 98},
		{"sell target already hit", sellSignal(55, 100, 3), 94},
		{"sell stop already hit", sellSignal(55, 100, 3), 102},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zones := gen.Generate(candles, []model.Signal{tt.signal}, atr, tt.currentPrice, 50)
			if len(zones) != 0 {
				t.Errorf("Expected no zones, got %d", len(zones))
			}
		})
	}
}

func TestZoneGeneratorProximityFilter(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	atr := uniformATR(60, 10.0)
	gen := NewZoneGenerator(DefaultZoneConfig())

	tests := []struct {
		name         string
		signal       model.Signal
		currentPrice float64
		included     bool
	}{
		// BUY entry 100: target 120, stop 92, proximity floor 95.
		{"buy price close to entry", buySignal(55, 100, 2), 96, true},
		{"buy price too far below entry", buySignal(55, 100, 2), 93, false},
		{"buy price above entry but below target", buySignal(55, 100, 2), 110, true},
		// SELL entry 100: target 75, stop 108, proximity ceiling 105.
		{"sell price close to entry", sellSignal(55, 100, 3), 104, true},
		{"sell price too far above entry", sellSignal(55, 100, 3), 107, false},
		{"sell price below entry but above target", sellSignal(55, 100, 3), 90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zones := gen.Generate(candles, []model.Signal{tt.signal}, atr, tt.currentPrice, 50)
			if got := len(zones) == 1; got != tt.included {
				t.Errorf("Expected included=%v, got %d zones", tt.included, len(zones))
			}
		})
	}
}

func TestZoneGeneratorWindowFilter(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	atr := uniformATR(60, 2.0)
	gen := NewZoneGenerator(DefaultZoneConfig())

	signals := []model.Signal{
		buySignal(9, 100, 1),
		buySignal(10, 100, 1),
	}
	zones := gen.Generate(candles, signals, atr, 101, 50)
	if len(zones) != 1 {
		t.Fatalf("Expected only the in-window signal to produce a zone, got %d", len(zones))
	}
	if zones[0].Time != 2010 {
		t.Errorf("Expected zone from bar 10, got time %d", zones[0].Time)
	}
}

func TestZoneGeneratorCapsToMostRecentSignals(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	atr := uniformATR(60, 2.0)
	gen := NewZoneGenerator(DefaultZoneConfig())

	signals := make([]model.Signal, 0, 12)
	for bar := 20; bar < 32; bar++ {
		signals = append(signals, buySignal(bar, 100, 1))
	}
	zones := gen.Generate(candles, signals, atr, 101, 50)
	if len(zones) != 10 {
		t.Fatalf("Expected 10 zones, got %d", len(zones))
	}
	if zones[0].Time != 2022 || zones[9].Time != 2031 {
		t.Errorf("Expected zones from bars 22..31, got times %d..%d", zones[0].Time, zones[9].Time)
	}
}

func TestZoneGeneratorStrengthMultipliers(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	atr := uniformATR(60, 2.0)
	gen := NewZoneGenerator(DefaultZoneConfig())

	tests := []struct {
		strength       int
		expectedTarget float64
	}{
		{1, 103},
		{2, 104},
		{3, 105},
	}
	for _, tt := range tests {
		zones := gen.Generate(candles, []model.Signal{buySignal(55, 100, tt.strength)}, atr, 101, 50)
		if len(zones) != 1 {
			t.Fatalf("Strength %d: expected 1 zone, got %d", tt.strength, len(zones))
		}
		if !floatNear(zones[0].ProfitTarget, tt.expectedTarget) {
			t.Errorf("Strength %d: expected target %v, got %v", tt.strength, tt.expectedTarget, zones[0].ProfitTarget)
		}
		if !floatNear(zones[0].StopLoss, 98.4) {
			t.Errorf("Strength %d: expected stop 98.4, got %v", tt.strength, zones[0].StopLoss)
		}
	}
}

func TestZoneGeneratorConfidenceRounds(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	atr := uniformATR(60, 2.0)
	gen := NewZoneGenerator(DefaultZoneConfig())

	// Base 40 for strength 2 times 0.87 is 34.8, rounded to 35.
	zones := gen.Generate(candles, []model.Signal{buySignal(55, 100, 2)}, atr, 101, 37)
	if len(zones) != 1 {
		t.Fatalf("Expected 1 zone, got %d", len(zones))
	}
	if zones[0].Confidence != 35 {
		t.Errorf("Expected confidence 35, got %v", zones[0].Confidence)
	}
}

func TestZoneGeneratorSkipsUnusableSignals(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	atr := uniformATR(60, 2.0)
	gen := NewZoneGenerator(DefaultZoneConfig())

	forming := buySignal(55, 100, 1)
	forming.Signal = ""
	zeroPrice := buySignal(56, 0, 1)
	negativePrice := buySignal(57, -5, 1)

	zones := gen.Generate(candles, []model.Signal{forming, zeroPrice, negativePrice}, atr, 101, 50)
	if len(zones) != 0 {
		t.Errorf("Expected no zones from unusable signals, got %d", len(zones))
	}
}

func TestZoneGeneratorDisabledWithoutATR(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	gen := NewZoneGenerator(DefaultZoneConfig())
	sig := []model.Signal{buySignal(55, 100, 2)}

	if zones := gen.Generate(candles, sig, uniformATR(60, 0), 101, 50); zones == nil || len(zones) != 0 {
		t.Errorf("Expected empty zones on zero ATR, got %v", zones)
	}
	if zones := gen.Generate(nil, sig, nil, 101, 50); zones == nil || len(zones) != 0 {
		t.Errorf("Expected empty zones on empty input, got %v", zones)
	}
}

func TestZoneGeneratorDeterministicIDs(t *testing.T) {
	candles := makeFlatCandles(60, 100)
	atr := uniformATR(60, 2.0)
	gen := NewZoneGenerator(DefaultZoneConfig())
	signals := []model.Signal{buySignal(54, 100, 1), sellSignal(58, 101, 2)}

	first := gen.Generate(candles, signals, atr, 100.5, 50)
	second := gen.Generate(candles, signals, atr, 100.5, 50)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical zones across runs, got %+v vs %+v", first, second)
	}
	if len(first) == 2 && first[0].ID == first[1].ID {
		t.Error("Expected distinct IDs for distinct signals")
	}
}
