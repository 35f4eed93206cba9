package analysis

import (
	"math"
	"testing"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

func floatNear(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateATRWilderSmoothing(t *testing.T) {
	candles := []model.Candle{
		{Time: 1, High: 12, Low: 10, Close: 11},
		{Time: 2, High: 13, Low: 11, Close: 12},
		{Time: 3, High: 15, Low: 12, Close: 14},
		{Time: 4, High: 16, Low: 13, Close: 15},
		{Time: 5, High: 20, Low: 15, Close: 18},
	}
	// True ranges: 2, 2, 3, 3, 5
	atr := CalculateATR(candles, 3)

	expected := []float64{
		2,
		2,
		7.0 / 3,
		(7.0/3*2 + 3) / 3,
		((7.0/3*2+3)/3*2 + 5) / 3,
	}
	if len(atr) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(atr))
	}
	for i, want := range expected {
		if !floatNear(atr[i], want) {
			t.Errorf("ATR[%d]: expected %v, got %v", i, want, atr[i])
		}
	}
}

func TestCalculateATRExpandingWarmup(t *testing.T) {
	// Shorter than the period, every value is the running mean of the TRs
	candles := []model.Candle{
		{Time: 1, High: 12, Low: 10, Close: 11},
		{Time: 2, High: 13, Low: 11, Close: 12},
		{Time: 3, High: 15, Low: 12, Close: 14},
		{Time: 4, High: 16, Low: 13, Close: 15},
	}
	atr := CalculateATR(candles, 14)

	expected := []float64{2, 2, 7.0 / 3, 10.0 / 4}
	for i, want := range expected {
		if !floatNear(atr[i], want) {
			t.Errorf("ATR[%d]: expected %v, got %v", i, want, atr[i])
		}
	}
}

func TestCalculateATRGapUsesPreviousClose(t *testing.T) {
	candles := []model.Candle{
		{Time: 1, High: 100, Low: 90, Close: 95},
		{Time: 2, High: 80, Low: 70, Close: 75},
	}
	// Period 1 exposes the raw true range: the gap down makes
	// |low - prevClose| = 25 the dominant term, not high-low = 10.
	atr := CalculateATR(candles, 1)

	if !floatNear(atr[1], 25) {
		t.Errorf("Expected gap TR 25, got %v", atr[1])
	}
}

func TestCalculateATRFlatSeriesIsZero(t *testing.T) {
	candles := make([]model.Candle, 10)
	for i := range candles {
		candles[i] = model.Candle{Time: int64(i + 1), Open: 100, High: 100, Low: 100, Close: 100}
	}
	atr := CalculateATR(candles, 3)

	for i, v := range atr {
		if v != 0 {
			t.Errorf("ATR[%d]: expected 0 for flat series, got %v", i, v)
		}
	}
}

func TestCalculateATRLengthMatchesInput(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5, 30} {
		candles := make([]model.Candle, n)
		for i := range candles {
			candles[i] = model.Candle{Time: int64(i + 1), High: 101, Low: 99, Close: 100}
		}
		atr := CalculateATR(candles, 14)
		if len(atr) != n {
			t.Errorf("Input of %d candles: expected %d ATR values, got %d", n, n, len(atr))
		}
	}
}
