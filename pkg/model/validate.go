package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks malformed candle input (non-finite values,
// non-increasing or duplicate timestamps)
var ErrInvalidInput = errors.New("invalid candle input")

// CandleError reports the first malformed candle found during validation
type CandleError struct {
	Index  int
	Field  string
	Reason string
}

func (e *CandleError) Error() string {
	return fmt.Sprintf("candle %d: %s %s", e.Index, e.Field, e.Reason)
}

func (e *CandleError) Unwrap() error {
	return ErrInvalidInput
}

// ValidateCandles checks that every numeric field is finite and that times
// strictly increase. It returns the first violation as a *CandleError
// wrapping ErrInvalidInput, or nil for well-formed input.
func ValidateCandles(candles []Candle) error {
	for i, c := range candles {
		fields := [...]struct {
			name  string
			value float64
		}{
			{"open", c.Open},
			{"high", c.High},
			{"low", c.Low},
			{"close", c.Close},
			{"volume", c.Volume},
		}
		for _, f := range fields {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
				return &CandleError{Index: i, Field: f.name, Reason: "is not finite"}
			}
		}
		if i == 0 {
			continue
		}
		if c.Time == candles[i-1].Time {
			return &CandleError{Index: i, Field: "time", Reason: "duplicates previous candle"}
		}
		if c.Time < candles[i-1].Time {
			return &CandleError{Index: i, Field: "time", Reason: "is not increasing"}
		}
	}
	return nil
}
