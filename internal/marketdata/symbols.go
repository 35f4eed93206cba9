package marketdata

import (
	"fmt"
	"strings"
)

// Intervals lists the supported candle intervals, shortest first.
var Intervals = []string{"1m", "5m", "15m", "1h", "4h", "1d"}

// DefaultInterval is used when a caller does not specify one.
const DefaultInterval = "1h"

var intervalSeconds = map[string]int64{
	"1m":  60,
	"5m":  300,
	"15m": 900,
	"1h":  3600,
	"4h":  14400,
	"1d":  86400,
}

// NormalizeSymbol canonicalizes an instrument symbol: trimmed, uppercase.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NormalizeInterval canonicalizes an interval string: trimmed, lowercase,
// empty mapped to the default.
func NormalizeInterval(interval string) string {
	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval == "" {
		return DefaultInterval
	}
	return interval
}

// IsValidInterval reports whether the interval is one of the supported set.
func IsValidInterval(interval string) bool {
	_, ok := intervalSeconds[NormalizeInterval(interval)]
	return ok
}

// IntervalSeconds returns the candle duration in seconds for an interval.
func IntervalSeconds(interval string) (int64, bool) {
	sec, ok := intervalSeconds[NormalizeInterval(interval)]
	return sec, ok
}

// InstrumentKey builds the canonical "SYMBOL:interval" identifier used for
// cache keys and display.
func InstrumentKey(symbol, interval string) string {
	return fmt.Sprintf("%s:%s", NormalizeSymbol(symbol), NormalizeInterval(interval))
}

// FileName maps a symbol and interval to the CSV file name used by the
// directory provider, e.g. "BTCUSDT_1h.csv".
func FileName(symbol, interval string) string {
	return fmt.Sprintf("%s_%s.csv", NormalizeSymbol(symbol), NormalizeInterval(interval))
}
