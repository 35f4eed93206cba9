package marketdata

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Atifelx/CryptoClever-sub000/pkg/model"
)

// Profile selects the shape of a generated candle series.
type Profile string

const (
	// ProfileTrend drifts steadily upward with modest noise.
	ProfileTrend Profile = "trend"
	// ProfileRange oscillates around the starting price.
	ProfileRange Profile = "range"
	// ProfileSqueeze contracts volatility bar over bar.
	ProfileSqueeze Profile = "squeeze"
	// ProfileExpansion grows volatility bar over bar.
	ProfileExpansion Profile = "expansion"
)

// Profiles lists the supported synthetic profiles.
var Profiles = []Profile{ProfileTrend, ProfileRange, ProfileSqueeze, ProfileExpansion}

// ParseProfile validates a profile name.
func ParseProfile(name string) (Profile, error) {
	for _, p := range Profiles {
		if Profile(name) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown profile %q (valid: %v)", name, Profiles)
}

// syntheticStart anchors generated timestamps so the same seed always yields
// the same series.
const syntheticStart int64 = 1_700_000_000

// Generate produces a deterministic synthetic candle series for the profile.
// The same arguments always produce the same candles. Prices move
// multiplicatively so they stay positive regardless of length.
func Generate(profile Profile, bars int, startPrice float64, intervalSec int64, seed int64) []model.Candle {
	if bars <= 0 {
		return []model.Candle{}
	}
	if startPrice <= 0 {
		startPrice = 100
	}
	if intervalSec <= 0 {
		intervalSec = 3600
	}

	rng := rand.New(rand.NewSource(seed))
	candles := make([]model.Candle, bars)
	price := startPrice

	for i := 0; i < bars; i++ {
		progress := float64(i) / float64(bars)

		var driftPct, noisePct float64
		switch profile {
		case ProfileTrend:
			driftPct = 0.0035
			noisePct = 0.0025
		case ProfileRange:
			driftPct = 0.004 * math.Sin(2*math.Pi*float64(i)/20)
			noisePct = 0.002
		case ProfileSqueeze:
			noisePct = 0.008 - 0.007*progress
		case ProfileExpansion:
			driftPct = 0.0005
			noisePct = 0.001 + 0.009*progress
		default:
			noisePct = 0.002
		}

		open := price
		change := driftPct + noisePct*(rng.Float64()*2-1)
		close := open * (1 + change)

		wick := noisePct * rng.Float64()
		high := math.Max(open, close) * (1 + wick)
		low := math.Min(open, close) * (1 - wick)

		candles[i] = model.Candle{
			Time:   syntheticStart + int64(i)*intervalSec,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: math.Round((50+rng.Float64()*100)*100) / 100,
		}
		price = close
	}
	return candles
}
