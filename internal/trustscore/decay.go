package trustscore

import (
	"math"
	"time"

	"github.com/gtj-aero/trustscore-cli/internal/model"
	"github.com/gtj-aero/trustscore-cli/internal/normalize"
)

// Evidence loses half its weight every five years.
const riskHalfLifeYears = 5.0

// timeDecayK is the exponential decay constant: ln(2) / half-life.
var timeDecayK = math.Ln2 / riskHalfLifeYears

const daysPerYear = 365.25

// yearsBetween returns the (fractional) years from then to now.
func yearsBetween(now, then time.Time) float64 {
	return now.Sub(then).Hours() / 24 / daysPerYear
}

// decayedRisk computes the time-decayed risk sum over a set of events:
// Σ weight(e) · e^(−k·Δt). Events whose dates cannot be parsed contribute
// zero — missing provenance is a data-quality gap, not an error.
func decayedRisk(events []model.Event, now time.Time, weight func(model.Event) float64) float64 {
	var total float64
	for _, e := range events {
		when, ok := normalize.ParseDate(e.EventDate)
		if !ok {
			continue
		}
		dt := yearsBetween(now, when)
		total += weight(e) * math.Exp(-timeDecayK*dt)
	}
	return total
}

// clampScore bounds a sub-score to the reportable [0, 100] range.
func clampScore(s float64) float64 {
	return math.Max(0, math.Min(100, s))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
