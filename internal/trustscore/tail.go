package trustscore

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// Ownership points: full exclusive ownership scores highest, fractional
// half credit, third-party operation none.
const (
	ownershipFull       = 10
	ownershipFractional = 5
	ownershipNone       = 0
)

// Incident history is weighted 5x in the tail formula.
const incidentHistoryMultiplier = 5

// CalculateTailScore computes the aircraft sub-score
// TS = 100 − MRT + OST − 5·IHT, clamped to [0, 100], with a per-component
// breakdown.
func (c *Calculator) CalculateTailScore(ctx context.Context, data model.TailScoreInput) (float64, model.Breakdown, error) {
	if data.AircraftAgeYears < 0 {
		return 0, model.Breakdown{}, eris.Errorf("trustscore: aircraft_age_years must be >= 0 (got %g)", data.AircraftAgeYears)
	}

	now := c.now()

	mrt := tailMaintenanceRisk(data.AircraftAgeYears)
	ost := tailOwnershipStatus(data.OperatorName, data.RegisteredOwner, data.FractionalOwner)
	iht := tailIncidentHistory(data.TailEvents, now)

	score := clampScore(100 - mrt + float64(ost) - incidentHistoryMultiplier*iht)

	breakdown := model.Breakdown{
		FinalScore: round2(score),
		Formula:    "100 - MRT + OST - 5*IHT",
		Components: map[string]model.Component{
			"MRT": {
				Value:       round2(mrt),
				Description: fmt.Sprintf("Tail Maintenance Risk - aircraft age is %.1f years (ideal: 2-5 years)", data.AircraftAgeYears),
			},
			"OST": {
				Value:       float64(ost),
				Description: fmt.Sprintf("Tail Ownership Status - operator has %s", ownershipDescription(ost)),
			},
			"IHT": {
				Value:       round2(iht),
				Description: fmt.Sprintf("Tail Incident History - %d incident(s) found for this aircraft", len(data.TailEvents)),
			},
		},
	}

	if c.narrator != nil {
		explanation, err := c.narrator.Explain(ctx, tailPrompt(data, mrt, ost, iht, score))
		if err != nil {
			zap.L().Warn("trustscore: tail explanation unavailable",
				zap.String("operator", data.OperatorName),
				zap.Error(err),
			)
		} else {
			breakdown.Explanation = explanation
		}
	}

	return score, breakdown, nil
}

// tailMaintenanceRisk is the U-shaped age penalty
// MRT = 2·(4.15·e^(−2x) + 100·(max(0, x−5)/25)^1.5). Very new airframes
// are unproven; past five years the penalty grows convexly. The 2-5 year
// band is the risk minimum. Pure function of age, no special cases.
func tailMaintenanceRisk(ageYears float64) float64 {
	newPenalty := 4.15 * math.Exp(-2*ageYears)
	oldPenalty := 100 * math.Pow(math.Max(0, ageYears-5)/25, 1.5)
	return 2 * (newPenalty + oldPenalty)
}

// tailOwnershipStatus scores whether the operator owns the airframe it
// flies. Ownership is detected by case-insensitive substring match of the
// operator name inside the registered owner; missing names score zero.
func tailOwnershipStatus(operatorName, registeredOwner string, fractional bool) int {
	if operatorName == "" || registeredOwner == "" {
		return ownershipNone
	}

	owns := strings.Contains(strings.ToLower(registeredOwner), strings.ToLower(operatorName))
	switch {
	case owns && !fractional:
		return ownershipFull
	case owns:
		return ownershipFractional
	default:
		return ownershipNone
	}
}

// tailIncidentHistory is the undiluted decayed severity sum for events
// tied to this specific airframe.
func tailIncidentHistory(events []model.Event, now time.Time) float64 {
	if len(events) == 0 {
		return 0
	}
	return decayedRisk(events, now, EventSeverity)
}

func ownershipDescription(ost int) string {
	switch ost {
	case ownershipFull:
		return "full ownership"
	case ownershipFractional:
		return "fractional ownership"
	default:
		return "no ownership"
	}
}
