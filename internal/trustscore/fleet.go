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
	"github.com/gtj-aero/trustscore-cli/internal/normalize"
)

// Certification penalty tables. Scoring is inverse: the better the
// certification, the lower the penalty subtracted from the operator score.
// These are domain constants, keyed by lowercased rating.
type certRating struct {
	name   string
	points int
}

var argusPoints = []certRating{
	{"platinum elite", 0},
	{"platinum", 2},
	{"gold plus", 4},
	{"gold", 6},
	{"none", 10},
}

var wyvernPoints = []certRating{
	{"wingman pro", 2},
	{"wingman", 4},
	{"registered operator", 6},
	{"none", 10},
}

const (
	maxCertPenalty = 10

	// Financial decay rate for resolved/unresolved lien terms.
	financialDecayRate = 0.15

	// Filings and bankruptcies older than this window are ignored.
	financialWindowYears = 5

	// Neutral financial score when no UCC data exists at all: absence of
	// data is not evidence of health.
	neutralFinancialScore = 5.0

	unresolvedLienPenalty = 5.0
)

// CalculateFleetScore computes the operator sub-score
// OS = 100 − ORF + FSF − CSF, clamped to [0, 100], with a per-component
// breakdown. Only impossible inputs (fleet size < 1, negative age) error;
// missing evidence degrades to neutral defaults.
func (c *Calculator) CalculateFleetScore(ctx context.Context, data model.FleetScoreInput) (float64, model.Breakdown, error) {
	if data.FleetSize < 1 {
		return 0, model.Breakdown{}, eris.Errorf("trustscore: fleet_size must be >= 1 (got %d)", data.FleetSize)
	}
	if data.OperatorAgeYears < 0 {
		return 0, model.Breakdown{}, eris.Errorf("trustscore: operator_age_years must be >= 0 (got %g)", data.OperatorAgeYears)
	}

	now := c.now()

	orf := fleetOperationalRisk(data.FleetEvents, data.FleetSize, data.OperatorAgeYears, now)
	fsf := fleetFinancialScore(data.UCCFilings, data.BankruptcyHistory, now)
	csf := fleetCertificationScore(data.ArgusRating, data.WyvernRating)

	score := clampScore(100 - orf + fsf - float64(csf))

	certDesc := fmt.Sprintf("%s ARGUS, %s WYVERN", orNone(data.ArgusRating), orNone(data.WyvernRating))
	breakdown := model.Breakdown{
		FinalScore: round2(score),
		Formula:    "100 - ORF + FSF - CSF",
		Components: map[string]model.Component{
			"ORF": {
				Value:       round2(orf),
				Description: "Fleet Operational Risk - higher values indicate more risk from incidents and accidents",
			},
			"FSF": {
				Value:       round2(fsf),
				Description: "Fleet Financial Score - positive values indicate good financial standing, negative indicates risk",
			},
			"CSF": {
				Value:       float64(csf),
				Description: fmt.Sprintf("Fleet Certification Penalty - %s (lower is better, 0=best, 10=worst)", certDesc),
			},
		},
	}

	if c.narrator != nil {
		explanation, err := c.narrator.Explain(ctx, fleetPrompt(data, orf, fsf, csf, score))
		if err != nil {
			zap.L().Warn("trustscore: fleet explanation unavailable",
				zap.String("operator", data.OperatorName),
				zap.Error(err),
			)
		} else {
			breakdown.Explanation = explanation
		}
	}

	return score, breakdown, nil
}

// fleetOperationalRisk is the decayed severity sum with each event diluted
// by the fleet volatility factor VF = fleetSize · ln(age + 1). A larger,
// longer-established fleet absorbs a single event with less signal.
func fleetOperationalRisk(events []model.Event, fleetSize int, operatorAgeYears float64, now time.Time) float64 {
	if len(events) == 0 {
		return 0
	}

	vf := float64(fleetSize) * math.Log(operatorAgeYears+1)
	if vf < 1 {
		vf = 1
	}

	return decayedRisk(events, now, func(e model.Event) float64 {
		return EventSeverity(e) / vf
	})
}

// fleetFinancialScore rewards recently resolved liens and penalizes open
// ones, both discounted by age. An active or recent bankruptcy floors the
// score at zero no matter how clean the filings look.
func fleetFinancialScore(filings []model.NormalizedFiling, bankruptcies []model.BankruptcyRecord, now time.Time) float64 {
	windowStart := now.AddDate(0, 0, -financialWindowYears*365)

	for _, record := range bankruptcies {
		if strings.EqualFold(strings.TrimSpace(record.Status), "active") {
			return 0
		}
		if when, ok := normalize.ParseDate(record.Date); ok && when.After(windowStart) {
			return 0
		}
	}

	if len(filings) == 0 {
		return neutralFinancialScore
	}

	var resolved, unresolvedPenalty float64
	for _, filing := range filings {
		filedAt, ok := normalize.ParseDate(filing.FilingDate)
		if !ok || filedAt.Before(windowStart) {
			continue
		}

		if isResolvedStatus(string(filing.Status)) {
			resolvedAt := filedAt
			if when, ok := normalize.ParseDate(filing.LapseDate); ok {
				resolvedAt = when
			}
			resolved += math.Exp(-financialDecayRate * yearsBetween(now, resolvedAt))
		} else {
			unresolvedPenalty += unresolvedLienPenalty * math.Exp(-financialDecayRate*yearsBetween(now, filedAt))
		}
	}

	return resolved - unresolvedPenalty
}

// isResolvedStatus reports whether a filing status indicates the debt was
// paid off or otherwise closed.
func isResolvedStatus(status string) bool {
	s := strings.ToLower(status)
	for _, keyword := range []string{"satisfied", "released", "terminated", "lapsed"} {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// fleetCertificationScore returns the minimum penalty across the ARGUS and
// WYVERN tables: the operator is credited for its best certification, not
// penalized for lacking the other.
func fleetCertificationScore(argusRating, wyvernRating string) int {
	return min(
		certPenalty(argusRating, argusPoints, false),
		certPenalty(wyvernRating, wyvernPoints, true),
	)
}

// certPenalty looks up one rating in its points table. Empty and "No" both
// mean uncertified. WYVERN ratings get a prefix-fragment fallback since
// sources report truncated variants like "Wingman P".
func certPenalty(rating string, points []certRating, allowPartial bool) int {
	r := strings.ToLower(strings.TrimSpace(rating))
	if r == "" || r == "no" {
		r = "none"
	}

	for _, cert := range points {
		if cert.name == r {
			return cert.points
		}
	}
	if allowPartial {
		for _, cert := range points {
			if strings.Contains(cert.name, r) {
				return cert.points
			}
		}
	}
	return maxCertPenalty
}

func orNone(rating string) string {
	if strings.TrimSpace(rating) == "" {
		return "None"
	}
	return rating
}
