package trustscore

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// NarrativeGenerator produces human-readable prose for a computed score.
// It is an optional collaborator: implementations may be slow, rate-limited,
// or unavailable, and the calculator treats every failure as "no narrative".
// Numeric scores never depend on it.
type NarrativeGenerator interface {
	Explain(ctx context.Context, prompt string) (string, error)
}

// Calculator computes TrustScores. It is stateless apart from its
// configuration and safe for concurrent use; every calculation reads its
// inputs and allocates a fresh result.
type Calculator struct {
	cfg      CalcConfig
	narrator NarrativeGenerator

	// now is injectable so golden tests are reproducible.
	now func() time.Time
}

// NewCalculator creates a Calculator. narrator may be nil, in which case
// results carry no prose explanations.
func NewCalculator(cfg CalcConfig, narrator NarrativeGenerator) *Calculator {
	return &Calculator{
		cfg:      cfg,
		narrator: narrator,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ConfidenceScore is the experience-confidence curve CS = 1 − e^(−r·age).
// A brand-new operator scores 0 and is discounted toward the neutral
// baseline regardless of how clean its record looks; the curve asymptotes
// to 1 as track record accumulates.
func (c *Calculator) ConfidenceScore(operatorAgeYears float64) float64 {
	return 1 - math.Exp(-c.cfg.ConfidenceRate*operatorAgeYears)
}

// CalculateTrustScore runs the full composition:
//
//	raw  = 0.6·OS + 0.4·TS
//	trust = 50 + 0.5·raw·CS
//	fleet = 50 + 0.5·OS·CS
//
// and returns the complete result with tier and component breakdowns.
func (c *Calculator) CalculateTrustScore(ctx context.Context, fleet model.FleetScoreInput, tail model.TailScoreInput) (*model.ScoreResult, error) {
	operatorScore, fleetBreakdown, err := c.CalculateFleetScore(ctx, fleet)
	if err != nil {
		return nil, err
	}
	tailScore, tailBreakdown, err := c.CalculateTailScore(ctx, tail)
	if err != nil {
		return nil, err
	}

	confidence := c.ConfidenceScore(fleet.OperatorAgeYears)

	rawCombined := c.cfg.OperatorWeight*operatorScore + c.cfg.TailWeight*tailScore
	trustScore := clampScore(c.cfg.Baseline + c.cfg.Spread*rawCombined*confidence)
	fleetScore := c.cfg.Baseline + c.cfg.Spread*operatorScore*confidence

	result := &model.ScoreResult{
		TrustScore:       round2(trustScore),
		ScoreTier:        model.TierFor(trustScore),
		FleetScore:       round2(fleetScore),
		OperatorScore:    round2(operatorScore),
		TailScore:        round2(tailScore),
		ConfidenceScore:  round4(confidence),
		RawCombinedScore: round2(rawCombined),
		FleetBreakdown:   fleetBreakdown,
		TailBreakdown:    tailBreakdown,
		CalculatedAt:     c.now(),
	}

	if c.narrator != nil {
		insights, err := c.narrator.Explain(ctx, overallPrompt(fleet, tail, result))
		if err != nil {
			zap.L().Warn("trustscore: overall insights unavailable",
				zap.String("operator", fleet.OperatorName),
				zap.Error(err),
			)
		} else {
			result.AIInsights = insights
		}
	}

	zap.L().Info("trustscore: calculated",
		zap.String("operator", fleet.OperatorName),
		zap.Float64("trust_score", result.TrustScore),
		zap.String("tier", string(result.ScoreTier)),
		zap.Float64("confidence", result.ConfidenceScore),
	)

	return result, nil
}
