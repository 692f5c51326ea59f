package trustscore

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

type stubNarrator struct {
	reply string
	err   error
	calls []string
}

func (s *stubNarrator) Explain(_ context.Context, prompt string) (string, error) {
	s.calls = append(s.calls, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestConfidenceScore(t *testing.T) {
	c := newTestCalculator(nil)

	assert.Zero(t, c.ConfidenceScore(0))
	assert.InDelta(t, 0.3188, c.ConfidenceScore(1), 0.001)
	assert.InDelta(t, 0.8534, c.ConfidenceScore(5), 0.001)
	assert.InDelta(t, 0.9785, c.ConfidenceScore(10), 0.001)

	// Strictly increasing, asymptotic to 1.
	prev := -1.0
	for age := 0.0; age <= 40; age += 0.5 {
		cs := c.ConfidenceScore(age)
		assert.Greater(t, cs, prev)
		assert.Less(t, cs, 1.0)
		prev = cs
	}
}

func TestCalculateTrustScoreBrandNewOperator(t *testing.T) {
	// Zero confidence collapses every score to the 50-point baseline, no
	// matter how clean the evidence looks.
	c := newTestCalculator(nil)

	result, err := c.CalculateTrustScore(context.Background(),
		model.FleetScoreInput{OperatorName: "Day One Air", OperatorAgeYears: 0, FleetSize: 2},
		model.TailScoreInput{AircraftAgeYears: 3, OperatorName: "Day One Air", RegisteredOwner: "Day One Air LLC"},
	)
	require.NoError(t, err)

	assert.Equal(t, 50.0, result.TrustScore)
	assert.Equal(t, 50.0, result.FleetScore)
	assert.Zero(t, result.ConfidenceScore)
	assert.Equal(t, model.TierStandard, result.ScoreTier)
}

func TestCalculateTrustScoreEstablishedCleanOperator(t *testing.T) {
	c := newTestCalculator(nil)

	result, err := c.CalculateTrustScore(context.Background(),
		model.FleetScoreInput{
			OperatorName:     "Meridian Jet Group",
			OperatorAgeYears: 15,
			FleetSize:        8,
			ArgusRating:      "Platinum",
			WyvernRating:     "Wingman PRO",
		},
		model.TailScoreInput{
			AircraftAgeYears: 4,
			OperatorName:     "Meridian Jet Group",
			RegisteredOwner:  "Meridian Jet Group Inc",
		},
	)
	require.NoError(t, err)

	// OS = 100 - 0 + 5 - 0 = 100 (clamped), TS ≈ 100,
	// raw = 0.6*100 + 0.4*100 = 100, CS = 1 - e^(-0.384*15) ≈ 0.9968.
	assert.InDelta(t, 100.0, result.OperatorScore, 1e-9)
	assert.InDelta(t, 100.0, result.TailScore, 1e-9)
	assert.InDelta(t, 100.0, result.RawCombinedScore, 1e-9)
	assert.InDelta(t, 99.84, result.TrustScore, 0.05)
	assert.Equal(t, model.TierPinnacle, result.ScoreTier)
	assert.Equal(t, result.FleetScore, result.TrustScore)
	assert.Equal(t, testNow, result.CalculatedAt)
}

func TestCalculateTrustScoreDeterministic(t *testing.T) {
	c := newTestCalculator(nil)

	fleet := model.FleetScoreInput{
		OperatorName:     "Crosswind Aviation",
		OperatorAgeYears: 9,
		FleetSize:        5,
		ArgusRating:      "Gold",
		FleetEvents: []model.Event{
			{EventDate: "2022-08-14", EventType: "Incident", Severity: "Major"},
		},
		UCCFilings: []model.NormalizedFiling{
			{FilingDate: "2023-02-01", LapseDate: "2024-02-01", Status: model.FilingTerminated},
			{FilingDate: "2024-05-20", Status: model.FilingActive},
		},
	}
	tail := model.TailScoreInput{
		AircraftAgeYears: 7,
		OperatorName:     "Crosswind Aviation",
		RegisteredOwner:  "Crosswind Aviation LLC",
		FractionalOwner:  true,
	}

	first, err := c.CalculateTrustScore(context.Background(), fleet, tail)
	require.NoError(t, err)
	second, err := c.CalculateTrustScore(context.Background(), fleet, tail)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first.TrustScore, 0.0)
	assert.LessOrEqual(t, first.TrustScore, 100.0)
	assert.Equal(t, model.TierFor(first.TrustScore), first.ScoreTier)
}

func TestCalculateTrustScoreBounded(t *testing.T) {
	c := newTestCalculator(nil)

	// Pathological evidence: active bankruptcy, fatal accidents, geriatric
	// airframe. Clamping keeps every reported score in [0, 100].
	date := testNow.Format("2006-01-02")
	result, err := c.CalculateTrustScore(context.Background(),
		model.FleetScoreInput{
			OperatorName:     "Hard Luck Air",
			OperatorAgeYears: 30,
			FleetSize:        1,
			FleetEvents: []model.Event{
				{EventDate: date, EventType: "Accident", InjuryLevel: "Fatal"},
				{EventDate: date, EventType: "Accident", InjuryLevel: "Fatal"},
				{EventDate: date, EventType: "Accident", InjuryLevel: "Fatal"},
			},
			BankruptcyHistory: []model.BankruptcyRecord{{Status: "Active", Type: "Chapter 7"}},
		},
		model.TailScoreInput{
			AircraftAgeYears: 45,
			OperatorName:     "Hard Luck Air",
			RegisteredOwner:  "Repo Trust NA",
			TailEvents: []model.Event{
				{EventDate: date, EventType: "Accident", InjuryLevel: "Fatal"},
			},
		},
	)
	require.NoError(t, err)

	for name, score := range map[string]float64{
		"trust":    result.TrustScore,
		"fleet":    result.FleetScore,
		"operator": result.OperatorScore,
		"tail":     result.TailScore,
	} {
		assert.GreaterOrEqual(t, score, 0.0, name)
		assert.LessOrEqual(t, score, 100.0, name)
	}
	assert.Zero(t, result.TailScore)
	assert.Equal(t, model.TierStandard, result.ScoreTier)
}

func TestCalculateTrustScoreWithNarrator(t *testing.T) {
	narrator := &stubNarrator{reply: "Solid operator with a clean record."}
	c := newTestCalculator(narrator)

	result, err := c.CalculateTrustScore(context.Background(),
		model.FleetScoreInput{OperatorName: "Meridian Jet Group", OperatorAgeYears: 15, FleetSize: 8},
		model.TailScoreInput{AircraftAgeYears: 4, OperatorName: "Meridian Jet Group", RegisteredOwner: "Meridian Jet Group Inc"},
	)
	require.NoError(t, err)

	// Fleet, tail, and overall each request prose.
	require.Len(t, narrator.calls, 3)
	assert.Equal(t, narrator.reply, result.FleetBreakdown.Explanation)
	assert.Equal(t, narrator.reply, result.TailBreakdown.Explanation)
	assert.Equal(t, narrator.reply, result.AIInsights)

	overall := narrator.calls[2]
	assert.True(t, strings.Contains(overall, "Meridian Jet Group"))
	assert.True(t, strings.Contains(overall, "TrustScore"))
}

func TestCalculateTrustScoreNarratorFailureDegrades(t *testing.T) {
	narrator := &stubNarrator{err: eris.New("rate limited")}
	c := newTestCalculator(narrator)

	result, err := c.CalculateTrustScore(context.Background(),
		model.FleetScoreInput{OperatorName: "Quiet Air", OperatorAgeYears: 6, FleetSize: 3},
		model.TailScoreInput{AircraftAgeYears: 5, OperatorName: "Quiet Air", RegisteredOwner: "Quiet Air LLC"},
	)
	require.NoError(t, err)

	// Numbers survive, prose is simply absent.
	assert.Greater(t, result.TrustScore, 0.0)
	assert.Empty(t, result.FleetBreakdown.Explanation)
	assert.Empty(t, result.TailBreakdown.Explanation)
	assert.Empty(t, result.AIInsights)
}

func TestCalcConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultCalcConfig().Validate())

	bad := DefaultCalcConfig()
	bad.OperatorWeight = 0.7
	assert.Error(t, bad.Validate())

	bad = DefaultCalcConfig()
	bad.Spread = 0
	assert.Error(t, bad.Validate())

	bad = DefaultCalcConfig()
	bad.ConfidenceRate = -0.1
	assert.Error(t, bad.Validate())
}
