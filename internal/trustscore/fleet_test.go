package trustscore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

func newTestCalculator(narrator NarrativeGenerator) *Calculator {
	c := NewCalculator(DefaultCalcConfig(), narrator)
	c.now = func() time.Time { return testNow }
	return c
}

func TestCalculateFleetScoreNoEvidence(t *testing.T) {
	// Clean slate: no events (ORF 0), no filings (neutral FSF 5), no
	// certifications (CSF 10). OS = 100 - 0 + 5 - 10 = 95.
	c := newTestCalculator(nil)

	score, breakdown, err := c.CalculateFleetScore(context.Background(), model.FleetScoreInput{
		OperatorName:     "Skyline Charters LLC",
		OperatorAgeYears: 12,
		FleetSize:        4,
	})
	require.NoError(t, err)

	assert.InDelta(t, 95.0, score, 1e-9)
	assert.Equal(t, 95.0, breakdown.FinalScore)
	assert.Equal(t, "100 - ORF + FSF - CSF", breakdown.Formula)
	assert.Equal(t, 0.0, breakdown.Components["ORF"].Value)
	assert.Equal(t, 5.0, breakdown.Components["FSF"].Value)
	assert.Equal(t, 10.0, breakdown.Components["CSF"].Value)
	assert.Empty(t, breakdown.Explanation)
}

func TestCalculateFleetScoreInvalidInput(t *testing.T) {
	c := newTestCalculator(nil)

	_, _, err := c.CalculateFleetScore(context.Background(), model.FleetScoreInput{
		OperatorName: "No Fleet Inc", FleetSize: 0, OperatorAgeYears: 5,
	})
	assert.Error(t, err)

	_, _, err = c.CalculateFleetScore(context.Background(), model.FleetScoreInput{
		OperatorName: "Time Traveler Air", FleetSize: 3, OperatorAgeYears: -1,
	})
	assert.Error(t, err)
}

func TestFleetOperationalRiskDilution(t *testing.T) {
	events := []model.Event{
		{EventDate: testNow.Format("2006-01-02"), EventType: "Accident", InjuryLevel: "Fatal"},
	}

	// Small young fleet: VF = 1*ln(1+1) ≈ 0.69, floored at 1, so the
	// fatal accident lands undiluted.
	small := fleetOperationalRisk(events, 1, 1, testNow)
	assert.InDelta(t, 50.0, small, 1e-9)

	// Large established fleet: VF = 20*ln(21) ≈ 60.9.
	large := fleetOperationalRisk(events, 20, 20, testNow)
	assert.Less(t, large, 1.0)
	assert.Greater(t, large, 0.0)

	assert.Zero(t, fleetOperationalRisk(nil, 5, 10, testNow))
}

func TestFleetFinancialScoreBankruptcyFloor(t *testing.T) {
	cleanFilings := []model.NormalizedFiling{
		{FilingDate: testNow.AddDate(-1, 0, 0).Format("2006-01-02"), Status: model.FilingTerminated},
	}

	tests := []struct {
		name   string
		record model.BankruptcyRecord
		floor  bool
	}{
		{
			name:   "active bankruptcy",
			record: model.BankruptcyRecord{Status: "Active", Date: "2010-01-01", Type: "Chapter 11"},
			floor:  true,
		},
		{
			name:   "recent discharged bankruptcy still floors",
			record: model.BankruptcyRecord{Status: "Discharged", Date: testNow.AddDate(-2, 0, 0).Format("2006-01-02")},
			floor:  true,
		},
		{
			name:   "old discharged bankruptcy does not",
			record: model.BankruptcyRecord{Status: "Discharged", Date: "2008-03-15"},
			floor:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fleetFinancialScore(cleanFilings, []model.BankruptcyRecord{tt.record}, testNow)
			if tt.floor {
				assert.Zero(t, got)
			} else {
				assert.Greater(t, got, 0.0)
			}
		})
	}
}

func TestFleetFinancialScoreFilings(t *testing.T) {
	recent := testNow.AddDate(-1, 0, 0).Format("2006-01-02")
	stale := "2015-01-01" // outside the 5-year window

	t.Run("no filings is neutral", func(t *testing.T) {
		assert.Equal(t, neutralFinancialScore, fleetFinancialScore(nil, nil, testNow))
	})

	t.Run("resolved filing adds credit", func(t *testing.T) {
		got := fleetFinancialScore([]model.NormalizedFiling{
			{FilingDate: recent, LapseDate: recent, Status: model.FilingTerminated},
		}, nil, testNow)
		assert.Greater(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	})

	t.Run("unresolved filing penalizes", func(t *testing.T) {
		got := fleetFinancialScore([]model.NormalizedFiling{
			{FilingDate: recent, Status: model.FilingActive},
		}, nil, testNow)
		assert.Less(t, got, 0.0)
	})

	t.Run("stale filings are ignored", func(t *testing.T) {
		got := fleetFinancialScore([]model.NormalizedFiling{
			{FilingDate: stale, Status: model.FilingActive},
		}, nil, testNow)
		assert.Zero(t, got)
	})

	t.Run("unknown filing date is ignored", func(t *testing.T) {
		got := fleetFinancialScore([]model.NormalizedFiling{
			{FilingDate: model.DateUnknown, Status: model.FilingActive},
		}, nil, testNow)
		assert.Zero(t, got)
	})
}

func TestIsResolvedStatus(t *testing.T) {
	assert.True(t, isResolvedStatus("Terminated"))
	assert.True(t, isResolvedStatus("Lapsed"))
	assert.True(t, isResolvedStatus("satisfied in full"))
	assert.True(t, isResolvedStatus("RELEASED"))
	assert.False(t, isResolvedStatus("Active"))
	assert.False(t, isResolvedStatus("Unknown"))
	assert.False(t, isResolvedStatus(""))
}

func TestFleetCertificationScore(t *testing.T) {
	tests := []struct {
		name   string
		argus  string
		wyvern string
		want   int
	}{
		{"no certifications", "", "", 10},
		{"explicit No", "No", "No", 10},
		{"argus platinum elite", "Platinum Elite", "", 0},
		{"argus gold only", "Gold", "", 6},
		{"wyvern wingman pro only", "", "Wingman PRO", 2},
		{"best of both wins", "Gold", "Wingman PRO", 2},
		{"argus beats weak wyvern", "Platinum", "Registered Operator", 2},
		{"wyvern truncated variant", "", "Wingman P", 2},
		{"unrecognized rating is max penalty", "Diamond", "", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fleetCertificationScore(tt.argus, tt.wyvern))
		})
	}
}
