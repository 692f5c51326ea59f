package trustscore

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

func TestCalculateTailScoreCleanOwnedAircraft(t *testing.T) {
	c := newTestCalculator(nil)

	// 4-year-old airframe in the ideal band, fully owned, no incidents:
	// MRT ≈ 0, OST = 10, IHT = 0 → TS ≈ 100 (clamped).
	score, breakdown, err := c.CalculateTailScore(context.Background(), model.TailScoreInput{
		AircraftAgeYears: 4,
		OperatorName:     "Skyline Charters",
		RegisteredOwner:  "Skyline Charters LLC",
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, score)
	assert.Equal(t, "100 - MRT + OST - 5*IHT", breakdown.Formula)
	assert.Equal(t, 10.0, breakdown.Components["OST"].Value)
	assert.Zero(t, breakdown.Components["IHT"].Value)
	assert.Less(t, breakdown.Components["MRT"].Value, 0.01)
}

func TestCalculateTailScoreNegativeAge(t *testing.T) {
	c := newTestCalculator(nil)
	_, _, err := c.CalculateTailScore(context.Background(), model.TailScoreInput{AircraftAgeYears: -2})
	assert.Error(t, err)
}

func TestTailMaintenanceRiskCurve(t *testing.T) {
	// MRT = 2·(4.15·e^(−2x) + 100·(max(0, x−5)/25)^1.5)
	tests := []struct {
		age  float64
		want float64
	}{
		{0, 8.3},
		{5, 2 * 4.15 * math.Exp(-10)},
		{30, 200},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, tailMaintenanceRisk(tt.age), 1e-9)
	}

	// The 2-5 year band is the risk minimum: both a factory-fresh and an
	// aging airframe carry more risk than one in the band.
	mid := tailMaintenanceRisk(3)
	assert.Less(t, mid, tailMaintenanceRisk(0))
	assert.Less(t, mid, tailMaintenanceRisk(15))
}

func TestTailOwnershipStatus(t *testing.T) {
	tests := []struct {
		name       string
		operator   string
		owner      string
		fractional bool
		want       int
	}{
		{"exact match full ownership", "NetJet Aviation", "NetJet Aviation", false, 10},
		{"substring match", "Skyline", "Skyline Charters LLC", false, 10},
		{"case insensitive", "skyline charters", "SKYLINE CHARTERS LLC", false, 10},
		{"fractional ownership", "FlexShares", "FlexShares Holdings", true, 5},
		{"third-party owner", "Skyline Charters", "First National Leasing", false, 0},
		{"empty operator name", "", "Skyline Charters", false, 0},
		{"empty registered owner", "Skyline Charters", "", false, 0},
		{"fractional flag without ownership", "Skyline", "Bank Trustee NA", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tailOwnershipStatus(tt.operator, tt.owner, tt.fractional))
		})
	}
}

func TestTailIncidentHistoryWeighting(t *testing.T) {
	c := newTestCalculator(nil)

	events := []model.Event{
		{EventDate: testNow.Format("2006-01-02"), EventType: "Incident"},
	}

	// One fresh minor incident: IHT = 5, weighted 5x in the formula.
	// TS = 100 - MRT(4) + 0 - 25.
	score, breakdown, err := c.CalculateTailScore(context.Background(), model.TailScoreInput{
		AircraftAgeYears: 4,
		OperatorName:     "Orion Jet",
		RegisteredOwner:  "Leasing Partners",
		TailEvents:       events,
	})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, breakdown.Components["IHT"].Value, 1e-9)
	assert.InDelta(t, 100-tailMaintenanceRisk(4)-25, score, 0.01)
}
