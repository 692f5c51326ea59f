package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(score float64) *model.ScoreResult {
	return &model.ScoreResult{
		TrustScore:       score,
		ScoreTier:        model.TierFor(score),
		FleetScore:       score,
		OperatorScore:    95,
		TailScore:        90,
		ConfidenceScore:  0.98,
		RawCombinedScore: 93,
		FleetBreakdown: model.Breakdown{
			FinalScore: 95,
			Formula:    "100 - ORF + FSF - CSF",
			Components: map[string]model.Component{
				"ORF": {Value: 0, Description: "no events"},
			},
		},
		CalculatedAt: time.Now().UTC(),
	}
}

func TestSQLiteStore_SaveAndGetLatestScore(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	saved, err := s.SaveScore(ctx, "Skyline Charters", "N123SC", sampleResult(87.5))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	got, err := s.GetLatestScore(ctx, "Skyline Charters")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "N123SC", got.TailNumber)
	assert.Equal(t, 87.5, got.Result.TrustScore)
	assert.Equal(t, model.TierPremier, got.Result.ScoreTier)
	assert.Equal(t, "no events", got.Result.FleetBreakdown.Components["ORF"].Description)
}

func TestSQLiteStore_GetLatestScore_PicksNewest(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	// Backdate the first row so the two inserts have distinct timestamps.
	first, err := s.SaveScore(ctx, "Skyline Charters", "", sampleResult(80))
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, `UPDATE scores SET created_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-time.Hour), first.ID)
	require.NoError(t, err)

	second, err := s.SaveScore(ctx, "Skyline Charters", "", sampleResult(85))
	require.NoError(t, err)

	got, err := s.GetLatestScore(ctx, "Skyline Charters")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
}

func TestSQLiteStore_GetLatestScore_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	got, err := s.GetLatestScore(context.Background(), "Unknown Air")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_ListScores(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.SaveScore(ctx, "Skyline Charters", "", sampleResult(92))
	require.NoError(t, err)
	_, err = s.SaveScore(ctx, "Crosswind Aviation", "", sampleResult(74))
	require.NoError(t, err)

	all, err := s.ListScores(ctx, ScoreFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pinnacle, err := s.ListScores(ctx, ScoreFilter{Tier: model.TierPinnacle})
	require.NoError(t, err)
	require.Len(t, pinnacle, 1)
	assert.Equal(t, "Skyline Charters", pinnacle[0].OperatorName)

	byOperator, err := s.ListScores(ctx, ScoreFilter{OperatorName: "Crosswind Aviation"})
	require.NoError(t, err)
	require.Len(t, byOperator, 1)
	assert.Equal(t, 74.0, byOperator[0].Result.TrustScore)

	limited, err := s.ListScores(ctx, ScoreFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_SaveFilingsReplaces(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	fileNumber := "22-0031337"
	party := "First National Bank"
	first := []model.NormalizedFiling{
		{FilingDate: "2022-05-01", Status: model.FilingActive, DebtorName: "Skyline Charters", FileNumber: &fileNumber, SecuredParty: &party},
		{FilingDate: "2019-03-10", LapseDate: "2024-03-10", Status: model.FilingLapsed, DebtorName: "Skyline Charters"},
	}

	n, err := s.SaveFilings(ctx, "Skyline Charters", "FL", first)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-saving the same jurisdiction replaces the set, not appends to it.
	n, err = s.SaveFilings(ctx, "Skyline Charters", "FL", first[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetFilings(ctx, "Skyline Charters")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2022-05-01", got[0].FilingDate)
	assert.Equal(t, model.FilingActive, got[0].Status)
	require.NotNil(t, got[0].FileNumber)
	assert.Equal(t, "22-0031337", *got[0].FileNumber)
	require.NotNil(t, got[0].SecuredParty)
	assert.Equal(t, "First National Bank", *got[0].SecuredParty)
	assert.Nil(t, got[0].Collateral)
}

func TestSQLiteStore_FilingsAcrossJurisdictions(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.SaveFilings(ctx, "Skyline Charters", "FL", []model.NormalizedFiling{
		{FilingDate: "2022-05-01", Status: model.FilingActive, DebtorName: "Skyline Charters"},
	})
	require.NoError(t, err)
	_, err = s.SaveFilings(ctx, "Skyline Charters", "TX", []model.NormalizedFiling{
		{FilingDate: model.DateUnknown, Status: model.FilingUnknown, DebtorName: "Skyline Charters"},
	})
	require.NoError(t, err)

	got, err := s.GetFilings(ctx, "Skyline Charters")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	s, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "open.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, s.Close())
}
