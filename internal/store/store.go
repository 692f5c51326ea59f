// Package store persists computed scores and normalized filings. Two
// backends exist: Postgres (pgx) for shared deployments and SQLite
// (modernc, no cgo) for local single-user runs.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// StoredScore is one persisted score calculation. Score history is
// append-only; recalculations insert new rows.
type StoredScore struct {
	ID           string            `json:"id"`
	OperatorName string            `json:"operator_name"`
	TailNumber   string            `json:"tail_number,omitempty"`
	Result       model.ScoreResult `json:"result"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ScoreFilter specifies criteria for listing stored scores.
type ScoreFilter struct {
	OperatorName string          `json:"operator_name,omitempty"`
	Tier         model.ScoreTier `json:"tier,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for scores and filings.
type Store interface {
	// Scores
	SaveScore(ctx context.Context, operatorName, tailNumber string, result *model.ScoreResult) (*StoredScore, error)
	GetLatestScore(ctx context.Context, operatorName string) (*StoredScore, error)
	ListScores(ctx context.Context, filter ScoreFilter) ([]StoredScore, error)

	// Filings. SaveFilings replaces the stored set for the given operator
	// and jurisdiction so re-running a scrape is idempotent.
	SaveFilings(ctx context.Context, operatorName, jurisdiction string, filings []model.NormalizedFiling) (int, error)
	GetFilings(ctx context.Context, operatorName string) ([]model.NormalizedFiling, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	case "sqlite":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
