package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/gtj-aero/trustscore-cli/internal/db"
	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS scores (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	operator    TEXT NOT NULL,
	tail_number TEXT,
	trust_score DOUBLE PRECISION NOT NULL,
	tier        TEXT NOT NULL,
	result      JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_scores_operator ON scores(operator);
CREATE INDEX IF NOT EXISTS idx_scores_tier ON scores(tier);
CREATE INDEX IF NOT EXISTS idx_scores_operator_created ON scores(operator, created_at DESC);

CREATE TABLE IF NOT EXISTS filings (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	operator      TEXT NOT NULL,
	jurisdiction  TEXT NOT NULL,
	filing_date   TEXT NOT NULL,
	lapse_date    TEXT,
	status        TEXT NOT NULL,
	debtor_name   TEXT NOT NULL,
	file_number   TEXT,
	secured_party TEXT,
	collateral    TEXT,
	address       TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_filings_operator ON filings(operator);
CREATE INDEX IF NOT EXISTS idx_filings_jurisdiction ON filings(operator, jurisdiction);
`

var filingColumns = []string{
	"id", "operator", "jurisdiction",
	"filing_date", "lapse_date", "status", "debtor_name",
	"file_number", "secured_party", "collateral", "address",
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveScore(ctx context.Context, operatorName, tailNumber string, result *model.ScoreResult) (*StoredScore, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal score result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO scores (id, operator, tail_number, trust_score, tier, result, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, operatorName, tailNumber, result.TrustScore, string(result.ScoreTier), resultJSON, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert score for %s", operatorName)
	}

	return &StoredScore{
		ID:           id,
		OperatorName: operatorName,
		TailNumber:   tailNumber,
		Result:       *result,
		CreatedAt:    now,
	}, nil
}

func (s *PostgresStore) GetLatestScore(ctx context.Context, operatorName string) (*StoredScore, error) {
	var sc StoredScore
	var resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, operator, tail_number, result, created_at FROM scores
		 WHERE operator = $1 ORDER BY created_at DESC LIMIT 1`,
		operatorName,
	).Scan(&sc.ID, &sc.OperatorName, &sc.TailNumber, &resultJSON, &sc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get latest score for %s", operatorName)
	}

	if err := json.Unmarshal(resultJSON, &sc.Result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal score result")
	}
	return &sc, nil
}

func (s *PostgresStore) ListScores(ctx context.Context, filter ScoreFilter) ([]StoredScore, error) {
	query := `SELECT id, operator, tail_number, result, created_at FROM scores WHERE true`
	args := []any{}
	argIdx := 1

	if filter.OperatorName != "" {
		query += fmt.Sprintf(` AND operator = $%d`, argIdx)
		args = append(args, filter.OperatorName)
		argIdx++
	}
	if filter.Tier != "" {
		query += fmt.Sprintf(` AND tier = $%d`, argIdx)
		args = append(args, string(filter.Tier))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scores")
	}
	defer rows.Close()

	var scores []StoredScore
	for rows.Next() {
		var sc StoredScore
		var resultJSON []byte

		if err := rows.Scan(&sc.ID, &sc.OperatorName, &sc.TailNumber, &resultJSON, &sc.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		if err := json.Unmarshal(resultJSON, &sc.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal score result")
		}
		scores = append(scores, sc)
	}
	return scores, eris.Wrap(rows.Err(), "postgres: list scores iterate")
}

func (s *PostgresStore) SaveFilings(ctx context.Context, operatorName, jurisdiction string, filings []model.NormalizedFiling) (int, error) {
	// Replace-then-copy keeps re-scrapes idempotent without needing a
	// natural key, which many jurisdictions do not provide. Both steps run
	// in one transaction so a failed COPY never drops the previous set.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin save filings")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM filings WHERE operator = $1 AND jurisdiction = $2`,
		operatorName, jurisdiction,
	); err != nil {
		return 0, eris.Wrapf(err, "postgres: clear filings for %s/%s", operatorName, jurisdiction)
	}

	rows := make([][]any, len(filings))
	for i, f := range filings {
		rows[i] = []any{
			uuid.New().String(), operatorName, jurisdiction,
			f.FilingDate, f.LapseDate, string(f.Status), f.DebtorName,
			f.FileNumber, f.SecuredParty, f.Collateral, f.Address,
		}
	}

	n, err := db.CopyFrom(ctx, tx, "filings", filingColumns, rows)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit save filings")
	}
	return int(n), nil
}

func (s *PostgresStore) GetFilings(ctx context.Context, operatorName string) ([]model.NormalizedFiling, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT filing_date, lapse_date, status, debtor_name, file_number, secured_party, collateral, address
		 FROM filings WHERE operator = $1 ORDER BY filing_date`,
		operatorName,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get filings for %s", operatorName)
	}
	defer rows.Close()

	var filings []model.NormalizedFiling
	for rows.Next() {
		var f model.NormalizedFiling
		var lapseDate, address *string

		if err := rows.Scan(&f.FilingDate, &lapseDate, &f.Status, &f.DebtorName,
			&f.FileNumber, &f.SecuredParty, &f.Collateral, &address); err != nil {
			return nil, eris.Wrap(err, "postgres: scan filing")
		}
		if lapseDate != nil {
			f.LapseDate = *lapseDate
		}
		if address != nil {
			f.Address = *address
		}
		filings = append(filings, f)
	}
	return filings, eris.Wrap(rows.Err(), "postgres: get filings iterate")
}
