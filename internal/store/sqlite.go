package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS scores (
	id          TEXT PRIMARY KEY,
	operator    TEXT NOT NULL,
	tail_number TEXT,
	trust_score REAL NOT NULL,
	tier        TEXT NOT NULL,
	result      TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS filings (
	id            TEXT PRIMARY KEY,
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
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_scores_operator ON scores(operator);
CREATE INDEX IF NOT EXISTS idx_scores_tier ON scores(tier);
CREATE INDEX IF NOT EXISTS idx_scores_operator_created ON scores(operator, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_filings_operator ON filings(operator);
CREATE INDEX IF NOT EXISTS idx_filings_jurisdiction ON filings(operator, jurisdiction);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveScore(ctx context.Context, operatorName, tailNumber string, result *model.ScoreResult) (*StoredScore, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal score result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scores (id, operator, tail_number, trust_score, tier, result, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, operatorName, tailNumber, result.TrustScore, string(result.ScoreTier), string(resultJSON), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert score for %s", operatorName)
	}

	return &StoredScore{
		ID:           id,
		OperatorName: operatorName,
		TailNumber:   tailNumber,
		Result:       *result,
		CreatedAt:    now,
	}, nil
}

func (s *SQLiteStore) GetLatestScore(ctx context.Context, operatorName string) (*StoredScore, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, operator, tail_number, result, created_at FROM scores
		 WHERE operator = ? ORDER BY created_at DESC LIMIT 1`,
		operatorName,
	)

	sc, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sc, err
}

func (s *SQLiteStore) ListScores(ctx context.Context, filter ScoreFilter) ([]StoredScore, error) {
	query := `SELECT id, operator, tail_number, result, created_at FROM scores WHERE 1=1`
	var args []any

	if filter.OperatorName != "" {
		query += ` AND operator = ?`
		args = append(args, filter.OperatorName)
	}
	if filter.Tier != "" {
		query += ` AND tier = ?`
		args = append(args, string(filter.Tier))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scores")
	}
	defer rows.Close()

	var scores []StoredScore
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *sc)
	}
	return scores, eris.Wrap(rows.Err(), "sqlite: list scores iterate")
}

func (s *SQLiteStore) SaveFilings(ctx context.Context, operatorName, jurisdiction string, filings []model.NormalizedFiling) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save filings")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM filings WHERE operator = ? AND jurisdiction = ?`,
		operatorName, jurisdiction,
	); err != nil {
		return 0, eris.Wrapf(err, "sqlite: clear filings for %s/%s", operatorName, jurisdiction)
	}

	for _, f := range filings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO filings (id, operator, jurisdiction, filing_date, lapse_date, status, debtor_name, file_number, secured_party, collateral, address)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), operatorName, jurisdiction,
			f.FilingDate, f.LapseDate, string(f.Status), f.DebtorName,
			f.FileNumber, f.SecuredParty, f.Collateral, f.Address,
		); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert filing")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save filings")
	}
	return len(filings), nil
}

func (s *SQLiteStore) GetFilings(ctx context.Context, operatorName string) ([]model.NormalizedFiling, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filing_date, lapse_date, status, debtor_name, file_number, secured_party, collateral, address
		 FROM filings WHERE operator = ? ORDER BY filing_date`,
		operatorName,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get filings for %s", operatorName)
	}
	defer rows.Close()

	var filings []model.NormalizedFiling
	for rows.Next() {
		var f model.NormalizedFiling
		var lapseDate, address sql.NullString

		if err := rows.Scan(&f.FilingDate, &lapseDate, &f.Status, &f.DebtorName,
			&f.FileNumber, &f.SecuredParty, &f.Collateral, &address); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan filing")
		}
		f.LapseDate = lapseDate.String
		f.Address = address.String
		filings = append(filings, f)
	}
	return filings, eris.Wrap(rows.Err(), "sqlite: get filings iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanScore(row scannable) (*StoredScore, error) {
	var sc StoredScore
	var tailNumber sql.NullString
	var resultJSON string

	err := row.Scan(&sc.ID, &sc.OperatorName, &tailNumber, &resultJSON, &sc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan score")
	}

	sc.TailNumber = tailNumber.String
	if err := json.Unmarshal([]byte(resultJSON), &sc.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal score result")
	}
	return &sc, nil
}
