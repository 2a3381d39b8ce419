// Package sqlite stores classification results in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/cuffhold/internal/database"
	"github.com/chrissnell/cuffhold/internal/hold"
	"github.com/chrissnell/cuffhold/pkg/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

const insertSQL = `
INSERT INTO hold_results (
    run_id, classified_at, record_id, cuff_id, ekg_id, run_name,
    max_value, min_value, mean_value, std_value,
    mean_in_band, max_below_ceiling, min_above_floor, std_below_ceiling,
    pass, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectRunSQL = `
SELECT run_id, classified_at, record_id, cuff_id, ekg_id, run_name,
       max_value, min_value, mean_value, std_value,
       mean_in_band, max_below_ceiling, min_above_floor, std_below_ceiling,
       pass, error
FROM hold_results
WHERE run_id = ?
ORDER BY rowid`

// Store is a SQLite-backed result store
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and migrates the results schema
func New(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids busy errors.
	db.SetMaxOpenConns(1)

	m := migrate.NewMigrator(db, migrate.NewFSProvider(migrations, "migrations"), "")
	if err := m.MigrateUp(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate results schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun inserts every result of the run in a single transaction
func (s *Store) SaveRun(ctx context.Context, runID string, at time.Time, results []hold.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range database.RowsFromResults(runID, at.UTC(), results) {
		_, err := stmt.ExecContext(ctx,
			r.RunID, r.ClassifiedAt, r.RecordID, r.CuffID, r.EKGID, r.RunName,
			r.MaxValue, r.MinValue, r.MeanValue, r.StdValue,
			r.MeanInBand, r.MaxBelowCeiling, r.MinAboveFloor, r.StdBelowCeiling,
			r.Pass, r.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", r.RecordID, err)
		}
	}

	return tx.Commit()
}

// LoadRun returns the stored results of a run in insertion order
func (s *Store) LoadRun(ctx context.Context, runID string) ([]hold.Result, error) {
	rows, err := s.db.QueryContext(ctx, selectRunSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	defer rows.Close()

	var results []hold.Result
	for rows.Next() {
		var r database.ResultRow
		var cuffID, ekgID, runName, errMsg sql.NullString
		var maxV, minV, meanV, stdV sql.NullFloat64
		var inBand, belowCeiling, aboveFloor, stdBelow sql.NullBool

		err := rows.Scan(
			&r.RunID, &r.ClassifiedAt, &r.RecordID, &cuffID, &ekgID, &runName,
			&maxV, &minV, &meanV, &stdV,
			&inBand, &belowCeiling, &aboveFloor, &stdBelow,
			&r.Pass, &errMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		r.CuffID, r.EKGID, r.RunName, r.Error = str(cuffID), str(ekgID), str(runName), str(errMsg)
		r.MaxValue, r.MinValue, r.MeanValue, r.StdValue = flt(maxV), flt(minV), flt(meanV), flt(stdV)
		r.MeanInBand, r.MaxBelowCeiling = boolean(inBand), boolean(belowCeiling)
		r.MinAboveFloor, r.StdBelowCeiling = boolean(aboveFloor), boolean(stdBelow)

		results = append(results, r.Result())
	}
	return results, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func str(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func flt(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func boolean(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}
