// Package timescaledb stores classification results in a TimescaleDB hypertable.
package timescaledb

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/chrissnell/cuffhold/internal/database"
	"github.com/chrissnell/cuffhold/internal/hold"
	"github.com/chrissnell/cuffhold/internal/log"
)

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb CASCADE`

const createHypertableSQL = `SELECT create_hypertable('hold_results', 'classified_at', if_not_exists => TRUE, migrate_data => TRUE)`

// insertBatchSize bounds the rows per INSERT statement
const insertBatchSize = 500

// Storage holds the connection for a TimescaleDB result store
type Storage struct {
	TimescaleDBConn *gorm.DB
}

// New connects to TimescaleDB and prepares the results hypertable
func New(ctx context.Context, connectionString string) (*Storage, error) {
	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}
	return prepare(ctx, db)
}

// prepare creates the schema on an open connection. The connection is closed when
// any step fails.
func prepare(ctx context.Context, db *gorm.DB) (*Storage, error) {
	t := &Storage{TimescaleDBConn: db}

	log.Info("creating TimescaleDB extension...")
	if err := db.WithContext(ctx).Exec(createExtensionSQL).Error; err != nil {
		t.Close()
		return nil, fmt.Errorf("could not create TimescaleDB extension: %w", err)
	}

	log.Info("creating results table...")
	if err := db.WithContext(ctx).AutoMigrate(&database.ResultRow{}); err != nil {
		t.Close()
		return nil, fmt.Errorf("could not create results table: %w", err)
	}

	log.Info("creating hypertable...")
	if err := db.WithContext(ctx).Exec(createHypertableSQL).Error; err != nil {
		t.Close()
		return nil, fmt.Errorf("could not create hypertable: %w", err)
	}

	return t, nil
}

// SaveRun stores every result of the run
func (t *Storage) SaveRun(ctx context.Context, runID string, at time.Time, results []hold.Result) error {
	rows := database.RowsFromResults(runID, at, results)
	if len(rows) == 0 {
		return nil
	}
	if err := t.TimescaleDBConn.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error; err != nil {
		return fmt.Errorf("could not store run %s: %w", runID, err)
	}
	return nil
}

// LoadRun returns the stored results of a run ordered by record id
func (t *Storage) LoadRun(ctx context.Context, runID string) ([]hold.Result, error) {
	var rows []database.ResultRow
	err := t.TimescaleDBConn.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("record_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not load run %s: %w", runID, err)
	}

	results := make([]hold.Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.Result())
	}
	return results, nil
}

// Close closes the underlying connection pool
func (t *Storage) Close() error {
	sqlDB, err := t.TimescaleDBConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
