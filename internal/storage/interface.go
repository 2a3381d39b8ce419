// Package storage defines the result storage backends for classification runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/cuffhold/internal/hold"
	"github.com/chrissnell/cuffhold/internal/storage/sqlite"
	"github.com/chrissnell/cuffhold/internal/storage/timescaledb"
	"github.com/chrissnell/cuffhold/pkg/config"
)

// ResultStore persists the results of one batch run
type ResultStore interface {
	SaveRun(ctx context.Context, runID string, at time.Time, results []hold.Result) error
	Close() error
}

// Multi fans a run out to every configured backend
type Multi struct {
	stores []ResultStore
	logger *zap.SugaredLogger
}

// NewMulti wraps stores into a single ResultStore
func NewMulti(logger *zap.SugaredLogger, stores ...ResultStore) *Multi {
	return &Multi{stores: stores, logger: logger}
}

// NewFromConfig opens every storage backend enabled in sd. It returns an empty Multi
// when none is configured.
func NewFromConfig(ctx context.Context, sd config.StorageData, logger *zap.SugaredLogger) (*Multi, error) {
	m := NewMulti(logger)

	if sd.SQLite != nil {
		s, err := sqlite.New(ctx, sd.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("error opening SQLite result store: %w", err)
		}
		logger.Infof("storing results in SQLite database %s", sd.SQLite.Path)
		m.stores = append(m.stores, s)
	}

	if sd.TimescaleDB != nil {
		s, err := timescaledb.New(ctx, sd.TimescaleDB.ConnectionString)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("error opening TimescaleDB result store: %w", err)
		}
		logger.Info("storing results in TimescaleDB")
		m.stores = append(m.stores, s)
	}

	return m, nil
}

// Len returns the number of backends
func (m *Multi) Len() int {
	return len(m.stores)
}

// SaveRun writes the run to every backend. A failing backend does not keep the run
// from the others; all errors are returned joined.
func (m *Multi) SaveRun(ctx context.Context, runID string, at time.Time, results []hold.Result) error {
	var errs []error
	for _, s := range m.stores {
		if err := s.SaveRun(ctx, runID, at, results); err != nil {
			m.logger.Errorf("could not store run %s: %v", runID, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every backend
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.stores {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
