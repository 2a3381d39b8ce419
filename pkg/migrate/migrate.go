// Package migrate applies versioned schema migrations to a database/sql database.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

const defaultTable = "schema_migrations"

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Provider supplies the migrations to apply
type Provider interface {
	Migrations() ([]Migration, error)
}

// Static is a Provider over an in-code list of migrations
type Static []Migration

func (s Static) Migrations() ([]Migration, error) {
	return s, nil
}

// Migrator handles the execution of migrations
type Migrator struct {
	db       *sql.DB
	provider Provider
	table    string
}

// NewMigrator creates a migrator recording its version in table
// (schema_migrations when empty)
func NewMigrator(db *sql.DB, provider Provider, table string) *Migrator {
	if table == "" {
		table = defaultTable
	}
	return &Migrator{db: db, provider: provider, table: table}
}

// MigrateUp runs all pending migrations up to the latest version
func (m *Migrator) MigrateUp(ctx context.Context) error {
	return m.MigrateTo(ctx, -1)
}

// MigrateTo runs migrations up or down to reach version; -1 means latest
func (m *Migrator) MigrateTo(ctx context.Context, version int) error {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	migrations, err := m.sorted()
	if err != nil {
		return err
	}
	if version == -1 {
		version = 0
		if len(migrations) > 0 {
			version = migrations[len(migrations)-1].Version
		}
	}

	if version < current {
		for i := len(migrations) - 1; i >= 0; i-- {
			mg := migrations[i]
			if mg.Version > version && mg.Version <= current {
				if err := m.execute(ctx, mg, false); err != nil {
					return fmt.Errorf("failed to rollback migration %d: %w", mg.Version, err)
				}
			}
		}
		return nil
	}

	for _, mg := range migrations {
		if mg.Version > current && mg.Version <= version {
			if err := m.execute(ctx, mg, true); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", mg.Version, err)
			}
		}
	}
	return nil
}

// CurrentVersion returns the applied version, 0 for a fresh database
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (version INTEGER NOT NULL)`, m.table)
	if _, err := m.db.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("failed to create migration table: %w", err)
	}

	var version sql.NullInt64
	query := fmt.Sprintf(`SELECT MAX(version) FROM %s`, m.table)
	if err := m.db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return int(version.Int64), nil
}

// Pending returns migrations that haven't been applied yet
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	migrations, err := m.sorted()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mg := range migrations {
		if mg.Version > current {
			pending = append(pending, mg)
		}
	}
	return pending, nil
}

func (m *Migrator) sorted() ([]Migration, error) {
	migrations, err := m.provider.Migrations()
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations: %w", err)
	}
	migrations = append([]Migration(nil), migrations...)
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", migrations[i].Version)
		}
	}
	return migrations, nil
}

// execute runs a single migration and records the resulting version in the same transaction
func (m *Migrator) execute(ctx context.Context, mg Migration, up bool) error {
	stmt, version := mg.Up, mg.Version
	if !up {
		stmt, version = mg.Down, mg.Version-1
	}
	if stmt == "" {
		return fmt.Errorf("migration %d (%s) has no SQL for this direction", mg.Version, mg.Name)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, m.table)); err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (version) VALUES (?)`, m.table), version); err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}

	return tx.Commit()
}
