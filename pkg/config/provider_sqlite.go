package config

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/cuffhold/pkg/migrate"
)

var settingsMigrations = migrate.Static{
	{
		Version: 1,
		Name:    "create_settings",
		Up:      `CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
		Down:    `DROP TABLE settings`,
	},
}

// SQLiteProvider implements ConfigProvider for SQLite database configuration.
// Settings are stored as dotted keys (e.g. analysis.thresholds.mean_low) in a
// single key/value table.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider, creating the
// settings table if the database is new
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	m := migrate.NewMigrator(db, settingsMigrations, "config_migrations")
	if err := m.MigrateUp(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings table: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	config := Defaults()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		if err := applySetting(config, key, value); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// GetAnalysisConfig returns the analysis section
func (s *SQLiteProvider) GetAnalysisConfig() (*AnalysisData, error) {
	config, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Analysis, nil
}

// GetStorageConfig returns the storage section
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	config, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Storage, nil
}

// SaveConfig writes every setting of config, replacing existing values
func (s *SQLiteProvider) SaveConfig(config *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM settings`); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO settings (key, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, kv := range settingsOf(config) {
		if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to write setting %s: %w", kv[0], err)
		}
	}

	return tx.Commit()
}

// IsReadOnly returns false; settings can be written with SaveConfig
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

func applySetting(c *ConfigData, key, value string) error {
	var err error
	a := &c.Analysis
	switch key {
	case "analysis.thresholds.mean_low":
		a.Thresholds.MeanLow, err = strconv.ParseFloat(value, 64)
	case "analysis.thresholds.mean_high":
		a.Thresholds.MeanHigh, err = strconv.ParseFloat(value, 64)
	case "analysis.thresholds.max_ceiling":
		a.Thresholds.MaxCeiling, err = strconv.ParseFloat(value, 64)
	case "analysis.thresholds.min_floor":
		a.Thresholds.MinFloor, err = strconv.ParseFloat(value, 64)
	case "analysis.thresholds.std_ceiling":
		a.Thresholds.StdCeiling, err = strconv.ParseFloat(value, 64)
	case "analysis.settled_window_cap":
		a.SettledWindowCap, err = strconv.Atoi(value)
	case "analysis.cuff_prefix":
		a.CuffPrefix = value
	case "analysis.ekg_prefix":
		a.EKGPrefix = value
	case "analysis.workers":
		a.Workers, err = strconv.Atoi(value)
	case "analysis.deadline":
		a.Deadline = value
	case "storage.sqlite.path":
		c.Storage.SQLite = &SQLiteData{Path: value}
	case "storage.timescaledb.connection_string":
		c.Storage.TimescaleDB = &TimescaleDBData{ConnectionString: value}
	case "rest.listen_addr":
		if c.REST == nil {
			c.REST = &RESTServerData{}
		}
		c.REST.ListenAddr = value
	case "rest.port":
		if c.REST == nil {
			c.REST = &RESTServerData{}
		}
		c.REST.Port, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for setting %s: %w", value, key, err)
	}
	return nil
}

func settingsOf(c *ConfigData) [][2]string {
	a := c.Analysis
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	kvs := [][2]string{
		{"analysis.thresholds.mean_low", f(a.Thresholds.MeanLow)},
		{"analysis.thresholds.mean_high", f(a.Thresholds.MeanHigh)},
		{"analysis.thresholds.max_ceiling", f(a.Thresholds.MaxCeiling)},
		{"analysis.thresholds.min_floor", f(a.Thresholds.MinFloor)},
		{"analysis.thresholds.std_ceiling", f(a.Thresholds.StdCeiling)},
		{"analysis.settled_window_cap", strconv.Itoa(a.SettledWindowCap)},
		{"analysis.cuff_prefix", a.CuffPrefix},
		{"analysis.ekg_prefix", a.EKGPrefix},
		{"analysis.workers", strconv.Itoa(a.Workers)},
	}
	if a.Deadline != "" {
		kvs = append(kvs, [2]string{"analysis.deadline", a.Deadline})
	}
	if c.Storage.SQLite != nil {
		kvs = append(kvs, [2]string{"storage.sqlite.path", c.Storage.SQLite.Path})
	}
	if c.Storage.TimescaleDB != nil {
		kvs = append(kvs, [2]string{"storage.timescaledb.connection_string", c.Storage.TimescaleDB.ConnectionString})
	}
	if c.REST != nil {
		kvs = append(kvs,
			[2]string{"rest.listen_addr", c.REST.ListenAddr},
			[2]string{"rest.port", strconv.Itoa(c.REST.Port)},
		)
	}
	return kvs
}
