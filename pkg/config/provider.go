package config

import (
	"fmt"
	"time"

	"github.com/chrissnell/cuffhold/internal/hold"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration, with defaults applied and validated
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetAnalysisConfig() (*AnalysisData, error)
	GetStorageConfig() (*StorageData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Analysis AnalysisData    `json:"analysis" yaml:"analysis"`
	Storage  StorageData     `json:"storage,omitempty" yaml:"storage,omitempty"`
	REST     *RESTServerData `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// AnalysisData holds the classification parameters
type AnalysisData struct {
	Thresholds       ThresholdsData `json:"thresholds" yaml:"thresholds"`
	SettledWindowCap int            `json:"settled_window_cap" yaml:"settled_window_cap"`
	CuffPrefix       string         `json:"cuff_prefix" yaml:"cuff_prefix"`
	EKGPrefix        string         `json:"ekg_prefix" yaml:"ekg_prefix"`
	Workers          int            `json:"workers,omitempty" yaml:"workers,omitempty"`
	Deadline         string         `json:"deadline,omitempty" yaml:"deadline,omitempty"`
}

// ThresholdsData holds the pass limits for a settled window
type ThresholdsData struct {
	MeanLow    float64 `json:"mean_low" yaml:"mean_low"`
	MeanHigh   float64 `json:"mean_high" yaml:"mean_high"`
	MaxCeiling float64 `json:"max_ceiling" yaml:"max_ceiling"`
	MinFloor   float64 `json:"min_floor" yaml:"min_floor"`
	StdCeiling float64 `json:"std_ceiling" yaml:"std_ceiling"`
}

// StorageData holds the configuration for the result storage backends
type StorageData struct {
	SQLite      *SQLiteData      `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty" yaml:"timescaledb,omitempty"`
}

type SQLiteData struct {
	Path string `json:"path" yaml:"path"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
}

// RESTServerData configures the classification HTTP API
type RESTServerData struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// Defaults returns a configuration carrying the deployed hold-test defaults.
// Providers decode on top of it, so keys absent from a source keep these values.
func Defaults() *ConfigData {
	t := hold.DefaultThresholds()
	return &ConfigData{
		Analysis: AnalysisData{
			Thresholds: ThresholdsData{
				MeanLow:    t.MeanLow,
				MeanHigh:   t.MeanHigh,
				MaxCeiling: t.MaxCeiling,
				MinFloor:   t.MinFloor,
				StdCeiling: t.StdCeiling,
			},
			SettledWindowCap: hold.DefaultSettledWindowCap,
			CuffPrefix:       hold.DefaultCuffPrefix,
			EKGPrefix:        hold.DefaultEKGPrefix,
		},
	}
}

// Validate checks the configuration for values the classifier cannot work with
func (c *ConfigData) Validate() error {
	a := c.Analysis
	if a.Thresholds.MeanLow >= a.Thresholds.MeanHigh {
		return fmt.Errorf("analysis.thresholds.mean_low (%v) must be below mean_high (%v)",
			a.Thresholds.MeanLow, a.Thresholds.MeanHigh)
	}
	if a.SettledWindowCap <= 0 {
		return fmt.Errorf("analysis.settled_window_cap must be positive, got %d", a.SettledWindowCap)
	}
	if a.CuffPrefix == "" || a.EKGPrefix == "" {
		return fmt.Errorf("analysis.cuff_prefix and analysis.ekg_prefix must not be empty")
	}
	if a.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative, got %d", a.Workers)
	}
	if _, err := a.DeadlineDuration(); err != nil {
		return err
	}
	if c.Storage.SQLite != nil && c.Storage.SQLite.Path == "" {
		return fmt.Errorf("storage.sqlite.path must be set when the sqlite backend is enabled")
	}
	if c.Storage.TimescaleDB != nil && c.Storage.TimescaleDB.ConnectionString == "" {
		return fmt.Errorf("storage.timescaledb.connection_string must be set when the timescaledb backend is enabled")
	}
	if c.REST != nil && (c.REST.Port < 0 || c.REST.Port > 65535) {
		return fmt.Errorf("rest.port %d is out of range", c.REST.Port)
	}
	return nil
}

// ThresholdsValue converts the configured limits for the classifier
func (a AnalysisData) ThresholdsValue() hold.Thresholds {
	return hold.Thresholds{
		MeanLow:    a.Thresholds.MeanLow,
		MeanHigh:   a.Thresholds.MeanHigh,
		MaxCeiling: a.Thresholds.MaxCeiling,
		MinFloor:   a.Thresholds.MinFloor,
		StdCeiling: a.Thresholds.StdCeiling,
	}
}

// Options returns the classifier options described by this configuration
func (a AnalysisData) Options() hold.Options {
	return hold.Options{
		Thresholds:       a.ThresholdsValue(),
		SettledWindowCap: a.SettledWindowCap,
		CuffPrefix:       a.CuffPrefix,
		EKGPrefix:        a.EKGPrefix,
	}
}

// DeadlineDuration parses the overall batch deadline. Zero means no deadline.
func (a AnalysisData) DeadlineDuration() (time.Duration, error) {
	if a.Deadline == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Deadline)
	if err != nil {
		return 0, fmt.Errorf("invalid analysis.deadline %q: %w", a.Deadline, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("analysis.deadline must not be negative, got %s", d)
	}
	return d, nil
}
