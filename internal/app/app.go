package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrissnell/cuffhold/internal/controllers/restserver"
	"github.com/chrissnell/cuffhold/internal/hold"
	"github.com/chrissnell/cuffhold/internal/loader"
	"github.com/chrissnell/cuffhold/internal/report"
	"github.com/chrissnell/cuffhold/internal/storage"
	"github.com/chrissnell/cuffhold/pkg/config"
)

// LoadLogFile is written into the results folder on every batch run
const LoadLogFile = "load_log.txt"

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
	out    io.Writer
	now    func() time.Time
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		out:    os.Stdout,
		now:    time.Now,
	}
}

// RunReport describes one completed batch run
type RunReport struct {
	RunID       string
	ResultsDir  string
	ResultFiles []string
	Results     []hold.Result
	Summary     hold.Summary
}

// DefaultResultsDir places results next to the data folder, in analysis_results
func DefaultResultsDir(dataDir string) string {
	parent := filepath.Dir(strings.TrimRight(dataDir, `/\`))
	return filepath.Join(parent, "analysis_results")
}

// Analyze loads every recording in dataDir, classifies them and writes the load log,
// result CSVs and any configured result stores.
func (a *App) Analyze(ctx context.Context, dataDir, resultsDir string) (*RunReport, error) {
	cfg := a.cfg
	if resultsDir == "" {
		resultsDir = DefaultResultsDir(dataDir)
	}
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating results folder: %w", err)
	}

	runID := uuid.New().String()
	started := a.now()
	logger := a.logger.With("run_id", runID)
	logger.Infof("analyzing recordings in %s, results go to %s", dataDir, resultsDir)

	loaded, err := loader.LoadDirectory(dataDir)
	if err != nil {
		return nil, err
	}
	logger.Infof("loaded %d of %d JSON files", len(loaded.Records), len(loaded.Files))
	for _, f := range loaded.Failed {
		logger.Warnf("error loading %s: %v", f.File, f.Err)
	}
	if err := loaded.WriteLogFile(filepath.Join(resultsDir, LoadLogFile), started); err != nil {
		return nil, err
	}

	deadline, err := cfg.Analysis.DeadlineDuration()
	if err != nil {
		return nil, err
	}
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	classifier := hold.NewClassifier(cfg.Analysis.Options())
	results := hold.NewAggregator(classifier, cfg.Analysis.Workers, logger).Run(ctx, loaded.Records)

	store, err := storage.NewFromConfig(context.WithoutCancel(ctx), cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	if err := store.SaveRun(context.WithoutCancel(ctx), runID, started, results); err != nil {
		return nil, err
	}

	thresholds := classifier.Thresholds()
	files, err := report.WriteResultFiles(resultsDir, results, thresholds)
	if err != nil {
		return nil, err
	}

	summary := hold.Summarize(results, thresholds)
	report.PrintSummary(a.out, summary)
	logger.Infow("analysis complete",
		"total", summary.Total,
		"passed", summary.Passed,
		"errored", summary.Errored,
		"elapsed", a.now().Sub(started),
	)

	return &RunReport{
		RunID:       runID,
		ResultsDir:  resultsDir,
		ResultFiles: files,
		Results:     results,
		Summary:     summary,
	}, nil
}

// Serve runs the REST classification API until SIGINT/SIGTERM or ctx cancellation
func (a *App) Serve(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := a.cfg

	store, err := storage.NewFromConfig(ctx, cfg.Storage, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var rs storage.ResultStore
	if store.Len() > 0 {
		rs = store
	}
	ctrl, err := restserver.NewController(ctx, &wg, cfg, rs, a.logger)
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	a.logger.Info("application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}
