package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/cuffhold/internal/app"
	"github.com/chrissnell/cuffhold/internal/constants"
	"github.com/chrissnell/cuffhold/internal/log"
	"github.com/chrissnell/cuffhold/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to configuration source:\n\t\t\t  YAML: cuffhold.yaml\n\t\t\t  SQLite: cuffhold.db\n\t\t\t  Built-in defaults are used when empty")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	dataDir := flag.String("data", "", "Folder of JSON hold-test recordings to analyze")
	resultsDir := flag.String("results", "", "Output folder (default: <parent of data>/analysis_results)")
	serve := flag.Bool("serve", false, "Run the REST classification server instead of a batch analysis")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	logFile := flag.String("log-file", "", "Also write JSON logs to this file, rotated by size")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("cuffhold %s\n", constants.Version)
		os.Exit(0)
	}

	if !*serve && *dataDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -data <folder> [-results <folder>] | -serve\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Set up logging
	if err := log.InitWithFile(*debug, *logFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	cfgData, err := loadConfig(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	application := app.New(cfgData, log.GetSugaredLogger())

	if *serve {
		if err := application.Serve(context.Background()); err != nil {
			log.Errorf("Server error: %v", err)
			os.Exit(1)
		}
		return
	}

	report, err := application.Analyze(context.Background(), *dataDir, *resultsDir)
	if err != nil {
		log.Errorf("Analysis failed: %v", err)
		os.Exit(1)
	}
	for _, f := range report.ResultFiles {
		log.Infof("wrote %s", f)
	}
}

func loadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	if cfgFile == "" {
		return config.Defaults(), nil
	}

	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider
	var err error

	switch cfgBackend {
	case "yaml":
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		provider, err = config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}
