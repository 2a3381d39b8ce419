package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/chrissnell/cuffhold/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <cuffhold.yaml> -sqlite <cuffhold.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlConfig, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	ok := compare("Thresholds", yamlConfig.Analysis.Thresholds, sqliteConfig.Analysis.Thresholds)
	ok = compare("Analysis", yamlConfig.Analysis, sqliteConfig.Analysis) && ok
	ok = compare("Storage", yamlConfig.Storage, sqliteConfig.Storage) && ok
	ok = compare("REST", yamlConfig.REST, sqliteConfig.REST) && ok

	if !ok {
		os.Exit(1)
	}
	fmt.Println("\nAll configuration sections match")
}

func compare(section string, yamlValue, sqliteValue interface{}) bool {
	if reflect.DeepEqual(yamlValue, sqliteValue) {
		fmt.Printf("✓ %s matches\n", section)
		return true
	}
	fmt.Printf("✗ %s differs\n", section)
	fmt.Printf("  YAML:   %+v\n", yamlValue)
	fmt.Printf("  SQLite: %+v\n", sqliteValue)
	return false
}
