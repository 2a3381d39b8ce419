// Package loader reads tester JSON recordings from a folder into hold records.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chrissnell/cuffhold/internal/hold"
)

const recordExt = ".json"

// FileError records a file that could not be decoded
type FileError struct {
	File string
	Err  error
}

// LoadResult is the outcome of loading a data folder
type LoadResult struct {
	Dir     string
	Files   []string                  // every JSON file found, sorted
	Records map[string]hold.RawRecord // keyed by file name without extension
	Failed  []FileError
}

// LoadDirectory decodes every *.json file in dir. Files that cannot be read or decoded
// are collected in Failed and do not stop the load.
func LoadDirectory(dir string) (*LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading data folder: %w", err)
	}

	res := &LoadResult{
		Dir:     dir,
		Records: make(map[string]hold.RawRecord),
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		res.Files = append(res.Files, e.Name())
	}
	sort.Strings(res.Files)

	if len(res.Files) == 0 {
		return nil, fmt.Errorf("no JSON files found in %s", dir)
	}

	for _, name := range res.Files {
		rec, err := loadFile(filepath.Join(dir, name))
		if err != nil {
			res.Failed = append(res.Failed, FileError{File: name, Err: err})
			continue
		}
		res.Records[RecordID(name)] = rec
	}

	return res, nil
}

// RecordID derives the record id from a recording's file name
func RecordID(fileName string) string {
	return strings.TrimSuffix(filepath.Base(fileName), recordExt)
}

func loadFile(path string) (hold.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return hold.RawRecord{}, err
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads one recording from r
func Decode(r io.Reader) (hold.RawRecord, error) {
	var rec hold.RawRecord
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return hold.RawRecord{}, err
	}
	return rec, nil
}

// WriteLog writes a human-readable load summary, including every failed file
func (r *LoadResult) WriteLog(w io.Writer, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "JSON load run: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "Data folder: %s\n", r.Dir)
	fmt.Fprintf(&b, "Total JSON files found: %d\n", len(r.Files))
	fmt.Fprintf(&b, "Successfully loaded: %d\n", len(r.Records))
	fmt.Fprintf(&b, "Failed to load: %d\n\n", len(r.Failed))
	if len(r.Failed) > 0 {
		b.WriteString("Failed files and errors:\n")
		for _, f := range r.Failed {
			fmt.Fprintf(&b, "%s: %v\n", f.File, f.Err)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteLogFile writes the load summary to path
func (r *LoadResult) WriteLogFile(path string, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating load log: %w", err)
	}
	if err := r.WriteLog(f, now); err != nil {
		f.Close()
		return fmt.Errorf("error writing load log: %w", err)
	}
	return f.Close()
}
