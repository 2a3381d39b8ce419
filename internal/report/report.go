// Package report renders classification results as an Excel workbook, CSV files and
// console summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chrissnell/cuffhold/internal/hold"
)

const (
	AllResultsFile    = "analysis_results.csv"
	FailedResultsFile = "failed_results.csv"
)

// Header returns the CSV column names. Condition columns spell out the limits in force.
func Header(t hold.Thresholds) []string {
	return []string{
		"File Name",
		"Cuff ID",
		"EKG ID",
		"Run Name",
		"Max Settled Value",
		"Min Settled Value",
		"Mean Settled Value",
		"Std Settled Value",
		fmt.Sprintf("Condition 1 (Mean < %s & > %s)", num(t.MeanHigh), num(t.MeanLow)),
		fmt.Sprintf("Condition 2 (Max < %s)", num(t.MaxCeiling)),
		fmt.Sprintf("Condition 3 (Min > %s)", num(t.MinFloor)),
		fmt.Sprintf("Condition 4 (Std < %s)", num(t.StdCeiling)),
		"Final Pass/Fail",
		"Error",
	}
}

// WriteCSV writes one row per result. Statistics are rounded to whole numbers;
// fields a failed record does not have are left empty.
func WriteCSV(w io.Writer, results []hold.Result, t hold.Thresholds) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(t)); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResultFiles writes all results and the failing subset into dir, as two CSV files
// and one workbook with a sheet each
func WriteResultFiles(dir string, results []hold.Result, t hold.Thresholds) ([]string, error) {
	var failed []hold.Result
	for _, r := range results {
		if !r.Pass {
			failed = append(failed, r)
		}
	}

	paths := []string{
		filepath.Join(dir, AllResultsFile),
		filepath.Join(dir, FailedResultsFile),
	}
	for i, rows := range [][]hold.Result{results, failed} {
		if err := writeFile(paths[i], rows, t); err != nil {
			return nil, err
		}
	}

	workbook := filepath.Join(dir, WorkbookFile)
	if err := WriteWorkbook(workbook, results, t); err != nil {
		return nil, err
	}
	return append(paths, workbook), nil
}

func writeFile(path string, results []hold.Result, t hold.Thresholds) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := WriteCSV(f, results, t); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return f.Close()
}

func row(r hold.Result) []string {
	out := []string{
		r.RecordID,
		str(r.CuffID),
		str(r.EKGID),
		str(r.RunName),
		"", "", "", "",
		"", "", "", "",
		strconv.FormatBool(r.Pass),
		r.Error,
	}
	if r.Metrics != nil {
		out[4] = rounded(r.Metrics.Max)
		out[5] = rounded(r.Metrics.Min)
		out[6] = rounded(r.Metrics.Mean)
		out[7] = rounded(r.Metrics.Std)
		out[8] = strconv.FormatBool(r.Conditions.MeanInBand)
		out[9] = strconv.FormatBool(r.Conditions.MaxBelowCeiling)
		out[10] = strconv.FormatBool(r.Conditions.MinAboveFloor)
		out[11] = strconv.FormatBool(r.Conditions.StdBelowCeiling)
	}
	return out
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func rounded(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PrintSummary writes the batch summary in the format operators are used to
func PrintSummary(w io.Writer, s hold.Summary) {
	fmt.Fprintf(w, "\nSummary Statistics:\n")
	fmt.Fprintf(w, "Total files analyzed: %d\n", s.Total)
	fmt.Fprintf(w, "Files with errors: %d\n", s.Errored)
	fmt.Fprintf(w, "Files meeting condition 1: %d\n", s.MeanInBand)
	fmt.Fprintf(w, "Files meeting condition 2: %d\n", s.MaxBelowCeiling)
	fmt.Fprintf(w, "Files meeting condition 3: %d\n", s.MinAboveFloor)
	fmt.Fprintf(w, "Files meeting condition 4: %d\n", s.StdBelowCeiling)
	fmt.Fprintf(w, "Files meeting all conditions: %d\n", s.Passed)
	fmt.Fprintf(w, "Max above ceiling: %d, min below floor: %d, mean below band: %d, mean above band: %d\n",
		s.MaxAboveCeiling, s.MinBelowFloor, s.MeanBelowLow, s.MeanAboveHigh)
}
