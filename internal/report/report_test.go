package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/chrissnell/cuffhold/internal/hold"
)

func sp(s string) *string { return &s }

func sampleResults() []hold.Result {
	return []hold.Result{
		{
			RecordID: "CAA041PAA046-run3",
			Identity: hold.Identity{CuffID: sp("CAA041"), EKGID: sp("PAA046"), RunName: sp("run3")},
			Metrics:  &hold.Metrics{Max: 10012.6, Min: 9890.2, Mean: 9950.49, Std: 12.5},
			Conditions: hold.ConditionSet{
				MeanBelowHigh: true, MeanAboveLow: true, MeanInBand: true,
				MaxBelowCeiling: true, MinAboveFloor: true, StdBelowCeiling: true,
			},
			Pass: true,
		},
		{
			RecordID: "malformed-run1",
			Identity: hold.Identity{RunName: sp("run1")},
			Error:    "MalformedRecord: missing tester_info",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, sampleResults(), hold.DefaultThresholds()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}

	if rows[0][8] != "Condition 1 (Mean < 11000 & > 6500)" {
		t.Fatalf("unexpected condition header %q", rows[0][8])
	}

	pass := rows[1]
	if pass[1] != "CAA041" || pass[4] != "10013" || pass[6] != "9950" || pass[7] != "13" || pass[12] != "true" {
		t.Fatalf("unexpected passing row %v", pass)
	}

	failed := rows[2]
	if failed[1] != "" || failed[3] != "run1" || failed[4] != "" || failed[8] != "" || failed[12] != "false" {
		t.Fatalf("unexpected failed row %v", failed)
	}
	if failed[13] != "MalformedRecord: missing tester_info" {
		t.Fatalf("unexpected error cell %q", failed[13])
	}
}

func TestWriteResultFiles(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteResultFiles(dir, sampleResults(), hold.DefaultThresholds())
	if err != nil {
		t.Fatalf("write results: %v", err)
	}

	if len(paths) != 3 || filepath.Base(paths[2]) != WorkbookFile {
		t.Fatalf("unexpected result files %v", paths)
	}

	counts := map[string]int{AllResultsFile: 3, FailedResultsFile: 2}
	for _, p := range paths[:2] {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("parse %s: %v", p, err)
		}
		if want := counts[filepath.Base(p)]; len(rows) != want {
			t.Fatalf("%s: expected %d rows, got %d", filepath.Base(p), want, len(rows))
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var b strings.Builder
	PrintSummary(&b, hold.Summarize(sampleResults(), hold.DefaultThresholds()))

	out := b.String()
	for _, want := range []string{"Total files analyzed: 2", "Files with errors: 1", "Files meeting all conditions: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary is missing %q:\n%s", want, out)
		}
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), WorkbookFile)
	if err := WriteWorkbook(path, sampleResults(), hold.DefaultThresholds()); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != AllResultsSheet || sheets[1] != FailedFilesSheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	all, err := f.GetRows(AllResultsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0][8] != "Condition 1 (Mean < 11000 & > 6500)" {
		t.Fatalf("unexpected rows on %s: %v", AllResultsSheet, all)
	}
	if all[1][0] != "CAA041PAA046-run3" || all[1][4] != "10013" || all[1][7] != "13" {
		t.Errorf("unexpected passing row %v", all[1])
	}

	failed, err := f.GetRows(FailedFilesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 2 || failed[1][0] != "malformed-run1" {
		t.Fatalf("unexpected rows on %s: %v", FailedFilesSheet, failed)
	}

	passStyle, err := f.GetCellStyle(AllResultsSheet, "A2")
	if err != nil {
		t.Fatal(err)
	}
	failStyle, err := f.GetCellStyle(AllResultsSheet, "A3")
	if err != nil {
		t.Fatal(err)
	}
	if passStyle == failStyle {
		t.Error("failed row should be styled differently from a passing row")
	}

	width, err := f.GetColWidth(AllResultsSheet, "I")
	if err != nil {
		t.Fatal(err)
	}
	if want := float64(len("Condition 1 (Mean < 11000 & > 6500)") + 2); width != want {
		t.Errorf("condition column width = %v, want %v", width, want)
	}
}
