package report

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/chrissnell/cuffhold/internal/hold"
)

const (
	WorkbookFile = "analysis_results.xlsx"

	AllResultsSheet  = "All Results"
	FailedFilesSheet = "Failed Files"
)

// failedFill is the background of rows that did not pass
const failedFill = "FFCCCC"

// WriteWorkbook writes an Excel workbook with every result on one sheet and the
// failing subset on a second. Failing rows are highlighted and columns are sized to
// their widest cell.
func WriteWorkbook(path string, results []hold.Result, t hold.Thresholds) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AllResultsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(FailedFilesSheet); err != nil {
		return err
	}

	center := &excelize.Alignment{Horizontal: "center"}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: center})
	if err != nil {
		return err
	}
	passStyle, err := f.NewStyle(&excelize.Style{Alignment: center})
	if err != nil {
		return err
	}
	failStyle, err := f.NewStyle(&excelize.Style{
		Alignment: center,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{failedFill}},
	})
	if err != nil {
		return err
	}

	var failed []hold.Result
	for _, r := range results {
		if !r.Pass {
			failed = append(failed, r)
		}
	}

	header := Header(t)
	for _, sheet := range []struct {
		name string
		rows []hold.Result
	}{{AllResultsSheet, results}, {FailedFilesSheet, failed}} {
		widths := make([]int, len(header))
		record := func(values []interface{}) {
			for i, v := range values {
				if n := utf8.RuneCountInString(cellText(v)); n > widths[i] {
					widths[i] = n
				}
			}
		}

		headerRow := make([]interface{}, len(header))
		for i, h := range header {
			headerRow[i] = h
		}
		if err := writeRow(f, sheet.name, 1, headerRow, headerStyle); err != nil {
			return err
		}
		record(headerRow)

		for i, r := range sheet.rows {
			values := workbookRow(r)
			style := passStyle
			if !r.Pass {
				style = failStyle
			}
			if err := writeRow(f, sheet.name, i+2, values, style); err != nil {
				return err
			}
			record(values)
		}

		for i, w := range widths {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet.name, col, col, float64(w+2)); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, n int, values []interface{}, style int) error {
	first, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(values), n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, first, &values); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// workbookRow holds the same columns as the CSV, with typed numeric and boolean cells
func workbookRow(r hold.Result) []interface{} {
	out := []interface{}{
		r.RecordID, str(r.CuffID), str(r.EKGID), str(r.RunName),
		nil, nil, nil, nil,
		nil, nil, nil, nil,
		r.Pass, r.Error,
	}
	if r.Metrics != nil {
		out[4] = math.Round(r.Metrics.Max)
		out[5] = math.Round(r.Metrics.Min)
		out[6] = math.Round(r.Metrics.Mean)
		out[7] = math.Round(r.Metrics.Std)
		out[8] = r.Conditions.MeanInBand
		out[9] = r.Conditions.MaxBelowCeiling
		out[10] = r.Conditions.MinAboveFloor
		out[11] = r.Conditions.StdBelowCeiling
	}
	return out
}

func cellText(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(v)
	}
}
