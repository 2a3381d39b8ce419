package database

import (
	"time"

	"github.com/chrissnell/cuffhold/internal/hold"
)

// ResultRow is one stored classification result. Statistic and condition columns are
// NULL for records that failed classification.
type ResultRow struct {
	RunID           string    `gorm:"column:run_id;not null;index"`
	ClassifiedAt    time.Time `gorm:"column:classified_at;not null"`
	RecordID        string    `gorm:"column:record_id;not null"`
	CuffID          *string   `gorm:"column:cuff_id"`
	EKGID           *string   `gorm:"column:ekg_id"`
	RunName         *string   `gorm:"column:run_name"`
	MaxValue        *float64  `gorm:"column:max_value"`
	MinValue        *float64  `gorm:"column:min_value"`
	MeanValue       *float64  `gorm:"column:mean_value"`
	StdValue        *float64  `gorm:"column:std_value"`
	MeanInBand      *bool     `gorm:"column:mean_in_band"`
	MaxBelowCeiling *bool     `gorm:"column:max_below_ceiling"`
	MinAboveFloor   *bool     `gorm:"column:min_above_floor"`
	StdBelowCeiling *bool     `gorm:"column:std_below_ceiling"`
	Pass            bool      `gorm:"column:pass;not null"`
	Error           *string   `gorm:"column:error"`
}

// TableName specifies the table name for ResultRow
func (ResultRow) TableName() string {
	return "hold_results"
}

// RowsFromResults converts one batch run into rows
func RowsFromResults(runID string, at time.Time, results []hold.Result) []ResultRow {
	rows := make([]ResultRow, 0, len(results))
	for _, r := range results {
		row := ResultRow{
			RunID:        runID,
			ClassifiedAt: at,
			RecordID:     r.RecordID,
			CuffID:       r.CuffID,
			EKGID:        r.EKGID,
			RunName:      r.RunName,
			Pass:         r.Pass,
		}
		if r.Metrics != nil {
			m := *r.Metrics
			c := r.Conditions
			row.MaxValue, row.MinValue, row.MeanValue, row.StdValue = &m.Max, &m.Min, &m.Mean, &m.Std
			row.MeanInBand = &c.MeanInBand
			row.MaxBelowCeiling = &c.MaxBelowCeiling
			row.MinAboveFloor = &c.MinAboveFloor
			row.StdBelowCeiling = &c.StdBelowCeiling
		}
		if r.Error != "" {
			e := r.Error
			row.Error = &e
		}
		rows = append(rows, row)
	}
	return rows
}

// Result converts a stored row back into a classification result. The split mean
// conditions are not stored and come back unset.
func (r ResultRow) Result() hold.Result {
	res := hold.Result{
		RecordID: r.RecordID,
		Identity: hold.Identity{CuffID: r.CuffID, EKGID: r.EKGID, RunName: r.RunName},
		Pass:     r.Pass,
	}
	if r.MaxValue != nil && r.MinValue != nil && r.MeanValue != nil && r.StdValue != nil {
		res.Metrics = &hold.Metrics{Max: *r.MaxValue, Min: *r.MinValue, Mean: *r.MeanValue, Std: *r.StdValue}
	}
	res.Conditions.MeanInBand = deref(r.MeanInBand)
	res.Conditions.MaxBelowCeiling = deref(r.MaxBelowCeiling)
	res.Conditions.MinAboveFloor = deref(r.MinAboveFloor)
	res.Conditions.StdBelowCeiling = deref(r.StdBelowCeiling)
	if r.Error != nil {
		res.Error = *r.Error
	}
	return res
}

func deref(b *bool) bool {
	return b != nil && *b
}
