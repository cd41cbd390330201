package filestore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mokbank/mokbank/internal/model"
)

const (
	progressNumFields = 4
	colModuleID       = 0
	colCompletions    = 1
	colBestScore      = 2
	colLastCompleted  = 3
)

var progressHeader = []string{"module_id", "completions", "best_score", "last_completed_at"}

// ReadProgress reads progress.csv.
func ReadProgress(r io.Reader) ([]model.ModuleProgress, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = progressNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading progress CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var out []model.ModuleProgress
	for i, rec := range records[1:] {
		p, err := UnmarshalProgress(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// WriteProgress writes progress.csv including the header.
func WriteProgress(w io.Writer, progress []model.ModuleProgress) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(progressHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, p := range progress {
		if err := cw.Write(MarshalProgress(p)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalProgress converts a ModuleProgress to a CSV row.
func MarshalProgress(p model.ModuleProgress) []string {
	row := make([]string, progressNumFields)
	row[colModuleID] = p.ModuleID
	row[colCompletions] = strconv.Itoa(p.Completions)
	row[colBestScore] = strconv.FormatInt(p.BestScore, 10)
	row[colLastCompleted] = formatTime(p.LastCompletedAt)
	return row
}

// UnmarshalProgress converts a CSV row to a ModuleProgress.
func UnmarshalProgress(record []string) (model.ModuleProgress, error) {
	if len(record) != progressNumFields {
		return model.ModuleProgress{}, fmt.Errorf("expected %d fields, got %d", progressNumFields, len(record))
	}
	completions, err := strconv.Atoi(record[colCompletions])
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("parsing completions %q: %w", record[colCompletions], err)
	}
	best, err := strconv.ParseInt(record[colBestScore], 10, 64)
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("parsing best_score %q: %w", record[colBestScore], err)
	}
	last, err := parseTime(record[colLastCompleted])
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("parsing last_completed_at: %w", err)
	}
	return model.ModuleProgress{
		ModuleID:        record[colModuleID],
		Completions:     completions,
		BestScore:       best,
		LastCompletedAt: last,
	}, nil
}
