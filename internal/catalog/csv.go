package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mokbank/mokbank/internal/model"
)

const (
	numFields = 4
	colID     = 0
	colTitle  = 1
	colXP     = 2
	colPoints = 3
)

// ReadModules reads modules.csv.
func ReadModules(r io.Reader) ([]model.LearningModule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading modules CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var modules []model.LearningModule
	for i, rec := range records[1:] {
		m, err := UnmarshalModule(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// WriteModules writes modules.csv.
func WriteModules(w io.Writer, modules []model.LearningModule) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"module_id", "title", "xp_reward", "total_points"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, m := range modules {
		if err := cw.Write(MarshalModule(m)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalModule converts a LearningModule to a CSV row.
func MarshalModule(m model.LearningModule) []string {
	row := make([]string, numFields)
	row[colID] = m.ID
	row[colTitle] = m.Title
	row[colXP] = strconv.FormatInt(m.XPReward, 10)
	row[colPoints] = strconv.FormatInt(m.TotalPoints, 10)
	return row
}

// UnmarshalModule converts a CSV row to a LearningModule.
func UnmarshalModule(record []string) (model.LearningModule, error) {
	if len(record) != numFields {
		return model.LearningModule{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	xp, err := strconv.ParseInt(record[colXP], 10, 64)
	if err != nil {
		return model.LearningModule{}, fmt.Errorf("parsing xp_reward %q: %w", record[colXP], err)
	}
	points, err := strconv.ParseInt(record[colPoints], 10, 64)
	if err != nil {
		return model.LearningModule{}, fmt.Errorf("parsing total_points %q: %w", record[colPoints], err)
	}
	if points <= 0 {
		return model.LearningModule{}, fmt.Errorf("total_points must be positive, got %d", points)
	}

	return model.LearningModule{
		ID:          record[colID],
		Title:       record[colTitle],
		XPReward:    xp,
		TotalPoints: points,
	}, nil
}
