package goals

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mokbank/mokbank/internal/model"
)

const (
	numFields    = 8
	dateFormat   = "2006-01-02"
	colID        = 0
	colTitle     = 1
	colTarget    = 2
	colCurrent   = 3
	colCategory  = 4
	colDueDate   = 5
	colPriority  = 6
	colCreatedAt = 7
)

// Header is the CSV header for goals.csv.
var Header = []string{"goal_id", "title", "target_amount", "current_amount", "category", "due_date", "priority", "created_at"}

// ReadGoals reads goals.csv.
func ReadGoals(r io.Reader) ([]model.Goal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading goals CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var goals []model.Goal
	for i, rec := range records[1:] {
		g, err := UnmarshalGoal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// WriteGoals writes goals.csv including the header.
func WriteGoals(w io.Writer, goals []model.Goal) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, g := range goals {
		if err := cw.Write(MarshalGoal(g)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalGoal converts a Goal to a CSV row.
func MarshalGoal(g model.Goal) []string {
	row := make([]string, numFields)
	row[colID] = g.ID
	row[colTitle] = g.Title
	row[colTarget] = g.TargetAmount.StringFixed(2)
	row[colCurrent] = g.CurrentAmount.StringFixed(2)
	row[colCategory] = g.Category
	if !g.DueDate.IsZero() {
		row[colDueDate] = g.DueDate.Format(dateFormat)
	}
	row[colPriority] = string(g.Priority)
	row[colCreatedAt] = g.CreatedAt.UTC().Format(time.RFC3339)
	return row
}

// UnmarshalGoal converts a CSV row to a Goal.
func UnmarshalGoal(record []string) (model.Goal, error) {
	if len(record) != numFields {
		return model.Goal{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	target, err := decimal.NewFromString(record[colTarget])
	if err != nil {
		return model.Goal{}, fmt.Errorf("parsing target_amount %q: %w", record[colTarget], err)
	}
	current, err := decimal.NewFromString(record[colCurrent])
	if err != nil {
		return model.Goal{}, fmt.Errorf("parsing current_amount %q: %w", record[colCurrent], err)
	}

	var due time.Time
	if record[colDueDate] != "" {
		due, err = time.Parse(dateFormat, record[colDueDate])
		if err != nil {
			return model.Goal{}, fmt.Errorf("parsing due_date %q: %w", record[colDueDate], err)
		}
	}

	priority, err := model.ParsePriority(record[colPriority])
	if err != nil {
		return model.Goal{}, err
	}

	created, err := time.Parse(time.RFC3339, record[colCreatedAt])
	if err != nil {
		return model.Goal{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}

	return model.Goal{
		ID:            record[colID],
		Title:         record[colTitle],
		TargetAmount:  target,
		CurrentAmount: current,
		Category:      record[colCategory],
		DueDate:       due,
		Priority:      priority,
		CreatedAt:     created,
	}, nil
}
