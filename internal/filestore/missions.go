package filestore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mokbank/mokbank/internal/model"
)

const (
	missionNumFields = 5
	colMissionID     = 0
	colMissionTitle  = 1
	colReward        = 2
	colCompleted     = 3
	colCompletedAt   = 4
)

var missionHeader = []string{"mission_id", "title", "reward", "completed", "completed_at"}

// ReadMissions reads missions.csv.
func ReadMissions(r io.Reader) ([]model.Mission, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = missionNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading missions CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var missions []model.Mission
	for i, rec := range records[1:] {
		m, err := UnmarshalMission(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		missions = append(missions, m)
	}
	return missions, nil
}

// WriteMissions writes missions.csv including the header.
func WriteMissions(w io.Writer, missions []model.Mission) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(missionHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, m := range missions {
		if err := cw.Write(MarshalMission(m)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalMission converts a Mission to a CSV row.
func MarshalMission(m model.Mission) []string {
	row := make([]string, missionNumFields)
	row[colMissionID] = m.ID
	row[colMissionTitle] = m.Title
	row[colReward] = strconv.FormatInt(m.Reward, 10)
	row[colCompleted] = strconv.FormatBool(m.Completed)
	row[colCompletedAt] = formatTime(m.CompletedAt)
	return row
}

// UnmarshalMission converts a CSV row to a Mission.
func UnmarshalMission(record []string) (model.Mission, error) {
	if len(record) != missionNumFields {
		return model.Mission{}, fmt.Errorf("expected %d fields, got %d", missionNumFields, len(record))
	}
	reward, err := strconv.ParseInt(record[colReward], 10, 64)
	if err != nil {
		return model.Mission{}, fmt.Errorf("parsing reward %q: %w", record[colReward], err)
	}
	completed, err := strconv.ParseBool(record[colCompleted])
	if err != nil {
		return model.Mission{}, fmt.Errorf("parsing completed %q: %w", record[colCompleted], err)
	}
	at, err := parseTime(record[colCompletedAt])
	if err != nil {
		return model.Mission{}, fmt.Errorf("parsing completed_at: %w", err)
	}
	return model.Mission{
		ID:          record[colMissionID],
		Title:       record[colMissionTitle],
		Reward:      reward,
		Completed:   completed,
		CompletedAt: at,
	}, nil
}
