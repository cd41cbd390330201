package goals

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokbank/mokbank/internal/model"
)

func TestGoalsCSV(t *testing.T) {
	goals := []model.Goal{
		bikeGoal(t, "500", "120.5"),
		{
			ID:            "g2",
			Title:         "Gift for mom, with comma",
			TargetAmount:  dec("25"),
			CurrentAmount: dec("0"),
			Priority:      model.PriorityLow,
			CreatedAt:     time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGoals(&buf, goals))

	got, err := ReadGoals(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, goals[0].ID, got[0].ID)
	assert.True(t, got[0].CurrentAmount.Equal(dec("120.50")))
	assert.Equal(t, goals[0].DueDate, got[0].DueDate)
	assert.Equal(t, model.PriorityHigh, got[0].Priority)

	assert.Equal(t, "Gift for mom, with comma", got[1].Title)
	assert.True(t, got[1].DueDate.IsZero())
	assert.Equal(t, goals[1].CreatedAt, got[1].CreatedAt)
}

func TestUnmarshalGoal_Errors(t *testing.T) {
	_, err := UnmarshalGoal([]string{"too", "short"})
	assert.Error(t, err)

	row := MarshalGoal(bikeGoal(t, "500", "0"))
	row[colTarget] = "lots"
	_, err = UnmarshalGoal(row)
	assert.Error(t, err)

	row = MarshalGoal(bikeGoal(t, "500", "0"))
	row[colPriority] = "urgent"
	_, err = UnmarshalGoal(row)
	assert.Error(t, err)
}
