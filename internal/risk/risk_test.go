package risk

import (
	"testing"

	"attendance-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func absences(id string, n int) []models.Event {
	out := make([]models.Event, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.NewEvent(id, models.Date("2024-03-0"+string(rune('0'+i))), models.StatusAbsent))
	}

	return out
}

func TestCritical(t *testing.T) {
	students := []models.Student{
		{ID: "s1", FullName: "Cara"},
		{ID: "s2", FullName: "Abel"},
		{ID: "s3", FullName: "Abel"},
		{ID: "s4", FullName: "Dion"},
	}

	var events []models.Event
	events = append(events, absences("s1", 5)...)
	events = append(events, absences("s3", 3)...)
	events = append(events, absences("s2", 3)...)
	events = append(events, absences("s4", 2)...)
	events = append(events, absences("orphan", 9)...)
	events = append(events,
		models.NewEvent("s4", "2024-03-05", models.StatusExcused),
		models.NewEvent("s4", "2024-03-06", models.StatusExcused),
	)

	got := Critical(students, events, DefaultThreshold, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "s1", got[0].Student.ID)
	assert.Equal(t, 5, got[0].Absences)
	assert.Equal(t, "s2", got[1].Student.ID)
	assert.Equal(t, "s3", got[2].Student.ID)

	limited := Critical(students, events, DefaultThreshold, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, got[:2], limited)
}

func TestCriticalExcusedNeverCounts(t *testing.T) {
	students := []models.Student{{ID: "s1", FullName: "Ana"}}
	events := []models.Event{
		models.NewEvent("s1", "2024-03-01", models.StatusExcused),
		models.NewEvent("s1", "2024-03-02", models.StatusExcused),
		models.NewEvent("s1", "2024-03-03", models.StatusExcused),
	}

	assert.Empty(t, Critical(students, events, 1, 0))
}

func TestCriticalThresholdOne(t *testing.T) {
	students := []models.Student{{ID: "s1", FullName: "S1"}, {ID: "s2", FullName: "S2"}}
	events := []models.Event{
		models.NewEvent("s1", "2024-03-01", models.StatusPresent),
		models.NewEvent("s2", "2024-03-01", models.StatusAbsent),
	}

	got := Critical(students, events, 1, DefaultLimit)
	require.Len(t, got, 1)
	assert.Equal(t, "s2", got[0].Student.ID)
}
