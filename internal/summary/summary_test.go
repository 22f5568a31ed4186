package summary

import (
	"testing"

	"attendance-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	students := []models.Student{
		{ID: "s1", FullName: "Ana", Grade: "1", Section: "A"},
		{ID: "s2", FullName: "Bea", Grade: "1", Section: "A"},
		{ID: "s3", FullName: "Cal", Grade: "2", Section: "B"},
		{ID: "s4", FullName: "Dan", Grade: "2", Section: "B"},
	}
	events := []models.Event{
		models.NewEvent("s1", "2024-03-01", models.StatusPresent),
		models.NewEvent("s1", "2024-03-02", models.StatusExcused),
		models.NewEvent("s2", "2024-03-01", models.StatusAbsent),
		models.NewEvent("s3", "2024-03-01", models.StatusExcused),
		models.NewEvent("ghost", "2024-03-01", models.StatusAbsent),
	}

	rows := Build(students, events)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Name: "Ana", Section: "1-A", Present: 1, Excused: 1}, rows[0])
	assert.Equal(t, Row{Name: "Bea", Section: "1-A", Absent: 1}, rows[1])
}

func TestEncodeIsStable(t *testing.T) {
	rows := []Row{{Name: "Ana", Section: "1-A", Present: 2, Absent: 1}}

	a, err := Encode(rows)
	require.NoError(t, err)
	b, err := Encode(rows)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, `[{"name":"Ana","section":"1-A","present":2,"absent":1,"excused":0}]`, string(a))
}

func TestEncodeEmpty(t *testing.T) {
	out, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	out, err = Encode(Build(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}
