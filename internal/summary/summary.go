// Package summary condenses the roster and attendance log into the compact
// payload handed to the analysis model.
package summary

import (
	"encoding/json"

	"attendance-service/internal/models"
)

type Row struct {
	Name    string `json:"name"`
	Section string `json:"section"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Excused int    `json:"excused"`
}

// Build returns one row per roster student in roster order, skipping
// students with no present and no absent events.
func Build(students []models.Student, events []models.Event) []Row {
	type counts struct{ present, absent, excused int }

	byStudent := make(map[string]*counts)
	for _, e := range events {
		c, ok := byStudent[e.StudentID]
		if !ok {
			c = &counts{}
			byStudent[e.StudentID] = c
		}

		switch e.Status {
		case models.StatusPresent:
			c.present++
		case models.StatusAbsent:
			c.absent++
		case models.StatusExcused:
			c.excused++
		}
	}

	rows := make([]Row, 0)
	for _, s := range students {
		c, ok := byStudent[s.ID]
		if !ok || (c.present == 0 && c.absent == 0) {
			continue
		}

		rows = append(rows, Row{
			Name:    s.FullName,
			Section: s.ClassSection().Key(),
			Present: c.present,
			Absent:  c.absent,
			Excused: c.excused,
		})
	}

	return rows
}

// Encode serialises rows as compact JSON. Equal input gives equal bytes.
func Encode(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}

	return json.Marshal(rows)
}
