package report

import (
	"sort"
	"strings"
	"time"

	"attendance-service/internal/models"
)

var dayLabels = [7]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

type Day struct {
	Day     int    `json:"day"`
	Label   string `json:"label"`
	Weekend bool   `json:"weekend"`
}

// Matrix is one section's attendance for a calendar month.
type Matrix struct {
	Section       string                           `json:"section"`
	Month         string                           `json:"month"`
	Days          []Day                            `json:"days"`
	Students      []models.Student                 `json:"students"`
	Cells         map[string]map[int]models.Status `json:"cells"`
	StudentTotals map[string]Totals                `json:"student_totals"`
	DayTotals     map[int]Totals                   `json:"day_totals"`
}

// Status returns the cell for studentID on day, if any.
func (m Matrix) Status(studentID string, day int) (models.Status, bool) {
	row, ok := m.Cells[studentID]
	if !ok {
		return "", false
	}

	st, ok := row[day]
	return st, ok
}

func Days(month models.Month) []Day {
	n := month.DaysIn()
	days := make([]Day, 0, n)
	for d := 1; d <= n; d++ {
		wd := month.Day(d).Weekday()
		days = append(days, Day{
			Day:     d,
			Label:   dayLabels[wd],
			Weekend: wd == time.Saturday || wd == time.Sunday,
		})
	}

	return days
}

// SortByName orders students by full name, then id.
func SortByName(students []models.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		if c := strings.Compare(students[i].FullName, students[j].FullName); c != 0 {
			return c < 0
		}
		return students[i].ID < students[j].ID
	})
}

// Monthly builds the month matrix for sec. Totals are taken from the cells.
func Monthly(students []models.Student, events []models.Event, sec models.Section, month models.Month) Matrix {
	roster := models.InSection(students, sec)
	SortByName(roster)

	m := Matrix{
		Section:       sec.Key(),
		Month:         month.String(),
		Days:          Days(month),
		Students:      roster,
		Cells:         make(map[string]map[int]models.Status, len(roster)),
		StudentTotals: make(map[string]Totals, len(roster)),
		DayTotals:     make(map[int]Totals),
	}

	ids := make(map[string]struct{}, len(roster))
	for _, s := range roster {
		ids[s.ID] = struct{}{}
		m.Cells[s.ID] = make(map[int]models.Status)
	}

	for _, e := range events {
		if _, ok := ids[e.StudentID]; !ok {
			continue
		}

		day, ok := month.DayOf(e.Date)
		if !ok {
			continue
		}

		m.Cells[e.StudentID][day] = e.Status
	}

	for id, row := range m.Cells {
		var st Totals
		for day, status := range row {
			st.Add(status)

			dt := m.DayTotals[day]
			dt.Add(status)
			m.DayTotals[day] = dt
		}
		m.StudentTotals[id] = st
	}

	return m
}
