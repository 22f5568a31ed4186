// Package risk flags students with repeated unexcused absences.
package risk

import (
	"sort"

	"attendance-service/internal/models"
)

const (
	DefaultThreshold = 3
	DefaultLimit     = 5
)

type Entry struct {
	Student  models.Student `json:"student"`
	Absences int            `json:"absences"`
}

// Critical returns roster students with at least threshold unexcused
// absences, most absences first, ties by full name then id. A positive
// limit caps the result. Excused absences never count.
func Critical(students []models.Student, events []models.Event, threshold, limit int) []Entry {
	absences := make(map[string]int)
	for _, e := range events {
		switch e.Status {
		case models.StatusAbsent:
			absences[e.StudentID]++
		case models.StatusPresent, models.StatusExcused:
		}
	}

	out := make([]Entry, 0)
	for _, s := range students {
		n := absences[s.ID]
		if n == 0 || n < threshold {
			continue
		}
		out = append(out, Entry{Student: s, Absences: n})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Absences != b.Absences {
			return a.Absences > b.Absences
		}
		if a.Student.FullName != b.Student.FullName {
			return a.Student.FullName < b.Student.FullName
		}
		return a.Student.ID < b.Student.ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}
