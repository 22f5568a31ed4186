// Package report aggregates the attendance log into daily and monthly views.
package report

import (
	"sort"

	"attendance-service/internal/models"
)

type SectionSummary struct {
	Section         string `json:"section"`
	Enrollment      int    `json:"enrollment"`
	Present         int    `json:"present"`
	Absent          int    `json:"absent"`
	Excused         int    `json:"excused"`
	AchievementRate int    `json:"achievement_rate"`
}

// Rate is part/total as a whole percentage rounded half up. It is 0 when
// total is not positive.
func Rate(part, total int) int {
	if total <= 0 {
		return 0
	}

	return (200*part + total) / (2 * total)
}

// Totals counts statuses.
type Totals struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Excused int `json:"excused"`
}

func (t *Totals) Add(s models.Status) {
	switch s {
	case models.StatusPresent:
		t.Present++
	case models.StatusAbsent:
		t.Absent++
	case models.StatusExcused:
		t.Excused++
	}
}

// Sections returns the distinct class sections of the roster sorted by key.
func Sections(students []models.Student) []models.Section {
	seen := make(map[string]models.Section)
	for _, s := range students {
		sec := s.ClassSection()
		seen[sec.Key()] = sec
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.Section, 0, len(keys))
	for _, k := range keys {
		out = append(out, seen[k])
	}

	return out
}

// Daily rolls up date's events per class section of the roster.
func Daily(students []models.Student, events []models.Event, date models.Date) []SectionSummary {
	sectionOf := make(map[string]string, len(students))
	enrollment := make(map[string]int)
	for _, s := range students {
		key := s.ClassSection().Key()
		sectionOf[s.ID] = key
		enrollment[key]++
	}

	totals := make(map[string]*Totals)
	for _, e := range events {
		if e.Date != date {
			continue
		}

		key, ok := sectionOf[e.StudentID]
		if !ok {
			continue
		}

		t, ok := totals[key]
		if !ok {
			t = &Totals{}
			totals[key] = t
		}
		t.Add(e.Status)
	}

	sections := Sections(students)
	out := make([]SectionSummary, 0, len(sections))
	for _, sec := range sections {
		key := sec.Key()

		var t Totals
		if got, ok := totals[key]; ok {
			t = *got
		}

		out = append(out, summarize(key, enrollment[key], t))
	}

	return out
}

func summarize(section string, enrollment int, t Totals) SectionSummary {
	return SectionSummary{
		Section:         section,
		Enrollment:      enrollment,
		Present:         t.Present,
		Absent:          t.Absent,
		Excused:         t.Excused,
		AchievementRate: Rate(t.Present, enrollment),
	}
}

// ClassDay is a teacher's view of their section on one day.
type ClassDay struct {
	Section    string `json:"section"`
	Date       string `json:"date"`
	Enrollment int    `json:"enrollment"`
	Marked     int    `json:"marked"`
	Present    int    `json:"present"`
	Rate       int    `json:"rate"`
}

func Class(students []models.Student, events []models.Event, sec models.Section, date models.Date) ClassDay {
	roster := models.InSection(students, sec)
	ids := make(map[string]struct{}, len(roster))
	for _, s := range roster {
		ids[s.ID] = struct{}{}
	}

	day := ClassDay{Section: sec.Key(), Date: date.String(), Enrollment: len(roster)}
	for _, e := range events {
		if e.Date != date {
			continue
		}
		if _, ok := ids[e.StudentID]; !ok {
			continue
		}

		day.Marked++
		if e.Status == models.StatusPresent {
			day.Present++
		}
	}

	day.Rate = Rate(day.Present, day.Enrollment)
	return day
}
