package report

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"attendance-service/internal/models"
)

type GradeCount struct {
	Grade  string `json:"grade"`
	Male   int    `json:"male"`
	Female int    `json:"female"`
}

// Overview is the school-wide dashboard for one day.
type Overview struct {
	Date           string       `json:"date"`
	Students       int          `json:"students"`
	Male           int          `json:"male"`
	Female         int          `json:"female"`
	Teachers       int          `json:"teachers"`
	Guardians      int          `json:"guardians"`
	PresentToday   int          `json:"present_today"`
	ExcusedToday   int          `json:"excused_today"`
	AttendanceRate int          `json:"attendance_rate"`
	MorningShift   int          `json:"morning_shift"`
	AfternoonShift int          `json:"afternoon_shift"`
	Grades         []GradeCount `json:"grades"`
}

func NewOverview(students []models.Student, accounts []models.Account, events []models.Event, date models.Date) Overview {
	o := Overview{Date: date.String(), Students: len(students)}

	guardians := make(map[string]struct{})
	grades := make(map[string]*GradeCount)
	enrolled := make(map[string]struct{}, len(students))

	for _, s := range students {
		enrolled[s.ID] = struct{}{}

		g, ok := grades[s.Grade]
		if !ok {
			g = &GradeCount{Grade: s.Grade}
			grades[s.Grade] = g
		}

		switch s.Sex {
		case models.SexMale:
			o.Male++
			g.Male++
		case models.SexFemale:
			o.Female++
			g.Female++
		}

		switch s.Shift {
		case models.ShiftMorning:
			o.MorningShift++
		case models.ShiftAfternoon:
			o.AfternoonShift++
		}

		name := strings.ToUpper(strings.TrimSpace(s.GuardianName))
		if utf8.RuneCountInString(name) > 2 {
			guardians[name] = struct{}{}
		}
	}
	o.Guardians = len(guardians)

	for _, a := range accounts {
		if a.Role == models.RoleTeacher {
			o.Teachers++
		}
	}

	for _, e := range events {
		if e.Date != date {
			continue
		}
		if _, ok := enrolled[e.StudentID]; !ok {
			continue
		}

		switch e.Status {
		case models.StatusPresent:
			o.PresentToday++
		case models.StatusExcused:
			o.ExcusedToday++
		}
	}
	o.AttendanceRate = Rate(o.PresentToday, o.Students)

	o.Grades = make([]GradeCount, 0, len(grades))
	for _, g := range grades {
		o.Grades = append(o.Grades, *g)
	}
	sort.Slice(o.Grades, func(i, j int) bool {
		return gradeLess(o.Grades[i].Grade, o.Grades[j].Grade)
	})

	return o
}

// gradeLess orders numeric grades numerically and the rest lexically after them.
func gradeLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)

	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
