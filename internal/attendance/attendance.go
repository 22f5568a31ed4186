// Package attendance reconciles one class's daily register with the event log.
package attendance

import (
	"fmt"
	"sort"
	"strings"

	"attendance-service/internal/models"
)

// DayMap holds the marked status of each student for one day. A student
// without an entry is unmarked.
type DayMap map[string]models.Status

func (m DayMap) Clone() DayMap {
	out := make(DayMap, len(m))
	for id, st := range m {
		out[id] = st
	}

	return out
}

// Policy decides what a commit writes for roster students left unmarked.
type Policy struct {
	// DefaultUnmarked is written for unmarked students. Empty leaves their
	// stored event, if any, untouched.
	DefaultUnmarked models.Status
}

const PolicyLeaveUnset = "leave_unset"

// ParsePolicy reads "leave_unset" (or empty) or a status name.
func ParsePolicy(s string) (Policy, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == PolicyLeaveUnset {
		return Policy{}, nil
	}

	st, err := models.ParseStatus(s)
	if err != nil {
		return Policy{}, fmt.Errorf("attendance.ParsePolicy: %w", err)
	}

	return Policy{DefaultUnmarked: st}, nil
}

func (p Policy) String() string {
	if p.DefaultUnmarked == "" {
		return PolicyLeaveUnset
	}

	return string(p.DefaultUnmarked)
}

// LoadDayMap returns the stored statuses on date for the students of sec.
// Students with no event that day are absent from the map.
func LoadDayMap(students []models.Student, events []models.Event, sec models.Section, date models.Date) DayMap {
	inSection := make(map[string]struct{})
	for _, s := range models.InSection(students, sec) {
		inSection[s.ID] = struct{}{}
	}

	m := make(DayMap)
	for _, e := range events {
		if e.Date != date {
			continue
		}
		if _, ok := inSection[e.StudentID]; !ok {
			continue
		}

		m[e.StudentID] = e.Status
	}

	return m
}

// Toggle returns a copy of m where studentID is set to status, or cleared
// when it already had that status.
func Toggle(m DayMap, studentID string, status models.Status) DayMap {
	out := m.Clone()
	if current, ok := out[studentID]; ok && current == status {
		delete(out, studentID)
		return out
	}

	out[studentID] = status
	return out
}

// Plan lists the events a commit of m writes for sec on date, in roster
// order. Marks for students outside the section are dropped.
func Plan(students []models.Student, sec models.Section, date models.Date, m DayMap, policy Policy) ([]models.Event, error) {
	const op = "attendance.Plan"

	if policy.DefaultUnmarked != "" && !policy.DefaultUnmarked.Valid() {
		return nil, fmt.Errorf("%s: default: %w", op, models.ErrInvalidStatus)
	}

	roster := models.InSection(students, sec)
	events := make([]models.Event, 0, len(roster))

	for _, s := range roster {
		status, marked := m[s.ID]
		if !marked {
			if policy.DefaultUnmarked == "" {
				continue
			}
			status = policy.DefaultUnmarked
		}

		if !status.Valid() {
			return nil, fmt.Errorf("%s: student %s: %w", op, s.ID, models.ErrInvalidStatus)
		}

		events = append(events, models.NewEvent(s.ID, date, status))
	}

	return events, nil
}

// Unknown returns the marked student ids that are not in sec, sorted.
func Unknown(students []models.Student, sec models.Section, m DayMap) []string {
	inSection := make(map[string]struct{})
	for _, s := range models.InSection(students, sec) {
		inSection[s.ID] = struct{}{}
	}

	var out []string
	for id := range m {
		if _, ok := inSection[id]; !ok {
			out = append(out, id)
		}
	}

	sort.Strings(out)
	return out
}
