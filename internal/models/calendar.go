package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Section is the (grade, section) pair students are grouped by.
type Section struct {
	Grade   string `json:"grade"`
	Section string `json:"section"`
}

func (s Section) Key() string {
	return s.Grade + "-" + s.Section
}

func (s Section) String() string {
	return s.Key()
}

// ParseSection reads a "grade-section" key.
func ParseSection(key string) (Section, error) {
	grade, section, ok := strings.Cut(strings.TrimSpace(key), "-")
	if !ok || grade == "" || section == "" {
		return Section{}, fmt.Errorf("%w: %q", ErrInvalidSection, key)
	}

	return Section{Grade: grade, Section: section}, nil
}

// NewSection builds a section from separate grade and section values.
func NewSection(grade, section string) (Section, error) {
	grade, section = strings.TrimSpace(grade), strings.TrimSpace(section)
	if grade == "" || section == "" {
		return Section{}, fmt.Errorf("%w: grade and section are required", ErrInvalidSection)
	}

	return Section{Grade: grade, Section: section}, nil
}

// Date is a calendar day without time of day, stored as YYYY-MM-DD.
type Date string

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return Date(t.Format(DateLayout)), nil
}

func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func (d Date) Time() (time.Time, bool) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func (d Date) String() string {
	return string(d)
}

// Month is a calendar month of a given year.
type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(MonthLayout) {
		// a full date selects its month
		s = s[:len(MonthLayout)]
	}

	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) DaysIn() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Month) Day(day int) time.Time {
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC)
}

// DayOf returns the day of month of d when d falls inside m.
func (m Month) DayOf(d Date) (int, bool) {
	t, ok := d.Time()
	if !ok || t.Year() != m.Year || t.Month() != m.Month {
		return 0, false
	}

	return t.Day(), true
}
