package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

const csvSeparator = ';'

func WriteDailyCSV(w io.Writer, rows []SectionSummary) error {
	cw := csv.NewWriter(w)
	cw.Comma = csvSeparator

	if err := cw.Write([]string{"section", "enrollment", "present", "absent", "excused", "achievement_%"}); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.Section,
			strconv.Itoa(r.Enrollment),
			strconv.Itoa(r.Present),
			strconv.Itoa(r.Absent),
			strconv.Itoa(r.Excused),
			strconv.Itoa(r.AchievementRate),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMonthlyCSV writes one row per student with a column per school day.
// Weekend days are left out.
func WriteMonthlyCSV(w io.Writer, m Matrix) error {
	cw := csv.NewWriter(w)
	cw.Comma = csvSeparator

	header := []string{"student"}
	var schoolDays []Day
	for _, d := range m.Days {
		if d.Weekend {
			continue
		}
		schoolDays = append(schoolDays, d)
		header = append(header, d.Label+strconv.Itoa(d.Day))
	}
	header = append(header, "total_present", "total_absent", "total_excused")

	if err := cw.Write(header); err != nil {
		return err
	}

	for _, s := range m.Students {
		record := make([]string, 0, len(header))
		record = append(record, s.FullName)

		for _, d := range schoolDays {
			st, _ := m.Status(s.ID, d.Day)
			record = append(record, st.Short())
		}

		t := m.StudentTotals[s.ID]
		record = append(record,
			strconv.Itoa(t.Present),
			strconv.Itoa(t.Absent),
			strconv.Itoa(t.Excused),
		)

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
