package service

import (
	"attendance-service/api"
	"attendance-service/internal/models"
	"attendance-service/internal/session"
	"attendance-service/pkg/response"
	"context"
	"fmt"
	"strings"
)

// Placeholders written by a bulk import for blank fields.
const (
	importNoName  = "NO NAME"
	importGrade   = "1"
	importSection = "A"
)

// ListStudents returns the roster in roster order. Teachers only see their
// assigned section; a non-empty grade and section narrow an admin's view.
func (s *Service) ListStudents(ctx context.Context, sess session.Session, grade, section string) ([]models.Student, error) {
	const op = "service.ListStudents"

	students, err := s.store.Students(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !sess.IsAdmin() || grade != "" || section != "" {
		sec, err := s.resolveSection(sess, grade, section)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		students = models.InSection(students, sec)
	}

	return students, nil
}

func (s *Service) SaveStudent(ctx context.Context, req *api.StudentRequest) (*models.Student, error) {
	const op = "service.SaveStudent"

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	student := models.Student{
		ID:            strings.TrimSpace(req.ID),
		FullName:      strings.TrimSpace(req.FullName),
		SchoolID:      strings.TrimSpace(req.SchoolID),
		NationalID:    strings.TrimSpace(req.NationalID),
		Sex:           models.Sex(req.Sex),
		Grade:         strings.TrimSpace(req.Grade),
		Section:       strings.ToUpper(strings.TrimSpace(req.Section)),
		Shift:         models.Shift(req.Shift),
		GuardianName:  strings.TrimSpace(req.GuardianName),
		GuardianPhone: strings.TrimSpace(req.GuardianPhone),
		Address:       strings.TrimSpace(req.Address),
	}
	if student.ID == "" {
		student.ID = s.opts.NewID()
	}

	students, err := s.store.Students(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, st := range students {
		if st.ID != student.ID && st.SchoolID == student.SchoolID {
			return nil, fmt.Errorf("%s: school id %q: %w", op, student.SchoolID, response.ErrConflict)
		}
	}

	if err := s.store.SaveStudent(ctx, student); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &student, nil
}

// DeleteStudent removes the student. Their attendance events stay in the
// log unless cascading deletes are enabled.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	const op = "service.DeleteStudent"

	if err := s.store.DeleteStudent(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.opts.CascadeDelete {
		if err := s.store.DeleteStudentEvents(ctx, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	s.log.Info("student deleted",
		"op", op,
		"student_id", id,
		"cascade", s.opts.CascadeDelete,
	)

	return nil
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}

	return v
}

func importSex(v string) models.Sex {
	if strings.EqualFold(strings.TrimSpace(v), string(models.SexFemale)) {
		return models.SexFemale
	}

	return models.SexMale
}

func importShift(v string) models.Shift {
	if strings.EqualFold(strings.TrimSpace(v), string(models.ShiftAfternoon)) {
		return models.ShiftAfternoon
	}

	return models.ShiftMorning
}

// ImportStudents merges rows into the roster by school id. Rows without a
// school id are skipped and reported by index.
func (s *Service) ImportStudents(ctx context.Context, rows []api.StudentImportRow) (*api.ImportResult, error) {
	const op = "service.ImportStudents"

	result := &api.ImportResult{Received: len(rows), Students: []string{}}

	seen := make(map[string]int)
	students := make([]models.Student, 0, len(rows))

	for i, row := range rows {
		schoolID := strings.TrimSpace(row.SchoolID)
		if schoolID == "" {
			result.Skipped = append(result.Skipped, i)
			continue
		}

		st := models.Student{
			ID:            s.opts.NewID(),
			FullName:      orDefault(row.FullName, importNoName),
			SchoolID:      schoolID,
			NationalID:    strings.TrimSpace(row.NationalID),
			Sex:           importSex(row.Sex),
			Grade:         orDefault(row.Grade, importGrade),
			Section:       strings.ToUpper(orDefault(row.Section, importSection)),
			Shift:         importShift(row.Shift),
			GuardianName:  strings.TrimSpace(row.GuardianName),
			GuardianPhone: strings.TrimSpace(row.GuardianPhone),
			Address:       strings.TrimSpace(row.Address),
		}

		// a repeated school id inside one batch keeps the last row
		if at, ok := seen[schoolID]; ok {
			st.ID = students[at].ID
			students[at] = st
			continue
		}

		seen[schoolID] = len(students)
		students = append(students, st)
	}

	if len(students) == 0 {
		return result, nil
	}

	if err := s.store.ImportStudents(ctx, students); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stored, err := s.store.Students(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	idBySchool := make(map[string]string, len(stored))
	for _, st := range stored {
		idBySchool[st.SchoolID] = st.ID
	}

	for _, st := range students {
		result.Students = append(result.Students, idBySchool[st.SchoolID])
	}
	result.Imported = len(students)

	s.log.Info("students imported",
		"op", op,
		"received", result.Received,
		"imported", result.Imported,
		"skipped", len(result.Skipped),
	)

	return result, nil
}
