package service

import (
	"attendance-service/internal/models"
	"attendance-service/internal/report"
	"attendance-service/internal/risk"
	"attendance-service/internal/session"
	"attendance-service/pkg/response"
	"context"
	"fmt"
)

func (s *Service) snapshot(ctx context.Context) ([]models.Student, []models.Event, error) {
	students, err := s.store.Students(ctx)
	if err != nil {
		return nil, nil, err
	}

	events, err := s.store.Events(ctx)
	if err != nil {
		return nil, nil, err
	}

	return students, events, nil
}

func (s *Service) DailyReport(ctx context.Context, date string) ([]report.SectionSummary, error) {
	const op = "service.DailyReport"

	day, err := s.resolveDate(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	students, events, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return report.Daily(students, events, day), nil
}

// MonthlyReport builds the month matrix of a section. A blank month is the
// current one.
func (s *Service) MonthlyReport(ctx context.Context, sess session.Session, grade, section, month string) (*report.Matrix, error) {
	const op = "service.MonthlyReport"

	sec, err := s.resolveSection(sess, grade, section)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if month == "" {
		month = s.today().String()
	}

	m, err := models.ParseMonth(month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrValidation, err)
	}

	students, events, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	matrix := report.Monthly(students, events, sec, m)
	return &matrix, nil
}

func (s *Service) Overview(ctx context.Context, date string) (*report.Overview, error) {
	const op = "service.Overview"

	day, err := s.resolveDate(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	students, events, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	o := report.NewOverview(students, accounts, events, day)
	return &o, nil
}

func (s *Service) ClassToday(ctx context.Context, sess session.Session, grade, section, date string) (*report.ClassDay, error) {
	const op = "service.ClassToday"

	sec, err := s.resolveSection(sess, grade, section)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	day, err := s.resolveDate(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	students, events, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := report.Class(students, events, sec, day)
	return &c, nil
}

// CriticalStudents lists students at or above threshold absences. A
// non-positive threshold or a negative limit falls back to the configured
// value.
func (s *Service) CriticalStudents(ctx context.Context, threshold, limit int) ([]risk.Entry, error) {
	const op = "service.CriticalStudents"

	if threshold <= 0 {
		threshold = s.opts.RiskThreshold
	}
	if limit < 0 {
		limit = s.opts.RiskLimit
	}

	students, events, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return risk.Critical(students, events, threshold, limit), nil
}
