package service

import (
	"attendance-service/api"
	"attendance-service/internal/access"
	"attendance-service/internal/attendance"
	"attendance-service/internal/models"
	"attendance-service/internal/session"
	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"
	"context"
	"fmt"
	"log/slog"
)

// resolveDate parses raw, or returns today when raw is blank.
func (s *Service) resolveDate(raw string) (models.Date, error) {
	if raw == "" {
		return s.today(), nil
	}

	d, err := models.ParseDate(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", response.ErrValidation, err)
	}

	return d, nil
}

// resolveSection builds the section to read or mark. A teacher who names no
// section gets their assigned one. The actor must be allowed to access it.
func (s *Service) resolveSection(sess session.Session, grade, section string) (models.Section, error) {
	var sec models.Section

	if grade == "" && section == "" {
		assigned, ok := sess.Account.AssignedSection()
		if !ok {
			return models.Section{}, fmt.Errorf("%w: grade and section are required", response.ErrValidation)
		}
		sec = assigned
	} else {
		parsed, err := models.NewSection(grade, section)
		if err != nil {
			return models.Section{}, fmt.Errorf("%w: %w", response.ErrValidation, err)
		}
		sec = parsed
	}

	if !access.CanAccessSection(sess.Account, sec) {
		return models.Section{}, response.ErrForbidden
	}

	return sec, nil
}

// DayMap loads the stored register of a section for one day.
func (s *Service) DayMap(ctx context.Context, sess session.Session, grade, section, date string) (*api.DayMapResponse, error) {
	const op = "service.DayMap"

	sec, err := s.resolveSection(sess, grade, section)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	day, err := s.resolveDate(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	students, err := s.store.Students(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events, err := s.store.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	roster := models.InSection(students, sec)
	m := attendance.LoadDayMap(students, events, sec, day)

	return &api.DayMapResponse{
		Section: sec.Key(),
		Date:    day.String(),
		Roster:  roster,
		Marks:   m,
		Pending: len(roster) - len(m),
	}, nil
}

// Toggle edits a draft register. Nothing is stored.
func (s *Service) Toggle(req *api.ToggleRequest) (*api.ToggleResponse, error) {
	const op = "service.Toggle"

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrValidation, models.ErrInvalidStatus)
	}

	m := attendance.Toggle(attendance.DayMap(req.Marks), req.StudentID, req.Status)

	return &api.ToggleResponse{Marks: m}, nil
}

func commitLockKey(sec models.Section, date models.Date) string {
	return fmt.Sprintf("attendance:%s:%s", sec.Key(), date)
}

// Commit writes a section's register for one day. Committing the same
// register twice leaves the same events stored.
func (s *Service) Commit(ctx context.Context, sess session.Session, req *api.CommitRequest) (*api.CommitResponse, error) {
	const op = "service.Commit"

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sec, err := s.resolveSection(sess, req.Grade, req.Section)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	day, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key := commitLockKey(sec, day)

	locked, err := s.locker.Lock(ctx, key, s.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %s: %w", op, key, response.ErrLocked)
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key); err != nil {
			s.log.Error("failed to release commit lock", slog.String("op", op), slog.String("key", key), sl.Err(err))
		}
	}()

	students, err := s.store.Students(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := attendance.DayMap(req.Marks)

	events, err := attendance.Plan(students, sec, day, m, s.opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrValidation, err)
	}

	if err := s.store.SaveEvents(ctx, events); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	roster := models.InSection(students, sec)
	ignored := attendance.Unknown(students, sec, m)

	unmarked := 0
	for _, st := range roster {
		if _, ok := m[st.ID]; !ok {
			unmarked++
		}
	}

	s.log.Info("attendance committed",
		slog.String("op", op),
		slog.String("section", sec.Key()),
		slog.String("date", day.String()),
		slog.Int("written", len(events)),
		slog.Int("ignored", len(ignored)),
	)

	return &api.CommitResponse{
		Section:  sec.Key(),
		Date:     day.String(),
		Written:  len(events),
		Unmarked: unmarked,
		Policy:   s.opts.Policy.String(),
		Ignored:  ignored,
	}, nil
}
