package postgres

import (
	"attendance-service/internal/models"
	"attendance-service/pkg/response"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	seq        BIGSERIAL,
	id         TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	login      TEXT NOT NULL,
	secret     TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL,
	grade      TEXT NOT NULL DEFAULT '',
	section    TEXT NOT NULL DEFAULT '',
	active     BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS students (
	seq            BIGSERIAL,
	id             TEXT PRIMARY KEY,
	full_name      TEXT NOT NULL,
	school_id      TEXT NOT NULL UNIQUE,
	national_id    TEXT NOT NULL DEFAULT '',
	sex            TEXT NOT NULL DEFAULT 'M',
	grade          TEXT NOT NULL,
	section        TEXT NOT NULL,
	shift          TEXT NOT NULL DEFAULT 'M',
	guardian_name  TEXT NOT NULL DEFAULT '',
	guardian_phone TEXT NOT NULL DEFAULT '',
	address        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS attendance (
	seq        BIGSERIAL,
	id         TEXT NOT NULL,
	student_id TEXT NOT NULL,
	date       DATE NOT NULL,
	status     TEXT NOT NULL,
	UNIQUE (student_id, date)
);
`

// Init creates the tables and seeds the admin account.
func (s *Storage) Init(ctx context.Context) error {
	const op = "storage.postgres.Init"

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%s: schema: %w", op, err)
	}

	admin := models.SeedAdmin()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, first_name, last_name, login, secret, role, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		admin.ID, admin.FirstName, admin.LastName, admin.Login, admin.Secret, string(admin.Role), admin.Active,
	)
	if err != nil {
		return fmt.Errorf("%s: seed: %w", op, err)
	}

	return nil
}

// #### accounts ####

func (s *Storage) Accounts(ctx context.Context) ([]models.Account, error) {
	const op = "storage.postgres.Accounts"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, login, secret, role, grade, section, active
		FROM accounts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var a models.Account
		var role string

		err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Login, &a.Secret, &role, &a.Grade, &a.Section, &a.Active)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		a.Role = models.Role(role)
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return accounts, nil
}

func (s *Storage) SaveAccount(ctx context.Context, a models.Account) error {
	const op = "storage.postgres.SaveAccount"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, first_name, last_name, login, secret, role, grade, section, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE
		SET first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			login = EXCLUDED.login,
			secret = COALESCE(NULLIF(EXCLUDED.secret, ''), accounts.secret),
			role = EXCLUDED.role,
			grade = EXCLUDED.grade,
			section = EXCLUDED.section,
			active = EXCLUDED.active`,
		a.ID, a.FirstName, a.LastName, a.Login, a.Secret, string(a.Role), a.Grade, a.Section, a.Active,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteAccount"

	if _, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id=$1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### students ####

const studentColumns = `id, full_name, school_id, national_id, sex, grade, section, shift, guardian_name, guardian_phone, address`

func studentArgs(st models.Student) []any {
	return []any{
		st.ID, st.FullName, st.SchoolID, st.NationalID, string(st.Sex), st.Grade, st.Section,
		string(st.Shift), st.GuardianName, st.GuardianPhone, st.Address,
	}
}

func (s *Storage) Students(ctx context.Context) ([]models.Student, error) {
	const op = "storage.postgres.Students"

	rows, err := s.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	students := make([]models.Student, 0)
	for rows.Next() {
		var st models.Student
		var sex, shift string

		err := rows.Scan(
			&st.ID,
			&st.FullName,
			&st.SchoolID,
			&st.NationalID,
			&sex,
			&st.Grade,
			&st.Section,
			&shift,
			&st.GuardianName,
			&st.GuardianPhone,
			&st.Address,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		st.Sex = models.Sex(sex)
		st.Shift = models.Shift(shift)
		students = append(students, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return students, nil
}

func (s *Storage) SaveStudent(ctx context.Context, st models.Student) error {
	const op = "storage.postgres.SaveStudent"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (`+studentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id)
		DO UPDATE
		SET full_name = EXCLUDED.full_name,
			school_id = EXCLUDED.school_id,
			national_id = EXCLUDED.national_id,
			sex = EXCLUDED.sex,
			grade = EXCLUDED.grade,
			section = EXCLUDED.section,
			shift = EXCLUDED.shift,
			guardian_name = EXCLUDED.guardian_name,
			guardian_phone = EXCLUDED.guardian_phone,
			address = EXCLUDED.address`,
		studentArgs(st)...,
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteStudent(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteStudent"

	if _, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id=$1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ImportStudents merges by school id. A matching row keeps its id and
// position, every other field is overwritten.
func (s *Storage) ImportStudents(ctx context.Context, students []models.Student) error {
	const op = "storage.postgres.ImportStudents"

	if len(students) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	for _, st := range students {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO students (`+studentColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (school_id)
			DO UPDATE
			SET full_name = EXCLUDED.full_name,
				national_id = EXCLUDED.national_id,
				sex = EXCLUDED.sex,
				grade = EXCLUDED.grade,
				section = EXCLUDED.section,
				shift = EXCLUDED.shift,
				guardian_name = EXCLUDED.guardian_name,
				guardian_phone = EXCLUDED.guardian_phone,
				address = EXCLUDED.address`,
			studentArgs(st)...,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// #### attendance ####

func (s *Storage) Events(ctx context.Context) ([]models.Event, error) {
	const op = "storage.postgres.Events"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, to_char(date, 'YYYY-MM-DD'), status
		FROM attendance ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var e models.Event
		var date, status string

		if err := rows.Scan(&e.ID, &e.StudentID, &date, &status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		e.Date = models.Date(date)
		e.Status = models.Status(status)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// SaveEvents upserts on the (student_id, date) unique constraint in one
// statement. Later duplicates in the batch win.
func (s *Storage) SaveEvents(ctx context.Context, events []models.Event) error {
	const op = "storage.postgres.SaveEvents"

	events = dedupeEvents(events)
	if len(events) == 0 {
		return nil
	}

	args := make([]any, 0, len(events)*4)
	placeholders := make([]string, 0, len(events))
	for i, e := range events {
		n := i * 4
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d::date, $%d)", n+1, n+2, n+3, n+4))
		args = append(args, models.EventID(e.StudentID, e.Date), e.StudentID, string(e.Date), string(e.Status))
	}

	query := fmt.Sprintf(`
		INSERT INTO attendance (id, student_id, date, status)
		VALUES %s
		ON CONFLICT (student_id, date)
		DO UPDATE
		SET status = EXCLUDED.status,
			id = EXCLUDED.id;
		`,
		strings.Join(placeholders, ","),
	)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s exec: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteStudentEvents(ctx context.Context, studentID string) error {
	const op = "storage.postgres.DeleteStudentEvents"

	if _, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE student_id=$1`, studentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func dedupeEvents(events []models.Event) []models.Event {
	pos := make(map[string]int, len(events))
	out := make([]models.Event, 0, len(events))

	for _, e := range events {
		id := models.EventID(e.StudentID, e.Date)
		if i, ok := pos[id]; ok {
			out[i] = e
			continue
		}

		pos[id] = len(out)
		out = append(out, e)
	}

	return out
}
