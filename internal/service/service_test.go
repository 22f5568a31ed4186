package service

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"attendance-service/api"
	"attendance-service/internal/analysis"
	"attendance-service/internal/attendance"
	"attendance-service/internal/lock"
	"attendance-service/internal/models"
	"attendance-service/internal/session"
	"attendance-service/internal/storage"
	"attendance-service/internal/storage/memory"
	"attendance-service/internal/storage/records"
	"attendance-service/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeGenerator struct {
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, _ []analysis.Turn, prompt string) (string, error) {
	f.prompt = prompt
	return "analysis ok", nil
}

type testEnv struct {
	svc     *Service
	store   *records.Store
	backend *memory.Backend
	locker  *lock.LocalLock
	gen     *fakeGenerator
	admin   session.Session
}

func newEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	backend := memory.New()
	store := records.New(backend)
	require.NoError(t, store.Init(context.Background()))

	n := 0
	if opts.NewID == nil {
		opts.NewID = func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}
	}
	opts.Now = func() time.Time { return testNow }

	log := slog.New(slog.DiscardHandler)
	gen := &fakeGenerator{}
	locker := lock.NewLocalLock()

	svc := NewService(log, store, locker, session.NewManager("test", time.Hour), analysis.New(log, gen, time.Second), opts)

	return &testEnv{
		svc:     svc,
		store:   store,
		backend: backend,
		locker:  locker,
		gen:     gen,
		admin:   session.Session{Account: models.SeedAdmin()},
	}
}

func (e *testEnv) addStudent(t *testing.T, id, name, schoolID, grade, section string) {
	t.Helper()

	_, err := e.svc.SaveStudent(context.Background(), &api.StudentRequest{
		ID:       id,
		FullName: name,
		SchoolID: schoolID,
		Sex:      "M",
		Grade:    grade,
		Section:  section,
		Shift:    "M",
	})
	require.NoError(t, err)
}

func teacherSession(grade, section string) session.Session {
	return session.Session{Account: models.Account{
		ID:      "t1",
		Login:   "teacher",
		Role:    models.RoleTeacher,
		Grade:   grade,
		Section: section,
		Active:  true,
	}}
}

func TestWorkedExample(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})

	e.addStudent(t, "S1", "Student One", "100", "1", "A")
	e.addStudent(t, "S2", "Student Two", "200", "1", "A")

	res, err := e.svc.Commit(ctx, e.admin, &api.CommitRequest{
		Grade:   "1",
		Section: "A",
		Date:    "2024-03-01",
		Marks: map[string]models.Status{
			"S1": models.StatusPresent,
			"S2": models.StatusAbsent,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 0, res.Unmarked)
	assert.Equal(t, attendance.PolicyLeaveUnset, res.Policy)

	daily, err := e.svc.DailyReport(ctx, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "1-A", daily[0].Section)
	assert.Equal(t, 2, daily[0].Enrollment)
	assert.Equal(t, 1, daily[0].Present)
	assert.Equal(t, 1, daily[0].Absent)
	assert.Equal(t, 50, daily[0].AchievementRate)

	critical, err := e.svc.CriticalStudents(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "S2", critical[0].Student.ID)
	assert.Equal(t, 1, critical[0].Absences)

	rows, err := e.svc.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestCommitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})

	e.addStudent(t, "S1", "Ana", "100", "1", "A")
	e.addStudent(t, "S2", "Bea", "200", "1", "A")

	req := &api.CommitRequest{
		Grade:   "1",
		Section: "A",
		Date:    "2024-03-01",
		Marks:   map[string]models.Status{"S1": models.StatusPresent},
	}

	_, err := e.svc.Commit(ctx, e.admin, req)
	require.NoError(t, err)
	first, err := e.store.Events(ctx)
	require.NoError(t, err)

	_, err = e.svc.Commit(ctx, e.admin, req)
	require.NoError(t, err)
	second, err := e.store.Events(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, second, 1)

	// changing a mark rewrites the same event
	req.Marks["S1"] = models.StatusExcused
	_, err = e.svc.Commit(ctx, e.admin, req)
	require.NoError(t, err)

	events, err := e.store.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "S1_2024-03-01", events[0].ID)
	assert.Equal(t, models.StatusExcused, events[0].Status)
}

func TestCommitDefaultUnmarked(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{Policy: attendance.Policy{DefaultUnmarked: models.StatusAbsent}})

	e.addStudent(t, "S1", "Ana", "100", "1", "A")
	e.addStudent(t, "S2", "Bea", "200", "1", "A")
	e.addStudent(t, "S3", "Cal", "300", "1", "B")

	res, err := e.svc.Commit(ctx, e.admin, &api.CommitRequest{
		Grade:   "1",
		Section: "A",
		Date:    "2024-03-01",
		Marks: map[string]models.Status{
			"S1": models.StatusPresent,
			"S3": models.StatusPresent,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 1, res.Unmarked)
	assert.Equal(t, []string{"S3"}, res.Ignored)
	assert.Equal(t, "absent", res.Policy)

	day, err := e.svc.DayMap(ctx, e.admin, "1", "A", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAbsent, day.Marks["S2"])
	assert.Equal(t, 0, day.Pending)
}

func TestCommitLocked(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})
	e.addStudent(t, "S1", "Ana", "100", "1", "A")

	ok, err := e.locker.Lock(ctx, "attendance:1-A:2024-03-01", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.svc.Commit(ctx, e.admin, &api.CommitRequest{Grade: "1", Section: "A", Date: "2024-03-01"})
	assert.ErrorIs(t, err, response.ErrLocked)

	require.NoError(t, e.locker.Unlock(ctx, "attendance:1-A:2024-03-01"))
	_, err = e.svc.Commit(ctx, e.admin, &api.CommitRequest{Grade: "1", Section: "A", Date: "2024-03-01"})
	assert.NoError(t, err)
}

func TestCommitRejectsBadDate(t *testing.T) {
	e := newEnv(t, Options{})

	_, err := e.svc.Commit(context.Background(), e.admin, &api.CommitRequest{Grade: "1", Section: "A", Date: "03/01/2024"})
	assert.ErrorIs(t, err, response.ErrValidation)
	assert.ErrorIs(t, err, models.ErrInvalidDate)
}

func TestTeacherSectionAccess(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})
	e.addStudent(t, "S1", "Ana", "100", "1", "A")
	e.addStudent(t, "S2", "Bea", "200", "2", "B")

	teacher := teacherSession("1", "A")

	_, err := e.svc.Commit(ctx, teacher, &api.CommitRequest{Grade: "2", Section: "B", Date: "2024-03-01"})
	assert.ErrorIs(t, err, response.ErrForbidden)

	_, err = e.svc.DayMap(ctx, teacher, "2", "B", "")
	assert.ErrorIs(t, err, response.ErrForbidden)

	day, err := e.svc.DayMap(ctx, teacher, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "1-A", day.Section)
	assert.Equal(t, "2024-03-01", day.Date)
	require.Len(t, day.Roster, 1)
	assert.Equal(t, 1, day.Pending)

	students, err := e.svc.ListStudents(ctx, teacher, "", "")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "S1", students[0].ID)

	class, err := e.svc.ClassToday(ctx, teacher, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, class.Enrollment)

	_, err = e.svc.DayMap(ctx, teacherSession("", ""), "", "", "")
	assert.ErrorIs(t, err, response.ErrValidation)
}

func TestToggle(t *testing.T) {
	e := newEnv(t, Options{})

	res, err := e.svc.Toggle(&api.ToggleRequest{StudentID: "S1", Status: models.StatusPresent})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, res.Marks["S1"])

	res, err = e.svc.Toggle(&api.ToggleRequest{Marks: res.Marks, StudentID: "S1", Status: models.StatusPresent})
	require.NoError(t, err)
	assert.Empty(t, res.Marks)

	_, err = e.svc.Toggle(&api.ToggleRequest{StudentID: "S1"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestSaveStudentDuplicateSchoolID(t *testing.T) {
	e := newEnv(t, Options{})
	e.addStudent(t, "S1", "Ana", "100", "1", "A")

	_, err := e.svc.SaveStudent(context.Background(), &api.StudentRequest{
		FullName: "Other", SchoolID: "100", Sex: "F", Grade: "1", Section: "A", Shift: "M",
	})
	assert.ErrorIs(t, err, response.ErrConflict)

	_, err = e.svc.SaveStudent(context.Background(), &api.StudentRequest{
		FullName: "Other", SchoolID: "101", Sex: "X", Grade: "1", Section: "A", Shift: "M",
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestImportStudents(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})
	e.addStudent(t, "S1", "Old Name", "100", "1", "A")

	_, err := e.svc.Commit(ctx, e.admin, &api.CommitRequest{
		Grade: "1", Section: "A", Date: "2024-03-01",
		Marks: map[string]models.Status{"S1": models.StatusAbsent},
	})
	require.NoError(t, err)

	res, err := e.svc.ImportStudents(ctx, []api.StudentImportRow{
		{FullName: "New Name", SchoolID: "100", Grade: "1", Section: "a", Sex: "f"},
		{SchoolID: "200"},
		{FullName: "No id"},
		{FullName: "Dup first", SchoolID: "300"},
		{FullName: "Dup last", SchoolID: "300", Shift: "T"},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Received)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, []int{2}, res.Skipped)
	require.Len(t, res.Students, 3)
	assert.Equal(t, "S1", res.Students[0])

	students, err := e.store.Students(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)

	assert.Equal(t, "S1", students[0].ID)
	assert.Equal(t, "New Name", students[0].FullName)
	assert.Equal(t, "A", students[0].Section)
	assert.Equal(t, models.SexFemale, students[0].Sex)

	assert.Equal(t, "NO NAME", students[1].FullName)
	assert.Equal(t, "1", students[1].Grade)
	assert.Equal(t, "A", students[1].Section)
	assert.Equal(t, models.SexMale, students[1].Sex)
	assert.Equal(t, models.ShiftMorning, students[1].Shift)

	assert.Equal(t, "Dup last", students[2].FullName)
	assert.Equal(t, models.ShiftAfternoon, students[2].Shift)

	// attendance recorded before the import stays attached
	critical, err := e.svc.CriticalStudents(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "New Name", critical[0].Student.FullName)

	// importing the same batch again changes nothing
	_, err = e.svc.ImportStudents(ctx, []api.StudentImportRow{{FullName: "New Name", SchoolID: "100", Grade: "1", Section: "a", Sex: "f"}})
	require.NoError(t, err)
	again, err := e.store.Students(ctx)
	require.NoError(t, err)
	assert.Equal(t, students, again)
}

func TestDeleteStudentOrphansEvents(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})
	e.addStudent(t, "S1", "Ana", "100", "1", "A")

	_, err := e.svc.Commit(ctx, e.admin, &api.CommitRequest{
		Grade: "1", Section: "A", Date: "2024-03-01",
		Marks: map[string]models.Status{"S1": models.StatusAbsent},
	})
	require.NoError(t, err)

	require.NoError(t, e.svc.DeleteStudent(ctx, "S1"))

	events, err := e.store.Events(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	daily, err := e.svc.DailyReport(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Empty(t, daily)

	critical, err := e.svc.CriticalStudents(ctx, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, critical)
}

func TestDeleteStudentCascade(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{CascadeDelete: true})
	e.addStudent(t, "S1", "Ana", "100", "1", "A")

	_, err := e.svc.Commit(ctx, e.admin, &api.CommitRequest{
		Grade: "1", Section: "A", Date: "2024-03-01",
		Marks: map[string]models.Status{"S1": models.StatusAbsent},
	})
	require.NoError(t, err)

	require.NoError(t, e.svc.DeleteStudent(ctx, "S1"))

	events, err := e.store.Events(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})

	res, err := e.svc.Login(ctx, &api.LoginRequest{Login: "admin", Secret: "admin123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.SeedAdminID, res.Account.ID)
	assert.True(t, res.Account.Protected)

	_, err = e.svc.Login(ctx, &api.LoginRequest{Login: "admin", Secret: "wrong"})
	assert.ErrorIs(t, err, response.ErrUnauthorized)

	created, err := e.svc.SaveAccount(ctx, e.admin, &api.AccountRequest{
		FirstName: "Tea", LastName: "Cher", Login: "teacher", Secret: "pass", Role: models.RoleTeacher, Grade: "1", Section: "A",
	})
	require.NoError(t, err)

	_, err = e.svc.ToggleAccountActive(ctx, e.admin, created.ID)
	require.NoError(t, err)

	_, err = e.svc.Login(ctx, &api.LoginRequest{Login: "teacher", Secret: "pass"})
	assert.ErrorIs(t, err, response.ErrInactive)
}

func TestProtectedAdmin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})

	other, err := e.svc.SaveAccount(ctx, e.admin, &api.AccountRequest{
		FirstName: "Vice", LastName: "Admin", Login: "vice", Secret: "pass", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, other.Role)

	vice := session.Session{Account: models.Account{ID: other.ID, Role: models.RoleAdmin, Active: true}}

	assert.ErrorIs(t, e.svc.DeleteAccount(ctx, e.admin, models.SeedAdminID), response.ErrProtected)
	assert.ErrorIs(t, e.svc.DeleteAccount(ctx, vice, models.SeedAdminID), response.ErrProtected)

	_, err = e.svc.ToggleAccountActive(ctx, e.admin, models.SeedAdminID)
	assert.ErrorIs(t, err, response.ErrProtected)

	_, err = e.svc.SaveAccount(ctx, vice, &api.AccountRequest{
		ID: models.SeedAdminID, FirstName: "X", LastName: "Y", Login: "admin", Role: models.RoleTeacher,
	})
	assert.ErrorIs(t, err, response.ErrForbidden)

	// the master admin editing themselves stays admin and keeps the secret
	saved, err := e.svc.SaveAccount(ctx, e.admin, &api.AccountRequest{
		ID: models.SeedAdminID, FirstName: "Head", LastName: "Master", Login: "admin", Role: models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, saved.Role)

	_, err = e.svc.Login(ctx, &api.LoginRequest{Login: "admin", Secret: "admin123"})
	assert.NoError(t, err)

	accounts, err := e.svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestNonMasterAdminCreatesTeachersOnly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})

	vice := session.Session{Account: models.Account{ID: "vice", Role: models.RoleAdmin, Active: true}}

	created, err := e.svc.SaveAccount(ctx, vice, &api.AccountRequest{
		FirstName: "New", LastName: "Admin", Login: "newadmin", Secret: "pass", Role: models.RoleAdmin, Grade: "1", Section: "A",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, created.Role)

	_, err = e.svc.SaveAccount(ctx, vice, &api.AccountRequest{
		FirstName: "Dup", LastName: "Login", Login: "NEWADMIN", Secret: "pass",
	})
	assert.ErrorIs(t, err, response.ErrConflict)

	teacher := session.Session{Account: models.Account{ID: created.ID, Role: models.RoleTeacher, Active: true}}
	_, err = e.svc.SaveAccount(ctx, teacher, &api.AccountRequest{
		FirstName: "Sneaky", LastName: "Create", Login: "sneaky", Secret: "pass",
	})
	assert.ErrorIs(t, err, response.ErrForbidden)
}

func TestEditWithoutRoleKeepsRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})

	vice, err := e.svc.SaveAccount(ctx, e.admin, &api.AccountRequest{
		FirstName: "Vice", LastName: "Admin", Login: "vice", Secret: "pass", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, vice.Role)

	renamed, err := e.svc.SaveAccount(ctx, e.admin, &api.AccountRequest{
		ID: vice.ID, FirstName: "Renamed", LastName: "Admin", Login: "vice",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, renamed.Role)
	assert.Equal(t, "Renamed", renamed.FirstName)

	// a new account without a role is still a teacher
	created, err := e.svc.SaveAccount(ctx, e.admin, &api.AccountRequest{
		FirstName: "Tea", LastName: "Cher", Login: "teacher", Secret: "pass", Grade: "1", Section: "A",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, created.Role)
}

func TestTeacherNeedsClass(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})

	_, err := e.svc.SaveAccount(ctx, e.admin, &api.AccountRequest{
		FirstName: "Tea", LastName: "Cher", Login: "teacher", Secret: "pass", Role: models.RoleTeacher,
	})
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = e.svc.SaveAccount(ctx, e.admin, &api.AccountRequest{
		FirstName: "Tea", LastName: "Cher", Login: "teacher", Secret: "pass", Role: models.RoleTeacher, Grade: "1",
	})
	assert.ErrorIs(t, err, response.ErrValidation)

	accounts, err := e.svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestAdminCannotDeactivateSelf(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})

	created, err := e.svc.SaveAccount(ctx, e.admin, &api.AccountRequest{
		FirstName: "Vice", LastName: "Admin", Login: "vice", Secret: "pass", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	vice := session.Session{Account: models.Account{ID: created.ID, Role: models.RoleAdmin, Active: true}}

	_, err = e.svc.ToggleAccountActive(ctx, vice, created.ID)
	assert.ErrorIs(t, err, response.ErrForbidden)

	inactive := false
	_, err = e.svc.SaveAccount(ctx, vice, &api.AccountRequest{
		ID: created.ID, FirstName: "Vice", LastName: "Admin", Login: "vice", Active: &inactive,
	})
	assert.ErrorIs(t, err, response.ErrForbidden)

	account, err := e.svc.Account(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, account.Active)

	// the master admin still can
	toggled, err := e.svc.ToggleAccountActive(ctx, e.admin, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)
}

func TestReportsOnCorruptState(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})

	require.NoError(t, e.backend.Set(ctx, storage.KeyAttendance, []byte("oops")))

	_, err := e.svc.DailyReport(ctx, "")
	assert.ErrorIs(t, err, storage.ErrCorruptState)
}

func TestMonthlyReport(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})
	e.addStudent(t, "S1", "Ana", "100", "1", "A")

	m, err := e.svc.MonthlyReport(ctx, e.admin, "1", "A", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", m.Month)
	assert.Len(t, m.Days, 31)

	_, err = e.svc.MonthlyReport(ctx, e.admin, "1", "A", "March")
	assert.ErrorIs(t, err, response.ErrValidation)
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})
	e.addStudent(t, "S1", "Ana", "100", "1", "A")

	o, err := e.svc.Overview(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", o.Date)
	assert.Equal(t, 1, o.Students)
	assert.Equal(t, 0, o.Teachers)
}

func TestAnalyzeAndAsk(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, Options{})
	e.addStudent(t, "S1", "Ana", "100", "1", "A")

	_, err := e.svc.Commit(ctx, e.admin, &api.CommitRequest{
		Grade: "1", Section: "A", Date: "2024-03-01",
		Marks: map[string]models.Status{"S1": models.StatusAbsent},
	})
	require.NoError(t, err)

	res, err := e.svc.Analyze(ctx)
	require.NoError(t, err)
	assert.True(t, res.Configured)
	assert.Equal(t, "analysis ok", res.Text)
	assert.Contains(t, e.gen.prompt, `"name":"Ana"`)

	res, err = e.svc.Ask(ctx, &api.AskRequest{Question: "Who is at risk?"})
	require.NoError(t, err)
	assert.Equal(t, "analysis ok", res.Text)

	_, err = e.svc.Ask(ctx, &api.AskRequest{
		Question: "q",
		History:  []analysis.Turn{{Role: "system", Content: "x"}},
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
