package records

import (
	"context"
	"sync"
	"testing"

	"attendance-service/internal/models"
	"attendance-service/internal/storage"
	"attendance-service/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *memory.Backend) {
	t.Helper()

	backend := memory.New()
	s := New(backend)
	require.NoError(t, s.Init(context.Background()))

	return s, backend
}

func TestInitSeedsOnce(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	accounts, err := s.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, models.SeedAdminID, accounts[0].ID)
	assert.Equal(t, "admin", accounts[0].Login)
	assert.Equal(t, "admin123", accounts[0].Secret)
	assert.True(t, accounts[0].Active)

	require.NoError(t, s.SaveAccount(ctx, models.Account{ID: "t1", Login: "teacher", Secret: "x", Role: models.RoleTeacher}))
	require.NoError(t, s.Init(ctx))

	accounts, err = s.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	students, err := s.Students(ctx)
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestSaveAccountKeepsSecretWhenBlank(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	admin := models.SeedAdmin()
	admin.Secret = ""
	admin.FirstName = "Renamed"
	require.NoError(t, s.SaveAccount(ctx, admin))

	accounts, err := s.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Renamed", accounts[0].FirstName)
	assert.Equal(t, "admin123", accounts[0].Secret)
}

func TestStudentUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.SaveStudent(ctx, models.Student{ID: "s1", FullName: "Ana", SchoolID: "100"}))
	require.NoError(t, s.SaveStudent(ctx, models.Student{ID: "s2", FullName: "Bea", SchoolID: "200"}))
	require.NoError(t, s.SaveStudent(ctx, models.Student{ID: "s1", FullName: "Ana Maria", SchoolID: "100"}))

	students, err := s.Students(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Ana Maria", students[0].FullName)
	assert.Equal(t, "s2", students[1].ID)

	require.NoError(t, s.DeleteStudent(ctx, "missing"))
	require.NoError(t, s.DeleteStudent(ctx, "s1"))

	students, err = s.Students(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "s2", students[0].ID)
}

func TestImportStudentsMergesBySchoolID(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.SaveStudent(ctx, models.Student{ID: "s1", FullName: "Old Name", SchoolID: "100", Grade: "1", Section: "A"}))

	err := s.ImportStudents(ctx, []models.Student{
		{ID: "new-1", FullName: "New Name", SchoolID: "100", Grade: "2", Section: "B"},
		{ID: "new-2", FullName: "Other", SchoolID: "300", Grade: "1", Section: "A"},
	})
	require.NoError(t, err)

	students, err := s.Students(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)

	assert.Equal(t, "s1", students[0].ID)
	assert.Equal(t, "New Name", students[0].FullName)
	assert.Equal(t, "2", students[0].Grade)
	assert.Equal(t, "new-2", students[1].ID)
}

func TestSaveEventsCompositeIdentity(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	first := []models.Event{
		models.NewEvent("s1", "2024-03-01", models.StatusPresent),
		models.NewEvent("s2", "2024-03-01", models.StatusAbsent),
	}
	require.NoError(t, s.SaveEvents(ctx, first))
	require.NoError(t, s.SaveEvents(ctx, first))
	require.NoError(t, s.SaveEvents(ctx, []models.Event{models.NewEvent("s2", "2024-03-01", models.StatusExcused)}))

	events, err := s.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.StatusPresent, events[0].Status)
	assert.Equal(t, models.StatusExcused, events[1].Status)

	require.NoError(t, s.DeleteStudentEvents(ctx, "s1"))
	events, err = s.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "s2", events[0].StudentID)
}

func TestCorruptStateIsReported(t *testing.T) {
	ctx := context.Background()
	s, backend := newStore(t)

	require.NoError(t, backend.Set(ctx, storage.KeyStudents, []byte("{not json")))

	_, err := s.Students(ctx)
	assert.ErrorIs(t, err, storage.ErrCorruptState)

	err = s.SaveStudent(ctx, models.Student{ID: "s1"})
	assert.ErrorIs(t, err, storage.ErrCorruptState)

	// the corrupt document is left in place
	data, ok, err := backend.Get(ctx, storage.KeyStudents)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{not json", string(data))
}

func TestCollectionBulkMerge(t *testing.T) {
	type item struct {
		ID   string `json:"id"`
		Code string `json:"code"`
		N    int    `json:"n"`
	}

	var mu sync.Mutex
	c := NewCollection(&mu, memory.New(), "items", func(i item) string { return i.ID })
	ctx := context.Background()

	code := func(i item) string { return i.Code }
	require.NoError(t, c.BulkMerge(ctx, []item{{ID: "1", Code: "a", N: 1}, {ID: "2", Code: "b", N: 1}}, code))
	require.NoError(t, c.BulkMerge(ctx, []item{{ID: "9", Code: "a", N: 2}}, code))

	items, err := c.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, item{ID: "9", Code: "a", N: 2}, items[0])

	removed, err := c.DeleteWhere(ctx, func(i item) bool { return i.N == 1 })
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ok, err := c.Delete(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}
