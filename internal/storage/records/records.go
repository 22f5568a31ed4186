// Package records persists whole entity collections as JSON documents in a
// key-value backend. Every write rewrites the full collection.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"attendance-service/internal/models"
	"attendance-service/internal/storage"
)

// Backend stores one JSON document per collection key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Close() error
}

type KeyFunc[T any] func(T) string

// MergeFunc combines a stored entity with its incoming replacement.
type MergeFunc[T any] func(old, incoming T) T

type Collection[T any] struct {
	mu      *sync.Mutex
	backend Backend
	key     string
	id      KeyFunc[T]
}

func NewCollection[T any](mu *sync.Mutex, backend Backend, key string, id KeyFunc[T]) *Collection[T] {
	return &Collection[T]{mu: mu, backend: backend, key: key, id: id}
}

func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.load(ctx)
}

// Upsert replaces the entity whose keyFn value matches, keeping its position,
// or appends it.
func (c *Collection[T]) Upsert(ctx context.Context, entity T, keyFn KeyFunc[T]) error {
	return c.UpsertMany(ctx, []T{entity}, keyFn, nil)
}

// UpsertMany applies several upserts in a single read-modify-write.
func (c *Collection[T]) UpsertMany(ctx context.Context, incoming []T, keyFn KeyFunc[T], merge MergeFunc[T]) error {
	const op = "storage.records.UpsertMany"

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	index := make(map[string]int, len(items))
	for i, item := range items {
		k := keyFn(item)
		if _, seen := index[k]; !seen {
			index[k] = i
		}
	}

	for _, in := range incoming {
		k := keyFn(in)
		if i, ok := index[k]; ok {
			if merge != nil {
				in = merge(items[i], in)
			}
			items[i] = in
			continue
		}

		index[k] = len(items)
		items = append(items, in)
	}

	if err := c.store(ctx, items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// BulkMerge upserts each incoming entity by mergeKeyFn instead of the
// primary id, so re-importing the same batch is idempotent.
func (c *Collection[T]) BulkMerge(ctx context.Context, incoming []T, mergeKeyFn KeyFunc[T]) error {
	return c.UpsertMany(ctx, incoming, mergeKeyFn, nil)
}

// Delete removes the first entity with the given id. Missing ids are a no-op.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	const op = "storage.records.Delete"

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	for i, item := range items {
		if c.id(item) != id {
			continue
		}

		items = append(items[:i], items[i+1:]...)
		if err := c.store(ctx, items); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		return true, nil
	}

	return false, nil
}

// DeleteWhere removes every entity matching fn.
func (c *Collection[T]) DeleteWhere(ctx context.Context, fn func(T) bool) (int, error) {
	const op = "storage.records.DeleteWhere"

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	kept := items[:0]
	for _, item := range items {
		if !fn(item) {
			kept = append(kept, item)
		}
	}

	removed := len(items) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := c.store(ctx, kept); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return removed, nil
}

// ensure writes seed when the collection has never been stored.
func (c *Collection[T]) ensure(ctx context.Context, seed []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok, err := c.backend.Get(ctx, c.key)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	return c.store(ctx, seed)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	data, ok, err := c.backend.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0)
	if !ok || len(data) == 0 {
		return items, nil
	}

	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", c.key, storage.ErrCorruptState, err)
	}

	return items, nil
}

func (c *Collection[T]) store(ctx context.Context, items []T) error {
	if items == nil {
		items = make([]T, 0)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	return c.backend.Set(ctx, c.key, data)
}

// Store holds the three collections of the application. A single mutex
// serialises every read-modify-write across them.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	accounts *Collection[models.Account]
	students *Collection[models.Student]
	events   *Collection[models.Event]
}

func New(backend Backend) *Store {
	s := &Store{backend: backend}
	s.accounts = NewCollection(&s.mu, backend, storage.KeyAccounts, func(a models.Account) string { return a.ID })
	s.students = NewCollection(&s.mu, backend, storage.KeyStudents, func(st models.Student) string { return st.ID })
	s.events = NewCollection(&s.mu, backend, storage.KeyAttendance, func(e models.Event) string { return e.ID })

	return s
}

// Init seeds the admin account and empty roster and attendance collections
// when they are absent.
func (s *Store) Init(ctx context.Context) error {
	const op = "storage.records.Init"

	if err := s.accounts.ensure(ctx, []models.Account{models.SeedAdmin()}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.students.ensure(ctx, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.events.ensure(ctx, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}

	return s.backend.Close()
}

func accountID(a models.Account) string { return a.ID }

// mergeAccount lets an edit that leaves the secret blank keep the stored one.
func mergeAccount(old, incoming models.Account) models.Account {
	if incoming.Secret == "" {
		incoming.Secret = old.Secret
	}

	return incoming
}

func (s *Store) Accounts(ctx context.Context) ([]models.Account, error) {
	const op = "storage.records.Accounts"

	accounts, err := s.accounts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return accounts, nil
}

func (s *Store) SaveAccount(ctx context.Context, account models.Account) error {
	const op = "storage.records.SaveAccount"

	if err := s.accounts.UpsertMany(ctx, []models.Account{account}, accountID, mergeAccount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	const op = "storage.records.DeleteAccount"

	if _, err := s.accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Students(ctx context.Context) ([]models.Student, error) {
	const op = "storage.records.Students"

	students, err := s.students.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return students, nil
}

func (s *Store) SaveStudent(ctx context.Context, student models.Student) error {
	const op = "storage.records.SaveStudent"

	if err := s.students.Upsert(ctx, student, func(st models.Student) string { return st.ID }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	const op = "storage.records.DeleteStudent"

	if _, err := s.students.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// keepStudentID overwrites a stored student's fields but keeps its id, so
// attendance recorded before a re-import stays attached.
func keepStudentID(old, incoming models.Student) models.Student {
	incoming.ID = old.ID
	return incoming
}

// ImportStudents merges by school id: a known school id overwrites the
// stored student in place, a new one is appended.
func (s *Store) ImportStudents(ctx context.Context, students []models.Student) error {
	const op = "storage.records.ImportStudents"

	schoolID := func(st models.Student) string { return st.SchoolID }
	if err := s.students.UpsertMany(ctx, students, schoolID, keepStudentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Events(ctx context.Context) ([]models.Event, error) {
	const op = "storage.records.Events"

	events, err := s.events.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// SaveEvents upserts events by their (student, date) identity.
func (s *Store) SaveEvents(ctx context.Context, events []models.Event) error {
	const op = "storage.records.SaveEvents"

	if len(events) == 0 {
		return nil
	}

	key := func(e models.Event) string { return models.EventID(e.StudentID, e.Date) }
	if err := s.events.UpsertMany(ctx, events, key, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) DeleteStudentEvents(ctx context.Context, studentID string) error {
	const op = "storage.records.DeleteStudentEvents"

	if _, err := s.events.DeleteWhere(ctx, func(e models.Event) bool { return e.StudentID == studentID }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
