// Package memory holds map-backed repositories with the same uniqueness
// rules as the SQL schema. The engine and HTTP handler tests run against them.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/ports"
)

// TestStore implements both ports.TestRepository and ports.VariantRepository.
type TestStore struct {
	mu       sync.RWMutex
	tests    map[string]domain.Test
	order    []string
	variants map[string][]domain.Variant
	now      func() time.Time
}

func NewTestStore() *TestStore {
	return &TestStore{
		tests:    make(map[string]domain.Test),
		variants: make(map[string][]domain.Variant),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *TestStore) Create(ctx context.Context, test *domain.Test, variants []domain.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tests[test.ID]; ok {
		return fmt.Errorf("failed to create test: duplicate id %s", test.ID)
	}
	if test.Status == domain.StatusActive && s.activeLocked(test.FormName, test.FieldName, test.ID) {
		return fmt.Errorf("failed to create test: %w", domain.ErrActiveTestConflict)
	}

	s.tests[test.ID] = *test
	s.order = append(s.order, test.ID)
	s.variants[test.ID] = append([]domain.Variant(nil), variants...)
	return nil
}

func (s *TestStore) GetByID(ctx context.Context, id string) (*domain.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tests[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// List returns tests newest first, matching the SQL ordering.
func (s *TestStore) List(ctx context.Context) ([]*domain.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Test, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		t := s.tests[s.order[i]]
		out = append(out, &t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *TestStore) ListActiveByForm(ctx context.Context, formName string) ([]*domain.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Test
	for _, id := range s.order {
		t := s.tests[id]
		if t.FormName == formName && t.Status == domain.StatusActive {
			out = append(out, &t)
		}
	}
	return out, nil
}

func (s *TestStore) GetActiveByField(ctx context.Context, formName, fieldName string) (*domain.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		t := s.tests[id]
		if t.FormName == formName && t.FieldName == fieldName && t.Status == domain.StatusActive {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *TestStore) UpdateStatus(ctx context.Context, id string, status domain.TestStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tests[id]
	if !ok {
		return false, nil
	}
	if status == domain.StatusActive && s.activeLocked(t.FormName, t.FieldName, id) {
		return false, fmt.Errorf("failed to update test status: %w", domain.ErrActiveTestConflict)
	}
	t.Status = status
	t.UpdatedAt = s.now()
	s.tests[id] = t
	return true, nil
}

func (s *TestStore) ListByTestID(ctx context.Context, testID string) ([]domain.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]domain.Variant(nil), s.variants[testID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// activeLocked reports whether a test other than exceptID is active on the field.
func (s *TestStore) activeLocked(formName, fieldName, exceptID string) bool {
	for id, t := range s.tests {
		if id != exceptID && t.FormName == formName && t.FieldName == fieldName && t.Status == domain.StatusActive {
			return true
		}
	}
	return false
}

type assignmentKey struct {
	testID    string
	sessionID string
}

// AssignmentStore enforces one assignment per (test, session).
type AssignmentStore struct {
	mu          sync.RWMutex
	assignments map[assignmentKey]domain.Assignment
}

func NewAssignmentStore() *AssignmentStore {
	return &AssignmentStore{assignments: make(map[assignmentKey]domain.Assignment)}
}

func (s *AssignmentStore) Get(ctx context.Context, testID, sessionID string) (*domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assignments[assignmentKey{testID, sessionID}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *AssignmentStore) Create(ctx context.Context, a *domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assignmentKey{a.TestID, a.SessionID}
	if _, ok := s.assignments[key]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateAssignment, a.SessionID)
	}
	s.assignments[key] = *a
	return nil
}

// Len returns the number of stored assignments.
func (s *AssignmentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assignments)
}

type EventStore struct {
	mu     sync.RWMutex
	events []domain.Event
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) Create(ctx context.Context, e *domain.Event) error {
	if !e.Type.Valid() {
		return fmt.Errorf("failed to create event: %w: %q", domain.ErrInvalidEventType, e.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
	return nil
}

func (s *EventStore) CountByVariant(ctx context.Context, testID string) (map[string]domain.EventCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]domain.EventCounts)
	for _, e := range s.events {
		if e.TestID != testID {
			continue
		}
		c := counts[e.VariantID]
		c.Add(e.Type, 1)
		counts[e.VariantID] = c
	}
	return counts, nil
}

// Events returns a copy of everything recorded.
func (s *EventStore) Events() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Event(nil), s.events...)
}

// Repositories bundles a fresh set of stores behind the port interfaces.
type Repositories struct {
	Tests       ports.TestRepository
	Variants    ports.VariantRepository
	Assignments ports.AssignmentRepository
	Events      ports.EventRepository
}

func NewRepositories() *Repositories {
	tests := NewTestStore()
	return &Repositories{
		Tests:       tests,
		Variants:    tests,
		Assignments: NewAssignmentStore(),
		Events:      NewEventStore(),
	}
}
