package abtest

import (
	"context"
	"sync"

	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/ports"
)

// mockAssignmentRepository is a func-field mock of ports.AssignmentRepository.
type mockAssignmentRepository struct {
	GetFunc    func(ctx context.Context, testID, sessionID string) (*domain.Assignment, error)
	CreateFunc func(ctx context.Context, a *domain.Assignment) error
}

func (m *mockAssignmentRepository) Get(ctx context.Context, testID, sessionID string) (*domain.Assignment, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, testID, sessionID)
	}
	return nil, nil
}

func (m *mockAssignmentRepository) Create(ctx context.Context, a *domain.Assignment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	return nil
}

type recordedAssignment struct {
	testID, variantID string
	created           bool
}

type recordingMetrics struct {
	mu          sync.Mutex
	assignments []recordedAssignment
	events      []string
}

func (m *recordingMetrics) RecordAssignment(_ context.Context, testID, variantID string, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = append(m.assignments, recordedAssignment{testID, variantID, created})
}

func (m *recordingMetrics) RecordEvent(_ context.Context, _ string, eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
}

func (m *recordingMetrics) Close(context.Context) error { return nil }

var (
	_ ports.MetricsExporter = noopMetrics{}
	_ ports.MetricsExporter = (*recordingMetrics)(nil)
)
