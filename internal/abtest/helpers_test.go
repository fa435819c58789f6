package abtest

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emiliopalmerini/formab/internal/adapters/memory"
	"github.com/emiliopalmerini/formab/internal/domain"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc         *Service
	tests       *memory.TestStore
	assignments *memory.AssignmentStore
	events      *memory.EventStore
	metrics     *recordingMetrics
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		tests:       memory.NewTestStore(),
		assignments: memory.NewAssignmentStore(),
		events:      memory.NewEventStore(),
		metrics:     &recordingMetrics{},
	}
	var seq atomic.Int64
	base := []Option{
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }),
		WithMetrics(h.metrics),
	}
	h.svc = NewService(h.tests, h.tests, h.assignments, h.events, append(base, opts...)...)
	return h
}

func phoneLabelTest(status domain.TestStatus, weights ...int) domain.NewTest {
	if len(weights) == 0 {
		weights = []int{50, 50}
	}
	label := "Best number to reach you"
	n := domain.NewTest{
		Name:              "Phone Label Test",
		FormName:          "contact_form",
		FieldName:         "phone",
		TrafficAllocation: 100,
		Status:            status,
	}
	for i, w := range weights {
		v := domain.NewVariant{Name: fmt.Sprintf("Variant%c", 'A'+i-1), TrafficWeight: w}
		if i == 0 {
			v.Name = "Control"
			v.IsControl = true
		} else {
			v.Overrides.Label = &label
		}
		n.Variants = append(n.Variants, v)
	}
	return n
}

func mustCreate(t *testing.T, h *harness, in domain.NewTest) *domain.Test {
	t.Helper()
	test, err := h.svc.CreateTest(t.Context(), in)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	return test
}
