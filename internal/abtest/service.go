// Package abtest is the variant assignment and significance engine. It assigns
// sessions to weighted variants, records interaction events, and compares each
// treatment's conversion rate against the control.
package abtest

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/formab/internal/ports"
)

// Service implements the engine operations over injected repositories.
type Service struct {
	tests       ports.TestRepository
	variants    ports.VariantRepository
	assignments ports.AssignmentRepository
	events      ports.EventRepository

	metrics ports.MetricsExporter
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m ports.MetricsExporter) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRand replaces the source used for first-time variant draws.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		if r != nil {
			s.rng = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces uuid generation, mostly for tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewService(
	tests ports.TestRepository,
	variants ports.VariantRepository,
	assignments ports.AssignmentRepository,
	events ports.EventRepository,
	opts ...Option,
) *Service {
	s := &Service{
		tests:       tests,
		variants:    variants,
		assignments: assignments,
		events:      events,
		metrics:     noopMetrics{},
		logger:      zap.NewNop(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// intN draws from [0, n). The shared source is not safe for concurrent use.
func (s *Service) intN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

type noopMetrics struct{}

func (noopMetrics) RecordAssignment(context.Context, string, string, bool) {}
func (noopMetrics) RecordEvent(context.Context, string, string)            {}
func (noopMetrics) Close(context.Context) error                            { return nil }
