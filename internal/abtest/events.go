package abtest

import (
	"context"
	"fmt"

	"github.com/emiliopalmerini/formab/internal/domain"
)

type TrackEventInput struct {
	TestID    string
	VariantID string
	SessionID string
	Type      domain.EventType
	Data      *string
}

// TrackTestEvent appends one event. Repeats are recorded as-is and errors are
// returned to the caller.
func (s *Service) TrackTestEvent(ctx context.Context, in TrackEventInput) error {
	e := &domain.Event{
		ID:        s.newID(),
		TestID:    in.TestID,
		VariantID: in.VariantID,
		SessionID: in.SessionID,
		Type:      in.Type,
		Data:      in.Data,
		CreatedAt: s.now(),
	}
	if err := s.events.Create(ctx, e); err != nil {
		return fmt.Errorf("failed to track %s event: %w", in.Type, err)
	}
	s.metrics.RecordEvent(ctx, in.TestID, string(in.Type))
	return nil
}
