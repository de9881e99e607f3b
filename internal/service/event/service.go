package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayursutra/clinic-api/internal/model"
	"github.com/ayursutra/clinic-api/pkg/messaging"
	"github.com/ayursutra/clinic-api/pkg/metrics"
)

const publishTimeout = 2 * time.Second

// Service publishes domain events. Publishing is best effort: failures are
// logged and counted but never returned.
type Service struct {
	publisher messaging.Publisher
	prefix    string
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(publisher messaging.Publisher, prefix string, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		publisher: publisher,
		prefix:    prefix,
		metrics:   m,
		logger:    logger.With().Str("component", "events").Logger(),
		now:       time.Now,
	}
}

// Channel returns the broker channel for an event type.
func (s *Service) Channel(eventType string) string {
	if s.prefix == "" {
		return eventType
	}
	return s.prefix + "." + eventType
}

func (s *Service) Emit(ctx context.Context, eventType string, entityID uuid.UUID, practitionerID string, payload interface{}) {
	evt := model.NewEvent(eventType, entityID, practitionerID, payload, s.now())

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := s.publisher.Publish(ctx, s.Channel(eventType), evt)
	s.metrics.EventsPublished.WithLabelValues(eventType, metrics.Outcome(err == nil)).Inc()
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Str("entity_id", entityID.String()).
			Msg("Failed to publish event")
	}
}
