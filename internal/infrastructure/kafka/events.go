package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/SocialWorld-web/internal/infrastructure/observability"
	"github.com/honeynil/SocialWorld-web/internal/models"
)

// EventPublisher publishes session lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event models.SessionEvent) error
}

// SessionEventPublisher encodes events as JSON onto a KafkaProducer.
type SessionEventPublisher struct {
	producer KafkaProducer
	now      func() time.Time
}

func NewSessionEventPublisher(producer KafkaProducer) *SessionEventPublisher {
	return &SessionEventPublisher{producer: producer, now: time.Now}
}

func (p *SessionEventPublisher) Publish(ctx context.Context, event models.SessionEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		observability.SessionEvents.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to marshal session event: %w", err)
	}
	if err := p.producer.Send(ctx, event.SessionID, payload); err != nil {
		observability.SessionEvents.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to publish session event: %w", err)
	}
	observability.SessionEvents.WithLabelValues(string(event.Type), "sent").Inc()
	return nil
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.SessionEvent) error { return nil }
