package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/honeynil/SocialWorld-web/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	key   string
	value []byte
}

type fakeProducer struct {
	sent []sent
	err  error
}

func (p *fakeProducer) Send(_ context.Context, key string, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, sent{key: key, value: value})
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func TestSessionEventPublisher_Publish(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewSessionEventPublisher(producer)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return at }

	err := pub.Publish(context.Background(), models.SessionEvent{
		Type:      models.EventLoggedIn,
		SessionID: "sid-1",
		Username:  "alice",
	})
	require.NoError(t, err)
	require.Len(t, producer.sent, 1)
	assert.Equal(t, "sid-1", producer.sent[0].key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(producer.sent[0].value, &got))
	assert.Equal(t, "logged_in", got["event_type"])
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "2025-03-01T12:00:00Z", got["occurred_at"])
	assert.NotEmpty(t, got["event_id"])
	assert.NotContains(t, got, "token")
}

func TestSessionEventPublisher_KeepsGivenID(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewSessionEventPublisher(producer)

	require.NoError(t, pub.Publish(context.Background(), models.SessionEvent{ID: "fixed", Type: models.EventLoggedOut}))

	var got models.SessionEvent
	require.NoError(t, json.Unmarshal(producer.sent[0].value, &got))
	assert.Equal(t, "fixed", got.ID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestSessionEventPublisher_ProducerError(t *testing.T) {
	pub := NewSessionEventPublisher(&fakeProducer{err: errors.New("broker unavailable")})
	err := pub.Publish(context.Background(), models.SessionEvent{Type: models.EventVerified})
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), models.SessionEvent{}))
}
