package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var calls []string

	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	dispatcher.Subscribe(EventUsersImported, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated})
	assert.EqualError(t, err, "first failed")
	assert.Equal(t, []string{"first", "second"}, calls)
}

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	closed   bool
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPPublisherRoutesByEventType(t *testing.T) {
	ch := &recordingChannel{}
	publisher := &AMQPPublisher{channel: ch, exchange: "helpdesk.events"}
	when := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

	err := publisher.Publish(context.Background(), Event{
		ID:        "evt-1",
		Type:      EventTicketStatusChanged,
		TicketID:  "t-1",
		Timestamp: when,
		Payload: TicketStatusChangedPayload{
			OldStatus: domain.TicketStatusCreated,
			NewStatus: domain.TicketStatusResolved,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "helpdesk.events", ch.exchange)
	assert.Equal(t, "ticket_status_changed", ch.key)
	assert.Equal(t, "evt-1", ch.msg.MessageId)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "t-1", decoded["ticket_id"])
	assert.Equal(t, "RESOLVED", decoded["payload"].(map[string]any)["new_status"])

	require.NoError(t, publisher.Close())
	assert.True(t, ch.closed)
}

func TestNewAMQPPublisherRequiresURL(t *testing.T) {
	_, err := NewAMQPPublisher(" ", "x")
	assert.Error(t, err)
}
