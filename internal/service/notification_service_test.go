package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/facilitydesk/helpdesk/internal/events"
)

type recordingSink struct {
	published []events.Event
	err       error
}

func (s *recordingSink) Publish(_ context.Context, event events.Event) error {
	s.published = append(s.published, event)
	return s.err
}

func TestNotificationServiceForwardsEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	sink := &recordingSink{}
	NewNotificationService(dispatcher, sink, zaptest.NewLogger(t)).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated, TicketID: "t-1"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketStatusChanged, TicketID: "t-1"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUsersImported}))

	require.Len(t, sink.published, 3)
	assert.Equal(t, events.EventUsersImported, sink.published[2].Type)
}

func TestNotificationFailureDoesNotFailTicket(t *testing.T) {
	f := newFixture(t)
	sink := &recordingSink{err: errors.New("broker down")}
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, sink, zaptest.NewLogger(t)).RegisterHandlers()
	f.tickets.dispatcher = dispatcher

	student := f.createUser(t, "student@example.edu", "pw", "STUDENT")
	ticket, err := f.tickets.CreateTicket(context.Background(), student, &TicketCreateInput{Subject: "s", Description: "d"})
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	require.Len(t, sink.published, 1)
	assert.NotEmpty(t, sink.published[0].ID)
	assert.False(t, sink.published[0].Timestamp.IsZero())
}
