package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealer-service/internal/events"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	var received []events.Event
	dispatcher.Subscribe(events.EventVehicleAssigned, func(ctx context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	})

	event := events.Event{
		Type:       events.EventVehicleAssigned,
		EntityType: "vehicle",
		EntityID:   "v-1",
	}
	require.NoError(t, dispatcher.Publish(context.Background(), event))
	require.Len(t, received, 1)
	require.Equal(t, "v-1", received[0].EntityID)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(events.EventCustomerCreated, func(ctx context.Context, event events.Event) error {
		called = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventVehicleCreated}))
	require.False(t, called)
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	var order []string
	dispatcher.Subscribe(events.EventUserCreated, func(ctx context.Context, event events.Event) error {
		order = append(order, "first")
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(events.EventUserCreated, func(ctx context.Context, event events.Event) error {
		order = append(order, "second")
		return nil
	})

	// Every handler runs; the failure still surfaces to the publisher.
	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserCreated})
	require.ErrorContains(t, err, "handler failed")
	require.Equal(t, []string{"first", "second"}, order)
}
