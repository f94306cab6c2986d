package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []EventType
	d.Subscribe(EventUserLoggedIn, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventUserLoggedIn}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventUserSignedUp}))

	require.Equal(t, []EventType{EventUserLoggedIn}, got)
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	calls := 0
	d.Subscribe(EventGuardrailRefusal, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventGuardrailRefusal, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventGuardrailRefusal})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, calls)
}
