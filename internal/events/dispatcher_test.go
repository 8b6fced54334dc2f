package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_PublishDeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var got []string
	d.Subscribe(EventBillPaid, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.Subject)
		return nil
	})
	d.Subscribe(EventBillPaid, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.Subject)
		return nil
	})
	d.Subscribe(EventTicketResolved, func(context.Context, Event) error {
		t.Fatal("unexpected delivery")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventBillPaid, Subject: "BIL-1"}))
	assert.Equal(t, []string{"first:BIL-1", "second:BIL-1"}, got)
}

func TestDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	called := false
	d.Subscribe(EventCampaignApplied, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventCampaignApplied, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventCampaignApplied})
	assert.NoError(t, err)
	assert.True(t, called)
}
