package events

import (
	"context"
	"errors"
	"testing"
)

func TestSyncDispatcherDeliversInOrder(t *testing.T) {
	d := NewSyncDispatcher()

	var seen []string
	d.Subscribe(EventSessionEnded, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+string(e.Reason))
		return nil
	})
	d.Subscribe(EventSessionEnded, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+string(e.Reason))
		return nil
	})
	d.Subscribe(EventSessionStarted, func(context.Context, Event) error {
		t.Fatal("started handler must not see ended events")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventSessionEnded, Reason: EndReasonLogout}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(seen) != 2 || seen[0] != "first:logout" || seen[1] != "second:logout" {
		t.Fatalf("seen = %v", seen)
	}
}

func TestSyncDispatcherJoinsErrors(t *testing.T) {
	d := NewSyncDispatcher()
	errA := errors.New("a")
	errB := errors.New("b")
	calls := 0

	d.Subscribe(EventSessionRestored, func(context.Context, Event) error { calls++; return errA })
	d.Subscribe(EventSessionRestored, func(context.Context, Event) error { calls++; return errB })

	err := d.Publish(context.Background(), Event{Type: EventSessionRestored})
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined errors, got %v", err)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	if err := NewSyncDispatcher().Publish(context.Background(), Event{Type: EventSessionStarted}); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
