package feed

import (
	"context"
	"testing"
	"time"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
)

func testEvent(ownerID common.UUID, status submission.Status) submission.Event {
	sub := &submission.Submission{
		ID:      common.UUID("sub-" + ownerID),
		OwnerID: ownerID,
		Status:  status,
	}
	return submission.Event{New: sub}
}

func receive(t *testing.T, ch <-chan submission.Event) submission.Event {
	t.Helper()
	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before event arrived")
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return submission.Event{}
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(context.Background(), "")
	defer cancel()

	hub.Publish(testEvent("owner-1", submission.StatusAccepted))
	event := receive(t, ch)
	if event.New.OwnerID != "owner-1" {
		t.Fatalf("expected owner-1, got %s", event.New.OwnerID)
	}
	if event.New.Status != submission.StatusAccepted {
		t.Fatalf("expected accepted, got %s", event.New.Status)
	}
}

func TestHubOwnerScope(t *testing.T) {
	hub := NewHub()
	mine, cancelMine := hub.Subscribe(context.Background(), "owner-1")
	defer cancelMine()
	all, cancelAll := hub.Subscribe(context.Background(), "")
	defer cancelAll()

	hub.Publish(testEvent("owner-2", submission.StatusRejected))
	hub.Publish(testEvent("owner-1", submission.StatusAccepted))

	event := receive(t, mine)
	if event.New.OwnerID != "owner-1" {
		t.Fatalf("scoped subscriber received foreign event for %s", event.New.OwnerID)
	}
	select {
	case extra := <-mine:
		t.Fatalf("scoped subscriber received extra event %+v", extra)
	default:
	}

	first := receive(t, all)
	second := receive(t, all)
	if first.New.OwnerID != "owner-2" || second.New.OwnerID != "owner-1" {
		t.Fatalf("unscoped subscriber got events out of order: %s then %s", first.New.OwnerID, second.New.OwnerID)
	}
}

func TestHubPerSubmissionOrdering(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(context.Background(), "owner-1")
	defer cancel()

	statuses := []submission.Status{
		submission.StatusPending,
		submission.StatusAccepted,
		submission.StatusRejected,
		submission.StatusAccepted,
	}
	for _, status := range statuses {
		hub.Publish(testEvent("owner-1", status))
	}
	for i, want := range statuses {
		event := receive(t, ch)
		if event.New.Status != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, event.New.Status)
		}
	}
}

func TestHubCancelReleasesSubscription(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(context.Background(), "")
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}

	cancel()
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after cancel, got %d", hub.SubscriberCount())
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	// Publishing after cancel must not panic or deliver.
	hub.Publish(testEvent("owner-1", submission.StatusAccepted))

	// Double cancel is a no-op.
	cancel()
}

func TestHubContextCancelReleasesSubscription(t *testing.T) {
	hub := NewHub()
	ctx, cancelCtx := context.WithCancel(context.Background())
	_, cancel := hub.Subscribe(ctx, "")
	defer cancel()

	cancelCtx()
	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected subscription release on ctx cancel, still %d", hub.SubscriberCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe(context.Background(), "")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(testEvent("owner-1", submission.StatusPending))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}
}

func TestHubOverflowClosesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(context.Background(), "")
	defer cancel()

	for i := 0; i < subscriberBuffer+1; i++ {
		hub.Publish(testEvent("owner-1", submission.StatusPending))
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected overflowing subscriber to be removed, got %d", hub.SubscriberCount())
	}

	// The buffered events still drain, then the stream ends so the client
	// knows to reconnect and resync.
	for i := 0; i < subscriberBuffer; i++ {
		receive(t, ch)
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after overflow")
	}

	// A healthy subscriber keeps receiving.
	fresh, cancelFresh := hub.Subscribe(context.Background(), "")
	defer cancelFresh()
	hub.Publish(testEvent("owner-1", submission.StatusAccepted))
	event := receive(t, fresh)
	if event.New.Status != submission.StatusAccepted {
		t.Fatalf("expected accepted, got %s", event.New.Status)
	}
}

func TestHubIgnoresEmptyEvent(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(context.Background(), "")
	defer cancel()

	hub.Publish(submission.Event{})
	select {
	case event := <-ch:
		t.Fatalf("expected no delivery for nil-new event, got %+v", event)
	default:
	}
}
