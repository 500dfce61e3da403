// Package feed fans submission transition events out to subscribed clients.
package feed

import (
	"context"
	"sync"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
)

const subscriberBuffer = 64

type subscriber struct {
	ch      chan submission.Event
	ownerID common.UUID // empty subscribes to all submissions
	once    sync.Once
}

// close is idempotent: Publish and Subscribe's cancel can race on the same
// subscriber.
func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub is the in-process fan-out point. Publish runs under one lock, so
// events for a single submission reach every subscriber in commit order.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscribe registers for events, scoped to one owner's submission when
// ownerID is non-empty. The subscription is released when ctx is cancelled
// or the returned cancel func runs, whichever comes first.
func (h *Hub) Subscribe(ctx context.Context, ownerID common.UUID) (<-chan submission.Event, func()) {
	sub := &subscriber{ch: make(chan submission.Event, subscriberBuffer), ownerID: ownerID}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		sub.close()
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return sub.ch, cancel
}

// Publish delivers the event to every matching subscriber. A subscriber
// whose buffer is full is closed rather than stalling the publisher or
// silently losing the transition; the client observes the closed stream
// and reconnects to resync.
func (h *Hub) Publish(event submission.Event) {
	if event.New == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		if sub.ownerID != "" && sub.ownerID != event.New.OwnerID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			delete(h.subs, id)
			sub.close()
		}
	}
}

// SubscriberCount is used by tests and the health endpoint.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
