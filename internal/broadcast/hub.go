package broadcast

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/anand05ms/Employee-tracker/internal/events"
)

const subscriberBuffer = 64

// Subscriber is one observer's view of the status stream. Its channel is
// bounded; when the observer falls behind, the oldest queued event is
// dropped in favor of the newest.
type Subscriber struct {
	ID string
	ch chan events.StatusChangedEvent
}

func (s *Subscriber) Events() <-chan events.StatusChangedEvent {
	return s.ch
}

// Hub fans status events out to all subscribers. Publish is a wait-free
// append to the hub's inbound queue, so the attendance engine may call it
// while holding a record lock without ever being stalled by a slow
// observer. A single dispatch goroutine preserves publish order, which
// gives per-employee FIFO delivery.
type Hub struct {
	mu     sync.Mutex
	queue  []events.StatusChangedEvent
	notify chan struct{}
	subs   map[string]*Subscriber
	logger *zap.Logger
}

func NewHub(logger ...*zap.Logger) *Hub {
	l := zap.L().Named("broadcast.hub")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("broadcast.hub")
	}
	return &Hub{
		notify: make(chan struct{}, 1),
		subs:   make(map[string]*Subscriber),
		logger: l,
	}
}

// Publish enqueues the event for delivery. It never blocks.
func (h *Hub) Publish(evt events.StatusChangedEvent) {
	h.mu.Lock()
	h.queue = append(h.queue, evt)
	h.mu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *Hub) Subscribe(id string) *Subscriber {
	sub := &Subscriber{
		ID: id,
		ch: make(chan events.StatusChangedEvent, subscriberBuffer),
	}
	h.mu.Lock()
	h.subs[id] = sub
	h.mu.Unlock()
	h.logger.Info("subscriber attached", zap.String("subscriber_id", id))
	return sub
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(sub.ch)
	}
	h.mu.Unlock()
	if ok {
		h.logger.Info("subscriber detached", zap.String("subscriber_id", id))
	}
}

// Run dispatches queued events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("hub started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub stopped")
			return
		case <-h.notify:
			h.dispatch()
		}
	}
}

func (h *Hub) dispatch() {
	h.mu.Lock()
	batch := h.queue
	h.queue = nil

	// Delivery happens under the hub lock so a concurrent Unsubscribe
	// cannot close a channel mid-send. Every send is non-blocking.
	for _, evt := range batch {
		for _, sub := range h.subs {
			h.deliver(sub, evt)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) deliver(sub *Subscriber, evt events.StatusChangedEvent) {
	select {
	case sub.ch <- evt:
		return
	default:
	}

	// Full queue: drop the oldest so dashboards see the freshest position.
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- evt:
	default:
	}
}
