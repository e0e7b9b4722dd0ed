package notifier

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dispatch/internal/pkg/errs"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrSubscriberOverflow closes a subscription whose queue filled up.
	ErrSubscriberOverflow = errors.New("subscriber fell behind and was disconnected")
	// ErrSubscriptionClosed is reported by a subscription closed by its owner.
	ErrSubscriptionClosed = errors.New("subscription closed")
	// ErrNotifierStopped is reported by subscriptions closed because the notifier stopped.
	ErrNotifierStopped = errors.New("notifier stopped")
)

// Observer receives notifier metrics. Implementations must be cheap; they
// are called while the fan-out lock is held.
type Observer interface {
	SetSubscribers(n int)
	SubscriberDropped()
	EventPublished(kind string)
}

// Notifier fans coordinator events out to subscribers.
//
// Publish appends to an unbounded in-memory queue and returns at once; a
// single Run goroutine drains the queue and copies each event into the
// bounded queue of every matching subscriber. Events therefore reach each
// subscriber in publish order, and since the coordinator publishes while it
// still holds the entity's exclusion, in sequence order per entity.
//
// A subscriber whose queue is full is disconnected instead of slowing the
// others down. It finds the gap in sequence numbers after resubscribing.
type Notifier struct {
	mu          sync.Mutex
	pending     []Event
	wake        chan struct{}
	subscribers map[string]*Subscription
	sequences   map[string]int64
	stopped     bool

	bufferSize int
	observer   Observer
	logger     *slog.Logger
}

// New creates a Notifier whose subscribers each buffer up to bufferSize
// events. observer may be nil.
func New(bufferSize int, observer Observer, logger *slog.Logger) *Notifier {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Notifier{
		wake:        make(chan struct{}, 1),
		subscribers: make(map[string]*Subscription),
		sequences:   make(map[string]int64),
		bufferSize:  bufferSize,
		observer:    observer,
		logger:      logger.With("component", "Notifier"),
	}
}

// Publish enqueues an event for delivery. It never blocks on subscribers.
func (n *Notifier) Publish(e Event) {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.pending = append(n.pending, e)
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// PublishMessage relays a chat message between two users, sequenced per
// conversation.
func (n *Notifier) PublishMessage(from, to, body string) (Event, error) {
	from, to, body = strings.TrimSpace(from), strings.TrimSpace(to), strings.TrimSpace(body)
	if err := errors.Join(
		requireValue("from", from),
		requireValue("to", to),
		requireValue("message", body),
	); err != nil {
		return Event{}, err
	}
	if from == to {
		return Event{}, errs.NewValueIsInvalidError("recipient must differ from sender")
	}

	key := ConversationKey(from, to)
	now := time.Now().UTC()

	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return Event{}, ErrNotifierStopped
	}
	n.sequences[key]++
	e := NewEvent(KindMessage, key, n.sequences[key], Message{
		ID:     ulid.Make().String(),
		From:   from,
		To:     to,
		Body:   body,
		SentAt: now,
	}, from, to)
	e.Timestamp = now
	n.pending = append(n.pending, e)
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
	return e, nil
}

// Subscribe registers interest of clientID in the events matching filter.
func (n *Notifier) Subscribe(clientID string, filter Filter) (*Subscription, error) {
	clientID = strings.TrimSpace(clientID)
	if err := requireValue("clientID", clientID); err != nil {
		return nil, err
	}
	if filter == nil {
		return nil, errs.NewValueIsRequiredError("filter")
	}

	sub := &Subscription{
		id:       ulid.Make().String(),
		clientID: clientID,
		filter:   filter,
		events:   make(chan Event, n.bufferSize),
		notifier: n,
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return nil, ErrNotifierStopped
	}
	n.subscribers[sub.id] = sub
	n.setSubscribersLocked()

	n.logger.Debug("client subscribed", "client_id", clientID, "subscription_id", sub.id)
	return sub, nil
}

// Unsubscribe removes a subscription and closes its channel. Unknown ids are ignored.
func (n *Notifier) Unsubscribe(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if sub, ok := n.subscribers[id]; ok {
		n.dropLocked(sub, ErrSubscriptionClosed)
	}
}

// Subscribers returns the number of live subscriptions.
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subscribers)
}

// Run delivers queued events until ctx is done, then closes every
// subscription with ErrNotifierStopped. Events still queued at that point
// are discarded.
func (n *Notifier) Run(ctx context.Context) error {
	n.logger.InfoContext(ctx, "notifier started", "buffer_size", n.bufferSize)

	for {
		select {
		case <-ctx.Done():
			n.stop()
			n.logger.InfoContext(ctx, "notifier stopped")
			return nil
		case <-n.wake:
			n.deliver()
		}
	}
}

// deliver drains the queue, one batch at a time, under the lock so that
// Unsubscribe cannot close a channel mid-send.
func (n *Notifier) deliver() {
	n.mu.Lock()
	defer n.mu.Unlock()

	batch := n.pending
	n.pending = nil

	for _, e := range batch {
		if n.observer != nil {
			n.observer.EventPublished(string(e.Kind))
		}
		for _, sub := range n.subscribers {
			if !sub.filter.Match(e) {
				continue
			}
			select {
			case sub.events <- e:
			default:
				n.logger.Warn("dropping slow subscriber",
					"client_id", sub.clientID,
					"subscription_id", sub.id,
					"entity_id", e.EntityID,
					"sequence", e.Sequence,
				)
				n.dropLocked(sub, ErrSubscriberOverflow)
				if n.observer != nil {
					n.observer.SubscriberDropped()
				}
			}
		}
	}
}

func (n *Notifier) stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopped = true
	n.pending = nil
	for _, sub := range n.subscribers {
		n.dropLocked(sub, ErrNotifierStopped)
	}
}

func (n *Notifier) dropLocked(sub *Subscription, reason error) {
	delete(n.subscribers, sub.id)
	sub.closeLocked(reason)
	n.setSubscribersLocked()
}

func (n *Notifier) setSubscribersLocked() {
	if n.observer != nil {
		n.observer.SetSubscribers(len(n.subscribers))
	}
}

func requireValue(name, value string) error {
	if value == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
