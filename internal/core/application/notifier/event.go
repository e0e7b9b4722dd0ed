package notifier

import (
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind is the type of entity an event describes.
type Kind string

const (
	KindOrder   Kind = "order"
	KindVehicle Kind = "vehicle"
	KindDriver  Kind = "driver"
	KindMessage Kind = "message"
)

// Event is one change delivered to subscribers.
//
// Sequence increases strictly per (Kind, EntityID). For orders, vehicles and
// drivers it is the entity version, so it survives restarts; for messages it
// counts per conversation. A subscriber that sees a gap resynchronises by
// reading the entity.
//
// Parties lists the user ids the change concerns beyond the entity itself,
// e.g. the drivers of an order before and after the change. Driver-scoped
// filters match on it.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	EntityID  string    `json:"entityId"`
	Sequence  int64     `json:"sequence"`
	Snapshot  any       `json:"snapshot,omitempty"`
	Deleted   bool      `json:"deleted,omitempty"`
	Parties   []string  `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds an entity change event with a fresh id and the current time.
func NewEvent(kind Kind, entityID string, sequence int64, snapshot any, parties ...string) Event {
	return Event{
		ID:        ulid.Make().String(),
		Kind:      kind,
		EntityID:  entityID,
		Sequence:  sequence,
		Snapshot:  snapshot,
		Parties:   compactParties(parties),
		Timestamp: time.Now().UTC(),
	}
}

// NewDeletedEvent builds the event announcing that an entity is gone.
func NewDeletedEvent(kind Kind, entityID string, sequence int64, parties ...string) Event {
	e := NewEvent(kind, entityID, sequence, nil, parties...)
	e.Deleted = true
	return e
}

// Concerns reports whether the event is about userID, either as the entity
// itself or as one of its parties.
func (e Event) Concerns(userID string) bool {
	return e.EntityID == userID || slices.Contains(e.Parties, userID)
}

// Message is the snapshot of a chat message event.
type Message struct {
	ID     string    `json:"id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sentAt"`
}

// ConversationKey identifies the conversation between two users regardless
// of who writes first.
func ConversationKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

func compactParties(parties []string) []string {
	result := make([]string, 0, len(parties))
	for _, p := range parties {
		if p = strings.TrimSpace(p); p != "" && !slices.Contains(result, p) {
			result = append(result, p)
		}
	}
	return result
}
