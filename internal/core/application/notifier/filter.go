package notifier

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Filter selects the events a subscription receives.
type Filter interface {
	Match(e Event) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(e Event) bool

func (f FilterFunc) Match(e Event) bool {
	return f(e)
}

// All matches every entity change event. Chat messages are private and are
// only delivered through Conversation or Mine.
func All() Filter {
	return FilterFunc(func(e Event) bool {
		return e.Kind != KindMessage
	})
}

// Kinds matches events of the given kinds.
func Kinds(kinds ...Kind) Filter {
	return FilterFunc(func(e Event) bool {
		return slices.Contains(kinds, e.Kind) && e.Kind != KindMessage
	})
}

// Entity matches the events of a single entity.
func Entity(kind Kind, id string) Filter {
	return FilterFunc(func(e Event) bool {
		return e.Kind == kind && e.EntityID == id
	})
}

// Mine matches what a driver needs to see: their own record, every order
// they are or were just assigned to and their messages.
func Mine(userID string) Filter {
	return FilterFunc(func(e Event) bool {
		return e.Concerns(userID)
	})
}

// Conversation matches the messages exchanged between two users.
func Conversation(userA, userB string) Filter {
	key := ConversationKey(userA, userB)
	return FilterFunc(func(e Event) bool {
		return e.Kind == KindMessage && e.EntityID == key
	})
}

// AnyOf matches an event when any of its filters does. Filters can be added
// while a subscription uses it, so one subscription can widen instead of a
// second one delivering the same events again.
type AnyOf struct {
	mu      sync.RWMutex
	filters []Filter
}

func NewAnyOf(filters ...Filter) *AnyOf {
	return &AnyOf{filters: slices.Clone(filters)}
}

// Add widens the filter. Events already delivered are not replayed.
func (a *AnyOf) Add(f Filter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filters = append(a.filters, f)
}

func (a *AnyOf) Match(e Event) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, f := range a.filters {
		if f.Match(e) {
			return true
		}
	}
	return false
}

// ParseFilter builds a filter from its query form for the given user:
// "all", "mine", "<kind>:<id>" or "conversation:<otherUserId>".
// An empty expression means "all".
func ParseFilter(expr, userID string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "", "all":
		return All(), nil
	case "mine":
		return Mine(userID), nil
	}

	kind, id, ok := strings.Cut(expr, ":")
	if !ok || id == "" {
		return nil, fmt.Errorf("unknown filter %q", expr)
	}
	switch Kind(kind) {
	case KindOrder, KindVehicle, KindDriver:
		return Entity(Kind(kind), id), nil
	}
	if kind == "conversation" {
		return Conversation(userID, id), nil
	}
	return nil, fmt.Errorf("unknown filter kind %q", kind)
}
