package notifier

// Subscription is a registered interest in events. Events arrive on the
// channel returned by Events, which is closed when the subscription ends;
// Err then tells why.
type Subscription struct {
	id       string
	clientID string
	filter   Filter
	events   chan Event
	notifier *Notifier

	// guarded by notifier.mu
	closed bool
	err    error
}

func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) ClientID() string {
	return s.clientID
}

// Events returns the delivery channel.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Err returns nil while the subscription is live, otherwise the reason it ended.
func (s *Subscription) Err() error {
	s.notifier.mu.Lock()
	defer s.notifier.mu.Unlock()
	return s.err
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.notifier.Unsubscribe(s.id)
}

func (s *Subscription) closeLocked(reason error) {
	if s.closed {
		return
	}
	s.closed = true
	s.err = reason
	close(s.events)
}
