package notifier

import (
	"errors"
	"strings"
	"sync"
)

// ErrSessionClosed is returned by Subscribe on a closed session.
var ErrSessionClosed = errors.New("session closed")

// Session scopes subscriptions to one client login. Everything subscribed
// through a session ends when the session is closed.
type Session struct {
	clientID string
	notifier *Notifier

	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

// Connect opens a session for clientID.
func (n *Notifier) Connect(clientID string) (*Session, error) {
	clientID = strings.TrimSpace(clientID)
	if err := requireValue("clientID", clientID); err != nil {
		return nil, err
	}
	return &Session{clientID: clientID, notifier: n}, nil
}

func (s *Session) ClientID() string {
	return s.clientID
}

// Subscribe adds a subscription to the session.
func (s *Session) Subscribe(filter Filter) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	sub, err := s.notifier.Subscribe(s.clientID, filter)
	if err != nil {
		return nil, err
	}
	s.subs = append(s.subs, sub)
	return sub, nil
}

// Close ends every subscription of the session. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		sub.Close()
	}
	s.subs = nil
}
