package service

import "sync"

// EventSessionsChanged signals that session history changed and
// sidebar-style listeners should refresh.
const EventSessionsChanged = "sessions-changed"

// Notifier fans out-of-band notifications out to subscribers. Slow
// subscribers drop events rather than blocking a turn.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]chan string
	next int
}

// NewNotifier creates a notifier with no subscribers
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan string)}
}

// Subscribe registers a listener. The returned cancel func must be called
// to release the subscription.
func (n *Notifier) Subscribe() (<-chan string, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan string, 8)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking
func (n *Notifier) Publish(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
