// Package events fans out cart-changed notifications inside one process.
package events

import "sync"

// CartChanged is delivered to subscribers of an owner after each cart mutation.
type CartChanged struct {
	Owner string `json:"owner"`
	Count int    `json:"count"`
}

// Notifier is an in-memory pub/sub keyed by cart owner (guest id or user id).
// Slow subscribers only see the latest event; Publish never blocks.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan CartChanged
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[int]chan CartChanged)}
}

// Subscribe returns a channel of events for owner and a cancel func that
// closes it. cancel is safe to call more than once.
func (n *Notifier) Subscribe(owner string) (<-chan CartChanged, func()) {
	ch := make(chan CartChanged, 1)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	if n.subs[owner] == nil {
		n.subs[owner] = make(map[int]chan CartChanged)
	}
	n.subs[owner][id] = ch
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[owner], id)
			if len(n.subs[owner]) == 0 {
				delete(n.subs, owner)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (n *Notifier) Publish(ev CartChanged) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[ev.Owner] {
		select {
		case ch <- ev:
		default:
			// drop the stale event and keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Subscribers reports how many listeners owner has.
func (n *Notifier) Subscribers(owner string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[owner])
}
