package docstore

import "sync"

// notifier fans out document events to per-key subscribers. Delivery is
// latest-wins: when a subscriber mailbox is full the oldest pending event is
// dropped, which is safe because every event carries the full document body.
type notifier struct {
	mu   sync.Mutex
	subs map[string]map[int]chan Event
	next int
}

const mailboxSize = 16

func newNotifier() *notifier {
	return &notifier{subs: make(map[string]map[int]chan Event)}
}

// subscribe registers a mailbox for key. The cancel func removes and closes
// it exactly once.
func (n *notifier) subscribe(key string) (chan Event, CancelFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Event, mailboxSize)
	if n.subs[key] == nil {
		n.subs[key] = make(map[int]chan Event)
	}
	id := n.next
	n.next++
	n.subs[key][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if m, ok := n.subs[key]; ok {
				if c, ok := m[id]; ok {
					delete(m, id)
					close(c)
				}
				if len(m) == 0 {
					delete(n.subs, key)
				}
			}
		})
	}
	return ch, cancel
}

// publish delivers an event to all subscribers of its key.
func (n *notifier) publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs[ev.Key] {
		select {
		case ch <- ev:
		default:
			// Mailbox full: drop the stale head, keep the newest state.
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

// closeAll closes every mailbox; used on store Close.
func (n *notifier) closeAll() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for key, m := range n.subs {
		for id, ch := range m {
			delete(m, id)
			close(ch)
		}
		delete(n.subs, key)
	}
}
