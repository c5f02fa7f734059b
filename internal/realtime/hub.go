// Package realtime fans Postgres notifications out to connected clients.
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

type subscriber struct {
	ch chan []byte
}

// Hub keeps the live subscribers of each user. Publishing never blocks: a
// subscriber whose buffer is full misses the message.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[*subscriber]struct{})}
}

// Subscribe registers a listener for userID. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan []byte, func()) {
	sub := &subscriber{ch: make(chan []byte, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			set, ok := h.subs[userID]
			if !ok {
				return
			}
			if _, live := set[sub]; !live {
				return
			}
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
			close(sub.ch)
		})
	}
}

// CloseAll ends every subscription, which lets open streams return during
// shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.subs {
		for sub := range set {
			close(sub.ch)
		}
		delete(h.subs, userID)
	}
}

// Publish delivers payload to every subscriber of userID and returns how
// many received it.
func (h *Hub) Publish(userID uuid.UUID, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subs[userID] {
		select {
		case sub.ch <- payload:
			delivered++
		default:
		}
	}
	return delivered
}

// Count returns the number of open subscriptions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}
