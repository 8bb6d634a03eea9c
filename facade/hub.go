package facade

import (
	"sync"

	"github.com/kbukum/exportkit/logger"
)

// Hub delivers ExportsChangedEvent to subscribers synchronously on the
// publishing goroutine.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(ExportsChangedEvent)
	order  []int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(ExportsChangedEvent))}
}

// Subscribe registers fn and returns a function removing it.
func (h *Hub) Subscribe(fn func(ExportsChangedEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			for i, o := range h.order {
				if o == id {
					h.order = append(h.order[:i], h.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers ev to every subscriber in subscription order. A panicking
// subscriber is logged and does not stop delivery.
func (h *Hub) Publish(ev ExportsChangedEvent) {
	h.mu.RLock()
	subs := make([]func(ExportsChangedEvent), 0, len(h.order))
	for _, id := range h.order {
		subs = append(subs, h.subs[id])
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		deliver(fn, ev)
	}
}

func deliver(fn func(ExportsChangedEvent), ev ExportsChangedEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get("facade").Error("ExportsChanged subscriber panicked", logger.Fields("panic", r))
		}
	}()
	fn(ev)
}
