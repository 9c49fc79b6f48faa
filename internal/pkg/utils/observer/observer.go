// Package observer provides a small fan-out hub for progress events.
package observer

import "sync"

// Hub delivers published values to all current subscribers. Delivery happens
// synchronously on the publishing goroutine; subscribers must not assume a
// particular thread identity.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)
}

// NewHub creates an empty Hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[int]func(T))}
}

// Subscribe registers f for future publishes and returns a handle that must
// be used to unsubscribe once the caller is done observing.
func (h *Hub[T]) Subscribe(f func(T)) *Subscription[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = f
	return &Subscription[T]{hub: h, id: id}
}

// Publish delivers v to every current subscriber.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	fns := make([]func(T), 0, len(h.subs))
	for _, f := range h.subs {
		fns = append(fns, f)
	}
	h.mu.Unlock()
	for _, f := range fns {
		f(v)
	}
}

// Subscription is a handle to an active subscription on a Hub.
type Subscription[T any] struct {
	hub  *Hub[T]
	id   int
	once sync.Once
}

// Unsubscribe removes the subscriber from the hub. Safe to call repeatedly.
func (s *Subscription[T]) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subs, s.id)
	})
}
