// Package state holds the reactive, process-local state read and mutated by
// the front-end layer: the selected file and the polled task progress.
//
// Each holder wraps a [Cell]. Setters replace the value wholesale and notify
// subscribers synchronously on the caller's goroutine.
package state

import "sync"

// Cell is a value with synchronous change notification.
type Cell[T any] struct {
	mu          sync.RWMutex
	value       T
	nextID      int
	subscribers []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// NewCell returns a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.value
}

// Set replaces the value and notifies every subscriber with it.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()

	c.notify(v)
}

// Update applies fn to the current value and stores the result. The read and
// the write happen under one lock.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	v := fn(c.value)
	c.value = v
	c.mu.Unlock()

	c.notify(v)
}

// Subscribe registers fn to run after every change. The returned function
// removes the subscription; calling it more than once is a no-op.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subscribers = append(c.subscribers, subscriber[T]{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			for i, s := range c.subscribers {
				if s.id == id {
					c.subscribers = append(c.subscribers[:i:i], c.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// notify runs subscribers outside the lock so they may read or set the cell.
func (c *Cell[T]) notify(v T) {
	c.mu.RLock()
	subs := make([]subscriber[T], len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.RUnlock()

	for _, s := range subs {
		s.fn(v)
	}
}
