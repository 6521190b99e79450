// Package bus provides in-process publish/subscribe topics used to decouple
// the ingestion pipeline from the consumers that react to it.
package bus

import "sync"

// Topic is a typed fan-out channel for one event kind. Subscribers are
// invoked synchronously, in subscription order, on the publisher's
// goroutine.
type Topic[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(T)
}

// Subscribe registers a handler and returns a cancel function that removes
// it. Cancelling twice is harmless.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.subs == nil {
		t.subs = make(map[int]func(T))
	}
	id := t.next
	t.next++
	t.subs[id] = fn

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

// Publish delivers the event to every current subscriber. The subscriber
// list is snapshotted under the lock so handlers may subscribe or cancel
// without deadlocking.
func (t *Topic[T]) Publish(event T) {
	t.mu.Lock()
	handlers := make([]func(T), 0, len(t.subs))
	for id := 0; id < t.next; id++ {
		if fn, ok := t.subs[id]; ok {
			handlers = append(handlers, fn)
		}
	}
	t.mu.Unlock()

	for _, fn := range handlers {
		fn(event)
	}
}

// ImportCompleteEvent is published after every import attempt, including
// ones that processed nothing, so listeners can refresh unconditionally.
type ImportCompleteEvent struct {
	TotalTransactions int
	FilesProcessed    int
}

// CategorizationCompleteEvent is published after a categorization pass.
type CategorizationCompleteEvent struct {
	TotalCategorized int
}

// Bus groups the application's topics.
type Bus struct {
	ImportComplete         Topic[ImportCompleteEvent]
	CategorizationComplete Topic[CategorizationCompleteEvent]
}

// New returns an empty bus ready for subscriptions.
func New() *Bus {
	return &Bus{}
}
