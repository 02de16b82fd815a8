// Package bus carries the process-wide "items changed" signal. Every
// component that mutates the catalog publishes after a successful write;
// every mounted view subscribes and re-fetches its own slice of the store in
// response. The signal has no payload and no delivery guarantee beyond
// best-effort synchronous dispatch, and bursts are not coalesced.
package bus

import "sync"

// Bus is an injectable publish/subscribe service for the change signal.
type Bus struct {
	mu   sync.Mutex
	subs map[int]func()
	next int
}

func New() *Bus {
	return &Bus{subs: make(map[int]func())}
}

// Subscribe registers a handler and returns its unsubscribe function. The
// returned function is idempotent; callers tie it to their mount/unmount
// lifetime so handlers never outlive their view.
func (b *Bus) Subscribe(fn func()) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish dispatches the change signal to all current subscribers. Handlers
// run synchronously on the caller's goroutine; a publish with no subscribers
// is a no-op.
func (b *Bus) Publish() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// subscriberCount returns the number of active subscriptions.
func (b *Bus) subscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
