// Package broadcast provides a latest-value property with subscriptions.
//
// One producer calls Update; any number of consumers Subscribe. A new
// subscriber immediately receives the current value, and a slow subscriber
// only ever sees the most recent value it has not consumed yet.
package broadcast

import (
	"context"
	"sync"
)

// Property holds a value of type T and notifies subscribers of changes.
// The zero value is not usable; call NewProperty.
type Property[T any] struct {
	mu    sync.RWMutex
	value T
	subs  map[chan T]struct{}
}

// NewProperty returns a property holding initial.
func NewProperty[T any](initial T) *Property[T] {
	return &Property[T]{
		value: initial,
		subs:  make(map[chan T]struct{}),
	}
}

// Value returns the current value.
func (p *Property[T]) Value() T {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.value
}

// Update stores v and hands it to every subscriber, replacing any value
// the subscriber has not received yet.
func (p *Property[T]) Update(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.value = v

	for ch := range p.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel that yields the current value first and then
// every later one. The channel is closed once ctx is done.
func (p *Property[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	p.mu.Lock()
	ch <- p.value
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()

		p.mu.Lock()
		delete(p.subs, ch)
		close(ch)
		p.mu.Unlock()
	}()

	return ch
}

// Subscribers reports the number of live subscriptions.
func (p *Property[T]) Subscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.subs)
}

// offer replaces the buffered value of ch with v. Callers hold p.mu, so
// ch has no other sender.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}

	ch <- v
}
