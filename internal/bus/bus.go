// Package bus provides a typed multi-producer/multi-consumer broadcast
// channel with bounded per-subscriber queues. Producers observe real
// hardware and OS activity and must never stall: when a subscriber's
// queue is full the oldest unconsumed value is dropped and counted
// instead of blocking the publisher.
package bus

import (
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the per-subscriber queue capacity used by Subscribe.
const DefaultQueueSize = 256

// Bus is a broadcast channel for values of type T. Each subscriber has an
// independent FIFO queue, so one slow subscriber cannot starve another.
// No ordering guarantee is made across subscribers beyond per-subscriber
// publish order.
type Bus[T any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	closed bool
	onDrop func(n int)
}

// Subscription is a live subscriber handle. Receive from C until it is
// closed; after Unsubscribe the queue drains and then C closes.
type Subscription[T any] struct {
	ch      chan T
	dropped atomic.Uint64
}

// New creates a bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[*Subscription[T]]struct{})}
}

// OnDrop registers a hook invoked with the number of values dropped on
// each overflow. Used to feed metrics.
func (b *Bus[T]) OnDrop(fn func(n int)) {
	b.mu.Lock()
	b.onDrop = fn
	b.mu.Unlock()
}

// Subscribe registers a subscriber with the default queue capacity.
func (b *Bus[T]) Subscribe() *Subscription[T] {
	return b.SubscribeBuffered(DefaultQueueSize)
}

// SubscribeBuffered registers a subscriber with an explicit queue capacity.
// The subscription receives every value published after registration.
func (b *Bus[T]) SubscribeBuffered(capacity int) *Subscription[T] {
	if capacity < 1 {
		capacity = 1
	}
	s := &Subscription[T]{ch: make(chan T, capacity)}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(s.ch)
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Unsubscribe releases the handle. Values already queued are still
// delivered until the queue drains, then C closes.
func (b *Bus[T]) Unsubscribe(s *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	close(s.ch)
}

// Publish delivers v to every live subscriber without blocking. A full
// subscriber queue sheds its oldest value first.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		select {
		case s.ch <- v:
			continue
		default:
		}
		// Queue full: shed the oldest value, then enqueue. The receiver
		// may race a pop here; either way there is room afterwards.
		select {
		case <-s.ch:
			s.dropped.Add(1)
			if b.onDrop != nil {
				b.onDrop(1)
			}
		default:
		}
		select {
		case s.ch <- v:
		default:
		}
	}
}

// Close stops delivery and closes every subscriber channel. Queued values
// drain before consumers observe the close, so a clean shutdown loses
// nothing.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
	}
	b.subs = make(map[*Subscription[T]]struct{})
}

// SubscriberCount returns the number of live subscribers.
func (b *Bus[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// C returns the receive channel. It closes after Unsubscribe or Close
// once queued values have been consumed.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Dropped returns the number of values shed from this subscriber's queue.
func (s *Subscription[T]) Dropped() uint64 {
	return s.dropped.Load()
}
