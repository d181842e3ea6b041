package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
)

// Broadcaster delivers published values to every live subscription.
// All methods are safe for concurrent use. The zero value is not usable.
type Broadcaster[T any] struct {
	mu     sync.RWMutex
	subs   map[*Subscription[T]]struct{}
	buffer int
	closed bool
}

// New creates a broadcaster whose subscriptions buffer up to buffer values
// (minimum 1).
func New[T any](buffer int) *Broadcaster[T] {
	return &Broadcaster[T]{
		subs:   make(map[*Subscription[T]]struct{}),
		buffer: max(buffer, 1),
	}
}

// Subscription is a single consumer's view of a Broadcaster.
type Subscription[T any] struct {
	mu      sync.Mutex
	ch      chan T
	closed  bool
	dropped atomic.Uint64
	owner   *Broadcaster[T]
}

// C returns the channel values arrive on. It is closed when the
// subscription ends.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Dropped reports how many values were discarded because the buffer was full.
func (s *Subscription[T]) Dropped() uint64 {
	return s.dropped.Load()
}

// Close ends the subscription. Safe to call more than once.
func (s *Subscription[T]) Close() {
	if s.owner != nil {
		s.owner.remove(s)
	}
	s.shut()
}

func (s *Subscription[T]) shut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *Subscription[T]) offer(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- v:
	default:
		s.dropped.Add(1)
	}
}

// Subscribe registers a new subscription that lives until ctx is done or
// Close is called. Subscribing to a closed broadcaster yields a closed
// subscription.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) *Subscription[T] {
	sub := &Subscription[T]{ch: make(chan T, b.buffer), owner: b}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.shut()
		return sub
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			sub.Close()
		}()
	}
	return sub
}

// Publish offers v to every subscription without blocking.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for sub := range b.subs {
		sub.offer(v)
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription. Later Publish calls are no-ops.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[*Subscription[T]]struct{})
	b.mu.Unlock()

	for sub := range subs {
		sub.shut()
	}
}

func (b *Broadcaster[T]) remove(sub *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub)
}
