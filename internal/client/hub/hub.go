// Package hub is a single-writer, multi-reader broadcast primitive.
//
// A Broadcaster keeps the latest published value and a set of subscribers.
// Every subscriber owns a one-slot mailbox: a publish that finds an unread
// value replaces it, so slow readers skip intermediate values but never see
// them out of order. A new subscriber is handed the latest value first.
package hub

import (
	"context"
	"iter"
	"sync"
)

// Sequenced values carry a monotonic sequence number.
type Sequenced interface {
	Sequence() uint64
}

type Broadcaster[T Sequenced] struct {
	mu     sync.Mutex
	latest T
	has    bool
	subs   map[uint64]*Subscription[T]
	nextID uint64
	closed bool
}

func New[T Sequenced]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[uint64]*Subscription[T])}
}

// Publish stores v as the latest value and offers it to every subscriber.
// It never blocks on readers.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.latest, b.has = v, true
	for _, s := range b.subs {
		s.offer(v)
	}
}

// Latest returns the most recent value, if any was published.
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.has
}

// Subscribe registers a new subscriber. If a value has been published it is
// already waiting in the mailbox when Subscribe returns.
func (b *Broadcaster[T]) Subscribe() *Subscription[T] {
	s := &Subscription[T]{
		ch:   make(chan T, 1),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		s.close()
		return s
	}
	s.id = b.nextID
	b.nextID++
	s.b = b
	b.subs[s.id] = s
	if b.has {
		s.offer(b.latest)
	}
	return s
}

// Len reports the number of live subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription. Later publishes are ignored and later
// subscriptions are born closed.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		delete(b.subs, id)
		s.close()
	}
}

func (b *Broadcaster[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

type Subscription[T Sequenced] struct {
	b  *Broadcaster[T]
	id uint64

	mu        sync.Mutex
	ch        chan T
	done      chan struct{}
	last      uint64
	delivered bool
	closed    bool
}

// offer puts v in the mailbox, replacing an unread value. Values whose
// sequence does not advance past the last one offered are dropped.
func (s *Subscription[T]) offer(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	seq := v.Sequence()
	if s.delivered && seq <= s.last {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- v
	s.last, s.delivered = seq, true
}

func (s *Subscription[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	select {
	case <-s.ch:
	default:
	}
	close(s.done)
	close(s.ch)
}

// C is the receive side of the mailbox. It is closed on Cancel.
func (s *Subscription[T]) C() <-chan T { return s.ch }

// Done is closed once the subscription has been cancelled or its
// broadcaster closed.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Cancel detaches the subscriber. An undelivered value is dropped. Safe to
// call more than once.
func (s *Subscription[T]) Cancel() {
	if s.b != nil {
		s.b.remove(s.id)
	}
	s.close()
}

// Next blocks until a value arrives, the subscription ends, or ctx is done.
func (s *Subscription[T]) Next(ctx context.Context) (T, bool) {
	var zero T
	select {
	case v, ok := <-s.ch:
		return v, ok
	case <-ctx.Done():
		return zero, false
	}
}

// All exposes the subscription as a lazy sequence that ends with ctx or
// Cancel. Breaking out of the loop cancels the subscription.
func (s *Subscription[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		defer s.Cancel()
		for {
			v, ok := s.Next(ctx)
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Map derives a subscription whose values are fn applied to src's values.
// The value already waiting in src is converted synchronously, so the
// derived subscription also starts with the current state. Cancelling the
// result cancels src.
func Map[S, T Sequenced](src *Subscription[S], fn func(S) T) *Subscription[T] {
	b := New[T]()
	out := b.Subscribe()

	select {
	case v, ok := <-src.C():
		if !ok {
			b.Close()
			return out
		}
		b.Publish(fn(v))
	default:
	}

	go func() {
		defer b.Close()
		defer src.Cancel()
		for {
			select {
			case v, ok := <-src.C():
				if !ok {
					return
				}
				b.Publish(fn(v))
			case <-out.Done():
				return
			}
		}
	}()
	return out
}
