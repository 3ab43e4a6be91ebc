// Package broadcast implements a multi-subscriber fan-out stream.
//
// Each subscriber gets its own unbounded queue, so publishing never blocks
// the producer and slow subscribers never consume each other's values.
// Values are delivered to every subscriber in publish order.
package broadcast

import "sync"

type Stream[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber[T]
	nextID uint64
	closed bool
}

func NewStream[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[uint64]*subscriber[T])}
}

// Publish queues value for every current subscriber. It is a no-op after
// Close.
func (s *Stream[T]) Publish(value T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	subs := make([]*subscriber[T], 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.push(value)
	}
}

// Subscribe registers a new subscriber and returns its receive channel along
// with a cancel function. The channel is closed when the subscriber cancels
// or the stream is closed; cancelling does not require draining first.
func (s *Stream[T]) Subscribe() (<-chan T, func()) {
	sub := newSubscriber[T]()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		closed := make(chan T)
		close(closed)
		return closed, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.mu.Unlock()

	go sub.run()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		sub.stop()
	}
	return sub.ch, cancel
}

// Close terminates the stream and closes every subscriber channel. Pending
// values that subscribers have not yet received are discarded.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

type subscriber[T any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue []T
	done  bool

	stopped chan struct{}
	once    sync.Once
	ch      chan T
}

func newSubscriber[T any]() *subscriber[T] {
	sub := &subscriber[T]{
		stopped: make(chan struct{}),
		ch:      make(chan T),
	}
	sub.cond = sync.NewCond(&sub.mu)
	return sub
}

func (s *subscriber[T]) push(value T) {
	s.mu.Lock()
	if !s.done {
		s.queue = append(s.queue, value)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *subscriber[T]) stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.done = true
		s.mu.Unlock()
		close(s.stopped)
		s.cond.Signal()
	})
}

func (s *subscriber[T]) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.done {
			s.cond.Wait()
		}
		if s.done {
			s.mu.Unlock()
			close(s.ch)
			return
		}
		value := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.ch <- value:
		case <-s.stopped:
			close(s.ch)
			return
		}
	}
}
