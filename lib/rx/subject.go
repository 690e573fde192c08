package rx

import (
	"slices"
	"sync"
)

// Subject is a hot stream: every value passed to OnNext is broadcast to the
// observers subscribed at that moment. Observers that subscribe after a
// terminal event receive that event immediately.
//
// Observers are called without the subject's lock held, so they may dispose
// their own subscription or subscribe new observers from inside a callback.
type Subject[T any] struct {
	mu        sync.Mutex
	observers map[uint64]Observer[T]
	nextID    uint64
	stopped   bool
	err       error
}

// NewSubject creates an empty Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{observers: make(map[uint64]Observer[T])}
}

// Subscribe adds o to the subject.
func (s *Subject[T]) Subscribe(o Observer[T]) Disposable {
	s.mu.Lock()
	if s.stopped {
		err := s.err
		s.mu.Unlock()
		if err != nil {
			o.OnError(err)
		} else {
			o.OnComplete()
		}
		return Nop
	}
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.mu.Unlock()

	var once sync.Once
	return DisposableFunc(func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	})
}

// OnNext broadcasts v. It is ignored once the subject has terminated.
func (s *Subject[T]) OnNext(v T) {
	for _, o := range s.snapshot(false, nil) {
		o.OnNext(v)
	}
}

// OnError terminates the subject with err.
func (s *Subject[T]) OnError(err error) {
	for _, o := range s.snapshot(true, err) {
		o.OnError(err)
	}
}

// OnComplete terminates the subject normally.
func (s *Subject[T]) OnComplete() {
	for _, o := range s.snapshot(true, nil) {
		o.OnComplete()
	}
}

// HasObservers reports whether anyone is subscribed.
func (s *Subject[T]) HasObservers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers) > 0
}

// snapshot copies the current observers in subscription order. When
// terminate is set the subject is stopped and its observers released.
func (s *Subject[T]) snapshot(terminate bool, err error) []Observer[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}

	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Observer[T], 0, len(ids))
	for _, id := range ids {
		out = append(out, s.observers[id])
	}

	if terminate {
		s.stopped = true
		s.err = err
		s.observers = nil
	}
	return out
}
