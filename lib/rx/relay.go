package rx

import "sync"

// Relay holds a single current value. Subscribers receive the current value
// immediately and then every accepted value. A relay never terminates, so
// readers can always query Value synchronously.
//
// Accept and Subscribe are serialized, so a subscriber sees every value
// accepted after the one it was seeded with. Observers must not call Accept
// on the relay they observe from inside OnNext.
type Relay[T any] struct {
	gate    sync.Mutex
	mu      sync.RWMutex
	value   T
	subject *Subject[T]
}

// NewRelay creates a relay holding initial.
func NewRelay[T any](initial T) *Relay[T] {
	return &Relay[T]{value: initial, subject: NewSubject[T]()}
}

// Value returns the current value.
func (r *Relay[T]) Value() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Accept replaces the current value and broadcasts it.
func (r *Relay[T]) Accept(v T) {
	r.gate.Lock()
	defer r.gate.Unlock()

	r.mu.Lock()
	r.value = v
	r.mu.Unlock()
	r.subject.OnNext(v)
}

// Subscribe delivers the current value to o and then follows updates.
func (r *Relay[T]) Subscribe(o Observer[T]) Disposable {
	r.gate.Lock()
	defer r.gate.Unlock()

	o.OnNext(r.Value())
	return r.subject.Subscribe(o)
}
