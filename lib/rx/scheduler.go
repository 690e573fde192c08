package rx

import "sync"

// Scheduler runs work on a particular execution context.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// Schedule calls f.
func (f SchedulerFunc) Schedule(fn func()) {
	f(fn)
}

// Immediate runs work inline on the caller's goroutine.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })

// SerialQueue runs scheduled work one item at a time, in submission order, on
// a single dedicated goroutine. It is the execution context a host paginator
// drives its UI from.
type SerialQueue struct {
	mu      sync.Mutex
	tasks   []func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool
}

// NewSerialQueue starts a queue. Call Stop to release its goroutine.
func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	go q.run()

	return q
}

// Schedule enqueues fn. Work scheduled after Stop is dropped.
func (q *SerialQueue) Schedule(fn func()) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Sync runs fn on the queue and waits for it to return. It returns false
// without running fn if the queue is stopped.
//
// Sync must not be called from work already running on the queue.
func (q *SerialQueue) Sync(fn func()) bool {
	ran := make(chan struct{})
	q.Schedule(func() {
		defer close(ran)
		fn()
	})

	select {
	case <-ran:
		return true
	case <-q.done:
		return false
	}
}

// Flush waits until everything scheduled before the call has run.
func (q *SerialQueue) Flush() {
	q.Sync(func() {})
}

// Stop drops pending work and ends the queue goroutine.
func (q *SerialQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	q.stopped = true
	q.tasks = nil
	close(q.done)
}

func (q *SerialQueue) run() {
	for {
		select {
		case <-q.done:
			return
		case <-q.wake:
		}

		for {
			fn, ok := q.pop()
			if !ok {
				break
			}
			fn()
		}
	}
}

func (q *SerialQueue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || len(q.tasks) == 0 {
		return nil, false
	}
	fn := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return fn, true
}
