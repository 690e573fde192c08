package rx

import "sync"

// Just emits values in order and completes, synchronously during Subscribe.
func Just[T any](values ...T) Observable[T] {
	return ObservableFunc[T](func(o Observer[T]) Disposable {
		for _, v := range values {
			o.OnNext(v)
		}
		o.OnComplete()
		return Nop
	})
}

// Fail emits values in order and then terminates with err.
func Fail[T any](err error, values ...T) Observable[T] {
	return ObservableFunc[T](func(o Observer[T]) Disposable {
		for _, v := range values {
			o.OnNext(v)
		}
		o.OnError(err)
		return Nop
	})
}

// Never emits nothing and never terminates.
func Never[T any]() Observable[T] {
	return ObservableFunc[T](func(Observer[T]) Disposable {
		return Nop
	})
}

// FromChannel emits every value received on values. The stream completes when
// values is closed and fails with the first error received on errs. errs may
// be nil.
//
// Each subscription starts its own reader goroutine, so values should only be
// subscribed to once.
func FromChannel[T any](values <-chan T, errs <-chan error) Observable[T] {
	return ObservableFunc[T](func(o Observer[T]) Disposable {
		done := make(chan struct{})
		var once sync.Once

		go func() {
			for {
				select {
				case <-done:
					return
				case v, ok := <-values:
					if !ok {
						o.OnComplete()
						return
					}
					select {
					case <-done:
						return
					default:
					}
					o.OnNext(v)
				case err := <-errs:
					o.OnError(err)
					return
				}
			}
		}()

		return DisposableFunc(func() {
			once.Do(func() { close(done) })
		})
	})
}

// ObserveOn re-delivers every event of src on the given scheduler, preserving
// arrival order.
func ObserveOn[T any](src Observable[T], s Scheduler) Observable[T] {
	return ObservableFunc[T](func(o Observer[T]) Disposable {
		return src.Subscribe(ObserverFuncs[T]{
			Next:     func(v T) { s.Schedule(func() { o.OnNext(v) }) },
			Error:    func(err error) { s.Schedule(func() { o.OnError(err) }) },
			Complete: func() { s.Schedule(o.OnComplete) },
		})
	})
}
