package rx

// Observer receives the events of an Observable.
//
// OnNext may be called any number of times, followed by at most one call to
// either OnError or OnComplete. Nothing is delivered after a terminal event.
type Observer[T any] interface {
	OnNext(T)
	OnError(error)
	OnComplete()
}

// Observable is a source of values that pushes to subscribed observers.
type Observable[T any] interface {
	Subscribe(Observer[T]) Disposable
}

// Disposable cancels a subscription. Dispose is idempotent.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a function to Disposable.
type DisposableFunc func()

// Dispose calls f.
func (f DisposableFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Nop is a Disposable that does nothing.
var Nop Disposable = DisposableFunc(nil)

// ObservableFunc adapts a subscribe function to Observable.
type ObservableFunc[T any] func(Observer[T]) Disposable

// Subscribe calls f.
func (f ObservableFunc[T]) Subscribe(o Observer[T]) Disposable {
	return f(o)
}

// ObserverFuncs builds an Observer from optional callbacks. Nil callbacks
// ignore their event.
type ObserverFuncs[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

func (o ObserverFuncs[T]) OnNext(v T) {
	if o.Next != nil {
		o.Next(v)
	}
}

func (o ObserverFuncs[T]) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

func (o ObserverFuncs[T]) OnComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}
