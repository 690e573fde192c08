// Package rx is the small push-based stream runtime hxpager binds page lists
// through.
//
// It only covers what a host paginator binding needs: a cold or hot
// Observable that pushes values to an Observer until it completes or fails,
// a Disposable to stop delivery, a Subject for hot event streams, a Relay for
// settable single-value streams that can be read synchronously, and a
// Scheduler that serializes work onto one execution context.
//
//	pages := rx.NewRelay([]*Page{first})
//	sub := pages.Subscribe(rx.ObserverFuncs[[]*Page]{
//	    Next: func(ps []*Page) { fmt.Println(len(ps)) },
//	})
//	defer sub.Dispose()
//
// Any other reactive runtime can be plugged in by implementing Observable.
package rx
