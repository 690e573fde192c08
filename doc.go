// Package hxpager binds reactive page lists to a paginator host.
//
// A host is anything that shows one page at a time and asks a data source
// for the neighbours of the displayed page. The package wires an observable
// stream of page lists into such a host and keeps the displayed page in step
// with the list.
//
// # Data sources
//
// ReactiveDataSource holds the current page list and answers the host's
// neighbour and indicator queries. Navigation is governed by a
// TransitionOption:
//
//	hxpager.Bounded[*Page]()   // stops at both ends (default)
//	hxpager.Circular[*Page]()  // wraps around
//	hxpager.CustomTransition(next, prev)
//
// The page indicator is governed by an IndicatorOption:
//
//	hxpager.Automatic[*Page]() // one dot per page (default)
//	hxpager.Hidden[*Page]()
//	hxpager.CustomIndicator(count, index)
//
// # Binding
//
// Bind subscribes a host to a page list stream:
//
//	ds := hxpager.NewReactiveDataSource(hxpager.Circular[*Page](), hxpager.Automatic[*Page]())
//	b := hxpager.Rx[*Page](host).Items(ds).BindUpdates(ctx, pages, hxpager.ShowLast[*Page]())
//	defer b.Dispose()
//
// The first emission displays the first page without animation. BindUpdates
// calls its handler for every later emission, BindAll for every emission.
// A binding ends when ctx is cancelled, the host is torn down, the stream
// completes or fails, Dispose is called, or another binding replaces it.
//
// Binding errors are wrapped in ErrBinding. In debug mode they panic;
// otherwise they are logged.
//
// # Delegate events
//
// Rx(host) also exposes the host's delegate callbacks as observables. A
// DelegateProxy is installed on the host once and forwards every callback to
// any delegate that was there before:
//
//	hxpager.Rx[*Page](host).DidFinishAnimating().Subscribe(observer)
//
// # Hosts
//
// Package hxhost provides an HTMX paginator host that renders pages as templ
// components. TestHost is an in-memory host for tests.
package hxpager
