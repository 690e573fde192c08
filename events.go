package hxpager

import (
	"context"

	"github.com/pthm/hxpager/lib/rx"
)

// WillTransitionEvent is published before a gesture-driven transition.
type WillTransitionEvent[P comparable] struct {
	Host    Host[P]
	Pending []P
}

// DidFinishAnimatingEvent is published after a gesture-driven transition.
type DidFinishAnimatingEvent[P comparable] struct {
	Host      Host[P]
	Finished  bool
	Previous  []P
	Completed bool
}

// Reactive exposes a host's lifecycle notifications as streams and its
// lifecycle queries as settable relays. It is a thin view over the host's
// DelegateProxy, which it installs on first use.
//
//	hxpager.Rx(host).DidFinishAnimating().Subscribe(rx.ObserverFuncs[hxpager.DidFinishAnimatingEvent[*Page]]{
//	    Next: func(e hxpager.DidFinishAnimatingEvent[*Page]) { ... },
//	})
//	hxpager.Rx(host).SupportedOrientations().Accept(hxpager.OrientationMaskPortrait)
type Reactive[P comparable] struct {
	host Host[P]
}

// Rx returns the reactive view of host.
func Rx[P comparable](host Host[P]) Reactive[P] {
	return Reactive[P]{host: host}
}

// Delegate returns the host's delegate proxy.
func (r Reactive[P]) Delegate() *DelegateProxy[P] {
	return DelegateProxyFor(r.host)
}

// WillTransition streams will-transition notifications. The stream completes
// when the host is torn down.
func (r Reactive[P]) WillTransition() rx.Observable[WillTransitionEvent[P]] {
	return r.Delegate().willTransitionEvents()
}

// DidFinishAnimating streams did-finish-animating notifications. The stream
// completes when the host is torn down.
func (r Reactive[P]) DidFinishAnimating() rx.Observable[DidFinishAnimatingEvent[P]] {
	return r.Delegate().didFinishAnimatingEvents()
}

// SpineLocation is the relay answering spine-location queries.
func (r Reactive[P]) SpineLocation() *rx.Relay[SpineLocation] {
	return r.Delegate().spineLocation
}

// SupportedOrientations is the relay answering supported-orientation queries.
func (r Reactive[P]) SupportedOrientations() *rx.Relay[OrientationMask] {
	return r.Delegate().supportedOrientations
}

// PreferredOrientation is the relay answering preferred-orientation queries.
func (r Reactive[P]) PreferredOrientation() *rx.Relay[Orientation] {
	return r.Delegate().preferredOrientation
}

// Items returns a binder for ds on this host.
//
//	hxpager.Rx(host).Items(ds).BindUpdates(ctx, pages, hxpager.ShowLast[*Page]())
func (r Reactive[P]) Items(ds *ReactiveDataSource[P]) Items[P] {
	return Items[P]{host: r.host, ds: ds}
}

// Items binds page-list streams to one host and data source.
type Items[P comparable] struct {
	host Host[P]
	ds   *ReactiveDataSource[P]
}

// Bind is Bind for the captured host and data source.
func (it Items[P]) Bind(ctx context.Context, source rx.Observable[[]P], opts ...BindOption) *Binding {
	return Bind(ctx, it.host, source, it.ds, opts...)
}

// BindUpdates is BindUpdates for the captured host and data source.
func (it Items[P]) BindUpdates(ctx context.Context, source rx.Observable[[]P], onUpdate UpdateHandler[P], opts ...BindOption) *Binding {
	return BindUpdates(ctx, it.host, source, it.ds, onUpdate, opts...)
}

// BindAll is BindAll for the captured host and data source.
func (it Items[P]) BindAll(ctx context.Context, source rx.Observable[[]P], onUpdate UpdateHandler[P], opts ...BindOption) *Binding {
	return BindAll(ctx, it.host, source, it.ds, onUpdate, opts...)
}
