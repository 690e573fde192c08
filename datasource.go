package hxpager

import (
	"slices"
	"sync/atomic"
)

// ReactiveDataSource implements the page-provider contract over an ordered
// list of pages that is replaced wholesale on every update.
//
// The list is swapped atomically, so a query always sees either the old or
// the new list and never a partial one. Queries and updates are still
// expected to arrive on the host's execution context; the binder marshals
// updates there.
//
//	ds := hxpager.NewReactiveDataSource(hxpager.Circular[*Page](), hxpager.Automatic[*Page]())
//	sub := hxpager.BindUpdates(ctx, host, pages, ds, hxpager.ShowLast[*Page]())
type ReactiveDataSource[P comparable] struct {
	pages      atomic.Pointer[[]P]
	transition TransitionOption[P]
	indicator  IndicatorOption[P]
}

// NewReactiveDataSource creates an empty data source. The options are fixed
// for its lifetime.
func NewReactiveDataSource[P comparable](transition TransitionOption[P], indicator IndicatorOption[P]) *ReactiveDataSource[P] {
	ds := &ReactiveDataSource[P]{
		transition: transition,
		indicator:  indicator,
	}
	ds.pages.Store(&[]P{})
	return ds
}

// SetPages replaces the held list. The data source keeps its own copy, so the
// caller may reuse pages afterwards.
func (ds *ReactiveDataSource[P]) SetPages(pages []P) {
	owned := slices.Clone(pages)
	if owned == nil {
		owned = []P{}
	}
	ds.pages.Store(&owned)
}

// Pages returns a copy of the held list.
func (ds *ReactiveDataSource[P]) Pages() []P {
	return slices.Clone(ds.list())
}

// Len returns the number of held pages.
func (ds *ReactiveDataSource[P]) Len() int {
	return len(ds.list())
}

// Transition returns the transition option chosen at construction.
func (ds *ReactiveDataSource[P]) Transition() TransitionOption[P] {
	return ds.transition
}

// Indicator returns the indicator option chosen at construction.
func (ds *ReactiveDataSource[P]) Indicator() IndicatorOption[P] {
	return ds.indicator
}

// PageAfter implements DataSource.
func (ds *ReactiveDataSource[P]) PageAfter(host Host[P], current P) (P, bool) {
	return ds.transition.Next(host, ds.list(), current)
}

// PageBefore implements DataSource.
func (ds *ReactiveDataSource[P]) PageBefore(host Host[P], current P) (P, bool) {
	return ds.transition.Previous(host, ds.list(), current)
}

// PresentationCount implements PresentationCounter.
func (ds *ReactiveDataSource[P]) PresentationCount(host Host[P]) int {
	return ds.indicator.Count(host, ds.list())
}

// PresentationIndex implements PresentationIndexer. The displayed page is the
// first of the host's view pages; with nothing displayed Automatic reports 0.
func (ds *ReactiveDataSource[P]) PresentationIndex(host Host[P]) int {
	var displayed P
	if ds.indicator.kind == indicatorAutomatic {
		if host == nil {
			return 0
		}
		view := host.ViewPages()
		if len(view) == 0 {
			return 0
		}
		displayed = view[0]
	}
	return ds.indicator.Index(host, ds.list(), displayed)
}

func (ds *ReactiveDataSource[P]) list() []P {
	return *ds.pages.Load()
}
