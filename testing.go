package hxpager

import (
	"slices"
	"sync"
)

// ViewCommand records one SetViewPages call on a TestHost.
type ViewCommand[P comparable] struct {
	Pages     []P
	Direction Direction
	Animated  bool
}

// TestHost is an in-memory Host for tests.
//
// It records every programmatic page change and can simulate the gestures a
// real paginator handles, querying its data source and notifying its delegate
// the way a widget would:
//
//	host := hxpager.NewTestHost[*Page]()
//	hxpager.Bind(ctx, host, rx.Just(pages), ds)
//	if next, ok := host.SwipeForward(); !ok || next != pages[1] {
//	    t.Fatal("expected to land on the second page")
//	}
type TestHost[P comparable] struct {
	mu         sync.Mutex
	dataSource DataSource[P]
	delegate   any
	view       []P
	spine      SpineLocation
	commands   []ViewCommand[P]

	done      chan struct{}
	closeOnce sync.Once
}

// NewTestHost creates a host displaying nothing.
func NewTestHost[P comparable]() *TestHost[P] {
	return &TestHost[P]{
		spine: SpineMin,
		done:  make(chan struct{}),
	}
}

func (h *TestHost[P]) DataSource() DataSource[P] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dataSource
}

func (h *TestHost[P]) SetDataSource(ds DataSource[P]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dataSource = ds
}

func (h *TestHost[P]) Delegate() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.delegate
}

func (h *TestHost[P]) SetDelegate(d any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delegate = d
}

func (h *TestHost[P]) ViewPages() []P {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.view)
}

func (h *TestHost[P]) SetViewPages(pages []P, direction Direction, animated bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.view = slices.Clone(pages)
	h.commands = append(h.commands, ViewCommand[P]{
		Pages:     slices.Clone(pages),
		Direction: direction,
		Animated:  animated,
	})
}

func (h *TestHost[P]) SpineLocation() SpineLocation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.spine
}

func (h *TestHost[P]) Done() <-chan struct{} {
	return h.done
}

// Teardown simulates the host component going away.
func (h *TestHost[P]) Teardown() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Commands returns the recorded SetViewPages calls.
func (h *TestHost[P]) Commands() []ViewCommand[P] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.commands)
}

// Displayed returns the first displayed page.
func (h *TestHost[P]) Displayed() (P, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.view) == 0 {
		var zero P
		return zero, false
	}
	return h.view[0], true
}

// SwipeForward simulates a completed forward gesture and returns the page
// landed on. It reports false, without notifying the delegate, when the data
// source has no next page.
func (h *TestHost[P]) SwipeForward() (P, bool) {
	return h.swipe(func(ds DataSource[P], cur P) (P, bool) {
		return ds.PageAfter(h, cur)
	}, true)
}

// SwipeBackward is SwipeForward in the other direction.
func (h *TestHost[P]) SwipeBackward() (P, bool) {
	return h.swipe(func(ds DataSource[P], cur P) (P, bool) {
		return ds.PageBefore(h, cur)
	}, true)
}

// AbandonSwipe simulates a forward gesture the user gives up on: the delegate
// hears about the transition but the displayed page does not change.
func (h *TestHost[P]) AbandonSwipe() (P, bool) {
	return h.swipe(func(ds DataSource[P], cur P) (P, bool) {
		return ds.PageAfter(h, cur)
	}, false)
}

// PresentationCount asks the data source for the indicator dot count, as the
// host does when it draws its indicator.
func (h *TestHost[P]) PresentationCount() int {
	if c, ok := h.DataSource().(PresentationCounter[P]); ok {
		return c.PresentationCount(h)
	}
	return 0
}

// PresentationIndex asks the data source for the selected indicator dot.
func (h *TestHost[P]) PresentationIndex() int {
	if i, ok := h.DataSource().(PresentationIndexer[P]); ok {
		return i.PresentationIndex(h)
	}
	return 0
}

func (h *TestHost[P]) swipe(resolve func(DataSource[P], P) (P, bool), complete bool) (P, bool) {
	var zero P

	cur, ok := h.Displayed()
	ds := h.DataSource()
	if !ok || ds == nil {
		return zero, false
	}

	target, ok := resolve(ds, cur)
	if !ok {
		return zero, false
	}

	delegate := h.Delegate()
	if o, ok := delegate.(TransitionObserver[P]); ok {
		o.WillTransition(h, []P{target})
	}

	if complete {
		h.mu.Lock()
		h.view = []P{target}
		h.mu.Unlock()
	}

	if o, ok := delegate.(AnimationObserver[P]); ok {
		o.DidFinishAnimating(h, true, []P{cur}, complete)
	}

	if !complete {
		return cur, true
	}
	return target, true
}
