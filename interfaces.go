package hxpager

// Host is the paginator widget hxpager drives. It owns layout, gestures and
// animation; hxpager only fills its two delegate slots and tells it which
// pages to show.
//
// P is the page type. Pages are opaque and compared by identity, so P is
// usually a pointer type.
//
// All methods are expected to be called from the host's own execution context
// (see Bind and WithScheduler).
type Host[P comparable] interface {
	// DataSource returns the page-provider slot.
	DataSource() DataSource[P]
	// SetDataSource fills the page-provider slot.
	SetDataSource(DataSource[P])

	// Delegate returns the lifecycle-notifier slot. The slot is untyped
	// because every lifecycle method is optional; see TransitionObserver
	// and friends.
	Delegate() any
	// SetDelegate fills the lifecycle-notifier slot.
	SetDelegate(any)

	// ViewPages returns the pages currently displayed, usually one.
	ViewPages() []P
	// SetViewPages displays pages.
	SetViewPages(pages []P, direction Direction, animated bool)

	// SpineLocation reports the host's current spine location.
	SpineLocation() SpineLocation

	// Done is closed when the host component is torn down. A nil channel
	// means the host is never torn down.
	Done() <-chan struct{}
}

// DataSource is the required part of the page-provider contract: the host
// asks for the neighbours of the displayed page while a transition runs.
// The boolean result is false when there is no such page.
type DataSource[P comparable] interface {
	PageAfter(host Host[P], current P) (P, bool)
	PageBefore(host Host[P], current P) (P, bool)
}

// PresentationCounter is the optional page-provider method reporting how many
// dots the page indicator shows.
type PresentationCounter[P comparable] interface {
	PresentationCount(host Host[P]) int
}

// PresentationIndexer is the optional page-provider method reporting which
// indicator dot is selected.
type PresentationIndexer[P comparable] interface {
	PresentationIndex(host Host[P]) int
}

// TransitionObserver is notified before a gesture-driven transition starts.
type TransitionObserver[P comparable] interface {
	WillTransition(host Host[P], pending []P)
}

// AnimationObserver is notified after a gesture-driven transition ends.
// completed is false when the user abandoned the gesture.
type AnimationObserver[P comparable] interface {
	DidFinishAnimating(host Host[P], finished bool, previous []P, completed bool)
}

// SpineLocator chooses the spine location for an orientation.
type SpineLocator[P comparable] interface {
	SpineLocationFor(host Host[P], orientation Orientation) SpineLocation
}

// OrientationSupporter reports the orientations the host may rotate to.
type OrientationSupporter[P comparable] interface {
	SupportedOrientations(host Host[P]) OrientationMask
}

// OrientationPreferrer reports the orientation the host prefers when it is
// presented.
type OrientationPreferrer[P comparable] interface {
	PreferredOrientation(host Host[P]) Orientation
}
