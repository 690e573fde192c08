package hxpager

import (
	"sync"

	"github.com/pthm/hxpager/lib/rx"
)

// forwardSlot holds the externally registered delegate a proxy forwards to.
// Each registration gets a generation so a stale unregister cannot clear a
// newer target.
type forwardSlot struct {
	mu     sync.RWMutex
	target any
	gen    uint64
}

func (s *forwardSlot) load() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

func (s *forwardSlot) store(target any) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.target = target
	return s.gen
}

func (s *forwardSlot) release(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.target = nil
	return true
}

// DataSourceProxy sits permanently in a host's page-provider slot and forwards
// to at most one registered data source.
//
// The host always sees a valid data source, even before anything is
// registered. Queries the target cannot answer fall back to defaults: no page
// for PageAfter/PageBefore and 0 for the indicator queries.
type DataSourceProxy[P comparable] struct {
	forward forwardSlot

	mu      sync.Mutex
	session *Binding
}

// NewDataSourceProxy creates an uninstalled proxy.
func NewDataSourceProxy[P comparable]() *DataSourceProxy[P] {
	return &DataSourceProxy[P]{}
}

// DataSourceProxyFor returns the proxy installed on host, installing a new one
// if needed. A non-proxy data source found in the slot becomes the new proxy's
// forward target.
func DataSourceProxyFor[P comparable](host Host[P]) *DataSourceProxy[P] {
	current := host.DataSource()
	if p, ok := current.(*DataSourceProxy[P]); ok {
		return p
	}

	p := NewDataSourceProxy[P]()
	if current != nil {
		p.SetForwardTarget(current)
	}
	p.Install(host)
	return p
}

// Install puts the proxy in host's page-provider slot. It does nothing when
// the proxy is already installed there.
func (p *DataSourceProxy[P]) Install(host Host[P]) {
	if !p.InstalledOn(host) {
		host.SetDataSource(p)
	}
}

// InstalledOn reports whether host's page-provider slot holds p.
func (p *DataSourceProxy[P]) InstalledOn(host Host[P]) bool {
	current, ok := host.DataSource().(*DataSourceProxy[P])
	return ok && current == p
}

// SetForwardTarget replaces the forward target. nil clears it.
func (p *DataSourceProxy[P]) SetForwardTarget(target DataSource[P]) {
	if target == nil {
		p.forward.store(nil)
		return
	}
	p.forward.store(target)
}

// InstallForwardTarget registers target and returns a function that
// unregisters it again. The unregister function only clears the slot while
// target is still the registered one, and is safe to call more than once.
func (p *DataSourceProxy[P]) InstallForwardTarget(target DataSource[P]) (unregister func()) {
	gen := p.forward.store(target)
	var once sync.Once
	return func() {
		once.Do(func() { p.forward.release(gen) })
	}
}

// ForwardTarget returns the registered data source, or nil.
func (p *DataSourceProxy[P]) ForwardTarget() DataSource[P] {
	ds, _ := p.forward.load().(DataSource[P])
	return ds
}

// PageAfter implements DataSource.
func (p *DataSourceProxy[P]) PageAfter(host Host[P], current P) (P, bool) {
	if ds := p.ForwardTarget(); ds != nil {
		return ds.PageAfter(host, current)
	}
	var zero P
	return zero, false
}

// PageBefore implements DataSource.
func (p *DataSourceProxy[P]) PageBefore(host Host[P], current P) (P, bool) {
	if ds := p.ForwardTarget(); ds != nil {
		return ds.PageBefore(host, current)
	}
	var zero P
	return zero, false
}

// PresentationCount implements PresentationCounter.
func (p *DataSourceProxy[P]) PresentationCount(host Host[P]) int {
	if c, ok := p.forward.load().(PresentationCounter[P]); ok {
		return c.PresentationCount(host)
	}
	return 0
}

// PresentationIndex implements PresentationIndexer.
func (p *DataSourceProxy[P]) PresentationIndex(host Host[P]) int {
	if i, ok := p.forward.load().(PresentationIndexer[P]); ok {
		return i.PresentationIndex(host)
	}
	return 0
}

// swapSession records b as the active binding and returns the one it
// replaces.
func (p *DataSourceProxy[P]) swapSession(b *Binding) *Binding {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.session
	p.session = b
	return prev
}

// clearSession forgets b if it is still the active binding.
func (p *DataSourceProxy[P]) clearSession(b *Binding) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == b {
		p.session = nil
	}
}

// DelegateProxy sits permanently in a host's lifecycle-notifier slot.
//
// Every notification is published on the proxy's own streams and then
// forwarded to the registered delegate, if it implements the matching
// optional interface. Spine and orientation queries are answered by the
// delegate when it can, and otherwise from the proxy's relays, which hold the
// last value set through them.
type DelegateProxy[P comparable] struct {
	forward forwardSlot

	willTransition     *rx.Subject[WillTransitionEvent[P]]
	didFinishAnimating *rx.Subject[DidFinishAnimatingEvent[P]]

	spineLocation         *rx.Relay[SpineLocation]
	supportedOrientations *rx.Relay[OrientationMask]
	preferredOrientation  *rx.Relay[Orientation]

	hostDone <-chan struct{}
	endOnce  sync.Once
}

// NewDelegateProxy creates an uninstalled proxy whose spine relay starts at
// spine.
func NewDelegateProxy[P comparable](spine SpineLocation) *DelegateProxy[P] {
	return &DelegateProxy[P]{
		willTransition:        rx.NewSubject[WillTransitionEvent[P]](),
		didFinishAnimating:    rx.NewSubject[DidFinishAnimatingEvent[P]](),
		spineLocation:         rx.NewRelay(spine),
		supportedOrientations: rx.NewRelay(OrientationMaskAll),
		preferredOrientation:  rx.NewRelay(OrientationUnknown),
	}
}

// DelegateProxyFor returns the proxy installed on host, installing a new one
// if needed. A delegate found in the slot becomes the new proxy's forward
// target. The proxy's event streams complete when the host is torn down.
func DelegateProxyFor[P comparable](host Host[P]) *DelegateProxy[P] {
	current := host.Delegate()
	if p, ok := current.(*DelegateProxy[P]); ok {
		return p
	}

	p := NewDelegateProxy[P](host.SpineLocation())
	if current != nil {
		p.SetForwardTarget(current)
	}
	p.hostDone = host.Done()
	p.Install(host)
	return p
}

// end completes the event streams.
func (p *DelegateProxy[P]) end() {
	p.endOnce.Do(func() {
		p.willTransition.OnComplete()
		p.didFinishAnimating.OnComplete()
	})
}

// untilTeardown returns s as a stream that completes when done is closed.
// Each subscription watches done only while it is live, so a host that is
// never torn down leaves nothing running once its subscribers are gone.
func untilTeardown[T any](s *rx.Subject[T], done <-chan struct{}, end func()) rx.Observable[T] {
	if done == nil {
		return s
	}
	return rx.ObservableFunc[T](func(o rx.Observer[T]) rx.Disposable {
		select {
		case <-done:
			end()
			return s.Subscribe(o)
		default:
		}

		sub := s.Subscribe(o)
		stop := make(chan struct{})
		go func() {
			select {
			case <-done:
				end()
			case <-stop:
			}
		}()

		var once sync.Once
		return rx.DisposableFunc(func() {
			once.Do(func() {
				close(stop)
				sub.Dispose()
			})
		})
	})
}

func (p *DelegateProxy[P]) willTransitionEvents() rx.Observable[WillTransitionEvent[P]] {
	return untilTeardown(p.willTransition, p.hostDone, p.end)
}

func (p *DelegateProxy[P]) didFinishAnimatingEvents() rx.Observable[DidFinishAnimatingEvent[P]] {
	return untilTeardown(p.didFinishAnimating, p.hostDone, p.end)
}

// Install puts the proxy in host's lifecycle-notifier slot. It does nothing
// when the proxy is already installed there.
func (p *DelegateProxy[P]) Install(host Host[P]) {
	if !p.InstalledOn(host) {
		host.SetDelegate(p)
	}
}

// InstalledOn reports whether host's lifecycle-notifier slot holds p.
func (p *DelegateProxy[P]) InstalledOn(host Host[P]) bool {
	current, ok := host.Delegate().(*DelegateProxy[P])
	return ok && current == p
}

// SetForwardTarget replaces the forward target. nil clears it.
func (p *DelegateProxy[P]) SetForwardTarget(target any) {
	p.forward.store(target)
}

// InstallForwardTarget registers target and returns a function that
// unregisters it again, as DataSourceProxy.InstallForwardTarget does.
func (p *DelegateProxy[P]) InstallForwardTarget(target any) (unregister func()) {
	gen := p.forward.store(target)
	var once sync.Once
	return func() {
		once.Do(func() { p.forward.release(gen) })
	}
}

// ForwardTarget returns the registered delegate, or nil.
func (p *DelegateProxy[P]) ForwardTarget() any {
	return p.forward.load()
}

// WillTransition implements TransitionObserver.
func (p *DelegateProxy[P]) WillTransition(host Host[P], pending []P) {
	p.willTransition.OnNext(WillTransitionEvent[P]{Host: host, Pending: pending})
	if o, ok := p.forward.load().(TransitionObserver[P]); ok {
		o.WillTransition(host, pending)
	}
}

// DidFinishAnimating implements AnimationObserver.
func (p *DelegateProxy[P]) DidFinishAnimating(host Host[P], finished bool, previous []P, completed bool) {
	p.didFinishAnimating.OnNext(DidFinishAnimatingEvent[P]{
		Host:      host,
		Finished:  finished,
		Previous:  previous,
		Completed: completed,
	})
	if o, ok := p.forward.load().(AnimationObserver[P]); ok {
		o.DidFinishAnimating(host, finished, previous, completed)
	}
}

// SpineLocationFor implements SpineLocator.
func (p *DelegateProxy[P]) SpineLocationFor(host Host[P], orientation Orientation) SpineLocation {
	if l, ok := p.forward.load().(SpineLocator[P]); ok {
		return l.SpineLocationFor(host, orientation)
	}
	return p.spineLocation.Value()
}

// SupportedOrientations implements OrientationSupporter.
func (p *DelegateProxy[P]) SupportedOrientations(host Host[P]) OrientationMask {
	if s, ok := p.forward.load().(OrientationSupporter[P]); ok {
		return s.SupportedOrientations(host)
	}
	return p.supportedOrientations.Value()
}

// PreferredOrientation implements OrientationPreferrer.
func (p *DelegateProxy[P]) PreferredOrientation(host Host[P]) Orientation {
	if o, ok := p.forward.load().(OrientationPreferrer[P]); ok {
		return o.PreferredOrientation(host)
	}
	return p.preferredOrientation.Value()
}
