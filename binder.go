package hxpager

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pthm/hxpager/lib/rx"
	"github.com/sirupsen/logrus"
)

// BindingState is the lifecycle state of a Binding.
type BindingState int32

const (
	// StateCreated: the binding exists but is not subscribed yet.
	StateCreated BindingState = iota
	// StateAwaitingFirstEmission: subscribed, no page list seen yet.
	StateAwaitingFirstEmission
	// StateActive: the initial page list has been applied.
	StateActive
	// StateTerminated: completed, failed or torn down. Nothing is
	// delivered any more.
	StateTerminated
)

func (s BindingState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateAwaitingFirstEmission:
		return "awaiting-first-emission"
	case StateActive:
		return "active"
	default:
		return "terminated"
	}
}

// UpdateHandler is called after the data source has been updated with a new
// page list, typically to display one of the new pages.
type UpdateHandler[P comparable] func(host Host[P], pages []P)

// ShowLast displays the last page of every update, the usual reaction to a
// page being appended.
func ShowLast[P comparable]() UpdateHandler[P] {
	return func(host Host[P], pages []P) {
		if len(pages) == 0 {
			return
		}
		host.SetViewPages([]P{pages[len(pages)-1]}, Forward, true)
	}
}

// ShowFirst displays the first page of every update.
func ShowFirst[P comparable]() UpdateHandler[P] {
	return func(host Host[P], pages []P) {
		if len(pages) == 0 {
			return
		}
		host.SetViewPages([]P{pages[0]}, Reverse, true)
	}
}

type bindConfig struct {
	scheduler rx.Scheduler
	initial   any
	onError   func(error)
	logger    *logrus.Logger
}

// BindOption configures a binding.
type BindOption func(*bindConfig)

// WithScheduler sets the execution context page lists are applied on. It
// should be the context the host queries its data source from. The default
// applies them on whatever goroutine the source emits on.
func WithScheduler(s rx.Scheduler) BindOption {
	return func(c *bindConfig) {
		c.scheduler = s
	}
}

// WithInitialPage chooses the page displayed when the first page list
// arrives. The default is the first page; returning false displays nothing.
// P must be the page type of the binding, or binding panics with ErrConfig.
func WithInitialPage[P comparable](choose func(pages []P) (P, bool)) BindOption {
	return func(c *bindConfig) {
		c.initial = choose
	}
}

// WithErrorHandler replaces the binding-error handler. The default panics in
// debug mode and logs otherwise. The handler runs after the binding has been
// torn down.
func WithErrorHandler(fn func(error)) BindOption {
	return func(c *bindConfig) {
		c.onError = fn
	}
}

// WithLogger sets the logger for binding lifecycle messages.
func WithLogger(l *logrus.Logger) BindOption {
	return func(c *bindConfig) {
		c.logger = l
	}
}

// Binding is one binding session between a page-list stream and a host. It is
// ended by upstream completion, upstream error, host teardown, cancellation
// of the bind context, or Dispose, whichever happens first.
type Binding struct {
	id    uuid.UUID
	state atomic.Int32
	done  chan struct{}
	log   *logrus.Entry

	mu         sync.Mutex
	err        error
	sub        rx.Disposable
	unregister func()
	release    func()
}

func newBinding(log *logrus.Logger) *Binding {
	id := uuid.New()
	return &Binding{
		id:   id,
		done: make(chan struct{}),
		log:  log.WithField("binding", id.String()),
	}
}

// ID identifies the session in logs.
func (b *Binding) ID() uuid.UUID {
	return b.id
}

// State returns the current state.
func (b *Binding) State() BindingState {
	return BindingState(b.state.Load())
}

// Done is closed when the binding terminates.
func (b *Binding) Done() <-chan struct{} {
	return b.done
}

// Err returns the upstream error that ended the binding, wrapped in
// ErrBinding, or nil.
func (b *Binding) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Dispose tears the binding down: the subscription is cancelled and the data
// source is unregistered from the host. No page list is applied and no callback starts afterwards.
func (b *Binding) Dispose() {
	b.terminate(nil, "disposed")
}

// terminate moves the binding to StateTerminated and releases its resources.
// It reports whether this call did the transition.
func (b *Binding) terminate(err error, reason string) bool {
	b.mu.Lock()
	if b.State() == StateTerminated {
		b.mu.Unlock()
		return false
	}
	b.state.Store(int32(StateTerminated))
	b.err = err
	sub, unregister, release := b.sub, b.unregister, b.release
	b.sub = nil
	b.mu.Unlock()

	if sub != nil {
		sub.Dispose()
	}
	if unregister != nil {
		unregister()
	}
	if release != nil {
		release()
	}
	close(b.done)

	b.log.WithField("reason", reason).Debug("hxpager: binding terminated")
	return true
}

// whileLive runs fn unless the binding has terminated, holding off teardown
// until fn returns. fn must not call back into the binding.
func (b *Binding) whileLive(fn func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.State() == StateTerminated {
		return false
	}
	fn()
	return true
}

// advance moves from one live state to the next.
func (b *Binding) advance(from, to BindingState) bool {
	return b.state.CompareAndSwap(int32(from), int32(to))
}

// Bind feeds every page list emitted by source into ds and registers ds as
// host's data source, through the host's DataSourceProxy.
//
// The first page list also displays the initial page (see WithInitialPage).
// Later lists only replace the data source's pages. Cancelling ctx or closing
// host.Done tears the binding down like Dispose does.
func Bind[P comparable](ctx context.Context, host Host[P], source rx.Observable[[]P], ds *ReactiveDataSource[P], opts ...BindOption) *Binding {
	return bind(ctx, host, source, ds, nil, true, opts)
}

// BindUpdates is Bind with onUpdate called after every page list except the
// first one. The first list is the initial population of the host, not a
// change the caller needs to react to.
func BindUpdates[P comparable](ctx context.Context, host Host[P], source rx.Observable[[]P], ds *ReactiveDataSource[P], onUpdate UpdateHandler[P], opts ...BindOption) *Binding {
	return bind(ctx, host, source, ds, onUpdate, true, opts)
}

// BindAll is Bind with onUpdate called after every page list, including the
// first one.
func BindAll[P comparable](ctx context.Context, host Host[P], source rx.Observable[[]P], ds *ReactiveDataSource[P], onUpdate UpdateHandler[P], opts ...BindOption) *Binding {
	return bind(ctx, host, source, ds, onUpdate, false, opts)
}

func bind[P comparable](
	ctx context.Context,
	host Host[P],
	source rx.Observable[[]P],
	ds *ReactiveDataSource[P],
	onUpdate UpdateHandler[P],
	skipFirst bool,
	opts []BindOption,
) *Binding {
	cfg := bindConfig{
		scheduler: rx.Immediate,
		logger:    Logger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.onError == nil {
		cfg.onError = defaultErrorHandler(cfg.logger)
	}
	initial := firstPage[P]
	if cfg.initial != nil {
		chooser, ok := cfg.initial.(func([]P) (P, bool))
		if !ok {
			panic(fmt.Errorf("%w: WithInitialPage chooser %T does not take %T", ErrConfig, cfg.initial, []P(nil)))
		}
		if chooser != nil {
			initial = chooser
		}
	}

	b := newBinding(cfg.logger)
	proxy := DataSourceProxyFor(host)
	b.unregister = proxy.InstallForwardTarget(ds)
	b.release = func() { proxy.clearSession(b) }
	if prev := proxy.swapSession(b); prev != nil {
		prev.terminate(nil, "superseded")
	}

	b.log.WithFields(logrus.Fields{
		"transition": ds.Transition().String(),
		"indicator":  ds.Indicator().String(),
	}).Debug("hxpager: binding created")

	// Emissions are serialized as long as source obeys the Observer grammar
	// and never calls OnNext concurrently.
	first := true

	// Teardown may land on another goroutine at any point of an emission, so
	// the state is checked again before every effect.
	next := func(pages []P) {
		if b.State() == StateTerminated {
			return
		}
		if Debug() && !proxy.InstalledOn(host) {
			panic(fmt.Errorf("%w: binding %s: host data source is %T", ErrStaleProxy, b.id, host.DataSource()))
		}

		if !b.whileLive(func() { ds.SetPages(pages) }) {
			return
		}

		if first {
			first = false
			b.advance(StateAwaitingFirstEmission, StateActive)
			if page, ok := initial(pages); ok {
				if b.State() == StateTerminated {
					return
				}
				host.SetViewPages([]P{page}, Forward, false)
			}
			b.log.WithField("pages", len(pages)).Debug("hxpager: initial pages applied")
			if skipFirst {
				return
			}
		}

		if onUpdate != nil && b.State() != StateTerminated {
			onUpdate(host, pages)
		}
	}

	fail := func(err error) {
		wrapped := fmt.Errorf("%w: %w", ErrBinding, err)
		if b.terminate(wrapped, "error") {
			cfg.onError(wrapped)
		}
	}

	observer := rx.ObserverFuncs[[]P]{
		Next:     next,
		Error:    fail,
		Complete: func() { b.terminate(nil, "completed") },
	}

	b.advance(StateCreated, StateAwaitingFirstEmission)
	sub := rx.ObserveOn(source, cfg.scheduler).Subscribe(observer)

	b.mu.Lock()
	if b.State() == StateTerminated {
		b.mu.Unlock()
		sub.Dispose()
		return b
	}
	b.sub = sub
	b.mu.Unlock()

	go b.watch(ctx, host.Done())

	return b
}

// watch tears the binding down when ctx is cancelled or the host goes away.
func (b *Binding) watch(ctx context.Context, hostDone <-chan struct{}) {
	var ctxDone <-chan struct{}
	if ctx != nil {
		ctxDone = ctx.Done()
	}

	select {
	case <-b.done:
	case <-ctxDone:
		b.terminate(nil, "context cancelled")
	case <-hostDone:
		b.terminate(nil, "host torn down")
	}
}

func firstPage[P comparable](pages []P) (P, bool) {
	if len(pages) == 0 {
		var zero P
		return zero, false
	}
	return pages[0], true
}

func defaultErrorHandler(log *logrus.Logger) func(error) {
	return func(err error) {
		if Debug() {
			panic(err)
		}
		log.WithError(err).Error("hxpager: binding error")
	}
}
