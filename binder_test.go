package hxpager

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pthm/hxpager/lib/rx"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func withDebug(t *testing.T, on bool) {
	t.Helper()
	prev := Debug()
	SetDebug(on)
	t.Cleanup(func() { SetDebug(prev) })
}

func waitDone(t *testing.T, b *Binding) {
	t.Helper()
	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("binding did not terminate")
	}
}

func displayedNames(cmds []ViewCommand[*page]) []string {
	var out []string
	for _, c := range cmds {
		for _, p := range c.Pages {
			out = append(out, p.name)
		}
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBindFirstEmissionDisplaysInitialPage(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()
	l := pages("A", "B", "C")

	b := Bind[*page](context.Background(), host, subject, ds, WithLogger(quietLogger()))
	if b.State() != StateAwaitingFirstEmission {
		t.Fatalf("State = %v, want awaiting-first-emission", b.State())
	}

	subject.OnNext(l)

	if b.State() != StateActive {
		t.Errorf("State = %v, want active", b.State())
	}
	if got := displayedNames(host.Commands()); !equalStrings(got, []string{"A"}) {
		t.Errorf("displayed %v, want [A]", got)
	}
	if cmd := host.Commands()[0]; cmd.Direction != Forward || cmd.Animated {
		t.Errorf("initial command = %+v, want forward without animation", cmd)
	}
	if host.PresentationCount() != 3 {
		t.Errorf("PresentationCount = %d, want 3", host.PresentationCount())
	}
	if got := name(host.SwipeForward()); got != "B" {
		t.Errorf("SwipeForward = %s, want B", got)
	}
	if host.PresentationIndex() != 1 {
		t.Errorf("PresentationIndex = %d, want 1", host.PresentationIndex())
	}

	b.Dispose()
}

func TestBindUpdatesSkipsFirstEmission(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()

	calls := 0
	b := BindUpdates[*page](context.Background(), host, subject, ds, func(Host[*page], []*page) {
		calls++
	}, WithLogger(quietLogger()))
	defer b.Dispose()

	for n := 1; n <= 5; n++ {
		subject.OnNext(pages(make([]string, n)...))
	}

	if calls != 4 {
		t.Errorf("onUpdate called %d times for 5 emissions, want 4", calls)
	}
}

func TestBindAllCallsOnEveryEmission(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()

	calls := 0
	b := BindAll[*page](context.Background(), host, subject, ds, func(Host[*page], []*page) {
		calls++
	}, WithLogger(quietLogger()))
	defer b.Dispose()

	subject.OnNext(pages("A"))
	subject.OnNext(pages("A", "B"))

	if calls != 2 {
		t.Errorf("onUpdate called %d times, want 2", calls)
	}
}

func TestBindUpdatesShowLastScenario(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	relay := rx.NewRelay(pages("A"))

	var updates []string
	show := ShowLast[*page]()
	b := BindUpdates[*page](context.Background(), host, relay, ds, func(h Host[*page], l []*page) {
		updates = append(updates, l[len(l)-1].name)
		show(h, l)
	}, WithLogger(quietLogger()))
	defer b.Dispose()

	a := relay.Value()[0]
	bPage := &page{name: "B"}
	relay.Accept([]*page{a, bPage})
	relay.Accept([]*page{a, bPage, {name: "C"}})

	if !equalStrings(updates, []string{"B", "C"}) {
		t.Errorf("update display commands = %v, want [B C]", updates)
	}
	// The initial display of A comes from the binder, not from onUpdate.
	if got := displayedNames(host.Commands()); !equalStrings(got, []string{"A", "B", "C"}) {
		t.Errorf("all display commands = %v, want [A B C]", got)
	}
	if got := host.PresentationIndex(); got != 2 {
		t.Errorf("PresentationIndex = %d, want 2", got)
	}
}

func TestBindWithInitialPage(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())

	b := Bind[*page](context.Background(), host, rx.Just(pages("A", "B")), ds,
		WithLogger(quietLogger()),
		WithInitialPage(func(l []*page) (*page, bool) { return l[len(l)-1], true }),
	)
	waitDone(t, b)

	if got := displayedNames(host.Commands()); !equalStrings(got, []string{"B"}) {
		t.Errorf("displayed %v, want [B]", got)
	}
}

func TestBindEmptyFirstListDisplaysNothing(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()

	b := Bind[*page](context.Background(), host, subject, ds, WithLogger(quietLogger()))
	defer b.Dispose()

	subject.OnNext(nil)
	if len(host.Commands()) != 0 {
		t.Errorf("commands = %v, want none", host.Commands())
	}
	if b.State() != StateActive {
		t.Errorf("State = %v, want active", b.State())
	}
}

func TestBindCompletionUnregisters(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()

	calls := 0
	b := BindUpdates[*page](context.Background(), host, subject, ds, func(Host[*page], []*page) {
		calls++
	}, WithLogger(quietLogger()))

	subject.OnNext(pages("A"))
	subject.OnComplete()
	waitDone(t, b)

	if b.State() != StateTerminated {
		t.Errorf("State = %v, want terminated", b.State())
	}
	if b.Err() != nil {
		t.Errorf("Err = %v, want nil after completion", b.Err())
	}

	proxy := DataSourceProxyFor[*page](host)
	if proxy.ForwardTarget() != nil {
		t.Error("data source should be unregistered after completion")
	}
	if !proxy.InstalledOn(host) {
		t.Error("proxy should remain installed")
	}
	if calls != 0 {
		t.Errorf("onUpdate called %d times, want 0", calls)
	}
}

func TestBindIgnoresEmissionsAfterTermination(t *testing.T) {
	tests := []struct {
		name      string
		source    func(o rx.Observer[[]*page])
		wantCalls int
		wantLen   int
	}{
		{
			name: "after completion",
			source: func(o rx.Observer[[]*page]) {
				o.OnNext(pages("A"))
				o.OnComplete()
				o.OnNext(pages("A", "B"))
			},
			wantCalls: 1,
			wantLen:   1,
		},
		{
			name: "completion before any list",
			source: func(o rx.Observer[[]*page]) {
				o.OnComplete()
				o.OnNext(pages("A", "B"))
			},
			wantCalls: 0,
			wantLen:   0,
		},
		{
			name: "after error",
			source: func(o rx.Observer[[]*page]) {
				o.OnNext(pages("A"))
				o.OnError(errors.New("boom"))
				o.OnNext(pages("A", "B"))
			},
			wantCalls: 1,
			wantLen:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := NewTestHost[*page]()
			ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
			source := rx.ObservableFunc[[]*page](func(o rx.Observer[[]*page]) rx.Disposable {
				tt.source(o)
				return rx.Nop
			})

			calls := 0
			b := BindAll[*page](context.Background(), host, source, ds, func(Host[*page], []*page) {
				calls++
			}, WithLogger(quietLogger()), WithErrorHandler(func(error) {}))

			if b.State() != StateTerminated {
				t.Errorf("State = %v, want terminated", b.State())
			}
			if calls != tt.wantCalls {
				t.Errorf("onUpdate called %d times, want %d", calls, tt.wantCalls)
			}
			if ds.Len() != tt.wantLen {
				t.Errorf("Len = %d, want %d", ds.Len(), tt.wantLen)
			}
		})
	}
}

// vanishingHost tears itself down the next time its page-provider slot is
// read while armed, and waits for the binding to notice, like a host going
// away in the middle of an emission.
type vanishingHost struct {
	*TestHost[*page]
	armed   atomic.Bool
	binding atomic.Pointer[Binding]
}

func (h *vanishingHost) DataSource() DataSource[*page] {
	if h.armed.CompareAndSwap(true, false) {
		h.Teardown()
		if b := h.binding.Load(); b != nil {
			select {
			case <-b.Done():
			case <-time.After(time.Second):
			}
		}
	}
	return h.TestHost.DataSource()
}

func TestBindTeardownDuringEmission(t *testing.T) {
	withDebug(t, true)

	host := &vanishingHost{TestHost: NewTestHost[*page]()}
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()

	calls := 0
	b := BindAll[*page](context.Background(), host, subject, ds, func(Host[*page], []*page) {
		calls++
	}, WithLogger(quietLogger()))
	host.binding.Store(b)

	subject.OnNext(pages("A"))
	host.armed.Store(true)
	subject.OnNext(pages("A", "B"))

	if b.State() != StateTerminated {
		t.Errorf("State = %v, want terminated", b.State())
	}
	if calls != 1 {
		t.Errorf("onUpdate called %d times, want 1", calls)
	}
	if ds.Len() != 1 {
		t.Errorf("Len = %d, want 1", ds.Len())
	}
}

func TestWithInitialPageTypeMismatchPanics(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrConfig) {
			t.Errorf("recovered %v, want ErrConfig", r)
		}
		if host.DataSource() != nil {
			t.Error("nothing should be installed on a rejected binding")
		}
	}()

	Bind[*page](context.Background(), host, rx.Never[[]*page](), ds,
		WithLogger(quietLogger()),
		WithInitialPage(func(l []string) (string, bool) { return "", false }),
	)
	t.Error("Bind should panic")
}

func TestBindErrorInProduction(t *testing.T) {
	withDebug(t, false)

	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	boom := errors.New("boom")

	b := Bind[*page](context.Background(), host, rx.Fail(boom, pages("A")), ds, WithLogger(quietLogger()))
	waitDone(t, b)

	if !IsBindingError(b.Err()) || !errors.Is(b.Err(), boom) {
		t.Errorf("Err = %v, want binding error wrapping boom", b.Err())
	}
	if b.State() != StateTerminated {
		t.Errorf("State = %v, want terminated", b.State())
	}
	if _, ok := host.SwipeForward(); ok {
		t.Error("queries must not reach the data source after an error")
	}
	if host.PresentationCount() != 0 {
		t.Errorf("PresentationCount = %d, want 0 after unregistering", host.PresentationCount())
	}
}

func TestBindErrorHandler(t *testing.T) {
	withDebug(t, true)

	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	boom := errors.New("boom")

	var reported error
	b := Bind[*page](context.Background(), host, rx.Fail[[]*page](boom), ds,
		WithLogger(quietLogger()),
		WithErrorHandler(func(err error) { reported = err }),
	)
	waitDone(t, b)

	if !errors.Is(reported, boom) || !IsBindingError(reported) {
		t.Errorf("reported %v, want binding error wrapping boom", reported)
	}
}

func TestBindErrorPanicsInDebug(t *testing.T) {
	withDebug(t, true)

	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()

	b := Bind[*page](context.Background(), host, subject, ds, WithLogger(quietLogger()))

	func() {
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok || !IsBindingError(err) {
				t.Errorf("recovered %v, want binding error", r)
			}
		}()
		subject.OnError(errors.New("boom"))
	}()

	if b.State() != StateTerminated {
		t.Errorf("State = %v, want terminated even when the handler panics", b.State())
	}
	if DataSourceProxyFor[*page](host).ForwardTarget() != nil {
		t.Error("data source should be unregistered before the error is reported")
	}
}

func TestBindStaleProxyInDebug(t *testing.T) {
	withDebug(t, true)

	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()

	b := Bind[*page](context.Background(), host, subject, ds, WithLogger(quietLogger()))
	defer b.Dispose()

	subject.OnNext(pages("A"))
	host.SetDataSource(&pageOnlySource{})

	func() {
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok || !IsStaleProxy(err) {
				t.Errorf("recovered %v, want stale proxy error", r)
			}
		}()
		subject.OnNext(pages("A", "B"))
	}()
}

func TestBindStaleProxySkippedInProduction(t *testing.T) {
	withDebug(t, false)

	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()

	b := Bind[*page](context.Background(), host, subject, ds, WithLogger(quietLogger()))
	defer b.Dispose()

	host.SetDataSource(&pageOnlySource{})
	subject.OnNext(pages("A", "B"))

	if ds.Len() != 2 {
		t.Errorf("Len = %d, want 2", ds.Len())
	}
}

func TestBindHostTeardown(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()

	calls := 0
	b := BindAll[*page](context.Background(), host, subject, ds, func(Host[*page], []*page) {
		calls++
	}, WithLogger(quietLogger()))

	subject.OnNext(pages("A"))
	host.Teardown()
	waitDone(t, b)

	subject.OnNext(pages("A", "B"))

	if calls != 1 {
		t.Errorf("onUpdate called %d times, want 1", calls)
	}
	if ds.Len() != 1 {
		t.Errorf("Len = %d, want 1: nothing is applied after teardown", ds.Len())
	}
	if subject.HasObservers() {
		t.Error("subscription should be disposed on teardown")
	}
}

func TestBindContextCancel(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()
	ctx, cancel := context.WithCancel(context.Background())

	b := Bind[*page](ctx, host, subject, ds, WithLogger(quietLogger()))
	cancel()
	waitDone(t, b)

	if subject.HasObservers() {
		t.Error("subscription should be disposed on cancellation")
	}
	if DataSourceProxyFor[*page](host).ForwardTarget() != nil {
		t.Error("data source should be unregistered on cancellation")
	}
}

func TestBindDispose(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	subject := rx.NewSubject[[]*page]()

	b := Bind[*page](context.Background(), host, subject, ds, WithLogger(quietLogger()))
	b.Dispose()
	b.Dispose()

	subject.OnNext(pages("A"))
	if len(host.Commands()) != 0 {
		t.Error("nothing should be displayed after Dispose")
	}
}

func TestSecondBindSupersedesFirst(t *testing.T) {
	host := NewTestHost[*page]()
	first := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	second := NewReactiveDataSource(Circular[*page](), Hidden[*page]())

	b1 := Bind[*page](context.Background(), host, rx.NewSubject[[]*page](), first, WithLogger(quietLogger()))
	b2 := Bind[*page](context.Background(), host, rx.NewSubject[[]*page](), second, WithLogger(quietLogger()))
	defer b2.Dispose()

	waitDone(t, b1)

	proxy := DataSourceProxyFor[*page](host)
	if proxy.ForwardTarget() != DataSource[*page](second) {
		t.Error("second binding's data source should be registered")
	}
	if b2.State() != StateAwaitingFirstEmission {
		t.Errorf("second binding State = %v, want awaiting-first-emission", b2.State())
	}
}

func TestBindOnSerialQueue(t *testing.T) {
	q := rx.NewSerialQueue()
	defer q.Stop()

	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	values := make(chan []*page)

	var order []int
	b := BindUpdates[*page](context.Background(), host, rx.FromChannel(values, nil), ds, func(_ Host[*page], l []*page) {
		order = append(order, len(l))
	}, WithScheduler(q), WithLogger(quietLogger()))

	for n := 1; n <= 4; n++ {
		values <- pages(make([]string, n)...)
	}
	close(values)
	waitDone(t, b)
	q.Flush()

	want := []int{2, 3, 4}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestBindingStateString(t *testing.T) {
	tests := []struct {
		state BindingState
		want  string
	}{
		{StateCreated, "created"},
		{StateAwaitingFirstEmission, "awaiting-first-emission"},
		{StateActive, "active"},
		{StateTerminated, "terminated"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
