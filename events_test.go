package hxpager

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/pthm/hxpager/lib/rx"
)

func TestRxTransitionEvents(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Circular[*page](), Automatic[*page]())
	l := pages("A", "B")

	var will []WillTransitionEvent[*page]
	var did []DidFinishAnimatingEvent[*page]
	r := Rx[*page](host)
	r.WillTransition().Subscribe(rx.ObserverFuncs[WillTransitionEvent[*page]]{
		Next: func(e WillTransitionEvent[*page]) { will = append(will, e) },
	})
	r.DidFinishAnimating().Subscribe(rx.ObserverFuncs[DidFinishAnimatingEvent[*page]]{
		Next: func(e DidFinishAnimatingEvent[*page]) { did = append(did, e) },
	})

	b := r.Items(ds).Bind(context.Background(), rx.NewRelay(l), WithLogger(quietLogger()))
	defer b.Dispose()

	host.SwipeForward()
	host.AbandonSwipe()

	if len(will) != 2 || will[0].Pending[0] != l[1] || will[1].Pending[0] != l[0] {
		t.Fatalf("will-transition events = %+v", will)
	}
	if len(did) != 2 {
		t.Fatalf("did-finish-animating events = %d, want 2", len(did))
	}
	if !did[0].Completed || did[0].Previous[0] != l[0] {
		t.Errorf("first event = %+v, want completed from A", did[0])
	}
	if did[1].Completed {
		t.Error("abandoned swipe should not be completed")
	}
	if got, _ := host.Displayed(); got != l[1] {
		t.Errorf("displayed %s, want B", got.name)
	}
	if did[0].Host != Host[*page](host) {
		t.Error("event should carry the host")
	}
}

func TestRxEventsForwardToExistingDelegate(t *testing.T) {
	host := NewTestHost[*page]()
	spy := &spyDelegate{}
	host.SetDelegate(spy)

	events := 0
	Rx[*page](host).DidFinishAnimating().Subscribe(rx.ObserverFuncs[DidFinishAnimatingEvent[*page]]{
		Next: func(DidFinishAnimatingEvent[*page]) { events++ },
	})

	ds := NewReactiveDataSource(Bounded[*page](), Automatic[*page]())
	b := Rx[*page](host).Items(ds).Bind(context.Background(), rx.NewRelay(pages("A", "B")), WithLogger(quietLogger()))
	defer b.Dispose()

	host.SwipeForward()

	if events != 1 || spy.didFinish != 1 || spy.willTransition != 1 {
		t.Errorf("events=%d forwarded=%d/%d, want 1 and 1/1", events, spy.willTransition, spy.didFinish)
	}
}

func TestRxStreamsCompleteOnTeardown(t *testing.T) {
	host := NewTestHost[*page]()
	completed := make(chan struct{})

	Rx[*page](host).WillTransition().Subscribe(rx.ObserverFuncs[WillTransitionEvent[*page]]{
		Complete: func() { close(completed) },
	})
	host.Teardown()

	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("will-transition stream did not complete on teardown")
	}
}

func TestRxStreamsCompleteForLateSubscribers(t *testing.T) {
	host := NewTestHost[*page]()
	r := Rx[*page](host)
	host.Teardown()

	completed := false
	r.DidFinishAnimating().Subscribe(rx.ObserverFuncs[DidFinishAnimatingEvent[*page]]{
		Complete: func() { completed = true },
	})
	if !completed {
		t.Error("subscribing after teardown should complete immediately")
	}
}

func TestRxDisposedSubscriptionMissesTeardown(t *testing.T) {
	host := NewTestHost[*page]()
	completed := make(chan struct{})

	sub := Rx[*page](host).WillTransition().Subscribe(rx.ObserverFuncs[WillTransitionEvent[*page]]{
		Complete: func() { close(completed) },
	})
	sub.Dispose()
	host.Teardown()

	select {
	case <-completed:
		t.Error("disposed subscription should not see completion")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRxWithoutSubscribersStartsNoGoroutines(t *testing.T) {
	const hosts = 50
	before := runtime.NumGoroutine()

	for range hosts {
		Rx[*page](NewTestHost[*page]()).Delegate()
	}

	if grown := runtime.NumGoroutine() - before; grown >= hosts {
		t.Errorf("goroutines grew by %d for %d untorn hosts", grown, hosts)
	}
}

func TestRxItemsBindUpdates(t *testing.T) {
	host := NewTestHost[*page]()
	ds := NewReactiveDataSource(Bounded[*page](), Hidden[*page]())
	relay := rx.NewRelay(pages("A"))

	b := Rx[*page](host).Items(ds).BindUpdates(context.Background(), relay, ShowLast[*page](), WithLogger(quietLogger()))
	defer b.Dispose()

	relay.Accept(append(relay.Value(), &page{name: "B"}))

	if got, _ := host.Displayed(); got.name != "B" {
		t.Errorf("displayed %s, want B", got.name)
	}
	if host.PresentationCount() != 0 {
		t.Errorf("hidden indicator count = %d, want 0", host.PresentationCount())
	}
}
