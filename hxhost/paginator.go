package hxhost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/a-h/templ"
	"github.com/pthm/hxpager"
	"github.com/pthm/hxpager/lib/encoding"
	"github.com/pthm/hxpager/lib/rx"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned when rendering or navigating a closed paginator.
var ErrClosed = errors.New("hxhost: paginator closed")

// ErrInvalidCursor is returned for navigation requests without a valid cursor.
var ErrInvalidCursor = errors.New("hxhost: invalid cursor")

// Page is a page a Paginator can display: a templ component compared by
// identity, usually a pointer.
type Page interface {
	comparable
	templ.Component
}

// Cursor is the position a navigation link was rendered for.
type Cursor struct {
	Index int `msgpack:"i"`
	Count int `msgpack:"n"`
}

// Paginator is an HTMX host paginator. Create it with New and release it
// with Close, which also tears down every binding on it.
type Paginator[P Page] struct {
	id     string
	prefix string
	codec  *encoding.Codec
	sealed atomic.Bool
	queue  *rx.SerialQueue
	log    *logrus.Entry

	mu         sync.RWMutex
	dataSource hxpager.DataSource[P]
	delegate   any
	view       []P
	spine      hxpager.SpineLocation

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a paginator rendered into the element with the given DOM id.
// Its routes live under /_p/<id>.
func New[P Page](id string, codec *encoding.Codec) *Paginator[P] {
	return &Paginator[P]{
		id:     id,
		prefix: "/_p/" + id,
		codec:  codec,
		queue:  rx.NewSerialQueue(),
		log:    hxpager.Logger().WithField("paginator", id),
		spine:  hxpager.SpineMin,
		done:   make(chan struct{}),
	}
}

// Sensitive makes navigation cursors opaque: they are sealed with AES-GCM
// instead of signed. Cursors issued before the switch stop validating.
func (p *Paginator[P]) Sensitive() *Paginator[P] {
	p.sealed.Store(true)
	return p
}

// ID returns the DOM id of the paginator element.
func (p *Paginator[P]) ID() string {
	return p.id
}

// Prefix returns the URL prefix of the paginator's routes.
func (p *Paginator[P]) Prefix() string {
	return p.prefix
}

// Scheduler is the paginator's execution context. Bindings must apply page
// lists on it.
func (p *Paginator[P]) Scheduler() rx.Scheduler {
	return p.queue
}

// Close tears the paginator down. Bindings on it terminate and pending work
// is dropped.
func (p *Paginator[P]) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.queue.Stop()
	})
}

func (p *Paginator[P]) DataSource() hxpager.DataSource[P] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dataSource
}

func (p *Paginator[P]) SetDataSource(ds hxpager.DataSource[P]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dataSource = ds
}

func (p *Paginator[P]) Delegate() any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.delegate
}

func (p *Paginator[P]) SetDelegate(d any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delegate = d
}

func (p *Paginator[P]) ViewPages() []P {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.view)
}

// SetViewPages displays pages. A server-rendered host has nothing to animate,
// so direction and animated only show up in the debug log.
func (p *Paginator[P]) SetViewPages(pages []P, direction hxpager.Direction, animated bool) {
	p.mu.Lock()
	p.view = slices.Clone(pages)
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{
		"direction": direction.String(),
		"animated":  animated,
	}).Debug("hxhost: view pages set")
}

func (p *Paginator[P]) SpineLocation() hxpager.SpineLocation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.spine
}

func (p *Paginator[P]) Done() <-chan struct{} {
	return p.done
}

// Next moves to the page after the displayed one and reports whether it
// moved.
func (p *Paginator[P]) Next() bool {
	return p.navigate(hxpager.Forward, nil)
}

// Previous moves to the page before the displayed one and reports whether it
// moved.
func (p *Paginator[P]) Previous() bool {
	return p.navigate(hxpager.Reverse, nil)
}

// Position returns the cursor for the displayed page.
func (p *Paginator[P]) Position() (Cursor, error) {
	var c Cursor
	if !p.queue.Sync(func() { c = p.position() }) {
		return Cursor{}, ErrClosed
	}
	return c, nil
}

// navigate runs a transition on the queue. A non-nil expected cursor must
// match the displayed position or nothing moves.
func (p *Paginator[P]) navigate(direction hxpager.Direction, expected *Cursor) bool {
	moved := false
	p.queue.Sync(func() {
		if expected != nil && *expected != p.position() {
			p.log.WithField("cursor", expected.Index).Debug("hxhost: stale cursor")
			return
		}
		moved = p.turn(direction)
	})
	return moved
}

// turn performs one transition. It must run on the queue.
func (p *Paginator[P]) turn(direction hxpager.Direction) bool {
	view := p.ViewPages()
	ds := p.DataSource()
	if len(view) == 0 || ds == nil {
		return false
	}
	current := view[0]

	var target P
	var ok bool
	if direction == hxpager.Forward {
		target, ok = ds.PageAfter(p, current)
	} else {
		target, ok = ds.PageBefore(p, current)
	}
	if !ok {
		return false
	}

	delegate := p.Delegate()
	if o, ok := delegate.(hxpager.TransitionObserver[P]); ok {
		o.WillTransition(p, []P{target})
	}

	p.mu.Lock()
	p.view = []P{target}
	p.mu.Unlock()

	if o, ok := delegate.(hxpager.AnimationObserver[P]); ok {
		o.DidFinishAnimating(p, true, []P{current}, true)
	}
	return true
}

// position reads the indicator values through the page-provider slot. It
// must run on the queue.
func (p *Paginator[P]) position() Cursor {
	var c Cursor
	ds := p.DataSource()
	if counter, ok := ds.(hxpager.PresentationCounter[P]); ok {
		c.Count = counter.PresentationCount(p)
	}
	if indexer, ok := ds.(hxpager.PresentationIndexer[P]); ok {
		c.Index = indexer.PresentationIndex(p)
	}
	return c
}

// Render returns the paginator element: the displayed page, the indicator
// and the navigation buttons. Rendering runs on the paginator's queue, so it
// must not be called from work already scheduled there.
func (p *Paginator[P]) Render() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		var err error
		if !p.queue.Sync(func() { err = p.render(ctx, &buf) }) {
			return ErrClosed
		}
		if err != nil {
			return err
		}
		_, err = buf.WriteTo(w)
		return err
	})
}

func (p *Paginator[P]) render(ctx context.Context, w io.Writer) error {
	cursor := p.position()

	if _, err := fmt.Fprintf(w, `<div id="%s" class="hxpager">`, html.EscapeString(p.id)); err != nil {
		return err
	}

	if view := p.ViewPages(); len(view) > 0 {
		if _, err := io.WriteString(w, `<div class="hxpager-page">`); err != nil {
			return err
		}
		if err := view[0].Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</div>`); err != nil {
			return err
		}
	}

	if err := writeIndicator(w, cursor); err != nil {
		return err
	}

	if err := p.writeNav(w, cursor); err != nil {
		return err
	}

	_, err := io.WriteString(w, `</div>`)
	return err
}

func (p *Paginator[P]) writeNav(w io.Writer, cursor Cursor) error {
	prev, err := p.NavAttrs(hxpager.Reverse, cursor)
	if err != nil {
		return err
	}
	next, err := p.NavAttrs(hxpager.Forward, cursor)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, `<nav class="hxpager-nav"><button type="button" class="hxpager-prev"`); err != nil {
		return err
	}
	if err := writeAttrs(w, prev); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `>&lsaquo;</button><button type="button" class="hxpager-next"`); err != nil {
		return err
	}
	if err := writeAttrs(w, next); err != nil {
		return err
	}
	_, err = io.WriteString(w, `>&rsaquo;</button></nav>`)
	return err
}

// writeAttrs writes attrs in key order, each preceded by a space.
func writeAttrs(w io.Writer, attrs templ.Attributes) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, ` %s="%s"`, html.EscapeString(k), html.EscapeString(fmt.Sprint(attrs[k]))); err != nil {
			return err
		}
	}
	return nil
}

// writeIndicator renders one dot per page, nothing when the count is 0.
func writeIndicator(w io.Writer, c Cursor) error {
	if c.Count <= 0 {
		return nil
	}
	if _, err := io.WriteString(w, `<ol class="hxpager-indicator">`); err != nil {
		return err
	}
	for i := 0; i < c.Count; i++ {
		item := `<li></li>`
		if i == c.Index {
			item = `<li aria-current="true"></li>`
		}
		if _, err := io.WriteString(w, item); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</ol>`)
	return err
}

// NavAttrs builds the HTMX attributes of a navigation button rendered at
// cursor.
func (p *Paginator[P]) NavAttrs(direction hxpager.Direction, cursor Cursor) (templ.Attributes, error) {
	token, err := p.codec.Encode(cursor, p.sealed.Load())
	if err != nil {
		return nil, err
	}

	action := "next"
	if direction == hxpager.Reverse {
		action = "prev"
	}

	return templ.Attributes{
		"hx-get":    p.prefix + "/" + action + "?c=" + token,
		"hx-target": "#" + p.id,
		"hx-swap":   string(SwapOuter),
	}, nil
}

// Handler serves the paginator routes:
//
//	GET <prefix>/      renders the paginator
//	GET <prefix>/next  moves forward, then renders
//	GET <prefix>/prev  moves backward, then renders
//
// Navigation requires the c query parameter produced by NavAttrs.
// Non-HTMX navigation requests are redirected to <prefix>/ after moving.
func (p *Paginator[P]) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(p.prefix+"/", func(w http.ResponseWriter, r *http.Request) {
		p.serve(w, r)
	})
	mux.HandleFunc(p.prefix+"/next", func(w http.ResponseWriter, r *http.Request) {
		p.serveNav(w, r, hxpager.Forward)
	})
	mux.HandleFunc(p.prefix+"/prev", func(w http.ResponseWriter, r *http.Request) {
		p.serveNav(w, r, hxpager.Reverse)
	})
	return mux
}

func (p *Paginator[P]) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := Render(w, r, p.Render()); err != nil {
		p.fail(w, err)
	}
}

func (p *Paginator[P]) serveNav(w http.ResponseWriter, r *http.Request, direction hxpager.Direction) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var cursor Cursor
	if err := p.codec.Decode(r.URL.Query().Get("c"), p.sealed.Load(), &cursor); err != nil {
		p.log.WithError(fmt.Errorf("%w: %w", ErrInvalidCursor, err)).Debug("hxhost: rejected cursor")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	p.navigate(direction, &cursor)

	if !IsHTMX(r) {
		http.Redirect(w, r, p.prefix+"/", http.StatusSeeOther)
		return
	}
	p.serve(w, r)
}

func (p *Paginator[P]) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrClosed) {
		http.Error(w, "Gone", http.StatusGone)
		return
	}
	p.log.WithError(err).Error("hxhost: render failed")
	http.Error(w, "Internal error", http.StatusInternalServerError)
}
