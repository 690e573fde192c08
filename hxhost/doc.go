// Package hxhost is a server-rendered host paginator for hxpager.
//
// A Paginator implements hxpager.Host for pages that are templ components. It
// keeps the displayed page in memory, renders it together with a page
// indicator and previous/next buttons, and serves the HTMX requests those
// buttons make. Navigation asks the page-provider slot for the neighbouring
// page and reports the transition to the lifecycle-notifier slot, exactly as
// a native paginator widget would.
//
//	codec, _ := encoding.NewCodec(key)
//	pager := hxhost.New[*Slide]("gallery", codec)
//	defer pager.Close()
//
//	ds := hxpager.NewReactiveDataSource(hxpager.Bounded[*Slide](), hxpager.Automatic[*Slide]())
//	hxpager.BindUpdates(ctx, pager, slides, ds, hxpager.ShowLast[*Slide](),
//	    hxpager.WithScheduler(pager.Scheduler()))
//
//	http.Handle(pager.Prefix()+"/", pager.Handler())
//
// All host state is touched on the paginator's own serial queue, which is the
// execution context bindings must be scheduled on.
//
// Each navigation link carries a signed cursor naming the page index the
// client was looking at. A request whose cursor no longer matches the
// displayed page (a double click, or a page added in between) re-renders the
// current page instead of moving twice.
package hxhost
