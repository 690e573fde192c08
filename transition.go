package hxpager

// PageFunc resolves a neighbouring page for a custom transition. It returns
// false when there is no such page.
type PageFunc[P comparable] func(host Host[P], current P) (P, bool)

type transitionKind int

const (
	transitionBounded transitionKind = iota
	transitionCircular
	transitionCustom
)

// TransitionOption decides the paging order of a ReactiveDataSource.
//
// The zero value is Bounded. An option is chosen once when the data source is
// built; changing the paging behaviour means building a new data source.
type TransitionOption[P comparable] struct {
	kind   transitionKind
	after  PageFunc[P]
	before PageFunc[P]
}

// Bounded pages within the list only: the last page has no next page and the
// first page has no previous page.
func Bounded[P comparable]() TransitionOption[P] {
	return TransitionOption[P]{kind: transitionBounded}
}

// Circular wraps from the last page to the first and back. A single page does
// not wrap onto itself.
func Circular[P comparable]() TransitionOption[P] {
	return TransitionOption[P]{kind: transitionCircular}
}

// CustomTransition hands both decisions to the caller. A nil function means
// "no page" in that direction.
func CustomTransition[P comparable](after, before PageFunc[P]) TransitionOption[P] {
	return TransitionOption[P]{kind: transitionCustom, after: after, before: before}
}

// Next returns the page after current in pages.
func (o TransitionOption[P]) Next(host Host[P], pages []P, current P) (P, bool) {
	if o.kind == transitionCustom {
		return call(o.after, host, current)
	}

	var zero P
	i := indexOf(pages, current)
	switch {
	case i < 0 || len(pages) < 2:
		return zero, false
	case i+1 < len(pages):
		return pages[i+1], true
	case o.kind == transitionCircular:
		return pages[0], true
	default:
		return zero, false
	}
}

// Previous returns the page before current in pages.
func (o TransitionOption[P]) Previous(host Host[P], pages []P, current P) (P, bool) {
	if o.kind == transitionCustom {
		return call(o.before, host, current)
	}

	var zero P
	i := indexOf(pages, current)
	switch {
	case i < 0 || len(pages) < 2:
		return zero, false
	case i > 0:
		return pages[i-1], true
	case o.kind == transitionCircular:
		return pages[len(pages)-1], true
	default:
		return zero, false
	}
}

func (o TransitionOption[P]) String() string {
	switch o.kind {
	case transitionCircular:
		return "circular"
	case transitionCustom:
		return "custom"
	default:
		return "bounded"
	}
}

func call[P comparable](fn PageFunc[P], host Host[P], current P) (P, bool) {
	if fn == nil {
		var zero P
		return zero, false
	}
	return fn(host, current)
}

// indexOf returns the position of the first page equal to p, or -1.
func indexOf[P comparable](pages []P, p P) int {
	for i, page := range pages {
		if page == p {
			return i
		}
	}
	return -1
}
