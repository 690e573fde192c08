package hxpager

// CountFunc reports an indicator value for a custom indicator.
type CountFunc[P comparable] func(host Host[P]) int

type indicatorKind int

const (
	indicatorAutomatic indicatorKind = iota
	indicatorHidden
	indicatorCustom
)

// IndicatorOption decides what a ReactiveDataSource reports to the host's page
// indicator. The zero value is Automatic.
type IndicatorOption[P comparable] struct {
	kind  indicatorKind
	count CountFunc[P]
	index CountFunc[P]
}

// Hidden disables the indicator: count and index are always 0.
func Hidden[P comparable]() IndicatorOption[P] {
	return IndicatorOption[P]{kind: indicatorHidden}
}

// Automatic reports the number of pages and the position of the displayed
// page, or 0 when the displayed page is not in the list.
func Automatic[P comparable]() IndicatorOption[P] {
	return IndicatorOption[P]{kind: indicatorAutomatic}
}

// CustomIndicator hands both values to the caller. A nil function reports 0.
func CustomIndicator[P comparable](count, index CountFunc[P]) IndicatorOption[P] {
	return IndicatorOption[P]{kind: indicatorCustom, count: count, index: index}
}

// Count returns the number of indicator dots for pages.
func (o IndicatorOption[P]) Count(host Host[P], pages []P) int {
	switch o.kind {
	case indicatorHidden:
		return 0
	case indicatorCustom:
		return callCount(o.count, host)
	default:
		return len(pages)
	}
}

// Index returns the selected indicator dot for the displayed page.
func (o IndicatorOption[P]) Index(host Host[P], pages []P, displayed P) int {
	switch o.kind {
	case indicatorHidden:
		return 0
	case indicatorCustom:
		return callCount(o.index, host)
	default:
		if i := indexOf(pages, displayed); i >= 0 {
			return i
		}
		return 0
	}
}

func (o IndicatorOption[P]) String() string {
	switch o.kind {
	case indicatorHidden:
		return "hidden"
	case indicatorCustom:
		return "custom"
	default:
		return "automatic"
	}
}

func callCount[P comparable](fn CountFunc[P], host Host[P]) int {
	if fn == nil {
		return 0
	}
	return fn(host)
}
