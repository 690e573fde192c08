package hxhost

// SwapMode defines HTMX swap strategies for how response HTML replaces the target.
//
// See https://htmx.org/attributes/hx-swap/ for visual examples.
type SwapMode string

// SwapOuter replaces the entire element including its tag (outerHTML).
// Paginator responses always carry their own wrapper element, so navigation
// swaps outer HTML.
const SwapOuter SwapMode = "outerHTML"
