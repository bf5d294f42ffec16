package batch

import (
	"errors"
	"slices"
)

var (
	// ErrNoAvailableNode is returned by [Sort] when unprocessed items remain
	// but none of them is free of unresolved predecessors. This indicates a
	// cycle, which the graph builder never creates on its own.
	ErrNoAvailableNode = errors.New("no available node while items remain")

	// ErrEmptyRun is returned by the depth renumberer when a run boundary
	// covers no items.
	ErrEmptyRun = errors.New("run must contain at least one item")

	// ErrDepthOverflow is returned by [Depths] when a run ends at
	// math.MaxInt and later items would need a larger depth.
	ErrDepthOverflow = errors.New("depth out of range")
)

// Item is a render element that can be reordered by [Sort].
//
// T is the concrete item type, usually a pointer to the implementing struct:
//
//	type Widget struct{ ... }
//	func (w *Widget) Compare(o *Widget) int { ... }
//	func (w *Widget) Overlaps(o *Widget) bool { ... }
//
// Key identifies the batch; only equality matters. Compare must be a
// deterministic total order with ties broken by a stable identifier.
// Overlaps must be symmetric.
type Item[T any] interface {
	Key() string
	Depth() int
	Compare(other T) int
	Overlaps(other T) bool
}

// Mutable is an [Item] whose depth can be written back by [AdjustDepth].
type Mutable[T any] interface {
	Item[T]
	SetDepth(depth int)
}

// SortItems sorts items in place by their initial order (Item.Compare).
// Items comparing equal keep their relative position.
func SortItems[T Item[T]](items []T) {
	slices.SortStableFunc(items, func(a, b T) int { return a.Compare(b) })
}
