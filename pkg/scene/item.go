package scene

import (
	"cmp"

	"github.com/matzehuels/batchsort/pkg/batch"
)

// WidgetItem adapts a widget to [batch.Item]. SetDepth writes through to the
// wrapped widget.
type WidgetItem struct {
	widget *Widget
	key    string
}

// NewWidgetItem wraps w. The batch key is captured once.
func NewWidgetItem(w *Widget) *WidgetItem {
	return &WidgetItem{widget: w, key: w.BatchKey()}
}

// Widget returns the wrapped widget.
func (it *WidgetItem) Widget() *Widget { return it.widget }

// ID returns the widget ID.
func (it *WidgetItem) ID() string { return it.widget.ID }

// Key returns the widget's batch key.
func (it *WidgetItem) Key() string { return it.key }

// Depth returns the widget's current depth.
func (it *WidgetItem) Depth() int { return it.widget.Depth }

// SetDepth updates the widget's depth.
func (it *WidgetItem) SetDepth(depth int) { it.widget.Depth = depth }

// Compare orders by depth, then by material with widgets that have one
// first, then by material and ID.
func (it *WidgetItem) Compare(o *WidgetItem) int {
	a, b := it.widget, o.widget
	if c := cmp.Compare(a.Depth, b.Depth); c != 0 {
		return c
	}
	if a.Material != b.Material {
		switch {
		case b.Material == "":
			return -1
		case a.Material == "":
			return 1
		}
		return cmp.Compare(a.Material, b.Material)
	}
	return cmp.Compare(a.ID, b.ID)
}

// Overlaps reports whether the widgets' rectangles intersect.
func (it *WidgetItem) Overlaps(o *WidgetItem) bool {
	return it.widget.Rect.Overlaps(o.widget.Rect)
}

var _ batch.Mutable[*WidgetItem] = (*WidgetItem)(nil)

// BuildItems wraps the panel's renderable widgets and sorts them into
// initial order. The items point into p.Widgets, so depth changes made
// through them are visible in the panel.
func BuildItems(p *Panel) []*WidgetItem {
	items := make([]*WidgetItem, 0, len(p.Widgets))
	for i := range p.Widgets {
		if !p.Widgets[i].Renderable() {
			continue
		}
		items = append(items, NewWidgetItem(&p.Widgets[i]))
	}
	batch.SortItems(items)
	return items
}

// DrawCall describes one run of widgets rendered together.
type DrawCall struct {
	Index int    `json:"index"` // 1-based position
	Size  int    `json:"size"`  // Number of widgets in the run
	First string `json:"first"` // ID of the first widget
	Key   string `json:"key"`
}

// DrawCalls lists the draw calls needed to render items in order.
func DrawCalls(items []*WidgetItem) []DrawCall {
	runs := batch.Runs(items)
	calls := make([]DrawCall, len(runs))
	for i, r := range runs {
		calls[i] = DrawCall{
			Index: i + 1,
			Size:  r.Len(),
			First: items[r.Start].ID(),
			Key:   r.Key,
		}
	}
	return calls
}
