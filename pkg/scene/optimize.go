package scene

import (
	"errors"

	"github.com/matzehuels/batchsort/pkg/batch"
	apperrors "github.com/matzehuels/batchsort/pkg/errors"
)

// SkipNoWidgets is the skip reason for panels without renderable widgets.
const SkipNoWidgets = "no renderable widgets"

// Options controls how optimization results are applied.
type Options struct {
	// ApplyUnchanged renumbers depths even when the draw-call count did
	// not go down.
	ApplyUnchanged bool `json:"apply_unchanged,omitempty"`
}

// PanelResult reports the outcome of optimizing one panel.
type PanelResult struct {
	Panel      string     `json:"panel"`
	Widgets    int        `json:"widgets"` // Renderable widgets considered
	Before     int        `json:"before"`  // Draw calls before
	After      int        `json:"after"`   // Draw calls after
	Applied    bool       `json:"applied"`
	SkipReason string     `json:"skip_reason,omitempty"`
	Order      []string   `json:"order,omitempty"` // Widget IDs in render order
	DrawCalls  []DrawCall `json:"draw_calls,omitempty"`
}

// Saved returns the number of draw calls removed.
func (r PanelResult) Saved() int { return r.Before - r.After }

// Skipped reports whether the panel was not processed.
func (r PanelResult) Skipped() bool { return r.SkipReason != "" }

// OptimizePanel reorders p's renderable widgets to reduce draw calls and,
// when applied, rewrites their depths in place.
//
// A panel with no renderable widgets is skipped, not an error. A broken
// ordering invariant is returned as an UNSORTABLE error and depths that
// cannot be renumbered within range as INVALID_SCENE. Either way the panel
// is left untouched.
func OptimizePanel(p *Panel, opts Options) (PanelResult, error) {
	res := PanelResult{Panel: p.Name}
	items := BuildItems(p)
	res.Widgets = len(items)
	if len(items) == 0 {
		res.SkipReason = SkipNoWidgets
		return res, nil
	}

	out, err := batch.Optimize(items)
	if err != nil {
		return res, apperrors.Wrap(apperrors.ErrCodeUnsortable, err, "panel %q", p.Name)
	}
	res.Before, res.After = out.Before, out.After

	order := items
	if out.Improved() || opts.ApplyUnchanged {
		if err := batch.AdjustDepth(out.Items); err != nil {
			code := apperrors.ErrCodeInternal
			if errors.Is(err, batch.ErrDepthOverflow) {
				code = apperrors.ErrCodeInvalidScene
			}
			return res, apperrors.Wrap(code, err, "panel %q", p.Name)
		}
		res.Applied = true
		order = out.Items
	}

	res.Order = make([]string, len(order))
	for i, it := range order {
		res.Order[i] = it.ID()
	}
	res.DrawCalls = DrawCalls(order)
	return res, nil
}

// CountDrawCalls returns the number of draw calls p needs in its current
// depth order.
func CountDrawCalls(p *Panel) int {
	return batch.CountRuns(BuildItems(p))
}
