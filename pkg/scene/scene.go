// Package scene models UI panels of rectangular widgets and adapts them to
// the batch package.
//
// # Overview
//
// A [Scene] holds [Panel]s; each panel lists its [Widget]s directly. Panels
// are batched independently, as a renderer builds draw calls per panel.
//
// A widget is renderable when it references at least one of a material, a
// texture or a shader. Renderable widgets are wrapped as [WidgetItem]s whose
// batch key combines the three identifiers and whose overlap test is a
// strict rectangle intersection in panel space.
//
// # Optimization
//
// [OptimizePanel] reorders a panel's widgets with [batch.Sort], compares
// draw calls before and after, and writes new depths back into the widgets
// when the count went down (or always, with Options.ApplyUnchanged).
//
// # JSON Format
//
//	{
//	  "name": "main-menu",
//	  "panels": [
//	    {
//	      "name": "HUD",
//	      "widgets": [
//	        {"id": "bg", "depth": 0, "material": "m1", "texture": "atlas",
//	         "rect": {"x": 0, "y": 0, "w": 100, "h": 50}}
//	      ]
//	    }
//	  ]
//	}
//
// See [ReadJSON] and [WriteJSON].
package scene

import (
	"errors"
	"fmt"

	apperrors "github.com/matzehuels/batchsort/pkg/errors"
)

var (
	// ErrDuplicateWidget is returned by [Scene.Validate] when two widgets in
	// the same panel share an ID.
	ErrDuplicateWidget = errors.New("duplicate widget ID")

	// ErrDuplicatePanel is returned by [Scene.Validate] when two panels share
	// a name.
	ErrDuplicatePanel = errors.New("duplicate panel name")

	// ErrNegativeSize is returned by [Scene.Validate] for a widget rectangle
	// with negative width or height.
	ErrNegativeSize = errors.New("negative rectangle size")
)

// Rect is an axis-aligned rectangle in panel space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Overlaps reports whether r and o share interior area. Rectangles that
// only touch along an edge do not overlap. The relation is symmetric.
func (r Rect) Overlaps(o Rect) bool {
	return o.X+o.W > r.X && o.X < r.X+r.W &&
		o.Y+o.H > r.Y && o.Y < r.Y+r.H
}

// Widget is a renderable UI element.
type Widget struct {
	ID       string `json:"id"`
	Depth    int    `json:"depth"`
	Material string `json:"material,omitempty"`
	Texture  string `json:"texture,omitempty"`
	Shader   string `json:"shader,omitempty"`
	Rect     Rect   `json:"rect"`
}

// Renderable reports whether the widget references any render resource.
// Widgets that are not renderable never produce a draw call.
func (w Widget) Renderable() bool {
	return w.Material != "" || w.Texture != "" || w.Shader != ""
}

// BatchKey returns the key identifying the draw call the widget belongs to.
func (w Widget) BatchKey() string {
	return fmt.Sprintf("Material:%s;Texture:%s;Shader:%s", w.Material, w.Texture, w.Shader)
}

// Panel is a group of widgets batched together.
type Panel struct {
	Name    string   `json:"name"`
	Widgets []Widget `json:"widgets"`
}

// Widget returns a pointer to the widget with the given ID, or nil.
func (p *Panel) Widget(id string) *Widget {
	for i := range p.Widgets {
		if p.Widgets[i].ID == id {
			return &p.Widgets[i]
		}
	}
	return nil
}

// Scene is a named collection of panels.
type Scene struct {
	Name   string  `json:"name,omitempty"`
	Panels []Panel `json:"panels"`
}

// Panel returns a pointer to the panel with the given name, or nil.
func (s *Scene) Panel(name string) *Panel {
	for i := range s.Panels {
		if s.Panels[i].Name == name {
			return &s.Panels[i]
		}
	}
	return nil
}

// WidgetCount returns the total number of widgets across all panels.
func (s *Scene) WidgetCount() int {
	n := 0
	for _, p := range s.Panels {
		n += len(p.Widgets)
	}
	return n
}

// Validate checks panel names, widget IDs and rectangle sizes.
// Errors carry the INVALID_SCENE or INVALID_NAME code and wrap the
// package's sentinel errors where one applies.
func (s *Scene) Validate() error {
	panels := make(map[string]bool, len(s.Panels))
	for _, p := range s.Panels {
		if err := apperrors.ValidateName("panel", p.Name); err != nil {
			return err
		}
		if panels[p.Name] {
			return apperrors.Wrap(apperrors.ErrCodeInvalidScene, ErrDuplicatePanel, "panel %q", p.Name)
		}
		panels[p.Name] = true

		ids := make(map[string]bool, len(p.Widgets))
		for _, w := range p.Widgets {
			if err := apperrors.ValidateName("widget", w.ID); err != nil {
				return apperrors.Wrap(apperrors.ErrCodeInvalidScene, err, "panel %q", p.Name)
			}
			if ids[w.ID] {
				return apperrors.Wrap(apperrors.ErrCodeInvalidScene, ErrDuplicateWidget, "panel %q widget %q", p.Name, w.ID)
			}
			ids[w.ID] = true
			if w.Rect.W < 0 || w.Rect.H < 0 {
				return apperrors.Wrap(apperrors.ErrCodeInvalidScene, ErrNegativeSize, "panel %q widget %q", p.Name, w.ID)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	c := &Scene{Name: s.Name, Panels: make([]Panel, len(s.Panels))}
	for i, p := range s.Panels {
		c.Panels[i] = Panel{Name: p.Name, Widgets: append([]Widget(nil), p.Widgets...)}
	}
	return c
}
