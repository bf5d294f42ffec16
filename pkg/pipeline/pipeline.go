// Package pipeline runs scene optimization for the CLI and the HTTP API.
//
// A [Runner] takes a validated [scene.Scene], optimizes each panel with
// [scene.OptimizePanel] and returns a [Report]. Reports are cached by scene
// content and options, so optimizing the same scene twice only builds the
// dependency graphs once.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	report, err := runner.Optimize(ctx, sc, pipeline.Options{Concurrency: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Before, "->", report.After)
//
// Panels are independent and are optimized concurrently, each with its own
// graph. The report keeps the scene's panel order.
package pipeline

import (
	"time"

	"github.com/matzehuels/batchsort/pkg/batch"
	"github.com/matzehuels/batchsort/pkg/cache"
	apperrors "github.com/matzehuels/batchsort/pkg/errors"
	"github.com/matzehuels/batchsort/pkg/scene"
)

// DefaultConcurrency is the number of panels optimized at once when
// Options.Concurrency is not set.
const DefaultConcurrency = 4

// MaxConcurrency bounds Options.Concurrency.
const MaxConcurrency = 64

// Options configures a pipeline run.
type Options struct {
	// ApplyUnchanged renumbers depths even for panels whose draw-call count
	// did not go down.
	ApplyUnchanged bool `json:"apply_unchanged,omitempty"`

	// Panel restricts optimization to the named panel. Other panels are
	// copied to the result unchanged and are not reported.
	Panel string `json:"panel,omitempty"`

	// Concurrency is the number of panels optimized at once.
	Concurrency int `json:"concurrency,omitempty"`

	// Refresh skips the cache lookup. The fresh report is still stored.
	Refresh bool `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Concurrency < 0 || o.Concurrency > MaxConcurrency {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "concurrency must be between 1 and %d, got %d", MaxConcurrency, o.Concurrency)
	}
	if o.Panel != "" {
		if err := apperrors.ValidateName("panel", o.Panel); err != nil {
			return err
		}
	}
	return nil
}

// keyOpts returns the options that change a report.
func (o Options) keyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{ApplyUnchanged: o.ApplyUnchanged, Panel: o.Panel}
}

// sceneOpts returns the per-panel options.
func (o Options) sceneOpts() scene.Options {
	return scene.Options{ApplyUnchanged: o.ApplyUnchanged}
}

// Report is the outcome of optimizing a scene.
type Report struct {
	ID        string              `json:"id"`
	Scene     string              `json:"scene,omitempty"`
	SceneHash string              `json:"scene_hash"`
	CreatedAt time.Time           `json:"created_at"`
	Before    int                 `json:"before"` // Draw calls before, summed over processed panels
	After     int                 `json:"after"`  // Draw calls after
	Panels    []scene.PanelResult `json:"panels"`
	Result    *scene.Scene        `json:"result"` // Scene with rewritten depths
	Cached    bool                `json:"cached"`
	Duration  time.Duration       `json:"duration"`
}

// Saved returns the number of draw calls removed across the scene.
func (r *Report) Saved() int { return r.Before - r.After }

// Applied returns the number of panels whose depths were rewritten.
func (r *Report) Applied() int {
	n := 0
	for _, p := range r.Panels {
		if p.Applied {
			n++
		}
	}
	return n
}

// PanelCount is the draw-call count of one panel in its current order.
type PanelCount struct {
	Panel     string `json:"panel"`
	Widgets   int    `json:"widgets"`
	DrawCalls int    `json:"draw_calls"`
}

// CountReport lists draw-call counts per panel.
type CountReport struct {
	Scene  string       `json:"scene,omitempty"`
	Total  int          `json:"total"`
	Panels []PanelCount `json:"panels"`
}

// Count returns the draw calls each panel of sc needs as it stands. It does
// not modify the scene.
func Count(sc *scene.Scene) CountReport {
	rep := CountReport{Scene: sc.Name, Panels: make([]PanelCount, len(sc.Panels))}
	for i := range sc.Panels {
		p := &sc.Panels[i]
		items := scene.BuildItems(p)
		n := batch.CountRuns(items)
		rep.Panels[i] = PanelCount{Panel: p.Name, Widgets: len(items), DrawCalls: n}
		rep.Total += n
	}
	return rep
}
