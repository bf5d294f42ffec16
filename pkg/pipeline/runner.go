package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/batchsort/pkg/cache"
	apperrors "github.com/matzehuels/batchsort/pkg/errors"
	"github.com/matzehuels/batchsort/pkg/observability"
	"github.com/matzehuels/batchsort/pkg/scene"
)

// cacheKeyType labels report entries in cache hooks.
const cacheKeyType = "report"

// Runner encapsulates scene optimization with caching.
// Both CLI and API use it so caching and instrumentation behave the same.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLReport,
	}
}

// Optimize reduces the draw calls of every panel in sc (or only
// opts.Panel) and returns the report. sc itself is never modified; the
// optimized copy is Report.Result.
//
// Cache failures are logged and otherwise ignored.
func (r *Runner) Optimize(ctx context.Context, sc *scene.Scene, opts Options) (*Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Panel != "" && sc.Panel(opts.Panel) == nil {
		return nil, apperrors.New(apperrors.ErrCodePanelNotFound, "panel %q not found", opts.Panel)
	}

	data, err := json.Marshal(sc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "hash scene")
	}
	sceneHash := cache.Hash(data)
	key := r.Keyer.ReportKey(sceneHash, opts.keyOpts())

	if !opts.Refresh {
		if rep, ok := r.lookup(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			r.Logger.Debug("report cache hit", "scene", sc.Name, "id", rep.ID)
			rep.Cached = true
			return rep, nil
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	start := time.Now()
	observability.Optimize().OnOptimizeStart(ctx, sc.Name, len(sc.Panels))
	rep, err := r.optimize(ctx, sc, opts)
	if err != nil {
		observability.Optimize().OnOptimizeComplete(ctx, sc.Name, 0, 0, time.Since(start), err)
		return nil, err
	}
	rep.SceneHash = sceneHash
	rep.Duration = time.Since(start)
	observability.Optimize().OnOptimizeComplete(ctx, sc.Name, rep.Before, rep.After, rep.Duration, nil)

	r.Logger.Info("optimized scene",
		"scene", sc.Name,
		"panels", len(rep.Panels),
		"draw_calls", fmt.Sprintf("%d -> %d", rep.Before, rep.After),
		"duration", rep.Duration)

	r.store(ctx, key, rep)
	return rep, nil
}

// optimize clones sc and optimizes the selected panels concurrently.
func (r *Runner) optimize(ctx context.Context, sc *scene.Scene, opts Options) (*Report, error) {
	out := sc.Clone()

	var selected []int
	for i := range out.Panels {
		if opts.Panel == "" || out.Panels[i].Name == opts.Panel {
			selected = append(selected, i)
		}
	}

	results := make([]scene.PanelResult, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for n, i := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := &out.Panels[i]
			res, err := scene.OptimizePanel(p, opts.sceneOpts())
			if err != nil {
				return err
			}
			results[n] = res
			observability.Optimize().OnPanelComplete(gctx, p.Name, res.Before, res.After, res.Applied)
			r.Logger.Debug("optimized panel",
				"panel", p.Name,
				"widgets", res.Widgets,
				"before", res.Before,
				"after", res.After,
				"applied", res.Applied,
				"skipped", res.SkipReason)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{
		ID:        uuid.NewString(),
		Scene:     sc.Name,
		CreatedAt: time.Now().UTC(),
		Panels:    results,
		Result:    out,
	}
	for _, res := range results {
		rep.Before += res.Before
		rep.After += res.After
	}
	return rep, nil
}

// lookup returns the cached report for key. Retryable backend errors are
// retried with backoff; undecodable entries count as misses.
func (r *Runner) lookup(ctx context.Context, key string) (*Report, bool) {
	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		r.Logger.Warn("cache lookup failed", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "err", err)
		return nil, false
	}
	return &rep, true
}

// store writes rep to the cache.
func (r *Runner) store(ctx context.Context, key string, rep *Report) {
	data, err := json.Marshal(rep)
	if err != nil {
		r.Logger.Warn("encode report for cache", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
