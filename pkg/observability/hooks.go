// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about scene
// optimization, cache operations, and API requests. Nothing in this package
// depends on a particular metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetOptimizeHooks(&myOptimizeHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Optimize().OnOptimizeStart(ctx, scene, panels)
//	// ... optimize panels ...
//	observability.Optimize().OnOptimizeComplete(ctx, scene, before, after, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Optimize Hooks
// =============================================================================

// OptimizeHooks receives events from scene optimization.
type OptimizeHooks interface {
	// OnOptimizeStart is called before the panels of a scene are processed.
	OnOptimizeStart(ctx context.Context, scene string, panels int)

	// OnPanelComplete is called once per processed panel.
	OnPanelComplete(ctx context.Context, panel string, before, after int, applied bool)

	// OnOptimizeComplete is called with the scene's draw-call totals.
	OnOptimizeComplete(ctx context.Context, scene string, before, after int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopOptimizeHooks is a no-op implementation of OptimizeHooks.
type NoopOptimizeHooks struct{}

func (NoopOptimizeHooks) OnOptimizeStart(context.Context, string, int)            {}
func (NoopOptimizeHooks) OnPanelComplete(context.Context, string, int, int, bool) {}
func (NoopOptimizeHooks) OnOptimizeComplete(context.Context, string, int, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	optimizeHooks OptimizeHooks = NoopOptimizeHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	serverHooks   ServerHooks   = NoopServerHooks{}
	hooksMu       sync.RWMutex
)

// SetOptimizeHooks registers custom optimize hooks. A nil value is ignored.
func SetOptimizeHooks(h OptimizeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		optimizeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. A nil value is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers custom server hooks. A nil value is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Optimize returns the registered optimize hooks.
func Optimize() OptimizeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return optimizeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	optimizeHooks = NoopOptimizeHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
