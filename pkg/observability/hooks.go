// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about pipeline execution, cache
// operations, and document fetches.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This keeps the core library free of observability frameworks while
// allowing different backends (OpenTelemetry, Prometheus, DataDog, etc.).
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the personalization pipeline.
type PipelineHooks interface {
	// Base-result events
	OnBaseResultStart(ctx context.Context, templateID string)
	OnBaseResultComplete(ctx context.Context, templateID string, duration time.Duration, err error)

	// Variant events
	OnVariantComplete(ctx context.Context, templateID, descriptor string, duration time.Duration, err error)
}

// CacheHooks receives cache operation events.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, bytes int)
}

// FetchHooks receives document fetch events.
type FetchHooks interface {
	OnRequest(ctx context.Context, url string)
	OnResponse(ctx context.Context, url string, status int, duration time.Duration)
	OnError(ctx context.Context, url string, err error)
}

// NoopPipelineHooks is the default no-op implementation.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBaseResultStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnBaseResultComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnVariantComplete(context.Context, string, string, time.Duration, error) {
}

// NoopCacheHooks is the default no-op implementation.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopFetchHooks is the default no-op implementation.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnRequest(context.Context, string)                      {}
func (NoopFetchHooks) OnResponse(context.Context, string, int, time.Duration) {}
func (NoopFetchHooks) OnError(context.Context, string, error)                 {}

var (
	mu            sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	fetchHooks    FetchHooks    = NoopFetchHooks{}
)

// SetPipelineHooks registers pipeline hooks. Call at startup, before the
// pipeline runs.
func SetPipelineHooks(h PipelineHooks) {
	mu.Lock()
	defer mu.Unlock()
	pipelineHooks = h
}

// SetCacheHooks registers cache hooks.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	cacheHooks = h
}

// SetFetchHooks registers fetch hooks.
func SetFetchHooks(h FetchHooks) {
	mu.Lock()
	defer mu.Unlock()
	fetchHooks = h
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}

// Fetch returns the registered fetch hooks.
func Fetch() FetchHooks {
	mu.RLock()
	defer mu.RUnlock()
	return fetchHooks
}

// Reset restores the no-op defaults. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	fetchHooks = NoopFetchHooks{}
}
