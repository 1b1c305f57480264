// Package cache provides caching for fetched collaborator documents.
//
// The engine fetches template and texture documents from the metadata
// store at most once per identifier within a session. This package defines
// the Cache interface and four backends:
//   - memory: process-lifetime map, the default for the engine's
//     fetch-once-per-identifier texture cache
//   - file: directory-backed cache with TTL metadata for CLI usage
//   - redis: shared cache for multi-instance API deployments
//   - null: caching disabled (testing, --refresh)
package cache

import (
	"context"
	"time"
)

// TTLs for the different document classes. Textures are admin-authored and
// effectively immutable; templates can be re-edited, so they expire sooner.
const (
	TTLTexture  = 0 // never expires within a backend's lifetime
	TTLTemplate = 24 * time.Hour
)

// Cache stores fetched documents keyed by identifier.
type Cache interface {
	// Get retrieves a value from the cache.
	// The second return value reports whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Keyer generates namespaced cache keys for the document classes.
type Keyer interface {
	// TemplateKey generates a key for a template document locator.
	TemplateKey(locator string) string

	// TextureKey generates a key for a texture document identifier.
	TextureKey(textureID string) string

	// BaseResultKey generates a key for a (template, user text) base result.
	BaseResultKey(templateID, text string) string
}

// DefaultKeyer hashes identifiers into fixed-length namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TemplateKey generates a key for a template document locator.
func (DefaultKeyer) TemplateKey(locator string) string {
	return hashKey("template", locator)
}

// TextureKey generates a key for a texture document identifier.
func (DefaultKeyer) TextureKey(textureID string) string {
	return hashKey("texture", textureID)
}

// BaseResultKey generates a key for a (template, user text) base result.
func (DefaultKeyer) BaseResultKey(templateID, text string) string {
	return hashKey("base", templateID, text)
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// Useful when several sessions share one Redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TemplateKey generates a prefixed template key.
func (k *ScopedKeyer) TemplateKey(locator string) string {
	return k.prefix + k.inner.TemplateKey(locator)
}

// TextureKey generates a prefixed texture key.
func (k *ScopedKeyer) TextureKey(textureID string) string {
	return k.prefix + k.inner.TextureKey(textureID)
}

// BaseResultKey generates a prefixed base-result key.
func (k *ScopedKeyer) BaseResultKey(templateID, text string) string {
	return k.prefix + k.inner.BaseResultKey(templateID, text)
}
