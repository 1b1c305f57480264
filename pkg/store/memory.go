package store

import (
	"context"

	"github.com/motifhq/motif/pkg/errors"
)

// MemoryStore is a TemplateStore backed by a fixed slice, used by tests and
// the CLI's local mode.
type MemoryStore struct {
	Templates []Template
}

// ListActiveTemplates returns all templates.
func (s *MemoryStore) ListActiveTemplates(context.Context) ([]Template, error) {
	return s.Templates, nil
}

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error { return nil }

// MemoryFetcher serves documents from in-memory maps, used by tests and the
// CLI's local mode (template locators are file paths read up front).
type MemoryFetcher struct {
	Templates map[string]string // locator -> document
	Textures  map[string]string // textureID -> document
}

// FetchTemplate returns the document stored under the locator.
func (f *MemoryFetcher) FetchTemplate(_ context.Context, locator string) (string, error) {
	doc, ok := f.Templates[locator]
	if !ok {
		return "", errors.New(errors.ErrCodeTemplateNotFound, "no template document for %q", locator)
	}
	return doc, nil
}

// FetchTexture returns the document stored under the identifier.
func (f *MemoryFetcher) FetchTexture(_ context.Context, textureID string) (string, error) {
	doc, ok := f.Textures[textureID]
	if !ok {
		return "", errors.New(errors.ErrCodeTextureNotFound, "no texture document for %q", textureID)
	}
	return doc, nil
}

var (
	_ TemplateStore   = (*MemoryStore)(nil)
	_ DocumentFetcher = (*MemoryFetcher)(nil)
)
