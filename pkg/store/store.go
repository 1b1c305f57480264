// Package store holds the collaborator contracts the engine consumes: the
// template catalog (read-only source of truth for templates and their text
// zones) and the document fetcher for raw template and texture markup.
package store

import (
	"context"
	"sort"
)

// TextZone is an editable text region of a template. Zones are owned
// exclusively by their template and processed in ascending sort order.
type TextZone struct {
	Label      string  `json:"label,omitempty"`
	Index      int     `json:"index"` // zero-based text element index within the document
	FontFamily string  `json:"font_family,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	Fill       string  `json:"fill,omitempty"`
	Stroke     string  `json:"stroke,omitempty"`
	Transform  string  `json:"transform,omitempty"`
	MaxWidth   float64 `json:"max_width,omitempty"` // optional bounding width constraint, 0 when unset
	Editable   bool    `json:"editable"`
	SortOrder  int     `json:"sort_order,omitempty"`
}

// Template is an immutable catalog entry. Created and edited by the admin
// collaborator; the engine only reads it.
type Template struct {
	ID          string     `json:"id"`
	Locator     string     `json:"locator"` // raw document locator, resolved by a DocumentFetcher
	Name        string     `json:"name,omitempty"`
	Width       float64    `json:"width,omitempty"`
	Height      float64    `json:"height,omitempty"`
	Shape       string     `json:"shape,omitempty"`
	Object      string     `json:"object,omitempty"`
	FrameStyle  string     `json:"frame_style,omitempty"`
	BorderStyle string     `json:"border_style,omitempty"`
	FillStyle   string     `json:"fill_style,omitempty"` // filled or outlined
	CornerStyle string     `json:"corner_style,omitempty"`
	Palette     []string   `json:"palette,omitempty"` // hint colors, hex without '#'
	Zones       []TextZone `json:"zones,omitempty"`
}

// EditableZones returns the template's editable zones in ascending sort
// order. Only these receive user text.
func (t *Template) EditableZones() []TextZone {
	zones := make([]TextZone, 0, len(t.Zones))
	for _, z := range t.Zones {
		if z.Editable {
			zones = append(zones, z)
		}
	}
	sort.SliceStable(zones, func(i, j int) bool { return zones[i].SortOrder < zones[j].SortOrder })
	return zones
}

// TemplateStore is the catalog read contract. The engine never mutates it.
type TemplateStore interface {
	// ListActiveTemplates returns every active template with its zones.
	ListActiveTemplates(ctx context.Context) ([]Template, error)

	// Close releases the store's resources.
	Close(ctx context.Context) error
}

// DocumentFetcher retrieves raw documents from the collaborator store.
type DocumentFetcher interface {
	// FetchTemplate retrieves a template document by locator.
	FetchTemplate(ctx context.Context, locator string) (string, error)

	// FetchTexture retrieves a texture document by identifier.
	FetchTexture(ctx context.Context, textureID string) (string, error)
}
