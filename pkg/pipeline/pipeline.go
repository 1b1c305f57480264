// Package pipeline drives the full personalization pipeline for Motif.
//
// This package implements the complete normalize → inject → auto-fit →
// decorate chain that can be used by CLI and API components. By centralizing
// this logic, we ensure consistent behavior across all entry points.
//
// # Architecture
//
// The pipeline has two halves:
//
//  1. Base result: fetch a template document, normalize it, inject the user
//     text into every editable zone, auto-fit, and tighten the bounds. Base
//     results are cached per (template, text) pair.
//  2. Variants: fan a base result out through the decorative compositors
//     (colorize, frame, tilt, texture) for a specific descriptor tuple.
//
// Catalog and filtered generation enumerate descriptor tuples across the
// template catalog and serve the rendered variants through a Pager.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, fetcher, cache, measurer, logger)
//	opts := pipeline.Options{Text: "HAPPY BIRTHDAY ANNA"}
//	pager, err := runner.Generate(ctx, opts)
//	for {
//	    page, done := pager.Next(ctx)
//	    show(page)
//	    if done {
//	        break
//	    }
//	}
package pipeline

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/motifhq/motif/pkg/errors"
)

const (
	// DefaultPageSize is the number of variants served per pager call.
	DefaultPageSize = 12

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)
)

// Descriptor is the compact externalizable form of a Variant. Combined with
// the user text it regenerates an identical variant deterministically; deep
// links and session-restore state are built from it, never from the rendered
// document.
type Descriptor struct {
	TemplateID string `json:"template"`
	// Color is the variant color as hex without the '#' prefix, empty for
	// the template's authored colors.
	Color string `json:"color,omitempty"`
	// Frame is the frame rendering: single, double, or split.
	Frame string `json:"frame,omitempty"`
	// Tilt is the rotation in degrees, within (-360, 360).
	Tilt int `json:"tilt,omitempty"`
	// Texture is the texture identifier, empty for none.
	Texture string `json:"texture,omitempty"`
}

// Validate checks the descriptor fields.
func (d Descriptor) Validate() error {
	if err := errors.ValidateTemplateID(d.TemplateID); err != nil {
		return err
	}
	if d.Color != "" {
		if err := errors.ValidateColor(d.Color); err != nil {
			return err
		}
	}
	if err := errors.ValidateTilt(d.Tilt); err != nil {
		return err
	}
	switch d.Frame {
	case "", "single", "double", "split":
	default:
		return errors.New(errors.ErrCodeInvalidFrame, "unknown frame rendering %q", d.Frame)
	}
	return nil
}

// Encode serializes the descriptor as a query string, omitting zero fields.
func (d Descriptor) Encode() string {
	v := url.Values{}
	v.Set("template", d.TemplateID)
	if d.Color != "" {
		v.Set("color", strings.TrimPrefix(d.Color, "#"))
	}
	if d.Frame != "" && d.Frame != "single" {
		v.Set("frame", d.Frame)
	}
	if d.Tilt != 0 {
		v.Set("tilt", strconv.Itoa(d.Tilt))
	}
	if d.Texture != "" {
		v.Set("texture", d.Texture)
	}
	return v.Encode()
}

// DecodeDescriptor parses a descriptor from its query-string form.
func DecodeDescriptor(s string) (Descriptor, error) {
	v, err := url.ParseQuery(s)
	if err != nil {
		return Descriptor{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse descriptor")
	}
	d := Descriptor{
		TemplateID: v.Get("template"),
		Color:      v.Get("color"),
		Frame:      v.Get("frame"),
		Texture:    v.Get("texture"),
	}
	if raw := v.Get("tilt"); raw != "" {
		tilt, err := strconv.Atoi(raw)
		if err != nil {
			return Descriptor{}, errors.Wrap(errors.ErrCodeInvalidTilt, err, "parse tilt %q", raw)
		}
		d.Tilt = tilt
	}
	if d.Frame == "" {
		d.Frame = "single"
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Filters narrows the template set for filtered generation. Empty fields
// match everything.
type Filters struct {
	Shape  string `json:"shape,omitempty"`
	Object string `json:"object,omitempty"`
	Frame  string `json:"frame,omitempty"`
	Border string `json:"border,omitempty"`
	Corner string `json:"corner,omitempty"`
	Fill   string `json:"fill,omitempty"`
}

// Options configures a generation batch. The struct supports JSON
// serialization for API requests.
type Options struct {
	// Text is the user text injected into every editable zone.
	Text string `json:"text"`

	// Colors, Tilts, and Textures are the requested variation axes. Each
	// empty set defaults to a single choice: one random palette color, no
	// tilt, no texture.
	Colors   []string `json:"colors,omitempty"`
	Tilts    []int    `json:"tilts,omitempty"`
	Textures []string `json:"textures,omitempty"`

	Filters Filters `json:"filters,omitempty"`

	// PageSize is the number of variants per pager call.
	PageSize int `json:"page_size,omitempty"`

	// Seed makes catalog color picks, texture rotation, and display
	// shuffling reproducible.
	Seed uint64 `json:"seed,omitempty"`

	// Refresh bypasses the base-result cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized).
	Logger *log.Logger `json:"-"`

	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent; every Runner entry point calls it.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if strings.TrimSpace(o.Text) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "text is required")
	}
	for _, c := range o.Colors {
		if err := errors.ValidateColor(c); err != nil {
			return err
		}
	}
	for _, t := range o.Tilts {
		if err := errors.ValidateTilt(t); err != nil {
			return err
		}
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Stats contains batch execution statistics.
type Stats struct {
	Templates int // templates considered
	Produced  int // variants successfully produced
	Skipped   int // templates or variants skipped after a failure
}

func (s Stats) String() string {
	return fmt.Sprintf("%d templates, %d variants, %d skipped", s.Templates, s.Produced, s.Skipped)
}
