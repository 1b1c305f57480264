package svgdoc

import (
	"math"
	"strings"
)

// StrokeMargin is the safety margin added around content bounds so shapes
// stroked on the boundary are not clipped.
const StrokeMargin = 4.0

// fullBleedRatio is the fraction of the frame a rect must cover, at the
// origin with a neutral fill, to be treated as a background and excluded
// from content bounds.
const fullBleedRatio = 0.98

// TightenBounds recomputes the document's visible region from the union of
// its primitive rect elements, excluding full-bleed backgrounds, and rewrites
// the viewBox and outer size attributes to match. Documents with no
// qualifying content shapes are returned unchanged. The operation is
// idempotent.
func TightenBounds(doc string) string {
	vb, err := GetViewBox(doc)
	if err != nil {
		return doc
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false

	ForEachElement(doc, "rect", func(s Span) bool {
		tag := s.OpenTag(doc)
		x := AttrFloat(tag, "x", 0)
		y := AttrFloat(tag, "y", 0)
		w := AttrFloat(tag, "width", 0)
		h := AttrFloat(tag, "height", 0)
		if w <= 0 || h <= 0 {
			return true
		}
		if isFullBleedBackground(tag, x, y, w, h, vb) {
			return true
		}
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x+w)
		maxY = math.Max(maxY, y+h)
		found = true
		return true
	})

	if !found {
		return doc
	}

	tight := ViewBox{
		MinX:   minX - StrokeMargin,
		MinY:   minY - StrokeMargin,
		Width:  maxX - minX + 2*StrokeMargin,
		Height: maxY - minY + 2*StrokeMargin,
	}
	out, err := SetViewBox(doc, tight)
	if err != nil {
		return doc
	}
	return out
}

// isFullBleedBackground reports whether a rect is a background plate:
// near-full-frame size, covering the frame from its origin, with a neutral
// fill. The coverage tolerance (2) is deliberately smaller than StrokeMargin
// so a content shape can never be mistaken for a background after the
// viewBox has been tightened around it; this is what keeps TightenBounds
// idempotent.
func isFullBleedBackground(tag string, x, y, w, h float64, vb ViewBox) bool {
	if w < vb.Width*fullBleedRatio || h < vb.Height*fullBleedRatio {
		return false
	}
	const tol = 2.0
	if x > vb.MinX+tol || y > vb.MinY+tol ||
		x+w < vb.MinX+vb.Width-tol || y+h < vb.MinY+vb.Height-tol {
		return false
	}
	fill, ok := Attr(tag, "fill")
	if !ok {
		// Unfilled rects default to black, which is neutral.
		return true
	}
	return isNeutralFill(fill)
}

// isNeutralFill reports whether a fill is white, black, or none.
func isNeutralFill(fill string) bool {
	switch strings.ToLower(strings.TrimSpace(fill)) {
	case "none", "transparent",
		"#fff", "#ffffff", "white",
		"#000", "#000000", "black":
		return true
	}
	return false
}
