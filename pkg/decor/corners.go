package decor

import (
	"strings"

	"github.com/motifhq/motif/pkg/svgdoc"
)

// CornerTier selects how strongly rectangle corners are rounded.
type CornerTier string

const (
	CornerStraight CornerTier = "straight"
	CornerSoft     CornerTier = "soft"
	CornerMedium   CornerTier = "medium"
	CornerStrong   CornerTier = "strong"
)

// ParseCornerTier maps an externalized corner value, defaulting to straight.
func ParseCornerTier(s string) CornerTier {
	switch CornerTier(strings.ToLower(strings.TrimSpace(s))) {
	case CornerSoft:
		return CornerSoft
	case CornerMedium:
		return CornerMedium
	case CornerStrong:
		return CornerStrong
	default:
		return CornerStraight
	}
}

// radiusFraction is the corner radius per tier as a fraction of the
// rectangle's shorter side.
func (t CornerTier) radiusFraction() float64 {
	switch t {
	case CornerSoft:
		return 0.06
	case CornerMedium:
		return 0.14
	case CornerStrong:
		return 0.28
	default:
		return 0
	}
}

// RoundCorners rewrites the corner radii of the template's border and
// container rectangles to the selected tier. Full-bleed backgrounds keep
// their square corners; documents without rects are returned unchanged.
func RoundCorners(doc string, tier CornerTier) string {
	vb, err := svgdoc.GetViewBox(doc)
	if err != nil {
		return doc
	}
	frac := tier.radiusFraction()

	type edit struct {
		span svgdoc.Span
		tag  string
	}
	var edits []edit
	svgdoc.ForEachElement(doc, "rect", func(s svgdoc.Span) bool {
		tag := s.OpenTag(doc)
		w := svgdoc.AttrFloat(tag, "width", 0)
		h := svgdoc.AttrFloat(tag, "height", 0)
		if w <= 0 || h <= 0 {
			return true
		}
		if w >= vb.Width*0.98 && h >= vb.Height*0.98 {
			return true
		}
		short := w
		if h < w {
			short = h
		}
		r := trimAngle(short * frac)
		tag = svgdoc.SetAttr(tag, "rx", r)
		tag = svgdoc.SetAttr(tag, "ry", r)
		edits = append(edits, edit{s, tag})
		return true
	})
	for i := len(edits) - 1; i >= 0; i-- {
		doc = svgdoc.Replace(doc, edits[i].span.Start, edits[i].span.OpenEnd, edits[i].tag)
	}
	return doc
}
