package textfit

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/svgdoc"
)

// tagRe strips markup when recovering the rendered text of a zone.
var tagRe = regexp.MustCompile(`<[^>]*>`)

// zoneStyle is the per-line styling inherited from the zone's existing
// markup, so replacement lines render exactly like the author's text.
type zoneStyle struct {
	fill       string
	fontFamily string
	fontSize   float64
	fontWeight string
	x          string
	y          float64
	useDy      bool // height-relative line placement (dy) vs absolute (y)
}

// Inject replaces the rendered content of the nth text zone with the given
// text, line-broken under the policy selected by the template's category:
// templates with an embedded raster background use the fixed-frame policy,
// all others the dynamic one.
//
// The original letter-casing convention is detected from the existing text
// and the replacement conforms to it. Per-line styling is inherited from an
// existing styled sub-run. The element's own transform is left untouched;
// vertical placement corrections belong to the auto-fit stage.
func Inject(doc string, zoneIndex int, text string) (string, error) {
	span, ok := svgdoc.FindElement(doc, "text", zoneIndex)
	if !ok {
		return "", errors.New(errors.ErrCodeZoneNotFound,
			"zone %d out of range (%d text elements)", zoneIndex, svgdoc.CountElements(doc, "text"))
	}

	openTag := span.OpenTag(doc)
	inner := span.Inner(doc)
	existing := strings.Join(strings.Fields(tagRe.ReplaceAllString(inner, " ")), " ")

	text = conformCase(text, existing)

	policy := DynamicPolicy()
	if HasRasterBackground(doc) {
		policy = FixedFramePolicy()
	}
	lines := BreakLines(text, policy)

	style := extractStyle(openTag, inner)
	newInner := renderLines(lines, style)

	newOpen := svgdoc.SetAttr(openTag, "text-anchor", "middle")
	return svgdoc.Replace(doc, span.Start, span.End, newOpen+newInner+"</text>"), nil
}

// HasRasterBackground reports whether the template embeds a raster image,
// the structural proxy for the fixed-frame category.
func HasRasterBackground(doc string) bool {
	_, ok := svgdoc.FindElement(doc, "image", 0)
	return ok
}

// conformCase adapts replacement to the casing convention of the existing
// rendered text: all-upper, all-lower, or mixed (kept as typed).
func conformCase(replacement, existing string) string {
	hasUpper, hasLower := false, false
	for _, r := range existing {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	switch {
	case hasUpper && !hasLower:
		return strings.ToUpper(replacement)
	case hasLower && !hasUpper:
		return strings.ToLower(replacement)
	default:
		return replacement
	}
}

// extractStyle reads per-line styling from the first styled sub-run, falling
// back to the text element's own attributes.
func extractStyle(openTag, inner string) zoneStyle {
	s := zoneStyle{useDy: true}

	attr := func(name string) string {
		if tspan, ok := svgdoc.FindElement(inner, "tspan", 0); ok {
			if v, found := svgdoc.Attr(tspan.OpenTag(inner), name); found {
				return v
			}
		}
		v, _ := svgdoc.Attr(openTag, name)
		return v
	}

	s.fill = attr("fill")
	s.fontFamily = attr("font-family")
	s.fontWeight = attr("font-weight")
	if raw := attr("font-size"); raw != "" {
		s.fontSize = parseSize(raw)
	}

	if x := attr("x"); x != "" {
		s.x = x
	} else {
		s.x = "0"
	}

	// Keep the line-placement convention the original zone used: dy-based
	// sub-runs are height-relative, y-based ones are absolute.
	if tspan, ok := svgdoc.FindElement(inner, "tspan", 0); ok {
		tag := tspan.OpenTag(inner)
		if _, hasDy := svgdoc.Attr(tag, "dy"); !hasDy {
			if _, hasY := svgdoc.Attr(tag, "y"); hasY {
				s.useDy = false
				s.y = svgdoc.AttrFloat(tag, "y", 0)
			}
		}
	} else if _, hasY := svgdoc.Attr(openTag, "y"); hasY {
		s.useDy = false
		s.y = svgdoc.AttrFloat(openTag, "y", 0)
	}
	return s
}

// renderLines emits one styled sub-run per broken line.
func renderLines(lines []string, s zoneStyle) string {
	var b strings.Builder
	lineHeight := s.fontSize * 1.2
	if lineHeight <= 0 {
		lineHeight = 19.2 // 16px default size
	}
	for i, line := range lines {
		b.WriteString(`<tspan x="` + s.x + `"`)
		if s.useDy {
			if i == 0 {
				b.WriteString(` dy="0"`)
			} else {
				b.WriteString(` dy="1.2em"`)
			}
		} else {
			b.WriteString(fmt.Sprintf(` y="%g"`, s.y+float64(i)*lineHeight))
		}
		if s.fill != "" {
			b.WriteString(` fill="` + s.fill + `"`)
		}
		if s.fontFamily != "" {
			b.WriteString(` font-family="` + s.fontFamily + `"`)
		}
		if s.fontSize > 0 {
			b.WriteString(fmt.Sprintf(` font-size="%g"`, s.fontSize))
		}
		if s.fontWeight != "" {
			b.WriteString(` font-weight="` + s.fontWeight + `"`)
		}
		b.WriteString(">")
		b.WriteString(escapeText(line))
		b.WriteString("</tspan>")
	}
	return b.String()
}

// parseSize parses a font-size attribute value, tolerating a px suffix.
func parseSize(raw string) float64 {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	var v float64
	if _, err := fmt.Sscanf(raw, "%g", &v); err != nil {
		return 0
	}
	return v
}

// escapeText escapes the XML special characters that may appear in user text.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
