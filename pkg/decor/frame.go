package decor

import (
	"fmt"
	"strings"

	"github.com/motifhq/motif/pkg/svgdoc"
)

// FrameRendering selects how a template's detected border is re-rendered.
type FrameRendering string

const (
	// FrameSingle keeps the border as authored.
	FrameSingle FrameRendering = "single"
	// FrameDouble adds a second parallel border offset outward.
	FrameDouble FrameRendering = "double"
	// FrameSplit splits the border into two alternating colored segments.
	FrameSplit FrameRendering = "split"
)

// ParseFrameRendering maps an externalized frame value, defaulting to single.
func ParseFrameRendering(s string) FrameRendering {
	switch FrameRendering(strings.ToLower(strings.TrimSpace(s))) {
	case FrameDouble:
		return FrameDouble
	case FrameSplit:
		return FrameSplit
	default:
		return FrameSingle
	}
}

// BorderKind classifies the detected border shape.
type BorderKind int

const (
	BorderNone BorderKind = iota
	BorderRect
	BorderCircle
)

// BorderMeta is the border geometry detected from a template, the supplement
// the frame compositor needs beyond the style tag itself.
type BorderMeta struct {
	Kind        BorderKind
	Box         svgdoc.ContainerBox // rect kind
	CX, CY, R   float64             // circle kind
	StrokeWidth float64
	Stroke      string
	CornerR     float64 // rx of a rect border, carried onto synthesized rects
}

// DetectBorder finds the template's border shape: the largest unfilled
// stroked rect, or failing that the largest stroked circle.
func DetectBorder(doc string) BorderMeta {
	meta := BorderMeta{Kind: BorderNone}
	best := 0.0
	svgdoc.ForEachElement(doc, "rect", func(s svgdoc.Span) bool {
		tag := s.OpenTag(doc)
		stroke, _ := svgdoc.Attr(tag, "stroke")
		if _, ok := CanonicalColor(stroke); !ok {
			return true
		}
		fill, _ := svgdoc.Attr(tag, "fill")
		if fill != "" && fill != "none" && fill != "transparent" {
			return true
		}
		w := svgdoc.AttrFloat(tag, "width", 0)
		h := svgdoc.AttrFloat(tag, "height", 0)
		if w*h <= best {
			return true
		}
		best = w * h
		meta = BorderMeta{
			Kind: BorderRect,
			Box: svgdoc.ContainerBox{
				X:      svgdoc.AttrFloat(tag, "x", 0),
				Y:      svgdoc.AttrFloat(tag, "y", 0),
				Width:  w,
				Height: h,
			},
			StrokeWidth: svgdoc.AttrFloat(tag, "stroke-width", 1),
			Stroke:      stroke,
			CornerR:     svgdoc.AttrFloat(tag, "rx", 0),
		}
		return true
	})
	if meta.Kind != BorderNone {
		return meta
	}
	svgdoc.ForEachElement(doc, "circle", func(s svgdoc.Span) bool {
		tag := s.OpenTag(doc)
		stroke, _ := svgdoc.Attr(tag, "stroke")
		if _, ok := CanonicalColor(stroke); !ok {
			return true
		}
		r := svgdoc.AttrFloat(tag, "r", 0)
		if r <= meta.R {
			return true
		}
		meta = BorderMeta{
			Kind:        BorderCircle,
			CX:          svgdoc.AttrFloat(tag, "cx", 0),
			CY:          svgdoc.AttrFloat(tag, "cy", 0),
			R:           r,
			StrokeWidth: svgdoc.AttrFloat(tag, "stroke-width", 1),
			Stroke:      stroke,
		}
		return true
	})
	return meta
}

// ApplyFrame re-renders the template's detected border in the requested
// style, coloring the synthesized geometry with color. Unsupported
// combinations, and templates without a detectable border, degrade to a
// no-op so the variant still ships.
func ApplyFrame(doc string, rendering FrameRendering, color string) string {
	if rendering == FrameSingle {
		return doc
	}
	hex, ok := CanonicalColor(color)
	if !ok {
		return doc
	}
	meta := DetectBorder(doc)
	switch {
	case meta.Kind == BorderRect && rendering == FrameDouble:
		return doubleRect(doc, meta, hex)
	case meta.Kind == BorderRect && rendering == FrameSplit:
		return splitRect(doc, meta, hex)
	case meta.Kind == BorderCircle && rendering == FrameDouble:
		return doubleCircle(doc, meta, hex)
	case meta.Kind == BorderCircle && rendering == FrameSplit:
		return splitCircle(doc, meta, hex)
	}
	return doc
}

// frameGap is the clear space between a border and its synthesized twin.
const frameGap = 4.0

// doubleRect inserts a second parallel rect offset outward and grows the
// visible region to contain it.
func doubleRect(doc string, meta BorderMeta, color string) string {
	off := meta.StrokeWidth + frameGap
	rect := fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s" stroke-width="%s"`,
		trimAngle(meta.Box.X-off), trimAngle(meta.Box.Y-off),
		trimAngle(meta.Box.Width+2*off), trimAngle(meta.Box.Height+2*off),
		color, trimAngle(meta.StrokeWidth))
	if meta.CornerR > 0 {
		rect += fmt.Sprintf(` rx="%s" ry="%s"`, trimAngle(meta.CornerR+off), trimAngle(meta.CornerR+off))
	}
	rect += "/>"
	return growAndAppend(doc, rect, off+meta.StrokeWidth)
}

// splitRect overlays two L-shaped open paths on the border: top and right
// edges keep the authored stroke, bottom and left take the variant color.
func splitRect(doc string, meta BorderMeta, color string) string {
	b := meta.Box
	keep := fmt.Sprintf(`<path d="M %s %s H %s V %s" fill="none" stroke="%s" stroke-width="%s"/>`,
		trimAngle(b.X), trimAngle(b.Y), trimAngle(b.X+b.Width), trimAngle(b.Y+b.Height),
		meta.Stroke, trimAngle(meta.StrokeWidth))
	swap := fmt.Sprintf(`<path d="M %s %s H %s V %s" fill="none" stroke="%s" stroke-width="%s"/>`,
		trimAngle(b.X+b.Width), trimAngle(b.Y+b.Height), trimAngle(b.X), trimAngle(b.Y),
		color, trimAngle(meta.StrokeWidth))
	return appendContent(doc, keep+swap)
}

// doubleCircle inserts a concentric circle offset outward.
func doubleCircle(doc string, meta BorderMeta, color string) string {
	off := meta.StrokeWidth + frameGap
	circle := fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
		trimAngle(meta.CX), trimAngle(meta.CY), trimAngle(meta.R+off),
		color, trimAngle(meta.StrokeWidth))
	return growAndAppend(doc, circle, off+meta.StrokeWidth)
}

// splitCircle overlays two half arcs: the top half keeps the authored
// stroke, the bottom half takes the variant color.
func splitCircle(doc string, meta BorderMeta, color string) string {
	top := fmt.Sprintf(`<path d="M %s %s A %s %s 0 0 1 %s %s" fill="none" stroke="%s" stroke-width="%s"/>`,
		trimAngle(meta.CX-meta.R), trimAngle(meta.CY), trimAngle(meta.R), trimAngle(meta.R),
		trimAngle(meta.CX+meta.R), trimAngle(meta.CY), meta.Stroke, trimAngle(meta.StrokeWidth))
	bottom := fmt.Sprintf(`<path d="M %s %s A %s %s 0 0 1 %s %s" fill="none" stroke="%s" stroke-width="%s"/>`,
		trimAngle(meta.CX+meta.R), trimAngle(meta.CY), trimAngle(meta.R), trimAngle(meta.R),
		trimAngle(meta.CX-meta.R), trimAngle(meta.CY), color, trimAngle(meta.StrokeWidth))
	return appendContent(doc, top+bottom)
}

// appendContent inserts markup just before the root's closing tag.
func appendContent(doc, content string) string {
	root, err := svgdoc.Root(doc)
	if err != nil {
		return doc
	}
	_, end := root.InnerSpan(doc)
	return svgdoc.Replace(doc, end, end, content)
}

// growAndAppend appends markup and expands the visible region outward by
// margin on every side so the synthesized geometry is not clipped.
func growAndAppend(doc, content string, margin float64) string {
	out := appendContent(doc, content)
	vb, err := svgdoc.GetViewBox(out)
	if err != nil {
		return out
	}
	grown, err := svgdoc.SetViewBox(out, svgdoc.ViewBox{
		MinX:   vb.MinX - margin,
		MinY:   vb.MinY - margin,
		Width:  vb.Width + 2*margin,
		Height: vb.Height + 2*margin,
	})
	if err != nil {
		return out
	}
	return grown
}
