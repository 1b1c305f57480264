package textfit

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/motifhq/motif/pkg/svgdoc"
)

// LineMetrics is the result of an external text-measurement pass: the
// rendered width of each line of a zone, at the font size the document
// currently declares.
type LineMetrics struct {
	Widths   []float64
	FontSize float64
}

// Widest returns the largest line width.
func (m LineMetrics) Widest() float64 {
	w := 0.0
	for _, v := range m.Widths {
		if v > w {
			w = v
		}
	}
	return w
}

// Measurer is the measurement capability supplied by the host. The engine
// has no rendering logic of its own; it only consumes measurements.
type Measurer interface {
	Measure(ctx context.Context, doc string, zoneIndex int) (LineMetrics, error)
}

// FitOptions carries the zone's original metrics into the fit computation.
type FitOptions struct {
	// MaxWidth is the zone's bounding width constraint.
	MaxWidth float64
	// FontSize is the zone's original font size.
	FontSize float64
	// ScaleX is the zone's original horizontal scale (0 means 1).
	ScaleX float64
}

const (
	// minShrink is the floor on font shrinking: below 40% of the original
	// size, horizontal scale compression takes over.
	minShrink = 0.40
	// effectiveWidthFactor leaves breathing room inside the bounding width.
	effectiveWidthFactor = 0.95
	// lineHeightFactor is the vertical advance per line in ems.
	lineHeightFactor = 1.2
	// baselineFactor positions the first baseline inside its line box.
	baselineFactor = 0.8

	// Fixed-frame analytic caps.
	fixedWidthCap    = 0.90
	fixedHeightCap   = 0.85
	fixedCharWidth   = 0.58
	fixedCeilSingle  = 96.0
	fixedCeilMulti   = 72.0
	fixedMinFontSize = 8.0

	// Growing-container padding, in ems of the fitted size.
	innerPadEm = 0.9
	outerPadEm = 1.6
	// innerRatioLow/High is the expected size band of an inner decorative
	// container relative to the outer one; rects outside the band are not
	// treated as containers.
	innerRatioLow  = 0.45
	innerRatioHigh = 0.95
)

// AutoFit measures the injected text of the nth zone and rewrites font size,
// horizontal scale, and container geometry so the text neither overflows nor
// appears tiny. Templates with a raster background use the fixed-frame
// model; all others the growing-container model.
//
// A failed or partial measurement never fails the fit: AutoFit returns the
// unmodified document together with the measurement error so the caller can
// log it and continue.
func AutoFit(ctx context.Context, m Measurer, doc string, zoneIndex int, opts FitOptions) (string, error) {
	if opts.ScaleX <= 0 {
		opts.ScaleX = 1
	}
	if HasRasterBackground(doc) {
		return fitFixedFrame(doc, zoneIndex)
	}
	return fitGrowing(ctx, m, doc, zoneIndex, opts)
}

// fitGrowing shrinks the text until its widest line fits the bounding width,
// re-centers it at the frame center, wraps the container shapes around it,
// and tightens the document bounds.
func fitGrowing(ctx context.Context, m Measurer, doc string, zoneIndex int, opts FitOptions) (string, error) {
	metrics, err := m.Measure(ctx, doc, zoneIndex)
	if err != nil {
		return doc, err
	}
	widest := metrics.Widest()
	if widest <= 0 || len(metrics.Widths) == 0 {
		return doc, nil
	}
	vb, err := svgdoc.GetViewBox(doc)
	if err != nil {
		return doc, err
	}

	origSize := opts.FontSize
	if origSize <= 0 {
		origSize = metrics.FontSize
	}
	if origSize <= 0 {
		return doc, nil
	}
	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = vb.Width
	}
	effectiveMax := maxWidth * effectiveWidthFactor

	// Font size only ever shrinks; enlarging authored text is never right.
	ratio := math.Min(1, effectiveMax/widest)
	scaleX := opts.ScaleX
	if ratio < minShrink {
		// Shrinking alone cannot reach the target: clamp at the floor and
		// compress horizontally for the remainder.
		scaleX *= effectiveMax / (widest * minShrink)
		ratio = minShrink
	}
	newSize := origSize * ratio

	lineCount := len(metrics.Widths)
	textW := widest * ratio * scaleX
	textH := float64(lineCount) * newSize * lineHeightFactor

	out, ok := rewriteZone(doc, zoneIndex, zoneLayout{
		fontSize: newSize,
		scaleX:   scaleX,
		centerX:  vb.CenterX(),
		centerY:  vb.CenterY(),
	})
	if !ok {
		return doc, nil
	}
	out = fitContainers(out, vb, textW, textH, newSize)
	return svgdoc.TightenBounds(out), nil
}

// zoneLayout is the solved geometry applied back onto a text zone.
type zoneLayout struct {
	fontSize float64
	scaleX   float64
	centerX  float64
	centerY  float64
}

// rewriteZone rebuilds the zone's sub-runs with the solved font size and
// absolute, centered line positions. Horizontal compression is expressed as
// a center-fixed scale on the element transform.
func rewriteZone(doc string, zoneIndex int, l zoneLayout) (string, bool) {
	span, ok := svgdoc.FindElement(doc, "text", zoneIndex)
	if !ok {
		return doc, false
	}
	openTag := span.OpenTag(doc)
	inner := span.Inner(doc)

	lines := tspanTexts(inner)
	if len(lines) == 0 {
		return doc, false
	}
	style := extractStyle(openTag, inner)
	style.fontSize = l.fontSize
	style.useDy = false
	style.x = trimNum(l.centerX)

	totalH := float64(len(lines)) * l.fontSize * lineHeightFactor
	firstBaseline := l.centerY - totalH/2 + l.fontSize*baselineFactor
	style.y = firstBaseline
	// renderLines advances by fontSize*lineHeightFactor per line from s.y.
	newInner := renderLines(lines, style)

	newOpen := openTag
	if l.scaleX < 1 {
		transform := fmt.Sprintf("translate(%s 0) scale(%s 1) translate(-%s 0)",
			trimNum(l.centerX), trimNum(l.scaleX), trimNum(l.centerX))
		newOpen = svgdoc.SetAttr(newOpen, "transform", transform)
	}
	return svgdoc.Replace(doc, span.Start, span.End, newOpen+newInner+"</text>"), true
}

// fitContainers resizes and re-centers the template's container shapes to
// wrap the fitted text block with padding. The outer decorative container is
// the largest non-background rect; a second rect within the expected size
// band is treated as the inner container and adjusted independently.
func fitContainers(doc string, vb svgdoc.ViewBox, textW, textH, fontSize float64) string {
	type rectSpan struct {
		span svgdoc.Span
		w, h float64
	}
	var rects []rectSpan
	svgdoc.ForEachElement(doc, "rect", func(s svgdoc.Span) bool {
		tag := s.OpenTag(doc)
		w := svgdoc.AttrFloat(tag, "width", 0)
		h := svgdoc.AttrFloat(tag, "height", 0)
		if w <= 0 || h <= 0 {
			return true
		}
		// Full-bleed backgrounds are not containers.
		if w >= vb.Width*0.98 && h >= vb.Height*0.98 {
			return true
		}
		rects = append(rects, rectSpan{s, w, h})
		return true
	})
	if len(rects) == 0 {
		return doc
	}

	outer := 0
	for i, r := range rects {
		if r.w*r.h > rects[outer].w*rects[outer].h {
			outer = i
		}
	}
	inner := -1
	for i, r := range rects {
		if i == outer {
			continue
		}
		ratio := (r.w * r.h) / (rects[outer].w * rects[outer].h)
		if ratio >= innerRatioLow*innerRatioLow && ratio <= innerRatioHigh*innerRatioHigh {
			if inner < 0 || r.w*r.h > rects[inner].w*rects[inner].h {
				inner = i
			}
		}
	}

	resize := func(s svgdoc.Span, pad float64) string {
		w := textW + 2*pad
		h := textH + 2*pad
		tag := s.OpenTag(doc)
		tag = svgdoc.SetAttr(tag, "x", trimNum(vb.CenterX()-w/2))
		tag = svgdoc.SetAttr(tag, "y", trimNum(vb.CenterY()-h/2))
		tag = svgdoc.SetAttr(tag, "width", trimNum(w))
		tag = svgdoc.SetAttr(tag, "height", trimNum(h))
		return tag
	}

	// Apply edits back to front so earlier spans stay valid.
	if inner >= 0 && rects[inner].span.Start > rects[outer].span.Start {
		doc = svgdoc.Replace(doc, rects[inner].span.Start, rects[inner].span.End, resize(rects[inner].span, fontSize*innerPadEm))
		doc = svgdoc.Replace(doc, rects[outer].span.Start, rects[outer].span.End, resize(rects[outer].span, fontSize*outerPadEm))
		return doc
	}
	doc = svgdoc.Replace(doc, rects[outer].span.Start, rects[outer].span.End, resize(rects[outer].span, fontSize*outerPadEm))
	if inner >= 0 {
		doc = svgdoc.Replace(doc, rects[inner].span.Start, rects[inner].span.End, resize(rects[inner].span, fontSize*innerPadEm))
	}
	return doc
}

// fitFixedFrame computes the optimal font size analytically from the
// designated container box and re-centers the lines around its vertical
// midpoint. The container and background are never resized in this model.
func fitFixedFrame(doc string, zoneIndex int) (string, error) {
	span, ok := svgdoc.FindElement(doc, "text", zoneIndex)
	if !ok {
		return doc, nil
	}
	vb, err := svgdoc.GetViewBox(doc)
	if err != nil {
		return doc, err
	}
	box := fixedContainerBox(doc, vb)

	inner := span.Inner(doc)
	lines := tspanTexts(inner)
	if len(lines) == 0 {
		return doc, nil
	}
	longest := 0
	for _, l := range lines {
		if len(l) > longest {
			longest = len(l)
		}
	}
	if longest == 0 {
		return doc, nil
	}

	byWidth := box.Width * fixedWidthCap / (float64(longest) * fixedCharWidth)
	byHeight := box.Height * fixedHeightCap / (float64(len(lines)) * lineHeightFactor)
	size := math.Min(byWidth, byHeight)
	ceiling := fixedCeilMulti
	if len(lines) == 1 {
		ceiling = fixedCeilSingle
	}
	size = math.Max(fixedMinFontSize, math.Min(size, ceiling))

	out, ok := rewriteZone(doc, zoneIndex, zoneLayout{
		fontSize: size,
		scaleX:   1,
		centerX:  box.X + box.Width/2,
		centerY:  box.Y + box.Height/2,
	})
	if !ok {
		return doc, nil
	}
	return out, nil
}

// fixedContainerBox reads the designated invisible bounding rectangle, or
// falls back to a centered default region when the template has none.
func fixedContainerBox(doc string, vb svgdoc.ViewBox) svgdoc.ContainerBox {
	var box svgdoc.ContainerBox
	found := false
	svgdoc.ForEachElement(doc, "rect", func(s svgdoc.Span) bool {
		tag := s.OpenTag(doc)
		id, _ := svgdoc.Attr(tag, "id")
		opacity, _ := svgdoc.Attr(tag, "opacity")
		if id == "text-bounds" || strings.HasPrefix(id, "text-bounds") || opacity == "0" {
			box = svgdoc.ContainerBox{
				X:      svgdoc.AttrFloat(tag, "x", 0),
				Y:      svgdoc.AttrFloat(tag, "y", 0),
				Width:  svgdoc.AttrFloat(tag, "width", 0),
				Height: svgdoc.AttrFloat(tag, "height", 0),
			}
			found = box.Width > 0 && box.Height > 0
			return !found
		}
		return true
	})
	if found {
		return box
	}
	return svgdoc.ContainerBox{
		X:      vb.MinX + vb.Width*0.12,
		Y:      vb.MinY + vb.Height*0.30,
		Width:  vb.Width * 0.76,
		Height: vb.Height * 0.40,
	}
}

// tspanTexts extracts the rendered text of each sub-run in order.
func tspanTexts(inner string) []string {
	var lines []string
	svgdoc.ForEachElement(inner, "tspan", func(s svgdoc.Span) bool {
		lines = append(lines, strings.TrimSpace(tagRe.ReplaceAllString(s.Inner(inner), "")))
		return true
	})
	if len(lines) == 0 {
		if text := strings.TrimSpace(tagRe.ReplaceAllString(inner, " ")); text != "" {
			lines = []string{strings.Join(strings.Fields(text), " ")}
		}
	}
	return lines
}

func trimNum(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
