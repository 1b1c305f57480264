package svgdoc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/motifhq/motif/pkg/errors"
)

// ViewBox is the visible-region declaration of a document.
type ViewBox struct {
	MinX, MinY, Width, Height float64
}

// String formats the viewBox attribute value.
func (v ViewBox) String() string {
	return fmt.Sprintf("%s %s %s %s",
		trimFloat(v.MinX), trimFloat(v.MinY), trimFloat(v.Width), trimFloat(v.Height))
}

// CenterX returns the horizontal center of the visible region.
func (v ViewBox) CenterX() float64 { return v.MinX + v.Width/2 }

// CenterY returns the vertical center of the visible region.
func (v ViewBox) CenterY() float64 { return v.MinY + v.Height/2 }

// Root returns the span of the document's <svg> root element opening tag.
func Root(doc string) (Span, error) {
	span, ok := FindElement(doc, "svg", 0)
	if !ok {
		return Span{}, errors.New(errors.ErrCodeMalformedDocument, "no <svg> root element")
	}
	return span, nil
}

// GetViewBox reads the root viewBox. When the attribute is missing it falls
// back to the width/height attributes with a 0 0 origin.
func GetViewBox(doc string) (ViewBox, error) {
	root, err := Root(doc)
	if err != nil {
		return ViewBox{}, err
	}
	tag := root.OpenTag(doc)
	if raw, ok := Attr(tag, "viewBox"); ok {
		fields := strings.Fields(strings.ReplaceAll(raw, ",", " "))
		if len(fields) == 4 {
			var vals [4]float64
			parsed := true
			for i, f := range fields {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					parsed = false
					break
				}
				vals[i] = v
			}
			if parsed {
				return ViewBox{vals[0], vals[1], vals[2], vals[3]}, nil
			}
		}
	}
	w := AttrFloat(tag, "width", 0)
	h := AttrFloat(tag, "height", 0)
	if w <= 0 || h <= 0 {
		return ViewBox{}, errors.New(errors.ErrCodeMalformedDocument, "root has neither viewBox nor size attributes")
	}
	return ViewBox{0, 0, w, h}, nil
}

// SetViewBox rewrites the root viewBox and the outer width/height attributes
// to match the given region.
func SetViewBox(doc string, vb ViewBox) (string, error) {
	root, err := Root(doc)
	if err != nil {
		return doc, err
	}
	tag := root.OpenTag(doc)
	tag = SetAttr(tag, "viewBox", vb.String())
	tag = SetAttr(tag, "width", trimFloat(vb.Width))
	tag = SetAttr(tag, "height", trimFloat(vb.Height))
	return Replace(doc, root.Start, root.OpenEnd, tag), nil
}

// trimFloat formats a float without trailing zeros, matching the compact
// attribute style of authored templates.
func trimFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
