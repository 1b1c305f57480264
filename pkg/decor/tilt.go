package decor

import (
	"fmt"
	"math"

	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/svgdoc"
)

// Tilt rotates all visible content by the signed angle, in degrees, about the
// visible-region center, and grows the visible region to the rotated bounding
// box of the original frame so nothing is clipped. Content is wrapped in a
// single rotation group; a zero angle is a no-op.
func Tilt(doc string, degrees int) (string, error) {
	if degrees == 0 {
		return doc, nil
	}
	if err := errors.ValidateTilt(degrees); err != nil {
		return doc, err
	}
	vb, err := svgdoc.GetViewBox(doc)
	if err != nil {
		return doc, err
	}
	root, err := svgdoc.Root(doc)
	if err != nil {
		return doc, err
	}

	start, end := root.InnerSpan(doc)
	wrapped := fmt.Sprintf(`<g transform="rotate(%d %s %s)">%s</g>`,
		degrees, trimAngle(vb.CenterX()), trimAngle(vb.CenterY()), doc[start:end])
	doc = svgdoc.Replace(doc, start, end, wrapped)

	// Rotated-rectangle bounding box, centered where the frame center was.
	rad := float64(degrees) * math.Pi / 180
	sin, cos := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	w := vb.Width*cos + vb.Height*sin
	h := vb.Width*sin + vb.Height*cos
	grown := svgdoc.ViewBox{
		MinX:   vb.CenterX() - w/2,
		MinY:   vb.CenterY() - h/2,
		Width:  w,
		Height: h,
	}
	return svgdoc.SetViewBox(doc, grown)
}

// trimAngle formats a numeric transform argument compactly.
func trimAngle(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
