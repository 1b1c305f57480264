package textfit

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/svgdoc"
)

// OpentypeMeasurer implements the measurement capability with an embedded
// opentype face instead of a rendering context. Glyph advances differ from
// the template's real display fonts, but the per-line proportions the fit
// computation needs are preserved. Faces are cached per (weight, size).
type OpentypeMeasurer struct {
	mu      sync.Mutex
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

// NewOpentypeMeasurer parses the embedded fonts.
func NewOpentypeMeasurer() (*OpentypeMeasurer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse embedded regular font")
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse embedded bold font")
	}
	return &OpentypeMeasurer{
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

// Measure extracts the zone's sub-run texts and measures each line's advance
// at the zone's declared font size and weight.
func (m *OpentypeMeasurer) Measure(ctx context.Context, doc string, zoneIndex int) (LineMetrics, error) {
	if err := ctx.Err(); err != nil {
		return LineMetrics{}, errors.Wrap(errors.ErrCodeMeasurementTimeout, err, "measurement cancelled")
	}
	span, ok := svgdoc.FindElement(doc, "text", zoneIndex)
	if !ok {
		return LineMetrics{}, errors.New(errors.ErrCodeZoneNotFound, "zone %d not found for measurement", zoneIndex)
	}
	openTag := span.OpenTag(doc)
	inner := span.Inner(doc)

	style := extractStyle(openTag, inner)
	size := style.fontSize
	if size <= 0 {
		size = 16
	}
	weight := conformWeight(style.fontWeight)
	bold := weight == "bold" || weight == "700" || weight == "900"

	face, err := m.face(bold, size)
	if err != nil {
		return LineMetrics{}, err
	}

	lines := tspanTexts(inner)
	widths := make([]float64, 0, len(lines))
	for _, line := range lines {
		widths = append(widths, float64(font.MeasureString(face, line).Ceil()))
	}
	return LineMetrics{Widths: widths, FontSize: size}, nil
}

func (m *OpentypeMeasurer) face(bold bool, size float64) (font.Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := faceKey{bold, size}
	if f, ok := m.faces[key]; ok {
		return f, nil
	}
	src := m.regular
	if bold {
		src = m.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create font face")
	}
	m.faces[key] = f
	return f, nil
}

// TimeoutMeasurer wraps another measurer with a readiness deadline: when the
// inner measurement does not resolve in time, the caller gets a
// MEASUREMENT_TIMEOUT error and degrades to the unfitted document.
type TimeoutMeasurer struct {
	Inner   Measurer
	Timeout time.Duration
}

// Measure runs the inner measurement under the deadline.
func (t TimeoutMeasurer) Measure(ctx context.Context, doc string, zoneIndex int) (LineMetrics, error) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		metrics LineMetrics
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		m, err := t.Inner.Measure(ctx, doc, zoneIndex)
		ch <- result{m, err}
	}()

	select {
	case r := <-ch:
		return r.metrics, r.err
	case <-ctx.Done():
		return LineMetrics{}, errors.Wrap(errors.ErrCodeMeasurementTimeout, ctx.Err(),
			"measurement did not signal readiness")
	}
}

// conformWeight normalizes a font-weight attribute for comparisons.
func conformWeight(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}
