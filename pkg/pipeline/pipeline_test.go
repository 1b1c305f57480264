package pipeline

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/motifhq/motif/pkg/cache"
	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/store"
	"github.com/motifhq/motif/pkg/textfit"
)

const templateDoc = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200" width="200" height="200">` +
	`<rect width="200" height="200" fill="#ffffff"/>` +
	`<g id="ct-1"><rect x="40" y="60" width="120" height="80" fill="none" stroke="#1a1a2e" stroke-width="2"/></g>` +
	`<g id="dt-1"><text font-family="Montserrat" font-size="20" fill="#1a1a2e">` +
	`<tspan x="100" dy="0">SAMPLE</tspan></text></g></svg>`

const textureDoc = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">` +
	`<path d="M 10 10 L 90 90" stroke="#1a1a2e"/></svg>`

// fixedMeasurer reports a constant in-bounds width so auto-fit keeps the
// authored size.
type fixedMeasurer struct{}

func (fixedMeasurer) Measure(context.Context, string, int) (textfit.LineMetrics, error) {
	return textfit.LineMetrics{Widths: []float64{50}, FontSize: 20}, nil
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func sampleTemplate(id string) store.Template {
	return store.Template{
		ID:          id,
		Locator:     id + ".svg",
		Name:        id,
		BorderStyle: "solid",
		FillStyle:   "outlined",
		CornerStyle: "soft",
		Palette:     []string{"c0392b", "2980b9"},
		Zones: []store.TextZone{
			{Label: "headline", Index: 0, FontSize: 20, MaxWidth: 100, Editable: true, SortOrder: 0},
		},
	}
}

func newTestRunner(templates ...store.Template) *Runner {
	docs := map[string]string{}
	for _, tpl := range templates {
		docs[tpl.Locator] = templateDoc
	}
	return NewRunner(
		&store.MemoryStore{Templates: templates},
		&store.MemoryFetcher{Templates: docs, Textures: map[string]string{"dots": textureDoc}},
		cache.NewMemoryCache(),
		fixedMeasurer{},
		nil,
	)
}

func TestDescriptorRoundTrip(t *testing.T) {
	tests := []Descriptor{
		{TemplateID: "t1", Color: "c0392b", Frame: "double", Tilt: -15, Texture: "dots"},
		{TemplateID: "t2", Frame: "single"},
		{TemplateID: "t3", Color: "2980b9", Frame: "split"},
	}
	for _, d := range tests {
		got, err := DecodeDescriptor(d.Encode())
		if err != nil {
			t.Fatalf("DecodeDescriptor(%q): %v", d.Encode(), err)
		}
		if got != d {
			t.Errorf("round trip: got %+v, want %+v", got, d)
		}
	}
}

func TestDescriptorValidation(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		code errors.Code
	}{
		{"missing template", Descriptor{}, errors.ErrCodeInvalidTemplate},
		{"bad color", Descriptor{TemplateID: "t", Color: "zz"}, errors.ErrCodeInvalidColor},
		{"bad tilt", Descriptor{TemplateID: "t", Tilt: 400}, errors.ErrCodeInvalidTilt},
		{"bad frame", Descriptor{TemplateID: "t", Frame: "triple"}, errors.ErrCodeInvalidFrame},
	}
	for _, tt := range tests {
		if err := tt.d.Validate(); !errors.Is(err, tt.code) {
			t.Errorf("%s: got %v, want code %s", tt.name, err, tt.code)
		}
	}
}

func TestBaseResultInjectsAndCaches(t *testing.T) {
	r := newTestRunner(sampleTemplate("t1"))
	tpl := sampleTemplate("t1")

	base, err := r.BaseResult(context.Background(), tpl, "hello friends", false)
	if err != nil {
		t.Fatalf("BaseResult: %v", err)
	}
	if !strings.Contains(base.Doc, "HELLO") {
		t.Errorf("text not injected (uppercased):\n%s", base.Doc)
	}
	if strings.Contains(base.Doc, "SAMPLE") {
		t.Error("placeholder text still present")
	}

	// Second call must come from cache: break the fetcher to prove it.
	r.Fetcher = &store.MemoryFetcher{}
	again, err := r.BaseResult(context.Background(), tpl, "hello friends", false)
	if err != nil {
		t.Fatalf("cached BaseResult: %v", err)
	}
	if again.Doc != base.Doc {
		t.Error("cached base result differs")
	}
}

func TestBaseResultFetchFailure(t *testing.T) {
	r := newTestRunner() // no documents registered
	_, err := r.BaseResult(context.Background(), sampleTemplate("ghost"), "HI", false)
	if err == nil {
		t.Fatal("expected fetch failure")
	}
}

func TestVariantAppliesDescriptor(t *testing.T) {
	r := newTestRunner(sampleTemplate("t1"))
	base, err := r.BaseResult(context.Background(), sampleTemplate("t1"), "HI", false)
	if err != nil {
		t.Fatalf("BaseResult: %v", err)
	}
	d := Descriptor{TemplateID: "t1", Color: "c0392b", Frame: "double", Tilt: 10, Texture: "dots"}
	v, err := r.Variant(context.Background(), base, d, testRand())
	if err != nil {
		t.Fatalf("Variant: %v", err)
	}
	if !strings.Contains(v.Doc, "#c0392b") {
		t.Error("color not applied")
	}
	if !strings.Contains(v.Doc, "rotate(10 ") {
		t.Error("tilt not applied")
	}
	if !strings.Contains(v.Doc, `d="M 10 10 L 90 90"`) {
		t.Error("texture not composited")
	}
}

func TestVariantAppliesCornerTier(t *testing.T) {
	r := newTestRunner(sampleTemplate("t1"))
	base, err := r.BaseResult(context.Background(), sampleTemplate("t1"), "HI", false)
	if err != nil {
		t.Fatalf("BaseResult: %v", err)
	}
	// The template's soft corner tag rounds the 120x80 container rect:
	// 0.06 x 80 = 4.8.
	v, err := r.Variant(context.Background(), base, Descriptor{TemplateID: "t1"}, testRand())
	if err != nil {
		t.Fatalf("Variant: %v", err)
	}
	if !strings.Contains(v.Doc, `rx="4.8"`) {
		t.Errorf("corner tier not applied:\n%s", v.Doc)
	}
}

func TestVariantTextureFailureDegrades(t *testing.T) {
	r := newTestRunner(sampleTemplate("t1"))
	base, err := r.BaseResult(context.Background(), sampleTemplate("t1"), "HI", false)
	if err != nil {
		t.Fatalf("BaseResult: %v", err)
	}
	d := Descriptor{TemplateID: "t1", Color: "c0392b", Texture: "missing"}
	v, err := r.Variant(context.Background(), base, d, testRand())
	if err != nil {
		t.Fatalf("Variant: %v", err)
	}
	if !strings.Contains(v.Doc, "#c0392b") {
		t.Error("colorized form lost when texture failed")
	}
}

func TestCatalogGroupsByBorderFamily(t *testing.T) {
	solid := sampleTemplate("t-solid")
	ornate := sampleTemplate("t-ornate")
	ornate.BorderStyle = "ornate"
	r := newTestRunner(solid, ornate)

	result, err := r.Catalog(context.Background(), Options{Text: "HI", Seed: 3})
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(result.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(result.Groups))
	}
	// Families sort alphabetically: ornate before solid.
	if result.Groups[0].Family != "ornate" || result.Groups[1].Family != "solid" {
		t.Errorf("families = %q, %q", result.Groups[0].Family, result.Groups[1].Family)
	}
	// solid supports single+double+split, ornate only single.
	if len(result.Groups[0].Variants) != 1 || len(result.Groups[1].Variants) != 3 {
		t.Errorf("variant counts = %d, %d", len(result.Groups[0].Variants), len(result.Groups[1].Variants))
	}
	if result.Stats.Produced != 4 {
		t.Errorf("produced = %d, want 4", result.Stats.Produced)
	}
}

func TestCatalogSkipsFailingTemplate(t *testing.T) {
	good := sampleTemplate("good")
	bad := sampleTemplate("bad")
	r := newTestRunner(good) // only good's document is registered
	r.Store = &store.MemoryStore{Templates: []store.Template{bad, good}}

	result, err := r.Catalog(context.Background(), Options{Text: "HI"})
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if result.Stats.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Stats.Skipped)
	}
	if result.Stats.Produced == 0 {
		t.Error("failing template aborted the batch")
	}
}

func TestGeneratePagesCrossProduct(t *testing.T) {
	r := newTestRunner(sampleTemplate("t1"))
	opts := Options{
		Text:     "HI",
		Colors:   []string{"c0392b", "2980b9"},
		Tilts:    []int{0, 15},
		Textures: []string{"", "dots"},
		PageSize: 5,
		Seed:     7,
	}
	pager, err := r.Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// 1 template x 2 colors x 3 frames (solid) x 2 tilts x 2 textures = 24.
	if pager.Remaining() != 24 {
		t.Fatalf("Remaining = %d, want 24", pager.Remaining())
	}

	total := 0
	pages := 0
	for {
		page, done := pager.Next(context.Background())
		total += len(page)
		pages++
		if !done {
			if len(page) != 5 {
				t.Errorf("page %d has %d variants, want full page of 5", pages, len(page))
			}
			continue
		}
		break
	}
	if total != 24 {
		t.Errorf("served %d variants, want 24", total)
	}
	if pages != 5 {
		t.Errorf("pages = %d, want 5", pages)
	}
	if _, done := pager.Next(context.Background()); !done {
		t.Error("exhausted pager did not stay exhausted")
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	opts := Options{Text: "HI", Colors: []string{"c0392b"}, PageSize: 3, Seed: 11}
	a, err := newTestRunner(sampleTemplate("t1")).Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := newTestRunner(sampleTemplate("t1")).Generate(context.Background(), opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	pageA, _ := a.Next(context.Background())
	pageB, _ := b.Next(context.Background())
	if len(pageA) != len(pageB) {
		t.Fatalf("page sizes differ: %d vs %d", len(pageA), len(pageB))
	}
	for i := range pageA {
		if pageA[i].Descriptor != pageB[i].Descriptor {
			t.Errorf("order diverged at %d: %+v vs %+v", i, pageA[i].Descriptor, pageB[i].Descriptor)
		}
	}
}

func TestGenerateFilters(t *testing.T) {
	square := sampleTemplate("sq")
	square.Shape = "square"
	round := sampleTemplate("rd")
	round.Shape = "round"
	r := newTestRunner(square, round)

	pager, err := r.Generate(context.Background(), Options{
		Text:    "HI",
		Filters: Filters{Shape: "round"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	page, _ := pager.Next(context.Background())
	for _, v := range page {
		if v.Template.ID != "rd" {
			t.Errorf("filter leaked template %q", v.Template.ID)
		}
	}
	if len(page) == 0 {
		t.Error("filter matched nothing")
	}
}

func TestRegenerateRoundTrip(t *testing.T) {
	d := Descriptor{TemplateID: "t1", Color: "c0392b", Frame: "split", Tilt: -20, Texture: "dots"}
	text := "HELLO FRIENDS"

	first, err := newTestRunner(sampleTemplate("t1")).Regenerate(context.Background(), text, d)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	second, err := newTestRunner(sampleTemplate("t1")).Regenerate(context.Background(), text, d)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if first.Descriptor != d || second.Descriptor != d {
		t.Error("descriptor not preserved")
	}
	if first.Doc != second.Doc {
		t.Error("regeneration is not deterministic")
	}
	if !strings.Contains(first.Doc, "rotate(-20 ") || !strings.Contains(first.Doc, "#c0392b") {
		t.Error("descriptor fields not applied")
	}
}

func TestRegenerateUnknownTemplate(t *testing.T) {
	r := newTestRunner(sampleTemplate("t1"))
	_, err := r.Regenerate(context.Background(), "HI", Descriptor{TemplateID: "nope"})
	if !errors.Is(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("expected template-not-found, got %v", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	o := Options{}
	if err := o.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty text accepted: %v", err)
	}
	o = Options{Text: "HI"}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}
	if o.PageSize != DefaultPageSize || o.Seed != DefaultSeed || o.Logger == nil {
		t.Errorf("defaults not applied: %+v", o)
	}
}
