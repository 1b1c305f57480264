package svgdoc

import (
	"strings"
	"testing"
)

const rawDoc = `<!-- Generator: vendor tool -->
<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:sodipodi="http://vendor/ns" viewBox="0 0 100 100" enable-background="new 0 0 100 100">
<metadata><rdf:RDF>editor junk</rdf:RDF></metadata>
<sodipodi:namedview pagecolor="#ffffff"/>
<defs><font horiz-adv-x="1000"><glyph unicode="A" d="M0 0z"/></font></defs>
<style>@font-face { font-family: 'Embedded'; src: url(data:font/woff;base64,AAAA); }</style>
<rect sodipodi:role="frame" x="0" y="0" width="100" height="100" fill="#eee"/>
<text font-family="Montserrat-Bold" x="10" y="20">HI</text>
<text style="font-family:'ArialMT';fill:#333" x="10" y="40">low</text>
<use xlink:href="#shape"/>
</svg>`

func TestNormalizeStripsCruft(t *testing.T) {
	doc, err := Normalize(rawDoc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	for _, gone := range []string{
		"<metadata", "sodipodi:", "<font", "@font-face", "enable-background",
		"Generator: vendor tool",
	} {
		if strings.Contains(doc, gone) {
			t.Errorf("normalized document still contains %q", gone)
		}
	}
	for _, kept := range []string{
		`xmlns="http://www.w3.org/2000/svg"`,
		`xmlns:xlink="http://www.w3.org/1999/xlink"`,
		`xlink:href="#shape"`,
		`<?xml version="1.0"`,
	} {
		if !strings.Contains(doc, kept) {
			t.Errorf("normalized document lost %q", kept)
		}
	}
}

func TestNormalizeRemapsFonts(t *testing.T) {
	doc, err := Normalize(rawDoc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(doc, `font-family="Montserrat" font-weight="700"`) {
		t.Error("attribute font identifier not remapped")
	}
	if !strings.Contains(doc, "font-family:'Arial';font-weight:400") {
		t.Error("inline-style font identifier not remapped")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once, err := Normalize(rawDoc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	twice, err := Normalize(once)
	if err != nil {
		t.Fatalf("Normalize twice: %v", err)
	}
	if once != twice {
		t.Error("Normalize is not idempotent")
	}
}

func TestNormalizeRejectsNonDocument(t *testing.T) {
	if _, err := Normalize("<html><body>nope</body></html>"); err == nil {
		t.Fatal("expected MalformedDocument error")
	}
}

func TestRulesIndividually(t *testing.T) {
	tests := []struct {
		rule string
		in   string
		out  string
	}{
		{"strip-metadata", `a<metadata x="1">junk</metadata>b`, "ab"},
		{"strip-embedded-fonts", `a<font id="f"><glyph/></font>b`, "ab"},
		{"strip-data-name", `<g data-name="Layer 2" id="g1">`, `<g id="g1">`},
		{"strip-vendor-attrs", `<path sodipodi:nodetypes="cc" d="M0 0"/>`, `<path d="M0 0"/>`},
	}
	byName := make(map[string]Rule, len(Rules))
	for _, r := range Rules {
		byName[r.Name] = r
	}
	for _, tt := range tests {
		r, ok := byName[tt.rule]
		if !ok {
			t.Fatalf("rule %q not in table", tt.rule)
		}
		if got := r.Apply(tt.in); got != tt.out {
			t.Errorf("%s: Apply(%q) = %q, want %q", tt.rule, tt.in, got, tt.out)
		}
	}
}
