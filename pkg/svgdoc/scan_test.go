package svgdoc

import "testing"

const scanDoc = `<svg viewBox="0 0 100 50"><g id="dt-1"><text x="10" y="20" fill="#ff0000"><tspan x="10">HELLO</tspan></text></g><text x="5" y="40">small</text><rect x="1" y="2" width="30" height="40"/></svg>`

func TestFindElement(t *testing.T) {
	span, ok := FindElement(scanDoc, "text", 0)
	if !ok {
		t.Fatal("first text element not found")
	}
	if got := span.Inner(scanDoc); got != `<tspan x="10">HELLO</tspan>` {
		t.Errorf("Inner = %q", got)
	}

	span, ok = FindElement(scanDoc, "text", 1)
	if !ok {
		t.Fatal("second text element not found")
	}
	if got := span.Inner(scanDoc); got != "small" {
		t.Errorf("Inner = %q", got)
	}

	if _, ok := FindElement(scanDoc, "text", 2); ok {
		t.Error("third text element should not exist")
	}
}

func TestFindElementSelfClosing(t *testing.T) {
	span, ok := FindElement(scanDoc, "rect", 0)
	if !ok {
		t.Fatal("rect not found")
	}
	if !span.Self {
		t.Error("rect should be self-closing")
	}
	if got := span.Inner(scanDoc); got != "" {
		t.Errorf("self-closing Inner = %q, want empty", got)
	}
}

func TestFindElementIgnoresPrefixMatches(t *testing.T) {
	doc := `<svg><textPath href="#p">curve</textPath><text>real</text></svg>`
	span, ok := FindElement(doc, "text", 0)
	if !ok {
		t.Fatal("text not found")
	}
	if got := span.Inner(doc); got != "real" {
		t.Errorf("Inner = %q, want real", got)
	}
	if CountElements(doc, "text") != 1 {
		t.Errorf("CountElements = %d, want 1", CountElements(doc, "text"))
	}
}

func TestFindElementNested(t *testing.T) {
	doc := `<svg><g id="outer"><g id="inner"><rect width="1" height="1"/></g></g></svg>`
	span, ok := FindElement(doc, "g", 0)
	if !ok {
		t.Fatal("outer group not found")
	}
	inner := span.Inner(doc)
	if inner != `<g id="inner"><rect width="1" height="1"/></g>` {
		t.Errorf("nested Inner = %q", inner)
	}
}

func TestAttr(t *testing.T) {
	tag := `<text x="10" y="20" fill="#ff0000" font-size="24px">`

	if v, ok := Attr(tag, "fill"); !ok || v != "#ff0000" {
		t.Errorf("Attr fill = %q %v", v, ok)
	}
	if _, ok := Attr(tag, "stroke"); ok {
		t.Error("absent attribute should not be found")
	}
	// fill must not match the tail of another attribute name.
	tag2 := `<rect data-fill="a" fill="b">`
	if v, _ := Attr(tag2, "fill"); v != "b" {
		t.Errorf("Attr matched wrong declaration: %q", v)
	}
	if got := AttrFloat(tag, "font-size", 0); got != 24 {
		t.Errorf("AttrFloat = %v, want 24 (px suffix tolerated)", got)
	}
}

func TestSetAttr(t *testing.T) {
	tag := `<rect x="1" width="10"/>`

	got := SetAttr(tag, "x", "5")
	if got != `<rect x="5" width="10"/>` {
		t.Errorf("replace: %q", got)
	}
	got = SetAttr(tag, "fill", "#abc")
	if got != `<rect x="1" width="10" fill="#abc"/>` {
		t.Errorf("insert self-closing: %q", got)
	}
	got = SetAttr(`<text y="2">`, "text-anchor", "middle")
	if got != `<text y="2" text-anchor="middle">` {
		t.Errorf("insert: %q", got)
	}
}

func TestViewBoxRoundTrip(t *testing.T) {
	vb, err := GetViewBox(scanDoc)
	if err != nil {
		t.Fatalf("GetViewBox: %v", err)
	}
	if vb.Width != 100 || vb.Height != 50 {
		t.Errorf("viewBox = %+v", vb)
	}
	if vb.CenterX() != 50 || vb.CenterY() != 25 {
		t.Errorf("center = %v,%v", vb.CenterX(), vb.CenterY())
	}

	out, err := SetViewBox(scanDoc, ViewBox{-5, -5, 110, 60})
	if err != nil {
		t.Fatalf("SetViewBox: %v", err)
	}
	vb2, err := GetViewBox(out)
	if err != nil {
		t.Fatalf("GetViewBox after set: %v", err)
	}
	if vb2 != (ViewBox{-5, -5, 110, 60}) {
		t.Errorf("round-trip viewBox = %+v", vb2)
	}
	root, _ := Root(out)
	tag := root.OpenTag(out)
	if w, _ := Attr(tag, "width"); w != "110" {
		t.Errorf("outer width = %q, want 110", w)
	}
}

func TestViewBoxFallsBackToSize(t *testing.T) {
	vb, err := GetViewBox(`<svg width="200" height="80"></svg>`)
	if err != nil {
		t.Fatalf("GetViewBox: %v", err)
	}
	if vb != (ViewBox{0, 0, 200, 80}) {
		t.Errorf("viewBox = %+v", vb)
	}
}
