package svgdoc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/motifhq/motif/pkg/errors"
)

// Rule is one step of the normalization pass: a named removal or
// substitution applied to the raw document text. Rules run in order and
// each is independently unit-testable.
type Rule struct {
	Name string
	re   *regexp.Regexp
	repl string
}

// Apply runs the rule against the document.
func (r Rule) Apply(doc string) string {
	return r.re.ReplaceAllString(doc, r.repl)
}

// Rules is the ordered vendor-cruft removal table. Element removals run
// before attribute removals so attribute rules never see vendor elements.
var Rules = []Rule{
	// Editor metadata blocks carry no rendering information.
	{"strip-metadata", regexp.MustCompile(`(?s)<metadata\b[^>]*>.*?</metadata>`), ""},
	{"strip-editor-namedview", regexp.MustCompile(`(?s)<sodipodi:namedview\b.*?(?:/>|</sodipodi:namedview>)`), ""},
	// Embedded font data is unusable at render time; fonts are loaded
	// externally, so the block is dead weight.
	{"strip-embedded-fonts", regexp.MustCompile(`(?s)<font\b[^>]*>.*?</font>`), ""},
	{"strip-font-face-blocks", regexp.MustCompile(`(?s)@font-face\s*\{[^}]*\}`), ""},
	// Vendor-namespaced elements.
	{"strip-vendor-elements", regexp.MustCompile(`(?s)<(?:inkscape|sodipodi|vectornator|sketch|illustrator):[\w-]+\b.*?(?:/>|</(?:inkscape|sodipodi|vectornator|sketch|illustrator):[\w-]+>)`), ""},
	// Vendor-namespaced attributes. xmlns, xmlns:xlink and xlink:href are
	// standard and must survive.
	{"strip-vendor-xmlns", regexp.MustCompile(`\s+xmlns:(?:inkscape|sodipodi|vectornator|sketch|serif|i|x)="[^"]*"`), ""},
	{"strip-vendor-attrs", regexp.MustCompile(`\s+(?:inkscape|sodipodi|vectornator|sketch|serif|i|x):[\w.-]+="[^"]*"`), ""},
	{"strip-enable-background", regexp.MustCompile(`\s+enable-background="[^"]*"`), ""},
	{"strip-data-name", regexp.MustCompile(`\s+data-name="[^"]*"`), ""},
}

// FontRef is a portable font reference the runtime's text system understands.
type FontRef struct {
	Family string
	Weight int
}

// FontRemap rewrites vendor-specific (usually PostScript) font identifiers
// to portable family + weight pairs. Mapped family names are never keys, so
// the remapping is idempotent.
var FontRemap = map[string]FontRef{
	"ArialMT":              {"Arial", 400},
	"Arial-BoldMT":         {"Arial", 700},
	"Arial-ItalicMT":       {"Arial", 400},
	"Montserrat-Regular":   {"Montserrat", 400},
	"Montserrat-Bold":      {"Montserrat", 700},
	"Montserrat-SemiBold":  {"Montserrat", 600},
	"Raleway-Regular":      {"Raleway", 400},
	"Raleway-Bold":         {"Raleway", 700},
	"OpenSans-Regular":     {"Open Sans", 400},
	"OpenSans-Bold":        {"Open Sans", 700},
	"Oswald-Regular":       {"Oswald", 400},
	"Oswald-Medium":        {"Oswald", 500},
	"PlayfairDisplay-Bold": {"Playfair Display", 700},
	"Lato-Regular":         {"Lato", 400},
	"Lato-Black":           {"Lato", 900},
}

// Normalize strips vendor markup cruft from a raw template document and
// rewrites non-portable font identifiers. The result starts at the document
// root; anything before it is dropped. Normalize is idempotent, since some
// call paths already consume a normalized document.
func Normalize(raw string) (string, error) {
	idx := strings.Index(raw, "<svg")
	if idx < 0 {
		return "", errors.New(errors.ErrCodeMalformedDocument, "no recognizable document root")
	}
	// Keep an XML declaration if one directly precedes the root.
	doc := raw[idx:]
	if declStart := strings.Index(raw[:idx], "<?xml"); declStart >= 0 {
		if declEnd := strings.Index(raw[declStart:idx], "?>"); declEnd >= 0 {
			doc = raw[declStart:declStart+declEnd+2] + "\n" + doc
		}
	}

	for _, rule := range Rules {
		doc = rule.Apply(doc)
	}
	return remapFonts(doc), nil
}

// fontAttrRe matches font-family attribute declarations; fontStyleRe matches
// the inline-style form, with optional quoting.
var (
	fontAttrRe  = regexp.MustCompile(`font-family="([^"]+)"`)
	fontStyleRe = regexp.MustCompile(`font-family\s*:\s*'?([^;'"]+)'?`)
)

// remapFonts applies FontRemap to attribute and inline-style declarations.
func remapFonts(doc string) string {
	doc = fontAttrRe.ReplaceAllStringFunc(doc, func(m string) string {
		name := strings.Trim(fontAttrRe.FindStringSubmatch(m)[1], "'’ ")
		ref, ok := FontRemap[name]
		if !ok {
			return m
		}
		return fmt.Sprintf(`font-family="%s" font-weight="%d"`, ref.Family, ref.Weight)
	})
	doc = fontStyleRe.ReplaceAllStringFunc(doc, func(m string) string {
		name := strings.TrimSpace(fontStyleRe.FindStringSubmatch(m)[1])
		ref, ok := FontRemap[name]
		if !ok {
			return m
		}
		return fmt.Sprintf("font-family:'%s';font-weight:%d", ref.Family, ref.Weight)
	})
	return doc
}
