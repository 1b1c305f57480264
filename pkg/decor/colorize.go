package decor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// fillStrokeAttrRe matches fill/stroke presentation attributes.
var fillStrokeAttrRe = regexp.MustCompile(`(fill|stroke)="([^"]*)"`)

// fillStrokeStyleRe matches fill/stroke declarations inside style attributes.
var fillStrokeStyleRe = regexp.MustCompile(`(fill|stroke)\s*:\s*([^;"']+)`)

// namedColors maps the color keywords that show up in authored templates to
// canonical hex. Unknown names are simply not colorizable.
var namedColors = map[string]string{
	"black":     "#000000",
	"white":     "#ffffff",
	"red":       "#ff0000",
	"green":     "#008000",
	"blue":      "#0000ff",
	"yellow":    "#ffff00",
	"orange":    "#ffa500",
	"purple":    "#800080",
	"pink":      "#ffc0cb",
	"gray":      "#808080",
	"grey":      "#808080",
	"brown":     "#a52a2a",
	"gold":      "#ffd700",
	"navy":      "#000080",
	"teal":      "#008080",
	"maroon":    "#800000",
	"olive":     "#808000",
	"silver":    "#c0c0c0",
	"lime":      "#00ff00",
	"aqua":      "#00ffff",
	"cyan":      "#00ffff",
	"magenta":   "#ff00ff",
	"fuchsia":   "#ff00ff",
	"coral":     "#ff7f50",
	"salmon":    "#fa8072",
	"khaki":     "#f0e68c",
	"plum":      "#dda0dd",
	"orchid":    "#da70d6",
	"tan":       "#d2b48c",
	"turquoise": "#40e0d0",
	"lavender":  "#e6e6fa",
	"crimson":   "#dc143c",
	"indigo":    "#4b0082",
	"violet":    "#ee82ee",
	"skyblue":   "#87ceeb",
	"ivory":     "#fffff0",
	"beige":     "#f5f5dc",
}

// rgbRe matches the rgb(r, g, b) functional color form.
var rgbRe = regexp.MustCompile(`^rgb\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)$`)

// CanonicalColor normalizes a color value to lowercase #rrggbb form. The
// second return value reports whether the value was a recognizable color at
// all (gradients, url() references, and "none" are not).
func CanonicalColor(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "" || v == "none" || v == "transparent" || v == "currentcolor":
		return "", false
	case strings.HasPrefix(v, "url("):
		return "", false
	}
	if hex, ok := namedColors[v]; ok {
		return hex, true
	}
	if m := rgbRe.FindStringSubmatch(v); m != nil {
		r, _ := strconv.Atoi(m[1])
		g, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		if r > 255 || g > 255 || b > 255 {
			return "", false
		}
		return fmt.Sprintf("#%02x%02x%02x", r, g, b), true
	}
	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		switch len(hex) {
		case 3:
			return "#" + strings.Repeat(string(hex[0]), 2) +
				strings.Repeat(string(hex[1]), 2) +
				strings.Repeat(string(hex[2]), 2), isHex(hex)
		case 6:
			return v, isHex(hex)
		}
	}
	return "", false
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}

// DominantColor returns the most frequent non-black, non-white color across
// the document's fill and stroke declarations, in canonical hex form. The
// second return value is false when the document has no colorizable color.
func DominantColor(doc string) (string, bool) {
	counts := make(map[string]int)
	tally := func(raw string) {
		hex, ok := CanonicalColor(raw)
		if !ok || hex == "#000000" || hex == "#ffffff" {
			return
		}
		counts[hex]++
	}
	for _, m := range fillStrokeAttrRe.FindAllStringSubmatch(doc, -1) {
		tally(m[2])
	}
	for _, m := range fillStrokeStyleRe.FindAllStringSubmatch(doc, -1) {
		tally(m[2])
	}
	best, bestN := "", 0
	for hex, n := range counts {
		if n > bestN || (n == bestN && hex < best) {
			best, bestN = hex, n
		}
	}
	return best, bestN > 0
}

// Colorize replaces every fill/stroke occurrence of the document's dominant
// color with newColor. It never fails: a neutral-only document, or a newColor
// that is not a valid color, leaves the document unchanged. Applying Colorize
// twice replaces the same slot twice, so the last color wins.
func Colorize(doc, newColor string) string {
	target, ok := CanonicalColor(newColor)
	if !ok {
		return doc
	}
	dominant, ok := DominantColor(doc)
	if !ok || dominant == target {
		return doc
	}

	doc = fillStrokeAttrRe.ReplaceAllStringFunc(doc, func(m string) string {
		sub := fillStrokeAttrRe.FindStringSubmatch(m)
		if hex, ok := CanonicalColor(sub[2]); ok && hex == dominant {
			return sub[1] + `="` + target + `"`
		}
		return m
	})
	return fillStrokeStyleRe.ReplaceAllStringFunc(doc, func(m string) string {
		sub := fillStrokeStyleRe.FindStringSubmatch(m)
		if hex, ok := CanonicalColor(sub[2]); ok && hex == dominant {
			return sub[1] + ":" + target
		}
		return m
	})
}
