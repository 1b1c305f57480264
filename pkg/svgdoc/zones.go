package svgdoc

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
)

// ContainerBox is the geometry of a naming-convention container.
type ContainerBox struct {
	X, Y, Width, Height float64
}

// ZoneInfo describes one text-bearing element found in a document.
type ZoneInfo struct {
	// Index is the zero-based position among text elements in document order.
	Index int
	// Container is the number of the nearest ancestor dt-<n> identifier,
	// or -1 when the zone sits outside any naming-convention group.
	Container int
	// Styling read from the element (empty / zero when undeclared).
	FontFamily string
	FontSize   float64
	Fill       string
	Stroke     string
	Transform  string
	// Content is the concatenated rendered text of the zone.
	Content string
}

var (
	containerIDRe = regexp.MustCompile(`^ct-(\d+)`)
	zoneIDRe      = regexp.MustCompile(`^dt-(\d+)`)
	translateRe   = regexp.MustCompile(`translate\(\s*(-?[\d.]+)[\s,]+(-?[\d.]+)\s*\)`)
)

// LocateContainers scans a document for ct-<n> containers and returns their
// boxes keyed by container number. A container that is itself a rect
// contributes its own box; a group contributes the box of its first child
// rect with the group translation folded in. Identifier decoration suffixes
// (ct-2_copy, ct-3-final) are tolerated.
func LocateContainers(doc string) (map[int]ContainerBox, error) {
	if _, err := Root(doc); err != nil {
		return nil, err
	}
	boxes := make(map[int]ContainerBox)

	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose

	// Pending group container awaiting its first child rect.
	type pending struct {
		number   int
		tx, ty   float64
		depth    int
		resolved bool
	}
	var groups []*pending
	depth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			id := xmlAttr(t, "id")
			m := containerIDRe.FindStringSubmatch(id)
			switch t.Name.Local {
			case "rect":
				if m != nil {
					n, _ := strconv.Atoi(m[1])
					boxes[n] = ContainerBox{
						X:      xmlAttrFloat(t, "x", 0),
						Y:      xmlAttrFloat(t, "y", 0),
						Width:  xmlAttrFloat(t, "width", 0),
						Height: xmlAttrFloat(t, "height", 0),
					}
				} else if len(groups) > 0 {
					g := groups[len(groups)-1]
					if !g.resolved {
						g.resolved = true
						boxes[g.number] = ContainerBox{
							X:      xmlAttrFloat(t, "x", 0) + g.tx,
							Y:      xmlAttrFloat(t, "y", 0) + g.ty,
							Width:  xmlAttrFloat(t, "width", 0),
							Height: xmlAttrFloat(t, "height", 0),
						}
					}
				}
			case "g":
				if m != nil {
					n, _ := strconv.Atoi(m[1])
					g := &pending{number: n, depth: depth}
					if tm := translateRe.FindStringSubmatch(xmlAttr(t, "transform")); tm != nil {
						g.tx, _ = strconv.ParseFloat(tm[1], 64)
						g.ty, _ = strconv.ParseFloat(tm[2], 64)
					}
					groups = append(groups, g)
				}
			}
		case xml.EndElement:
			if len(groups) > 0 && groups[len(groups)-1].depth == depth {
				groups = groups[:len(groups)-1]
			}
			depth--
		}
	}
	return boxes, nil
}

// LocateTextZones scans all text-bearing elements in document order,
// recording per-zone styling and the nearest ancestor dt-<n> identifier for
// auto-matching against a container of the same number. This index powers
// the admin collaborator's bounding-width auto-suggestion; the runtime
// injection path addresses zones purely by index.
func LocateTextZones(doc string) ([]ZoneInfo, error) {
	if _, err := Root(doc); err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose

	var zones []ZoneInfo
	// Stack of dt-<n> numbers for open ancestors; -1 for non-convention.
	var dtStack []int
	inText := 0
	var content strings.Builder

	nearest := func() int {
		for i := len(dtStack) - 1; i >= 0; i-- {
			if dtStack[i] >= 0 {
				return dtStack[i]
			}
		}
		return -1
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := -1
			if m := zoneIDRe.FindStringSubmatch(xmlAttr(t, "id")); m != nil {
				n, _ = strconv.Atoi(m[1])
			}
			dtStack = append(dtStack, n)
			if t.Name.Local == "text" {
				inText++
				content.Reset()
				zones = append(zones, ZoneInfo{
					Index:      len(zones),
					Container:  nearest(),
					FontFamily: xmlAttr(t, "font-family"),
					FontSize:   xmlAttrFloat(t, "font-size", 0),
					Fill:       xmlAttr(t, "fill"),
					Stroke:     xmlAttr(t, "stroke"),
					Transform:  xmlAttr(t, "transform"),
				})
			}
		case xml.EndElement:
			if len(dtStack) > 0 {
				dtStack = dtStack[:len(dtStack)-1]
			}
			if t.Name.Local == "text" && inText > 0 {
				inText--
				if inText == 0 && len(zones) > 0 {
					zones[len(zones)-1].Content = strings.TrimSpace(content.String())
				}
			}
		case xml.CharData:
			if inText > 0 {
				content.Write(t)
			}
		}
	}
	return zones, nil
}

func xmlAttr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func xmlAttrFloat(el xml.StartElement, name string, def float64) float64 {
	raw := xmlAttr(el, name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "px"), 64)
	if err != nil {
		return def
	}
	return v
}
