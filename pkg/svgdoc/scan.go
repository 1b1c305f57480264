package svgdoc

import (
	"fmt"
	"strconv"
	"strings"
)

// Span marks the boundaries of one element inside a document string.
// Start..End covers the whole element including its closing tag; OpenEnd is
// the index just past the '>' of the opening tag. For self-closing elements
// OpenEnd equals End.
type Span struct {
	Start   int
	OpenEnd int
	End     int
	Self    bool // self-closing element
}

// OpenTag returns the opening tag text, including the angle brackets.
func (s Span) OpenTag(doc string) string {
	return doc[s.Start:s.OpenEnd]
}

// Inner returns the element content between the opening and closing tags.
// Self-closing elements have no content.
func (s Span) Inner(doc string) string {
	if s.Self {
		return ""
	}
	close := strings.LastIndex(doc[:s.End], "<")
	if close < s.OpenEnd {
		return ""
	}
	return doc[s.OpenEnd:close]
}

// InnerSpan returns the start and end indexes of the element content.
func (s Span) InnerSpan(doc string) (int, int) {
	if s.Self {
		return s.OpenEnd, s.OpenEnd
	}
	close := strings.LastIndex(doc[:s.End], "<")
	if close < s.OpenEnd {
		return s.OpenEnd, s.OpenEnd
	}
	return s.OpenEnd, close
}

// FindElement locates the nth (zero-based) occurrence of the named element.
// Nested occurrences of the same tag are matched to the correct closing tag.
func FindElement(doc, tag string, n int) (Span, bool) {
	count := 0
	pos := 0
	for {
		span, ok := nextElement(doc, tag, pos)
		if !ok {
			return Span{}, false
		}
		if count == n {
			return span, true
		}
		count++
		pos = span.OpenEnd
	}
}

// CountElements returns the number of occurrences of the named element.
func CountElements(doc, tag string) int {
	count := 0
	pos := 0
	for {
		span, ok := nextElement(doc, tag, pos)
		if !ok {
			return count
		}
		count++
		pos = span.OpenEnd
	}
}

// ForEachElement calls fn for every occurrence of the named element in
// document order. Iteration stops when fn returns false.
func ForEachElement(doc, tag string, fn func(Span) bool) {
	pos := 0
	for {
		span, ok := nextElement(doc, tag, pos)
		if !ok {
			return
		}
		if !fn(span) {
			return
		}
		pos = span.OpenEnd
	}
}

// nextElement finds the first occurrence of the named element at or after pos.
func nextElement(doc, tag string, pos int) (Span, bool) {
	needle := "<" + tag
	for {
		start := strings.Index(doc[pos:], needle)
		if start < 0 {
			return Span{}, false
		}
		start += pos
		after := start + len(needle)
		if after >= len(doc) {
			return Span{}, false
		}
		// Reject prefix matches like <textPath when scanning for <text.
		switch doc[after] {
		case ' ', '\t', '\n', '\r', '>', '/':
		default:
			pos = after
			continue
		}
		openEnd, self := openTagEnd(doc, start)
		if openEnd < 0 {
			return Span{}, false
		}
		if self {
			return Span{Start: start, OpenEnd: openEnd, End: openEnd, Self: true}, true
		}
		end := closeTagEnd(doc, tag, openEnd)
		if end < 0 {
			return Span{}, false
		}
		return Span{Start: start, OpenEnd: openEnd, End: end}, true
	}
}

// openTagEnd scans from the '<' at start to the matching '>' of the opening
// tag, honoring quoted attribute values. Returns the index past '>' and
// whether the tag is self-closing.
func openTagEnd(doc string, start int) (int, bool) {
	inQuote := byte(0)
	for i := start; i < len(doc); i++ {
		c := doc[i]
		if inQuote != 0 {
			if c == inQuote {
				inQuote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = c
		case '>':
			return i + 1, i > start && doc[i-1] == '/'
		}
	}
	return -1, false
}

// closeTagEnd finds the index past the closing tag matching the element whose
// opening tag ended at pos, counting nested same-tag elements.
func closeTagEnd(doc, tag string, pos int) int {
	depth := 1
	open := "<" + tag
	close := "</" + tag
	for pos < len(doc) {
		next := strings.Index(doc[pos:], "<"+tag)
		closeIdx := strings.Index(doc[pos:], close)
		if closeIdx < 0 {
			return -1
		}
		if next >= 0 && next < closeIdx {
			abs := pos + next
			after := abs + len(open)
			if after < len(doc) {
				switch doc[after] {
				case ' ', '\t', '\n', '\r', '>', '/':
					end, self := openTagEnd(doc, abs)
					if end < 0 {
						return -1
					}
					if !self {
						depth++
					}
					pos = end
					continue
				}
			}
			pos = after
			continue
		}
		abs := pos + closeIdx
		gt := strings.IndexByte(doc[abs:], '>')
		if gt < 0 {
			return -1
		}
		depth--
		pos = abs + gt + 1
		if depth == 0 {
			return pos
		}
	}
	return -1
}

// Attr extracts the value of a named attribute from an element's opening tag.
func Attr(tag, name string) (string, bool) {
	pos := 0
	for {
		idx := strings.Index(tag[pos:], name+"=")
		if idx < 0 {
			return "", false
		}
		idx += pos
		// Must be preceded by whitespace so fill= does not match stroke-fill=.
		if idx == 0 || !isSpace(tag[idx-1]) {
			pos = idx + len(name)
			continue
		}
		rest := tag[idx+len(name)+1:]
		if len(rest) == 0 || (rest[0] != '"' && rest[0] != '\'') {
			pos = idx + len(name)
			continue
		}
		quote := rest[0]
		end := strings.IndexByte(rest[1:], quote)
		if end < 0 {
			return "", false
		}
		return rest[1 : 1+end], true
	}
}

// SetAttr returns the opening tag with the named attribute set to value,
// replacing an existing declaration or inserting a new one before the
// closing bracket.
func SetAttr(tag, name, value string) string {
	pos := 0
	for {
		idx := strings.Index(tag[pos:], name+"=")
		if idx < 0 {
			break
		}
		idx += pos
		if idx == 0 || !isSpace(tag[idx-1]) {
			pos = idx + len(name)
			continue
		}
		rest := tag[idx+len(name)+1:]
		if len(rest) == 0 || (rest[0] != '"' && rest[0] != '\'') {
			pos = idx + len(name)
			continue
		}
		quote := rest[0]
		end := strings.IndexByte(rest[1:], quote)
		if end < 0 {
			break
		}
		valStart := idx + len(name) + 2
		return tag[:valStart] + value + tag[valStart+end:]
	}
	// Insert before '/>' or '>'.
	insert := fmt.Sprintf(` %s="%s"`, name, value)
	if strings.HasSuffix(tag, "/>") {
		return tag[:len(tag)-2] + insert + "/>"
	}
	if strings.HasSuffix(tag, ">") {
		return tag[:len(tag)-1] + insert + ">"
	}
	return tag + insert
}

// AttrFloat extracts a numeric attribute, returning def when absent or
// unparsable. Unit suffixes like "px" are tolerated.
func AttrFloat(tag, name string, def float64) float64 {
	raw, ok := Attr(tag, name)
	if !ok {
		return def
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

// Replace splices replacement into doc over the given index range.
func Replace(doc string, start, end int, replacement string) string {
	return doc[:start] + replacement + doc[end:]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
