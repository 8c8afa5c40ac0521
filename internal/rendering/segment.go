package rendering

import (
	"regexp"
	"strings"
)

// HTML blocks are tagged with a segment attribute on their opening tag:
//
//	<div data-gh-segment="status:free"> free users!</div>
//
// Plaintext has no markup, so blocks are delimited by paired marker lines:
//
//	%%segment:status:free%%
//	 free users!
//	%%end-segment%%
//
// A kept block survives with its markup stripped; a removed block disappears
// tag, markers, and content alike. The segment attribute and the marker
// lines never reach the output.
const (
	segmentAttr          = `data-gh-segment="`
	plaintextSegmentOpen = "%%segment:"
	plaintextSegmentEnd  = "%%end-segment%%"
)

var segmentAttrPattern = regexp.MustCompile(`\s*data-gh-segment="[^"]*"`)

// FilterHTMLForSegment removes or unwraps every segment-tagged element in
// html according to the active segment filter. Untagged content passes
// through byte-for-byte.
func FilterHTMLForSegment(html string, segment Segment) string {
	var b strings.Builder
	b.Grow(len(html))
	rest := html
	for {
		idx := strings.Index(rest, segmentAttr)
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		tagStart := strings.LastIndexByte(rest[:idx], '<')
		valStart := idx + len(segmentAttr)
		valLen := strings.IndexByte(rest[valStart:], '"')
		if tagStart < 0 || valLen < 0 {
			// Attribute text outside a well-formed tag; emit it verbatim
			// and keep scanning.
			b.WriteString(rest[:valStart])
			rest = rest[valStart:]
			continue
		}
		blockSegment := Segment(rest[valStart : valStart+valLen])
		name := tagName(rest[tagStart+1:])
		openEnd := strings.IndexByte(rest[valStart+valLen:], '>')
		if openEnd < 0 {
			b.WriteString(rest)
			break
		}
		contentStart := valStart + valLen + openEnd + 1

		b.WriteString(rest[:tagStart])
		if blockSegment.Matches(segment) {
			// Keep: strip the attribute from the opening tag and rescan the
			// content, so tagged blocks nested inside a kept block are
			// filtered by the same rule.
			b.WriteString(segmentAttrPattern.ReplaceAllString(rest[tagStart:contentStart], ""))
			rest = rest[contentStart:]
			continue
		}
		rest = rest[matchingCloseEnd(rest, contentStart, name):]
	}
	return b.String()
}

// FilterPlaintextForSegment applies the same visibility rule to a plaintext
// body using the paired marker lines. Marker lines must stand on their own
// line; blocks do not nest. Blank-line runs left by removal are collapsed so
// no doubled separators appear.
func FilterPlaintextForSegment(text string, segment Segment) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	inBlock := false
	keep := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case !inBlock && strings.HasPrefix(trimmed, plaintextSegmentOpen) && strings.HasSuffix(trimmed, "%%"):
			inBlock = true
			blockSegment := Segment(trimmed[len(plaintextSegmentOpen) : len(trimmed)-2])
			keep = blockSegment.Matches(segment)
		case inBlock && trimmed == plaintextSegmentEnd:
			inBlock = false
		case !inBlock || keep:
			out = append(out, line)
		}
	}
	return collapseBlankRuns(strings.Join(out, "\n"))
}

var blankRunPattern = regexp.MustCompile(`\n{3,}`)

func collapseBlankRuns(s string) string {
	return blankRunPattern.ReplaceAllString(s, "\n\n")
}

// tagName reads the element name starting at the byte after '<'.
func tagName(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '>' || c == '/' {
			return s[:i]
		}
	}
	return s
}

// matchingCloseEnd returns the index just past the close tag matching the
// element whose content starts at from, counting nested same-name elements.
// An unbalanced document swallows through to the end of input.
func matchingCloseEnd(s string, from int, name string) int {
	depth := 1
	open := "<" + name
	closing := "</" + name
	i := from
	for i < len(s) {
		next := strings.IndexByte(s[i:], '<')
		if next < 0 {
			break
		}
		i += next
		if strings.HasPrefix(s[i:], closing) && boundaryAfter(s, i+len(closing)) {
			depth--
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				return len(s)
			}
			if depth == 0 {
				return i + end + 1
			}
			i += end + 1
			continue
		}
		if strings.HasPrefix(s[i:], open) && boundaryAfter(s, i+len(open)) {
			// Self-closing tags don't open a region.
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				return len(s)
			}
			if s[i+end-1] != '/' {
				depth++
			}
			i += end + 1
			continue
		}
		i++
	}
	return len(s)
}

// boundaryAfter reports whether position i terminates a tag name, so
// "<divider" is not mistaken for "<div".
func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	c := s[i]
	return c == ' ' || c == '\t' || c == '\n' || c == '>' || c == '/'
}
