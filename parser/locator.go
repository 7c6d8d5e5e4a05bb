package parser

import "strings"

// LocatorStrategy identifies how an embedded blob was found
type LocatorStrategy int

const (
	LocatorNone LocatorStrategy = iota
	LocatorPeriodSeparator
	LocatorSeparator
	LocatorPartInfoScan
	LocatorWholeContent
)

// String returns the string representation of the LocatorStrategy
func (l LocatorStrategy) String() string {
	switch l {
	case LocatorPeriodSeparator:
		return "period_separator"
	case LocatorSeparator:
		return "separator"
	case LocatorPartInfoScan:
		return "partinfo_scan"
	case LocatorWholeContent:
		return "whole_content"
	default:
		return "none"
	}
}

// Blob is the structured fragment found inside a message
type Blob struct {
	Prefix   string          // prose before the blob, separator stripped
	Raw      string          // blob text as it appeared in the message
	Strategy LocatorStrategy // which strategy matched
}

// partInfo openers searched by the manual scan, in preference order
var partInfoOpeners = []string{"{'partInfo'", `{"partInfo"`}

// LocateEmbeddedBlob finds the boundary of the structured blob inside content.
// Returns false when no strategy matched.
func (p *Parser) LocateEmbeddedBlob(content string) (*Blob, bool) {
	// "._____{...}" running to end of string; the period belongs to the prose
	if m := p.periodSeparatorPattern.FindStringSubmatchIndex(content); m != nil {
		return &Blob{
			Prefix:   p.stripTrailingSeparator(content[:m[0]+1]),
			Raw:      content[m[2]:m[3]],
			Strategy: LocatorPeriodSeparator,
		}, true
	}

	if m := p.separatorPattern.FindStringSubmatchIndex(content); m != nil {
		// A repeated separator matches late; walk back over whole repeats only
		start := m[0]
		for strings.HasSuffix(content[:start], p.opts.Separator) {
			start -= len(p.opts.Separator)
		}
		return &Blob{
			Prefix:   p.stripTrailingSeparator(content[:start]),
			Raw:      content[m[2]:m[3]],
			Strategy: LocatorSeparator,
		}, true
	}

	for _, opener := range partInfoOpeners {
		start := strings.Index(content, opener)
		if start < 0 {
			continue
		}
		end, ok := scanBalanced(content, start)
		if !ok {
			continue
		}
		return &Blob{
			Prefix:   p.stripTrailingSeparator(content[:start]),
			Raw:      content[start:end],
			Strategy: LocatorPartInfoScan,
		}, true
	}

	trimmed := strings.TrimSpace(content)
	if (strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) ||
		(strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) {
		return &Blob{Raw: trimmed, Strategy: LocatorWholeContent}, true
	}

	return nil, false
}

// scanBalanced walks from start until bracket depth returns to zero and returns the
// index just past the closing bracket. Brackets inside quoted strings are ignored; a
// string only closes on the quote character that opened it.
func scanBalanced(s string, start int) (int, bool) {
	depth := 0
	inString := false
	var quote byte

	for i := start; i < len(s); i++ {
		c := s[i]

		if c == '\'' || c == '"' {
			if i > 0 && s[i-1] == '\\' {
				continue
			}
			if !inString {
				inString = true
				quote = c
			} else if c == quote {
				inString = false
			}
			continue
		}

		if inString {
			continue
		}

		switch c {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}

	return 0, false
}
