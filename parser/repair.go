package parser

import "strings"

// RepairQuoting decides, quote by quote, whether a double quote delimits a string or
// belongs to its content, and escapes the ones that belong to content.
// Inside a string, a quote closes it only when the next non-space character is one of
// , } ] : or the input ends. This is a heuristic: a value containing `", ` is misread.
func RepairQuoting(normalized string) string {
	var b strings.Builder
	b.Grow(len(normalized) + 16)

	inString := false
	for i := 0; i < len(normalized); i++ {
		c := normalized[i]

		if c != '"' || (i > 0 && normalized[i-1] == '\\') {
			b.WriteByte(c)
			continue
		}

		if !inString {
			inString = true
			b.WriteByte('"')
			continue
		}

		if closesString(normalized, i+1) {
			inString = false
			b.WriteByte('"')
		} else {
			b.WriteString(`\"`)
		}
	}

	return b.String()
}

func closesString(s string, from int) bool {
	for j := from; j < len(s); j++ {
		switch s[j] {
		case ' ', '\t', '\n', '\r':
			continue
		case ',', '}', ']', ':':
			return true
		default:
			return false
		}
	}
	return true
}
