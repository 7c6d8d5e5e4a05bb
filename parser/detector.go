package parser

import "strings"

// ShouldAttemptExtraction decides whether content may carry an embedded part table.
// Rules are checked in order and the first match wins.
func (p *Parser) ShouldAttemptExtraction(content string, explicitFlag bool) bool {
	if explicitFlag {
		return true
	}

	if strings.Contains(content, p.opts.Separator) && strings.Contains(content, partInfoMarker) {
		return true
	}

	for _, legacy := range p.opts.LegacySeparators {
		if strings.Contains(content, legacy) {
			return true
		}
	}

	trimmed := strings.TrimSpace(content)

	// Bare JSON array of part objects
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") && strings.Contains(trimmed, "{") {
		return true
	}

	// Bare JSON object naming a part field
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		for _, field := range p.opts.KnownFields {
			if strings.Contains(trimmed, field) {
				return true
			}
		}
	}

	return false
}
