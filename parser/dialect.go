package parser

import (
	"regexp"
	"strings"
)

// pythonLiteral maps a Python constant, in value position, to its JSON spelling
type pythonLiteral struct {
	pattern     *regexp.Regexp
	replacement string
}

// Value position means after ':' or ',' or inside '[', with optional whitespace
var pythonLiterals = []pythonLiteral{
	{regexp.MustCompile(`([:,\[]\s*)None\b`), "${1}null"},
	{regexp.MustCompile(`([:,\[]\s*)True\b`), "${1}true"},
	{regexp.MustCompile(`([:,\[]\s*)False\b`), "${1}false"},
}

// NormalizeDialect rewrites Python literal tokens to JSON and turns every single quote
// into a double quote. The quote rewrite is deliberately naive; RepairQuoting cleans up
// the quotes it makes ambiguous.
func NormalizeDialect(blob string) string {
	out := blob
	for _, lit := range pythonLiterals {
		out = lit.pattern.ReplaceAllString(out, lit.replacement)
	}
	return strings.ReplaceAll(out, "'", `"`)
}
