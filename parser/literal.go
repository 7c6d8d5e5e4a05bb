package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const maxLiteralDepth = 256

// LiteralSyntaxError reports where a Python literal could not be parsed
type LiteralSyntaxError struct {
	Message  string
	Position int
}

// Error implements the error interface
func (e *LiteralSyntaxError) Error() string {
	return fmt.Sprintf("literal syntax error at position %d: %s", e.Position, e.Message)
}

// ParseLiteral parses a Python-repr style literal (dicts, lists, tuples, quoted strings,
// numbers, None/True/False) into the same value types encoding/json produces:
// map[string]interface{}, []interface{}, string, float64, bool and nil.
// JSON is a subset of what it accepts. Nothing is evaluated.
func ParseLiteral(s string) (interface{}, error) {
	lp := &literalParser{src: s}
	lp.skipSpace()

	value, err := lp.parseValue(0)
	if err != nil {
		return nil, err
	}

	lp.skipSpace()
	if lp.pos != len(lp.src) {
		return nil, lp.errorf("unexpected trailing content")
	}
	return value, nil
}

type literalParser struct {
	src string
	pos int
}

func (lp *literalParser) errorf(format string, args ...interface{}) error {
	return &LiteralSyntaxError{Message: fmt.Sprintf(format, args...), Position: lp.pos}
}

func (lp *literalParser) eof() bool {
	return lp.pos >= len(lp.src)
}

func (lp *literalParser) peek() byte {
	if lp.eof() {
		return 0
	}
	return lp.src[lp.pos]
}

func (lp *literalParser) skipSpace() {
	for !lp.eof() {
		switch lp.src[lp.pos] {
		case ' ', '\t', '\n', '\r':
			lp.pos++
		default:
			return
		}
	}
}

func (lp *literalParser) parseValue(depth int) (interface{}, error) {
	if depth > maxLiteralDepth {
		return nil, lp.errorf("nesting too deep")
	}

	switch c := lp.peek(); {
	case c == 0:
		return nil, lp.errorf("unexpected end of input")
	case c == '{':
		return lp.parseDict(depth)
	case c == '[':
		return lp.parseSequence(']', depth)
	case c == '(':
		return lp.parseSequence(')', depth)
	case c == '\'' || c == '"':
		return lp.parseString()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return lp.parseNumber()
	case isIdentStart(c):
		return lp.parseConstant()
	default:
		return nil, lp.errorf("unexpected character %q", c)
	}
}

func (lp *literalParser) parseDict(depth int) (interface{}, error) {
	lp.pos++ // {
	obj := make(map[string]interface{})

	for {
		lp.skipSpace()
		if lp.peek() == '}' {
			lp.pos++
			return obj, nil
		}

		key, err := lp.parseKey()
		if err != nil {
			return nil, err
		}

		lp.skipSpace()
		if lp.peek() != ':' {
			return nil, lp.errorf("expected ':' after key %q", key)
		}
		lp.pos++

		lp.skipSpace()
		value, err := lp.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		obj[key] = value

		lp.skipSpace()
		switch lp.peek() {
		case ',':
			lp.pos++
		case '}':
			lp.pos++
			return obj, nil
		default:
			return nil, lp.errorf("expected ',' or '}' in dict")
		}
	}
}

// parseKey accepts quoted strings, bare identifiers and numbers
func (lp *literalParser) parseKey() (string, error) {
	c := lp.peek()
	switch {
	case c == '\'' || c == '"':
		s, err := lp.parseString()
		if err != nil {
			return "", err
		}
		return s.(string), nil
	case isIdentStart(c):
		return lp.readIdent(), nil
	case c == '-' || isDigit(c):
		start := lp.pos
		if _, err := lp.parseNumber(); err != nil {
			return "", err
		}
		return lp.src[start:lp.pos], nil
	default:
		return "", lp.errorf("invalid dict key")
	}
}

func (lp *literalParser) parseSequence(closer byte, depth int) (interface{}, error) {
	lp.pos++ // [ or (
	items := make([]interface{}, 0)

	for {
		lp.skipSpace()
		if lp.peek() == closer {
			lp.pos++
			return items, nil
		}

		value, err := lp.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, value)

		lp.skipSpace()
		switch lp.peek() {
		case ',':
			lp.pos++
		case closer:
			lp.pos++
			return items, nil
		default:
			return nil, lp.errorf("expected ',' or %q in sequence", closer)
		}
	}
}

func (lp *literalParser) parseString() (interface{}, error) {
	quote := lp.src[lp.pos]
	lp.pos++

	var b strings.Builder
	for !lp.eof() {
		c := lp.src[lp.pos]
		switch {
		case c == quote:
			lp.pos++
			return b.String(), nil
		case c == '\\':
			if err := lp.readEscape(&b); err != nil {
				return nil, err
			}
		default:
			b.WriteByte(c)
			lp.pos++
		}
	}

	return nil, lp.errorf("unterminated string")
}

// readEscape consumes one backslash escape. Unknown escapes are kept verbatim, as Python does.
func (lp *literalParser) readEscape(b *strings.Builder) error {
	lp.pos++ // backslash
	if lp.eof() {
		return lp.errorf("unterminated escape")
	}

	c := lp.src[lp.pos]
	lp.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case '\\', '\'', '"', '/':
		b.WriteByte(c)
	case '\n':
		// line continuation
	case 'x':
		r, err := lp.readHex(2)
		if err != nil {
			return err
		}
		b.WriteRune(r)
	case 'u':
		r, err := lp.readHex(4)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && strings.HasPrefix(lp.src[lp.pos:], `\u`) {
			save := lp.pos
			lp.pos += 2
			if low, err := lp.readHex(4); err == nil {
				if combined := utf16.DecodeRune(r, low); combined != utf8.RuneError {
					b.WriteRune(combined)
					return nil
				}
			}
			lp.pos = save
		}
		b.WriteRune(r)
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (lp *literalParser) readHex(n int) (rune, error) {
	if lp.pos+n > len(lp.src) {
		return 0, lp.errorf("truncated hex escape")
	}
	v, err := strconv.ParseUint(lp.src[lp.pos:lp.pos+n], 16, 32)
	if err != nil {
		return 0, lp.errorf("invalid hex escape")
	}
	lp.pos += n
	return rune(v), nil
}

func (lp *literalParser) parseNumber() (interface{}, error) {
	start := lp.pos
	if c := lp.peek(); c == '-' || c == '+' {
		lp.pos++
	}
	for !lp.eof() {
		c := lp.src[lp.pos]
		if isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '_' ||
			((c == '-' || c == '+') && (lp.src[lp.pos-1] == 'e' || lp.src[lp.pos-1] == 'E')) {
			lp.pos++
			continue
		}
		break
	}

	text := strings.ReplaceAll(lp.src[start:lp.pos], "_", "")
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		lp.pos = start
		return nil, lp.errorf("invalid number %q", text)
	}
	return n, nil
}

func (lp *literalParser) parseConstant() (interface{}, error) {
	start := lp.pos
	switch ident := lp.readIdent(); ident {
	case "None", "null":
		return nil, nil
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	default:
		lp.pos = start
		return nil, lp.errorf("unexpected identifier %q", ident)
	}
}

func (lp *literalParser) readIdent() string {
	start := lp.pos
	for !lp.eof() && (isIdentStart(lp.src[lp.pos]) || isDigit(lp.src[lp.pos])) {
		lp.pos++
	}
	return lp.src[start:lp.pos]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
