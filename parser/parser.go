// Package parser recovers structured part tables embedded in assistant chat messages.
// An assistant answer may be prose followed by a separator and a Python-repr style
// dict literal, or a bare JSON array/object of parts. The pipeline detects, locates,
// normalizes, repairs and decodes that payload into a flat list of part records.
// Every function in this package is pure and never panics on malformed input.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"partsdesk/types"
)

// Default markers used by the answer pipeline
const (
	DefaultSeparator       = "_____"
	DefaultLegacySeparator = "--------"
	partInfoMarker         = "partInfo"
)

// DefaultKnownFields are the field names that identify a bare JSON object as part data
var DefaultKnownFields = []string{"partNumber", "related_parts", "general_info", "MFRID", "PARTNUMBER"}

// Options controls detection markers and which recovery decoders are enabled
type Options struct {
	Separator        string   `yaml:"separator"`
	LegacySeparators []string `yaml:"legacySeparators"`
	KnownFields      []string `yaml:"knownFields"`
	LiteralFallback  bool     `yaml:"literalFallback"`
	RepairFallback   bool     `yaml:"repairFallback"`
}

// DefaultOptions returns the markers the backend currently emits with every fallback enabled
func DefaultOptions() Options {
	return Options{
		Separator:        DefaultSeparator,
		LegacySeparators: []string{DefaultLegacySeparator},
		KnownFields:      append([]string(nil), DefaultKnownFields...),
		LiteralFallback:  true,
		RepairFallback:   true,
	}
}

// Parser runs the extraction pipeline. It is immutable after construction and safe for concurrent use.
type Parser struct {
	opts Options

	periodSeparatorPattern *regexp.Regexp
	separatorPattern       *regexp.Regexp
}

// NewParser compiles the locator patterns for the given options
func NewParser(opts Options) (*Parser, error) {
	if opts.Separator == "" {
		return nil, fmt.Errorf("separator must not be empty")
	}
	legacy := make([]string, 0, len(opts.LegacySeparators))
	for _, sep := range opts.LegacySeparators {
		if sep != "" {
			legacy = append(legacy, sep)
		}
	}
	opts.LegacySeparators = legacy
	if len(opts.KnownFields) == 0 {
		opts.KnownFields = append([]string(nil), DefaultKnownFields...)
	}

	sep := regexp.QuoteMeta(opts.Separator)

	periodSeparatorPattern, err := regexp.Compile(`(?s)\.` + sep + `\s*(\{.*\})\s*$`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile period separator pattern: %w", err)
	}

	separatorPattern, err := regexp.Compile(`(?s)` + sep + `\s*(\{.*\})\s*$`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile separator pattern: %w", err)
	}

	return &Parser{
		opts:                   opts,
		periodSeparatorPattern: periodSeparatorPattern,
		separatorPattern:       separatorPattern,
	}, nil
}

// Options returns a copy of the parser's options
func (p *Parser) Options() Options {
	opts := p.opts
	opts.LegacySeparators = append([]string(nil), p.opts.LegacySeparators...)
	opts.KnownFields = append([]string(nil), p.opts.KnownFields...)
	return opts
}

// Failure classifies why a message produced no table
type Failure int

const (
	FailureNone Failure = iota
	FailureNotAttempted
	FailureLocatorMiss
	FailureParse
	FailureShapeUnrecognized
)

// String returns the string representation of the Failure
func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureNotAttempted:
		return "not_attempted"
	case FailureLocatorMiss:
		return "locator_miss"
	case FailureParse:
		return "parse_failure"
	case FailureShapeUnrecognized:
		return "shape_unrecognized"
	default:
		return "unknown"
	}
}

// Trace records which pipeline stages produced a Result
type Trace struct {
	Attempted bool            `json:"attempted"`
	Locator   LocatorStrategy `json:"-"`
	Decoder   Decoder         `json:"-"`
	Shape     Shape           `json:"-"`
	Failure   Failure         `json:"-"`
}

// Outcome is a short label for metrics: "table" or the failure name
func (t Trace) Outcome() string {
	if t.Failure == FailureNone {
		return "table"
	}
	return t.Failure.String()
}

// Fields flattens the trace for structured logging
func (t Trace) Fields() map[string]interface{} {
	return map[string]interface{}{
		"attempted": t.Attempted,
		"locator":   t.Locator.String(),
		"decoder":   t.Decoder.String(),
		"shape":     t.Shape.String(),
		"outcome":   t.Outcome(),
	}
}

// Result is the outcome of parsing one message.
// Table is nil or non-empty; when it is nil, Text is the original content unchanged.
type Result struct {
	Text  string             `json:"text"`
	Table []types.PartRecord `json:"tableData"`
	Trace Trace              `json:"-"`
}

// HasTable reports whether a table was recovered
func (r Result) HasTable() bool {
	return len(r.Table) > 0
}

// Parse separates prose from an embedded part table.
// A false hasTableHint short-circuits: the content is returned untouched.
func (p *Parser) Parse(content string, hasTableHint bool) Result {
	if !hasTableHint {
		return Result{Text: content, Trace: Trace{Failure: FailureNotAttempted}}
	}

	trace := Trace{Attempted: true}

	blob, ok := p.LocateEmbeddedBlob(content)
	if !ok {
		trace.Failure = FailureLocatorMiss
		return Result{Text: content, Trace: trace}
	}
	trace.Locator = blob.Strategy

	repaired := RepairQuoting(NormalizeDialect(blob.Raw))

	value, decoder, err := p.decode(repaired, blob.Raw)
	trace.Decoder = decoder
	if err != nil {
		trace.Failure = FailureParse
		return Result{Text: content, Trace: trace}
	}

	records, shape := NormalizeShape(value)
	trace.Shape = shape
	if len(records) == 0 {
		trace.Failure = FailureShapeUnrecognized
		return Result{Text: content, Trace: trace}
	}

	return Result{Text: blob.Prefix, Table: records, Trace: trace}
}

// ParseDetected parses content for producers that send no table hint;
// the detector heuristics stand in for the hint.
func (p *Parser) ParseDetected(content string) Result {
	return p.Parse(content, p.ShouldAttemptExtraction(content, false))
}

// ParseAndNormalize decodes a repaired blob, falling back to the raw blob, and
// normalizes the decoded value into part records. Returns nil when nothing usable was found.
func (p *Parser) ParseAndNormalize(repairedBlob, rawBlob string) []types.PartRecord {
	value, _, err := p.decode(repairedBlob, rawBlob)
	if err != nil {
		return nil
	}
	records, _ := NormalizeShape(value)
	return records
}

// stripTrailingSeparator drops whole trailing separator tokens and surrounding whitespace.
// Separator characters that do not form a complete token stay with the prose.
func (p *Parser) stripTrailingSeparator(s string) string {
	s = strings.TrimSpace(s)
	for _, sep := range p.separators() {
		for strings.HasSuffix(s, sep) {
			s = strings.TrimSpace(strings.TrimSuffix(s, sep))
		}
	}
	return s
}

func (p *Parser) separators() []string {
	return append([]string{p.opts.Separator}, p.opts.LegacySeparators...)
}

// Package-level default parser
var defaultParser *Parser

func init() {
	var err error
	defaultParser, err = NewParser(DefaultOptions())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize default parser: %v", err))
	}
}

// Default returns the parser built from DefaultOptions
func Default() *Parser {
	return defaultParser
}

// Parse runs the default parser
func Parse(content string, hasTableHint bool) Result {
	return defaultParser.Parse(content, hasTableHint)
}

// ShouldAttemptExtraction runs the default detector
func ShouldAttemptExtraction(content string, explicitFlag bool) bool {
	return defaultParser.ShouldAttemptExtraction(content, explicitFlag)
}

// LocateEmbeddedBlob runs the default locator
func LocateEmbeddedBlob(content string) (*Blob, bool) {
	return defaultParser.LocateEmbeddedBlob(content)
}
