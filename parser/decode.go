package parser

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/kaptinlin/jsonrepair"
)

// Decoder identifies which decoder recovered a blob
type Decoder int

const (
	DecoderNone Decoder = iota
	DecoderJSON
	DecoderLiteral
	DecoderJSONRepair
)

// String returns the string representation of the Decoder
func (d Decoder) String() string {
	switch d {
	case DecoderJSON:
		return "json"
	case DecoderLiteral:
		return "python_literal"
	case DecoderJSONRepair:
		return "jsonrepair"
	default:
		return "none"
	}
}

var strictJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// decode tries strict JSON on the repaired text, then the literal parser and
// jsonrepair on the raw blob, in that order
func (p *Parser) decode(repaired, raw string) (interface{}, Decoder, error) {
	var value interface{}
	strictErr := strictJSON.UnmarshalFromString(repaired, &value)
	if strictErr == nil {
		return value, DecoderJSON, nil
	}

	if p.opts.LiteralFallback {
		if value, err := ParseLiteral(raw); err == nil {
			return value, DecoderLiteral, nil
		}
	}

	if p.opts.RepairFallback {
		if value, err := repairAndDecode(raw); err == nil {
			return value, DecoderJSONRepair, nil
		}
	}

	return nil, DecoderNone, fmt.Errorf("blob could not be decoded: %w", strictErr)
}

// repairAndDecode runs jsonrepair over raw and strictly decodes its output
func repairAndDecode(raw string) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("jsonrepair panicked: %v", r)
		}
	}()

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to repair JSON: %w", err)
	}

	if err := strictJSON.UnmarshalFromString(repaired, &value); err != nil {
		return nil, fmt.Errorf("failed to parse repaired JSON: %w", err)
	}
	return value, nil
}
