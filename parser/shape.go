package parser

import "partsdesk/types"

// Shape identifies which wrapper a decoded table arrived in
type Shape int

const (
	ShapeNone Shape = iota
	ShapeArray
	ShapePartInfo
	ShapeAnswer
	ShapeTable
	ShapeSingleRecord
)

// String returns the string representation of the Shape
func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapePartInfo:
		return "partInfo"
	case ShapeAnswer:
		return "answer"
	case ShapeTable:
		return "table"
	case ShapeSingleRecord:
		return "single_record"
	default:
		return "none"
	}
}

// wrapper keys checked in precedence order
var tableWrappers = []struct {
	key   string
	shape Shape
}{
	{"partInfo", ShapePartInfo},
	{"answer", ShapeAnswer},
	{"table", ShapeTable},
}

// NormalizeShape flattens a decoded value into part records.
// Returns nil, ShapeNone when the value is not recognizable table data or holds no records.
func NormalizeShape(value interface{}) ([]types.PartRecord, Shape) {
	switch v := value.(type) {
	case []interface{}:
		return recordsOf(v, ShapeArray)

	case map[string]interface{}:
		for _, w := range tableWrappers {
			if items, ok := v[w.key].([]interface{}); ok {
				return recordsOf(items, w.shape)
			}
		}
		if types.HasPartIdentifier(v) {
			return []types.PartRecord{types.PartRecord(v)}, ShapeSingleRecord
		}
	}

	return nil, ShapeNone
}

// recordsOf keeps the object elements of items; non-objects are dropped
func recordsOf(items []interface{}, shape Shape) ([]types.PartRecord, Shape) {
	records := make([]types.PartRecord, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			records = append(records, types.PartRecord(obj))
		}
	}
	if len(records) == 0 {
		return nil, ShapeNone
	}
	return records, shape
}
