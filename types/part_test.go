package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartRecordAccessorsBothCasings(t *testing.T) {
	tests := []struct {
		name string
		rec  PartRecord
	}{
		{
			name: "camel case",
			rec: PartRecord{
				"mfrId": "ECH", "partNumber": "A1", "description": "Chain",
				"qty_loc": float64(3), "superseded": "A2",
			},
		},
		{
			name: "upper case",
			rec: PartRecord{
				"MFRID": "ECH", "PARTNUMBER": "A1", "DESCRIPTION": "Chain",
				"QUANTITYLOC": "3", "SUPERCEDETO": "A2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "ECH", tt.rec.MfrID())
			assert.Equal(t, "A1", tt.rec.PartNumber())
			assert.Equal(t, "Chain", tt.rec.Description())
			assert.Equal(t, "3", tt.rec.QtyLoc())
			assert.Equal(t, "A2", tt.rec.Superseded())
		})
	}
}

func TestPartRecordLocation(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int
	}{
		{"missing", nil, LocationPrimary},
		{"float one", float64(1), LocationPrimary},
		{"float four", float64(4), LocationSecondary},
		{"int four", 4, LocationSecondary},
		{"string four", " 4 ", LocationSecondary},
		{"json number", json.Number("4"), LocationSecondary},
		{"other number", float64(2), LocationPrimary},
		{"garbage", "north", LocationPrimary},
		{"wrong type", []interface{}{4}, LocationPrimary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := PartRecord{"mfrId": "ECH"}
			if tt.value != nil {
				rec["location"] = tt.value
			}
			assert.Equal(t, tt.want, rec.Location())
		})
	}

	assert.Equal(t, LocationSecondary, PartRecord{"LOCATION": "4"}.Location())
}

func TestPartRecordGeneralInfo(t *testing.T) {
	info := map[string]interface{}{"weight": "1kg"}

	assert.Equal(t, info, PartRecord{"general_info": info}.GeneralInfo())
	assert.Equal(t, info, PartRecord{"GENERAL_INFO": info}.GeneralInfo())
	assert.Nil(t, PartRecord{"general_info": "n/a"}.GeneralInfo())
	assert.Nil(t, PartRecord{}.GeneralInfo())
}

func TestPartRecordRelatedParts(t *testing.T) {
	rec := PartRecord{"RELATED_PARTS": []interface{}{
		map[string]interface{}{"MFRID": "ECH", "PARTNUMBER": "B7", "DESCRIPTION": "Bar", "QUANTITYLOC": float64(2)},
		"not a record",
		nil,
		map[string]interface{}{"mfrId": "OREG", "partNumber": "C9"},
	}}

	assert.Equal(t, []RelatedPart{
		{MfrID: "ECH", PartNumber: "B7", Description: "Bar", QuantityLoc: "2"},
		{MfrID: "OREG", PartNumber: "C9"},
	}, rec.RelatedParts())

	assert.Nil(t, PartRecord{"related_parts": "none"}.RelatedParts())
	assert.Nil(t, PartRecord{"related_parts": nil}.RelatedParts())
	assert.Empty(t, PartRecord{"related_parts": []interface{}{1, "x"}}.RelatedParts())
}

func TestPartRecordImageURLs(t *testing.T) {
	assert.Equal(t, []string{"https://img.example/a.png"}, PartRecord{"image_url": "https://img.example/a.png"}.ImageURLs())
	assert.Equal(t,
		[]string{"https://img.example/a.png", "https://img.example/b.png"},
		PartRecord{"images": []interface{}{"https://img.example/a.png", "", 3, "https://img.example/b.png"}}.ImageURLs(),
	)
	assert.Equal(t,
		[]string{"https://img.example/a.png", "https://img.example/b.png"},
		PartRecord{"imageUrl": "https://img.example/a.png", "IMAGE_URL": "https://img.example/b.png"}.ImageURLs(),
	)
	assert.Nil(t, PartRecord{"image_url": ""}.ImageURLs())
}

func TestHasPartIdentifier(t *testing.T) {
	assert.True(t, HasPartIdentifier(map[string]interface{}{"PARTNUMBER": "A1"}))
	assert.True(t, HasPartIdentifier(map[string]interface{}{"mfrId": nil}))
	assert.False(t, HasPartIdentifier(map[string]interface{}{"description": "x"}))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "3", Stringify(float64(3)))
	assert.Equal(t, "2.5", Stringify(2.5))
	assert.Equal(t, "12", Stringify(json.Number("12")))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "7", Stringify(7))
}
