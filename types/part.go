package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Inventory locations a part quantity can be tracked under
const (
	LocationPrimary   = 1
	LocationSecondary = 4
)

// PartRecord is a semi-structured part description recovered from an assistant message.
// Producers disagree on field casing (camelCase vs SCREAMING_SNAKE), so every accessor
// checks each known spelling.
type PartRecord map[string]interface{}

// RelatedPart is an entry of a record's related_parts list
type RelatedPart struct {
	MfrID       string `json:"MFRID"`
	PartNumber  string `json:"PARTNUMBER"`
	Description string `json:"DESCRIPTION"`
	QuantityLoc string `json:"QUANTITYLOC"`
}

// Field name variants, in lookup order
var (
	mfrIDKeys        = []string{"mfrId", "MFRID"}
	partNumberKeys   = []string{"partNumber", "PARTNUMBER"}
	descriptionKeys  = []string{"description", "DESCRIPTION"}
	locationKeys     = []string{"location", "LOCATION"}
	qtyLocKeys       = []string{"qty_loc", "QTY_LOC", "QUANTITYLOC", "quantityLoc"}
	supersededKeys   = []string{"superseded", "SUPERCEDETO", "SUPERSEDED"}
	generalInfoKeys  = []string{"general_info", "GENERAL_INFO", "generalInfo"}
	relatedPartsKeys = []string{"related_parts", "RELATED_PARTS", "relatedParts"}
	imageKeys        = []string{"image_url", "imageUrl", "IMAGE_URL", "images"}
)

// PartIdentifierKeys lists the fields whose presence marks an object as a part record
var PartIdentifierKeys = []string{"mfrId", "partNumber", "MFRID", "PARTNUMBER"}

// HasPartIdentifier reports whether obj carries any part-identifying field
func HasPartIdentifier(obj map[string]interface{}) bool {
	for _, key := range PartIdentifierKeys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

func (p PartRecord) lookup(keys []string) (interface{}, bool) {
	for _, key := range keys {
		if v, ok := p[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (p PartRecord) stringField(keys []string) string {
	v, ok := p.lookup(keys)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// MfrID returns the manufacturer id
func (p PartRecord) MfrID() string { return p.stringField(mfrIDKeys) }

// PartNumber returns the part number
func (p PartRecord) PartNumber() string { return p.stringField(partNumberKeys) }

// Description returns the part description
func (p PartRecord) Description() string { return p.stringField(descriptionKeys) }

// QtyLoc returns the quantity on hand at the record's location as display text
func (p PartRecord) QtyLoc() string { return p.stringField(qtyLocKeys) }

// Superseded returns the part number this part was superseded by, if any
func (p PartRecord) Superseded() string { return p.stringField(supersededKeys) }

// Location returns the inventory location. Anything other than 1 or 4 is treated as 1.
func (p PartRecord) Location() int {
	v, ok := p.lookup(locationKeys)
	if !ok {
		return LocationPrimary
	}

	var n float64
	switch val := v.(type) {
	case float64:
		n = val
	case int:
		n = float64(val)
	case int64:
		n = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return LocationPrimary
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return LocationPrimary
		}
		n = f
	default:
		return LocationPrimary
	}

	if n == LocationSecondary {
		return LocationSecondary
	}
	return LocationPrimary
}

// GeneralInfo returns the nested general_info object, or nil
func (p PartRecord) GeneralInfo() map[string]interface{} {
	v, ok := p.lookup(generalInfoKeys)
	if !ok {
		return nil
	}
	info, _ := v.(map[string]interface{})
	return info
}

// RelatedParts returns the related part sub-records. Entries that are not objects are skipped.
func (p PartRecord) RelatedParts() []RelatedPart {
	v, ok := p.lookup(relatedPartsKeys)
	if !ok {
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	related := make([]RelatedPart, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		rec := PartRecord(obj)
		related = append(related, RelatedPart{
			MfrID:       rec.MfrID(),
			PartNumber:  rec.PartNumber(),
			Description: rec.Description(),
			QuantityLoc: rec.QtyLoc(),
		})
	}
	return related
}

// ImageURLs returns every image URL attached to the record
func (p PartRecord) ImageURLs() []string {
	var urls []string
	for _, key := range imageKeys {
		switch val := p[key].(type) {
		case string:
			if val != "" {
				urls = append(urls, val)
			}
		case []interface{}:
			for _, item := range val {
				if s, ok := item.(string); ok && s != "" {
					urls = append(urls, s)
				}
			}
		}
	}
	return urls
}

// Stringify renders a decoded scalar for display. Integral floats print without a fraction.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
