package chat

import "partsdesk/types"

// PartGroup collects the location variants of one manufacturer part.
// A part may be stocked at the primary location (1), the secondary location (4), or both.
type PartGroup struct {
	Key        string           `json:"key"`
	MfrID      string           `json:"mfrId"`
	PartNumber string           `json:"partNumber"`
	Primary    types.PartRecord `json:"location1,omitempty"`
	Secondary  types.PartRecord `json:"location4,omitempty"`
	Active     int              `json:"active"`
	Details    PartDetails      `json:"details"`
}

// PartDetails holds the location-independent fields shown under a part row.
// Each field takes the first non-empty value among the group's records.
type PartDetails struct {
	Description  string                 `json:"description,omitempty"`
	Superseded   string                 `json:"superseded,omitempty"`
	GeneralInfo  map[string]interface{} `json:"generalInfo,omitempty"`
	RelatedParts []types.RelatedPart    `json:"relatedParts,omitempty"`
	Images       []string               `json:"images,omitempty"`
}

func (d *PartDetails) fill(rec types.PartRecord) {
	if d.Description == "" {
		d.Description = rec.Description()
	}
	if d.Superseded == "" {
		d.Superseded = rec.Superseded()
	}
	if d.GeneralInfo == nil {
		d.GeneralInfo = rec.GeneralInfo()
	}
	if len(d.RelatedParts) == 0 {
		d.RelatedParts = rec.RelatedParts()
	}
	if len(d.Images) == 0 {
		d.Images = rec.ImageURLs()
	}
}

// GroupKey is the literal concatenation of manufacturer id and part number
func GroupKey(rec types.PartRecord) string {
	return rec.MfrID() + rec.PartNumber()
}

// GroupParts groups records by manufacturer id and part number in one pass,
// preserving first-seen key order. The first record seen for a location wins;
// records with an unrecognized location count as the primary location.
func GroupParts(records []types.PartRecord) []*PartGroup {
	if len(records) == 0 {
		return nil
	}

	index := make(map[string]*PartGroup, len(records))
	groups := make([]*PartGroup, 0, len(records))

	for _, rec := range records {
		key := GroupKey(rec)
		g, ok := index[key]
		if !ok {
			g = &PartGroup{
				Key:        key,
				MfrID:      rec.MfrID(),
				PartNumber: rec.PartNumber(),
			}
			index[key] = g
			groups = append(groups, g)
		}
		g.Details.fill(rec)

		switch rec.Location() {
		case types.LocationSecondary:
			if g.Secondary == nil {
				g.Secondary = rec
			}
		default:
			if g.Primary == nil {
				g.Primary = rec
			}
		}
	}

	for _, g := range groups {
		if g.Primary != nil {
			g.Active = types.LocationPrimary
		} else {
			g.Active = types.LocationSecondary
		}
	}

	return groups
}

// Variant returns the record stored for location, or nil
func (g *PartGroup) Variant(location int) types.PartRecord {
	if location == types.LocationSecondary {
		return g.Secondary
	}
	return g.Primary
}

// ActiveRecord returns the record for the currently selected location
func (g *PartGroup) ActiveRecord() types.PartRecord {
	return g.Variant(g.Active)
}

// HasBothLocations reports whether the location toggle applies to this group
func (g *PartGroup) HasBothLocations() bool {
	return g.Primary != nil && g.Secondary != nil
}

// Locations lists the locations present, primary first
func (g *PartGroup) Locations() []int {
	var locs []int
	if g.Primary != nil {
		locs = append(locs, types.LocationPrimary)
	}
	if g.Secondary != nil {
		locs = append(locs, types.LocationSecondary)
	}
	return locs
}

// Toggle switches the active location. It is a no-op unless both locations are present.
func (g *PartGroup) Toggle() bool {
	if !g.HasBothLocations() {
		return false
	}
	if g.Active == types.LocationPrimary {
		g.Active = types.LocationSecondary
	} else {
		g.Active = types.LocationPrimary
	}
	return true
}
