package model

import (
	"errors"
	"fmt"
)

// ErrInvalidDocument is returned when a persisted document does not conform to its schema
var ErrInvalidDocument = errors.New("invalid document")

// ZoneRecord is a zone as stored in zones_data.json. Aliases holds a snapshot of
// every member alias keyed by alias id.
type ZoneRecord struct {
	Name    string                 `json:"name"`
	Aliases map[string]AliasRecord `json:"aliases"`
}

// ZoneDocument is the content of zones_data.json.
type ZoneDocument struct {
	ActiveZones   map[string]ZoneRecord `json:"active_zones"`
	InactiveZones map[string]ZoneRecord `json:"inactive_zones"`
}

// NewZoneDocument returns an empty zone document
func NewZoneDocument() *ZoneDocument {
	return &ZoneDocument{
		ActiveZones:   map[string]ZoneRecord{},
		InactiveZones: map[string]ZoneRecord{},
	}
}

// Validate checks the document against the zones_data.json schema
func (d *ZoneDocument) Validate() error {
	if d.ActiveZones == nil {
		return fmt.Errorf("%w: zones_data: missing active_zones", ErrInvalidDocument)
	}
	if d.InactiveZones == nil {
		return fmt.Errorf("%w: zones_data: missing inactive_zones", ErrInvalidDocument)
	}
	for id := range d.ActiveZones {
		if _, ok := d.InactiveZones[id]; ok {
			return fmt.Errorf("%w: zone id %s present in both partitions", ErrInvalidDocument, id)
		}
	}
	names := make(map[string]string)
	for partition, zones := range map[string]map[string]ZoneRecord{
		"active_zones":   d.ActiveZones,
		"inactive_zones": d.InactiveZones,
	} {
		for id, z := range zones {
			if err := validateID(id); err != nil {
				return fmt.Errorf("%w: zones_data.%s: %v", ErrInvalidDocument, partition, err)
			}
			if z.Name == "" {
				return fmt.Errorf("%w: zones_data.%s[%s]: empty name", ErrInvalidDocument, partition, id)
			}
			if other, ok := names[z.Name]; ok {
				return fmt.Errorf("%w: zone name %q used by ids %s and %s", ErrInvalidDocument, z.Name, other, id)
			}
			names[z.Name] = id
			if z.Aliases == nil {
				return fmt.Errorf("%w: zones_data.%s[%s]: missing aliases", ErrInvalidDocument, partition, id)
			}
			for aliasID, a := range z.Aliases {
				if err := validateID(aliasID); err != nil {
					return fmt.Errorf("%w: zones_data.%s[%s].aliases: %v", ErrInvalidDocument, partition, id, err)
				}
				if a.Name == "" {
					return fmt.Errorf("%w: zones_data.%s[%s].aliases[%s]: empty name", ErrInvalidDocument, partition, id, aliasID)
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the document
func (d *ZoneDocument) Clone() *ZoneDocument {
	c := NewZoneDocument()
	for id, z := range d.ActiveZones {
		c.ActiveZones[id] = z.clone()
	}
	for id, z := range d.InactiveZones {
		c.InactiveZones[id] = z.clone()
	}
	return c
}

func (z ZoneRecord) clone() ZoneRecord {
	aliases := make(map[string]AliasRecord, len(z.Aliases))
	for id, a := range z.Aliases {
		aliases[id] = a
	}
	return ZoneRecord{Name: z.Name, Aliases: aliases}
}
