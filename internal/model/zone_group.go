package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ZoneGroupRecord is a zone group as stored in zonegroup_data.json
type ZoneGroupRecord struct {
	Name   string     `json:"name"`
	Zones  ZoneIDList `json:"zones"`
	Active bool       `json:"active"`
}

// ZoneIDList is the ordered zone id list of a group. Older files store the ids
// as JSON integers; they are read as their decimal strings and written back as
// strings.
type ZoneIDList []string

// UnmarshalJSON accepts string and integer ids
func (l *ZoneIDList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make(ZoneIDList, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			ids = append(ids, s)
			continue
		}
		var n int64
		if err := json.Unmarshal(r, &n); err != nil {
			return fmt.Errorf("zone id %s is neither a string nor an integer", r)
		}
		ids = append(ids, strconv.FormatInt(n, 10))
	}
	*l = ids
	return nil
}

// ZoneGroupDocument is the content of zonegroup_data.json.
type ZoneGroupDocument struct {
	ZoneGroups map[string]ZoneGroupRecord `json:"zone_groups"`
}

// NewZoneGroupDocument returns an empty zone group document
func NewZoneGroupDocument() *ZoneGroupDocument {
	return &ZoneGroupDocument{ZoneGroups: map[string]ZoneGroupRecord{}}
}

// Validate checks the document against the zonegroup_data.json schema
func (d *ZoneGroupDocument) Validate() error {
	if d.ZoneGroups == nil {
		return fmt.Errorf("%w: zonegroup_data: missing zone_groups", ErrInvalidDocument)
	}
	names := make(map[string]string, len(d.ZoneGroups))
	for id, g := range d.ZoneGroups {
		if err := validateID(id); err != nil {
			return fmt.Errorf("%w: zonegroup_data: %v", ErrInvalidDocument, err)
		}
		if g.Name == "" {
			return fmt.Errorf("%w: zonegroup_data[%s]: empty name", ErrInvalidDocument, id)
		}
		if other, ok := names[g.Name]; ok {
			return fmt.Errorf("%w: zone group name %q used by ids %s and %s", ErrInvalidDocument, g.Name, other, id)
		}
		names[g.Name] = id
		if g.Zones == nil {
			return fmt.Errorf("%w: zonegroup_data[%s]: missing zones", ErrInvalidDocument, id)
		}
		for _, zoneID := range g.Zones {
			if err := validateID(zoneID); err != nil {
				return fmt.Errorf("%w: zonegroup_data[%s].zones: %v", ErrInvalidDocument, id, err)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the document
func (d *ZoneGroupDocument) Clone() *ZoneGroupDocument {
	c := NewZoneGroupDocument()
	for id, g := range d.ZoneGroups {
		zones := make([]string, len(g.Zones))
		copy(zones, g.Zones)
		c.ZoneGroups[id] = ZoneGroupRecord{Name: g.Name, Zones: zones, Active: g.Active}
	}
	return c
}
