package zoning

import (
	"fmt"
	"regexp"

	"cdc_zoning/internal/model"
)

var groupNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidGroupName reports whether name is usable as a zone group name
func ValidGroupName(name string) bool {
	return groupNamePattern.MatchString(name)
}

// Group is a zone group record together with its id
type Group struct {
	ID string
	model.ZoneGroupRecord
}

// GroupStore owns zonegroup_data.json
type GroupStore struct {
	doc *model.ZoneGroupDocument
}

// Create inserts a new empty, inactive group
func (s *GroupStore) Create(name string) (string, error) {
	if !ValidGroupName(name) {
		return "", fmt.Errorf("%w: group name %q must be alphanumeric with _ or -", ErrInvalidName, name)
	}
	if _, ok := s.FindByName(name); ok {
		return "", fmt.Errorf("%w: zone group %q", ErrDuplicateName, name)
	}
	id := nextID(keySet(s.doc.ZoneGroups))
	s.doc.ZoneGroups[id] = model.ZoneGroupRecord{Name: name, Zones: []string{}, Active: false}
	return id, nil
}

// Delete removes the named group. It refuses while the group still lists zones.
func (s *GroupStore) Delete(name string) (Group, error) {
	g, ok := s.FindByName(name)
	if !ok {
		return Group{}, fmt.Errorf("%w: zone group %q", ErrNotFound, name)
	}
	if len(g.Zones) > 0 {
		return Group{}, fmt.Errorf("%w: zone group %q has %d zones", ErrNotEmpty, name, len(g.Zones))
	}
	delete(s.doc.ZoneGroups, g.ID)
	return g, nil
}

// AddZones appends the zone ids the group does not list yet, in the order given.
// It does not check other groups; see Coordinator.AddZonesToGroup.
func (s *GroupStore) AddZones(groupID string, zoneIDs ...string) ([]string, error) {
	g, ok := s.doc.ZoneGroups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: zone group id %s", ErrNotFound, groupID)
	}
	present := make(map[string]struct{}, len(g.Zones))
	for _, id := range g.Zones {
		present[id] = struct{}{}
	}
	var added []string
	for _, id := range zoneIDs {
		if _, ok := present[id]; ok {
			continue
		}
		present[id] = struct{}{}
		g.Zones = append(g.Zones, id)
		added = append(added, id)
	}
	s.doc.ZoneGroups[groupID] = g
	return added, nil
}

// RemoveZones filters the zone ids out of the group
func (s *GroupStore) RemoveZones(groupID string, zoneIDs ...string) ([]string, error) {
	g, ok := s.doc.ZoneGroups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: zone group id %s", ErrNotFound, groupID)
	}
	drop := make(map[string]struct{}, len(zoneIDs))
	for _, id := range zoneIDs {
		drop[id] = struct{}{}
	}
	kept := make([]string, 0, len(g.Zones))
	var removed []string
	for _, id := range g.Zones {
		if _, ok := drop[id]; ok {
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	g.Zones = kept
	s.doc.ZoneGroups[groupID] = g
	return removed, nil
}

// RemoveZoneEverywhere drops a zone id from every group and returns the ids of the groups it was in
func (s *GroupStore) RemoveZoneEverywhere(zoneID string) []string {
	var touched []string
	for _, id := range sortedIDs(s.doc.ZoneGroups) {
		removed, _ := s.RemoveZones(id, zoneID)
		if len(removed) > 0 {
			touched = append(touched, id)
		}
	}
	return touched
}

// Get returns the group with the given id
func (s *GroupStore) Get(id string) (Group, bool) {
	g, ok := s.doc.ZoneGroups[id]
	if !ok {
		return Group{}, false
	}
	return Group{ID: id, ZoneGroupRecord: g}, true
}

// FindByName looks a group up by exact name
func (s *GroupStore) FindByName(name string) (Group, bool) {
	for id, g := range s.doc.ZoneGroups {
		if g.Name == name {
			return Group{ID: id, ZoneGroupRecord: g}, true
		}
	}
	return Group{}, false
}

// GroupOf returns the first group (by id) that lists zoneID
func (s *GroupStore) GroupOf(zoneID string) (Group, bool) {
	for _, g := range s.List() {
		for _, id := range g.Zones {
			if id == zoneID {
				return g, true
			}
		}
	}
	return Group{}, false
}

// GroupedZoneIDs returns the union of every group's zone list
func (s *GroupStore) GroupedZoneIDs() map[string]struct{} {
	out := make(map[string]struct{})
	for _, g := range s.doc.ZoneGroups {
		for _, id := range g.Zones {
			out[id] = struct{}{}
		}
	}
	return out
}

// List returns all groups ordered by id
func (s *GroupStore) List() []Group {
	out := make([]Group, 0, len(s.doc.ZoneGroups))
	for _, id := range sortedIDs(s.doc.ZoneGroups) {
		out = append(out, Group{ID: id, ZoneGroupRecord: s.doc.ZoneGroups[id]})
	}
	return out
}
