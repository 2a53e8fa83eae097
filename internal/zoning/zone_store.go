package zoning

import (
	"fmt"

	"cdc_zoning/internal/model"
)

// Zone is a zone record together with its id and partition
type Zone struct {
	ID string
	model.ZoneRecord
	Active bool
}

// ZoneStore owns the active and inactive zone partitions of zones_data.json
type ZoneStore struct {
	doc *model.ZoneDocument
}

// Create inserts a new inactive zone with an empty alias map
func (s *ZoneStore) Create(name string) (string, error) {
	if err := validateEntityName("zone", name); err != nil {
		return "", err
	}
	if _, ok := s.FindByName(name); ok {
		return "", fmt.Errorf("%w: zone %q", ErrDuplicateName, name)
	}
	id := nextID(keySet(s.doc.ActiveZones), keySet(s.doc.InactiveZones))
	s.doc.InactiveZones[id] = model.ZoneRecord{Name: name, Aliases: map[string]model.AliasRecord{}}
	return id, nil
}

// Delete removes the named zone. It refuses while the zone still holds aliases.
func (s *ZoneStore) Delete(name string) (Zone, error) {
	z, ok := s.FindByName(name)
	if !ok {
		return Zone{}, fmt.Errorf("%w: zone %q", ErrNotFound, name)
	}
	if len(z.Aliases) > 0 {
		return Zone{}, fmt.Errorf("%w: zone %q has %d aliases", ErrNotEmpty, name, len(z.Aliases))
	}
	delete(s.partition(z.Active), z.ID)
	return z, nil
}

// Activate moves a zone to active_zones. Activating an active zone is a no-op.
func (s *ZoneStore) Activate(id string) error {
	if _, ok := s.doc.ActiveZones[id]; ok {
		return nil
	}
	rec, ok := s.doc.InactiveZones[id]
	if !ok {
		return fmt.Errorf("%w: zone id %s", ErrNotFound, id)
	}
	delete(s.doc.InactiveZones, id)
	s.doc.ActiveZones[id] = rec
	return nil
}

// Deactivate moves a zone to inactive_zones. Deactivating an inactive zone is a no-op.
func (s *ZoneStore) Deactivate(id string) error {
	if _, ok := s.doc.InactiveZones[id]; ok {
		return nil
	}
	rec, ok := s.doc.ActiveZones[id]
	if !ok {
		return fmt.Errorf("%w: zone id %s", ErrNotFound, id)
	}
	delete(s.doc.ActiveZones, id)
	s.doc.InactiveZones[id] = rec
	return nil
}

// AddAlias stores a copy of the alias attributes in the zone, overwriting any
// previous snapshot. An alias belongs to at most one zone; AddAlias fails with
// ErrAliasInUse while another zone holds it.
func (s *ZoneStore) AddAlias(zoneID, aliasID string, snapshot model.AliasRecord) error {
	z, ok := s.Get(zoneID)
	if !ok {
		return fmt.Errorf("%w: zone id %s", ErrNotFound, zoneID)
	}
	for _, other := range s.ZonesReferencing(aliasID) {
		if other != zoneID {
			return fmt.Errorf("%w: alias id %s is in zone id %s", ErrAliasInUse, aliasID, other)
		}
	}
	if z.Aliases == nil {
		z.Aliases = map[string]model.AliasRecord{}
	}
	z.Aliases[aliasID] = snapshot
	s.partition(z.Active)[zoneID] = z.ZoneRecord
	return nil
}

// RemoveAlias drops the alias from the zone. It reports whether an entry was removed;
// removing an absent alias is not an error.
func (s *ZoneStore) RemoveAlias(zoneID, aliasID string) (bool, error) {
	z, ok := s.Get(zoneID)
	if !ok {
		return false, fmt.Errorf("%w: zone id %s", ErrNotFound, zoneID)
	}
	if _, ok := z.Aliases[aliasID]; !ok {
		return false, nil
	}
	delete(z.Aliases, aliasID)
	return true, nil
}

// Get returns the zone with the given id. The returned alias map is shared with the store.
func (s *ZoneStore) Get(id string) (Zone, bool) {
	if rec, ok := s.doc.ActiveZones[id]; ok {
		return Zone{ID: id, ZoneRecord: rec, Active: true}, true
	}
	if rec, ok := s.doc.InactiveZones[id]; ok {
		return Zone{ID: id, ZoneRecord: rec}, true
	}
	return Zone{}, false
}

// FindByName looks a zone up by exact name in both partitions
func (s *ZoneStore) FindByName(name string) (Zone, bool) {
	for id, rec := range s.doc.ActiveZones {
		if rec.Name == name {
			return Zone{ID: id, ZoneRecord: rec, Active: true}, true
		}
	}
	for id, rec := range s.doc.InactiveZones {
		if rec.Name == name {
			return Zone{ID: id, ZoneRecord: rec}, true
		}
	}
	return Zone{}, false
}

// ZonesReferencing returns the ids of every zone whose alias map holds aliasID
func (s *ZoneStore) ZonesReferencing(aliasID string) []string {
	var ids []string
	for _, z := range s.List() {
		if _, ok := z.Aliases[aliasID]; ok {
			ids = append(ids, z.ID)
		}
	}
	return ids
}

// List returns all zones ordered by id
func (s *ZoneStore) List() []Zone {
	out := make([]Zone, 0, len(s.doc.ActiveZones)+len(s.doc.InactiveZones))
	all := make(map[string]bool, cap(out))
	for id := range s.doc.ActiveZones {
		all[id] = true
	}
	for id := range s.doc.InactiveZones {
		all[id] = false
	}
	for _, id := range sortedIDs(all) {
		z, _ := s.Get(id)
		out = append(out, z)
	}
	return out
}

func (s *ZoneStore) partition(active bool) map[string]model.ZoneRecord {
	if active {
		return s.doc.ActiveZones
	}
	return s.doc.InactiveZones
}
