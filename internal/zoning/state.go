package zoning

import (
	"fmt"
	"sort"
	"strconv"

	"cdc_zoning/internal/model"
)

// State is the in-memory image of the persisted documents. The coordinator
// loads it, mutates it and writes it back in one cycle.
type State struct {
	Aliases *model.AliasDocument
	Zones   *model.ZoneDocument
	Groups  *model.ZoneGroupDocument
	Nodes   *model.NodeInventory
}

// NewState returns a state with empty documents
func NewState() *State {
	return &State{
		Aliases: model.NewAliasDocument(),
		Zones:   model.NewZoneDocument(),
		Groups:  model.NewZoneGroupDocument(),
		Nodes:   model.NewNodeInventory(),
	}
}

// Clone returns a deep copy of the state
func (s *State) Clone() *State {
	return &State{
		Aliases: s.Aliases.Clone(),
		Zones:   s.Zones.Clone(),
		Groups:  s.Groups.Clone(),
		Nodes:   s.Nodes.Clone(),
	}
}

// Validate checks every document and the references between them. A zone
// group may only list existing zones and a zone may be listed once over all
// groups. An alias id may be held by one zone at most. Zones referencing
// unknown alias ids are accepted; those are orphans and get reconciled.
func (s *State) Validate() error {
	if err := s.Aliases.Validate(); err != nil {
		return err
	}
	if err := s.Zones.Validate(); err != nil {
		return err
	}
	if err := s.Groups.Validate(); err != nil {
		return err
	}

	zones := s.ZoneStore()
	holder := make(map[string]string)
	for _, z := range zones.List() {
		for aliasID := range z.Aliases {
			if other, ok := holder[aliasID]; ok {
				return fmt.Errorf("%w: alias id %s held by zone ids %s and %s", ErrInvalidDocument, aliasID, other, z.ID)
			}
			holder[aliasID] = z.ID
		}
	}

	listedBy := make(map[string]string)
	for _, g := range s.GroupStore().List() {
		for _, zoneID := range g.Zones {
			if _, ok := zones.Get(zoneID); !ok {
				return fmt.Errorf("%w: zone group %q lists unknown zone id %s", ErrInvalidDocument, g.Name, zoneID)
			}
			if other, ok := listedBy[zoneID]; ok {
				return fmt.Errorf("%w: zone id %s listed by zone group ids %s and %s", ErrInvalidDocument, zoneID, other, g.ID)
			}
			listedBy[zoneID] = g.ID
		}
	}
	return nil
}

// AliasStore returns the alias store view of the state
func (s *State) AliasStore() *AliasStore { return &AliasStore{doc: s.Aliases} }

// ZoneStore returns the zone store view of the state
func (s *State) ZoneStore() *ZoneStore { return &ZoneStore{doc: s.Zones} }

// GroupStore returns the zone group store view of the state
func (s *State) GroupStore() *GroupStore { return &GroupStore{doc: s.Groups} }

// nextID returns max(id)+1 over every key set, "1" when all are empty
func nextID(sets ...map[string]struct{}) string {
	max := 0
	for _, set := range sets {
		for id := range set {
			if n, err := strconv.Atoi(id); err == nil && n > max {
				max = n
			}
		}
	}
	return strconv.Itoa(max + 1)
}

func keySet[V any](m map[string]V) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

// sortedIDs returns the keys of m in numeric order
func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
	return ids
}

func idLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return na < nb
}

func atoi(id string) int {
	n, _ := strconv.Atoi(id)
	return n
}
