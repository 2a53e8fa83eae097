package zoning

import (
	"fmt"
	"strings"

	"cdc_zoning/internal/model"
)

// Alias is an alias record together with its id and partition
type Alias struct {
	ID string `json:"id"`
	model.AliasRecord
	Member bool `json:"member"`
}

// AliasStore owns the free and member alias partitions of alias_data.json
type AliasStore struct {
	doc *model.AliasDocument
}

// Create inserts a new free alias and returns its id
func (s *AliasStore) Create(name, typ, ip, nqn string) (string, error) {
	if err := validateEntityName("alias", name); err != nil {
		return "", err
	}
	if _, ok := s.FindByName(name); ok {
		return "", fmt.Errorf("%w: alias %q", ErrDuplicateName, name)
	}
	id := s.NextID()
	s.doc.FreeAliases[id] = model.AliasRecord{Name: name, Type: typ, IP: ip, NQN: nqn}
	return id, nil
}

// NextID returns the id the next created alias will receive
func (s *AliasStore) NextID() string {
	return nextID(keySet(s.doc.MemberAliases), keySet(s.doc.FreeAliases))
}

// Delete removes the named alias from whichever partition holds it.
// Callers must make sure no zone references it.
func (s *AliasStore) Delete(name string) (Alias, error) {
	a, ok := s.FindByName(name)
	if !ok {
		return Alias{}, fmt.Errorf("%w: alias %q", ErrNotFound, name)
	}
	if a.Member {
		delete(s.doc.MemberAliases, a.ID)
	} else {
		delete(s.doc.FreeAliases, a.ID)
	}
	return a, nil
}

// Attach moves a free alias to member_aliases
func (s *AliasStore) Attach(id string) error {
	rec, ok := s.doc.FreeAliases[id]
	if !ok {
		return fmt.Errorf("%w: free alias id %s", ErrNotFound, id)
	}
	delete(s.doc.FreeAliases, id)
	s.doc.MemberAliases[id] = rec
	return nil
}

// Detach moves a member alias back to free_aliases
func (s *AliasStore) Detach(id string) error {
	rec, ok := s.doc.MemberAliases[id]
	if !ok {
		return fmt.Errorf("%w: member alias id %s", ErrNotFound, id)
	}
	delete(s.doc.MemberAliases, id)
	s.doc.FreeAliases[id] = rec
	return nil
}

// Update replaces the attributes of an alias, keeping its name and partition
func (s *AliasStore) Update(id, typ, ip, nqn string) error {
	if rec, ok := s.doc.MemberAliases[id]; ok {
		rec.Type, rec.IP, rec.NQN = typ, ip, nqn
		s.doc.MemberAliases[id] = rec
		return nil
	}
	if rec, ok := s.doc.FreeAliases[id]; ok {
		rec.Type, rec.IP, rec.NQN = typ, ip, nqn
		s.doc.FreeAliases[id] = rec
		return nil
	}
	return fmt.Errorf("%w: alias id %s", ErrNotFound, id)
}

// Get returns the alias with the given id
func (s *AliasStore) Get(id string) (Alias, bool) {
	if rec, ok := s.doc.MemberAliases[id]; ok {
		return Alias{ID: id, AliasRecord: rec, Member: true}, true
	}
	if rec, ok := s.doc.FreeAliases[id]; ok {
		return Alias{ID: id, AliasRecord: rec}, true
	}
	return Alias{}, false
}

// FindByName looks an alias up by exact name in both partitions
func (s *AliasStore) FindByName(name string) (Alias, bool) {
	for id, rec := range s.doc.MemberAliases {
		if rec.Name == name {
			return Alias{ID: id, AliasRecord: rec, Member: true}, true
		}
	}
	for id, rec := range s.doc.FreeAliases {
		if rec.Name == name {
			return Alias{ID: id, AliasRecord: rec}, true
		}
	}
	return Alias{}, false
}

// IsMember reports whether the id is in member_aliases
func (s *AliasStore) IsMember(id string) bool {
	_, ok := s.doc.MemberAliases[id]
	return ok
}

// List returns all aliases ordered by id
func (s *AliasStore) List() []Alias {
	out := make([]Alias, 0, len(s.doc.MemberAliases)+len(s.doc.FreeAliases))
	for _, id := range sortedIDs(s.doc.MemberAliases) {
		out = append(out, Alias{ID: id, AliasRecord: s.doc.MemberAliases[id], Member: true})
	}
	for _, id := range sortedIDs(s.doc.FreeAliases) {
		out = append(out, Alias{ID: id, AliasRecord: s.doc.FreeAliases[id]})
	}
	return out
}

func validateEntityName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is empty", ErrInvalidName, kind)
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("%w: %s name %q has leading or trailing spaces", ErrInvalidName, kind, name)
	}
	return nil
}
