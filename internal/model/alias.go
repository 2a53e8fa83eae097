package model

import (
	"fmt"
	"strconv"
)

// Device types registered with the CDC. Type is free text on disk; these are
// the values the console itself produces.
const (
	DevTypeHost       = "Host"
	DevTypeHostPort   = "Host-Port"
	DevTypeController = "Controller"
	DevTypeSubsystem  = "Subsystem"
)

// AliasRecord is the attribute record of an alias. The same shape is stored in
// alias_data.json and, as a snapshot, inside every zone that references it.
type AliasRecord struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	IP   string `json:"ip" yaml:"ip"`
	NQN  string `json:"nqn" yaml:"nqn"`
}

// AliasDocument is the content of alias_data.json.
type AliasDocument struct {
	MemberAliases map[string]AliasRecord `json:"member_aliases"`
	FreeAliases   map[string]AliasRecord `json:"free_aliases"`
}

// NewAliasDocument returns an empty alias document
func NewAliasDocument() *AliasDocument {
	return &AliasDocument{
		MemberAliases: map[string]AliasRecord{},
		FreeAliases:   map[string]AliasRecord{},
	}
}

// Validate checks the document against the alias_data.json schema
func (d *AliasDocument) Validate() error {
	if d.MemberAliases == nil {
		return fmt.Errorf("%w: alias_data: missing member_aliases", ErrInvalidDocument)
	}
	if d.FreeAliases == nil {
		return fmt.Errorf("%w: alias_data: missing free_aliases", ErrInvalidDocument)
	}
	seen := make(map[string]string)
	names := make(map[string]string)
	for partition, aliases := range map[string]map[string]AliasRecord{
		"member_aliases": d.MemberAliases,
		"free_aliases":   d.FreeAliases,
	} {
		for id, a := range aliases {
			if err := validateID(id); err != nil {
				return fmt.Errorf("%w: alias_data.%s: %v", ErrInvalidDocument, partition, err)
			}
			if a.Name == "" {
				return fmt.Errorf("%w: alias_data.%s[%s]: empty name", ErrInvalidDocument, partition, id)
			}
			if other, ok := seen[id]; ok {
				return fmt.Errorf("%w: alias id %s present in both %s and %s", ErrInvalidDocument, id, other, partition)
			}
			seen[id] = partition
			if other, ok := names[a.Name]; ok {
				return fmt.Errorf("%w: alias name %q used by ids %s and %s", ErrInvalidDocument, a.Name, other, id)
			}
			names[a.Name] = id
		}
	}
	return nil
}

// Clone returns a deep copy of the document
func (d *AliasDocument) Clone() *AliasDocument {
	c := NewAliasDocument()
	for id, a := range d.MemberAliases {
		c.MemberAliases[id] = a
	}
	for id, a := range d.FreeAliases {
		c.FreeAliases[id] = a
	}
	return c
}

func validateID(id string) error {
	n, err := strconv.Atoi(id)
	if err != nil || n < 0 {
		return fmt.Errorf("id %q is not a non-negative integer", id)
	}
	return nil
}
