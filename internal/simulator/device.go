// Package simulator is an in-memory stand-in for the CDC device API. It keeps
// only names, which is all the device side of the zoning console needs.
package simulator

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/facette/natsort"

	"cdc_zoning/internal/model"
)

var (
	// ErrExists is returned when creating a name the device already has
	ErrExists = errors.New("already exists")
	// ErrMissing is returned when deleting a name the device does not have
	ErrMissing = errors.New("not found")
	// ErrBadName is returned for zone and zone group names the device refuses
	ErrBadName = errors.New("invalid name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Resource kinds known to the device
const (
	KindZone      = "zone"
	KindZoneGroup = "zgrp"
	KindAlias     = "alias"
)

// Device holds the simulated device state
type Device struct {
	mu      sync.RWMutex
	zones   map[string]struct{}
	groups  map[string]struct{}
	aliases map[string]model.AliasRecord
	nodes   []model.RegisteredNode
}

// NewDevice returns an empty device that reports nodes as its registered inventory
func NewDevice(nodes []model.RegisteredNode) *Device {
	return &Device{
		zones:   make(map[string]struct{}),
		groups:  make(map[string]struct{}),
		aliases: make(map[string]model.AliasRecord),
		nodes:   nodes,
	}
}

// Create adds a zone or zone group
func (d *Device) Create(kind, name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %s name %q", ErrBadName, kind, name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	set := d.set(kind)
	if _, ok := set[name]; ok {
		return fmt.Errorf("%w: %s %q", ErrExists, kind, name)
	}
	set[name] = struct{}{}
	return nil
}

// Delete removes a zone or zone group
func (d *Device) Delete(kind, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	set := d.set(kind)
	if _, ok := set[name]; !ok {
		return fmt.Errorf("%w: %s %q", ErrMissing, kind, name)
	}
	delete(set, name)
	return nil
}

func (d *Device) set(kind string) map[string]struct{} {
	if kind == KindZoneGroup {
		return d.groups
	}
	return d.zones
}

// CreateAlias registers an alias. Type defaults to Host-Port.
func (d *Device) CreateAlias(a model.AliasRecord) error {
	if a.Name == "" {
		return fmt.Errorf("%w: empty alias name", ErrBadName)
	}
	if a.Type == "" {
		a.Type = model.DevTypeHostPort
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.aliases[a.Name]; ok {
		return fmt.Errorf("%w: alias %q", ErrExists, a.Name)
	}
	d.aliases[a.Name] = a
	return nil
}

// DeleteAlias removes an alias
func (d *Device) DeleteAlias(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.aliases[name]; !ok {
		return fmt.Errorf("%w: alias %q", ErrMissing, name)
	}
	delete(d.aliases, name)
	return nil
}

// Names returns the zone or zone group names in natural order
func (d *Device) Names(kind string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	set := d.set(kind)
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	natsort.Sort(out)
	return out
}

// Aliases returns the aliases ordered by name
func (d *Device) Aliases() []model.AliasRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.AliasRecord, 0, len(d.aliases))
	for _, a := range d.aliases {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return natsort.Compare(out[i].Name, out[j].Name) })
	return out
}

// Nodes returns the registered node inventory
func (d *Device) Nodes() []model.RegisteredNode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return (&model.NodeInventory{Nodes: d.nodes}).Clone().Nodes
}
