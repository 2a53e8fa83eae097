package zoning

import (
	"context"
	"fmt"
	"sort"

	"github.com/facette/natsort"

	"cdc_zoning/internal/model"
)

// ZoneView is a zone as shown to the console. Aliases carry the live alias
// attributes; Orphans lists the referenced ids that are not member aliases.
type ZoneView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Active  bool     `json:"active"`
	Group   string   `json:"group,omitempty"`
	Aliases []Alias  `json:"aliases"`
	Orphans []string `json:"orphans,omitempty"`
}

// ZoneRef names a zone
type ZoneRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// GroupView is a zone group with its zones resolved
type GroupView struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Active bool      `json:"active"`
	Zones  []ZoneRef `json:"zones"`
}

// ListAliases returns every alias in natural name order
func (c *Coordinator) ListAliases(ctx context.Context) ([]Alias, error) {
	var out []Alias
	err := c.view(ctx, func(st *State) error {
		out = st.AliasStore().List()
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return natsort.Compare(out[i].Name, out[j].Name) })
	return out, err
}

// ListZones returns every zone in natural name order. Orphan references are
// dropped from the views and reported; see PruneOrphans.
func (c *Coordinator) ListZones(ctx context.Context) ([]ZoneView, error) {
	var (
		out     []ZoneView
		orphans []Orphan
	)
	err := c.view(ctx, func(st *State) error {
		orphans = FindOrphans(st)
		for _, z := range st.ZoneStore().List() {
			out = append(out, zoneView(st, z))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := c.afterOrphanScan(ctx, orphans); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return natsort.Compare(out[i].Name, out[j].Name) })
	return out, nil
}

// Zone returns one zone by name
func (c *Coordinator) Zone(ctx context.Context, name string) (ZoneView, error) {
	var (
		out     ZoneView
		orphans []Orphan
	)
	err := c.view(ctx, func(st *State) error {
		z, ok := st.ZoneStore().FindByName(name)
		if !ok {
			return fmt.Errorf("%w: zone %q", ErrNotFound, name)
		}
		out = zoneView(st, z)
		for _, o := range FindOrphans(st) {
			if o.ZoneID == z.ID {
				orphans = append(orphans, o)
			}
		}
		return nil
	})
	if err != nil {
		return ZoneView{}, err
	}
	if err := c.afterOrphanScan(ctx, orphans); err != nil {
		return ZoneView{}, err
	}
	return out, nil
}

func (c *Coordinator) afterOrphanScan(ctx context.Context, orphans []Orphan) error {
	if len(orphans) == 0 {
		return nil
	}
	reportOrphans(c.log, orphans)
	if !c.eagerOrphanCleanup {
		return nil
	}
	_, err := c.PruneOrphans(ctx)
	return err
}

func zoneView(st *State, z Zone) ZoneView {
	v := ZoneView{ID: z.ID, Name: z.Name, Active: z.Active, Aliases: []Alias{}}
	if g, ok := st.GroupStore().GroupOf(z.ID); ok {
		v.Group = g.Name
	}
	for _, aliasID := range sortedIDs(z.Aliases) {
		rec, ok := st.Aliases.MemberAliases[aliasID]
		if !ok {
			v.Orphans = append(v.Orphans, aliasID)
			continue
		}
		v.Aliases = append(v.Aliases, Alias{ID: aliasID, AliasRecord: rec, Member: true})
	}
	return v
}

// ListGroups returns every zone group in natural name order
func (c *Coordinator) ListGroups(ctx context.Context) ([]GroupView, error) {
	var out []GroupView
	err := c.view(ctx, func(st *State) error {
		zones := st.ZoneStore()
		for _, g := range st.GroupStore().List() {
			v := GroupView{ID: g.ID, Name: g.Name, Active: g.Active, Zones: []ZoneRef{}}
			for _, id := range g.Zones {
				if z, ok := zones.Get(id); ok {
					v.Zones = append(v.Zones, ZoneRef{ID: z.ID, Name: z.Name, Active: z.Active})
				}
			}
			out = append(out, v)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return natsort.Compare(out[i].Name, out[j].Name) })
	return out, err
}

// UngroupedZones returns the zones no group lists. Only these can be added to a group.
func (c *Coordinator) UngroupedZones(ctx context.Context) ([]ZoneRef, error) {
	out := []ZoneRef{}
	err := c.view(ctx, func(st *State) error {
		grouped := st.GroupStore().GroupedZoneIDs()
		for _, z := range st.ZoneStore().List() {
			if _, ok := grouped[z.ID]; !ok {
				out = append(out, ZoneRef{ID: z.ID, Name: z.Name, Active: z.Active})
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return natsort.Compare(out[i].Name, out[j].Name) })
	return out, err
}

// Nodes returns the stored node inventory
func (c *Coordinator) Nodes(ctx context.Context) ([]model.RegisteredNode, error) {
	var out []model.RegisteredNode
	err := c.view(ctx, func(st *State) error {
		out = st.Nodes.Clone().Nodes
		return nil
	})
	return out, err
}

// ReplaceNodes overwrites the stored node inventory without syncing it
func (c *Coordinator) ReplaceNodes(ctx context.Context, nodes []model.RegisteredNode) error {
	_, err := c.mutate(ctx, "replace_nodes", func(st *State) (outcome, error) {
		inv := &model.NodeInventory{Nodes: nodes}
		st.Nodes = inv.Clone()
		return outcome{
			message: fmt.Sprintf("Node inventory replaced with %d nodes", len(nodes)),
		}, nil
	})
	return err
}
