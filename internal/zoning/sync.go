package zoning

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"cdc_zoning/internal/model"
)

// ErrNoRegistry is returned by SyncFromRegistry when no registry is configured
var ErrNoRegistry = errors.New("no device registry configured")

// SyncResult summarises a bulk node sync
type SyncResult struct {
	AliasesCreated []string `json:"aliasesCreated"`
	AliasesUpdated []string `json:"aliasesUpdated"`
	ZonesCreated   []string `json:"zonesCreated"`
	Linked         []string `json:"linked"`
	Moved          []string `json:"moved"`
	Unlinked       []string `json:"unlinked"`
	ForcedInactive []string `json:"forcedInactive"`
}

type remoteCreation struct {
	kind string
	name string
}

// SyncNodes applies a registered node inventory to the stores in one commit.
//
// A node with an alias creates the alias if needed and refreshes its
// attributes otherwise. A node that also names a zone creates the zone if
// needed, links the alias to it (moving it out of any other zone) and sets the
// zone active or inactive from the node's flag; the last node naming a zone
// decides. A node without a zone frees its alias, taking it out of every zone
// that held it. Afterwards every
// zone without aliases is made inactive and the batch is stored as the node
// inventory.
//
// The batch is rejected with ErrDuplicateAlias if two nodes name the same
// alias. On any failure nothing is written and the aliases and zones already
// created on the device are deleted again.
func (c *Coordinator) SyncNodes(ctx context.Context, nodes []model.RegisteredNode) (SyncResult, error) {
	if err := checkDuplicateAliases(nodes); err != nil {
		c.record(ctx, "sync_nodes", outcome{}, err)
		return SyncResult{}, err
	}

	var (
		result  SyncResult
		created []remoteCreation
	)
	_, err := c.mutate(ctx, "sync_nodes", func(st *State) (outcome, error) {
		result = SyncResult{}
		created = created[:0]
		if err := c.applyNodes(ctx, st, nodes, &result, &created); err != nil {
			c.compensate(ctx, created)
			return outcome{}, err
		}
		st.Nodes = (&model.NodeInventory{Nodes: nodes}).Clone()
		return outcome{
			message: fmt.Sprintf("Synced %d nodes: %d aliases created, %d zones created, %d links",
				len(nodes), len(result.AliasesCreated), len(result.ZonesCreated), len(result.Linked)),
			details: map[string]interface{}{"result": result},
			created: created,
		}, nil
	})
	if err != nil {
		return SyncResult{}, err
	}
	return result, nil
}

// SyncFromRegistry pulls the node inventory from the registry and syncs it
func (c *Coordinator) SyncFromRegistry(ctx context.Context) (SyncResult, error) {
	if c.registry == nil {
		return SyncResult{}, ErrNoRegistry
	}
	nodes, err := c.registry.Nodes(ctx)
	if err != nil {
		return SyncResult{}, remoteCall(err, "fetch node inventory")
	}
	return c.SyncNodes(ctx, nodes)
}

func checkDuplicateAliases(nodes []model.RegisteredNode) error {
	seen := make(map[string]int, len(nodes))
	for _, n := range nodes {
		if n.Alias == "" {
			continue
		}
		if row, ok := seen[n.Alias]; ok {
			return fmt.Errorf("%w: %q on rows %d and %d", ErrDuplicateAlias, n.Alias, row, n.Row)
		}
		seen[n.Alias] = n.Row
	}
	return nil
}

func (c *Coordinator) applyNodes(ctx context.Context, st *State, nodes []model.RegisteredNode, result *SyncResult, created *[]remoteCreation) error {
	aliases := st.AliasStore()
	zones := st.ZoneStore()

	for _, n := range nodes {
		if n.Alias == "" {
			continue
		}

		a, ok := aliases.FindByName(n.Alias)
		if !ok {
			id, err := aliases.Create(n.Alias, n.DevType, n.IPAddress, n.NQN)
			if err != nil {
				return fmt.Errorf("row %d: %w", n.Row, err)
			}
			a, _ = aliases.Get(id)
			if err := c.remote.CreateAlias(ctx, a.AliasRecord); err != nil {
				return remoteCall(err, "create alias "+n.Alias)
			}
			*created = append(*created, remoteCreation{kind: "alias", name: n.Alias})
			result.AliasesCreated = append(result.AliasesCreated, n.Alias)
		} else if a.Type != n.DevType || a.IP != n.IPAddress || a.NQN != n.NQN {
			if err := aliases.Update(a.ID, n.DevType, n.IPAddress, n.NQN); err != nil {
				return err
			}
			result.AliasesUpdated = append(result.AliasesUpdated, n.Alias)
		}

		if n.Zone == "" {
			for _, other := range zones.ZonesReferencing(a.ID) {
				if _, err := unlinkAlias(st, other, a.ID); err != nil {
					return err
				}
				result.Unlinked = append(result.Unlinked, n.Alias)
			}
			if aliases.IsMember(a.ID) {
				if err := aliases.Detach(a.ID); err != nil {
					return err
				}
			}
			continue
		}

		z, ok := zones.FindByName(n.Zone)
		if !ok {
			id, err := zones.Create(n.Zone)
			if err != nil {
				return fmt.Errorf("row %d: %w", n.Row, err)
			}
			if err := c.remote.CreateZone(ctx, n.Zone); err != nil {
				return remoteCall(err, "create zone "+n.Zone)
			}
			*created = append(*created, remoteCreation{kind: "zone", name: n.Zone})
			result.ZonesCreated = append(result.ZonesCreated, n.Zone)
			z, _ = zones.Get(id)
		}

		for _, other := range zones.ZonesReferencing(a.ID) {
			if other == z.ID {
				continue
			}
			if _, err := unlinkAlias(st, other, a.ID); err != nil {
				return err
			}
			result.Moved = append(result.Moved, n.Alias)
		}
		if err := linkAlias(st, z.ID, a.ID); err != nil {
			return err
		}
		result.Linked = append(result.Linked, n.Alias+"->"+n.Zone)

		var err error
		if n.Activate {
			err = zones.Activate(z.ID)
		} else {
			err = zones.Deactivate(z.ID)
		}
		if err != nil {
			return err
		}
	}

	// refresh snapshots of aliases whose attributes changed above
	refreshSnapshots(st)

	for _, z := range zones.List() {
		if z.Active && len(z.Aliases) == 0 {
			if err := zones.Deactivate(z.ID); err != nil {
				return err
			}
			result.ForcedInactive = append(result.ForcedInactive, z.Name)
		}
	}
	return nil
}

// compensate deletes, newest first, what a failed mutation created on the device
func (c *Coordinator) compensate(ctx context.Context, created []remoteCreation) {
	for i := len(created) - 1; i >= 0; i-- {
		rc := created[i]
		var err error
		switch rc.kind {
		case "alias":
			err = c.remote.DeleteAlias(ctx, rc.name)
		case "zone":
			err = c.remote.DeleteZone(ctx, rc.name)
		case "group":
			err = c.remote.DeleteZoneGroup(ctx, rc.name)
		}
		if err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"kind": rc.kind,
				"name": rc.name,
			}).Error("Failed to roll back device creation")
		}
	}
}
