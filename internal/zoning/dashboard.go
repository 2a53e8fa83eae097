package zoning

import (
	"context"

	"cdc_zoning/internal/model"
)

// ZoneDistribution buckets zones by alias count
type ZoneDistribution struct {
	Empty       int `json:"empty"`
	OneMember   int `json:"one_member"`
	TwoMembers  int `json:"two_members"`
	MoreMembers int `json:"more_members"`
}

// Dashboard is the summary shown on the console landing page
type Dashboard struct {
	Zone             int              `json:"Zone"`
	ActiveZones      int              `json:"ActiveZones"`
	InactiveZones    int              `json:"InactiveZones"`
	ZoneGroup        int              `json:"ZoneGroup"`
	Alias            int              `json:"Alias"`
	HostAliases      int              `json:"HostAliases"`
	StorageAliases   int              `json:"StorageAliases"`
	Nodes            int              `json:"Nodes"`
	UniqueIPs        int              `json:"UniqueIPs"`
	ZoneDistribution ZoneDistribution `json:"ZoneDistribution"`
	LastUpdated      string           `json:"last_updated"`
}

// Summarize computes the dashboard from a zone config and the node inventory.
// Zones are counted as active or inactive by the config section they appear in.
func Summarize(cfg *model.ZoneConfig, nodes []model.RegisteredNode) Dashboard {
	d := Dashboard{LastUpdated: cfg.LastUpdated}

	count := func(entries []model.GroupEntry) int {
		n := 0
		for _, g := range entries {
			for _, z := range g.ZoneMembers {
				n++
				d.Alias += z.AliasCount
				switch {
				case z.AliasCount == 0:
					d.ZoneDistribution.Empty++
				case z.AliasCount == 1:
					d.ZoneDistribution.OneMember++
				case z.AliasCount == 2:
					d.ZoneDistribution.TwoMembers++
				default:
					d.ZoneDistribution.MoreMembers++
				}
				for _, a := range z.AliasMembers {
					switch a.Type {
					case model.DevTypeHost, model.DevTypeHostPort:
						d.HostAliases++
					case model.DevTypeController, model.DevTypeSubsystem:
						d.StorageAliases++
					}
				}
			}
		}
		return n
	}
	d.ActiveZones = count(cfg.Active)
	d.InactiveZones = count(cfg.Inactive)
	d.Zone = d.ActiveZones + d.InactiveZones
	d.ZoneGroup = len(cfg.Active)

	ips := make(map[string]struct{})
	for _, n := range nodes {
		if n.IPAddress != "" {
			ips[n.IPAddress] = struct{}{}
		}
	}
	d.Nodes = len(nodes)
	d.UniqueIPs = len(ips)
	return d
}

// Dashboard summarises the current zone config and node inventory
func (c *Coordinator) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		cfg   *model.ZoneConfig
		nodes []model.RegisteredNode
	)
	err := c.view(ctx, func(st *State) error {
		cfg = Project(st, c.now())
		nodes = st.Nodes.Nodes
		return nil
	})
	if err != nil {
		return Dashboard{}, err
	}
	return Summarize(cfg, nodes), nil
}
