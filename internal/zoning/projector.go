package zoning

import (
	"time"

	"cdc_zoning/internal/model"
)

// Project derives the zone configuration view from the state. It does not
// modify st.
//
// Every zone group becomes an entry of Active, whatever the flags of its zones.
// Zones no group references are collected into a single Ungrouped entry
// (id 0) of Inactive, which is left out when there are none. Alias attributes
// come from member_aliases at projection time; ids missing from it are skipped.
func Project(st *State, now time.Time) *model.ZoneConfig {
	zones := st.ZoneStore()
	groups := st.GroupStore()

	cfg := &model.ZoneConfig{
		Active:      []model.GroupEntry{},
		Inactive:    []model.GroupEntry{},
		LastUpdated: now.Format(model.ZoneConfigTimeLayout),
	}

	for _, g := range groups.List() {
		entry := model.GroupEntry{
			ZoneGrpID:   atoi(g.ID),
			ZoneGrpName: g.Name,
			ZoneMembers: []model.ZoneEntry{},
		}
		for _, zoneID := range g.Zones {
			z, ok := zones.Get(zoneID)
			if !ok {
				continue
			}
			entry.ZoneMembers = append(entry.ZoneMembers, projectZone(st.Aliases, z))
		}
		entry.ZoneCount = len(entry.ZoneMembers)
		cfg.Active = append(cfg.Active, entry)
	}

	grouped := groups.GroupedZoneIDs()
	ungrouped := model.GroupEntry{
		ZoneGrpID:   0,
		ZoneGrpName: model.UngroupedName,
		ZoneMembers: []model.ZoneEntry{},
	}
	for _, z := range zones.List() {
		if _, ok := grouped[z.ID]; ok {
			continue
		}
		ungrouped.ZoneMembers = append(ungrouped.ZoneMembers, projectZone(st.Aliases, z))
	}
	if len(ungrouped.ZoneMembers) > 0 {
		ungrouped.ZoneCount = len(ungrouped.ZoneMembers)
		cfg.Inactive = append(cfg.Inactive, ungrouped)
	}
	return cfg
}

func projectZone(aliases *model.AliasDocument, z Zone) model.ZoneEntry {
	entry := model.ZoneEntry{
		ZoneID:       atoi(z.ID),
		ZoneName:     z.Name,
		AliasMembers: []model.AliasEntry{},
	}
	for _, aliasID := range sortedIDs(z.Aliases) {
		rec, ok := aliases.MemberAliases[aliasID]
		if !ok {
			continue
		}
		entry.AliasMembers = append(entry.AliasMembers, model.AliasEntry{
			AliasID:   atoi(aliasID),
			AliasName: rec.Name,
			Type:      rec.Type,
			IPAddress: rec.IP,
			NQN:       rec.NQN,
		})
	}
	entry.AliasCount = len(entry.AliasMembers)
	return entry
}
