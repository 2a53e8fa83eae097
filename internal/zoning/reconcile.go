package zoning

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"cdc_zoning/internal/metrics"
)

// Orphan is a zone alias reference whose id is not in member_aliases
type Orphan struct {
	ZoneID   string `json:"zoneId"`
	ZoneName string `json:"zoneName"`
	AliasID  string `json:"aliasId"`
}

func (o Orphan) Error() string {
	return fmt.Sprintf("%v: zone %q references alias id %s", ErrOrphanReference, o.ZoneName, o.AliasID)
}

func (o Orphan) Unwrap() error { return ErrOrphanReference }

// ReconcileReport lists what PruneOrphans changed
type ReconcileReport struct {
	Orphans   []Orphan `json:"orphans"`
	Refreshed int      `json:"refreshed"`
}

// FindOrphans scans every zone alias map for ids absent from member_aliases
func FindOrphans(st *State) []Orphan {
	var out []Orphan
	for _, z := range st.ZoneStore().List() {
		for _, aliasID := range sortedIDs(z.Aliases) {
			if _, ok := st.Aliases.MemberAliases[aliasID]; !ok {
				out = append(out, Orphan{ZoneID: z.ID, ZoneName: z.Name, AliasID: aliasID})
			}
		}
	}
	return out
}

func dropOrphans(st *State, orphans []Orphan) {
	zones := st.ZoneStore()
	for _, o := range orphans {
		zones.RemoveAlias(o.ZoneID, o.AliasID)
	}
}

// refreshSnapshots rewrites every zone snapshot that differs from the live alias record
func refreshSnapshots(st *State) int {
	n := 0
	for _, z := range st.ZoneStore().List() {
		for aliasID, snap := range z.Aliases {
			live, ok := st.Aliases.MemberAliases[aliasID]
			if ok && live != snap {
				z.Aliases[aliasID] = live
				n++
			}
		}
	}
	return n
}

func reportOrphans(log *logrus.Entry, orphans []Orphan) {
	for _, o := range orphans {
		log.WithError(o).WithFields(logrus.Fields{
			"zone_id":  o.ZoneID,
			"alias_id": o.AliasID,
		}).Warn("Dropping orphan alias reference from zone view")
	}
	metrics.OrphanReferencesTotal.Add(float64(len(orphans)))
}

// PruneOrphans removes orphan alias references from the persisted zones and
// refreshes stale alias snapshots.
func (c *Coordinator) PruneOrphans(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	_, err := c.mutate(ctx, "prune_orphans", func(st *State) (outcome, error) {
		report.Orphans = FindOrphans(st)
		dropOrphans(st, report.Orphans)
		report.Refreshed = refreshSnapshots(st)
		return outcome{
			message: fmt.Sprintf("Pruned %d orphan alias references, refreshed %d snapshots", len(report.Orphans), report.Refreshed),
			details: map[string]interface{}{"orphans": report.Orphans, "refreshed": report.Refreshed},
		}, nil
	})
	return report, err
}
