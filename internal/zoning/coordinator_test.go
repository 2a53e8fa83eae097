package zoning

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cdc_zoning/internal/model"
)

func TestCoordinator_LinkAlias(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator(t)

	a, err := c.CreateAlias(ctx, "h1-p1", model.DevTypeHostPort, "10.0.0.1", "nqn.2014-08.org.nvmexpress:h1")
	mustOK(t, err)
	z, err := c.CreateZone(ctx, "zoneA")
	mustOK(t, err)
	mustOK(t, c.LinkAliases(ctx, "zoneA", "h1-p1"))

	st := repo.state()
	if _, ok := st.Aliases.MemberAliases[a.ID]; !ok {
		t.Error("h1-p1 should be in member_aliases")
	}
	if _, ok := st.Aliases.FreeAliases[a.ID]; ok {
		t.Error("h1-p1 should not be in free_aliases")
	}
	zone, _ := st.ZoneStore().Get(z.ID)
	if snap := zone.Aliases[a.ID]; snap.IP != "10.0.0.1" || snap.Name != "h1-p1" {
		t.Errorf("snapshot = %+v", snap)
	}

	cfg := repo.cfg
	if len(cfg.Inactive) != 1 || cfg.Inactive[0].ZoneMembers[0].AliasCount != 1 {
		t.Errorf("zone config = %+v, want zoneA with one alias under Ungrouped", cfg)
	}
}

func TestCoordinator_DeleteNonEmptyZoneRejected(t *testing.T) {
	ctx := context.Background()
	c, repo, remote := newTestCoordinator(t)

	mustOK(t, errOnly(c.CreateAlias(ctx, "h1-p1", model.DevTypeHostPort, "10.0.0.1", "")))
	mustOK(t, errOnly(c.CreateZone(ctx, "zoneA")))
	mustOK(t, c.LinkAliases(ctx, "zoneA", "h1-p1"))

	before := repo.state()
	commits := repo.commits
	calls := len(remote.calls)

	err := c.DeleteZone(ctx, "zoneA")
	if !errors.Is(err, ErrHasReferences) {
		t.Fatalf("DeleteZone() error = %v, want ErrHasReferences", err)
	}
	if repo.commits != commits {
		t.Error("rejected delete must not commit")
	}
	if len(remote.calls) != calls {
		t.Errorf("rejected delete must not reach the device, calls = %v", remote.calls[calls:])
	}
	if !reflect.DeepEqual(before, repo.state()) {
		t.Error("state changed by rejected delete")
	}
}

func TestCoordinator_UnlinkThenDeleteZone(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator(t)

	a, _ := c.CreateAlias(ctx, "h1-p1", model.DevTypeHostPort, "10.0.0.1", "")
	c.CreateZone(ctx, "zoneA")
	mustOK(t, c.LinkAliases(ctx, "zoneA", "h1-p1"))
	mustOK(t, c.UnlinkAliases(ctx, "zoneA", "h1-p1"))

	if _, ok := repo.state().Aliases.FreeAliases[a.ID]; !ok {
		t.Error("unlinked alias should be free again")
	}
	mustOK(t, c.DeleteZone(ctx, "zoneA"))

	st := repo.state()
	if len(st.Zones.ActiveZones)+len(st.Zones.InactiveZones) != 0 {
		t.Errorf("zoneA still present: %+v", st.Zones)
	}
}

func TestCoordinator_UnlinkTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator(t)

	c.CreateAlias(ctx, "a", "", "", "")
	c.CreateZone(ctx, "z")
	mustOK(t, c.LinkAliases(ctx, "z", "a"))
	mustOK(t, c.UnlinkAliases(ctx, "z", "a"))
	once := repo.state()
	mustOK(t, c.UnlinkAliases(ctx, "z", "a"))

	if !reflect.DeepEqual(once, repo.state()) {
		t.Error("second unlink changed state")
	}
}

func TestCoordinator_AliasSingleZone(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(t)

	c.CreateAlias(ctx, "a", "", "", "")
	c.CreateZone(ctx, "z1")
	c.CreateZone(ctx, "z2")
	mustOK(t, c.LinkAliases(ctx, "z1", "a"))

	if err := c.LinkAliases(ctx, "z2", "a"); !errors.Is(err, ErrAliasInUse) {
		t.Errorf("LinkAliases(other zone) error = %v, want ErrAliasInUse", err)
	}
	if err := c.LinkAliases(ctx, "z1", "a"); err != nil {
		t.Errorf("relinking to the same zone should succeed, got %v", err)
	}
}

func TestCoordinator_LinkUnknownNames(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator(t)
	c.CreateAlias(ctx, "a", "", "", "")
	c.CreateZone(ctx, "z")
	before := repo.state()

	if err := c.LinkAliases(ctx, "nope", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown zone error = %v, want ErrNotFound", err)
	}
	if err := c.LinkAliases(ctx, "z", "a", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown alias error = %v, want ErrNotFound", err)
	}
	if !reflect.DeepEqual(before, repo.state()) {
		t.Error("failed link must not attach any alias")
	}
}

func TestCoordinator_DeleteAlias(t *testing.T) {
	ctx := context.Background()
	c, repo, remote := newTestCoordinator(t)

	c.CreateAlias(ctx, "a", "", "", "")
	c.CreateZone(ctx, "z")
	mustOK(t, c.LinkAliases(ctx, "z", "a"))
	mustOK(t, c.ReplaceNodes(ctx, []model.RegisteredNode{{Row: 1, Alias: "a"}, {Row: 2, Alias: "b"}}))

	if err := c.DeleteAlias(ctx, "a"); !errors.Is(err, ErrHasReferences) {
		t.Fatalf("DeleteAlias(linked) error = %v, want ErrHasReferences", err)
	}
	mustOK(t, c.UnlinkAliases(ctx, "z", "a"))
	mustOK(t, c.DeleteAlias(ctx, "a"))

	st := repo.state()
	if _, ok := st.AliasStore().FindByName("a"); ok {
		t.Error("alias still present")
	}
	if st.Nodes.Nodes[0].Alias != "" || st.Nodes.Nodes[1].Alias != "b" {
		t.Errorf("nodes = %+v, want alias cleared on row 1 only", st.Nodes.Nodes)
	}
	if last := remote.calls[len(remote.calls)-1]; last != "delete alias a" {
		t.Errorf("last device call = %q", last)
	}
	if err := c.DeleteAlias(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteAlias(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCoordinator_RemoteFailureBlocksLocal(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(c *Coordinator)
		fail  string
		op    func(c *Coordinator) error
	}{
		{
			name: "create alias",
			fail: "create alias a",
			op:   func(c *Coordinator) error { return errOnly(c.CreateAlias(ctx, "a", "", "", "")) },
		},
		{
			name: "create zone",
			fail: "create zone z",
			op:   func(c *Coordinator) error { return errOnly(c.CreateZone(ctx, "z")) },
		},
		{
			name: "create group",
			fail: "create zgrp G",
			op:   func(c *Coordinator) error { return errOnly(c.CreateGroup(ctx, "G")) },
		},
		{
			name:  "delete alias",
			setup: func(c *Coordinator) { c.CreateAlias(ctx, "a", "", "", "") },
			fail:  "delete alias a",
			op:    func(c *Coordinator) error { return c.DeleteAlias(ctx, "a") },
		},
		{
			name:  "delete zone",
			setup: func(c *Coordinator) { c.CreateZone(ctx, "z") },
			fail:  "delete zone z",
			op:    func(c *Coordinator) error { return c.DeleteZone(ctx, "z") },
		},
		{
			name:  "delete group",
			setup: func(c *Coordinator) { c.CreateGroup(ctx, "G") },
			fail:  "delete zgrp G",
			op:    func(c *Coordinator) error { return c.DeleteGroup(ctx, "G") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, repo, remote := newTestCoordinator(t)
			if tt.setup != nil {
				tt.setup(c)
			}
			before := repo.state()
			remote.fail[tt.fail] = true

			err := tt.op(c)
			if !errors.Is(err, ErrRemoteOperation) {
				t.Fatalf("error = %v, want ErrRemoteOperation", err)
			}
			if !reflect.DeepEqual(before, repo.state()) {
				t.Error("local state changed despite device failure")
			}
		})
	}
}

func TestCoordinator_DeleteZoneCascadesGroups(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator(t)

	z, _ := c.CreateZone(ctx, "z1")
	c.CreateZone(ctx, "z2")
	g, _ := c.CreateGroup(ctx, "G1")
	mustOK(t, c.AddZonesToGroup(ctx, "G1", "z1", "z2"))
	mustOK(t, c.DeleteZone(ctx, "z1"))

	grp, _ := repo.state().GroupStore().Get(g.ID)
	for _, id := range grp.Zones {
		if id == z.ID {
			t.Errorf("group still lists deleted zone: %v", grp.Zones)
		}
	}
	if len(grp.Zones) != 1 {
		t.Errorf("group zones = %v, want one remaining", grp.Zones)
	}
}

func TestCoordinator_Groups(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator(t)

	c.CreateZone(ctx, "zoneB")
	mustOK(t, errOnly(c.CreateGroup(ctx, "G1")))
	mustOK(t, errOnly(c.CreateGroup(ctx, "G2")))

	if _, err := c.CreateGroup(ctx, "bad name"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("CreateGroup(bad) error = %v, want ErrInvalidName", err)
	}
	mustOK(t, c.AddZonesToGroup(ctx, "G1", "zoneB"))
	mustOK(t, c.AddZonesToGroup(ctx, "G1", "zoneB"))
	if err := c.AddZonesToGroup(ctx, "G2", "zoneB"); !errors.Is(err, ErrZoneGrouped) {
		t.Errorf("AddZonesToGroup(grouped) error = %v, want ErrZoneGrouped", err)
	}

	ungrouped, err := c.UngroupedZones(ctx)
	mustOK(t, err)
	if len(ungrouped) != 0 {
		t.Errorf("ungrouped = %+v, want none", ungrouped)
	}

	cfg := repo.cfg
	if len(cfg.Active) != 2 || cfg.Active[0].ZoneMembers[0].ZoneName != "zoneB" {
		t.Errorf("active = %+v, want zoneB under G1", cfg.Active)
	}
	z, _ := repo.state().ZoneStore().FindByName("zoneB")
	if z.Active {
		t.Error("adding a zone to a group must not activate it")
	}

	if err := c.DeleteGroup(ctx, "G1"); !errors.Is(err, ErrHasReferences) {
		t.Errorf("DeleteGroup(non-empty) error = %v, want ErrHasReferences", err)
	}
	mustOK(t, c.RemoveZonesFromGroup(ctx, "G1", "zoneB"))
	mustOK(t, c.DeleteGroup(ctx, "G1"))

	groups, err := c.ListGroups(ctx)
	mustOK(t, err)
	if len(groups) != 1 || groups[0].Name != "G2" {
		t.Errorf("groups = %+v, want only G2", groups)
	}
}

func TestCoordinator_ActivateZones(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator(t)
	c.CreateZone(ctx, "z1")
	c.CreateZone(ctx, "z2")

	mustOK(t, c.ActivateZones(ctx, "z1", "z2"))
	if n := len(repo.state().Zones.ActiveZones); n != 2 {
		t.Errorf("active zones = %d, want 2", n)
	}
	if err := c.DeactivateZones(ctx, "z1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeactivateZones(unknown) error = %v, want ErrNotFound", err)
	}
	if n := len(repo.state().Zones.ActiveZones); n != 2 {
		t.Errorf("failed deactivate changed state, active = %d", n)
	}
	if err := c.ActivateZones(ctx); !errors.Is(err, ErrInvalidName) {
		t.Errorf("ActivateZones() error = %v, want ErrInvalidName", err)
	}
}

func TestCoordinator_OrphansAreReported(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator(t)

	c.CreateAlias(ctx, "a", "", "", "")
	c.CreateZone(ctx, "z")
	mustOK(t, c.LinkAliases(ctx, "z", "a"))
	// simulate a crash that left the alias free while still referenced
	st := repo.state()
	a, _ := st.AliasStore().FindByName("a")
	st.AliasStore().Detach(a.ID)
	repo.st = st

	zone, err := c.Zone(ctx, "z")
	mustOK(t, err)
	if len(zone.Aliases) != 0 || !reflect.DeepEqual(zone.Orphans, []string{a.ID}) {
		t.Errorf("zone view = %+v, want alias %s reported as orphan", zone, a.ID)
	}
	orphans := FindOrphans(repo.state())
	if len(orphans) != 1 || !errors.Is(orphans[0], ErrOrphanReference) {
		t.Errorf("FindOrphans() = %v", orphans)
	}

	report, err := c.PruneOrphans(ctx)
	mustOK(t, err)
	if len(report.Orphans) != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(FindOrphans(repo.state())) != 0 {
		t.Error("orphans remain after PruneOrphans")
	}
}

func TestCoordinator_EagerOrphanCleanup(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator(t, WithEagerOrphanCleanup(true))

	c.CreateZone(ctx, "z")
	st := repo.state()
	z, _ := st.ZoneStore().FindByName("z")
	st.ZoneStore().AddAlias(z.ID, "9", model.AliasRecord{Name: "ghost"})
	repo.st = st

	zones, err := c.ListZones(ctx)
	mustOK(t, err)
	if len(zones) != 1 || len(zones[0].Orphans) != 1 {
		t.Fatalf("zones = %+v", zones)
	}
	if len(FindOrphans(repo.state())) != 0 {
		t.Error("eager cleanup should persist the pruned zone")
	}
}

func TestCoordinator_EveryReferenceIsMemberOrOrphan(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestCoordinator(t)

	c.CreateAlias(ctx, "a", "", "", "")
	c.CreateAlias(ctx, "b", "", "", "")
	c.CreateZone(ctx, "z1")
	c.CreateZone(ctx, "z2")
	c.LinkAliases(ctx, "z1", "a", "b")
	c.UnlinkAliases(ctx, "z1", "b")
	c.LinkAliases(ctx, "z2", "b")
	c.LinkAliases(ctx, "z2", "a")
	c.DeleteAlias(ctx, "a")

	st := repo.state()
	orphans := make(map[string]bool)
	for _, o := range FindOrphans(st) {
		orphans[o.ZoneID+"/"+o.AliasID] = true
	}
	for _, z := range st.ZoneStore().List() {
		for id := range z.Aliases {
			if _, member := st.Aliases.MemberAliases[id]; !member && !orphans[z.ID+"/"+id] {
				t.Errorf("zone %s references alias %s that is neither member nor orphan", z.Name, id)
			}
		}
	}
}

func TestCoordinator_RecordsAndNotifies(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	rec := &memRecorder{}
	n := &countingNotifier{}
	c, _, _ := newTestCoordinator(t, WithRecorder(rec), WithNotifier(n))

	c.CreateZone(ctx, "z")
	c.CreateZone(ctx, "z")

	if len(rec.entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(rec.entries))
	}
	if !rec.entries[0].Success || rec.entries[0].RequestID != "req-1" || rec.entries[0].Operation != "create_zone" {
		t.Errorf("first entry = %+v", rec.entries[0])
	}
	if rec.entries[1].Success || rec.entries[1].Error == "" {
		t.Errorf("second entry = %+v, want failure", rec.entries[1])
	}
	if n.n != 1 {
		t.Errorf("notifications = %d, want 1", n.n)
	}
}

func TestCoordinator_CommitFailureReturnsError(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, c *Coordinator) error
		want []string
	}{
		{
			name: "alias",
			run: func(ctx context.Context, c *Coordinator) error {
				_, err := c.CreateAlias(ctx, "h1", "", "", "")
				return err
			},
			want: []string{"create alias h1", "delete alias h1"},
		},
		{
			name: "zone",
			run: func(ctx context.Context, c *Coordinator) error {
				_, err := c.CreateZone(ctx, "zoneA")
				return err
			},
			want: []string{"create zone zoneA", "delete zone zoneA"},
		},
		{
			name: "group",
			run: func(ctx context.Context, c *Coordinator) error {
				_, err := c.CreateGroup(ctx, "g1")
				return err
			},
			want: []string{"create zgrp g1", "delete zgrp g1"},
		},
		{
			name: "sync",
			run: func(ctx context.Context, c *Coordinator) error {
				_, err := c.SyncNodes(ctx, []model.RegisteredNode{{Row: 1, Alias: "a", Zone: "z1"}})
				return err
			},
			want: []string{"create alias a", "create zone z1", "delete zone z1", "delete alias a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, repo, remote := newTestCoordinator(t)
			repo.failCommit = errors.New("disk full")

			if err := tt.run(context.Background(), c); err == nil {
				t.Fatal("expected commit error")
			}
			if !reflect.DeepEqual(remote.calls, tt.want) {
				t.Errorf("device calls = %v, want %v", remote.calls, tt.want)
			}
			if repo.commits != 0 {
				t.Errorf("commits = %d, want 0", repo.commits)
			}
		})
	}
}

func TestCoordinator_ZoneConfigBeforeFirstWrite(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	cfg, err := c.ZoneConfig(context.Background())
	mustOK(t, err)
	if cfg == nil || cfg.LastUpdated != "2024-05-17 09:30:00" {
		t.Errorf("ZoneConfig() = %+v", cfg)
	}
}

func TestCoordinator_ListsInNaturalOrder(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(t)
	for _, name := range []string{"host10", "host2", "host1"} {
		c.CreateAlias(ctx, name, "", "", "")
	}
	aliases, err := c.ListAliases(ctx)
	mustOK(t, err)
	var names []string
	for _, a := range aliases {
		names = append(names, a.Name)
	}
	if want := []string{"host1", "host2", "host10"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(t)
	c.CreateAlias(ctx, "h", model.DevTypeHost, "10.0.0.1", "")
	c.CreateAlias(ctx, "s", model.DevTypeSubsystem, "10.0.0.2", "")
	c.CreateZone(ctx, "z1")
	c.CreateZone(ctx, "z2")
	c.LinkAliases(ctx, "z1", "h", "s")
	c.CreateGroup(ctx, "G")
	c.AddZonesToGroup(ctx, "G", "z1")
	c.ReplaceNodes(ctx, []model.RegisteredNode{{IPAddress: "10.0.0.1"}, {IPAddress: "10.0.0.1"}, {IPAddress: "10.0.0.2"}})

	d, err := c.Dashboard(ctx)
	mustOK(t, err)
	want := Dashboard{
		Zone: 2, ActiveZones: 1, InactiveZones: 1, ZoneGroup: 1,
		Alias: 2, HostAliases: 1, StorageAliases: 1,
		Nodes: 3, UniqueIPs: 2,
		ZoneDistribution: ZoneDistribution{Empty: 1, TwoMembers: 1},
		LastUpdated:      "2024-05-17 09:30:00",
	}
	if d != want {
		t.Errorf("Dashboard() = %+v, want %+v", d, want)
	}
}

func errOnly[T any](_ T, err error) error { return err }
