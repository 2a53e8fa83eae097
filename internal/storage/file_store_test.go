package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"cdc_zoning/internal/model"
	"cdc_zoning/internal/zoning"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	s, err := NewFileStore(t.TempDir(), logrus.NewEntry(l))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return s
}

func writeFile(t *testing.T, s *FileStore, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(s.Dir(), name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_MissingFilesAreEmpty(t *testing.T) {
	s := newTestStore(t)
	st, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(st, zoning.NewState()) {
		t.Errorf("Load() = %+v, want empty state", st)
	}
	cfg, err := s.LoadConfig(context.Background())
	if err != nil || cfg != nil {
		t.Errorf("LoadConfig() = %v, %v; want nil, nil", cfg, err)
	}
}

func TestLoad_RejectsNonConformingDocuments(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"malformed json", ZonesFile, `{"active_zones": {`},
		{"missing partition", AliasFile, `{"member_aliases": {}}`},
		{"unknown key", AliasFile, `{"member_aliases": {}, "free_aliases": {}, "extra": 1}`},
		{"non numeric id", ZonesFile, `{"active_zones": {"x": {"name": "z", "aliases": {}}}, "inactive_zones": {}}`},
		{"zone without aliases", ZonesFile, `{"active_zones": {"1": {"name": "z"}}, "inactive_zones": {}}`},
		{"id in both partitions", AliasFile, `{"member_aliases": {"1": {"name": "a"}}, "free_aliases": {"1": {"name": "b"}}}`},
		{"wrong value type", ZoneGroupFile, `{"zone_groups": {"1": {"name": "G", "zones": "1", "active": false}}}`},
		{"null document", ZoneGroupFile, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			writeFile(t, s, tt.file, tt.content)
			if _, err := s.Load(context.Background()); !errors.Is(err, zoning.ErrInvalidDocument) {
				t.Errorf("Load() error = %v, want ErrInvalidDocument", err)
			}
		})
	}
}

func TestLoad_RejectsBrokenReferences(t *testing.T) {
	const zones = `{"active_zones": {"1": {"name": "z", "aliases": {}}}, "inactive_zones": {"2": {"name": "y", "aliases": {}}}}`
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"duplicate alias name", map[string]string{
			AliasFile: `{"member_aliases": {"1": {"name": "x"}}, "free_aliases": {"2": {"name": "x"}}}`,
		}},
		{"duplicate zone name", map[string]string{
			ZonesFile: `{"active_zones": {"1": {"name": "z", "aliases": {}}}, "inactive_zones": {"2": {"name": "z", "aliases": {}}}}`,
		}},
		{"duplicate group name", map[string]string{
			ZoneGroupFile: `{"zone_groups": {"1": {"name": "G", "zones": [], "active": true}, "2": {"name": "G", "zones": [], "active": true}}}`,
		}},
		{"group lists unknown zone", map[string]string{
			ZonesFile:     zones,
			ZoneGroupFile: `{"zone_groups": {"1": {"name": "G", "zones": ["99", "1"], "active": true}}}`,
		}},
		{"zone in two groups", map[string]string{
			ZonesFile:     zones,
			ZoneGroupFile: `{"zone_groups": {"1": {"name": "G1", "zones": ["1"], "active": true}, "2": {"name": "G2", "zones": ["1"], "active": true}}}`,
		}},
		{"alias in two zones", map[string]string{
			ZonesFile: `{"active_zones": {"1": {"name": "z", "aliases": {"5": {"name": "a"}}}}, "inactive_zones": {"2": {"name": "y", "aliases": {"5": {"name": "a"}}}}}`,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			for name, content := range tt.files {
				writeFile(t, s, name, content)
			}
			if _, err := s.Load(context.Background()); !errors.Is(err, zoning.ErrInvalidDocument) {
				t.Errorf("Load() error = %v, want ErrInvalidDocument", err)
			}
		})
	}
}

func TestLoad_OrphanAliasReferenceAccepted(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, ZonesFile, `{"active_zones": {"1": {"name": "z", "aliases": {"9": {"name": "ghost"}}}}, "inactive_zones": {}}`)
	if _, err := s.Load(context.Background()); err != nil {
		t.Errorf("Load() error = %v, want orphan references to load", err)
	}
}

func TestLoad_IntegerGroupZoneIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	writeFile(t, s, ZonesFile, `{"active_zones": {}, "inactive_zones": {"1": {"name": "a", "aliases": {}}, "2": {"name": "b", "aliases": {}}}}`)
	writeFile(t, s, ZoneGroupFile, `{"zone_groups": {"1": {"name": "G1", "zones": [2, "1"], "active": true}}}`)

	st, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := st.Groups.ZoneGroups["1"].Zones; !reflect.DeepEqual(got, model.ZoneIDList{"2", "1"}) {
		t.Fatalf("zones = %#v, want [2 1] as strings", got)
	}

	if err := s.Commit(ctx, st, zoning.Project(st, fixedTime())); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(s.Dir(), ZoneGroupFile))
	if !strings.Contains(string(data), `"2",`) {
		t.Errorf("zone ids should be written back as strings:\n%s", data)
	}
}

func TestCommit_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	st := zoning.NewState()
	st.Aliases.MemberAliases["1"] = model.AliasRecord{Name: "h1-p1", Type: model.DevTypeHostPort, IP: "10.0.0.1", NQN: "nqn.h1"}
	st.Aliases.FreeAliases["2"] = model.AliasRecord{Name: "s<1>", Type: model.DevTypeSubsystem}
	st.Zones.ActiveZones["1"] = model.ZoneRecord{Name: "zoneA", Aliases: map[string]model.AliasRecord{"1": st.Aliases.MemberAliases["1"]}}
	st.Zones.InactiveZones["3"] = model.ZoneRecord{Name: "zoneB", Aliases: map[string]model.AliasRecord{}}
	st.Groups.ZoneGroups["1"] = model.ZoneGroupRecord{Name: "G1", Zones: []string{"3", "1"}, Active: true}
	st.Nodes.Nodes = []model.RegisteredNode{{Row: 1, IPAddress: "10.0.0.1", Alias: "h1-p1", Zone: "zoneA", Activate: true}}
	cfg := zoning.Project(st, fixedTime())

	if err := s.Commit(ctx, st, cfg); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, st) {
		t.Errorf("Load() after Commit() = %+v, want %+v", loaded, st)
	}

	// a second save of the loaded documents is byte-identical
	first, _ := os.ReadFile(filepath.Join(s.Dir(), ZonesFile))
	if err := s.Commit(ctx, loaded, cfg); err != nil {
		t.Fatalf("second Commit() error = %v", err)
	}
	second, _ := os.ReadFile(filepath.Join(s.Dir(), ZonesFile))
	if string(first) != string(second) {
		t.Error("zones_data.json changed across load/save")
	}

	gotCfg, err := s.LoadConfig(ctx)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(gotCfg, cfg) {
		t.Errorf("LoadConfig() = %+v, want %+v", gotCfg, cfg)
	}
}

func TestCommit_Format(t *testing.T) {
	s := newTestStore(t)
	st := zoning.NewState()
	st.Aliases.FreeAliases["1"] = model.AliasRecord{Name: "a&b"}

	if err := s.Commit(context.Background(), st, zoning.Project(st, fixedTime())); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(), AliasFile))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "\n    \"free_aliases\"") {
		t.Errorf("expected 4-space indent, got:\n%s", text)
	}
	if !strings.Contains(text, `"a&b"`) {
		t.Errorf("expected unescaped name, got:\n%s", text)
	}

	entries, _ := os.ReadDir(s.Dir())
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("staging file left behind: %s", e.Name())
		}
	}
	if len(entries) != 5 {
		t.Errorf("files = %d, want 5", len(entries))
	}
}

func TestCommit_FailureRemovesStagingFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	st := zoning.NewState()
	st.Zones.InactiveZones["1"] = model.ZoneRecord{Name: "z", Aliases: map[string]model.AliasRecord{}}
	if err := s.Commit(ctx, st, zoning.Project(st, fixedTime())); err != nil {
		t.Fatal(err)
	}

	// a directory in place of the config file makes the final rename fail
	os.Remove(filepath.Join(s.Dir(), ZoneConfigFile))
	os.Mkdir(filepath.Join(s.Dir(), ZoneConfigFile), 0o755)
	os.WriteFile(filepath.Join(s.Dir(), ZoneConfigFile, "keep"), nil, 0o644)

	next := st.Clone()
	next.Zones.InactiveZones["2"] = model.ZoneRecord{Name: "y", Aliases: map[string]model.AliasRecord{}}
	if err := s.Commit(ctx, next, zoning.Project(next, fixedTime())); err == nil {
		t.Fatal("Commit() should fail")
	}

	entries, _ := os.ReadDir(s.Dir())
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("staging file left behind: %s", e.Name())
		}
	}
}

func TestLoad_NodeInventoryLenient(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, NodesFile, `{"nodes": [{"Row": "3", "IPAddress": "10.1.1.1", "NQN": "nqn.x", "Alias": "h3", "DevType": "Host", "Create a Zone": "z", "Activate": "true", "Port": 4420}]}`)

	st, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	n := st.Nodes.Nodes[0]
	if n.Row != 3 || n.Zone != "z" || !n.Activate || string(n.Extra["Port"]) != "4420" {
		t.Errorf("node = %+v", n)
	}
}

func TestEncodeYAML(t *testing.T) {
	cfg := &model.ZoneConfig{
		Active:      []model.GroupEntry{{ZoneGrpID: 1, ZoneGrpName: "G1", ZoneMembers: []model.ZoneEntry{}}},
		Inactive:    []model.GroupEntry{},
		LastUpdated: "2024-05-17 09:30:00",
	}
	out, err := EncodeYAML(cfg)
	if err != nil {
		t.Fatalf("EncodeYAML() error = %v", err)
	}
	if !strings.Contains(string(out), "ZoneGrpName: G1") || !strings.Contains(string(out), "last_updated:") {
		t.Errorf("EncodeYAML() = %s", out)
	}
}
