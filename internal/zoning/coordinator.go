package zoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"cdc_zoning/internal/lock"
	"cdc_zoning/internal/metrics"
	"cdc_zoning/internal/model"
)

// Coordinator sequences every operation that touches more than one store.
// Each mutation loads the documents, applies the change, regenerates the zone
// config and commits everything in one cycle under the locker.
type Coordinator struct {
	repo     Repository
	remote   Remote
	registry Registry
	locker   lock.Locker
	recorder Recorder
	notifier Notifier
	log      *logrus.Entry
	now      func() time.Time

	eagerOrphanCleanup bool
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithRemote mirrors creates and deletes on the CDC device
func WithRemote(r Remote) Option { return func(c *Coordinator) { c.remote = r } }

// WithRegistry sets the node inventory source used by SyncFromRegistry
func WithRegistry(r Registry) Option { return func(c *Coordinator) { c.registry = r } }

// WithLocker replaces the in-process lock
func WithLocker(l lock.Locker) Option { return func(c *Coordinator) { c.locker = l } }

// WithRecorder sets the operation log
func WithRecorder(r Recorder) Option { return func(c *Coordinator) { c.recorder = r } }

// WithNotifier sets the receiver of zone config updates
func WithNotifier(n Notifier) Option { return func(c *Coordinator) { c.notifier = n } }

// WithLogger sets the logger
func WithLogger(l *logrus.Entry) Option { return func(c *Coordinator) { c.log = l } }

// WithClock sets the time source used for last_updated
func WithClock(now func() time.Time) Option { return func(c *Coordinator) { c.now = now } }

// WithEagerOrphanCleanup makes reads persist the removal of orphan alias references
func WithEagerOrphanCleanup(eager bool) Option {
	return func(c *Coordinator) { c.eagerOrphanCleanup = eager }
}

// NewCoordinator returns a coordinator over repo
func NewCoordinator(repo Repository, opts ...Option) *Coordinator {
	c := &Coordinator{
		repo:     repo,
		remote:   nopRemote{},
		locker:   lock.NewLocal(),
		recorder: nopRecorder{},
		notifier: nopNotifier{},
		log:      logrus.NewEntry(logrus.StandardLogger()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "zoning")
	return c
}

// outcome is what a mutation reports for the operation log. created lists
// the device objects fn made, deleted again if the commit fails.
type outcome struct {
	message string
	details map[string]interface{}
	created []remoteCreation
}

// mutate runs fn on freshly loaded state and commits the result together with
// a regenerated zone config. Nothing is written when fn fails.
func (c *Coordinator) mutate(ctx context.Context, op string, fn func(st *State) (outcome, error)) (*model.ZoneConfig, error) {
	release, err := c.locker.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	log := c.log.WithField("operation", op)
	if id := RequestIDFrom(ctx); id != "" {
		log = log.WithField("request_id", id)
	}

	var (
		cfg *model.ZoneConfig
		out outcome
	)
	err = func() error {
		st, err := c.repo.Load(ctx)
		if err != nil {
			return err
		}
		if out, err = fn(st); err != nil {
			return err
		}
		cfg = Project(st, c.now())
		if err := c.repo.Commit(ctx, st, cfg); err != nil {
			c.compensate(ctx, out.created)
			return fmt.Errorf("commit %s: %w", op, err)
		}
		publishInventory(st)
		return nil
	}()

	metrics.OperationsTotal.WithLabelValues(op, metrics.Result(err)).Inc()
	c.record(ctx, op, out, err)
	if err != nil {
		log.WithError(err).Warn("Operation rejected")
		return nil, err
	}

	metrics.ZoneConfigRegenerationsTotal.Inc()
	log.Info(out.message)
	c.notifier.ZoneConfigChanged(cfg)
	return cfg, nil
}

// view runs fn on freshly loaded state under the lock without writing anything
func (c *Coordinator) view(ctx context.Context, fn func(st *State) error) error {
	release, err := c.locker.Lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	st, err := c.repo.Load(ctx)
	if err != nil {
		return err
	}
	return fn(st)
}

func (c *Coordinator) record(ctx context.Context, op string, out outcome, opErr error) {
	entry := &model.OperationLog{
		RequestID: RequestIDFrom(ctx),
		Operation: op,
		Message:   out.message,
		Success:   opErr == nil,
		CreatedAt: c.now(),
	}
	if opErr != nil {
		entry.Error = opErr.Error()
		if entry.Message == "" {
			entry.Message = op + " failed"
		}
	}
	if len(out.details) > 0 {
		if raw, err := json.Marshal(out.details); err == nil {
			entry.Details = datatypes.JSON(raw)
		}
	}
	if err := c.recorder.Record(ctx, entry); err != nil {
		c.log.WithError(err).WithField("operation", op).Warn("Failed to record operation")
	}
}

// remoteCall wraps a device failure in ErrRemoteOperation
func remoteCall(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRemoteOperation) {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrRemoteOperation, what, err)
}

func publishInventory(st *State) {
	metrics.SetInventory(
		len(st.Aliases.MemberAliases), len(st.Aliases.FreeAliases),
		len(st.Zones.ActiveZones), len(st.Zones.InactiveZones),
		len(st.Groups.ZoneGroups),
	)
}

// CreateAlias registers a new free alias
func (c *Coordinator) CreateAlias(ctx context.Context, name, typ, ip, nqn string) (Alias, error) {
	var created Alias
	_, err := c.mutate(ctx, "create_alias", func(st *State) (outcome, error) {
		aliases := st.AliasStore()
		id, err := aliases.Create(name, typ, ip, nqn)
		if err != nil {
			return outcome{}, err
		}
		created, _ = aliases.Get(id)
		if err := c.remote.CreateAlias(ctx, created.AliasRecord); err != nil {
			return outcome{}, remoteCall(err, "create alias "+name)
		}
		return outcome{
			message: fmt.Sprintf("Alias '%s' created with id %s", name, id),
			details: map[string]interface{}{"alias_id": id, "type": typ, "ip": ip, "nqn": nqn},
			created: []remoteCreation{{kind: "alias", name: name}},
		}, nil
	})
	if err != nil {
		return Alias{}, err
	}
	return created, nil
}

// DeleteAlias removes an alias no zone references. The alias is also cleared
// from the node inventory.
func (c *Coordinator) DeleteAlias(ctx context.Context, name string) error {
	_, err := c.mutate(ctx, "delete_alias", func(st *State) (outcome, error) {
		aliases := st.AliasStore()
		a, ok := aliases.FindByName(name)
		if !ok {
			return outcome{}, fmt.Errorf("%w: alias %q", ErrNotFound, name)
		}
		if refs := st.ZoneStore().ZonesReferencing(a.ID); len(refs) > 0 {
			return outcome{}, fmt.Errorf("%w: alias %q is linked to zone ids %v", ErrHasReferences, name, refs)
		}
		if err := c.remote.DeleteAlias(ctx, name); err != nil {
			return outcome{}, remoteCall(err, "delete alias "+name)
		}
		if _, err := aliases.Delete(name); err != nil {
			return outcome{}, err
		}
		cleared := 0
		for i := range st.Nodes.Nodes {
			if st.Nodes.Nodes[i].Alias == name {
				st.Nodes.Nodes[i].Alias = ""
				cleared++
			}
		}
		return outcome{
			message: fmt.Sprintf("Alias '%s' deleted", name),
			details: map[string]interface{}{"alias_id": a.ID, "nodes_cleared": cleared},
		}, nil
	})
	return err
}

// CreateZone registers a new, empty, inactive zone
func (c *Coordinator) CreateZone(ctx context.Context, name string) (Zone, error) {
	var created Zone
	_, err := c.mutate(ctx, "create_zone", func(st *State) (outcome, error) {
		zones := st.ZoneStore()
		id, err := zones.Create(name)
		if err != nil {
			return outcome{}, err
		}
		if err := c.remote.CreateZone(ctx, name); err != nil {
			return outcome{}, remoteCall(err, "create zone "+name)
		}
		created, _ = zones.Get(id)
		return outcome{
			message: fmt.Sprintf("Zone '%s' created with id %s", name, id),
			details: map[string]interface{}{"zone_id": id},
			created: []remoteCreation{{kind: "zone", name: name}},
		}, nil
	})
	if err != nil {
		return Zone{}, err
	}
	return created, nil
}

// DeleteZone removes an empty zone and drops it from every zone group
func (c *Coordinator) DeleteZone(ctx context.Context, name string) error {
	_, err := c.mutate(ctx, "delete_zone", func(st *State) (outcome, error) {
		zones := st.ZoneStore()
		z, ok := zones.FindByName(name)
		if !ok {
			return outcome{}, fmt.Errorf("%w: zone %q", ErrNotFound, name)
		}
		if len(z.Aliases) > 0 {
			return outcome{}, fmt.Errorf("%w: zone %q still holds %d aliases", ErrHasReferences, name, len(z.Aliases))
		}
		if err := c.remote.DeleteZone(ctx, name); err != nil {
			return outcome{}, remoteCall(err, "delete zone "+name)
		}
		if _, err := zones.Delete(name); err != nil {
			return outcome{}, err
		}
		groups := st.GroupStore().RemoveZoneEverywhere(z.ID)
		return outcome{
			message: fmt.Sprintf("Zone '%s' deleted", name),
			details: map[string]interface{}{"zone_id": z.ID, "removed_from_groups": groups},
		}, nil
	})
	return err
}

// ActivateZones moves the named zones to active_zones
func (c *Coordinator) ActivateZones(ctx context.Context, names ...string) error {
	return c.setZonesActive(ctx, "activate_zones", true, names)
}

// DeactivateZones moves the named zones to inactive_zones
func (c *Coordinator) DeactivateZones(ctx context.Context, names ...string) error {
	return c.setZonesActive(ctx, "deactivate_zones", false, names)
}

func (c *Coordinator) setZonesActive(ctx context.Context, op string, active bool, names []string) error {
	_, err := c.mutate(ctx, op, func(st *State) (outcome, error) {
		zones := st.ZoneStore()
		ids, err := resolveZones(zones, names)
		if err != nil {
			return outcome{}, err
		}
		for _, id := range ids {
			if active {
				err = zones.Activate(id)
			} else {
				err = zones.Deactivate(id)
			}
			if err != nil {
				return outcome{}, err
			}
		}
		state := "inactive"
		if active {
			state = "active"
		}
		return outcome{
			message: fmt.Sprintf("Zones %v set %s", names, state),
			details: map[string]interface{}{"zone_ids": ids},
		}, nil
	})
	return err
}

// LinkAliases adds the named aliases to a zone. An alias may belong to one
// zone at a time; linking an alias already in the zone refreshes its snapshot.
func (c *Coordinator) LinkAliases(ctx context.Context, zoneName string, aliasNames ...string) error {
	_, err := c.mutate(ctx, "link_aliases", func(st *State) (outcome, error) {
		zones := st.ZoneStore()
		aliases := st.AliasStore()
		z, ok := zones.FindByName(zoneName)
		if !ok {
			return outcome{}, fmt.Errorf("%w: zone %q", ErrNotFound, zoneName)
		}
		ids, err := resolveAliases(aliases, aliasNames)
		if err != nil {
			return outcome{}, err
		}
		for i, id := range ids {
			for _, other := range zones.ZonesReferencing(id) {
				if other != z.ID {
					owner, _ := zones.Get(other)
					return outcome{}, fmt.Errorf("%w: alias %q is in zone %q", ErrAliasInUse, aliasNames[i], owner.Name)
				}
			}
		}
		for _, id := range ids {
			if err := linkAlias(st, z.ID, id); err != nil {
				return outcome{}, err
			}
		}
		return outcome{
			message: fmt.Sprintf("Aliases %v linked to zone '%s'", aliasNames, zoneName),
			details: map[string]interface{}{"zone_id": z.ID, "alias_ids": ids},
		}, nil
	})
	return err
}

// linkAlias attaches the alias before adding it to the zone so the alias is
// never referenced while still flagged free.
func linkAlias(st *State, zoneID, aliasID string) error {
	aliases := st.AliasStore()
	if !aliases.IsMember(aliasID) {
		if err := aliases.Attach(aliasID); err != nil {
			return err
		}
	}
	a, _ := aliases.Get(aliasID)
	return st.ZoneStore().AddAlias(zoneID, aliasID, a.AliasRecord)
}

// UnlinkAliases removes the named aliases from a zone and frees them.
// Unlinking an alias the zone does not hold is a no-op.
func (c *Coordinator) UnlinkAliases(ctx context.Context, zoneName string, aliasNames ...string) error {
	_, err := c.mutate(ctx, "unlink_aliases", func(st *State) (outcome, error) {
		zones := st.ZoneStore()
		z, ok := zones.FindByName(zoneName)
		if !ok {
			return outcome{}, fmt.Errorf("%w: zone %q", ErrNotFound, zoneName)
		}
		ids, err := resolveAliases(st.AliasStore(), aliasNames)
		if err != nil {
			return outcome{}, err
		}
		var removed []string
		for _, id := range ids {
			ok, err := unlinkAlias(st, z.ID, id)
			if err != nil {
				return outcome{}, err
			}
			if ok {
				removed = append(removed, id)
			}
		}
		return outcome{
			message: fmt.Sprintf("Aliases %v unlinked from zone '%s'", aliasNames, zoneName),
			details: map[string]interface{}{"zone_id": z.ID, "alias_ids": removed},
		}, nil
	})
	return err
}

// unlinkAlias removes the alias from the zone first and detaches it once no
// zone references it any more.
func unlinkAlias(st *State, zoneID, aliasID string) (bool, error) {
	zones := st.ZoneStore()
	aliases := st.AliasStore()
	removed, err := zones.RemoveAlias(zoneID, aliasID)
	if err != nil {
		return false, err
	}
	if len(zones.ZonesReferencing(aliasID)) == 0 && aliases.IsMember(aliasID) {
		if err := aliases.Detach(aliasID); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// CreateGroup registers a new empty zone group
func (c *Coordinator) CreateGroup(ctx context.Context, name string) (Group, error) {
	var created Group
	_, err := c.mutate(ctx, "create_zone_group", func(st *State) (outcome, error) {
		groups := st.GroupStore()
		id, err := groups.Create(name)
		if err != nil {
			return outcome{}, err
		}
		if err := c.remote.CreateZoneGroup(ctx, name); err != nil {
			return outcome{}, remoteCall(err, "create zone group "+name)
		}
		created, _ = groups.Get(id)
		return outcome{
			message: fmt.Sprintf("Zone group '%s' created with id %s", name, id),
			details: map[string]interface{}{"group_id": id},
			created: []remoteCreation{{kind: "group", name: name}},
		}, nil
	})
	if err != nil {
		return Group{}, err
	}
	return created, nil
}

// DeleteGroup removes a zone group that lists no zones
func (c *Coordinator) DeleteGroup(ctx context.Context, name string) error {
	_, err := c.mutate(ctx, "delete_zone_group", func(st *State) (outcome, error) {
		groups := st.GroupStore()
		g, ok := groups.FindByName(name)
		if !ok {
			return outcome{}, fmt.Errorf("%w: zone group %q", ErrNotFound, name)
		}
		if len(g.Zones) > 0 {
			return outcome{}, fmt.Errorf("%w: zone group %q still lists %d zones", ErrHasReferences, name, len(g.Zones))
		}
		if err := c.remote.DeleteZoneGroup(ctx, name); err != nil {
			return outcome{}, remoteCall(err, "delete zone group "+name)
		}
		if _, err := groups.Delete(name); err != nil {
			return outcome{}, err
		}
		return outcome{
			message: fmt.Sprintf("Zone group '%s' deleted", name),
			details: map[string]interface{}{"group_id": g.ID},
		}, nil
	})
	return err
}

// AddZonesToGroup appends ungrouped zones to a group. Zones already in this
// group are skipped; zones in another group are rejected. The zones keep their
// own active flag.
func (c *Coordinator) AddZonesToGroup(ctx context.Context, groupName string, zoneNames ...string) error {
	_, err := c.mutate(ctx, "add_zones_to_group", func(st *State) (outcome, error) {
		groups := st.GroupStore()
		g, ok := groups.FindByName(groupName)
		if !ok {
			return outcome{}, fmt.Errorf("%w: zone group %q", ErrNotFound, groupName)
		}
		ids, err := resolveZones(st.ZoneStore(), zoneNames)
		if err != nil {
			return outcome{}, err
		}
		for i, id := range ids {
			if owner, ok := groups.GroupOf(id); ok && owner.ID != g.ID {
				return outcome{}, fmt.Errorf("%w: zone %q is in group %q", ErrZoneGrouped, zoneNames[i], owner.Name)
			}
		}
		added, err := groups.AddZones(g.ID, ids...)
		if err != nil {
			return outcome{}, err
		}
		return outcome{
			message: fmt.Sprintf("Zones %v added to zone group '%s'", zoneNames, groupName),
			details: map[string]interface{}{"group_id": g.ID, "zone_ids": added},
		}, nil
	})
	return err
}

// RemoveZonesFromGroup drops zones from a group. The zones themselves are kept.
func (c *Coordinator) RemoveZonesFromGroup(ctx context.Context, groupName string, zoneNames ...string) error {
	_, err := c.mutate(ctx, "remove_zones_from_group", func(st *State) (outcome, error) {
		groups := st.GroupStore()
		g, ok := groups.FindByName(groupName)
		if !ok {
			return outcome{}, fmt.Errorf("%w: zone group %q", ErrNotFound, groupName)
		}
		ids, err := resolveZones(st.ZoneStore(), zoneNames)
		if err != nil {
			return outcome{}, err
		}
		removed, err := groups.RemoveZones(g.ID, ids...)
		if err != nil {
			return outcome{}, err
		}
		return outcome{
			message: fmt.Sprintf("Zones %v removed from zone group '%s'", zoneNames, groupName),
			details: map[string]interface{}{"group_id": g.ID, "zone_ids": removed},
		}, nil
	})
	return err
}

// Regenerate rewrites zone_config from the current documents
func (c *Coordinator) Regenerate(ctx context.Context) (*model.ZoneConfig, error) {
	return c.mutate(ctx, "regenerate", func(st *State) (outcome, error) {
		return outcome{message: "Zone configuration regenerated"}, nil
	})
}

// ZoneConfig returns the last written zone config. When none was written
// yet it is projected from the current documents.
func (c *Coordinator) ZoneConfig(ctx context.Context) (*model.ZoneConfig, error) {
	cfg, err := c.repo.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}
	err = c.view(ctx, func(st *State) error {
		cfg = Project(st, c.now())
		return nil
	})
	return cfg, err
}

func resolveZones(zones *ZoneStore, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no zone names given", ErrInvalidName)
	}
	ids := make([]string, 0, len(names))
	for _, name := range names {
		z, ok := zones.FindByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: zone %q", ErrNotFound, name)
		}
		ids = append(ids, z.ID)
	}
	return ids, nil
}

func resolveAliases(aliases *AliasStore, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no alias names given", ErrInvalidName)
	}
	ids := make([]string, 0, len(names))
	for _, name := range names {
		a, ok := aliases.FindByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: alias %q", ErrNotFound, name)
		}
		ids = append(ids, a.ID)
	}
	return ids, nil
}
