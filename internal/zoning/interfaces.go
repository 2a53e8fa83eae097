package zoning

import (
	"context"

	"cdc_zoning/internal/model"
)

// Repository persists the zoning documents
type Repository interface {
	// Load reads every document. Missing documents load empty.
	Load(ctx context.Context) (*State, error)
	// Commit writes every document of st and the derived config as one unit
	Commit(ctx context.Context, st *State, cfg *model.ZoneConfig) error
	// LoadConfig reads the last written zone_config
	LoadConfig(ctx context.Context) (*model.ZoneConfig, error)
}

// Remote mirrors creations and deletions on the CDC device. Every local
// create or delete is committed only after the matching call succeeded.
type Remote interface {
	CreateAlias(ctx context.Context, alias model.AliasRecord) error
	DeleteAlias(ctx context.Context, name string) error
	CreateZone(ctx context.Context, name string) error
	DeleteZone(ctx context.Context, name string) error
	CreateZoneGroup(ctx context.Context, name string) error
	DeleteZoneGroup(ctx context.Context, name string) error
}

// Registry returns the registered node inventory of the fabric
type Registry interface {
	Nodes(ctx context.Context) ([]model.RegisteredNode, error)
}

// Recorder keeps the operation log
type Recorder interface {
	Record(ctx context.Context, entry *model.OperationLog) error
}

// Notifier is told about every new zone config
type Notifier interface {
	ZoneConfigChanged(cfg *model.ZoneConfig)
}

type nopRemote struct{}

func (nopRemote) CreateAlias(context.Context, model.AliasRecord) error { return nil }
func (nopRemote) DeleteAlias(context.Context, string) error            { return nil }
func (nopRemote) CreateZone(context.Context, string) error             { return nil }
func (nopRemote) DeleteZone(context.Context, string) error             { return nil }
func (nopRemote) CreateZoneGroup(context.Context, string) error        { return nil }
func (nopRemote) DeleteZoneGroup(context.Context, string) error        { return nil }

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, *model.OperationLog) error { return nil }

type nopNotifier struct{}

func (nopNotifier) ZoneConfigChanged(*model.ZoneConfig) {}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(cfg *model.ZoneConfig)

// ZoneConfigChanged calls f(cfg)
func (f NotifierFunc) ZoneConfigChanged(cfg *model.ZoneConfig) { f(cfg) }
