package model

// ZoneConfigTimeLayout is the layout of ZoneConfig.LastUpdated
const ZoneConfigTimeLayout = "2006-01-02 15:04:05"

// UngroupedName is the name of the synthetic group that collects zones not referenced by any zone group
const UngroupedName = "Ungrouped"

// ZoneConfig is the derived view written to zone_config.json. It is never
// patched, only regenerated.
type ZoneConfig struct {
	Active      []GroupEntry `json:"active" yaml:"active"`
	Inactive    []GroupEntry `json:"inactive" yaml:"inactive"`
	LastUpdated string       `json:"last_updated" yaml:"last_updated"`
}

// GroupEntry is one zone group in the derived view
type GroupEntry struct {
	ZoneGrpID   int         `json:"ZoneGrpId" yaml:"ZoneGrpId"`
	ZoneGrpName string      `json:"ZoneGrpName" yaml:"ZoneGrpName"`
	ZoneCount   int         `json:"zoneCount" yaml:"zoneCount"`
	ZoneMembers []ZoneEntry `json:"ZoneMembers" yaml:"ZoneMembers"`
}

// ZoneEntry is one zone inside a GroupEntry
type ZoneEntry struct {
	ZoneID       int          `json:"ZoneId" yaml:"ZoneId"`
	ZoneName     string       `json:"ZoneName" yaml:"ZoneName"`
	AliasCount   int          `json:"aliasCount" yaml:"aliasCount"`
	AliasMembers []AliasEntry `json:"AliasMembers" yaml:"AliasMembers"`
}

// AliasEntry is one alias inside a ZoneEntry
type AliasEntry struct {
	AliasID   int    `json:"AliasId" yaml:"AliasId"`
	AliasName string `json:"AliasName" yaml:"AliasName"`
	Type      string `json:"Type" yaml:"Type"`
	IPAddress string `json:"IPAddress" yaml:"IPAddress"`
	NQN       string `json:"NQN" yaml:"NQN"`
}
